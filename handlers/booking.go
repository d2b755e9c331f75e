package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"creditcoach/middleware"
	"creditcoach/models"
	"creditcoach/services/booking"
	"creditcoach/services/session"
	"creditcoach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderScheduler queues a reminder for a confirmed booking.
type ReminderScheduler interface {
	Schedule(ctx context.Context, userID string, conf *models.BookingConfirmation) error
}

type BookingHandler struct {
	wizards   *session.Registry[*booking.Wizard]
	reminders ReminderScheduler
	logger    *zap.Logger
}

// NewBookingHandler wires the wizard endpoints. reminders may be nil.
func NewBookingHandler(wizards *session.Registry[*booking.Wizard], reminders ReminderScheduler, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{wizards: wizards, reminders: reminders, logger: logger}
}

func (h *BookingHandler) wizard(c *gin.Context) *booking.Wizard {
	return h.wizards.Get(c.Request.Context(), middleware.SessionID(c))
}

// wizardError is the body of a failed wizard call. The view is included so
// the page can redraw without another request.
type wizardError struct {
	Message string           `json:"message"`
	Kind    booking.ErrorKind `json:"kind"`
	Wizard  booking.View      `json:"wizard"`
}

func statusFor(kind booking.ErrorKind) int {
	switch kind {
	case booking.KindValidation:
		return http.StatusBadRequest
	case booking.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func (h *BookingHandler) respond(c *gin.Context, w *booking.Wizard, err error) {
	if err == nil {
		c.JSON(http.StatusOK, w.View())
		return
	}
	var werr *booking.Error
	if !errors.As(err, &werr) {
		h.logger.Error("booking: unexpected error", zap.Error(err))
		werr = &booking.Error{Kind: booking.KindNetwork, Message: booking.MsgSubmitFailed}
	}
	c.AbortWithStatusJSON(statusFor(werr.Kind), wizardError{
		Message: werr.Message,
		Kind:    werr.Kind,
		Wizard:  w.View(),
	})
}

func (h *BookingHandler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

// GetServicesHandler lists the consultation types that can be booked.
func (h *BookingHandler) GetServicesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, booking.Offerings())
}

// GetWizardHandler renders the current wizard state.
func (h *BookingHandler) GetWizardHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizard(c).View())
}

// ChooseServiceHandler records the service type.
func (h *BookingHandler) ChooseServiceHandler(c *gin.Context) {
	w := h.wizard(c)
	var req struct {
		ServiceType models.ServiceType `json:"serviceType" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, w, w.ChooseService(req.ServiceType))
}

// SelectDateHandler picks a date and loads its times.
func (h *BookingHandler) SelectDateHandler(c *gin.Context) {
	w := h.wizard(c)
	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, w, w.SelectDate(c.Request.Context(), req.Date))
}

// RetrySlotsHandler reloads times for the selected date.
func (h *BookingHandler) RetrySlotsHandler(c *gin.Context) {
	w := h.wizard(c)
	h.respond(c, w, w.RetrySlots(c.Request.Context()))
}

// SelectTimeHandler chooses one of the loaded times.
func (h *BookingHandler) SelectTimeHandler(c *gin.Context) {
	w := h.wizard(c)
	var req struct {
		StartTime time.Time `json:"startTime" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, w, w.SelectTime(req.StartTime))
}

// SetNotesHandler stores the notes.
func (h *BookingHandler) SetNotesHandler(c *gin.Context) {
	w := h.wizard(c)
	var req struct {
		Notes string `json:"notes"`
	}
	if !h.bind(c, &req) {
		return
	}
	h.respond(c, w, w.SetNotes(req.Notes))
}

// BackHandler returns to service selection.
func (h *BookingHandler) BackHandler(c *gin.Context) {
	w := h.wizard(c)
	h.respond(c, w, w.Back())
}

// DismissErrorHandler hides the submission error.
func (h *BookingHandler) DismissErrorHandler(c *gin.Context) {
	w := h.wizard(c)
	w.DismissError()
	c.JSON(http.StatusOK, w.View())
}

// SubmitHandler books the consultation with the caller's bearer token and
// queues a reminder.
func (h *BookingHandler) SubmitHandler(c *gin.Context) {
	w := h.wizard(c)
	identity := middleware.IdentityFrom(c)

	conf, err := w.Submit(c.Request.Context(), identity)
	if err != nil {
		h.respond(c, w, err)
		return
	}

	if h.reminders != nil {
		if err := h.reminders.Schedule(c.Request.Context(), identity.UserID, conf); err != nil {
			h.logger.Warn("booking: reminder not scheduled", zap.String("bookingId", conf.ID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, w.View())
}

// DiscardWizardHandler drops the wizard, as when the user leaves the page.
func (h *BookingHandler) DiscardWizardHandler(c *gin.Context) {
	h.wizards.Delete(middleware.SessionID(c))
	c.Status(http.StatusNoContent)
}
