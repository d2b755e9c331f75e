package handlers

import (
	"context"
	"errors"
	"net/http"

	"creditcoach/middleware"
	"creditcoach/models"
	"creditcoach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingLister lists the consultations of a signed-in user.
type BookingLister interface {
	MyBookings(ctx context.Context, token string) ([]models.BookingConfirmation, error)
}

type AccountHandler struct {
	bookings BookingLister
	logger   *zap.Logger
}

func NewAccountHandler(bookings BookingLister, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{bookings: bookings, logger: logger}
}

// MyBookingsHandler lists the caller's consultations for the dashboard.
// Requires BearerAuth.
func (h *AccountHandler) MyBookingsHandler(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if id == nil {
		utils.JSONError(c, http.StatusUnauthorized, "Please sign in to continue.", "")
		return
	}

	list, err := h.bookings.MyBookings(c.Request.Context(), id.RawToken)
	if err != nil {
		var se interface{ HTTPStatus() int }
		if errors.As(err, &se) && (se.HTTPStatus() == http.StatusUnauthorized || se.HTTPStatus() == http.StatusForbidden) {
			utils.JSONError(c, http.StatusUnauthorized, "Your sign-in has expired. Please sign in again.", "")
			return
		}
		h.logger.Error("account: bookings lookup failed", zap.String("userId", id.UserID), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Could not load your bookings. Please try again.", "")
		return
	}
	if list == nil {
		list = []models.BookingConfirmation{}
	}
	c.JSON(http.StatusOK, list)
}

// HealthHandler reports the last dependency check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo == nil || *status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code := http.StatusOK
	state := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
