package booking

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"creditcoach/models"
	"creditcoach/utils"

	"go.uber.org/zap"
)

// Step is the wizard's position in the booking flow.
type Step string

const (
	StepSelectService  Step = "select_service"
	StepSelectDateTime Step = "select_datetime"
	StepConfirmed      Step = "confirmed"
)

// SlotStatus describes the availability list for the selected date.
type SlotStatus string

const (
	SlotsIdle    SlotStatus = "idle"
	SlotsLoading SlotStatus = "loading"
	SlotsReady   SlotStatus = "ready"
	SlotsEmpty   SlotStatus = "empty"
	SlotsFailed  SlotStatus = "failed"
)

const (
	dateLayout    = "2006-01-02"
	maxNotesRunes = 2000
)

// View is the read-only picture of a wizard rendered by the UI.
type View struct {
	Step          Step                        `json:"step"`
	Draft         models.BookingDraft         `json:"draft"`
	SlotStatus    SlotStatus                  `json:"slotStatus"`
	SlotError     string                      `json:"slotError,omitempty"`
	CanRetrySlots bool                        `json:"canRetrySlots"`
	Submitting    bool                        `json:"submitting"`
	SubmitError   string                      `json:"submitError,omitempty"`
	CanSubmit     bool                        `json:"canSubmit"`
	Confirmation  *models.BookingConfirmation `json:"confirmation,omitempty"`
}

// fetchTicket identifies the selection an availability request was issued
// for. A result is applied only while its ticket is still current.
type fetchTicket struct {
	generation  uint64
	date        string
	serviceType models.ServiceType
}

// Wizard is the three-step booking flow of one session: choose a service,
// choose a date and time, confirmed. Network calls are made without holding
// the lock; every selection change bumps generation so late availability
// responses for an abandoned selection are dropped.
type Wizard struct {
	mu     sync.Mutex
	api    API
	logger *zap.Logger
	now    func() time.Time

	step         Step
	draft        models.BookingDraft
	generation   uint64
	slotStatus   SlotStatus
	slotError    string
	submitting   bool
	submitError  string
	confirmation *models.BookingConfirmation
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithClock replaces time.Now, which decides what counts as a past date.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// NewWizard starts a fresh booking session.
func NewWizard(api API, logger *zap.Logger, opts ...Option) *Wizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Wizard{
		api:        api,
		logger:     logger,
		now:        time.Now,
		step:       StepSelectService,
		slotStatus: SlotsIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// guard rejects mutations while a submission is in flight or after the
// booking is confirmed. Callers hold mu.
func (w *Wizard) guard() error {
	if w.step == StepConfirmed {
		return validationError(MsgAlreadyConfirmed)
	}
	if w.submitting {
		return validationError(MsgSubmitting)
	}
	return nil
}

// resetDateTime discards everything chosen on the date/time step and
// invalidates in-flight availability requests. Callers hold mu.
func (w *Wizard) resetDateTime() {
	w.generation++
	w.draft.SelectedDate = ""
	w.draft.AvailableSlots = nil
	w.draft.StartTime = nil
	w.draft.Notes = ""
	w.slotStatus = SlotsIdle
	w.slotError = ""
	w.submitError = ""
}

// ChooseService records the service type and advances to date selection.
func (w *Wizard) ChooseService(serviceType models.ServiceType) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.guard(); err != nil {
		return err
	}
	if w.step != StepSelectService {
		return validationError(MsgChooseServiceFirst)
	}
	if !serviceType.Valid() {
		return validationError(MsgUnknownService)
	}

	w.resetDateTime()
	w.draft.ServiceType = serviceType
	w.step = StepSelectDateTime
	return nil
}

// Back returns to service selection. The chosen service stays selected;
// the date, slots, time and notes are discarded.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.guard(); err != nil {
		return err
	}
	if w.step != StepSelectDateTime {
		return validationError(MsgChooseServiceFirst)
	}
	w.resetDateTime()
	w.step = StepSelectService
	return nil
}

func (w *Wizard) beginFetch(date string) (fetchTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.guard(); err != nil {
		return fetchTicket{}, err
	}
	if w.step != StepSelectDateTime {
		return fetchTicket{}, validationError(MsgChooseServiceFirst)
	}
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return fetchTicket{}, validationError(MsgInvalidDate)
	}
	now := w.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if day.Before(today) {
		return fetchTicket{}, validationError(MsgPastDate)
	}

	w.generation++
	w.draft.SelectedDate = day.Format(dateLayout)
	w.draft.AvailableSlots = nil
	w.draft.StartTime = nil
	w.slotStatus = SlotsLoading
	w.slotError = ""

	return fetchTicket{
		generation:  w.generation,
		date:        w.draft.SelectedDate,
		serviceType: w.draft.ServiceType,
	}, nil
}

// applyFetch stores an availability result if t is still the current
// selection. It reports whether the result was applied.
func (w *Wizard) applyFetch(t fetchTicket, slots []models.Slot, fetchErr error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t.generation != w.generation || w.step != StepSelectDateTime ||
		t.date != w.draft.SelectedDate || t.serviceType != w.draft.ServiceType {
		utils.SlotFetches.WithLabelValues("stale").Inc()
		w.logger.Debug("booking: dropped stale availability",
			zap.String("date", t.date),
			zap.Uint64("generation", t.generation),
			zap.Uint64("current", w.generation))
		return false
	}

	if fetchErr != nil {
		utils.SlotFetches.WithLabelValues("failed").Inc()
		w.logger.Warn("booking: availability fetch failed",
			zap.String("date", t.date),
			zap.String("serviceType", string(t.serviceType)),
			zap.Error(fetchErr))
		w.slotStatus = SlotsFailed
		w.slotError = MsgSlotsFailed
		return true
	}

	sorted := make([]models.Slot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	w.draft.AvailableSlots = sorted
	if len(sorted) == 0 {
		utils.SlotFetches.WithLabelValues("empty").Inc()
		w.slotStatus = SlotsEmpty
	} else {
		utils.SlotFetches.WithLabelValues("applied").Inc()
		w.slotStatus = SlotsReady
	}
	return true
}

func (w *Wizard) fetch(ctx context.Context, t fetchTicket) error {
	slots, err := w.api.AvailableSlots(ctx, t.date, t.serviceType)
	if w.applyFetch(t, slots, err) && err != nil {
		return &Error{Kind: KindNetwork, Message: MsgSlotsFailed}
	}
	return nil
}

// SelectDate picks a day and loads its available times. Any previously
// chosen time is cleared. A failed load leaves the wizard in a retryable
// state and returns a KindNetwork error; an empty day is not an error.
func (w *Wizard) SelectDate(ctx context.Context, date string) error {
	t, err := w.beginFetch(date)
	if err != nil {
		return err
	}
	return w.fetch(ctx, t)
}

// RetrySlots reloads availability for the currently selected date.
func (w *Wizard) RetrySlots(ctx context.Context) error {
	w.mu.Lock()
	date := w.draft.SelectedDate
	w.mu.Unlock()

	if date == "" {
		return validationError(MsgNoDate)
	}
	return w.SelectDate(ctx, date)
}

// SelectTime chooses one of the loaded start times.
func (w *Wizard) SelectTime(start time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.guard(); err != nil {
		return err
	}
	if w.step != StepSelectDateTime {
		return validationError(MsgChooseServiceFirst)
	}
	if w.slotStatus == SlotsLoading {
		return validationError(MsgSlotsLoading)
	}
	for _, s := range w.draft.AvailableSlots {
		if s.StartTime.Equal(start) {
			chosen := s.StartTime
			w.draft.StartTime = &chosen
			return nil
		}
	}
	return validationError(MsgSlotUnavailable)
}

// SetNotes stores the free-text notes for the consultant.
func (w *Wizard) SetNotes(notes string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.guard(); err != nil {
		return err
	}
	if w.step != StepSelectDateTime {
		return validationError(MsgChooseServiceFirst)
	}
	if utf8.RuneCountInString(notes) > maxNotesRunes {
		return validationError(MsgNotesTooLong)
	}
	w.draft.Notes = notes
	return nil
}

// submittable checks everything that can be checked without the network.
// Callers hold mu.
func (w *Wizard) submittable() error {
	if err := w.guard(); err != nil {
		return err
	}
	if w.step != StepSelectDateTime {
		return validationError(MsgChooseServiceFirst)
	}
	if w.slotStatus == SlotsLoading {
		return validationError(MsgSlotsLoading)
	}
	if w.draft.StartTime == nil {
		return validationError(MsgChooseTime)
	}
	return nil
}

// Submit reserves the chosen slot. A missing time or token is reported
// without calling the backend. On failure every field is kept and the
// message stays visible until dismissed; nothing is retried automatically.
func (w *Wizard) Submit(ctx context.Context, tokens TokenSource) (*models.BookingConfirmation, error) {
	w.mu.Lock()
	err := w.submittable()
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}

	token := ""
	if tokens != nil {
		if token, err = tokens.Token(ctx); err != nil {
			w.logger.Warn("booking: token lookup failed", zap.Error(err))
			token = ""
		}
	}
	if token == "" {
		return nil, &Error{Kind: KindUnauthenticated, Message: MsgSignIn}
	}

	w.mu.Lock()
	if err := w.submittable(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	req := models.BookingRequest{
		ServiceType: w.draft.ServiceType,
		StartTime:   *w.draft.StartTime,
		Notes:       w.draft.Notes,
	}
	w.submitting = true
	w.submitError = ""
	w.mu.Unlock()

	conf, err := w.api.CreateBooking(ctx, token, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err == nil && conf == nil {
		err = errors.New("empty confirmation")
	}
	if err != nil {
		utils.BookingSubmissions.WithLabelValues("failed").Inc()
		w.logger.Warn("booking: submission failed",
			zap.String("serviceType", string(req.ServiceType)),
			zap.Time("startTime", req.StartTime),
			zap.Error(err))
		werr := &Error{Kind: KindNetwork, Message: MsgSubmitFailed}
		if isAuthRejection(err) {
			werr = &Error{Kind: KindUnauthenticated, Message: MsgSessionExpired}
		}
		w.submitError = werr.Message
		return nil, werr
	}

	utils.BookingSubmissions.WithLabelValues("confirmed").Inc()
	w.logger.Info("booking: confirmed",
		zap.String("bookingID", conf.ID),
		zap.Time("startTime", conf.StartTime))
	w.generation++
	w.confirmation = conf
	w.draft = models.BookingDraft{}
	w.slotStatus = SlotsIdle
	w.slotError = ""
	w.step = StepConfirmed
	return conf, nil
}

// isAuthRejection reports whether the backend refused the bearer token.
func isAuthRejection(err error) bool {
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		return se.HTTPStatus() == http.StatusUnauthorized || se.HTTPStatus() == http.StatusForbidden
	}
	return false
}

// DismissError hides the last submission error.
func (w *Wizard) DismissError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitError = ""
}

// View returns a snapshot safe to render.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	draft := w.draft
	draft.AvailableSlots = make([]models.Slot, len(w.draft.AvailableSlots))
	copy(draft.AvailableSlots, w.draft.AvailableSlots)
	if w.draft.StartTime != nil {
		st := *w.draft.StartTime
		draft.StartTime = &st
	}

	return View{
		Step:          w.step,
		Draft:         draft,
		SlotStatus:    w.slotStatus,
		SlotError:     w.slotError,
		CanRetrySlots: w.slotStatus == SlotsFailed,
		Submitting:    w.submitting,
		SubmitError:   w.submitError,
		CanSubmit:     w.submittable() == nil,
		Confirmation:  w.confirmation,
	}
}
