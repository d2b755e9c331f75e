package cron

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"creditcoach/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues a reminder ahead of each confirmed consultation.
type ReminderScheduler struct {
	queue  Enqueuer
	lead   time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewReminderScheduler(queue Enqueuer, lead time.Duration, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{queue: queue, lead: lead, now: time.Now, logger: logger}
}

// NewReminderTask builds the task for p, fired at fireAt. The task id is
// derived from the booking so a booking is reminded at most once.
func NewReminderTask(p models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeConsultationReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}
	if p.BookingID != "" {
		opts = append(opts, asynq.TaskID("consultation:"+p.BookingID))
	}
	return task, opts, nil
}

// fireTime returns when the reminder should go out. A consultation closer
// than the lead time is reminded immediately; one already started is not.
func fireTime(start time.Time, lead time.Duration, now time.Time) (time.Time, bool) {
	if !start.After(now) {
		return time.Time{}, false
	}
	at := start.Add(-lead)
	if at.Before(now) {
		at = now
	}
	return at, true
}

// Schedule queues the reminder for conf. Failures are logged and returned;
// callers treat them as non-fatal since the booking itself succeeded.
func (s *ReminderScheduler) Schedule(ctx context.Context, userID string, conf *models.BookingConfirmation) error {
	if s == nil || s.queue == nil || conf == nil {
		return nil
	}
	at, ok := fireTime(conf.StartTime, s.lead, s.now())
	if !ok {
		return nil
	}

	p := models.ReminderPayload{
		ReminderID:  uuid.New().String(),
		BookingID:   conf.ID,
		UserID:      userID,
		ServiceType: conf.ServiceType,
		StartTime:   conf.StartTime,
		MeetingLink: conf.MeetingLink,
	}
	task, opts, err := NewReminderTask(p, at)
	if err != nil {
		return err
	}
	if _, err := s.queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		s.logger.Warn("reminder: enqueue failed", zap.String("bookingId", conf.ID), zap.Error(err))
		return err
	}
	s.logger.Info("reminder: scheduled", zap.String("bookingId", conf.ID), zap.Time("fireAt", at))
	return nil
}
