package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creditcoach/config"
	"creditcoach/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeConsultationReminder = "reminder:consultation"

// Notifier delivers a consultation reminder to the customer.
type Notifier interface {
	NotifyConsultation(ctx context.Context, p models.ReminderPayload) error
}

// LogNotifier records reminders in the service log. It is used until a
// delivery channel is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) NotifyConsultation(_ context.Context, p models.ReminderPayload) error {
	n.Logger.Info("reminder: consultation coming up",
		zap.String("reminderId", p.ReminderID),
		zap.String("bookingId", p.BookingID),
		zap.String("userId", p.UserID),
		zap.String("serviceType", string(p.ServiceType)),
		zap.Time("startTime", p.StartTime),
		zap.String("meetingLink", p.MeetingLink))
	return nil
}

// RedisOpt is the asynq connection for the reminder queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReminderWorker runs the async worker in background and returns the
// server so the caller can shut it down.
func InitReminderWorker(notifier Notifier, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeConsultationReminder, handleReminderTask(notifier, logger))

	go func() {
		logger.Info("reminder worker: starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Warn("reminder worker: failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("reminder worker: giving up, reminders disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleReminderTask(notifier Notifier, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("reminder: invalid payload", zap.Error(err))
			return fmt.Errorf("reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		if err := notifier.NotifyConsultation(ctx, p); err != nil {
			logger.Warn("reminder: delivery failed", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}
