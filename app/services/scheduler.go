package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

// ErrPassRunning is returned when a reminder pass is requested while one is
// already in progress.
var ErrPassRunning = errors.New("a reminder pass is already running")

// PassResult summarises one reminder pass.
type PassResult struct {
	Reminders  int `json:"reminders"`
	Recipients int `json:"recipients"`
	Failures   int `json:"failures"`
}

// Scheduler periodically dispatches due reminders. At most one pass runs at a time.
type Scheduler struct {
	db         *gorm.DB
	dispatcher *ReminderDispatcher
	interval   time.Duration
	logger     *slog.Logger
	now        func() time.Time

	running sync.Mutex
}

func NewScheduler(db *gorm.DB, dispatcher *ReminderDispatcher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{db: db, dispatcher: dispatcher, interval: interval, logger: logger, now: time.Now}
}

// Start runs passes on every tick until ctx is cancelled. The returned channel
// closes once the loop has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.logger.Info("scheduler started", "interval", s.interval)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				res, err := s.RunOnce(ctx)
				switch {
				case errors.Is(err, ErrPassRunning):
					s.logger.Debug("previous reminder pass still running, skipping tick")
				case err != nil:
					s.logger.Error("reminder pass failed", "error", err)
				case res.Reminders > 0:
					s.logger.Info("reminder pass finished",
						"reminders", res.Reminders, "recipients", res.Recipients, "failures", res.Failures)
				}
			}
		}
	}()
	return done
}

// RunOnce dispatches every due reminder once.
func (s *Scheduler) RunOnce(ctx context.Context) (PassResult, error) {
	if !s.running.TryLock() {
		return PassResult{}, ErrPassRunning
	}
	defer s.running.Unlock()

	var res PassResult
	now := s.now()
	due, err := database.GetDueReminders(s.db.WithContext(ctx), now)
	if err != nil {
		return res, err
	}

	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		recipients, failures, err := s.dispatcher.Dispatch(ctx, r)
		if err != nil {
			s.logger.Error("reminder dispatch failed", "reminder_id", r.ID, "error", err)
			continue
		}

		sent, err := database.MarkReminderSent(s.db.WithContext(ctx), r.ID, recipients, failures, s.now())
		if err != nil {
			s.logger.Error("failed to mark reminder sent", "reminder_id", r.ID, "error", err)
			continue
		}
		if !sent {
			continue
		}

		res.Reminders++
		res.Recipients += recipients
		res.Failures += failures
		s.logger.Info("reminder sent", "reminder_id", r.ID, "type", r.Type, "method", r.Method,
			"recipients", recipients, "failures", failures)
		database.LogActivity(s.db, s.logger, r.UserID, models.ActionReminder, "reminder", r.ID,
			"Sent reminder \""+r.Title+"\"")
	}
	return res, nil
}
