package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"studytrack/logger"
)

// ReminderDigest is one user's list of active plans for today.
type ReminderDigest struct {
	Email string
	Name  string
	Lines []ReminderLine
}

// ReminderSource builds the digests to send. Implementations must not modify plans.
type ReminderSource interface {
	ReminderDigests(ctx context.Context) ([]ReminderDigest, error)
}

// ReminderScheduler emails every user their daily targets on a cron schedule.
type ReminderScheduler struct {
	cron    *cron.Cron
	source  ReminderSource
	mailer  Mailer
	log     *logger.Logger
	timeout time.Duration
}

// NewReminderScheduler registers the digest job. spec is a standard 5-field cron expression
// evaluated in loc.
func NewReminderScheduler(spec string, loc *time.Location, source ReminderSource, mailer Mailer, log *logger.Logger) (*ReminderScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &ReminderScheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		source:  source,
		mailer:  mailer,
		log:     log,
		timeout: 5 * time.Minute,
	}

	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		s.log.Info("[REMINDER-SCHEDULER] Running daily digest")
		sent, err := s.RunOnce(ctx)
		if err != nil {
			s.log.Error("[REMINDER-SCHEDULER] Digest failed", "error", err, "sent", sent)
			return
		}
		s.log.Info("[REMINDER-SCHEDULER] Digest finished", "sent", sent)
	}); err != nil {
		return nil, fmt.Errorf("invalid REMINDER_CRON %q: %w", spec, err)
	}

	return s, nil
}

func (s *ReminderScheduler) Start() {
	s.cron.Start()
	s.log.Info("[REMINDER-SCHEDULER] Reminder scheduler started")
}

// Stop halts the schedule and returns a context that is done once a running job finishes.
func (s *ReminderScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce sends one digest per user and returns how many emails went out.
// A failed email is logged and does not stop the rest.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	digests, err := s.source.ReminderDigests(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, d := range digests {
		if len(d.Lines) == 0 || d.Email == "" {
			continue
		}
		if err := SendDailyReminderEmail(ctx, s.mailer, d.Email, d.Name, d.Lines); err != nil {
			s.log.Warn("[REMINDER-SCHEDULER] Reminder not sent", "email", d.Email, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
