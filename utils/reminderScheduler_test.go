package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/logger"
)

type staticDigests struct {
	digests []ReminderDigest
	err     error
}

func (s staticDigests) ReminderDigests(ctx context.Context) ([]ReminderDigest, error) {
	return s.digests, s.err
}

type failingMailer struct {
	failFor string
	sent    []string
}

func (m *failingMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	if toEmail == m.failFor {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

func TestReminderRunOnce(t *testing.T) {
	source := staticDigests{digests: []ReminderDigest{
		{Email: "a@example.com", Name: "A", Lines: []ReminderLine{{PlanName: "Go", DailyAllocation: 5}}},
		{Email: "b@example.com", Name: "B", Lines: []ReminderLine{{PlanName: "Rust", DailyAllocation: 1}}},
		{Email: "c@example.com", Name: "C"},
	}}
	mailer := &failingMailer{failFor: "b@example.com"}

	s, err := NewReminderScheduler("0 7 * * *", time.UTC, source, mailer, logger.NewNop())
	require.NoError(t, err)

	sent, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"a@example.com"}, mailer.sent)
}

func TestReminderRunOnceSourceError(t *testing.T) {
	s, err := NewReminderScheduler("0 7 * * *", nil, staticDigests{err: errors.New("db gone")}, &failingMailer{}, logger.NewNop())
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())
	assert.EqualError(t, err, "db gone")
}

func TestReminderSchedulerRejectsBadCronExpression(t *testing.T) {
	_, err := NewReminderScheduler("every morning", time.UTC, staticDigests{}, &failingMailer{}, logger.NewNop())
	assert.ErrorContains(t, err, "invalid REMINDER_CRON")
}

func TestReminderSchedulerStartStop(t *testing.T) {
	s, err := NewReminderScheduler("@every 1h", time.UTC, staticDigests{}, &failingMailer{}, logger.NewNop())
	require.NoError(t, err)

	s.Start()
	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
