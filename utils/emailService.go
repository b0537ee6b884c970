package utils

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"studytrack/logger"
)

// Mailer delivers one HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

// SendgridMailer sends through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	log    *logger.Logger
}

// NewMailer returns a SendGrid mailer, or a logging no-op when no API key is configured.
func NewMailer(apiKey, sender, senderName string, log *logger.Logger) Mailer {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(sender) == "" {
		log.Warn("SendGrid not configured, emails will only be logged")
		return &NopMailer{log: log}
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(senderName, sender),
		log:    log,
	}
}

func (m *SendgridMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), "", htmlBody)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	m.log.Debug("email sent", "subject", subject, "status", resp.StatusCode)
	return nil
}

// NopMailer only logs what would have been sent.
type NopMailer struct {
	log *logger.Logger
}

func (m *NopMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	m.log.Info("email skipped", "subject", subject)
	return nil
}

// HTML wrapper shared by every email
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1F2A44; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2A44; line-height: 1.6; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #E4572E; margin: 20px 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>STUDY TRACKER</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You are receiving this because you have an account on Study Tracker.
			</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(title), bodyContent)
}

// --- Triggers ---

// SendWelcomeEmail greets a new account.
func SendWelcomeEmail(ctx context.Context, m Mailer, email, name string) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your account is ready. Add a playlist, pick a finish date and we will tell you how many videos to watch each day.</p>
	`, html.EscapeString(name))

	return m.Send(ctx, email, name, "Welcome to Study Tracker", getEmailTemplate("Welcome Onboard!", body))
}

// SendPlanCreatedEmail confirms a new plan and its first daily target.
func SendPlanCreatedEmail(ctx context.Context, m Mailer, email, name, planName, endDate string, dailyAllocation int) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your study plan <strong>%s</strong> is scheduled to finish on <strong>%s</strong>.</p>
		<div class="info-box">
			Daily target: <strong>%d</strong> video(s).
		</div>
	`, html.EscapeString(name), html.EscapeString(planName), endDate, dailyAllocation)

	return m.Send(ctx, email, name, "Study plan created: "+planName, getEmailTemplate("Plan Created", body))
}

// ReminderLine is one plan in the daily digest.
type ReminderLine struct {
	PlanName        string
	DailyAllocation int
	RemainingDays   int
	Progress        int
}

// SendDailyReminderEmail lists today's targets for every active plan of one user.
func SendDailyReminderEmail(ctx context.Context, m Mailer, email, name string, lines []ReminderLine) error {
	var rows strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&rows, `<tr><td>%s</td><td>%d</td><td>%d</td><td>%d%%</td></tr>`,
			html.EscapeString(l.PlanName), l.DailyAllocation, l.RemainingDays, l.Progress)
	}

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Here is what is due today.</p>
		<table width="100%%" cellpadding="6">
			<tr><th align="left">Plan</th><th align="left">Videos today</th><th align="left">Days left</th><th align="left">Progress</th></tr>
			%s
		</table>
	`, html.EscapeString(name), rows.String())

	return m.Send(ctx, email, name, "Today's study targets", getEmailTemplate("Daily Targets", body))
}
