// Package notify delivers outbound email notifications. Delivery is
// best-effort: every send happens in the background and failures are
// logged and counted, never surfaced to the triggering request.
package notify

import (
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"trackback/internal/config"
	"trackback/internal/middleware"
	"trackback/internal/models"
	"trackback/internal/observability"

	"gopkg.in/gomail.v2"
)

const (
	sendAttempts = 3
	initialWait  = 2 * time.Second
)

// Mailer sends transactional email over SMTP using gomail.
type Mailer struct {
	from         string
	clientURL    string
	supportInbox string
	enabled      bool

	// send and wait are swapped out in tests.
	send func(*gomail.Message) error
	wait time.Duration

	wg sync.WaitGroup
}

// NewMailer builds a Mailer from SMTP settings. When credentials are
// missing the mailer is disabled and every notification becomes a no-op.
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		from:         cfg.SMTPUser,
		clientURL:    cfg.ClientURL,
		supportInbox: cfg.SupportInbox,
		enabled:      cfg.MailEnabled(),
		wait:         initialWait,
	}
	if m.enabled {
		dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		m.send = func(msg *gomail.Message) error {
			return dialer.DialAndSend(msg)
		}
	}
	return m
}

// Wait blocks until all in-flight deliveries finish. Used by tests and
// graceful shutdown.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

// dispatch sends a message in the background with retry and backoff.
func (m *Mailer) dispatch(kind string, msg *gomail.Message) {
	if !m.enabled || m.send == nil {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		wait := m.wait
		var err error
		for attempt := 1; attempt <= sendAttempts; attempt++ {
			if err = m.send(msg); err == nil {
				observability.EmailDeliveries.WithLabelValues(kind, "success").Inc()
				return
			}
			if attempt < sendAttempts {
				time.Sleep(wait)
				wait *= 2
			}
		}

		observability.EmailDeliveries.WithLabelValues(kind, "failure").Inc()
		middleware.Logger.Warn("email delivery failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
	}()
}

// ClaimReported notifies the item owner that someone reported their
// item found.
func (m *Mailer) ClaimReported(post *models.Post, claim *models.FoundInteraction, ownerEmail string) {
	claimsLink := m.clientURL + "/claims"

	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #16a34a;">Good news! Someone found your item</h2>
  <p>A finder has responded to your report <strong>%s</strong>.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 6px; font-weight: bold;">Name</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; font-weight: bold;">Email</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; font-weight: bold;">Phone</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; font-weight: bold;">Message</td><td style="padding: 6px;">%s</td></tr>
  </table>
  <p><a href="%s" style="background: #16a34a; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Review the claim</a></p>
  <p style="color: #6b7280; font-size: 12px;">You received this email because you reported a lost item on TrackBack.</p>
</div>`,
		html.EscapeString(post.Title), html.EscapeString(claim.FinderName),
		html.EscapeString(claim.FinderContact), html.EscapeString(claim.FinderPhone),
		html.EscapeString(claim.Message), claimsLink)

	textBody := fmt.Sprintf(
		"Good news! Someone found your item.\n\nReport: %s\nFinder: %s\nEmail: %s\nPhone: %s\nMessage: %s\n\nReview the claim: %s\n",
		post.Title, claim.FinderName, claim.FinderContact, claim.FinderPhone, claim.Message, claimsLink)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", ownerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Someone found your item: %s", post.Title))
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	m.dispatch("claim_reported", msg)
}

// ClaimConfirmed notifies the finder that the owner accepted their report.
func (m *Mailer) ClaimConfirmed(post *models.Post, claim *models.FoundInteraction) {
	if claim.FinderContact == "" {
		return
	}

	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #16a34a;">Your found report was confirmed</h2>
  <p>The owner of <strong>%s</strong> has confirmed your report. They may reach out using the contact details you provided.</p>
  <p>Thank you for helping reunite someone with their item!</p>
  <p style="color: #6b7280; font-size: 12px;">The TrackBack Team</p>
</div>`, html.EscapeString(post.Title))

	textBody := fmt.Sprintf(
		"Your found report was confirmed.\n\nThe owner of %q has confirmed your report. They may reach out using the contact details you provided.\n\nThank you for helping!\nThe TrackBack Team\n",
		post.Title)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", claim.FinderContact)
	msg.SetHeader("Subject", fmt.Sprintf("The owner confirmed your report: %s", post.Title))
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	m.dispatch("claim_confirmed", msg)
}

// SupportReceived forwards a support form submission to the support inbox.
func (m *Mailer) SupportReceived(message *models.SupportMessage) {
	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New support message</h2>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 6px; font-weight: bold;">From</td><td style="padding: 6px;">%s &lt;%s&gt;</td></tr>
    <tr><td style="padding: 6px; font-weight: bold;">Subject</td><td style="padding: 6px;">%s</td></tr>
  </table>
  <p style="white-space: pre-wrap;">%s</p>
</div>`,
		html.EscapeString(message.Name), html.EscapeString(message.Email),
		html.EscapeString(message.Subject), html.EscapeString(message.Message))

	textBody := fmt.Sprintf(
		"New support message\n\nFrom: %s <%s>\nSubject: %s\n\n%s\n",
		message.Name, message.Email, message.Subject, message.Message)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.supportInbox)
	msg.SetHeader("Reply-To", message.Email)
	msg.SetHeader("Subject", fmt.Sprintf("[Support] %s", message.Subject))
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	m.dispatch("support", msg)
}
