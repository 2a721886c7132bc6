// Package service holds the outbound integrations behind the API: the
// contact form relay is the only one today.
package service

import (
	"context"
	"fmt"
	"html"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/amanksolutions/galleryguard/internal/config"
	"github.com/amanksolutions/galleryguard/internal/constants"
)

// ContactMessage is one contact form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// mailSender is the point at which tests replace the SendGrid client.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// MailService relays contact form submissions to the gallery owner.
type MailService struct {
	cfg    config.MailSettings
	client mailSender
}

// NewMailService creates a mail service from the given settings. When mail
// is not configured, Relay degrades to logging the submission.
func NewMailService(cfg config.MailSettings) *MailService {
	var client mailSender
	if cfg.MailEnabled() {
		client = sendgrid.NewSendClient(cfg.APIKey)
	}
	return &MailService{cfg: cfg, client: client}
}

// Relay forwards a contact submission to the configured recipient. The
// caller has already accepted the submission; failures here are logged, not
// surfaced to the visitor.
func (s *MailService) Relay(ctx context.Context, msg ContactMessage) error {
	if s.client == nil {
		log.Info().
			Str("from", msg.Email).
			Str("subject", msg.Subject).
			Msg("Mail relay disabled, contact submission logged only")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.MailSendTimeout)
	defer cancel()

	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromAddress)
	to := mail.NewEmail("", s.cfg.ToAddress)
	subject := fmt.Sprintf("Contact form: %s", msg.Subject)

	plain := fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message)
	htmlBody := fmt.Sprintf(
		"<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(msg.Message),
	)

	email := mail.NewSingleEmail(from, subject, to, plain, htmlBody)
	email.ReplyTo = mail.NewEmail(msg.Name, msg.Email)

	response, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		log.Error().Err(err).Str("from", msg.Email).Msg("Failed to relay contact submission")
		return err
	}

	if response.StatusCode >= 400 {
		log.Error().Int("status_code", response.StatusCode).Msg("Contact relay rejected by mail provider")
		return fmt.Errorf("mail provider returned status %d", response.StatusCode)
	}

	log.Info().Int("status_code", response.StatusCode).Msg("Contact submission relayed")
	return nil
}
