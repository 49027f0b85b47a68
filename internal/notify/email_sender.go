package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
}

// Enabled reports whether every setting needed to send is present.
func (c EmailConfig) Enabled() bool {
	return c.SMTPServer != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}

// EmailDestination delivers messages via SMTP.
type EmailDestination struct {
	cfg      EmailConfig
	renderer *HTMLEmailRenderer
	dialer   *gomail.Dialer
}

func NewEmailDestination(cfg EmailConfig) *EmailDestination {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	return &EmailDestination{
		cfg:      cfg,
		renderer: NewHTMLEmailRenderer(),
		dialer:   dialer,
	}
}

func (s *EmailDestination) Name() string { return "email" }

// Send delivers an email with HTML body, plain text fallback and the
// attachment when there is one.
func (s *EmailDestination) Send(_ context.Context, msg *Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send to %s (Subject: %s): %w", s.cfg.ToEmail, m.GetHeader("Subject"), err)
	}
	return nil
}

func (s *EmailDestination) build(msg *Message) (*gomail.Message, error) {
	rendered, err := s.renderer.Render(NotificationData{Entry: msg.Entry, Summary: msg.Summary})
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", rendered.Subject)
	m.SetBody("text/plain", rendered.Text)
	m.AddAlternative("text/html", rendered.HTML)

	if f := msg.Attachment; f != nil {
		m.AttachReader(f.Name, bytes.NewReader(f.Data), gomail.SetHeader(map[string][]string{
			"Content-Type": {f.ContentType},
		}))
	}
	return m, nil
}
