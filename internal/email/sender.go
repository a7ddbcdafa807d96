package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/wagatehq/wagate/internal/config"
)

// Sender delivers ops-notification emails over SMTP. A Sender with no host
// configured is a no-op.
type Sender struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

func NewSender(log *slog.Logger, cfg config.EmailConfig) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{
		cfg:    cfg,
		logger: log.With(slog.String("service", "email")),
	}
}

// Enabled reports whether an SMTP host is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.Host != ""
}

// Send delivers one plain-text message to the configured ops address.
func (s *Sender) Send(ctx context.Context, subject, body string) error {
	if !s.Enabled() {
		s.logger.Debug("email disabled, dropping message", slog.String("subject", subject))
		return nil
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(s.cfg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	m.SetMessageID()

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
