// Package notify delivers alert messages to recipients.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// dialer is the subset of *gomail.Dialer we use.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain-text email through an SMTP server.
type SMTPNotifier struct {
	from   string
	dialer dialer
}

// NewSMTPNotifier creates an SMTPNotifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers one message. gomail has no context support, so the send runs
// in a goroutine and Send returns early when ctx is done.
func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", recipient, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", recipient, ctx.Err())
	}
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.log.Infow("notification", "recipient", recipient, "subject", subject, "body", body)
	return nil
}
