// Package mailer sends plain notification emails over SMTP.
package mailer

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/inventory-pos/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP mailer, or a mailer that only logs when no SMTP
// host is configured.
func New(cfg config.SMTPConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{Log: log}
	}
	return &SMTP{cfg: cfg}
}

type SMTP struct {
	cfg config.SMTPConfig
}

func (s *SMTP) Send(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	return d.DialAndSend(m)
}

// LogMailer records the message instead of sending it.
type LogMailer struct {
	Log *zap.Logger
}

func (l *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	l.Log.Info("mail not sent, smtp disabled", zap.String("to", to), zap.String("subject", subject))
	return nil
}
