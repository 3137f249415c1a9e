package notify

import (
	"github.com/pkg/errors"
	"github.com/protechlab/labdesk/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends a copy of an alert by email
type Mailer interface {
	Send(subject, body string) error
}

// SMTPMailer gomail based Mailer
type SMTPMailer struct {
	from   string
	to     []string
	dialer *gomail.Dialer
}

// NewSMTPMailer returns nil when mail is disabled or has no recipients
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	if !cfg.Enabled || cfg.Host == "" || len(cfg.To) == 0 {
		return nil
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		from:   from,
		to:     cfg.To,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (m *SMTPMailer) Message(subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", "[labdesk] "+subject)
	msg.SetBody("text/plain", body)
	return msg
}

func (m *SMTPMailer) Send(subject, body string) error {
	return errors.Wrap(m.dialer.DialAndSend(m.Message(subject, body)), "send mail")
}
