package utils

import (
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends HTML mail through one SMTP relay.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(host string, port int, user, password string) *SMTPMailer {
	return &SMTPMailer{
		from:   user,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := NewEmail(m.from, to, subject, body)
	return m.dialer.DialAndSend(msg)
}

// NewEmail builds the message SMTPMailer sends.
func NewEmail(from, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}
