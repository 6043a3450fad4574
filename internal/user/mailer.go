package user

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers account emails. Delivery is advisory; a failed send never
// rolls back the account that triggered it.
type Mailer interface {
	SendVendorInvite(to, tempPassword string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendVendorInvite(to, tempPassword string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your vendor account is ready")
	msg.SetBody("text/plain", fmt.Sprintf(
		"An account has been created for you.\n\n"+
			"Sign in with this email address and the temporary password below, then change it.\n\n"+
			"Temporary password: %s\n", tempPassword))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send vendor invite: %w", err)
	}
	return nil
}

// NopMailer stands in when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendVendorInvite(string, string) error { return nil }
