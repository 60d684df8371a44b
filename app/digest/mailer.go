package digest

import (
	"fmt"
	"io"

	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers composed digests over SMTP as a single
// multipart/related message.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewMailer(host string, port int, username, password, recipient string) *Mailer {
	dialer := gomail.NewDialer(host, port, username, password)
	if port == 465 {
		dialer.SSL = true
	}

	return &Mailer{
		dialer: dialer,
		from:   username,
		to:     recipient,
	}
}

func (m *Mailer) Send(email *Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)

	if email.Inline != nil {
		inline := email.Inline
		msg.Embed(inline.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(inline.Data)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	return nil
}
