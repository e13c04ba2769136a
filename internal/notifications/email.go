package notifications

import (
	"fmt"
	"net/smtp"

	"github.com/rsalgueiro/truck-booking/pkg/config"
)

// EmailClient sends plain text email over SMTP
type EmailClient struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailClient creates a new SMTP email client
func NewEmailClient(cfg config.SMTPConfig) *EmailClient {
	return &EmailClient{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// SendEmail sends a plain text email to a single recipient
func (e *EmailClient) SendEmail(to, subject, body string) error {
	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", e.from, to, subject, body))

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	if err := smtp.SendMail(addr, auth, e.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
