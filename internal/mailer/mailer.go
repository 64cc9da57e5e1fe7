// Package mailer renders e-mail templates and delivers them over SMTP.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

type Mailer interface {
	Send(recipient, templateFile string, data any) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type SMTPMailer struct {
	dialer *mail.Dialer
	sender string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 5 * time.Second

	return &SMTPMailer{
		dialer: dialer,
		sender: cfg.Sender,
	}
}

// Send renders the subject, plainBody and htmlBody blocks of templateFile
// with data and sends the result. Delivery is retried up to three times.
func (m *SMTPMailer) Send(recipient, templateFile string, data any) error {
	subject, plainBody, htmlBody, err := render(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)

	for i := 1; i <= 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("failed to send %s to %s: %w", templateFile, recipient, err)
}

// LogMailer writes rendered messages to the log instead of sending them.
// It is used when no SMTP server is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{
		logger: logger,
	}
}

func (m *LogMailer) Send(recipient, templateFile string, data any) error {
	subject, plainBody, _, err := render(templateFile, data)
	if err != nil {
		return err
	}

	m.logger.Info("mail not sent, no smtp server configured",
		"recipient", recipient,
		"subject", subject,
		"body", plainBody)

	return nil
}

func render(templateFile string, data any) (subject, plainBody, htmlBody string, err error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to parse template %s: %w", templateFile, err)
	}

	blocks := []struct {
		name string
		dst  *string
	}{
		{"subject", &subject},
		{"plainBody", &plainBody},
		{"htmlBody", &htmlBody},
	}

	for _, block := range blocks {
		buf := new(bytes.Buffer)
		if err := tmpl.ExecuteTemplate(buf, block.name, data); err != nil {
			return "", "", "", fmt.Errorf("failed to render %s of %s: %w", block.name, templateFile, err)
		}
		*block.dst = buf.String()
	}

	return subject, plainBody, htmlBody, nil
}
