package services

import (
	"log"
	"strings"

	"salesor-api/config"

	"gopkg.in/gomail.v2"
)

// MailSender delivers outreach emails to leads.
type MailSender interface {
	Send(to, subject, text, html string) error
}

// NewMailSender returns an SMTP sender, or a console-logging stand-in when
// the SMTP credentials are missing or still placeholders.
func NewMailSender(cfg *config.Config) MailSender {
	if isPlaceholder(cfg.SMTPUser) || isPlaceholder(cfg.SMTPPass) {
		log.Println("Email credentials not configured, falling back to console logging for emails")
		return &ConsoleMailSender{}
	}
	return &SMTPMailSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

func isPlaceholder(val string) bool {
	return val == "" || val == "your_smtp_user" || val == "your_smtp_pass" || strings.Contains(val, "placeholder")
}

// SMTPMailSender sends mail through a real SMTP server.
type SMTPMailSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *SMTPMailSender) Send(to, subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}
	return s.dialer.DialAndSend(m)
}

// ConsoleMailSender logs mail instead of sending it.
type ConsoleMailSender struct{}

func (s *ConsoleMailSender) Send(to, subject, text, _ string) error {
	log.Printf("[MOCK EMAIL] To: %s | Subject: %s | Body: %s", to, subject, text)
	return nil
}
