package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

// SMTPConfig represents SMTP server settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"omitempty,min=1,max=65535"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// EmailConfig represents email notification settings
type EmailConfig struct {
	Enabled bool       `yaml:"enabled"`
	SMTP    SMTPConfig `yaml:"smtp"`
	From    string     `yaml:"from" validate:"required_if=Enabled true"`
	To      []string   `yaml:"to,omitempty" validate:"required_if=Enabled true,dive,email"`
	Subject string     `yaml:"subject"`
}

// sender matches (*email.Email).Send so tests can capture messages
type sender func(e *email.Email, addr string, a smtp.Auth) error

// EmailNotifier sends messages through SMTP
type EmailNotifier struct {
	config EmailConfig
	auth   smtp.Auth
	send   sender
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.Subject == "" {
		cfg.Subject = "UDI appointment check"
	}
	return &EmailNotifier{
		config: cfg,
		auth:   smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host),
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}
}

func (e *EmailNotifier) Notify(_ context.Context, userID, text string) error {
	msg := e.build(userID, text, time.Now())
	addr := fmt.Sprintf("%s:%d", e.config.SMTP.Host, e.config.SMTP.Port)
	if err := e.send(msg, addr, e.auth); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *EmailNotifier) build(userID, text string, at time.Time) *email.Email {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("User: %s\n", userID))
	sb.WriteString(fmt.Sprintf("Checked at: %s\n", at.Format("2006-01-02 15:04:05")))

	msg := email.NewEmail()
	msg.From = e.config.From
	msg.To = e.config.To
	msg.Subject = e.config.Subject
	msg.Text = []byte(sb.String())
	return msg
}
