package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"packtrail/internal/config"
	"packtrail/internal/middleware"
	"packtrail/internal/observability"
)

// Mailer delivers transactional mail: verification and password-reset links.
type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// smtpMailer sends through a plain SMTP relay.
type smtpMailer struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	baseURL string
}

// logMailer logs the link instead of sending. Used in development and when no
// SMTP host is configured.
type logMailer struct {
	baseURL string
}

// NewMailer picks the SMTP mailer when SMTP_HOST is configured, otherwise a
// logging mailer so auth flows stay usable in development.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{baseURL: cfg.AppBaseURL}
	}
	return &smtpMailer{
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		user:    cfg.SMTPUser,
		pass:    cfg.SMTPPassword,
		from:    cfg.MailFrom,
		baseURL: cfg.AppBaseURL,
	}
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.from, to, subject, body,
	))

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg)
}

func (m *smtpMailer) SendVerification(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", m.baseURL, token)
	err := m.send(to, "Verify your PackTrail account",
		"Welcome to PackTrail!\n\nVerify your email address by opening this link:\n\n"+link+"\n")
	observability.RecordMail("verification", err)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "verification mail failed", slog.String("error", err.Error()))
	}
	return err
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	err := m.send(to, "Reset your PackTrail password",
		"A password reset was requested for your account.\n\nReset it here:\n\n"+link+
			"\n\nIf you did not request this, ignore this mail.\n")
	observability.RecordMail("password_reset", err)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "password reset mail failed", slog.String("error", err.Error()))
	}
	return err
}

func (m *logMailer) SendVerification(ctx context.Context, to, token string) error {
	middleware.Logger.InfoContext(ctx, "verification mail (log only)",
		slog.String("to", to),
		slog.String("link", fmt.Sprintf("%s/verify?token=%s", m.baseURL, token)))
	observability.RecordMail("verification", nil)
	return nil
}

func (m *logMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	middleware.Logger.InfoContext(ctx, "password reset mail (log only)",
		slog.String("to", to),
		slog.String("link", fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)))
	observability.RecordMail("password_reset", nil)
	return nil
}
