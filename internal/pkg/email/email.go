package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService sends the transactional emails of the auth and approval flows.
type EmailService interface {
	SendOTP(to, name, code string, expiresIn time.Duration) error
	SendAccountDecision(to, name string, approved bool, loginURL string) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	backoff   time.Duration
}

func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff:   time.Second,
	}, nil
}

type otpEmailData struct {
	Name      string
	Code      string
	ExpiresIn int
}

func (s *emailServiceImpl) SendOTP(to, name, code string, expiresIn time.Duration) error {
	data := otpEmailData{
		Name:      name,
		Code:      code,
		ExpiresIn: int(expiresIn.Minutes()),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "otp.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Your OfficeCorner verification code", body.String())
}

type accountDecisionEmailData struct {
	Name     string
	Approved bool
	LoginURL string
}

func (s *emailServiceImpl) SendAccountDecision(to, name string, approved bool, loginURL string) error {
	data := accountDecisionEmailData{
		Name:     name,
		Approved: approved,
		LoginURL: loginURL,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "account_status.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := "Your OfficeCorner account was not approved"
	if approved {
		subject = "Your OfficeCorner account is approved"
	}
	return s.sendHTML(to, subject, body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// 1s, 2s, 4s
		if attempt < maxRetries {
			time.Sleep(s.backoff << (attempt - 1))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
