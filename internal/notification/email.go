// internal/notification/email.go

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// EmailService sends transactional email
type EmailService interface {
	SendEmail(ctx context.Context, msg *EmailMessage) error
}

const sendGridHost = "https://api.sendgrid.com"

// SendGridEmailService sends email through the SendGrid v3 API
type SendGridEmailService struct {
	apiKey   string
	host     string
	from     string
	fromName string
}

// NewSendGridEmailService creates a new SendGrid email service
func NewSendGridEmailService(apiKey, from, fromName string) (*SendGridEmailService, error) {
	if apiKey == "" || from == "" {
		return nil, fmt.Errorf("incomplete SendGrid configuration")
	}
	return &SendGridEmailService{apiKey: apiKey, host: sendGridHost, from: from, fromName: fromName}, nil
}

// SendEmail sends a single email via SendGrid
func (s *SendGridEmailService) SendEmail(ctx context.Context, msg *EmailMessage) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		msg.HTML,
	)

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SMTPEmailService sends email through an SMTP relay
type SMTPEmailService struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(host string, port int, username, password, from, fromName string) (*SMTPEmailService, error) {
	if host == "" || username == "" || password == "" || from == "" {
		return nil, fmt.Errorf("incomplete SMTP configuration")
	}
	return &SMTPEmailService{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}, nil
}

// SendEmail sends a single email over SMTP
func (s *SMTPEmailService) SendEmail(_ context.Context, msg *EmailMessage) error {
	if err := s.dialer.DialAndSend(s.buildMessage(msg)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (s *SMTPEmailService) buildMessage(msg *EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, s.fromName))
	if msg.ToName != "" {
		m.SetHeader("To", m.FormatAddress(msg.To, msg.ToName))
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}
	return m
}

// MockEmailService records emails instead of sending them
type MockEmailService struct {
	mu     sync.Mutex
	sent   []*EmailMessage
	logger *slog.Logger
}

// NewMockEmailService creates a mock email service
func NewMockEmailService(logger *slog.Logger) *MockEmailService {
	return &MockEmailService{logger: logger}
}

func (m *MockEmailService) SendEmail(_ context.Context, msg *EmailMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info("mock email", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}

// Sent returns the recorded emails
func (m *MockEmailService) Sent() []*EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*EmailMessage(nil), m.sent...)
}
