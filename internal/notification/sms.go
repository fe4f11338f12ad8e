// internal/notification/sms.go

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService sends text messages
type SMSService interface {
	SendSMS(ctx context.Context, msg *SMSMessage) error
}

// TwilioSMSService sends SMS through Twilio
type TwilioSMSService struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, from string) (*TwilioSMSService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("incomplete Twilio configuration")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSService{client: client, from: from}, nil
}

// SendSMS sends a single SMS. The Twilio client has no context support, so
// ctx is only checked before the call.
func (s *TwilioSMSService) SendSMS(ctx context.Context, msg *SMSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}

// MockSMSService records messages instead of sending them
type MockSMSService struct {
	mu     sync.Mutex
	sent   []*SMSMessage
	logger *slog.Logger
}

// NewMockSMSService creates a mock SMS service
func NewMockSMSService(logger *slog.Logger) *MockSMSService {
	return &MockSMSService{logger: logger}
}

func (m *MockSMSService) SendSMS(_ context.Context, msg *SMSMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info("mock sms", slog.String("to", msg.To))
	return nil
}

// Sent returns the recorded messages
func (m *MockSMSService) Sent() []*SMSMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*SMSMessage(nil), m.sent...)
}
