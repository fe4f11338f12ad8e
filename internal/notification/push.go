// internal/notification/push.go

package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushService delivers push notifications to devices
type PushService interface {
	SendPush(ctx context.Context, msg *PushMessage) error
}

// FCMPushService sends push notifications through Firebase Cloud Messaging
type FCMPushService struct {
	client *messaging.Client
	logger *slog.Logger
}

// NewFCMPushService creates an FCM client from a credentials file or inline
// JSON credentials
func NewFCMPushService(ctx context.Context, credentialsFile, credentialsJSON string, logger *slog.Logger) (*FCMPushService, error) {
	var opt option.ClientOption
	switch {
	case credentialsFile != "":
		opt = option.WithCredentialsFile(credentialsFile)
	case credentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	default:
		return nil, errors.New("firebase credentials file or JSON must be set")
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMPushService{client: client, logger: logger}, nil
}

// SendPush sends msg to every token. Failures for individual tokens are
// logged; the call fails only when no device accepted it.
func (s *FCMPushService) SendPush(ctx context.Context, msg *PushMessage) error {
	if len(msg.Tokens) == 0 {
		return errors.New("no device tokens")
	}

	resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
		},
	})
	if err != nil {
		return fmt.Errorf("fcm send failed: %w", err)
	}

	for i, r := range resp.Responses {
		if r.Error != nil {
			s.logger.Warn("push delivery failed",
				slog.Int("token_index", i),
				slog.Bool("unregistered", messaging.IsUnregistered(r.Error)),
				slog.Any("error", r.Error))
		}
	}

	if resp.SuccessCount == 0 {
		return fmt.Errorf("fcm delivered to none of %d devices", len(msg.Tokens))
	}
	return nil
}

// MockPushService records push messages instead of sending them
type MockPushService struct {
	mu     sync.Mutex
	sent   []*PushMessage
	logger *slog.Logger
}

// NewMockPushService creates a mock push service
func NewMockPushService(logger *slog.Logger) *MockPushService {
	return &MockPushService{logger: logger}
}

func (m *MockPushService) SendPush(_ context.Context, msg *PushMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info("mock push", slog.Int("devices", len(msg.Tokens)), slog.String("title", msg.Title))
	return nil
}

// Sent returns the recorded push messages
func (m *MockPushService) Sent() []*PushMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*PushMessage(nil), m.sent...)
}
