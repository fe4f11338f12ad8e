// internal/notification/service.go

package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imadgeboyega/fitbuddy-backend/internal/presence"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

// Service delivers notifications to users
type Service interface {
	Notify(ctx context.Context, n *Notification) error
}

// RecipientSource looks up contact details for a user
type RecipientSource interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
}

// Realtime pushes events to a user's open connections
type Realtime interface {
	SendToUser(userID string, event presence.Event) bool
}

// Config wires a notification service
type Config struct {
	Recipients RecipientSource
	Presence   presence.Store
	Realtime   Realtime
	Email      EmailService
	SMS        SMSService
	Push       PushService
	Channels   Channels
	AppURL     string
	Logger     *slog.Logger
}

type service struct {
	Config
}

// NewService creates a presence-aware notification dispatcher
func NewService(cfg Config) Service {
	return &service{Config: cfg}
}

// Notify sends n over the websocket when the recipient is connected to this
// instance. Otherwise it falls back to every enabled offline channel the
// recipient can be reached on.
func (s *service) Notify(ctx context.Context, n *Notification) error {
	title, body, err := render(n)
	if err != nil {
		return err
	}

	if s.deliverRealtime(ctx, n, title, body) {
		s.Logger.Debug("notification delivered",
			slog.String("user_id", n.RecipientID),
			slog.String("type", string(n.Type)),
			slog.String("channel", string(ChannelRealtime)))
		return nil
	}

	recipient, err := s.Recipients.GetByID(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	var errs []error
	var used []string

	if s.Channels.Push && s.Push != nil && len(recipient.DeviceTokens) > 0 {
		err := s.Push.SendPush(ctx, &PushMessage{
			Tokens: recipient.DeviceTokens,
			Title:  title,
			Body:   body,
			Data:   payload(n),
		})
		errs = append(errs, channelErr(ChannelPush, err))
		used = append(used, string(ChannelPush))
	}

	if s.Channels.Email && s.Email != nil && recipient.Email != "" {
		html, err := renderEmailHTML(recipient.Name, title, body, s.AppURL)
		if err == nil {
			err = s.Email.SendEmail(ctx, &EmailMessage{
				To:      recipient.Email,
				ToName:  recipient.Name,
				Subject: title,
				Text:    body,
				HTML:    html,
			})
		}
		errs = append(errs, channelErr(ChannelEmail, err))
		used = append(used, string(ChannelEmail))
	}

	if s.Channels.SMS && s.SMS != nil && recipient.Phone != nil && *recipient.Phone != "" {
		err := s.SMS.SendSMS(ctx, &SMSMessage{To: *recipient.Phone, Body: body})
		errs = append(errs, channelErr(ChannelSMS, err))
		used = append(used, string(ChannelSMS))
	}

	s.Logger.Debug("notification delivered",
		slog.String("user_id", n.RecipientID),
		slog.String("type", string(n.Type)),
		slog.Any("channels", used))

	return errors.Join(errs...)
}

func (s *service) deliverRealtime(ctx context.Context, n *Notification, title, body string) bool {
	if s.Presence == nil || s.Realtime == nil {
		return false
	}

	online, err := s.Presence.IsOnline(ctx, n.RecipientID)
	if err != nil {
		s.Logger.Warn("presence lookup failed", slog.String("user_id", n.RecipientID), slog.Any("error", err))
		return false
	}
	if !online {
		return false
	}

	return s.Realtime.SendToUser(n.RecipientID, presence.Event{
		Type: string(n.Type),
		Data: map[string]interface{}{
			"title": title,
			"body":  body,
			"data":  payload(n),
		},
		Timestamp: time.Now(),
	})
}

func payload(n *Notification) map[string]string {
	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	data["type"] = string(n.Type)
	return data
}

func channelErr(ch Channel, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", ch, err)
}
