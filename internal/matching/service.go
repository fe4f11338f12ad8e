// internal/matching/service.go

package matching

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/fitbuddy-backend/internal/config"
	"github.com/imadgeboyega/fitbuddy-backend/internal/notification"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

// Service defines the matching service interface
type Service interface {
	FindPotentialMatches(ctx context.Context, requesterID string, opts Options) ([]*ScoredCandidate, error)
	Suggestions(ctx context.Context, requesterID string, distanceKm float64) ([]*Suggestion, error)
	DefaultOptions() Options

	CreateMatch(ctx context.Context, initiatorID, receiverID string) (*Match, error)
	RespondToMatch(ctx context.Context, userID, matchID string, accept bool) (*Match, error)
	Unmatch(ctx context.Context, userID, matchID string) error
	GetMatch(ctx context.Context, userID, matchID string) (*Match, error)
	ListActiveMatches(ctx context.Context, userID string) ([]*Match, error)
	ListPendingMatches(ctx context.Context, userID string) ([]*Match, error)
	ExpireStaleMatches(ctx context.Context) error
}

// Notifier delivers match activity to users
type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) error
}

type service struct {
	matcher  *Matcher
	repo     Repository
	profiles ProfileSource
	notifier Notifier
	cfg      config.MatchingConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new matching service
func NewService(repo Repository, profiles ProfileSource, notifier Notifier, cfg config.MatchingConfig, logger *slog.Logger) Service {
	return &service{
		matcher:  NewMatcher(profiles, repo, cfg, logger),
		repo:     repo,
		profiles: profiles,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) FindPotentialMatches(ctx context.Context, requesterID string, opts Options) ([]*ScoredCandidate, error) {
	return s.matcher.FindPotentialMatches(ctx, requesterID, opts)
}

// DefaultOptions are the options behind the utility find endpoint
func (s *service) DefaultOptions() Options {
	return Options{
		MaxDistanceKm: s.cfg.FindDistanceKm,
		Limit:         s.cfg.DefaultLimit,
		MinScore:      s.cfg.MinScore,
	}
}

// Suggestions ranks partners within distanceKm using the configured limit and
// minimum score
func (s *service) Suggestions(ctx context.Context, requesterID string, distanceKm float64) ([]*Suggestion, error) {
	ranked, err := s.matcher.FindPotentialMatches(ctx, requesterID, Options{
		MaxDistanceKm: distanceKm,
		Limit:         s.cfg.DefaultLimit,
		MinScore:      s.cfg.MinScore,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]*Suggestion, 0, len(ranked))
	for _, r := range ranked {
		suggestions = append(suggestions, &Suggestion{
			User:                 r.User,
			MatchScore:           r.Score,
			CompatibilityFactors: r.Details,
		})
	}
	return suggestions, nil
}

func (s *service) CreateMatch(ctx context.Context, initiatorID, receiverID string) (*Match, error) {
	if initiatorID == receiverID {
		return nil, ErrSelfMatch
	}

	initiator, err := s.loadProfile(ctx, initiatorID)
	if err != nil {
		return nil, err
	}
	if !initiator.IsProfileComplete {
		return nil, ErrProfileIncomplete
	}

	receiver, err := s.loadProfile(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !receiver.IsMatchable() || receiver.UserType != profile.UserTypeUser {
		return nil, ErrReceiverUnavailable
	}

	exists, err := s.repo.ExistsBetween(ctx, initiatorID, receiverID)
	if err != nil {
		return nil, unavailable("check existing match", err)
	}
	if exists {
		return nil, ErrMatchExists
	}

	sub := Compatibility(initiator, receiver)
	m := &Match{
		ID:                   uuid.NewString(),
		InitiatorID:          initiatorID,
		ReceiverID:           receiverID,
		Status:               StatusPending,
		MatchScore:           sub.Total(),
		CompatibilityFactors: sub.Factors(),
		IsActive:             true,
		ExpiresAt:            s.now().Add(s.cfg.MatchExpiry),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, storeErr("create match", err)
	}

	recordMatchCreated()
	s.logger.Info("match requested",
		slog.String("match_id", m.ID),
		slog.String("initiator_id", initiatorID),
		slog.String("receiver_id", receiverID),
		slog.Int("score", m.MatchScore))

	s.notify(ctx, &notification.Notification{
		RecipientID: receiverID,
		Type:        notification.TypeMatchRequest,
		Data: map[string]string{
			"matchId":    m.ID,
			"senderId":   initiatorID,
			"senderName": initiator.Name,
			"matchScore": strconv.Itoa(m.MatchScore),
		},
	})

	return m, nil
}

func (s *service) RespondToMatch(ctx context.Context, userID, matchID string, accept bool) (*Match, error) {
	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, storeErr("get match", err)
	}
	if m.ReceiverID != userID {
		return nil, ErrNotReceiver
	}
	if m.Status != StatusPending || !m.IsActive {
		return nil, ErrMatchNotPending
	}
	now := s.now()
	if !now.Before(m.ExpiresAt) {
		return nil, ErrMatchExpired
	}

	status := StatusRejected
	if accept {
		status = StatusAccepted
	}

	updated, err := s.repo.Respond(ctx, matchID, status, now)
	if err != nil {
		return nil, storeErr("respond to match", err)
	}

	recordMatchResponse(status, 1)

	responderName := ""
	if responder, err := s.profiles.GetByID(ctx, userID); err == nil {
		responderName = responder.Name
	}
	s.notify(ctx, &notification.Notification{
		RecipientID: m.InitiatorID,
		Type:        notification.TypeMatchResponse,
		Data: map[string]string{
			"matchId":    m.ID,
			"senderId":   userID,
			"senderName": responderName,
			"status":     string(status),
		},
	})

	return updated, nil
}

func (s *service) Unmatch(ctx context.Context, userID, matchID string) error {
	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return storeErr("get match", err)
	}
	if !m.Involves(userID) {
		return ErrNotParticipant
	}
	if err := s.repo.Deactivate(ctx, matchID); err != nil {
		return storeErr("unmatch", err)
	}

	s.logger.Info("unmatched", slog.String("match_id", matchID), slog.String("user_id", userID))
	return nil
}

func (s *service) GetMatch(ctx context.Context, userID, matchID string) (*Match, error) {
	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, storeErr("get match", err)
	}
	if !m.Involves(userID) {
		return nil, ErrNotParticipant
	}
	s.attachCounterpart(ctx, userID, m)
	return m, nil
}

func (s *service) ListActiveMatches(ctx context.Context, userID string) ([]*Match, error) {
	return s.list(ctx, userID, StatusAccepted)
}

func (s *service) ListPendingMatches(ctx context.Context, userID string) ([]*Match, error) {
	return s.list(ctx, userID, StatusPending)
}

func (s *service) list(ctx context.Context, userID string, status MatchStatus) ([]*Match, error) {
	matches, err := s.repo.ListForUser(ctx, userID, status)
	if err != nil {
		return nil, storeErr("list matches", err)
	}
	for _, m := range matches {
		s.attachCounterpart(ctx, userID, m)
	}
	if matches == nil {
		matches = []*Match{}
	}
	return matches, nil
}

// ExpireStaleMatches moves pending matches past their expiry to expired
func (s *service) ExpireStaleMatches(ctx context.Context) error {
	n, err := s.repo.ExpirePending(ctx, s.now())
	if err != nil {
		return storeErr("expire matches", err)
	}
	if n > 0 {
		recordMatchResponse(StatusExpired, int(n))
		s.logger.Info("expired stale match requests", slog.Int64("count", n))
	}
	return nil
}

func (s *service) loadProfile(ctx context.Context, id string) (*profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable("load profile", err)
	}
	return p, nil
}

func (s *service) attachCounterpart(ctx context.Context, userID string, m *Match) {
	other, err := s.profiles.GetByID(ctx, m.Counterpart(userID))
	if err != nil {
		s.logger.Warn("failed to load match counterpart",
			slog.String("match_id", m.ID), slog.Any("error", err))
		return
	}
	m.OtherUser = other.Public()
}

// notify never fails the calling operation; delivery problems are logged
func (s *service) notify(ctx context.Context, n *notification.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification failed",
			slog.String("type", string(n.Type)),
			slog.String("user_id", n.RecipientID),
			slog.Any("error", err))
	}
}

// storeErr passes domain errors through and marks everything else retryable
func storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return unavailable(op, err)
}
