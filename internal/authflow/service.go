package authflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Krusty2272/AiFitnessCoach/internal/initdata"
	"github.com/Krusty2272/AiFitnessCoach/internal/session"
	"github.com/Krusty2272/AiFitnessCoach/internal/users"
	"github.com/Krusty2272/AiFitnessCoach/pkg/logger"
)

var (
	// ErrStoreUnavailable marks a gateway failure on a path that must
	// fail closed: no token is ever issued for an unconfirmed user
	// state. Safe for the caller to retry.
	ErrStoreUnavailable = errors.New("authflow: user store unavailable")

	// ErrNotAuthenticated is returned by Refresh when the presented
	// credential does not resolve to a known user.
	ErrNotAuthenticated = errors.New("authflow: not authenticated")
)

// storeTimeout bounds the one operation in this flow that crosses the
// network. Verification and token work are CPU-only and deterministic.
const storeTimeout = 5 * time.Second

// Service composes payload verification, user persistence and session
// issuance into the login/identify/refresh flows. Stateless; the only
// shared mutable resource is the store behind the Gateway.
type Service struct {
	verifier *initdata.Verifier
	sessions *session.Manager
	store    users.Gateway
	cache    *users.Cache

	defaultLocale string

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(verifier *initdata.Verifier, sessions *session.Manager, store users.Gateway, cache *users.Cache, defaultLocale string) *Service {
	return &Service{
		verifier:      verifier,
		sessions:      sessions,
		store:         store,
		cache:         cache,
		defaultLocale: defaultLocale,
		clock:         time.Now,
	}
}

// LoginResult mirrors what the mini app expects back from a login.
type LoginResult struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        users.User `json:"user"`
}

// Login runs the full launch-payload flow: verify, extract the user,
// upsert the record, mint a session token. Any failure short-circuits;
// verification errors propagate as the initdata sentinels, gateway
// failures as ErrStoreUnavailable.
func (s *Service) Login(ctx context.Context, rawInitData string) (LoginResult, error) {
	claims, err := s.verifier.Verify(rawInitData)
	if err != nil {
		return LoginResult{}, err
	}

	lu, err := initdata.ExtractUser(claims, s.defaultLocale)
	if err != nil {
		return LoginResult{}, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, created, err := s.store.FindOrCreate(storeCtx, lu)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !created {
		u, err = s.store.TouchAndUpdate(storeCtx, u, lu)
		if err != nil {
			return LoginResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	if err := s.cache.Set(ctx, u); err != nil {
		logger.From(ctx).Debug("user cache set failed", "err", err)
	}

	token, err := s.sessions.Issue(s.clock(), u.TelegramID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("authflow: issue token: %w", err)
	}

	logger.From(ctx).Info("user authenticated", "telegram_id", u.TelegramID, "created", created)

	return LoginResult{AccessToken: token, TokenType: "bearer", User: u}, nil
}

// Identify resolves a bearer Authorization header to a user record.
// A missing or malformed header, a failed verification, or an unknown
// subject all yield (nil, nil): many endpoints treat authentication as
// optional input, so "anonymous" is a value, not an error. Callers that
// require authentication must check for nil and fail closed.
func (s *Service) Identify(ctx context.Context, authorizationHeader string) (*users.User, error) {
	token, ok := session.TokenFromHeader(authorizationHeader)
	if !ok {
		return nil, nil
	}

	telegramID, err := s.sessions.Verify(token, s.clock())
	if err != nil {
		// Expired and invalid are both anonymous, logged apart.
		if errors.Is(err, session.ErrTokenExpired) {
			logger.From(ctx).Debug("session token expired")
		} else {
			logger.From(ctx).Warn("session token rejected", "err", err)
		}
		return nil, nil
	}

	if u, ok := s.cache.Get(ctx, telegramID); ok {
		return &u, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := s.store.FindByTelegramID(storeCtx, telegramID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// Valid token for a purged user; treat as anonymous.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := s.cache.Set(ctx, u); err != nil {
		logger.From(ctx).Debug("user cache set failed", "err", err)
	}
	return &u, nil
}

// Refresh issues a fresh token to an already-authenticated caller
// without re-presenting the launch payload.
func (s *Service) Refresh(ctx context.Context, authorizationHeader string) (string, error) {
	u, err := s.Identify(ctx, authorizationHeader)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrNotAuthenticated
	}

	token, err := s.sessions.Issue(s.clock(), u.TelegramID)
	if err != nil {
		return "", fmt.Errorf("authflow: issue token: %w", err)
	}
	return token, nil
}
