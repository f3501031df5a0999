package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/sethvargo/go-retry"
)

// SessionConfig holds the first-login credentials and the restore backoff.
type SessionConfig struct {
	Login    string
	Password string
	// RestoreAttempts is the number of retries after an aborted request.
	RestoreAttempts uint64
	// RestoreBackoff is the first retry delay; it doubles on every retry.
	RestoreBackoff time.Duration
}

type clientSessionService struct {
	provider adapter.SessionProvider
	cache    store.LocalCache
	cfg      SessionConfig
	logger   *logger.Logger

	mu      sync.RWMutex
	current *models.Session
}

// NewClientSessionService creates a session service on top of provider.
func NewClientSessionService(provider adapter.SessionProvider, cache store.LocalCache, cfg SessionConfig, log *logger.Logger) ClientSessionService {
	return &clientSessionService{provider: provider, cache: cache, cfg: cfg, logger: log}
}

// Start implements [ClientSessionService]. A cached session survives an
// unreachable server: saves then stay local until a wake restores it.
func (s *clientSessionService) Start(ctx context.Context) error {
	log := s.logger.With().Str("func", "clientSessionService.Start").Logger()

	var cached models.Session
	err := s.cache.Get(ctx, cacheKeySession, &cached)
	switch {
	case err == nil:
		s.provider.SetSession(&cached)
		s.set(&cached)
	case errors.Is(err, store.ErrCacheMiss):
	default:
		return fmt.Errorf("read cached session: %w", err)
	}

	restoreErr := s.Restore(ctx)
	if restoreErr == nil {
		log.Info().Int64("user_id", s.Current().UserID).Msg("session restored")
		return nil
	}

	if err == nil && isSoftSessionError(restoreErr) {
		log.Warn().Err(restoreErr).Msg("server unreachable, using cached session")
		return nil
	}

	if s.cfg.Login == "" || s.cfg.Password == "" {
		return fmt.Errorf("%w: %w", ErrNoCredentials, restoreErr)
	}

	log.Info().Str("login", s.cfg.Login).Msg("no usable session, logging in with configured credentials")
	return s.Login(ctx, s.cfg.Login, s.cfg.Password)
}

// Restore implements [ClientSessionService]. GetSession confirms the access
// token; when it was rejected the refresh token is exchanged once.
func (s *clientSessionService) Restore(ctx context.Context) error {
	backoff := retry.WithMaxRetries(s.cfg.RestoreAttempts, retry.NewExponential(s.cfg.RestoreBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		session, err := s.confirm(ctx)
		if errors.Is(err, adapter.ErrAborted) {
			s.logger.Debug().
				Str("func", "clientSessionService.Restore").
				Int("attempt", attempt).
				Err(err).
				Msg("session request aborted, retrying")
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}

		s.set(session)
		return nil
	})
	if err != nil {
		s.logger.Err(err).Str("func", "clientSessionService.Restore").Int("attempts", attempt).Msg("session restore failed")
	}
	return err
}

func (s *clientSessionService) confirm(ctx context.Context) (*models.Session, error) {
	session, err := s.provider.GetSession(ctx)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, adapter.ErrNoSession) {
		return nil, err
	}

	ok, err := s.provider.RestoreSession(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrNoSessionAfterRestore, adapter.ErrNoSession)
	}

	return s.provider.GetSession(ctx)
}

// Login implements [ClientSessionService].
func (s *clientSessionService) Login(ctx context.Context, login, password string) error {
	session, err := s.provider.Login(ctx, login, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.set(session)
	return nil
}

// Register implements [ClientSessionService].
func (s *clientSessionService) Register(ctx context.Context, login, password string) error {
	session, err := s.provider.Register(ctx, login, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.set(session)
	return nil
}

func (s *clientSessionService) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *clientSessionService) set(session *models.Session) {
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	if err := s.cache.Put(context.Background(), cacheKeySession, session); err != nil {
		s.logger.Err(err).Str("func", "clientSessionService.set").Msg("failed to cache session")
	}
}

// isSoftSessionError reports whether a failed restore leaves a cached
// session usable for local work.
func isSoftSessionError(err error) bool {
	return ClassifyError("session", err).Class == models.ErrorClassNetwork &&
		!errors.Is(err, adapter.ErrNoSession)
}
