package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/crypto"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// refreshTokenBytes is the entropy of an issued refresh token.
const refreshTokenBytes = 32

// authService is the concrete implementation of AuthService.
// It handles user registration, credential verification, and the lifecycle
// of access and refresh tokens.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// refreshTokenRepository stores keyed hashes of issued refresh tokens.
	refreshTokenRepository store.RefreshTokenRepository

	// hasher turns passwords into argon2id hashes and verifies them.
	hasher crypto.PasswordHasher

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	// It also keys the refresh token hashes.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// refreshTokenDuration controls how long a refresh token can be exchanged.
	refreshTokenDuration time.Duration

	// newAccountStatus is assigned to every registered user.
	newAccountStatus models.AccountStatus

	clock  utils.Clock
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// repositories and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(
	userRepository store.UserRepository,
	refreshTokenRepository store.RefreshTokenRepository,
	hasher crypto.PasswordHasher,
	cfg config.ServerAuth,
	clock utils.Clock,
	logger *logger.Logger,
) AuthService {
	status := models.AccountStatus(cfg.NewAccountStatus)
	if status == "" {
		status = models.AccountActive
	}

	return &authService{
		userRepository:         userRepository,
		refreshTokenRepository: refreshTokenRepository,
		hasher:                 hasher,
		tokenSignKey:           cfg.TokenSignKey,
		tokenIssuer:            cfg.TokenIssuer,
		tokenDuration:          cfg.TokenDuration,
		refreshTokenDuration:   cfg.RefreshTokenDuration,
		newAccountStatus:       status,
		clock:                  clock,
		logger:                 logger,
	}
}

// RegisterUser creates a new user account.
//
// It validates that both Login and Password are non-empty, replaces the
// password with its argon2id hash and delegates persistence to the
// UserRepository.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - A wrapped storage error if the repository call fails (e.g. login already
//     taken, see store.ErrLoginAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.Password == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	hash, err := a.hasher.Hash(user.Password)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}
	user.Password = hash
	user.Status = a.newAccountStatus

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	log.Info().Int64("user_id", registeredUser.UserID).Str("status", string(registeredUser.Status)).Msg("user registered")
	registeredUser.Password = ""
	return registeredUser, nil
}

// Login authenticates an existing user.
//
// An unknown login and a wrong password both yield ErrWrongPassword, so the
// caller cannot probe which logins exist. Suspended accounts can still log
// in; the status travels in the session and the client gates saves on it.
func (a *authService) Login(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.Password == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByLogin(ctx, user.Login)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Warn().Str("login", user.Login).Msg("login of unknown user")
		return models.User{}, ErrWrongPassword
	}
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	ok, err := a.hasher.Verify(user.Password, foundUser.Password)
	if err != nil {
		log.Err(err).Int64("id", foundUser.UserID).Msg("stored password hash is unreadable")
		return models.User{}, fmt.Errorf("password verification failed: %w", err)
	}
	if !ok {
		log.Warn().Int64("id", foundUser.UserID).Str("login", foundUser.Login).Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	foundUser.Password = ""
	return foundUser, nil
}

// GetUser returns the current state of a user, including its status.
func (a *authService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("user search by id failed")
		return models.User{}, fmt.Errorf("user search by id failed: %w", err)
	}

	user.Password = ""
	return user, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim, and expires after tokenDuration.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string. Any validation failure
// (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("token rejected")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// IssueRefreshToken implements [AuthService].
func (a *authService) IssueRefreshToken(ctx context.Context, user models.User) (string, error) {
	plain, err := utils.RandomToken(refreshTokenBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	err = a.refreshTokenRepository.SaveRefreshToken(ctx, models.RefreshToken{
		UserID:    user.UserID,
		TokenHash: a.hashRefreshToken(plain),
		ExpiresAt: a.clock.Now().Add(a.refreshTokenDuration),
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", user.UserID).Msg("saving refresh token failed")
		return "", fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return plain, nil
}

// Refresh implements [AuthService]. The presented token is single use: it is
// deleted before the replacement is issued.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (models.User, string, error) {
	log := logger.FromContext(ctx)

	if refreshToken == "" {
		return models.User{}, "", ErrRefreshTokenInvalid
	}

	hash := a.hashRefreshToken(refreshToken)
	stored, err := a.refreshTokenRepository.FindRefreshToken(ctx, hash)
	if errors.Is(err, store.ErrRefreshTokenNotFound) {
		log.Warn().Msg("unknown refresh token presented")
		return models.User{}, "", ErrRefreshTokenInvalid
	}
	if err != nil {
		log.Err(err).Msg("refresh token lookup failed")
		return models.User{}, "", fmt.Errorf("refresh token lookup failed: %w", err)
	}

	if err = a.refreshTokenRepository.DeleteRefreshToken(ctx, hash); err != nil {
		log.Err(err).Int64("user_id", stored.UserID).Msg("refresh token deletion failed")
		return models.User{}, "", fmt.Errorf("refresh token deletion failed: %w", err)
	}

	if !a.clock.Now().Before(stored.ExpiresAt) {
		log.Info().Int64("user_id", stored.UserID).Msg("expired refresh token presented")
		return models.User{}, "", ErrRefreshTokenInvalid
	}

	user, err := a.GetUser(ctx, stored.UserID)
	if err != nil {
		return models.User{}, "", err
	}

	next, err := a.IssueRefreshToken(ctx, user)
	if err != nil {
		return models.User{}, "", err
	}

	return user, next, nil
}

func (a *authService) hashRefreshToken(token string) string {
	return utils.HashString(token, a.tokenSignKey)
}
