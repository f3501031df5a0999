package store

import "errors"

// Domain errors returned by repositories.
var (
	// ErrLoginAlreadyExists is returned when a user with the same login exists.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when no user matches the lookup.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrRecordNotFound is returned when a record does not exist or belongs
	// to another owner.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrRefreshTokenNotFound is returned for unknown or expired refresh tokens.
	ErrRefreshTokenNotFound = errors.New("refresh token was not found")

	// ErrCacheMiss is returned by the local cache for absent keys.
	ErrCacheMiss = errors.New("cache entry not found")

	// ErrRetryable marks transient database failures.
	ErrRetryable = errors.New("transient database error")
)

// Infrastructure errors wrapped around driver errors.
var (
	ErrBuildingSQLQuery = errors.New("error building sql query")

	ErrExecutingQuery = errors.New("error executing sql query")

	ErrScanningRow = errors.New("failed to scan row")

	ErrScanningRows = errors.New("failed to scan rows")

	ErrEncodingValue = errors.New("failed to encode value")

	ErrDecodingValue = errors.New("failed to decode value")
)
