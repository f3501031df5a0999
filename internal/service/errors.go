package service

import "errors"

// client
var (
	ErrBusy                  = errors.New("a save or record transfer is in progress")
	ErrNoOpenRecord          = errors.New("no record is open")
	ErrRecordNotInList       = errors.New("record not found in the local list")
	ErrUnknownRemediation    = errors.New("unknown remediation action")
	ErrNoCredentials         = errors.New("no stored session and no credentials configured")
	ErrNoSessionAfterRestore = errors.New("session could not be restored")
)

// server
var (
	ErrInvalidDataProvided     = errors.New("invalid data provided")
	ErrWrongPassword           = errors.New("wrong password")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrRefreshTokenInvalid     = errors.New("refresh token is expired or invalid")
	ErrAccountNotActive        = errors.New("account is not active")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
	ErrUnreadableStoredRecord  = errors.New("stored record cannot be decoded")
)
