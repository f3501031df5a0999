package adapter

import "errors"

// HTTP status sentinels.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrUnprocessable       = errors.New("unprocessable stored state")
	ErrLoopDetected        = errors.New("loop detected")
	ErrInternalServerError = errors.New("internal server error")
	ErrServiceUnavailable  = errors.New("service unavailable")
)

// Transport and session sentinels.
var (
	// ErrNetwork means the request never got an HTTP answer.
	ErrNetwork = errors.New("network failure")
	// ErrTimeout means the request did not finish in time.
	ErrTimeout = errors.New("request timed out")
	// ErrAborted means the request was cut off mid-flight, which happens
	// routinely right after the host resumes from suspension.
	ErrAborted = errors.New("request aborted")
	// ErrNoSession means there is no session to use or restore.
	ErrNoSession = errors.New("no session")
	// ErrMalformedResponse means a 2xx answer could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)
