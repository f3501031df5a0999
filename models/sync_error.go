package models

import "fmt"

// ErrorClass is the classification every remote failure is converted to
// before it reaches the save coordinator.
type ErrorClass string

const (
	// ErrorClassNone is the zero class.
	ErrorClassNone ErrorClass = ""
	// ErrorClassNetwork covers timeouts, connection failures and expired
	// sessions. The edit stays in the local cache and is retried.
	ErrorClassNetwork ErrorClass = "network"
	// ErrorClassValidation covers requests rejected by the remote store.
	// Not retried automatically.
	ErrorClassValidation ErrorClass = "validation"
	// ErrorClassCritical covers integrity failures reported by the remote
	// store. The UI must offer remediation.
	ErrorClassCritical ErrorClass = "critical"
)

// SyncError is a classified remote failure.
type SyncError struct {
	Class ErrorClass
	// Op is the remote operation that failed (save, list, delete).
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Class, e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
