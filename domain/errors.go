package domain

import (
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// ErrDefaultBoard is returned when a caller attempts to remove the default board.
var ErrDefaultBoard = errors.New("the default board cannot be deleted")

// PersistenceError wraps a failed remote read, write or subscribe operation
// with the storage error code so callers can surface a localized message.
type PersistenceError struct {
	Code string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("persistence failure (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("persistence failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// WrapPersistence converts a storage error into a PersistenceError, recovering
// the service error code when the underlying transport exposes one.
func WrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	code := ""
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		code = respErr.ErrorCode
	}
	return &PersistenceError{Code: code, Err: err}
}

var persistenceMessages = map[string]string{
	"AuthorizationFailure":      "permission denied",
	"AuthenticationFailed":      "please sign in again",
	"ResourceNotFound":          "the requested item no longer exists",
	"EntityAlreadyExists":       "the item already exists",
	"TableNotFound":             "storage is not provisioned",
	"ServerBusy":                "too many requests, please try again shortly",
	"OperationTimedOut":         "the operation timed out",
	"InternalError":             "the service is temporarily unavailable",
	"ServiceUnavailable":        "the service is temporarily unavailable",
	"ConditionNotMet":           "the item changed while saving, please retry",
	"InvalidAuthenticationInfo": "please sign in again",
}

// UserMessage maps a persistence error code to a message suitable for display.
// Unknown codes fall back to a generic failure message.
func UserMessage(code string) string {
	if msg, ok := persistenceMessages[code]; ok {
		return msg
	}
	return "the operation failed, please try again later"
}
