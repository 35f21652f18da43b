package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for use case layer
var (
	// ErrActionInProgress rejects a second trigger of an action whose request is still pending.
	ErrActionInProgress = goerr.New("action already in progress")
	// ErrNotConfirmed is returned when a destructive action was requested without confirmation.
	ErrNotConfirmed = goerr.New("action not confirmed")
)

// Context keys for error values
const (
	ActionKey     = "action"
	LogIDKey      = "log_id"
	FileKey       = "file"
	ReportIDKey   = "report_id"
	ReportTypeKey = "report_type"
)

// Alert is an error that carries the message a user should see for it.
type Alert struct {
	Message string
	cause   error
}

func (a *Alert) Error() string {
	if a.cause == nil {
		return a.Message
	}
	return a.Message + ": " + a.cause.Error()
}

func (a *Alert) Unwrap() error {
	return a.cause
}

func newAlert(message string, cause error) error {
	return &Alert{Message: message, cause: cause}
}

// AlertMessage returns the user facing message carried by err, or fallback when
// err carries none. A nil err yields "".
func AlertMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var alert *Alert
	if errors.As(err, &alert) {
		return alert.Message
	}
	return fallback
}

func inProgress(action string) error {
	return newAlert(MsgActionInProgress, goerr.Wrap(ErrActionInProgress, "duplicate trigger rejected", goerr.V(ActionKey, action)))
}
