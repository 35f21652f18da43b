package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrValidation marks input rejected before any request is sent.
	ErrValidation = goerr.New("validation failed")
	// ErrNotFound marks a resource the backend or a repository does not know.
	ErrNotFound = goerr.New("not found")
)

// Error value keys
const (
	FieldKey    = "field"
	LogIDKey    = "log_id"
	ReportIDKey = "report_id"
)
