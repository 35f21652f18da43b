package types

import "github.com/m-mizutani/goerr/v2"

// Status is the workflow state of a construction log.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// DefaultStatus is applied to new logs.
const DefaultStatus = StatusPending

// AllStatuses returns all valid statuses in display order
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled,
	}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled:
		return true
	default:
		return false
	}
}

// Label returns the human readable name of the status
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Tone returns the badge color family used when rendering the status.
// Unknown values render neutral.
func (s Status) Tone() string {
	switch s {
	case StatusCompleted:
		return "green"
	case StatusInProgress:
		return "blue"
	case StatusPending:
		return "yellow"
	default:
		return "gray"
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a string into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid status", goerr.V("status", s))
	}
	return status, nil
}
