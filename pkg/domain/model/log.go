package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/types"
)

// Log is a construction log entry as served by the backend.
type Log struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      types.Status   `json:"status"`
	Priority    types.Priority `json:"priority"`
	Category    types.Category `json:"category,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Date        string         `json:"date,omitempty"`
	Inspector   string         `json:"inspector,omitempty"`
	Location    string         `json:"location,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	AISummary   string         `json:"aiSummary,omitempty"`
	CreatedAt   Timestamp      `json:"createdAt"`
	UpdatedAt   Timestamp      `json:"updatedAt"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

// AttachmentCount treats a missing attachment list as empty.
func (l *Log) AttachmentCount() int {
	if l == nil {
		return 0
	}
	return len(l.Attachments)
}

// Matches reports whether term occurs case-insensitively in the title or description.
// An empty term matches every log.
func (l *Log) Matches(term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	return strings.Contains(strings.ToLower(l.Title), needle) ||
		strings.Contains(strings.ToLower(l.Description), needle)
}

// IsSafetyAlert reports whether creating the log should raise a safety alert.
func (l *Log) IsSafetyAlert() bool {
	return l.Priority == types.PriorityCritical || l.Category == types.CategorySafety
}

// LogInput is the payload sent to the backend when creating or updating a log.
type LogInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    types.Category `json:"category"`
	Priority    types.Priority `json:"priority"`
	Status      types.Status   `json:"status"`
	Tags        []string       `json:"tags"`
	Date        string         `json:"date"`
	Inspector   string         `json:"inspector"`
	Location    string         `json:"location"`
	Notes       string         `json:"notes"`
	AISummary   string         `json:"aiSummary"`
}

// Validate enforces the rules a log must satisfy before it is sent to the backend.
func (in *LogInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return goerr.Wrap(ErrValidation, "title is required", goerr.V(FieldKey, "title"))
	}
	if strings.TrimSpace(in.Description) == "" {
		return goerr.Wrap(ErrValidation, "description is required", goerr.V(FieldKey, "description"))
	}
	if !in.Status.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid status", goerr.V(FieldKey, "status"), goerr.V("status", in.Status))
	}
	if !in.Priority.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid priority", goerr.V(FieldKey, "priority"), goerr.V("priority", in.Priority))
	}
	if in.Category != "" && !in.Category.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid category", goerr.V(FieldKey, "category"), goerr.V("category", in.Category))
	}
	return nil
}

// ParseTags splits a comma separated string into trimmed, non-empty tags.
// The result is never nil so it encodes as an empty JSON array.
func ParseTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse of ParseTags for form display.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
