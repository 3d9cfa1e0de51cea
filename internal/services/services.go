// package services defines interface Service for interacting with photo server HTTP APIs
package services

import (
	"context"
	"fmt"
)

// Service defines the interface for remote photo servers that support
// per-item label operations.
type Service interface {
	// AddLabel attaches a label by name to a single photo.
	// The server creates the label if it does not exist yet.
	AddLabel(ctx context.Context, photoUID, labelName string) error

	// RemoveLabel detaches a label by numeric ID from a single photo.
	RemoveLabel(ctx context.Context, photoUID string, labelID int) error

	// GetPhoto retrieves full detail for a photo, including its label list.
	GetPhoto(ctx context.Context, photoUID string) (*Photo, error)

	// Name returns the name of the service (e.g., "PhotoPrism")
	Name() string
}

// Label represents one label attached to a photo
type Label struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Photo represents a photo detail response from any service
type Photo struct {
	UID    string  `json:"uid"`
	Title  string  `json:"title"`
	Labels []Label `json:"labels"`
}

// Selection is one batch of photo identifiers plus the session token that
// authorizes operations on them.
type Selection struct {
	Identifiers []string `json:"identifiers"`
	Token       string   `json:"token"`
}

// SelectionSource yields the selection for one batch invocation.
//
// Implementations return a typed failure (shared.ErrOriginDisabled,
// shared.ErrNoAuthToken, or a wrapped transport error) instead of a partial
// selection.
type SelectionSource interface {
	Fetch(ctx context.Context) (*Selection, error)
}

// StatusError reports a non-2xx HTTP response from the photo server.
type StatusError struct {
	StatusCode int
	Endpoint   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.Endpoint)
}
