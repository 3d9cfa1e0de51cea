// PhotoPrism-style API implementation of [Service]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/thornmill/relabel/internal/shared"
)

// PhotoService implements the Service interface for PhotoPrism-style photo servers.
type PhotoService struct {
	api *APIService
}

// NewPhotoService creates a new photo service against the given server.
//
// The token is the session token for the current batch; pass "" for an
// unauthenticated client.
func NewPhotoService(baseURL, token string) *PhotoService {
	return &PhotoService{
		api: NewAPIService(baseURL, token, nil),
	}
}

// NewPhotoServiceWithAPI creates a PhotoService over an existing APIService.
func NewPhotoServiceWithAPI(api *APIService) *PhotoService {
	return &PhotoService{api: api}
}

func (s *PhotoService) Name() string {
	return "PhotoPrism"
}

// BaseURL returns the server base URL the service talks to.
func (s *PhotoService) BaseURL() string {
	return s.api.BaseURL()
}

// AddLabel attaches a label by name to a single photo via POST /items/{id}/label.
func (s *PhotoService) AddLabel(ctx context.Context, photoUID, labelName string) error {
	path := fmt.Sprintf("/items/%s/label", url.PathEscape(photoUID))

	payload, err := json.Marshal(map[string]string{"name": labelName})
	if err != nil {
		return fmt.Errorf("failed to marshal label payload: %w", err)
	}

	resp, err := s.api.Post(ctx, path, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Endpoint: path}
	}

	return nil
}

// RemoveLabel detaches a label by ID from a single photo via DELETE /items/{id}/label/{labelId}.
//
// A 404 surfaces as a [*StatusError]; the caller decides whether an absent
// label counts as failure.
func (s *PhotoService) RemoveLabel(ctx context.Context, photoUID string, labelID int) error {
	path := fmt.Sprintf("/items/%s/label/%d", url.PathEscape(photoUID), labelID)

	resp, err := s.api.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Endpoint: path}
	}

	return nil
}

// GetPhoto retrieves full photo detail, including the label list, via GET /items/{id}.
func (s *PhotoService) GetPhoto(ctx context.Context, photoUID string) (*Photo, error) {
	path := fmt.Sprintf("/items/%s", url.PathEscape(photoUID))

	resp, err := s.api.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Endpoint: path}
	}

	var photo Photo
	if err := json.Unmarshal(resp.Body, &photo); err != nil {
		return nil, fmt.Errorf("failed to decode photo detail: %w", err)
	}

	return &photo, nil
}
