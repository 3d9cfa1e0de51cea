// Selection sources supplying photo identifiers and a session token for one batch
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/thornmill/relabel/internal/shared"
)

// FileSelectionSource reads a selection exported from the browser as JSON:
//
//	{"identifiers": ["pqbcf5j...", ...], "token": "sess..."}
//
// The origin allow-list mirrors the browser-side gate: when non-empty, the
// configured server origin must appear on it or the source refuses to yield.
type FileSelectionSource struct {
	Path           string
	Origin         string
	AllowedOrigins []string
}

// Fetch loads and validates the selection file.
func (f *FileSelectionSource) Fetch(ctx context.Context) (*Selection, error) {
	if err := checkOrigin(f.Origin, f.AllowedOrigins); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection file: %w", err)
	}

	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("failed to parse selection file: %w", err)
	}

	if sel.Token == "" {
		return nil, fmt.Errorf("%w: selection file has no token", shared.ErrNoAuthToken)
	}

	return &sel, nil
}

// StaticSelectionSource yields a fixed selection, typically built from CLI flags.
type StaticSelectionSource struct {
	Identifiers    []string
	Token          string
	Origin         string
	AllowedOrigins []string
}

// Fetch validates and returns the static selection.
func (s *StaticSelectionSource) Fetch(ctx context.Context) (*Selection, error) {
	if err := checkOrigin(s.Origin, s.AllowedOrigins); err != nil {
		return nil, err
	}

	if s.Token == "" {
		return nil, shared.ErrNoAuthToken
	}

	return &Selection{Identifiers: s.Identifiers, Token: s.Token}, nil
}

// checkOrigin enforces the allow-list against the server origin (scheme+host).
// An empty allow-list permits every origin.
func checkOrigin(origin string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}

	target, err := normalizeOrigin(origin)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNoInstance, err)
	}

	for _, entry := range allowed {
		candidate, err := normalizeOrigin(entry)
		if err != nil {
			continue
		}
		if candidate == target {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", shared.ErrOriginDisabled, target)
}

// normalizeOrigin reduces a URL to its scheme+host origin.
func normalizeOrigin(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty origin")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("origin %q missing scheme or host", raw)
	}

	return u.Scheme + "://" + u.Host, nil
}
