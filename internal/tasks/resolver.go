package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/thornmill/relabel/internal/shared"
)

// resolveLabelID maps a label name to its numeric ID.
//
// Cache hits return immediately. On a miss the sample photo's detail is
// fetched and its label list searched by name or slug, case-insensitively.
// The add endpoint accepts a name, so resolution only ever runs for removal;
// caching the hit saves one round-trip per subsequent batch.
func (e *Engine) resolveLabelID(ctx context.Context, labelName, sampleUID string) (int, error) {
	id, found, err := e.cache.Lookup(labelName)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}

	photo, err := e.svc.GetPhoto(ctx, sampleUID)
	if err != nil {
		return 0, fmt.Errorf("%w: fetching photo %s: %v", shared.ErrResolution, sampleUID, err)
	}

	for _, label := range photo.Labels {
		if strings.EqualFold(label.Name, labelName) || strings.EqualFold(label.Slug, labelName) {
			if err := e.cache.Put(labelName, label.ID); err != nil {
				return 0, err
			}
			return label.ID, nil
		}
	}

	return 0, fmt.Errorf("%w: %q not present on photo %s", shared.ErrLabelNotFound, labelName, sampleUID)
}
