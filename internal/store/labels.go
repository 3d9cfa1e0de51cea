package store

import (
	"sort"
	"strings"

	"github.com/thornmill/relabel/internal/shared"
)

// Base keys for label state. Composite keys append the instance identifier.
const (
	keyLabelCache   = "labelCache_"
	keyRecentLabels = "recentLabels_"
	keyAllLabels    = "allLabels_"
)

// maxRecentLabels caps the most-recent-first suggestion list.
const maxRecentLabels = 20

// LabelCache maps normalized label names to numeric label IDs for one instance.
//
// Populated lazily by the resolver; invalidated only by an explicit clear.
type LabelCache struct {
	store *Store
}

// NewLabelCache creates a LabelCache over the given store.
func NewLabelCache(s *Store) *LabelCache {
	return &LabelCache{store: s}
}

// Lookup returns the cached label ID for a name, matching case-insensitively.
func (c *LabelCache) Lookup(name string) (int, bool, error) {
	cache := map[string]int{}
	if _, err := c.store.Get(keyLabelCache, &cache); err != nil {
		return 0, false, err
	}

	id, ok := cache[shared.NormalizeLabelKey(name)]
	return id, ok, nil
}

// Put stores a name -> ID mapping.
func (c *LabelCache) Put(name string, id int) error {
	cache := map[string]int{}
	if _, err := c.store.Get(keyLabelCache, &cache); err != nil {
		return err
	}

	cache[shared.NormalizeLabelKey(name)] = id
	return c.store.Set(keyLabelCache, cache)
}

// Clear drops every cached mapping for this instance.
func (c *LabelCache) Clear() error {
	return c.store.Delete(keyLabelCache)
}

// LabelLists maintains the recent and all-labels suggestion lists.
//
// Both lists are distinct case-insensitively; the recent list is
// most-recent-first and capped, the all list is kept sorted ascending.
type LabelLists struct {
	store *Store
}

// NewLabelLists creates LabelLists over the given store.
func NewLabelLists(s *Store) *LabelLists {
	return &LabelLists{store: s}
}

// Record notes that a label name was used, updating both lists.
func (l *LabelLists) Record(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	recent := []string{}
	if _, err := l.store.Get(keyRecentLabels, &recent); err != nil {
		return err
	}

	key := shared.NormalizeLabelKey(name)
	next := make([]string, 0, len(recent)+1)
	next = append(next, name)
	for _, existing := range recent {
		if shared.NormalizeLabelKey(existing) != key {
			next = append(next, existing)
		}
	}
	if len(next) > maxRecentLabels {
		next = next[:maxRecentLabels]
	}

	if err := l.store.Set(keyRecentLabels, next); err != nil {
		return err
	}

	return l.Merge([]string{name})
}

// Merge adds label names to the all-labels list, keeping it sorted and
// distinct case-insensitively. First-seen casing wins.
func (l *LabelLists) Merge(names []string) error {
	all := []string{}
	if _, err := l.store.Get(keyAllLabels, &all); err != nil {
		return err
	}

	seen := make(map[string]bool, len(all))
	for _, existing := range all {
		seen[shared.NormalizeLabelKey(existing)] = true
	}

	changed := false
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := shared.NormalizeLabelKey(name)
		if !seen[key] {
			all = append(all, name)
			seen[key] = true
			changed = true
		}
	}

	if !changed {
		return nil
	}

	sort.Slice(all, func(i, j int) bool {
		return strings.ToLower(all[i]) < strings.ToLower(all[j])
	})

	return l.store.Set(keyAllLabels, all)
}

// Recent returns the most-recent-first suggestion list.
func (l *LabelLists) Recent() ([]string, error) {
	recent := []string{}
	if _, err := l.store.Get(keyRecentLabels, &recent); err != nil {
		return nil, err
	}
	return recent, nil
}

// All returns the sorted all-labels list.
func (l *LabelLists) All() ([]string, error) {
	all := []string{}
	if _, err := l.store.Get(keyAllLabels, &all); err != nil {
		return nil, err
	}
	return all, nil
}

// Clear drops both suggestion lists for this instance.
func (l *LabelLists) Clear() error {
	return l.store.Delete(keyRecentLabels, keyAllLabels)
}
