package filters

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mindthunk/vikunja-mcp/internal/filter"
)

// ErrNotFound is returned when no saved filter exists for an id.
var ErrNotFound = errors.New("saved filter not found")

// SavedFilter is a named filter kept for reuse. Filter holds the canonical
// filter text; Expression is its parsed form, stored so tool callers can
// inspect structure without re-parsing.
type SavedFilter struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Filter     string             `json:"filter"`
	Expression *filter.Expression `json:"expression,omitempty"`
	ProjectID  int64              `json:"project_id,omitempty"`
	IsGlobal   bool               `json:"is_global"`
	Created    time.Time          `json:"created"`
	Updated    time.Time          `json:"updated"`
}

// Store keeps saved filters in memory, keyed by id. It is safe for
// concurrent use. Filters do not survive a restart; the MCP session is the
// intended lifetime.
type Store struct {
	mu      sync.RWMutex
	filters map[string]*SavedFilter
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		filters: make(map[string]*SavedFilter),
	}
}

// Create validates filterText, parses it, and stores it under a fresh id.
// A filter with ProjectID 0 and isGlobal true applies to every project.
func (s *Store) Create(name, filterText string, projectID int64, isGlobal bool) (*SavedFilter, error) {
	if name == "" {
		return nil, fmt.Errorf("filter name is required")
	}

	expr, err := parseAndValidate(filterText)
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate filter id: %w", err)
	}

	now := time.Now()
	saved := &SavedFilter{
		ID:         id,
		Name:       name,
		Filter:     filterText,
		Expression: expr,
		ProjectID:  projectID,
		IsGlobal:   isGlobal,
		Created:    now,
		Updated:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[id] = saved

	return copyFilter(saved), nil
}

// Get returns the saved filter for an id.
func (s *Store) Get(id string) (*SavedFilter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved, ok := s.filters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyFilter(saved), nil
}

// List returns filters for a project, sorted by name. Global filters are
// included when includeGlobal is set; projectID 0 lists only globals.
func (s *Store) List(projectID int64, includeGlobal bool) []SavedFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SavedFilter
	for _, saved := range s.filters {
		switch {
		case saved.IsGlobal && includeGlobal:
			out = append(out, *copyFilter(saved))
		case projectID != 0 && saved.ProjectID == projectID:
			out = append(out, *copyFilter(saved))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// All returns every saved filter, sorted by name.
func (s *Store) All() []SavedFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SavedFilter, 0, len(s.filters))
	for _, saved := range s.filters {
		out = append(out, *copyFilter(saved))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Update replaces the name and/or filter text of an existing saved filter.
// Empty arguments leave the corresponding field unchanged.
func (s *Store) Update(id, name, filterText string) (*SavedFilter, error) {
	var expr *filter.Expression
	if filterText != "" {
		var err error
		expr, err = parseAndValidate(filterText)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, ok := s.filters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if name != "" {
		saved.Name = name
	}
	if filterText != "" {
		saved.Filter = filterText
		saved.Expression = expr
	}
	saved.Updated = time.Now()

	return copyFilter(saved), nil
}

// Delete removes a saved filter.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.filters[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.filters, id)
	return nil
}

// Len returns the number of saved filters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filters)
}

// parseAndValidate runs filter text through the engine, rejecting anything
// that does not parse or fails the text limits.
func parseAndValidate(filterText string) (*filter.Expression, error) {
	if filterText == "" {
		return nil, fmt.Errorf("filter text is required")
	}

	expr, err := filter.Parse(filterText)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	if result := filter.Validate(expr, filter.TextLimits()); !result.Valid {
		return nil, fmt.Errorf("invalid filter: %s", result.Errors[0])
	}
	return expr, nil
}

// copyFilter returns a shallow copy so callers cannot mutate stored state.
func copyFilter(saved *SavedFilter) *SavedFilter {
	copied := *saved
	return &copied
}
