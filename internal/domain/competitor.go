package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Competitor is an entrant in the underlying event (a horse) kept in the
// shared roster. New pools copy the roster's names at creation time; later
// roster edits do not reach existing pools.
type Competitor struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewCompetitor builds a roster entry from a user-supplied name.
func NewCompetitor(name string, now time.Time) (*Competitor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCompetitor)
	}
	return &Competitor{ID: uuid.New(), Name: name, CreatedAt: now.UTC()}, nil
}

// CompetitorNames extracts the names from a roster, preserving order.
func CompetitorNames(roster []*Competitor) []string {
	names := make([]string, len(roster))
	for i, c := range roster {
		names[i] = c.Name
	}
	return names
}
