package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// Subject is the person whose age is tracked.
// The ID changes whenever a new birth instant is entered, so per-subject state
// (celebrations, loop runs) never leaks across entries.
type Subject struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name,omitempty"`
	Birth   time.Time `json:"birth"`
	Country string    `json:"country,omitempty"` // ISO 3166 region code
}

// NewSubject creates a subject with a fresh ID.
func NewSubject(name string, birth time.Time, country string) Subject {
	return Subject{
		ID:      uuid.New(),
		Name:    name,
		Birth:   birth,
		Country: country,
	}
}

// DisplayName returns the name, or a neutral fallback.
func (s Subject) DisplayName() string {
	if s.Name == "" {
		return config.FallbackName
	}
	return s.Name
}

// Birthdate formats the birth calendar date as YYYY-MM-DD in its own location.
func (s Subject) Birthdate() string {
	return s.Birth.Format(config.DateFormatWire)
}
