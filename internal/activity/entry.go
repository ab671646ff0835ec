package activity

import (
	"errors"

	"github.com/traintrack/backend/internal/calendar"
)

var (
	ErrEntryNotFound  = errors.New("activity entry not found")
	ErrUnknownWorkout = errors.New("unknown workout")
)

// Entry is a persisted record binding a workout to a scheduled date. Entries
// are owned by the store; everything in this package holds read-only copies.
type Entry struct {
	ID            int           `json:"id"`
	User          string        `json:"user"`
	WorkoutID     int           `json:"workoutId"`
	WorkoutName   string        `json:"workoutName"`
	DateScheduled calendar.Date `json:"dateScheduled"`
	Completed     bool          `json:"completed"`
}

// DateKey is the canonical YYYY-MM-DD key of the scheduled date.
func (e Entry) DateKey() string {
	return calendar.Key(e.DateScheduled)
}

// UpdatePatch carries the mutable fields of an entry. Nil fields are left
// untouched by the store.
type UpdatePatch struct {
	Completed     *bool          `json:"completed,omitempty"`
	DateScheduled *calendar.Date `json:"dateScheduled,omitempty"`
}
