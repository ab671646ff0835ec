package workouts

import "errors"

var (
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrExerciseNotEditable = errors.New("exercise not editable")
	ErrWorkoutNotFound     = errors.New("workout not found")
)

// TrackingParam says which numeric field a logged exercise instance records.
type TrackingParam string

const (
	TrackReps     TrackingParam = "reps"
	TrackDuration TrackingParam = "duration"
)

func (tp TrackingParam) IsValid() bool {
	return tp == TrackReps || tp == TrackDuration
}

// Exercise is a catalog entry. Exercise instances inside a workout reference
// catalog entries by id, they never embed them.
type Exercise struct {
	ID            int           `json:"id"`
	Label         string        `json:"label"`
	TrackingParam TrackingParam `json:"trackingParam"`
	IsEditable    bool          `json:"isEditable"`
}
