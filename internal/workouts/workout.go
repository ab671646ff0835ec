package workouts

import (
	"encoding/json"
	"fmt"
)

// Workout is the persisted composition: a named, ordered list of blocks.
type Workout struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	BlockCount int    `json:"blockCount"`
}

// WorkoutDetail carries the full nested document of one workout.
type WorkoutDetail struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Blocks []DocumentBlock `json:"blocks"`
}

// Document is the wire shape of a composed workout, the payload the store
// persists. Inside the composer the per-exercise numbers live in a tagged
// SetScheme variant; they are flattened into DocumentExercise only here, at
// the store boundary.
type Document struct {
	Name   string          `json:"name"`
	Blocks []DocumentBlock `json:"blocks"`
}

type DocumentBlock struct {
	Exercises []DocumentExercise `json:"exercises"`
}

// DocumentExercise carries the exercise reference as the catalog id when the
// label resolved, or the raw label string when it did not.
type DocumentExercise struct {
	Exercise       ExerciseRef  `json:"exercise"`
	TrackingFields []string     `json:"trackingFields"`
	Data           ExerciseData `json:"data"`
}

type ExerciseData struct {
	Sets     int `json:"sets"`
	Reps     int `json:"reps,omitempty"`
	Duration int `json:"duration,omitempty"`
}

// ExerciseRef is either a resolved catalog id or an unresolved label.
type ExerciseRef struct {
	ID    int
	Label string
}

func ResolvedRef(id int) ExerciseRef {
	return ExerciseRef{ID: id}
}

func UnresolvedRef(label string) ExerciseRef {
	return ExerciseRef{Label: label}
}

func (ref ExerciseRef) Resolved() bool {
	return ref.ID != 0
}

func (ref ExerciseRef) String() string {
	if ref.Resolved() {
		return fmt.Sprintf("%d", ref.ID)
	}
	return ref.Label
}

func (ref ExerciseRef) MarshalJSON() ([]byte, error) {
	if ref.Resolved() {
		return json.Marshal(ref.ID)
	}
	return json.Marshal(ref.Label)
}

func (ref *ExerciseRef) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		ref.ID = id
		ref.Label = ""
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("exercise ref is neither id nor label: %s", data)
	}
	ref.ID = 0
	ref.Label = label
	return nil
}

// SetScheme is the tagged per-slot variant: exactly one of the two concrete
// schemes exists per selected exercise, depending on its tracking parameter.
type SetScheme interface {
	// TrackingFields always starts with "sets".
	TrackingFields() []string
	Flatten() ExerciseData
}

type RepsScheme struct {
	Sets int `json:"sets"`
	Reps int `json:"reps"`
}

func (s RepsScheme) TrackingFields() []string {
	return []string{"sets", string(TrackReps)}
}

func (s RepsScheme) Flatten() ExerciseData {
	return ExerciseData{Sets: s.Sets, Reps: s.Reps}
}

type DurationScheme struct {
	Sets     int `json:"sets"`
	Duration int `json:"duration"`
}

func (s DurationScheme) TrackingFields() []string {
	return []string{"sets", string(TrackDuration)}
}

func (s DurationScheme) Flatten() ExerciseData {
	return ExerciseData{Sets: s.Sets, Duration: s.Duration}
}
