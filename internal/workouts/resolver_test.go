package workouts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traintrack/backend/internal/workouts"
)

// countingLookup tracks how often the store is hit per label.
type countingLookup struct {
	exercises map[string]workouts.Exercise
	calls     map[string]int
}

func newCountingLookup(exercises ...workouts.Exercise) *countingLookup {
	l := &countingLookup{
		exercises: make(map[string]workouts.Exercise),
		calls:     make(map[string]int),
	}
	for _, ex := range exercises {
		l.exercises[ex.Label] = ex
	}
	return l
}

func (l *countingLookup) GetByLabel(_ context.Context, label string) (workouts.Exercise, error) {
	l.calls[label]++
	ex, ok := l.exercises[label]
	if !ok {
		return workouts.Exercise{}, workouts.ErrExerciseNotFound
	}
	return ex, nil
}

func TestCatalogResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	lookup := newCountingLookup(
		workouts.Exercise{ID: 7, Label: "Deadlift", TrackingParam: workouts.TrackReps},
	)
	resolver := workouts.NewCatalogResolver(lookup, 1)

	id, param, ok := resolver.Resolve(ctx, "Deadlift")
	require.True(t, ok)
	assert.Equal(t, 7, id)
	assert.Equal(t, workouts.TrackReps, param)
	assert.Equal(t, 1, lookup.calls["Deadlift"])

	// second resolve comes from the cache, tracking param included
	id, param, ok = resolver.Resolve(ctx, "Deadlift")
	require.True(t, ok)
	assert.Equal(t, 7, id)
	assert.Equal(t, workouts.TrackReps, param)
	assert.Equal(t, 1, lookup.calls["Deadlift"])
}

func TestCatalogResolver_MissNotCached(t *testing.T) {
	ctx := context.Background()
	lookup := newCountingLookup()
	resolver := workouts.NewCatalogResolver(lookup, 1)

	_, _, ok := resolver.Resolve(ctx, "Deadlift")
	require.False(t, ok)
	assert.Equal(t, 1, lookup.calls["Deadlift"])

	// the exercise gets added to the catalog after the first miss
	lookup.exercises["Deadlift"] = workouts.Exercise{ID: 7, Label: "Deadlift", TrackingParam: workouts.TrackReps}

	id, _, ok := resolver.Resolve(ctx, "Deadlift")
	require.True(t, ok)
	assert.Equal(t, 7, id)
	assert.Equal(t, 2, lookup.calls["Deadlift"])
}

func TestCatalogResolver_Invalidate(t *testing.T) {
	ctx := context.Background()
	lookup := newCountingLookup(
		workouts.Exercise{ID: 7, Label: "Deadlift", TrackingParam: workouts.TrackReps},
	)
	resolver := workouts.NewCatalogResolver(lookup, 1)

	_, _, ok := resolver.Resolve(ctx, "Deadlift")
	require.True(t, ok)

	resolver.Invalidate("Deadlift")

	_, _, ok = resolver.Resolve(ctx, "Deadlift")
	require.True(t, ok)
	assert.Equal(t, 2, lookup.calls["Deadlift"])
}
