package planner

import (
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/traintrack/backend/internal/calendar"
)

// State of the drag interaction. Dropped and Cancelled are terminal for one
// gesture; the next drag start returns the engine to Dragging.
type State string

const (
	StateIdle      State = "idle"
	StateDragging  State = "dragging"
	StateDropped   State = "dropped"
	StateCancelled State = "cancelled"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveContainer turns a droppable container id into a concrete date.
// A container id is either a calendar-day key or a weekday name; a weekday
// name resolves within the week of the anchor date (weeks start on Sunday).
func ResolveContainer(containerID string, anchor calendar.Date) (calendar.Date, error) {
	if d, err := calendar.ParseKey(containerID); err == nil {
		return d, nil
	}
	if wd, ok := weekdays[strings.ToLower(containerID)]; ok {
		weekStart := anchor.AddDays(-int(anchor.Weekday()))
		return weekStart.AddDays(int(wd)), nil
	}
	return calendar.Date{}, fmt.Errorf("unknown container id: %q", containerID)
}

// Engine is the drag-and-drop state machine of one planning session. The
// pointer-geometry implementation is an external collaborator feeding
// OnDragStart and OnDragEnd; the engine only applies the accept/reject
// policy and keeps the unconfirmed placements.
//
// The placements map belongs to exactly one engine and is never persisted;
// only confirmed schedules survive the session.
type Engine struct {
	mu         sync.Mutex
	today      calendar.Date
	state      State
	dragging   int
	placements map[int]string
}

func NewEngine(today calendar.Date) *Engine {
	return &Engine{
		today:      today,
		state:      StateIdle,
		placements: make(map[int]string),
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// OnDragStart registers pointer capture on a workout card. A drag started
// while another is in flight cancels the first one.
func (e *Engine) OnDragStart(workoutID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateDragging {
		log.Tracef("drag start for workout %d while workout %d in flight", workoutID, e.dragging)
	}
	e.state = StateDragging
	e.dragging = workoutID
}

// OnDragEnd releases the drag. An empty target id means no droppable was
// under the pointer. Re-dropping a workout onto a new container overwrites
// its prior placement, it never duplicates.
func (e *Engine) OnDragEnd(workoutID int, targetID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateDragging || e.dragging != workoutID {
		log.Tracef("drag end for workout %d without matching drag start", workoutID)
		return
	}
	e.dragging = 0

	if targetID == "" {
		e.state = StateCancelled
		return
	}

	if target, err := calendar.ParseKey(targetID); err == nil {
		// past days are locked even when pointer geometry reports an overlap
		if target.Before(e.today) {
			log.Tracef("drop of workout %d rejected: %s is past-locked", workoutID, calendar.Key(target))
			e.state = StateCancelled
			return
		}
	} else if _, ok := weekdays[strings.ToLower(targetID)]; !ok {
		log.Tracef("drop rejected: unknown container id %q", targetID)
		e.state = StateCancelled
		return
	}
	// weekday buckets are week-relative, the lock applies to concrete days only

	e.placements[workoutID] = targetID
	e.state = StateDropped
}

// Remove drops one workout's placement, deleting the key outright.
func (e *Engine) Remove(workoutID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.placements, workoutID)
}

// Placements returns a copy of the current unconfirmed placements.
func (e *Engine) Placements() map[int]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	placements := make(map[int]string, len(e.placements))
	for id, container := range e.placements {
		placements[id] = container
	}
	return placements
}

func (e *Engine) Today() calendar.Date {
	return e.today
}
