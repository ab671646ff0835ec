package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/traintrack/backend/internal/calendar"
)

// Session is one planning session: a fresh engine with its own placements
// map, identified for logs and responses. Sessions are never persisted, a
// reload starts from scratch with only confirmed schedules surviving.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time
	Engine    *Engine
}

func NewSession(today calendar.Date) *Session {
	return &Session{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Engine:    NewEngine(today),
	}
}
