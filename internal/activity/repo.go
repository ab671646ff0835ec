package activity

import (
	"context"
	"errors"
	"time"

	"github.com/traintrack/backend/internal/calendar"
	"github.com/traintrack/backend/internal/telemetry/tracing"
	"github.com/traintrack/backend/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// RecentWindowDays is the store-defined recency window for ListRecent.
const RecentWindowDays = 90

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Schedule creates a new entry binding the workout to the given date.
func (r *Repo) Schedule(ctx context.Context, username string, workoutID int, date calendar.Date) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.schedule")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))
	span.SetAttributes(attribute.String("date", calendar.Key(date)))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO activity_entry
				(username, workout_id, date_scheduled, completed)
				VALUES ($1, $2, $3, false)
			RETURNING id;`,
		username, workoutID, date.Time(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			// workout deleted between listing and scheduling
			if pkg.IsForeignKeyViolationError(err) {
				return nil, ErrUnknownWorkout
			}
			return nil, err
		}
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("entry.id", id))

	return r.Get(ctx, id)
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				a.id, a.username, a.workout_id, w.name, a.date_scheduled, a.completed
			FROM activity_entry a
			JOIN workout w ON a.workout_id = w.id
			WHERE a.id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries, err := rows2entries(rows)
	if err != nil {
		return nil, err
	}

	if len(entries) != 1 {
		return nil, ErrEntryNotFound
	}

	return &entries[0], nil
}

// ListRange returns the entries scheduled within [from, to] inclusive,
// ordered by scheduled date ascending. The aggregation layer relies on that
// order for its first-seen month buckets.
func (r *Repo) ListRange(ctx context.Context, from, to calendar.Date) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.listrange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("from", calendar.Key(from)))
	span.SetAttributes(attribute.String("to", calendar.Key(to)))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				a.id, a.username, a.workout_id, w.name, a.date_scheduled, a.completed
			FROM activity_entry a
			JOIN workout w ON a.workout_id = w.id
				WHERE a.date_scheduled >= $1 AND a.date_scheduled <= $2
			ORDER BY a.date_scheduled ASC, a.id ASC;`,
		from.Time(), to.Time(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2entries(rows)
}

// ListRecent returns the entries of the store-defined recency window, ending
// at the current date.
func (r *Repo) ListRecent(ctx context.Context) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.listrecent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	today := calendar.Today(time.Now())
	return r.ListRange(ctx, today.AddDays(-RecentWindowDays), today)
}

// Update patches the completed flag and/or scheduled date of an entry.
func (r *Repo) Update(ctx context.Context, id int, patch UpdatePatch) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var dateScheduled *time.Time
	if patch.DateScheduled != nil {
		t := patch.DateScheduled.Time()
		dateScheduled = &t
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE activity_entry SET
				completed = COALESCE($1, completed),
				date_scheduled = COALESCE($2, date_scheduled)
			WHERE id = $3;`,
		patch.Completed, dateScheduled, id,
	)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrEntryNotFound
	}

	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM activity_entry WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func rows2entries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var id int
		var username string
		var workoutID int
		var workoutName string
		var dateScheduled time.Time
		var completed bool
		if err := rows.Scan(&id, &username, &workoutID, &workoutName, &dateScheduled, &completed); err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			ID:            id,
			User:          username,
			WorkoutID:     workoutID,
			WorkoutName:   workoutName,
			DateScheduled: calendar.DateOf(dateScheduled),
			Completed:     completed,
		})
	}

	if entries == nil {
		entries = make([]Entry, 0)
	}

	return entries, nil
}
