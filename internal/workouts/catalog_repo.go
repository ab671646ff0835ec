package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/traintrack/backend/internal/telemetry/tracing"
	"github.com/traintrack/backend/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
)

// CatalogRepo persists the exercise catalog. Seed exercises are not editable,
// quick-added ones are.
type CatalogRepo struct {
	db *pgxpool.Pool
}

func NewCatalogRepo(db *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{
		db: db,
	}
}

func (r *CatalogRepo) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, label, tracking_param, is_editable
		FROM exercise
		ORDER BY label ASC;
	`)
	if err != nil {
		return nil, err
	}

	return rows2exercises(rows)
}

func (r *CatalogRepo) GetByLabel(ctx context.Context, label string) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.getByLabel")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var ex Exercise
	err = r.db.
		QueryRow(ctx, `
			SELECT id, label, tracking_param, is_editable
			FROM exercise
			WHERE label = $1;
		`, label).
		Scan(&ex.ID, &ex.Label, &ex.TrackingParam, &ex.IsEditable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Exercise{}, ErrExerciseNotFound
	}
	if err != nil {
		return Exercise{}, err
	}
	return ex, nil
}

// AddExercise is the quick-add path: a new exercise enters the catalog
// immediately and is editable.
func (r *CatalogRepo) AddExercise(ctx context.Context, label string, param TrackingParam) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.add")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ex := Exercise{
		Label:         label,
		TrackingParam: param,
		IsEditable:    true,
	}
	err = r.db.
		QueryRow(ctx, `
			INSERT INTO exercise (label, tracking_param, is_editable)
			VALUES ($1, $2, TRUE)
			RETURNING id;
		`, label, param).
		Scan(&ex.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return Exercise{}, fmt.Errorf("exercise %q already in catalog", label)
		}
		return Exercise{}, err
	}
	return ex, nil
}

// DeleteExercise removes a quick-added exercise and returns it, so callers
// can drop it from caches by label. Seed entries are locked.
func (r *CatalogRepo) DeleteExercise(ctx context.Context, id int) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.delete")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var ex Exercise
	err = r.db.
		QueryRow(ctx, `
			SELECT id, label, tracking_param, is_editable
			FROM exercise
			WHERE id = $1;
		`, id).
		Scan(&ex.ID, &ex.Label, &ex.TrackingParam, &ex.IsEditable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Exercise{}, ErrExerciseNotFound
	}
	if err != nil {
		return Exercise{}, err
	}
	if !ex.IsEditable {
		return Exercise{}, ErrExerciseNotEditable
	}

	res, err := r.db.Exec(ctx, `DELETE FROM exercise WHERE id = $1;`, id)
	if err != nil {
		return Exercise{}, err
	}
	if res.RowsAffected() == 0 {
		return Exercise{}, ErrExerciseNotFound
	}
	return ex, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(&ex.ID, &ex.Label, &ex.TrackingParam, &ex.IsEditable); err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}
