package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/traintrack/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Repo persists composed workouts. A workout document is stored normalized
// across workout, workout_block and workout_exercise, with block and
// exercise order kept in a position column.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, doc Document) (_ *WorkoutDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("name", doc.Name))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	detail := &WorkoutDetail{
		Name:   doc.Name,
		Blocks: doc.Blocks,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO workout (name)
		VALUES ($1)
		RETURNING id
	`, doc.Name).Scan(&detail.ID)
	if err != nil {
		return nil, err
	}

	for blockPos, block := range doc.Blocks {
		var blockID int
		err = tx.QueryRow(ctx, `
			INSERT INTO workout_block (workout_id, position)
			VALUES ($1, $2)
			RETURNING id
		`, detail.ID, blockPos).Scan(&blockID)
		if err != nil {
			return nil, err
		}

		for exPos, ex := range block.Exercises {
			var exerciseID *int
			var exerciseLabel *string
			if ex.Exercise.Resolved() {
				exerciseID = &ex.Exercise.ID
			} else {
				exerciseLabel = &ex.Exercise.Label
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO workout_exercise
					(block_id, position, exercise_id, exercise_label, tracking_param, sets, reps, duration)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				blockID, exPos,
				exerciseID, exerciseLabel,
				trackingParamOf(ex.TrackingFields),
				ex.Data.Sets, ex.Data.Reps, ex.Data.Duration,
			)
			if err != nil {
				return nil, err
			}
		}
	}

	return detail, nil
}

func (r *Repo) List(ctx context.Context) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := r.db.Query(ctx, `
		SELECT w.id, w.name, COUNT(b.id)
		FROM workout w
		LEFT JOIN workout_block b ON b.workout_id = w.id
		GROUP BY w.id, w.name
		ORDER BY w.id ASC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.BlockCount); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

func (r *Repo) Detail(ctx context.Context, id int) (_ *WorkoutDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.detail")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("id", id))

	detail := &WorkoutDetail{ID: id}
	err = r.db.
		QueryRow(ctx, `SELECT name FROM workout WHERE id = $1;`, id).
		Scan(&detail.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT b.position, e.exercise_id, e.exercise_label, e.tracking_param, e.sets, e.reps, e.duration
		FROM workout_block b
		JOIN workout_exercise e ON e.block_id = b.id
		WHERE b.workout_id = $1
		ORDER BY b.position ASC, e.position ASC;
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := make(map[int]*DocumentBlock)
	blockOrder := make([]int, 0)
	for rows.Next() {
		var (
			blockPos      int
			exerciseID    *int
			exerciseLabel *string
			param         TrackingParam
			data          ExerciseData
		)
		if err := rows.Scan(
			&blockPos,
			&exerciseID, &exerciseLabel,
			&param,
			&data.Sets, &data.Reps, &data.Duration,
		); err != nil {
			return nil, err
		}

		ref := ExerciseRef{}
		if exerciseID != nil {
			ref = ResolvedRef(*exerciseID)
		} else if exerciseLabel != nil {
			ref = UnresolvedRef(*exerciseLabel)
		}

		block, ok := blocks[blockPos]
		if !ok {
			block = &DocumentBlock{}
			blocks[blockPos] = block
			blockOrder = append(blockOrder, blockPos)
		}
		block.Exercises = append(block.Exercises, DocumentExercise{
			Exercise:       ref,
			TrackingFields: []string{"sets", string(param)},
			Data:           data,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	detail.Blocks = make([]DocumentBlock, 0, len(blockOrder))
	for _, pos := range blockOrder {
		detail.Blocks = append(detail.Blocks, *blocks[pos])
	}

	return detail, nil
}

// Delete removes a workout together with its blocks and exercises. Activity
// entries referencing the workout cascade away with it.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("id", id))

	res, err := r.db.Exec(ctx, `DELETE FROM workout WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func trackingParamOf(trackingFields []string) TrackingParam {
	if len(trackingFields) > 1 && TrackingParam(trackingFields[1]).IsValid() {
		return TrackingParam(trackingFields[1])
	}
	return TrackReps
}
