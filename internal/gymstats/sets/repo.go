package sets

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/records"
	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Columns lists the workout_sets columns in the order ScanSet expects, prefixed by alias.
func Columns(alias string) string {
	p := alias + "."
	return p + `id, ` + p + `workout_exercise_id, ` + p + `"order", ` +
		p + `weight, ` + p + `reps, ` + p + `duration, ` + p + `distance, ` +
		p + `is_warmup, ` + p + `is_dropset, ` + p + `is_failure, ` + p + `is_pr, ` + p + `completed`
}

// ScanDest returns scan destinations for the Columns of a set, so callers can scan
// a set along with other columns of a joined row.
func ScanDest(set *model.WorkoutSet) []any {
	return []any{
		&set.ID, &set.WorkoutExerciseID, &set.Order,
		&set.Weight, &set.Reps, &set.Duration, &set.Distance,
		&set.IsWarmup, &set.IsDropset, &set.IsFailure, &set.IsPR, &set.Completed,
	}
}

// Insert stores a new set using q, which can be a transaction.
func Insert(ctx context.Context, q db.Querier, set *model.WorkoutSet) error {
	if _, err := q.Exec(ctx, `
		INSERT INTO workout_sets (
			id, workout_exercise_id, "order", weight, reps, duration, distance,
			is_warmup, is_dropset, is_failure, is_pr, completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		set.ID, set.WorkoutExerciseID, set.Order, set.Weight, set.Reps, set.Duration, set.Distance,
		set.IsWarmup, set.IsDropset, set.IsFailure, set.IsPR, set.Completed,
	); err != nil {
		return fmt.Errorf("insert set: %w", err)
	}
	return nil
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) GetOwned(ctx context.Context, setID, userID string) (_ *OwnedSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sets.getOwned")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var owned OwnedSet
	dest := append(ScanDest(&owned.Set), &owned.ExerciseID, &owned.WorkoutID)
	if err := r.db.QueryRow(ctx, `
		SELECT `+Columns("s")+`, we.exercise_id, w.id
		FROM workout_sets s
		JOIN workout_exercises we ON we.id = s.workout_exercise_id
		JOIN workouts w ON w.id = we.workout_id
		WHERE s.id = $1 AND w.user_id = $2`,
		setID, userID,
	).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("get set: %w", err)
	}

	return &owned, nil
}

// Apply stores the record (if any) and the updated set in one transaction.
func (r *Repo) Apply(ctx context.Context, set *model.WorkoutSet, record *model.PersonalRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sets.apply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if record != nil {
			if err := records.Insert(ctx, tx, record); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `
			UPDATE workout_sets
			SET weight = $2, reps = $3, completed = $4,
			    is_warmup = $5, is_dropset = $6, is_failure = $7, is_pr = $8
			WHERE id = $1`,
			set.ID, set.Weight, set.Reps, set.Completed,
			set.IsWarmup, set.IsDropset, set.IsFailure, set.IsPR,
		)
		if err != nil {
			return fmt.Errorf("update set: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrSetNotFound
		}
		return nil
	})
}

// AppendSet locks the user's workout exercise, and inserts the set built by next from
// the existing ones.
func (r *Repo) AppendSet(
	ctx context.Context,
	workoutExerciseID, userID string,
	next func(existing []model.WorkoutSet) model.WorkoutSet,
) (_ *model.WorkoutSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sets.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var newSet model.WorkoutSet
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var weID string
		if err := tx.QueryRow(ctx, `
			SELECT we.id
			FROM workout_exercises we
			JOIN workouts w ON w.id = we.workout_id
			WHERE we.id = $1 AND w.user_id = $2
			FOR UPDATE OF we`,
			workoutExerciseID, userID,
		).Scan(&weID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrWorkoutExerciseNotFound
			}
			return fmt.Errorf("get workout exercise: %w", err)
		}

		existing, err := ListForWorkoutExercises(ctx, tx, []string{weID})
		if err != nil {
			return err
		}

		newSet = next(existing[weID])
		return Insert(ctx, tx, &newSet)
	})
	if err != nil {
		return nil, err
	}

	return &newSet, nil
}

func (r *Repo) DeleteOwned(ctx context.Context, setID, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sets.deleteOwned")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM workout_sets s
		USING workout_exercises we, workouts w
		WHERE s.id = $1
		  AND we.id = s.workout_exercise_id
		  AND w.id = we.workout_id
		  AND w.user_id = $2`,
		setID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}

// ListForWorkoutExercises returns the sets of the given workout exercises, in order,
// grouped by workout exercise id.
func ListForWorkoutExercises(ctx context.Context, q db.Querier, workoutExerciseIDs []string) (map[string][]model.WorkoutSet, error) {
	grouped := make(map[string][]model.WorkoutSet, len(workoutExerciseIDs))
	if len(workoutExerciseIDs) == 0 {
		return grouped, nil
	}

	rows, err := q.Query(ctx, `
		SELECT `+Columns("s")+`
		FROM workout_sets s
		WHERE s.workout_exercise_id = ANY($1)
		ORDER BY s.workout_exercise_id, s."order"`,
		workoutExerciseIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var set model.WorkoutSet
		if err := rows.Scan(ScanDest(&set)...); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		grouped[set.WorkoutExerciseID] = append(grouped[set.WorkoutExerciseID], set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}

	return grouped, nil
}
