package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/internal/gymstats/exercises"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/sets"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultRestTime = 90 // seconds
	workoutColumns  = `w.id, w.name, w.notes, w.started_at, w.completed_at, w.duration`
)

var ErrWorkoutNotFound = errors.New("workout not found")

type ListParams struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Page   int // 1-based
	Limit  int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns a page of the user's workouts, newest first, and the total count.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []model.Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))

	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM workouts w
		WHERE w.user_id = $1
		  AND ($2::timestamptz IS NULL OR w.started_at >= $2)
		  AND ($3::timestamptz IS NULL OR w.started_at <= $3)`,
		params.UserID, params.From, params.To,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts w
		WHERE w.user_id = $1
		  AND ($2::timestamptz IS NULL OR w.started_at >= $2)
		  AND ($3::timestamptz IS NULL OR w.started_at <= $3)
		ORDER BY w.started_at DESC
		LIMIT $4 OFFSET $5`,
		params.UserID, params.From, params.To, params.Limit, (params.Page-1)*params.Limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	workouts := make([]model.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan workout: %w", err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate workouts: %w", err)
	}

	if err := loadExercises(ctx, r.db, workouts); err != nil {
		return nil, 0, err
	}

	return workouts, total, nil
}

func (r *Repo) Get(ctx context.Context, id, userID string) (_ *model.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	return get(ctx, r.db, id, userID)
}

func get(ctx context.Context, q db.Querier, id, userID string) (*model.Workout, error) {
	w, err := scanWorkout(q.QueryRow(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts w
		WHERE w.id = $1 AND w.user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("get workout: %w", err)
	}

	loaded := []model.Workout{*w}
	if err := loadExercises(ctx, q, loaded); err != nil {
		return nil, err
	}
	return &loaded[0], nil
}

// Start creates a workout. With an owned templateID, the template's exercises are copied in
// order, each with targetSets empty sets. An unknown template yields a plain workout.
func (r *Repo) Start(ctx context.Context, userID string, req StartRequest, startedAt time.Time) (_ *model.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.workouts.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var started *model.Workout
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		workoutID := pkg.NewID()
		if _, err := tx.Exec(ctx, `
			INSERT INTO workouts (id, user_id, name, started_at)
			VALUES ($1, $2, $3, $4)`,
			workoutID, userID, req.Name, startedAt,
		); err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}

		if req.TemplateID != nil && *req.TemplateID != "" {
			planned, err := templatePlan(ctx, tx, *req.TemplateID, userID)
			if err != nil {
				return err
			}
			for i, p := range planned {
				if err := insertWorkoutExercise(ctx, tx, workoutID, p.exerciseID, i, p.restTime, p.targetSets); err != nil {
					return err
				}
			}
		}

		started, err = get(ctx, tx, workoutID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return started, nil
}

type plannedExercise struct {
	exerciseID string
	restTime   *int
	targetSets int
}

func templatePlan(ctx context.Context, q db.Querier, templateID, userID string) ([]plannedExercise, error) {
	rows, err := q.Query(ctx, `
		SELECT te.exercise_id, te.rest_time, te.target_sets
		FROM template_exercises te
		JOIN workout_templates t ON t.id = te.template_id
		WHERE t.id = $1 AND t.user_id = $2
		ORDER BY te."order"`,
		templateID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query template exercises: %w", err)
	}
	defer rows.Close()

	var planned []plannedExercise
	for rows.Next() {
		var p plannedExercise
		if err := rows.Scan(&p.exerciseID, &p.restTime, &p.targetSets); err != nil {
			return nil, fmt.Errorf("scan template exercise: %w", err)
		}
		planned = append(planned, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template exercises: %w", err)
	}
	return planned, nil
}

func insertWorkoutExercise(ctx context.Context, q db.Querier, workoutID, exerciseID string, order int, restTime *int, emptySets int) error {
	weID := pkg.NewID()
	if _, err := q.Exec(ctx, `
		INSERT INTO workout_exercises (id, workout_id, exercise_id, "order", rest_time)
		VALUES ($1, $2, $3, $4, $5)`,
		weID, workoutID, exerciseID, order, restTime,
	); err != nil {
		return fmt.Errorf("insert workout exercise: %w", err)
	}

	for i := 0; i < emptySets; i++ {
		set := model.WorkoutSet{
			ID:                pkg.NewID(),
			WorkoutExerciseID: weID,
			Order:             i,
		}
		if err := sets.Insert(ctx, q, &set); err != nil {
			return err
		}
	}
	return nil
}

// AddExercise appends the exercise to the user's workout with the default rest time and one empty set.
func (r *Repo) AddExercise(ctx context.Context, workoutID, userID, exerciseID string) (_ *model.WorkoutExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.workouts.addExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", workoutID), attribute.String("exercise.id", exerciseID))

	var added *model.WorkoutExercise
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var lockedID string
		if err := tx.QueryRow(ctx, `
			SELECT id FROM workouts
			WHERE id = $1 AND user_id = $2
			FOR UPDATE`,
			workoutID, userID,
		).Scan(&lockedID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrWorkoutNotFound
			}
			return fmt.Errorf("lock workout: %w", err)
		}

		if _, err := exercises.GetVisible(ctx, tx, exerciseID, userID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM workout_exercises WHERE workout_id = $1`,
			workoutID,
		).Scan(&count); err != nil {
			return fmt.Errorf("count workout exercises: %w", err)
		}

		restTime := defaultRestTime
		if err := insertWorkoutExercise(ctx, tx, workoutID, exerciseID, count, &restTime, 1); err != nil {
			return err
		}

		w, err := get(ctx, tx, workoutID, userID)
		if err != nil {
			return err
		}
		last := w.Exercises[len(w.Exercises)-1]
		added = &last
		return nil
	})
	if err != nil {
		return nil, err
	}

	return added, nil
}

// Complete marks the workout completed at completedAt and stores its duration in whole seconds.
func (r *Repo) Complete(ctx context.Context, id, userID string, completedAt time.Time) (_ *model.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.workouts.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	var completed *model.Workout
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var startedAt time.Time
		if err := tx.QueryRow(ctx, `
			SELECT started_at FROM workouts
			WHERE id = $1 AND user_id = $2
			FOR UPDATE`,
			id, userID,
		).Scan(&startedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrWorkoutNotFound
			}
			return fmt.Errorf("get workout: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE workouts SET completed_at = $2, duration = $3
			WHERE id = $1`,
			id, completedAt, DurationSeconds(startedAt, completedAt),
		); err != nil {
			return fmt.Errorf("complete workout: %w", err)
		}

		completed, err = get(ctx, tx, id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return completed, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func scanWorkout(row pgx.Row) (*model.Workout, error) {
	var w model.Workout
	if err := row.Scan(&w.ID, &w.Name, &w.Notes, &w.StartedAt, &w.CompletedAt, &w.Duration); err != nil {
		return nil, err
	}
	w.Exercises = make([]model.WorkoutExercise, 0)
	return &w, nil
}

// loadExercises fills in the exercises and sets of the given workouts, in order.
func loadExercises(ctx context.Context, q db.Querier, workouts []model.Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	index := make(map[string]int, len(workouts))
	ids := make([]string, 0, len(workouts))
	for i, w := range workouts {
		index[w.ID] = i
		ids = append(ids, w.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT we.id, we.workout_id, we."order", we.notes, we.rest_time, `+exercises.Columns("e")+`
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE we.workout_id = ANY($1)
		ORDER BY we.workout_id, we."order"`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query workout exercises: %w", err)
	}
	defer rows.Close()

	type located struct {
		workoutIdx int
		exIdx      int
	}
	var (
		weIDs     []string
		locations = make(map[string]located)
	)
	for rows.Next() {
		var (
			we        model.WorkoutExercise
			workoutID string
		)
		dest := append([]any{&we.ID, &workoutID, &we.Order, &we.Notes, &we.RestTime}, exercises.ScanDest(&we.Exercise)...)
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan workout exercise: %w", err)
		}
		we.Sets = make([]model.WorkoutSet, 0)

		wIdx := index[workoutID]
		workouts[wIdx].Exercises = append(workouts[wIdx].Exercises, we)
		locations[we.ID] = located{workoutIdx: wIdx, exIdx: len(workouts[wIdx].Exercises) - 1}
		weIDs = append(weIDs, we.ID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate workout exercises: %w", err)
	}
	rows.Close()

	setsByExercise, err := sets.ListForWorkoutExercises(ctx, q, weIDs)
	if err != nil {
		return err
	}
	for weID, loc := range locations {
		if s, ok := setsByExercise[weID]; ok {
			workouts[loc.workoutIdx].Exercises[loc.exIdx].Sets = s
		}
	}

	return nil
}
