package exercises

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/sets"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise already exists")
)

// Columns lists the exercises columns in ScanDest order, prefixed by alias.
func Columns(alias string) string {
	p := alias + "."
	return p + `id, ` + p + `name, ` + p + `muscle_group, ` + p + `equipment, ` +
		p + `instructions, ` + p + `image_url, ` + p + `is_custom, ` + p + `created_by_id`
}

func ScanDest(e *model.Exercise) []any {
	return []any{
		&e.ID, &e.Name, &e.MuscleGroup, &e.Equipment,
		&e.Instructions, &e.ImageURL, &e.IsCustom, &e.CreatedByID,
	}
}

// WorkoutRef is the part of a workout shown next to an exercise's history entry.
type WorkoutRef struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartedAt time.Time `json:"startedAt"`
}

// HistoryEntry is one performance of an exercise within a completed workout.
type HistoryEntry struct {
	ID      string             `json:"id"`
	Order   int                `json:"order"`
	Workout WorkoutRef         `json:"workout"`
	Sets    []model.WorkoutSet `json:"sets"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListSystem returns the built-in exercise catalog.
func (r *Repo) ListSystem(ctx context.Context) (_ []model.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.listSystem")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.list(ctx, `
		SELECT `+Columns("e")+`
		FROM exercises e
		WHERE e.created_by_id IS NULL
		ORDER BY e.name`)
}

// ListCustom returns the exercises created by the user.
func (r *Repo) ListCustom(ctx context.Context, userID string) (_ []model.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.listCustom")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.list(ctx, `
		SELECT `+Columns("e")+`
		FROM exercises e
		WHERE e.created_by_id = $1
		ORDER BY e.name`, userID)
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]model.Exercise, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]model.Exercise, 0)
	for rows.Next() {
		var e model.Exercise
		if err := rows.Scan(ScanDest(&e)...); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}

	return exercises, nil
}

// GetVisible returns a system exercise or one of the user's custom exercises.
func (r *Repo) GetVisible(ctx context.Context, id, userID string) (_ *model.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.getVisible")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return GetVisible(ctx, r.db, id, userID)
}

// GetVisible is Repo.GetVisible over q, which can be a transaction.
func GetVisible(ctx context.Context, q db.Querier, id, userID string) (*model.Exercise, error) {
	var e model.Exercise
	if err := q.QueryRow(ctx, `
		SELECT `+Columns("e")+`
		FROM exercises e
		WHERE e.id = $1 AND (e.created_by_id IS NULL OR e.created_by_id = $2)`,
		id, userID,
	).Scan(ScanDest(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return &e, nil
}

// Create stores a custom exercise owned by userID.
func (r *Repo) Create(ctx context.Context, userID string, req CreateRequest) (_ *model.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	e := model.Exercise{
		ID:           pkg.NewID(),
		Name:         req.Name,
		MuscleGroup:  req.MuscleGroup,
		Equipment:    req.Equipment,
		Instructions: req.Instructions,
		IsCustom:     true,
		CreatedByID:  &userID,
	}
	if _, err := r.db.Exec(ctx, `
		INSERT INTO exercises (id, name, muscle_group, equipment, instructions, is_custom, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Name, e.MuscleGroup, e.Equipment, e.Instructions, e.IsCustom, e.CreatedByID,
	); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseExists
		}
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	return &e, nil
}

// History returns the user's last completed workouts containing the exercise, newest first,
// each with its completed sets only.
func (r *Repo) History(ctx context.Context, exerciseID, userID string, limit int) (_ []HistoryEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	rows, err := r.db.Query(ctx, `
		SELECT we.id, we."order", w.id, w.name, w.started_at
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.exercise_id = $1
		  AND w.user_id = $2
		  AND w.completed_at IS NOT NULL
		ORDER BY w.started_at DESC
		LIMIT $3`,
		exerciseID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := make([]HistoryEntry, 0)
	var ids []string
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.Order, &h.Workout.ID, &h.Workout.Name, &h.Workout.StartedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		history = append(history, h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	setsByExercise, err := sets.ListForWorkoutExercises(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range history {
		history[i].Sets = CompletedOnly(setsByExercise[history[i].ID])
	}

	return history, nil
}

// CompletedOnly filters out the sets that were not completed.
func CompletedOnly(all []model.WorkoutSet) []model.WorkoutSet {
	completed := make([]model.WorkoutSet, 0, len(all))
	for _, s := range all {
		if s.Completed {
			completed = append(completed, s)
		}
	}
	return completed
}
