package templates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/internal/gymstats/exercises"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const templateColumns = `t.id, t.name, t.notes, t.color, t.folder_id, t.created_at, t.updated_at`

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrFolderNotFound   = errors.New("folder not found")
)

type Repo struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db:  db,
		now: time.Now,
	}
}

// List returns the user's templates, most recently updated first.
func (r *Repo) List(ctx context.Context, userID string) (_ []model.WorkoutTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.templates.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return ListForUser(ctx, r.db, userID, "t.updated_at DESC")
}

// ListForUser loads all the user's templates with their exercises, ordered by orderBy.
func ListForUser(ctx context.Context, q db.Querier, userID, orderBy string) ([]model.WorkoutTemplate, error) {
	rows, err := q.Query(ctx, `
		SELECT `+templateColumns+`
		FROM workout_templates t
		WHERE t.user_id = $1
		ORDER BY `+orderBy,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := make([]model.WorkoutTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	rows.Close()

	if err := loadExercises(ctx, q, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *Repo) Get(ctx context.Context, id, userID string) (_ *model.WorkoutTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.templates.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", id))

	return get(ctx, r.db, id, userID)
}

func get(ctx context.Context, q db.Querier, id, userID string) (*model.WorkoutTemplate, error) {
	t, err := scanTemplate(q.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM workout_templates t
		WHERE t.id = $1 AND t.user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	loaded := []model.WorkoutTemplate{*t}
	if err := loadExercises(ctx, q, loaded); err != nil {
		return nil, err
	}
	return &loaded[0], nil
}

func (r *Repo) Create(ctx context.Context, userID string, req CreateRequest) (_ *model.WorkoutTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.templates.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var created *model.WorkoutTemplate
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if req.FolderID != nil {
			if err := checkFolder(ctx, tx, *req.FolderID, userID); err != nil {
				return err
			}
		}

		id := pkg.NewID()
		now := r.now()
		if _, err := tx.Exec(ctx, `
			INSERT INTO workout_templates (id, user_id, folder_id, name, notes, color, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			id, userID, req.FolderID, req.Name, req.Notes, req.Color, now,
		); err != nil {
			return fmt.Errorf("insert template: %w", err)
		}

		if err := insertExercises(ctx, tx, id, userID, req.Exercises); err != nil {
			return err
		}

		created, err = get(ctx, tx, id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update applies req to the template in one transaction. Exercises, when present, replace
// the existing ones.
func (r *Repo) Update(ctx context.Context, id, userID string, req UpdateRequest) (_ *model.WorkoutTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.templates.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", id))

	var updated *model.WorkoutTemplate
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE workout_templates
			SET name = COALESCE($3, name),
			    notes = COALESCE($4, notes),
			    color = COALESCE($5, color),
			    updated_at = $6
			WHERE id = $1 AND user_id = $2`,
			id, userID, req.Name, req.Notes, req.Color, r.now(),
		)
		if err != nil {
			return fmt.Errorf("update template: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrTemplateNotFound
		}

		if req.Exercises != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM template_exercises WHERE template_id = $1`, id); err != nil {
				return fmt.Errorf("clear template exercises: %w", err)
			}
			if err := insertExercises(ctx, tx, id, userID, *req.Exercises); err != nil {
				return err
			}
		}

		updated, err = get(ctx, tx, id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.templates.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// MoveToFolder puts the template into folderID, or takes it out of any folder when folderID is nil.
func (r *Repo) MoveToFolder(ctx context.Context, id, userID string, folderID *string) (_ *model.WorkoutTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.templates.moveToFolder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", id))

	var moved *model.WorkoutTemplate
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if folderID != nil {
			if err := checkFolder(ctx, tx, *folderID, userID); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `
			UPDATE workout_templates SET folder_id = $3, updated_at = $4
			WHERE id = $1 AND user_id = $2`,
			id, userID, folderID, r.now(),
		)
		if err != nil {
			return fmt.Errorf("move template: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrTemplateNotFound
		}

		moved, err = get(ctx, tx, id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return moved, nil
}

func checkFolder(ctx context.Context, q db.Querier, folderID, userID string) error {
	var id string
	if err := q.QueryRow(ctx, `
		SELECT id FROM routine_folders WHERE id = $1 AND user_id = $2`,
		folderID, userID,
	).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFolderNotFound
		}
		return fmt.Errorf("get folder: %w", err)
	}
	return nil
}

func insertExercises(ctx context.Context, q db.Querier, templateID, userID string, inputs []ExerciseInput) error {
	for i, in := range inputs {
		if _, err := exercises.GetVisible(ctx, q, in.ExerciseID, userID); err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `
			INSERT INTO template_exercises (id, template_id, exercise_id, "order", target_sets, target_reps, rest_time, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			pkg.NewID(), templateID, in.ExerciseID, i, in.TargetSets, in.TargetReps, in.RestTime, in.Notes,
		); err != nil {
			return fmt.Errorf("insert template exercise: %w", err)
		}
	}
	return nil
}

func scanTemplate(row pgx.Row) (*model.WorkoutTemplate, error) {
	var t model.WorkoutTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Notes, &t.Color, &t.FolderID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Exercises = make([]model.TemplateExercise, 0)
	return &t, nil
}

func loadExercises(ctx context.Context, q db.Querier, templates []model.WorkoutTemplate) error {
	if len(templates) == 0 {
		return nil
	}

	index := make(map[string]int, len(templates))
	ids := make([]string, 0, len(templates))
	for i, t := range templates {
		index[t.ID] = i
		ids = append(ids, t.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT te.template_id, te.id, te."order", te.target_sets, te.target_reps, te.rest_time, te.notes, `+exercises.Columns("e")+`
		FROM template_exercises te
		JOIN exercises e ON e.id = te.exercise_id
		WHERE te.template_id = ANY($1)
		ORDER BY te.template_id, te."order"`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query template exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			te         model.TemplateExercise
			templateID string
		)
		dest := append(
			[]any{&templateID, &te.ID, &te.Order, &te.TargetSets, &te.TargetReps, &te.RestTime, &te.Notes},
			exercises.ScanDest(&te.Exercise)...,
		)
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan template exercise: %w", err)
		}
		i := index[templateID]
		templates[i].Exercises = append(templates[i].Exercises, te)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate template exercises: %w", err)
	}

	return nil
}
