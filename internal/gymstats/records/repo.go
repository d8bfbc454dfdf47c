package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const recordColumns = `id, user_id, exercise_id, weight, reps, estimated_1rm, achieved_at`

type ListParams struct {
	UserID     string
	ExerciseID string // optional
	From       *time.Time
	To         *time.Time
	Limit      int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// FindBestByWeight returns the user's heaviest record for the exercise, the most recent
// one on ties, or nil if there is none.
func (r *Repo) FindBestByWeight(ctx context.Context, userID, exerciseID string) (_ *model.PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.records.findBestByWeight")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	rec, err := scanRecord(r.db.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM personal_records
		WHERE user_id = $1 AND exercise_id = $2
		ORDER BY weight DESC, achieved_at DESC
		LIMIT 1`,
		userID, exerciseID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find best record: %w", err)
	}
	return rec, nil
}

// Insert stores the record using q, which can be a transaction.
func Insert(ctx context.Context, q db.Querier, rec *model.PersonalRecord) error {
	if _, err := q.Exec(ctx, `
		INSERT INTO personal_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, rec.ExerciseID, rec.Weight, rec.Reps, rec.Estimated1RM, rec.AchievedAt,
	); err != nil {
		return fmt.Errorf("insert personal record: %w", err)
	}
	return nil
}

func (r *Repo) Insert(ctx context.Context, rec *model.PersonalRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.records.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return Insert(ctx, r.db, rec)
}

// List returns records newest first.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []model.PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", params.ExerciseID))

	var exerciseID *string
	if params.ExerciseID != "" {
		exerciseID = &params.ExerciseID
	}
	var limit *int
	if params.Limit > 0 {
		limit = &params.Limit
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM personal_records
		WHERE user_id = $1
		  AND ($2::text IS NULL OR exercise_id = $2)
		  AND ($3::timestamptz IS NULL OR achieved_at >= $3)
		  AND ($4::timestamptz IS NULL OR achieved_at <= $4)
		ORDER BY achieved_at DESC
		LIMIT $5`,
		params.UserID, exerciseID, params.From, params.To, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	recs := make([]model.PersonalRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return recs, nil
}

func scanRecord(row pgx.Row) (*model.PersonalRecord, error) {
	var rec model.PersonalRecord
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.ExerciseID,
		&rec.Weight, &rec.Reps, &rec.Estimated1RM, &rec.AchievedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
