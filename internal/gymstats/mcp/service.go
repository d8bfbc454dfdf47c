package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/exercises"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/records"
	"github.com/2beens/liftlog/internal/gymstats/workouts"
)

// historyWorkoutsLimit caps the workouts returned for a date range.
const historyWorkoutsLimit = 100

// RecordsRepo lists personal records (for dependency injection and testing).
type RecordsRepo interface {
	List(ctx context.Context, params records.ListParams) ([]model.PersonalRecord, error)
}

// WorkoutsRepo lists workouts with their exercises and sets.
type WorkoutsRepo interface {
	List(ctx context.Context, params workouts.ListParams) ([]model.Workout, int, error)
}

// ExerciseHistoryRepo returns an exercise's performances in completed workouts.
type ExerciseHistoryRepo interface {
	History(ctx context.Context, exerciseID, userID string, limit int) ([]exercises.HistoryEntry, error)
}

// contextService provides the workout context data for one user. Used by Handler for testability.
type contextService interface {
	GetSchema(ctx context.Context) (string, error)
	GetPersonalRecords(ctx context.Context, exerciseID string) ([]model.PersonalRecord, error)
	GetWorkoutHistory(ctx context.Context, from, to time.Time) (*WorkoutHistory, error)
	GetExerciseHistory(ctx context.Context, exerciseID string) ([]exercises.HistoryEntry, error)
}

// WorkoutHistory is the list of workouts in a date range, each with its summary.
type WorkoutHistory struct {
	Total    int              `json:"total"`
	Workouts []WorkoutOverview `json:"workouts"`
}

type WorkoutOverview struct {
	model.Workout
	Summary workouts.Summary `json:"summary"`
}

// ContextService holds dependencies and implements the workout context business logic.
type ContextService struct {
	userID   string
	schema   SchemaRepo
	records  RecordsRepo
	workouts WorkoutsRepo
	history  ExerciseHistoryRepo
}

// NewContextService builds a ContextService serving the data of userID.
func NewContextService(
	userID string,
	schemaRepo SchemaRepo,
	recordsRepo RecordsRepo,
	workoutsRepo WorkoutsRepo,
	historyRepo ExerciseHistoryRepo,
) *ContextService {
	return &ContextService{
		userID:   userID,
		schema:   schemaRepo,
		records:  recordsRepo,
		workouts: workoutsRepo,
		history:  historyRepo,
	}
}

// GetSchema returns the DB schema (table names, columns, types) of the workout tables.
func (s *ContextService) GetSchema(ctx context.Context) (string, error) {
	cols, err := s.schema.GetColumns(ctx)
	if err != nil {
		return "", err
	}
	return formatSchema(cols), nil
}

func formatSchema(cols []SchemaColumn) string {
	if len(cols) == 0 {
		return "# Liftlog DB Schema\n\nNo workout tables found in the database.\n"
	}

	byTable := make(map[string][]SchemaColumn)
	for _, c := range cols {
		byTable[c.TableName] = append(byTable[c.TableName], c)
	}

	tableOrder := make([]string, 0, len(byTable))
	for t := range byTable {
		tableOrder = append(tableOrder, t)
	}
	sort.Strings(tableOrder)

	var b strings.Builder
	b.WriteString("# Liftlog DB Schema\n\n")
	b.WriteString("Tables: " + strings.Join(tableOrder, ", ") + " (schema: public).\n\n")

	for _, tableName := range tableOrder {
		b.WriteString("## ")
		b.WriteString(tableName)
		b.WriteString("\n\n| Column | Type | Nullable | Default |\n|--------|------|----------|--------|\n")
		for _, c := range byTable[tableName] {
			def := "-"
			if c.ColumnDef != nil && *c.ColumnDef != "" {
				def = *c.ColumnDef
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.ColumnName, c.DataType, c.IsNullable, def))
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n\n") + "\n"
}

// GetPersonalRecords returns the user's records newest first, optionally for one exercise.
func (s *ContextService) GetPersonalRecords(ctx context.Context, exerciseID string) ([]model.PersonalRecord, error) {
	return s.records.List(ctx, records.ListParams{
		UserID:     s.userID,
		ExerciseID: exerciseID,
	})
}

// GetWorkoutHistory returns the workouts started within [from, to], newest first, with summaries.
func (s *ContextService) GetWorkoutHistory(ctx context.Context, from, to time.Time) (*WorkoutHistory, error) {
	list, total, err := s.workouts.List(ctx, workouts.ListParams{
		UserID: s.userID,
		From:   &from,
		To:     &to,
		Page:   1,
		Limit:  historyWorkoutsLimit,
	})
	if err != nil {
		return nil, err
	}

	history := &WorkoutHistory{
		Total:    total,
		Workouts: make([]WorkoutOverview, 0, len(list)),
	}
	for _, w := range list {
		history.Workouts = append(history.Workouts, WorkoutOverview{
			Workout: w,
			Summary: workouts.Summarize(w),
		})
	}
	return history, nil
}

// GetExerciseHistory returns the last completed performances of the exercise.
func (s *ContextService) GetExerciseHistory(ctx context.Context, exerciseID string) ([]exercises.HistoryEntry, error) {
	return s.history.History(ctx, exerciseID, s.userID, 20)
}
