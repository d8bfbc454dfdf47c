package mcp

import (
	"github.com/2beens/liftlog/internal/gymstats/exercises"
	"github.com/2beens/liftlog/internal/gymstats/records"
	"github.com/2beens/liftlog/internal/gymstats/workouts"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds a read-only MCP server over the workout data of userID:
// schema, personal records, workout history, exercise history.
func NewServer(pool *pgxpool.Pool, userID string) *mcp.Server {
	svc := NewContextService(
		userID,
		NewPoolSchemaRepo(pool),
		records.NewRepo(pool),
		workouts.NewRepo(pool),
		exercises.NewRepo(pool),
	)
	return newServer(NewHandler(svc))
}

func newServer(h *Handler) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "liftlog-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_liftlog_schema",
		Description: "Returns the DB schema of the workout tables (workouts, workout_exercises, workout_sets, personal_records, exercises, templates, folders): columns, types, nullable, default.",
	}, h.GetSchemaTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_personal_records",
		Description: "Returns the personal records (weight, reps, estimated 1RM, achieved at), newest first. Optional: exercise_id. Use when asked about PRs or strength progress.",
	}, h.GetPersonalRecordsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_workout_history",
		Description: "Returns the workouts started in a date range with exercises, sets and a summary (sets, volume, PR count, duration). Args: from_date, to_date (YYYY-MM-DD).",
	}, h.GetWorkoutHistoryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_history",
		Description: "Returns the completed sets of an exercise in the last 20 completed workouts containing it, newest first. Arg: exercise_id.",
	}, h.GetExerciseHistoryTool())

	return s
}
