package testing

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// GetDBPool connects to the liftlog database at POSTGRES_HOST (default localhost)
// and applies the migrations found in migrationsPath.
func GetDBPool(t *testing.T, migrationsPath string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	connString := fmt.Sprintf("postgres://postgres@%s:5432/liftlog?sslmode=disable", host)
	require.NoError(t, db.RunMigrations(connString, migrationsPath))

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		ConnString:     connString,
		TracingEnabled: false,
	})
	require.NoError(t, err)
	t.Cleanup(dbPool.Close)

	return dbPool
}

// Fixture is a user with a started workout holding one exercise, ready for sets.
type Fixture struct {
	UserID            string
	ExerciseID        string
	WorkoutID         string
	WorkoutExerciseID string
}

// NewFixture inserts a fresh user, workout and workout exercise on the given system exercise.
func NewFixture(t *testing.T, dbPool *pgxpool.Pool, exerciseID string) Fixture {
	t.Helper()
	ctx := context.Background()

	f := Fixture{
		UserID:            pkg.NewID(),
		ExerciseID:        exerciseID,
		WorkoutID:         pkg.NewID(),
		WorkoutExerciseID: pkg.NewID(),
	}

	_, err := dbPool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, 'x')`,
		f.UserID, "user-"+f.UserID,
	)
	require.NoError(t, err)
	_, err = dbPool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name) VALUES ($1, $2, 'Test Workout')`,
		f.WorkoutID, f.UserID,
	)
	require.NoError(t, err)
	_, err = dbPool.Exec(ctx,
		`INSERT INTO workout_exercises (id, workout_id, exercise_id, "order") VALUES ($1, $2, $3, 0)`,
		f.WorkoutExerciseID, f.WorkoutID, exerciseID,
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if _, err := dbPool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, f.UserID); err != nil {
			t.Logf("fixture cleanup: %s", err)
		}
	})
	return f
}
