package client

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/sets"
	"github.com/2beens/liftlog/pkg/optimistic"
)

var ErrSetCompleted = errors.New("completed sets cannot be deleted")

type workoutAPI interface {
	Workout(ctx context.Context, id string) (*model.Workout, error)
	UpdateSet(ctx context.Context, setID string, patch sets.Patch) (*sets.UpdateResult, error)
	AddSet(ctx context.Context, workoutExerciseID string) (*model.WorkoutSet, error)
	DeleteSet(ctx context.Context, setID string) error
}

func WorkoutKey(workoutID string) string {
	return "workout:" + workoutID
}

// TempID is the id of an optimistically created entity, until the server assigns the real one.
// seq tells apart entities created within the same millisecond.
func TempID(now time.Time, seq uint64) string {
	return fmt.Sprintf("temp-%d-%d", now.UnixMilli(), seq)
}

// WorkoutCache keeps the workouts being logged, applying set changes before the server confirms them.
type WorkoutCache struct {
	api   workoutAPI
	store *optimistic.Store[model.Workout]
	now   func() time.Time
	seq   atomic.Uint64
}

func NewWorkoutCache(api workoutAPI, store *optimistic.Store[model.Workout]) *WorkoutCache {
	return &WorkoutCache{
		api:   api,
		store: store,
		now:   time.Now,
	}
}

func (c *WorkoutCache) Workout(ctx context.Context, workoutID string) (model.Workout, error) {
	return c.store.Fetch(ctx, WorkoutKey(workoutID), func(ctx context.Context) (model.Workout, error) {
		w, err := c.api.Workout(ctx, workoutID)
		if err != nil {
			return model.Workout{}, err
		}
		return *w, nil
	})
}

func (c *WorkoutCache) UpdateSet(
	ctx context.Context,
	workoutID, setID string,
	patch sets.Patch,
) (*optimistic.Pending[*sets.UpdateResult], error) {
	return optimistic.Mutate(ctx, c.store, WorkoutKey(workoutID),
		func(w model.Workout) (model.Workout, error) {
			if set := findSet(&w, setID); set != nil {
				patch.ApplyTo(set)
			}
			return w, nil
		},
		func(ctx context.Context) (*sets.UpdateResult, error) {
			return c.api.UpdateSet(ctx, setID, patch)
		},
		func(w model.Workout, res *sets.UpdateResult) (model.Workout, error) {
			if res == nil || res.Set == nil {
				return w, errors.New("empty update set response")
			}
			if set := findSet(&w, setID); set != nil {
				*set = *res.Set
				set.IsPR = res.IsPR
			}
			return w, nil
		},
	)
}

func (c *WorkoutCache) AddSet(
	ctx context.Context,
	workoutID, workoutExerciseID string,
) (*optimistic.Pending[*model.WorkoutSet], error) {
	tempID := TempID(c.now(), c.seq.Add(1))
	return optimistic.Mutate(ctx, c.store, WorkoutKey(workoutID),
		func(w model.Workout) (model.Workout, error) {
			if we := findWorkoutExercise(&w, workoutExerciseID); we != nil {
				temp := sets.NextSet(workoutExerciseID, we.Sets)
				temp.ID = tempID
				we.Sets = append(we.Sets, temp)
			}
			return w, nil
		},
		func(ctx context.Context) (*model.WorkoutSet, error) {
			return c.api.AddSet(ctx, workoutExerciseID)
		},
		func(w model.Workout, created *model.WorkoutSet) (model.Workout, error) {
			if created == nil {
				return w, errors.New("empty add set response")
			}
			if set := findSet(&w, tempID); set != nil {
				*set = *created
			}
			return w, nil
		},
	)
}

// DeleteSet removes the set. Completed sets are refused before anything is sent.
func (c *WorkoutCache) DeleteSet(ctx context.Context, workoutID, setID string) (*optimistic.Pending[struct{}], error) {
	return optimistic.Mutate(ctx, c.store, WorkoutKey(workoutID),
		func(w model.Workout) (model.Workout, error) {
			for i := range w.Exercises {
				we := &w.Exercises[i]
				for j := range we.Sets {
					if we.Sets[j].ID != setID {
						continue
					}
					if we.Sets[j].Completed {
						return w, ErrSetCompleted
					}
					we.Sets = append(we.Sets[:j], we.Sets[j+1:]...)
					return w, nil
				}
			}
			return w, nil
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.api.DeleteSet(ctx, setID)
		},
		func(w model.Workout, _ struct{}) (model.Workout, error) {
			return w, nil
		},
	)
}

func findSet(w *model.Workout, setID string) *model.WorkoutSet {
	for i := range w.Exercises {
		for j := range w.Exercises[i].Sets {
			if w.Exercises[i].Sets[j].ID == setID {
				return &w.Exercises[i].Sets[j]
			}
		}
	}
	return nil
}

func findWorkoutExercise(w *model.Workout, id string) *model.WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i]
		}
	}
	return nil
}
