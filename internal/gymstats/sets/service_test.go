package sets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/sets"
	"github.com/2beens/liftlog/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func ptr[T any](v T) *T {
	return &v
}

func ownedSet(weight *float64, reps *int) *sets.OwnedSet {
	return &sets.OwnedSet{
		Set: model.WorkoutSet{
			ID:                "set-1",
			WorkoutExerciseID: "we-1",
			Order:             0,
			Weight:            weight,
			Reps:              reps,
		},
		ExerciseID: "sys-bench-press",
		WorkoutID:  "workout-1",
	}
}

func TestService_UpdateSet_FirstRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksetsRepo(ctrl)
	recordsMock := NewMockrecordsRepo(ctrl)
	metricsManager := metrics.NewTestManager()
	service := sets.NewService(repoMock, recordsMock, metricsManager)

	ctx := context.Background()
	before := time.Now()

	repoMock.EXPECT().GetOwned(gomock.Any(), "set-1", "user-1").Return(ownedSet(nil, nil), nil)
	recordsMock.EXPECT().FindBestByWeight(gomock.Any(), "user-1", "sys-bench-press").Return(nil, nil)
	repoMock.EXPECT().
		Apply(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, set *model.WorkoutSet, rec *model.PersonalRecord) error {
			assert.True(t, set.IsPR)
			assert.True(t, set.Completed)
			assert.Equal(t, 100.0, *set.Weight)
			assert.Equal(t, 5, *set.Reps)

			require.NotNil(t, rec)
			assert.Equal(t, "user-1", rec.UserID)
			assert.Equal(t, "sys-bench-press", rec.ExerciseID)
			assert.Equal(t, 100.0, rec.Weight)
			assert.Equal(t, 5, rec.Reps)
			require.NotNil(t, rec.Estimated1RM)
			assert.Equal(t, 112.5, *rec.Estimated1RM)
			assert.False(t, rec.AchievedAt.Before(before))
			return nil
		})

	res, err := service.UpdateSet(ctx, "set-1", "user-1", sets.Patch{
		Weight: ptr(100.0), Reps: ptr(5), Completed: ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, res.IsPR)
	assert.True(t, res.Set.IsPR)
	assert.Equal(t, "set-1", res.Set.ID)

	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterPersonalRecords))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterSetUpdates.WithLabelValues(metrics.SetUpdateResultPR)))
}

func TestService_UpdateSet_Dominance(t *testing.T) {
	best := &model.PersonalRecord{ID: "rec-1", UserID: "user-1", ExerciseID: "sys-bench-press", Weight: 100, Reps: 8}

	testCases := []struct {
		name   string
		weight float64
		reps   int
		isPR   bool
	}{
		{name: "HeavierFewerReps", weight: 105, reps: 6, isPR: false},
		{name: "HeavierSameReps", weight: 105, reps: 8, isPR: true},
		{name: "SameWeightMoreReps", weight: 100, reps: 10, isPR: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repoMock := NewMocksetsRepo(ctrl)
			recordsMock := NewMockrecordsRepo(ctrl)
			service := sets.NewService(repoMock, recordsMock, metrics.NewTestManager())

			repoMock.EXPECT().GetOwned(gomock.Any(), "set-1", "user-1").Return(ownedSet(ptr(90.0), ptr(8)), nil)
			recordsMock.EXPECT().FindBestByWeight(gomock.Any(), "user-1", "sys-bench-press").Return(best, nil)
			repoMock.EXPECT().
				Apply(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, set *model.WorkoutSet, rec *model.PersonalRecord) error {
					assert.Equal(t, tc.isPR, set.IsPR)
					assert.Equal(t, tc.isPR, rec != nil)
					return nil
				})

			res, err := service.UpdateSet(context.Background(), "set-1", "user-1", sets.Patch{
				Weight: ptr(tc.weight), Reps: ptr(tc.reps), Completed: ptr(true),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.isPR, res.IsPR)
		})
	}
}

func TestService_UpdateSet_NonCompletingPatchSkipsRecords(t *testing.T) {
	patches := []sets.Patch{
		{Weight: ptr(50.0)},
		{Weight: ptr(500.0), Reps: ptr(1)},
		{Weight: ptr(500.0), Reps: ptr(1), Completed: ptr(false)},
		{Completed: ptr(true)}, // values stored on the set do not count
		{Weight: ptr(0.0), Reps: ptr(12), Completed: ptr(true)},
		{IsWarmup: ptr(true)},
	}

	for i, patch := range patches {
		ctrl := gomock.NewController(t)
		repoMock := NewMocksetsRepo(ctrl)
		// no FindBestByWeight expectation: any call fails the test
		recordsMock := NewMockrecordsRepo(ctrl)
		service := sets.NewService(repoMock, recordsMock, metrics.NewTestManager())

		repoMock.EXPECT().GetOwned(gomock.Any(), "set-1", "user-1").Return(ownedSet(ptr(200.0), ptr(3)), nil)
		repoMock.EXPECT().
			Apply(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, set *model.WorkoutSet, _ *model.PersonalRecord) error {
				assert.False(t, set.IsPR, "patch %d", i)
				return nil
			})

		res, err := service.UpdateSet(context.Background(), "set-1", "user-1", patch)
		require.NoError(t, err, "patch %d", i)
		assert.False(t, res.IsPR, "patch %d", i)
	}
}

func TestService_UpdateSet_HighRepsStoresRecordWithoutEstimate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksetsRepo(ctrl)
	recordsMock := NewMockrecordsRepo(ctrl)
	service := sets.NewService(repoMock, recordsMock, metrics.NewTestManager())

	repoMock.EXPECT().GetOwned(gomock.Any(), "set-1", "user-1").Return(ownedSet(nil, nil), nil)
	recordsMock.EXPECT().FindBestByWeight(gomock.Any(), "user-1", "sys-bench-press").Return(nil, nil)
	repoMock.EXPECT().
		Apply(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *model.WorkoutSet, rec *model.PersonalRecord) error {
			require.NotNil(t, rec)
			assert.Nil(t, rec.Estimated1RM)
			assert.Equal(t, 40, rec.Reps)
			return nil
		})

	res, err := service.UpdateSet(context.Background(), "set-1", "user-1", sets.Patch{
		Weight: ptr(20.0), Reps: ptr(40), Completed: ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, res.IsPR)
}

func TestService_UpdateSet_Errors(t *testing.T) {
	t.Run("ValidationBeforeAnyAccess", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		metricsManager := metrics.NewTestManager()
		service := sets.NewService(NewMocksetsRepo(ctrl), NewMockrecordsRepo(ctrl), metricsManager)

		_, err := service.UpdateSet(context.Background(), "set-1", "user-1", sets.Patch{Reps: ptr(-1)})
		var vErr *model.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterSetUpdates.WithLabelValues(metrics.SetUpdateResultInvalid)))
	})

	t.Run("NotOwned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repoMock := NewMocksetsRepo(ctrl)
		metricsManager := metrics.NewTestManager()
		service := sets.NewService(repoMock, NewMockrecordsRepo(ctrl), metricsManager)

		repoMock.EXPECT().GetOwned(gomock.Any(), "set-1", "intruder").Return(nil, sets.ErrSetNotFound)
		_, err := service.UpdateSet(context.Background(), "set-1", "intruder", sets.Patch{
			Weight: ptr(100.0), Reps: ptr(5), Completed: ptr(true),
		})
		assert.ErrorIs(t, err, sets.ErrSetNotFound)
		assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterSetUpdates.WithLabelValues(metrics.SetUpdateResultNotFound)))
	})

	t.Run("RecordLookupFails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repoMock := NewMocksetsRepo(ctrl)
		recordsMock := NewMockrecordsRepo(ctrl)
		service := sets.NewService(repoMock, recordsMock, metrics.NewTestManager())

		lookupErr := errors.New("conn reset")
		repoMock.EXPECT().GetOwned(gomock.Any(), "set-1", "user-1").Return(ownedSet(nil, nil), nil)
		recordsMock.EXPECT().FindBestByWeight(gomock.Any(), "user-1", "sys-bench-press").Return(nil, lookupErr)

		_, err := service.UpdateSet(context.Background(), "set-1", "user-1", sets.Patch{
			Weight: ptr(100.0), Reps: ptr(5), Completed: ptr(true),
		})
		assert.ErrorIs(t, err, lookupErr)
	})

	t.Run("PersistenceFails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repoMock := NewMocksetsRepo(ctrl)
		recordsMock := NewMockrecordsRepo(ctrl)
		metricsManager := metrics.NewTestManager()
		service := sets.NewService(repoMock, recordsMock, metricsManager)

		txErr := errors.New("tx aborted")
		repoMock.EXPECT().GetOwned(gomock.Any(), "set-1", "user-1").Return(ownedSet(nil, nil), nil)
		recordsMock.EXPECT().FindBestByWeight(gomock.Any(), "user-1", "sys-bench-press").Return(nil, nil)
		repoMock.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil())).Return(txErr)

		res, err := service.UpdateSet(context.Background(), "set-1", "user-1", sets.Patch{
			Weight: ptr(100.0), Reps: ptr(5), Completed: ptr(true),
		})
		assert.ErrorIs(t, err, txErr)
		assert.Nil(t, res)
		assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterPersonalRecords))
		assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterSetUpdates.WithLabelValues(metrics.SetUpdateResultFailed)))
	})
}

func TestService_AddSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksetsRepo(ctrl)
	service := sets.NewService(repoMock, NewMockrecordsRepo(ctrl), metrics.NewTestManager())

	existing := []model.WorkoutSet{
		{ID: "a", Order: 0, Weight: ptr(60.0), Reps: ptr(10), Completed: true},
	}
	repoMock.EXPECT().
		AppendSet(gomock.Any(), "we-1", "user-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, next func([]model.WorkoutSet) model.WorkoutSet) (*model.WorkoutSet, error) {
			set := next(existing)
			return &set, nil
		})

	set, err := service.AddSet(context.Background(), "we-1", "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, set.ID)
	assert.Equal(t, "we-1", set.WorkoutExerciseID)
	assert.Equal(t, 1, set.Order)
	assert.Equal(t, 60.0, *set.Weight)
	assert.Equal(t, 10, *set.Reps)
	assert.False(t, set.Completed)

	repoMock.EXPECT().
		AppendSet(gomock.Any(), "we-x", "user-1", gomock.Any()).
		Return(nil, sets.ErrWorkoutExerciseNotFound)
	_, err = service.AddSet(context.Background(), "we-x", "user-1")
	assert.ErrorIs(t, err, sets.ErrWorkoutExerciseNotFound)
}

func TestService_DeleteSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksetsRepo(ctrl)
	service := sets.NewService(repoMock, NewMockrecordsRepo(ctrl), metrics.NewTestManager())

	repoMock.EXPECT().DeleteOwned(gomock.Any(), "set-1", "user-1").Return(nil)
	require.NoError(t, service.DeleteSet(context.Background(), "set-1", "user-1"))

	repoMock.EXPECT().DeleteOwned(gomock.Any(), "set-1", "intruder").Return(sets.ErrSetNotFound)
	assert.ErrorIs(t, service.DeleteSet(context.Background(), "set-1", "intruder"), sets.ErrSetNotFound)

	dbErr := errors.New("db down")
	repoMock.EXPECT().DeleteOwned(gomock.Any(), "set-2", "user-1").Return(dbErr)
	err := service.DeleteSet(context.Background(), "set-2", "user-1")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, sets.ErrSetNotFound)
}
