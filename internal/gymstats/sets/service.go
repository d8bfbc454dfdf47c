package sets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/records"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=sets_test

var (
	ErrSetNotFound             = errors.New("set not found")
	ErrWorkoutExerciseNotFound = errors.New("workout exercise not found")
)

// OwnedSet is a set resolved through its workout exercise and workout, for a given user.
type OwnedSet struct {
	Set        model.WorkoutSet
	ExerciseID string
	WorkoutID  string
}

type UpdateResult struct {
	Set  *model.WorkoutSet `json:"set"`
	IsPR bool              `json:"isPR"`
}

type setsRepo interface {
	GetOwned(ctx context.Context, setID, userID string) (*OwnedSet, error)
	Apply(ctx context.Context, set *model.WorkoutSet, record *model.PersonalRecord) error
	AppendSet(ctx context.Context, workoutExerciseID, userID string, next func(existing []model.WorkoutSet) model.WorkoutSet) (*model.WorkoutSet, error)
	DeleteOwned(ctx context.Context, setID, userID string) error
}

type recordsRepo interface {
	FindBestByWeight(ctx context.Context, userID, exerciseID string) (*model.PersonalRecord, error)
}

type Service struct {
	repo           setsRepo
	recordsRepo    recordsRepo
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(repo setsRepo, recordsRepo recordsRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		recordsRepo:    recordsRepo,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// UpdateSet applies patch to the user's set. When the patch completes the set with a lift
// that beats the user's best for the exercise, a personal record is stored in the same
// transaction and the set is flagged isPR.
func (s *Service) UpdateSet(ctx context.Context, setID, userID string, patch Patch) (res *UpdateResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sets.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		s.countUpdate(res, err)
	}()
	span.SetAttributes(attribute.String("set.id", setID))

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	owned, err := s.repo.GetOwned(ctx, setID, userID)
	if err != nil {
		return nil, err
	}

	var newRecord *model.PersonalRecord
	if weight, reps, ok := patch.recordCandidate(); ok {
		best, err := s.recordsRepo.FindBestByWeight(ctx, userID, owned.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("find best record: %w", err)
		}
		if records.IsNewRecord(best, weight, reps) {
			newRecord = records.NewRecord(userID, owned.ExerciseID, weight, reps, s.now())
			if newRecord.Estimated1RM == nil {
				log.Warnf("set %s: no 1RM estimate for %d reps", setID, reps)
			}
		}
	}

	set := owned.Set
	patch.ApplyTo(&set)
	set.IsPR = newRecord != nil

	if err := s.repo.Apply(ctx, &set, newRecord); err != nil {
		if errors.Is(err, ErrSetNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("apply set update: %w", err)
	}

	if newRecord != nil {
		span.SetAttributes(attribute.Bool("set.pr", true))
		s.metricsManager.CounterPersonalRecords.Inc()
	}

	return &UpdateResult{
		Set:  &set,
		IsPR: set.IsPR,
	}, nil
}

func (s *Service) countUpdate(res *UpdateResult, err error) {
	var vErr *model.ValidationError
	result := metrics.SetUpdateResultOK
	switch {
	case err == nil && res != nil && res.IsPR:
		result = metrics.SetUpdateResultPR
	case err == nil:
	case errors.Is(err, ErrSetNotFound):
		result = metrics.SetUpdateResultNotFound
	case errors.As(err, &vErr):
		result = metrics.SetUpdateResultInvalid
	default:
		result = metrics.SetUpdateResultFailed
	}
	s.metricsManager.CounterSetUpdates.WithLabelValues(result).Inc()
}

// AddSet appends a set to the user's workout exercise, copying the previous set's weight and reps.
func (s *Service) AddSet(ctx context.Context, workoutExerciseID, userID string) (_ *model.WorkoutSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sets.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout_exercise.id", workoutExerciseID))

	set, err := s.repo.AppendSet(ctx, workoutExerciseID, userID, func(existing []model.WorkoutSet) model.WorkoutSet {
		next := NextSet(workoutExerciseID, existing)
		next.ID = pkg.NewID()
		return next
	})
	if err != nil {
		if errors.Is(err, ErrWorkoutExerciseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("append set: %w", err)
	}
	return set, nil
}

// DeleteSet removes the user's set. Completed sets can be deleted too; the records they
// produced stay.
func (s *Service) DeleteSet(ctx context.Context, setID, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sets.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set.id", setID))

	if err := s.repo.DeleteOwned(ctx, setID, userID); err != nil {
		if errors.Is(err, ErrSetNotFound) {
			return err
		}
		return fmt.Errorf("delete set: %w", err)
	}
	return nil
}
