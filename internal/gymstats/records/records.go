// Package records implements personal record detection and storage.
package records

import (
	"time"

	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/pkg"
)

// brzyckiRepsLimit is where the Brzycki formula's denominator reaches zero.
const brzyckiRepsLimit = 37

// EstimateOneRepMax estimates a one-rep max with the Brzycki formula: w * 36 / (37 - reps).
// ok is false for reps outside 1..36, where the estimate is undefined.
func EstimateOneRepMax(weight float64, reps int) (_ float64, ok bool) {
	if reps < 1 || reps >= brzyckiRepsLimit {
		return 0, false
	}
	return weight * 36 / float64(brzyckiRepsLimit-reps), true
}

// IsNewRecord reports whether weight x reps beats the current best-by-weight record:
// there is no record yet, or the weight is strictly higher with at least as many reps.
// More reps at the same weight is not a record.
func IsNewRecord(best *model.PersonalRecord, weight float64, reps int) bool {
	if best == nil {
		return true
	}
	return weight > best.Weight && reps >= best.Reps
}

func NewRecord(userID, exerciseID string, weight float64, reps int, achievedAt time.Time) *model.PersonalRecord {
	rec := &model.PersonalRecord{
		ID:         pkg.NewID(),
		UserID:     userID,
		ExerciseID: exerciseID,
		Weight:     weight,
		Reps:       reps,
		AchievedAt: achievedAt,
	}
	if e1rm, ok := EstimateOneRepMax(weight, reps); ok {
		rec.Estimated1RM = &e1rm
	}
	return rec
}
