package sets

import (
	"io"

	"github.com/2beens/liftlog/internal/gymstats/model"
)

// Patch is a partial set update. Nil fields are left untouched.
type Patch struct {
	Weight    *float64 `json:"weight,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	IsWarmup  *bool    `json:"isWarmup,omitempty"`
	IsDropset *bool    `json:"isDropset,omitempty"`
	IsFailure *bool    `json:"isFailure,omitempty"`
}

// DecodePatch decodes and validates a patch. Unknown fields and wrong types are rejected.
func DecodePatch(r io.Reader) (Patch, error) {
	var p Patch
	if err := model.DecodeStrict(r, &p); err != nil {
		return Patch{}, err
	}
	if err := p.Validate(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

func (p Patch) Validate() error {
	v := &model.ValidationError{}
	if p.Weight != nil && *p.Weight < 0 {
		v.Add("weight: must be greater than or equal to 0")
	}
	if p.Reps != nil && *p.Reps < 0 {
		v.Add("reps: must be greater than or equal to 0")
	}
	return v.Err()
}

// recordCandidate returns the lift to check against the personal records.
// Only a patch that completes the set and carries non-zero weight and reps qualifies;
// values already stored on the set do not count.
func (p Patch) recordCandidate() (weight float64, reps int, ok bool) {
	if p.Completed == nil || !*p.Completed {
		return 0, 0, false
	}
	if p.Weight == nil || *p.Weight == 0 || p.Reps == nil || *p.Reps == 0 {
		return 0, 0, false
	}
	return *p.Weight, *p.Reps, true
}

// ApplyTo merges the patch fields into set.
func (p Patch) ApplyTo(set *model.WorkoutSet) {
	if p.Weight != nil {
		w := *p.Weight
		set.Weight = &w
	}
	if p.Reps != nil {
		r := *p.Reps
		set.Reps = &r
	}
	if p.Completed != nil {
		set.Completed = *p.Completed
	}
	if p.IsWarmup != nil {
		set.IsWarmup = *p.IsWarmup
	}
	if p.IsDropset != nil {
		set.IsDropset = *p.IsDropset
	}
	if p.IsFailure != nil {
		set.IsFailure = *p.IsFailure
	}
}

// NextSet builds the set appended after existing: next order, last set's weight and reps copied.
func NextSet(workoutExerciseID string, existing []model.WorkoutSet) model.WorkoutSet {
	next := model.WorkoutSet{
		WorkoutExerciseID: workoutExerciseID,
		Order:             len(existing),
	}
	if len(existing) > 0 {
		last := existing[len(existing)-1]
		if last.Weight != nil {
			w := *last.Weight
			next.Weight = &w
		}
		if last.Reps != nil {
			r := *last.Reps
			next.Reps = &r
		}
	}
	return next
}
