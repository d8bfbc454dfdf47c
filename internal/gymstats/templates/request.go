package templates

import (
	"strings"

	"github.com/2beens/liftlog/internal/gymstats/model"
)

const (
	DefaultTargetSets = 3
	DefaultTargetReps = "8-12"
	maxTargetSets     = 20
)

// ExerciseInput is one planned exercise of a template in create and update requests.
type ExerciseInput struct {
	ExerciseID string  `json:"exerciseId"`
	TargetSets *int    `json:"targetSets,omitempty"`
	TargetReps *string `json:"targetReps,omitempty"`
	RestTime   *int    `json:"restTime,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

type CreateRequest struct {
	Name      string          `json:"name"`
	Notes     string          `json:"notes,omitempty"`
	Color     string          `json:"color,omitempty"`
	FolderID  *string         `json:"folderId,omitempty"`
	Exercises []ExerciseInput `json:"exercises,omitempty"`
}

func (req *CreateRequest) Normalize() {
	req.Name = strings.TrimSpace(req.Name)
	for i := range req.Exercises {
		req.Exercises[i].applyDefaults()
	}
}

func (req CreateRequest) Validate() error {
	v := &model.ValidationError{}
	model.CheckName(v, "name", req.Name)
	validateExercises(v, req.Exercises)
	return v.Err()
}

// UpdateRequest is a partial template update. When Exercises is set, it replaces all
// of the template's exercises.
type UpdateRequest struct {
	Name      *string          `json:"name,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	Color     *string          `json:"color,omitempty"`
	Exercises *[]ExerciseInput `json:"exercises,omitempty"`
}

func (req *UpdateRequest) Normalize() {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Exercises != nil {
		for i := range *req.Exercises {
			(*req.Exercises)[i].applyDefaults()
		}
	}
}

func (req UpdateRequest) Validate() error {
	v := &model.ValidationError{}
	if req.Name != nil {
		model.CheckName(v, "name", *req.Name)
	}
	if req.Exercises != nil {
		validateExercises(v, *req.Exercises)
	}
	return v.Err()
}

func (e *ExerciseInput) applyDefaults() {
	if e.TargetSets == nil {
		sets := DefaultTargetSets
		e.TargetSets = &sets
	}
	if e.TargetReps == nil || strings.TrimSpace(*e.TargetReps) == "" {
		reps := DefaultTargetReps
		e.TargetReps = &reps
	}
}

func validateExercises(v *model.ValidationError, exercises []ExerciseInput) {
	for i, e := range exercises {
		if e.ExerciseID == "" {
			v.Add("exercises[%d].exerciseId: must not be empty", i)
		}
		if e.TargetSets != nil && (*e.TargetSets < 1 || *e.TargetSets > maxTargetSets) {
			v.Add("exercises[%d].targetSets: must be between 1 and %d", i, maxTargetSets)
		}
		if e.RestTime != nil && *e.RestTime < 0 {
			v.Add("exercises[%d].restTime: must be greater than or equal to 0", i)
		}
	}
}
