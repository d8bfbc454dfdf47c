// Package model holds the workout tracking types shared by the server packages,
// the MCP tools and the API client.
package model

import "time"

type WorkoutSet struct {
	ID                string   `json:"id"`
	WorkoutExerciseID string   `json:"workoutExerciseId,omitempty"`
	Order             int      `json:"order"`
	Weight            *float64 `json:"weight"`
	Reps              *int     `json:"reps"`
	Duration          *int     `json:"duration"`
	Distance          *float64 `json:"distance"`
	IsWarmup          bool     `json:"isWarmup"`
	IsDropset         bool     `json:"isDropset"`
	IsFailure         bool     `json:"isFailure"`
	IsPR              bool     `json:"isPR"`
	Completed         bool     `json:"completed"`
}

// Volume is weight x reps, or 0 if either is missing.
func (s WorkoutSet) Volume() float64 {
	if s.Weight == nil || s.Reps == nil {
		return 0
	}
	return *s.Weight * float64(*s.Reps)
}

type PersonalRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	ExerciseID   string    `json:"exerciseId"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	Estimated1RM *float64  `json:"estimated1RM"`
	AchievedAt   time.Time `json:"achievedAt"`
}

type Exercise struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MuscleGroup  string  `json:"muscleGroup"`
	Equipment    string  `json:"equipment"`
	Instructions string  `json:"instructions,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	IsCustom     bool    `json:"isCustom"`
	CreatedByID  *string `json:"createdById,omitempty"`
}

type WorkoutExercise struct {
	ID       string       `json:"id"`
	Order    int          `json:"order"`
	Notes    string       `json:"notes,omitempty"`
	RestTime *int         `json:"restTime"`
	Exercise Exercise     `json:"exercise"`
	Sets     []WorkoutSet `json:"sets"`
}

type Workout struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt *time.Time        `json:"completedAt"`
	Duration    *int              `json:"duration"`
	Notes       string            `json:"notes,omitempty"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

type TemplateExercise struct {
	ID         string   `json:"id"`
	Order      int      `json:"order"`
	TargetSets int      `json:"targetSets"`
	TargetReps string   `json:"targetReps"`
	RestTime   *int     `json:"restTime"`
	Notes      string   `json:"notes,omitempty"`
	Exercise   Exercise `json:"exercise"`
}

type WorkoutTemplate struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Notes     string             `json:"notes,omitempty"`
	Color     string             `json:"color,omitempty"`
	FolderID  *string            `json:"folderId"`
	Exercises []TemplateExercise `json:"exercises"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type RoutineFolder struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Color     string            `json:"color,omitempty"`
	Order     int               `json:"order"`
	Templates []WorkoutTemplate `json:"templates"`
}

var (
	MuscleGroups = []string{"chest", "back", "shoulders", "arms", "legs", "core", "cardio"}
	Equipment    = []string{"barbell", "dumbbell", "machine", "cable", "bodyweight", "other"}
)

func IsMuscleGroup(s string) bool {
	return contains(MuscleGroups, s)
}

func IsEquipment(s string) bool {
	return contains(Equipment, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
