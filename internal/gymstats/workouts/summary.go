package workouts

import (
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/model"
)

type Stats struct {
	TotalSets     int     `json:"totalSets"`
	CompletedSets int     `json:"completedSets"`
	TotalVolume   float64 `json:"totalVolume"`
	PRCount       int     `json:"prCount"`
}

type Summary struct {
	Stats    Stats  `json:"stats"`
	Duration string `json:"duration"`
}

// Summarize counts the sets of a workout. Volume sums weight x reps over completed sets
// that have both a non-zero weight and non-zero reps.
func Summarize(w model.Workout) Summary {
	var stats Stats
	for _, we := range w.Exercises {
		for _, s := range we.Sets {
			stats.TotalSets++
			if !s.Completed {
				continue
			}
			stats.CompletedSets++
			if s.IsPR {
				stats.PRCount++
			}
			if s.Weight != nil && *s.Weight != 0 && s.Reps != nil && *s.Reps != 0 {
				stats.TotalVolume += s.Volume()
			}
		}
	}

	seconds := 0
	if w.Duration != nil {
		seconds = *w.Duration
	} else if w.CompletedAt != nil {
		seconds = DurationSeconds(w.StartedAt, *w.CompletedAt)
	}

	return Summary{
		Stats:    stats,
		Duration: FormatDuration(seconds),
	}
}

// DurationSeconds is the whole number of seconds between start and end, never negative.
func DurationSeconds(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// FormatDuration renders seconds as "1h 2m", "3m 4s" or "5s".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
