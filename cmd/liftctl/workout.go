package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/sets"
	"github.com/2beens/liftlog/internal/gymstats/workouts"

	"github.com/spf13/cobra"
)

func newWorkoutCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Show workouts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <workout-id>",
		Short: "Print a workout with its sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			w, err := a.workouts.Workout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printWorkout(cmd.OutOrStdout(), w)
			return nil
		},
	})
	return cmd
}

func newSetCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Log sets of a workout",
	}
	cmd.AddCommand(newSetUpdateCmd(opts))
	cmd.AddCommand(newSetAddCmd(opts))
	cmd.AddCommand(newSetDeleteCmd(opts))
	return cmd
}

func newSetUpdateCmd(opts *globalOptions) *cobra.Command {
	var (
		weight    float64
		reps      int
		completed bool
		warmup    bool
		dropset   bool
		failure   bool
	)

	cmd := &cobra.Command{
		Use:   "update <workout-id> <set-id>",
		Short: "Update a set; a completed set may become a personal record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch sets.Patch
			flags := cmd.Flags()
			if flags.Changed("weight") {
				patch.Weight = &weight
			}
			if flags.Changed("reps") {
				patch.Reps = &reps
			}
			if flags.Changed("completed") {
				patch.Completed = &completed
			}
			if flags.Changed("warmup") {
				patch.IsWarmup = &warmup
			}
			if flags.Changed("dropset") {
				patch.IsDropset = &dropset
			}
			if flags.Changed("failure") {
				patch.IsFailure = &failure
			}
			if err := patch.Validate(); err != nil {
				return err
			}

			a := newApp(opts)
			workoutID, setID := args[0], args[1]
			if _, err := a.workouts.Workout(cmd.Context(), workoutID); err != nil {
				return err
			}

			pending, err := a.workouts.UpdateSet(cmd.Context(), workoutID, setID, patch)
			if err != nil {
				return err
			}
			res, err := pending.Wait()
			if err != nil {
				return fmt.Errorf("update set %s (%s): %w", setID, pending.State(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "set %s updated: %s\n", setID, formatSet(*res.Set))
			if res.IsPR {
				fmt.Fprintln(out, "new personal record!")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&weight, "weight", 0, "weight in kg")
	flags.IntVar(&reps, "reps", 0, "repetitions")
	flags.BoolVar(&completed, "completed", false, "mark the set completed")
	flags.BoolVar(&warmup, "warmup", false, "warmup set")
	flags.BoolVar(&dropset, "dropset", false, "drop set")
	flags.BoolVar(&failure, "failure", false, "set taken to failure")
	return cmd
}

func newSetAddCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <workout-id> <workout-exercise-id>",
		Short: "Append a set to an exercise of the workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			workoutID, workoutExerciseID := args[0], args[1]
			if _, err := a.workouts.Workout(cmd.Context(), workoutID); err != nil {
				return err
			}

			pending, err := a.workouts.AddSet(cmd.Context(), workoutID, workoutExerciseID)
			if err != nil {
				return err
			}
			created, err := pending.Wait()
			if err != nil {
				return fmt.Errorf("add set: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set %s added: %s\n", created.ID, formatSet(*created))
			return nil
		},
	}
}

func newSetDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <workout-id> <set-id>",
		Short: "Delete a set that is not completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			workoutID, setID := args[0], args[1]
			if _, err := a.workouts.Workout(cmd.Context(), workoutID); err != nil {
				return err
			}

			pending, err := a.workouts.DeleteSet(cmd.Context(), workoutID, setID)
			if err != nil {
				return err
			}
			if _, err := pending.Wait(); err != nil {
				return fmt.Errorf("delete set %s: %w", setID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set %s deleted\n", setID)
			return nil
		},
	}
}

func printWorkout(out io.Writer, w model.Workout) {
	status := "in progress"
	if w.CompletedAt != nil {
		status = "completed"
	}
	summary := workouts.Summarize(w)
	fmt.Fprintf(out, "%s [%s] %s, %d/%d sets, volume %.1f kg\n",
		w.Name, w.ID, status, summary.Stats.CompletedSets, summary.Stats.TotalSets, summary.Stats.TotalVolume)

	for _, we := range w.Exercises {
		fmt.Fprintf(out, "  %s [%s]\n", we.Exercise.Name, we.ID)
		for _, s := range we.Sets {
			fmt.Fprintf(out, "    %d. [%s] %s\n", s.Order+1, s.ID, formatSet(s))
		}
	}
}

func formatSet(s model.WorkoutSet) string {
	var b strings.Builder
	switch {
	case s.Weight != nil && s.Reps != nil:
		fmt.Fprintf(&b, "%g kg x %d", *s.Weight, *s.Reps)
	case s.Reps != nil:
		fmt.Fprintf(&b, "%d reps", *s.Reps)
	default:
		b.WriteString("-")
	}

	var tags []string
	if s.Completed {
		tags = append(tags, "done")
	}
	if s.IsWarmup {
		tags = append(tags, "warmup")
	}
	if s.IsDropset {
		tags = append(tags, "dropset")
	}
	if s.IsFailure {
		tags = append(tags, "failure")
	}
	if s.IsPR {
		tags = append(tags, "PR")
	}
	if len(tags) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(tags, ", "))
	}
	return b.String()
}
