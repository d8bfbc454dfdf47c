//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/liftlog/internal/client"
	"github.com/2beens/liftlog/internal/gymstats/folders"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/sets"
	"github.com/2beens/liftlog/internal/gymstats/templates"
	"github.com/2beens/liftlog/internal/gymstats/workouts"
	"github.com/2beens/liftlog/pkg/optimistic"
)

func ptr[T any](v T) *T {
	return &v
}

func (s *IntegrationTestSuite) loggedInClient(ctx context.Context) *client.Client {
	c := client.New(serverEndpoint, 5*time.Second)
	s.Require().NoError(c.Login(ctx, testUsername, testPassword))
	s.Require().NotEmpty(c.Token())
	return c
}

func (s *IntegrationTestSuite) TestLogin() {
	ctx := context.Background()

	c := client.New(serverEndpoint, 5*time.Second)
	err := c.Login(ctx, testUsername, "wrong")
	s.Require().Error(err)
	s.True(client.IsStatus(err, http.StatusUnauthorized))

	c = s.loggedInClient(ctx)
	_, err = c.Folders(ctx)
	s.Require().NoError(err)

	s.Require().NoError(c.Logout(ctx))
	_, err = c.Folders(ctx)
	s.True(client.IsStatus(err, http.StatusUnauthorized))
}

func (s *IntegrationTestSuite) TestWorkoutPersonalRecords() {
	ctx := context.Background()
	c := s.loggedInClient(ctx)

	w, err := c.StartWorkout(ctx, workouts.StartRequest{Name: "Push day"})
	s.Require().NoError(err)
	s.Require().NotNil(w)

	we, err := c.AddExercise(ctx, w.ID, "sys-bench-press")
	s.Require().NoError(err)
	s.Equal("sys-bench-press", we.Exercise.ID)

	cache := client.NewWorkoutCache(c, optimistic.NewStore[model.Workout]())
	cached, err := cache.Workout(ctx, w.ID)
	s.Require().NoError(err)
	s.Require().Len(cached.Exercises, 1)

	// a new workout exercise starts with one empty set
	s.Require().Len(cached.Exercises[0].Sets, 1)
	first := cached.Exercises[0].Sets[0]

	pendingAdd, err := cache.AddSet(ctx, w.ID, we.ID)
	s.Require().NoError(err)
	added, err := pendingAdd.Wait()
	s.Require().NoError(err)
	s.Equal(optimistic.Reconciled, pendingAdd.State())
	second := *added

	cached, err = cache.Workout(ctx, w.ID)
	s.Require().NoError(err)
	s.Require().Len(cached.Exercises[0].Sets, 2)
	s.Equal(first.ID, cached.Exercises[0].Sets[0].ID)
	s.Equal(second.ID, cached.Exercises[0].Sets[1].ID)

	update := func(setID string, weight float64, reps int) *sets.UpdateResult {
		pending, err := cache.UpdateSet(ctx, w.ID, setID, sets.Patch{
			Weight:    ptr(weight),
			Reps:      ptr(reps),
			Completed: ptr(true),
		})
		s.Require().NoError(err)
		res, err := pending.Wait()
		s.Require().NoError(err)
		return res
	}

	res := update(first.ID, 100, 5)
	s.True(res.IsPR)
	s.True(res.Set.Completed)

	// heavier but fewer reps is not a record
	res = update(second.ID, 110, 3)
	s.False(res.IsPR)

	cached, err = cache.Workout(ctx, w.ID)
	s.Require().NoError(err)
	s.True(cached.Exercises[0].Sets[0].IsPR)
	s.False(cached.Exercises[0].Sets[1].IsPR)

	_, err = cache.DeleteSet(ctx, w.ID, first.ID)
	s.ErrorIs(err, client.ErrSetCompleted)

	records, err := c.ExerciseRecords(ctx, "sys-bench-press")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(100.0, records[0].Weight)
	s.Equal(5, records[0].Reps)
	s.Require().NotNil(records[0].Estimated1RM)
	s.InDelta(112.5, *records[0].Estimated1RM, 0.001)

	completed, err := c.CompleteWorkout(ctx, w.ID)
	s.Require().NoError(err)
	s.NotNil(completed.CompletedAt)

	summary, err := c.WorkoutSummary(ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(1, summary.Stats.PRCount)
	s.Equal(2, summary.Stats.CompletedSets)
}

func (s *IntegrationTestSuite) TestFoldersAndTemplates() {
	ctx := context.Background()
	c := s.loggedInClient(ctx)

	folderCache := client.NewFolderCache(c, optimistic.NewStore[folders.Listing]())
	templateCache := client.NewTemplateCache(c, optimistic.NewStore[[]model.WorkoutTemplate]())

	_, err := folderCache.Listing(ctx)
	s.Require().NoError(err)

	pendingFolder, err := folderCache.CreateFolder(ctx, folders.CreateRequest{Name: "Strength", Color: "#ff0000"})
	s.Require().NoError(err)
	folder, err := pendingFolder.Wait()
	s.Require().NoError(err)

	_, err = templateCache.Templates(ctx)
	s.Require().NoError(err)
	pendingTemplate, err := templateCache.CreateTemplate(ctx, templates.CreateRequest{
		Name: "Bench focus",
		Exercises: []templates.ExerciseInput{
			{ExerciseID: "sys-bench-press", TargetSets: ptr(3), TargetReps: ptr("5")},
		},
	})
	s.Require().NoError(err)
	template, err := pendingTemplate.Wait()
	s.Require().NoError(err)

	pendingMove, err := folderCache.MoveTemplate(ctx, folder.ID, template.ID)
	s.Require().NoError(err)
	_, err = pendingMove.Wait()
	s.Require().NoError(err)

	listing, err := folderCache.Listing(ctx)
	s.Require().NoError(err)
	var found bool
	for _, f := range listing.Folders {
		if f.ID != folder.ID {
			continue
		}
		for _, t := range f.Templates {
			if t.ID == template.ID {
				found = true
			}
		}
	}
	s.True(found, "template should be listed in its folder")

	pendingDelete, err := folderCache.DeleteFolder(ctx, folder.ID)
	s.Require().NoError(err)
	_, err = pendingDelete.Wait()
	s.Require().NoError(err)

	serverListing, err := c.Folders(ctx)
	s.Require().NoError(err)
	for _, t := range serverListing.UnfolderedTemplates {
		if t.ID == template.ID {
			s.Nil(t.FolderID)
			return
		}
	}
	s.Fail("template should be unfoldered after its folder is deleted")
}
