package workouts

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/gymstats/exercises"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

const (
	defaultPage  = 1
	defaultLimit = 20
)

type workoutsRepo interface {
	List(ctx context.Context, params ListParams) ([]model.Workout, int, error)
	Get(ctx context.Context, id, userID string) (*model.Workout, error)
	Start(ctx context.Context, userID string, req StartRequest, startedAt time.Time) (*model.Workout, error)
	AddExercise(ctx context.Context, workoutID, userID, exerciseID string) (*model.WorkoutExercise, error)
	Complete(ctx context.Context, id, userID string, completedAt time.Time) (*model.Workout, error)
	Delete(ctx context.Context, id, userID string) error
}

type StartRequest struct {
	Name       string  `json:"name"`
	TemplateID *string `json:"templateId,omitempty"`
}

type AddExerciseRequest struct {
	ExerciseID string `json:"exerciseId"`
}

type ListResponse struct {
	Workouts   []model.Workout `json:"workouts"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

type Handler struct {
	repo workoutsRepo
	now  func() time.Time
}

func NewHandler(repo workoutsRepo) *Handler {
	return &Handler{
		repo: repo,
		now:  time.Now,
	}
}

// SetupRoutes registers the workout endpoints on the /api/workouts subrouter.
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods(http.MethodGet).Name("list-workouts")
	router.HandleFunc("/start", h.HandleStart).Methods(http.MethodPost).Name("start-workout")
	router.HandleFunc("/{id}", h.HandleGet).Methods(http.MethodGet).Name("get-workout")
	router.HandleFunc("/{id}", h.HandleDelete).Methods(http.MethodDelete).Name("delete-workout")
	router.HandleFunc("/{id}/exercises", h.HandleAddExercise).Methods(http.MethodPost).Name("add-workout-exercise")
	router.HandleFunc("/{id}/complete", h.HandleComplete).Methods(http.MethodPost).Name("complete-workout")
	router.HandleFunc("/{id}/summary", h.HandleSummary).Methods(http.MethodGet).Name("workout-summary")
}

// PageParams reads page and limit from the query, falling back to the defaults on invalid values.
func PageParams(r *http.Request) (page, limit int) {
	page, limit = defaultPage, defaultLimit
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	return page, limit
}

func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.workouts.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, limit := PageParams(r)
	workouts, total, err := h.repo.List(ctx, ListParams{
		UserID: userID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		log.Errorf("list workouts for %s: %s", userID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch workouts")
		return
	}

	pkg.WriteJSONOK(w, ListResponse{
		Workouts:   workouts,
		Total:      total,
		Page:       page,
		TotalPages: TotalPages(total, limit),
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.workouts.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	workout, err := h.repo.Get(ctx, id, userID)
	if err != nil {
		h.writeRepoError(w, err, "Failed to fetch workout", id)
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"workout": workout})
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.workouts.start")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req StartRequest
	if err := model.DecodeStrict(r.Body, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	v := &model.ValidationError{}
	model.CheckName(v, "name", req.Name)
	if err := v.Err(); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", v.Details...)
		return
	}

	workout, err := h.repo.Start(ctx, userID, req, h.now())
	if err != nil {
		log.Errorf("start workout %q: %s", req.Name, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to start workout")
		return
	}

	log.Debugf("workout started: %s [%s], %d exercises", workout.Name, workout.ID, len(workout.Exercises))
	pkg.WriteJSON(w, http.StatusCreated, map[string]any{"workout": workout})
}

func (h *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.workouts.addExercise")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AddExerciseRequest
	if err := model.DecodeStrict(r.Body, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}
	if req.ExerciseID == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", "exerciseId: must not be empty")
		return
	}

	id := mux.Vars(r)["id"]
	added, err := h.repo.AddExercise(ctx, id, userID, req.ExerciseID)
	if err != nil {
		if errors.Is(err, exercises.ErrExerciseNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		h.writeRepoError(w, err, "Failed to add exercise", id)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, map[string]any{"exercise": added})
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.workouts.complete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	workout, err := h.repo.Complete(ctx, id, userID, h.now())
	if err != nil {
		h.writeRepoError(w, err, "Failed to complete workout", id)
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"workout": workout})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.workouts.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.repo.Delete(ctx, id, userID); err != nil {
		h.writeRepoError(w, err, "Failed to delete workout", id)
		return
	}

	pkg.WriteSuccess(w)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.workouts.summary")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	workout, err := h.repo.Get(ctx, id, userID)
	if err != nil {
		h.writeRepoError(w, err, "Failed to fetch workout summary", id)
		return
	}

	pkg.WriteJSONOK(w, Summarize(*workout))
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, message, workoutID string) {
	if errors.Is(err, ErrWorkoutNotFound) {
		pkg.WriteJSONError(w, http.StatusNotFound, "Workout not found")
		return
	}
	log.Errorf("workout %s: %s: %s", workoutID, strings.ToLower(message), err)
	pkg.WriteJSONError(w, http.StatusInternalServerError, message)
}
