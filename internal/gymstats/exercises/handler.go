package exercises

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/records"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=exercises_test

const (
	historyLimit = 20
	recordsLimit = 10
)

type exercisesRepo interface {
	ListCustom(ctx context.Context, userID string) ([]model.Exercise, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*model.Exercise, error)
	History(ctx context.Context, exerciseID, userID string, limit int) ([]HistoryEntry, error)
}

type systemCatalog interface {
	System(ctx context.Context) ([]model.Exercise, error)
}

type recordsLister interface {
	List(ctx context.Context, params records.ListParams) ([]model.PersonalRecord, error)
}

type CreateRequest struct {
	Name         string `json:"name"`
	MuscleGroup  string `json:"muscleGroup"`
	Equipment    string `json:"equipment"`
	Instructions string `json:"instructions,omitempty"`
}

func (req CreateRequest) Validate() error {
	v := &model.ValidationError{}
	model.CheckName(v, "name", req.Name)
	if !model.IsMuscleGroup(req.MuscleGroup) {
		v.Add("muscleGroup: must be one of %s", strings.Join(model.MuscleGroups, ", "))
	}
	if !model.IsEquipment(req.Equipment) {
		v.Add("equipment: must be one of %s", strings.Join(model.Equipment, ", "))
	}
	return v.Err()
}

type Handler struct {
	repo        exercisesRepo
	catalog     systemCatalog
	recordsRepo recordsLister
}

func NewHandler(repo exercisesRepo, catalog systemCatalog, recordsRepo recordsLister) *Handler {
	return &Handler{
		repo:        repo,
		catalog:     catalog,
		recordsRepo: recordsRepo,
	}
}

// SetupRoutes registers the exercise endpoints on the /api/exercises subrouter.
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods(http.MethodGet).Name("list-exercises")
	router.HandleFunc("", h.HandleCreate).Methods(http.MethodPost).Name("create-exercise")
	router.HandleFunc("/meta/muscle-groups", h.HandleMuscleGroups).Methods(http.MethodGet).Name("muscle-groups")
	router.HandleFunc("/meta/equipment", h.HandleEquipment).Methods(http.MethodGet).Name("equipment")
	router.HandleFunc("/{id}/history", h.HandleHistory).Methods(http.MethodGet).Name("exercise-history")
	router.HandleFunc("/{id}/records", h.HandleRecords).Methods(http.MethodGet).Name("exercise-records")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	system, err := h.catalog.System(ctx)
	if err != nil {
		log.Errorf("list system exercises: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch exercises")
		return
	}
	custom, err := h.repo.ListCustom(ctx, userID)
	if err != nil {
		log.Errorf("list custom exercises for %s: %s", userID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch exercises")
		return
	}

	all := make([]model.Exercise, 0, len(system)+len(custom))
	all = append(all, system...)
	all = append(all, custom...)

	query := r.URL.Query()
	pkg.WriteJSONOK(w, map[string]any{
		"exercises": Filter(all, FilterParams{
			Search:      query.Get("search"),
			MuscleGroup: query.Get("muscleGroup"),
			Equipment:   query.Get("equipment"),
		}),
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.create")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateRequest
	if err := model.DecodeStrict(r.Body, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}

	exercise, err := h.repo.Create(ctx, userID, req)
	if err != nil {
		if errors.Is(err, ErrExerciseExists) {
			pkg.WriteJSONError(w, http.StatusConflict, "Exercise already exists")
			return
		}
		log.Errorf("create exercise %q: %s", req.Name, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to create exercise")
		return
	}

	log.Debugf("custom exercise created: %s [%s]", exercise.Name, exercise.ID)
	pkg.WriteJSON(w, http.StatusCreated, map[string]any{"exercise": exercise})
}

func (h *Handler) HandleMuscleGroups(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONOK(w, map[string]any{"muscleGroups": model.MuscleGroups})
}

func (h *Handler) HandleEquipment(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONOK(w, map[string]any{"equipment": model.Equipment})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.history")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	exerciseID := mux.Vars(r)["id"]
	history, err := h.repo.History(ctx, exerciseID, userID, historyLimit)
	if err != nil {
		log.Errorf("exercise %s history: %s", exerciseID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch exercise history")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"history": history})
}

func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.records")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	exerciseID := mux.Vars(r)["id"]
	recs, err := h.recordsRepo.List(ctx, records.ListParams{
		UserID:     userID,
		ExerciseID: exerciseID,
		Limit:      recordsLimit,
	})
	if err != nil {
		log.Errorf("exercise %s records: %s", exerciseID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch records")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"records": recs})
}
