package sets

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=sets_test

type service interface {
	UpdateSet(ctx context.Context, setID, userID string, patch Patch) (*UpdateResult, error)
	AddSet(ctx context.Context, workoutExerciseID, userID string) (*model.WorkoutSet, error)
	DeleteSet(ctx context.Context, setID, userID string) error
}

type Handler struct {
	service service
}

func NewHandler(service service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the set endpoints on the /api/workouts subrouter.
func (h *Handler) SetupRoutes(workoutsRouter *mux.Router) {
	workoutsRouter.HandleFunc("/sets/{setId}", h.HandleUpdate).Methods(http.MethodPatch).Name("update-set")
	workoutsRouter.HandleFunc("/sets/{setId}", h.HandleDelete).Methods(http.MethodDelete).Name("delete-set")
	workoutsRouter.HandleFunc("/exercises/{workoutExerciseId}/sets", h.HandleAdd).Methods(http.MethodPost).Name("add-set")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sets.update")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	patch, err := DecodePatch(r.Body)
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}

	setID := mux.Vars(r)["setId"]
	res, err := h.service.UpdateSet(ctx, setID, userID, patch)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.Is(err, ErrSetNotFound):
			pkg.WriteJSONError(w, http.StatusNotFound, "Set not found")
		case errors.As(err, &vErr):
			pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", vErr.Details...)
		default:
			log.Errorf("update set %s: %s", setID, err)
			pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to update set")
		}
		return
	}

	if res.IsPR {
		log.Debugf("set %s: new personal record", setID)
	}
	pkg.WriteJSONOK(w, res)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sets.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	workoutExerciseID := mux.Vars(r)["workoutExerciseId"]
	set, err := h.service.AddSet(ctx, workoutExerciseID, userID)
	if err != nil {
		if errors.Is(err, ErrWorkoutExerciseNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		log.Errorf("add set to %s: %s", workoutExerciseID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to add set")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"set": set})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sets.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	setID := mux.Vars(r)["setId"]
	if err := h.service.DeleteSet(ctx, setID, userID); err != nil {
		if errors.Is(err, ErrSetNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Set not found")
			return
		}
		log.Errorf("delete set %s: %s", setID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to delete set")
		return
	}

	pkg.WriteSuccess(w)
}
