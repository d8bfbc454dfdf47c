package templates

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/gymstats/exercises"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=templates_test

type templatesRepo interface {
	List(ctx context.Context, userID string) ([]model.WorkoutTemplate, error)
	Get(ctx context.Context, id, userID string) (*model.WorkoutTemplate, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*model.WorkoutTemplate, error)
	Update(ctx context.Context, id, userID string, req UpdateRequest) (*model.WorkoutTemplate, error)
	Delete(ctx context.Context, id, userID string) error
}

type Handler struct {
	repo templatesRepo
}

func NewHandler(repo templatesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

// SetupRoutes registers the template endpoints on the /api/templates subrouter.
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods(http.MethodGet).Name("list-templates")
	router.HandleFunc("", h.HandleCreate).Methods(http.MethodPost).Name("create-template")
	router.HandleFunc("/{id}", h.HandleGet).Methods(http.MethodGet).Name("get-template")
	router.HandleFunc("/{id}", h.HandleUpdate).Methods(http.MethodPatch).Name("update-template")
	router.HandleFunc("/{id}", h.HandleDelete).Methods(http.MethodDelete).Name("delete-template")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.templates.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	templates, err := h.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list templates for %s: %s", userID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch templates")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"templates": templates})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.templates.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	template, err := h.repo.Get(ctx, id, userID)
	if err != nil {
		writeError(w, err, "Failed to fetch template")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"template": template})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.templates.create")
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
	req.Normalize()
	if err := req.Validate(); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}

	template, err := h.repo.Create(ctx, userID, req)
	if err != nil {
		writeError(w, err, "Failed to create template")
		return
	}

	log.Debugf("template created: %s [%s]", template.Name, template.ID)
	pkg.WriteJSON(w, http.StatusCreated, map[string]any{"template": template})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.templates.update")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateRequest
	if err := model.DecodeStrict(r.Body, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}

	id := mux.Vars(r)["id"]
	template, err := h.repo.Update(ctx, id, userID, req)
	if err != nil {
		writeError(w, err, "Failed to update template")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"template": template})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.templates.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.repo.Delete(ctx, id, userID); err != nil {
		writeError(w, err, "Failed to delete template")
		return
	}

	pkg.WriteSuccess(w)
}

// writeError maps repo errors to responses; message is used for unexpected failures.
func writeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Template not found")
	case errors.Is(err, ErrFolderNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Folder not found")
	case errors.Is(err, exercises.ErrExerciseNotFound):
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", "exercises: unknown exercise")
	default:
		log.Errorf("%s: %s", message, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, message)
	}
}
