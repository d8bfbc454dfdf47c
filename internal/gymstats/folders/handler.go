package folders

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/templates"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=folders_test

type foldersRepo interface {
	List(ctx context.Context, userID string) (*Listing, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*model.RoutineFolder, error)
	Update(ctx context.Context, id, userID string, req UpdateRequest) (*model.RoutineFolder, error)
	Delete(ctx context.Context, id, userID string) error
}

type templateMover interface {
	MoveToFolder(ctx context.Context, id, userID string, folderID *string) (*model.WorkoutTemplate, error)
}

type MoveTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

type Handler struct {
	repo  foldersRepo
	mover templateMover
}

func NewHandler(repo foldersRepo, mover templateMover) *Handler {
	return &Handler{
		repo:  repo,
		mover: mover,
	}
}

// SetupRoutes registers the folder endpoints on the /api/folders subrouter.
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods(http.MethodGet).Name("list-folders")
	router.HandleFunc("", h.HandleCreate).Methods(http.MethodPost).Name("create-folder")
	router.HandleFunc("/{id}", h.HandleUpdate).Methods(http.MethodPatch).Name("update-folder")
	router.HandleFunc("/{id}", h.HandleDelete).Methods(http.MethodDelete).Name("delete-folder")
	router.HandleFunc("/{id}/templates", h.HandleMoveTemplate).Methods(http.MethodPost).Name("move-template")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.folders.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	listing, err := h.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list folders for %s: %s", userID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch folders")
		return
	}

	pkg.WriteJSONOK(w, listing)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.folders.create")
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

	folder, err := h.repo.Create(ctx, userID, req)
	if err != nil {
		log.Errorf("create folder %q: %s", req.Name, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Failed to create folder")
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, map[string]any{"folder": folder})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.folders.update")
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
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := req.Validate(); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}

	id := mux.Vars(r)["id"]
	folder, err := h.repo.Update(ctx, id, userID, req)
	if err != nil {
		writeError(w, err, "Failed to update folder")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"folder": folder})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.folders.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.repo.Delete(ctx, id, userID); err != nil {
		writeError(w, err, "Failed to delete folder")
		return
	}

	pkg.WriteSuccess(w)
}

// HandleMoveTemplate moves a template into the folder, or out of any folder for the "none" id.
func (h *Handler) HandleMoveTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.folders.moveTemplate")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req MoveTemplateRequest
	if err := model.DecodeStrict(r.Body, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", model.ValidationDetails(err)...)
		return
	}
	if req.TemplateID == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Validation failed", "templateId: must not be empty")
		return
	}

	template, err := h.mover.MoveToFolder(ctx, req.TemplateID, userID, TargetFolder(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, err, "Failed to move template")
		return
	}

	pkg.WriteJSONOK(w, map[string]any{"template": template})
}

func writeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrFolderNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Folder not found")
	case errors.Is(err, templates.ErrTemplateNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Template not found")
	default:
		log.Errorf("%s: %s", message, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, message)
	}
}
