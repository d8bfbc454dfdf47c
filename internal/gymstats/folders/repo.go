package folders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/templates"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrFolderNotFound = templates.ErrFolderNotFound

type CreateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (req CreateRequest) Validate() error {
	v := &model.ValidationError{}
	model.CheckName(v, "name", req.Name)
	return v.Err()
}

type UpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Order *int    `json:"order,omitempty"`
}

func (req UpdateRequest) Validate() error {
	v := &model.ValidationError{}
	if req.Name != nil {
		model.CheckName(v, "name", *req.Name)
	}
	if req.Order != nil && *req.Order < 0 {
		v.Add("order: must be greater than or equal to 0")
	}
	return v.Err()
}

// Listing is the user's folders, each with its templates, plus the templates in no folder.
type Listing struct {
	Folders             []model.RoutineFolder   `json:"folders"`
	UnfolderedTemplates []model.WorkoutTemplate `json:"unfolderedTemplates"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the folders by order, each with its templates newest first.
func (r *Repo) List(ctx context.Context, userID string) (_ *Listing, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.folders.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, color, "order"
		FROM routine_folders
		WHERE user_id = $1
		ORDER BY "order", created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	folders := make([]model.RoutineFolder, 0)
	for rows.Next() {
		var f model.RoutineFolder
		if err := rows.Scan(&f.ID, &f.Name, &f.Color, &f.Order); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	all, err := templates.ListForUser(ctx, r.db, userID, "t.created_at DESC")
	if err != nil {
		return nil, err
	}

	return Group(folders, all), nil
}

// Group assigns templates to their folders, keeping the templates order.
// Templates pointing to an unknown folder are treated as unfoldered.
func Group(folders []model.RoutineFolder, all []model.WorkoutTemplate) *Listing {
	index := make(map[string]int, len(folders))
	for i := range folders {
		folders[i].Templates = make([]model.WorkoutTemplate, 0)
		index[folders[i].ID] = i
	}

	listing := &Listing{
		Folders:             folders,
		UnfolderedTemplates: make([]model.WorkoutTemplate, 0),
	}
	for _, t := range all {
		if t.FolderID != nil {
			if i, ok := index[*t.FolderID]; ok {
				folders[i].Templates = append(folders[i].Templates, t)
				continue
			}
		}
		listing.UnfolderedTemplates = append(listing.UnfolderedTemplates, t)
	}
	return listing
}

// Create stores a folder after the user's last one.
func (r *Repo) Create(ctx context.Context, userID string, req CreateRequest) (_ *model.RoutineFolder, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.folders.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	folder := &model.RoutineFolder{
		ID:        pkg.NewID(),
		Name:      req.Name,
		Color:     req.Color,
		Templates: make([]model.WorkoutTemplate, 0),
	}
	if err := r.db.QueryRow(ctx, `
		INSERT INTO routine_folders (id, user_id, name, color, "order")
		SELECT $1, $2, $3, $4, COALESCE(MAX("order") + 1, 0)
		FROM routine_folders WHERE user_id = $2
		RETURNING "order"`,
		folder.ID, userID, folder.Name, folder.Color,
	).Scan(&folder.Order); err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}

	return folder, nil
}

func (r *Repo) Update(ctx context.Context, id, userID string, req UpdateRequest) (_ *model.RoutineFolder, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.folders.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("folder.id", id))

	var folder *model.RoutineFolder
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		f := model.RoutineFolder{ID: id}
		if err := tx.QueryRow(ctx, `
			UPDATE routine_folders
			SET name = COALESCE($3, name),
			    color = COALESCE($4, color),
			    "order" = COALESCE($5, "order")
			WHERE id = $1 AND user_id = $2
			RETURNING name, color, "order"`,
			id, userID, req.Name, req.Color, req.Order,
		).Scan(&f.Name, &f.Color, &f.Order); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrFolderNotFound
			}
			return fmt.Errorf("update folder: %w", err)
		}

		all, err := templates.ListForUser(ctx, tx, userID, "t.created_at DESC")
		if err != nil {
			return err
		}
		folder = &Group([]model.RoutineFolder{f}, all).Folders[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	return folder, nil
}

// Delete removes the folder. Its templates stay, without a folder.
func (r *Repo) Delete(ctx context.Context, id, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.folders.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("folder.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM routine_folders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}

// NoFolder is the folder id path value that takes a template out of its folder.
const NoFolder = "none"

// TargetFolder maps the folder id path value to the folder a template moves to.
func TargetFolder(pathID string) *string {
	if strings.EqualFold(pathID, NoFolder) {
		return nil
	}
	return &pathID
}
