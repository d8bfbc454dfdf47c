package client

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/folders"
	"github.com/2beens/liftlog/internal/gymstats/model"
	"github.com/2beens/liftlog/internal/gymstats/templates"
	"github.com/2beens/liftlog/pkg/optimistic"
)

const (
	FoldersKey   = "folders"
	TemplatesKey = "templates"
)

type foldersAPI interface {
	Folders(ctx context.Context) (*folders.Listing, error)
	CreateFolder(ctx context.Context, req folders.CreateRequest) (*model.RoutineFolder, error)
	UpdateFolder(ctx context.Context, id string, req folders.UpdateRequest) (*model.RoutineFolder, error)
	DeleteFolder(ctx context.Context, id string) error
	MoveTemplate(ctx context.Context, folderID, templateID string) (*model.WorkoutTemplate, error)
}

// FolderCache keeps the folder listing of the routines screen.
type FolderCache struct {
	api   foldersAPI
	store *optimistic.Store[folders.Listing]
	now   func() time.Time
	seq   atomic.Uint64
}

func NewFolderCache(api foldersAPI, store *optimistic.Store[folders.Listing]) *FolderCache {
	return &FolderCache{
		api:   api,
		store: store,
		now:   time.Now,
	}
}

func (c *FolderCache) Listing(ctx context.Context) (folders.Listing, error) {
	return c.store.Fetch(ctx, FoldersKey, func(ctx context.Context) (folders.Listing, error) {
		l, err := c.api.Folders(ctx)
		if err != nil {
			return folders.Listing{}, err
		}
		return *l, nil
	})
}

func (c *FolderCache) CreateFolder(
	ctx context.Context,
	req folders.CreateRequest,
) (*optimistic.Pending[*model.RoutineFolder], error) {
	tempID := TempID(c.now(), c.seq.Add(1))
	return optimistic.Mutate(ctx, c.store, FoldersKey,
		func(l folders.Listing) (folders.Listing, error) {
			l.Folders = append(l.Folders, model.RoutineFolder{
				ID:        tempID,
				Name:      req.Name,
				Color:     req.Color,
				Order:     len(l.Folders),
				Templates: []model.WorkoutTemplate{},
			})
			return l, nil
		},
		func(ctx context.Context) (*model.RoutineFolder, error) {
			return c.api.CreateFolder(ctx, req)
		},
		func(l folders.Listing, created *model.RoutineFolder) (folders.Listing, error) {
			if created == nil {
				return l, errors.New("empty create folder response")
			}
			if f := findFolder(&l, tempID); f != nil {
				*f = *created
				if f.Templates == nil {
					f.Templates = []model.WorkoutTemplate{}
				}
			}
			return l, nil
		},
	)
}

func (c *FolderCache) UpdateFolder(
	ctx context.Context,
	id string,
	req folders.UpdateRequest,
) (*optimistic.Pending[*model.RoutineFolder], error) {
	return optimistic.Mutate(ctx, c.store, FoldersKey,
		func(l folders.Listing) (folders.Listing, error) {
			f := findFolder(&l, id)
			if f == nil {
				return l, nil
			}
			if req.Name != nil && *req.Name != "" {
				f.Name = *req.Name
			}
			if req.Color != nil && *req.Color != "" {
				f.Color = *req.Color
			}
			return l, nil
		},
		func(ctx context.Context) (*model.RoutineFolder, error) {
			return c.api.UpdateFolder(ctx, id, req)
		},
		func(l folders.Listing, updated *model.RoutineFolder) (folders.Listing, error) {
			if updated == nil {
				return l, errors.New("empty update folder response")
			}
			if f := findFolder(&l, id); f != nil {
				*f = *updated
			}
			return l, nil
		},
	)
}

// DeleteFolder drops the folder; its templates move to the unfoldered list.
func (c *FolderCache) DeleteFolder(ctx context.Context, id string) (*optimistic.Pending[struct{}], error) {
	return optimistic.Mutate(ctx, c.store, FoldersKey,
		func(l folders.Listing) (folders.Listing, error) {
			for i := range l.Folders {
				if l.Folders[i].ID != id {
					continue
				}
				for _, t := range l.Folders[i].Templates {
					t.FolderID = nil
					l.UnfolderedTemplates = append(l.UnfolderedTemplates, t)
				}
				l.Folders = append(l.Folders[:i], l.Folders[i+1:]...)
				break
			}
			return l, nil
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.api.DeleteFolder(ctx, id)
		},
		func(l folders.Listing, _ struct{}) (folders.Listing, error) {
			return l, nil
		},
	)
}

// MoveTemplate has no local transform; the listing is refetched once the server answers.
func (c *FolderCache) MoveTemplate(
	ctx context.Context,
	folderID, templateID string,
) (*optimistic.Pending[*model.WorkoutTemplate], error) {
	return optimistic.Mutate(ctx, c.store, FoldersKey, nil,
		func(ctx context.Context) (*model.WorkoutTemplate, error) {
			return c.api.MoveTemplate(ctx, folderID, templateID)
		},
		nil,
	)
}

func findFolder(l *folders.Listing, id string) *model.RoutineFolder {
	for i := range l.Folders {
		if l.Folders[i].ID == id {
			return &l.Folders[i]
		}
	}
	return nil
}

type templatesAPI interface {
	Templates(ctx context.Context) ([]model.WorkoutTemplate, error)
	CreateTemplate(ctx context.Context, req templates.CreateRequest) (*model.WorkoutTemplate, error)
}

type TemplateCache struct {
	api   templatesAPI
	store *optimistic.Store[[]model.WorkoutTemplate]
	now   func() time.Time
	seq   atomic.Uint64
}

func NewTemplateCache(api templatesAPI, store *optimistic.Store[[]model.WorkoutTemplate]) *TemplateCache {
	return &TemplateCache{
		api:   api,
		store: store,
		now:   time.Now,
	}
}

func (c *TemplateCache) Templates(ctx context.Context) ([]model.WorkoutTemplate, error) {
	return c.store.Fetch(ctx, TemplatesKey, c.api.Templates)
}

// CreateTemplate shows the new template first in the list while it is being created.
func (c *TemplateCache) CreateTemplate(
	ctx context.Context,
	req templates.CreateRequest,
) (*optimistic.Pending[*model.WorkoutTemplate], error) {
	tempID := TempID(c.now(), c.seq.Add(1))
	return optimistic.Mutate(ctx, c.store, TemplatesKey,
		func(list []model.WorkoutTemplate) ([]model.WorkoutTemplate, error) {
			now := c.now().UTC()
			temp := model.WorkoutTemplate{
				ID:        tempID,
				Name:      req.Name,
				Notes:     req.Notes,
				Color:     req.Color,
				FolderID:  req.FolderID,
				Exercises: []model.TemplateExercise{},
				CreatedAt: now,
				UpdatedAt: now,
			}
			return append([]model.WorkoutTemplate{temp}, list...), nil
		},
		func(ctx context.Context) (*model.WorkoutTemplate, error) {
			return c.api.CreateTemplate(ctx, req)
		},
		func(list []model.WorkoutTemplate, created *model.WorkoutTemplate) ([]model.WorkoutTemplate, error) {
			if created == nil {
				return list, errors.New("empty create template response")
			}
			for i := range list {
				if list[i].ID == tempID {
					list[i] = *created
				}
			}
			return list, nil
		},
	)
}
