package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/gymstats/model"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	// freecache takes entries of up to 1/1024 of its size, the whole catalog is one entry: 32KB
	catalogCacheSize = 32 * 1024 * 1024
	catalogCacheKey  = "system-exercises"
)

type systemLister interface {
	ListSystem(ctx context.Context) ([]model.Exercise, error)
}

// Catalog serves the system exercises from an in-process cache, reading through to the repo.
type Catalog struct {
	repo       systemLister
	cache      *freecache.Cache
	ttlSeconds int
}

func NewCatalog(repo systemLister, ttl time.Duration) *Catalog {
	return &Catalog{
		repo:       repo,
		cache:      freecache.NewCache(catalogCacheSize),
		ttlSeconds: int(ttl.Seconds()),
	}
}

func (c *Catalog) System(ctx context.Context) ([]model.Exercise, error) {
	if cached, err := c.cache.Get([]byte(catalogCacheKey)); err == nil {
		var exercises []model.Exercise
		unmarshalErr := json.Unmarshal(cached, &exercises)
		if unmarshalErr == nil {
			return exercises, nil
		}
		log.Errorf("exercise catalog cache: unmarshal cached value: %s", unmarshalErr)
		c.cache.Del([]byte(catalogCacheKey))
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Errorf("exercise catalog cache: get: %s", err)
	}

	exercises, err := c.repo.ListSystem(ctx)
	if err != nil {
		return nil, err
	}

	catalogBytes, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("exercise catalog cache: marshal: %s", err)
		return exercises, nil
	}
	if err := c.cache.Set([]byte(catalogCacheKey), catalogBytes, c.ttlSeconds); err != nil {
		log.Errorf("exercise catalog cache: set: %s", err)
	}

	return exercises, nil
}

func (c *Catalog) Invalidate() {
	c.cache.Del([]byte(catalogCacheKey))
}

type FilterParams struct {
	Search      string
	MuscleGroup string
	Equipment   string
}

// Filter keeps the exercises whose name contains Search (case-insensitive) and that match
// MuscleGroup and Equipment exactly when set. The result is sorted by name.
func Filter(exercises []model.Exercise, params FilterParams) []model.Exercise {
	search := strings.ToLower(strings.TrimSpace(params.Search))
	filtered := make([]model.Exercise, 0, len(exercises))
	for _, e := range exercises {
		if search != "" && !strings.Contains(strings.ToLower(e.Name), search) {
			continue
		}
		if params.MuscleGroup != "" && e.MuscleGroup != params.MuscleGroup {
			continue
		}
		if params.Equipment != "" && e.Equipment != params.Equipment {
			continue
		}
		filtered = append(filtered, e)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})
	return filtered
}
