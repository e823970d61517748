// Package catalogtest provides an in-memory catalog.Service for tests.
package catalogtest

import (
	"context"
	"fmt"
	"sync"

	"cinetrack/internal/catalog"
	"cinetrack/internal/models"
)

// Fake is a scripted catalog. Popular pages and discover results are served
// from the configured fields; every call is recorded.
type Fake struct {
	mu sync.Mutex

	TrendingItems   []models.CatalogItem
	SearchItems     []models.CatalogItem
	DiscoverItems   []models.CatalogItem
	PopularPages    map[int][]models.CatalogItem
	DetailsByID     map[int]*models.CatalogDetail
	Err             error // returned by every call when set
	DiscoverQueries []models.DiscoverQuery
	PopularCalls    []int
}

var _ catalog.Service = (*Fake)(nil)

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		PopularPages: make(map[int][]models.CatalogItem),
		DetailsByID:  make(map[int]*models.CatalogDetail),
	}
}

func (f *Fake) Trending(ctx context.Context) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return clone(f.TrendingItems), nil
}

func (f *Fake) Search(ctx context.Context, query string) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return clone(f.SearchItems), nil
}

func (f *Fake) Details(ctx context.Context, mediaType models.MediaType, id int) (*models.CatalogDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	d, ok := f.DetailsByID[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", mediaType, id, catalog.ErrNoResults)
	}
	return d, nil
}

func (f *Fake) Discover(ctx context.Context, q models.DiscoverQuery) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DiscoverQueries = append(f.DiscoverQueries, q)
	if f.Err != nil {
		return nil, f.Err
	}
	return clone(f.DiscoverItems), nil
}

func (f *Fake) Popular(ctx context.Context, page int) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PopularCalls = append(f.PopularCalls, page)
	if f.Err != nil {
		return nil, f.Err
	}
	return clone(f.PopularPages[page]), nil
}

// LastDiscover returns the most recent discover query.
func (f *Fake) LastDiscover() (models.DiscoverQuery, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.DiscoverQueries) == 0 {
		return models.DiscoverQuery{}, false
	}
	return f.DiscoverQueries[len(f.DiscoverQueries)-1], true
}

// Movies builds n movie items with ids starting at firstID, all carrying genres.
func Movies(firstID, n int, rating float64, genres ...int) []models.CatalogItem {
	items := make([]models.CatalogItem, n)
	for i := range items {
		id := firstID + i
		items[i] = models.CatalogItem{
			ID:         id,
			MediaType:  models.MediaMovie,
			Title:      fmt.Sprintf("Movie %d", id),
			PosterPath: fmt.Sprintf("/poster-%d.jpg", id),
			Rating:     rating,
			VoteCount:  500,
			GenreIDs:   append([]int(nil), genres...),
		}
	}
	return items
}

func clone(items []models.CatalogItem) []models.CatalogItem {
	if items == nil {
		return nil
	}
	return append([]models.CatalogItem(nil), items...)
}
