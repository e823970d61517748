// Package catalog defines the content catalog capability the device managers
// depend on, and a Redis cache-aside decorator for it.
package catalog

import (
	"context"
	"errors"

	"cinetrack/internal/models"
)

var (
	// ErrUnavailable means the catalog could not be reached or answered with an error.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrNoResults means the catalog answered but had nothing usable.
	ErrNoResults = errors.New("no matching catalog results")
)

// Service is the external content catalog.
type Service interface {
	// Trending lists titles of all types trending this week.
	Trending(ctx context.Context) ([]models.CatalogItem, error)
	// Search runs a free-text multi-type search.
	Search(ctx context.Context, query string) ([]models.CatalogItem, error)
	// Details fetches one title with credits and videos.
	Details(ctx context.Context, mediaType models.MediaType, id int) (*models.CatalogDetail, error)
	// Discover runs a filtered, sorted discover query.
	Discover(ctx context.Context, q models.DiscoverQuery) ([]models.CatalogItem, error)
	// Popular lists one page of popular movies.
	Popular(ctx context.Context, page int) ([]models.CatalogItem, error)
}
