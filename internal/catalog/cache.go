package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"cinetrack/internal/models"
)

const (
	listCacheTTL   = 5 * time.Minute
	detailCacheTTL = 30 * time.Minute
)

// CachedService wraps a Service with Redis cache-aside lookups.
// A nil Redis client turns it into a pass-through.
type CachedService struct {
	next  Service
	redis *redis.Client
}

// NewCachedService creates a new CachedService.
func NewCachedService(next Service, rdb *redis.Client) *CachedService {
	return &CachedService{next: next, redis: rdb}
}

// Trending returns cached trending titles.
func (s *CachedService) Trending(ctx context.Context) ([]models.CatalogItem, error) {
	return cachedList(ctx, s, "catalog:trending", func() ([]models.CatalogItem, error) {
		return s.next.Trending(ctx)
	})
}

// Search returns cached search results.
func (s *CachedService) Search(ctx context.Context, query string) ([]models.CatalogItem, error) {
	key := "catalog:search:" + strings.ToLower(strings.TrimSpace(query))
	return cachedList(ctx, s, key, func() ([]models.CatalogItem, error) {
		return s.next.Search(ctx, query)
	})
}

// Discover returns cached discover results.
func (s *CachedService) Discover(ctx context.Context, q models.DiscoverQuery) ([]models.CatalogItem, error) {
	return cachedList(ctx, s, discoverKey(q), func() ([]models.CatalogItem, error) {
		return s.next.Discover(ctx, q)
	})
}

// Popular returns a cached popular page.
func (s *CachedService) Popular(ctx context.Context, page int) ([]models.CatalogItem, error) {
	key := fmt.Sprintf("catalog:popular:%d", page)
	return cachedList(ctx, s, key, func() ([]models.CatalogItem, error) {
		return s.next.Popular(ctx, page)
	})
}

// Details returns a cached title detail.
func (s *CachedService) Details(ctx context.Context, mediaType models.MediaType, id int) (*models.CatalogDetail, error) {
	key := fmt.Sprintf("catalog:detail:%s:%d", mediaType, id)

	if cached, err := s.getFromCache(ctx, key); err == nil {
		var detail models.CatalogDetail
		if json.Unmarshal([]byte(cached), &detail) == nil {
			slog.Debug("cache hit", "key", key)
			return &detail, nil
		}
	}

	detail, err := s.next.Details(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(detail); err == nil {
		s.setCache(ctx, key, string(data), detailCacheTTL)
	}
	return detail, nil
}

func cachedList(ctx context.Context, s *CachedService, key string, fetch func() ([]models.CatalogItem, error)) ([]models.CatalogItem, error) {
	if cached, err := s.getFromCache(ctx, key); err == nil {
		var items []models.CatalogItem
		if json.Unmarshal([]byte(cached), &items) == nil {
			slog.Debug("cache hit", "key", key)
			return items, nil
		}
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}

	// Empty answers are not cached so a transient empty page is retried.
	if len(items) > 0 {
		if data, err := json.Marshal(items); err == nil {
			s.setCache(ctx, key, string(data), listCacheTTL)
		}
	}
	return items, nil
}

func discoverKey(q models.DiscoverQuery) string {
	q.Normalize()
	genres := make([]string, len(q.GenreIDs))
	for i, g := range q.GenreIDs {
		genres[i] = strconv.Itoa(g)
	}
	return fmt.Sprintf("catalog:discover:%s:%s:%s:%d:%d",
		q.MediaType, strings.Join(genres, ","), q.SortBy, q.MinVoteCount, q.Page)
}

// ---- Redis Helpers ----

func (s *CachedService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *CachedService) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}
