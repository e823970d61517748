// Package watchlist keeps the saved and watched title lists of a device.
package watchlist

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"cinetrack/internal/models"
	"cinetrack/internal/repository"
)

const (
	watchlistKey = "watchlist"
	watchedKey   = "watched_movies"
)

// List owns both persisted arrays. Items are kept newest first.
type List struct {
	mu      sync.Mutex
	store   repository.Store
	now     func() time.Time
	items   []models.WatchlistItem
	watched []models.WatchlistItem
}

// New loads both lists from store.
func New(ctx context.Context, store repository.Store, now func() time.Time) (*List, error) {
	if now == nil {
		now = time.Now
	}
	l := &List{
		store:   store,
		now:     now,
		items:   []models.WatchlistItem{},
		watched: []models.WatchlistItem{},
	}
	if err := repository.LoadJSON(ctx, store, watchlistKey, &l.items); err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	if err := repository.LoadJSON(ctx, store, watchedKey, &l.watched); err != nil {
		return nil, fmt.Errorf("failed to load watched titles: %w", err)
	}
	return l, nil
}

// Add saves item unless a title with the same id is already listed. It
// reports whether the item was added.
func (l *List) Add(ctx context.Context, item models.WatchlistItem) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if indexOf(l.items, item.ID) >= 0 {
		return false, nil
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = l.now()
	}
	item.WatchedAt = nil
	l.items = slices.Insert(l.items, 0, item)

	if err := repository.SaveJSON(ctx, l.store, watchlistKey, l.items); err != nil {
		return true, fmt.Errorf("failed to save watchlist: %w", err)
	}
	return true, nil
}

// Remove drops the title with id from the watchlist.
func (l *List) Remove(ctx context.Context, id int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOf(l.items, id)
	if i < 0 {
		return false, nil
	}
	l.items = slices.Delete(l.items, i, i+1)

	if err := repository.SaveJSON(ctx, l.store, watchlistKey, l.items); err != nil {
		return true, fmt.Errorf("failed to save watchlist: %w", err)
	}
	return true, nil
}

// MarkWatched moves item to the watched list. It reports false when the
// title was already watched.
func (l *List) MarkWatched(ctx context.Context, item models.WatchlistItem) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if indexOf(l.watched, item.ID) >= 0 {
		return false, nil
	}
	if i := indexOf(l.items, item.ID); i >= 0 {
		saved := l.items[i]
		l.items = slices.Delete(l.items, i, i+1)
		// Keep what the watchlist knew when the caller only sent an id.
		if item.Title == "" {
			item = saved
		}
		if item.AddedAt.IsZero() {
			item.AddedAt = saved.AddedAt
		}
	}
	at := l.now()
	item.WatchedAt = &at
	l.watched = slices.Insert(l.watched, 0, item)

	if err := repository.SaveJSON(ctx, l.store, watchlistKey, l.items); err != nil {
		return true, fmt.Errorf("failed to save watchlist: %w", err)
	}
	if err := repository.SaveJSON(ctx, l.store, watchedKey, l.watched); err != nil {
		return true, fmt.Errorf("failed to save watched titles: %w", err)
	}
	return true, nil
}

// Items returns the watchlist, newest first.
func (l *List) Items() []models.WatchlistItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Watched returns the watched titles, most recent first.
func (l *List) Watched() []models.WatchlistItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.watched)
}

func (l *List) Contains(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return indexOf(l.items, id) >= 0
}

func indexOf(items []models.WatchlistItem, id int) int {
	return slices.IndexFunc(items, func(it models.WatchlistItem) bool { return it.ID == id })
}
