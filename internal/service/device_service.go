package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cinetrack/internal/catalog"
	"cinetrack/internal/events"
	"cinetrack/internal/gamification"
	"cinetrack/internal/metrics"
	"cinetrack/internal/models"
	"cinetrack/internal/mood"
	"cinetrack/internal/repository"
	"cinetrack/internal/swipe"
	"cinetrack/internal/watchlist"
)

// Deps are the collaborators of a DeviceService.
type Deps struct {
	DeviceID string
	Catalog  catalog.Service
	Store    repository.Store // already scoped to the device
	Emitter  events.Emitter
	Now      func() time.Time
}

// DeviceService owns the managers of one device and relays the effects one
// manager's operation has on another.
type DeviceService struct {
	deviceID  string
	catalog   catalog.Service
	tracker   *gamification.Tracker
	quiz      *mood.Engine
	swipes    *swipe.Learner
	watchlist *watchlist.List
}

// NewDeviceService loads every manager's persisted state.
func NewDeviceService(ctx context.Context, deps Deps) (*DeviceService, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Emitter == nil {
		deps.Emitter = events.Discard
	}

	tracker, err := gamification.NewTracker(ctx, deps.Store,
		gamification.WithClock(deps.Now),
		gamification.WithEmitter(deps.Emitter))
	if err != nil {
		return nil, err
	}
	learner, err := swipe.NewLearner(ctx, deps.Catalog, deps.Store, swipe.WithClock(deps.Now))
	if err != nil {
		return nil, err
	}
	list, err := watchlist.New(ctx, deps.Store, deps.Now)
	if err != nil {
		return nil, err
	}

	return &DeviceService{
		deviceID:  deps.DeviceID,
		catalog:   deps.Catalog,
		tracker:   tracker,
		quiz:      mood.NewEngine(deps.Catalog, deps.Store, mood.WithClock(deps.Now)),
		swipes:    learner,
		watchlist: list,
	}, nil
}

func (s *DeviceService) DeviceID() string                { return s.deviceID }
func (s *DeviceService) Tracker() *gamification.Tracker { return s.tracker }
func (s *DeviceService) Quiz() *mood.Engine              { return s.quiz }
func (s *DeviceService) Swipes() *swipe.Learner          { return s.swipes }
func (s *DeviceService) Watchlist() *watchlist.List      { return s.watchlist }

// Startup runs the once-per-launch streak check.
func (s *DeviceService) Startup(ctx context.Context) error {
	broken, err := s.tracker.CheckAndResetBrokenStreak(ctx)
	if err != nil {
		return fmt.Errorf("failed to check streak: %w", err)
	}
	slog.Info("device ready", "device_id", s.deviceID, "streak_broken", broken,
		"current_streak", s.tracker.Stats().CurrentStreak)
	return nil
}

// RunStreakWatcher re-checks the streak every interval until ctx is done.
func (s *DeviceService) RunStreakWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.tracker.CheckAndResetBrokenStreak(ctx); err != nil {
				slog.Error("periodic streak check failed", "error", err)
			}
		}
	}
}

// AddToWatchlist saves item and counts it toward the watchlist achievements
// when it is new.
func (s *DeviceService) AddToWatchlist(ctx context.Context, item models.WatchlistItem) (bool, []gamification.Achievement, error) {
	added, err := s.watchlist.Add(ctx, item)
	if err != nil {
		return added, nil, err
	}
	if !added {
		return false, nil, nil
	}
	unlocked, err := s.tracker.RecordWatchlistAddition(ctx, item.GenreIDs)
	return true, unlocked, err
}

func (s *DeviceService) RemoveFromWatchlist(ctx context.Context, id int) (bool, error) {
	return s.watchlist.Remove(ctx, id)
}

// MarkWatched moves item to the watched list and counts the first watch of
// each title.
func (s *DeviceService) MarkWatched(ctx context.Context, item models.WatchlistItem) (bool, []gamification.Achievement, error) {
	watched, err := s.watchlist.MarkWatched(ctx, item)
	if err != nil {
		return watched, nil, err
	}
	if !watched {
		return false, nil, nil
	}
	unlocked, err := s.tracker.RecordWatched(ctx)
	return true, unlocked, err
}

// Judge applies a swipe. An accept also counts as daily activity.
func (s *DeviceService) Judge(ctx context.Context, dir swipe.Direction) (bool, []gamification.Achievement, error) {
	liked, err := s.swipes.Judge(ctx, dir)
	if err != nil {
		return liked, nil, err
	}
	metrics.RecordSwipe(liked)
	if !liked {
		return false, nil, nil
	}
	unlocked, err := s.tracker.RecordActivity(ctx)
	return true, unlocked, err
}

// CompleteQuiz computes the recommendation for the answered quiz and saves
// it to the history.
func (s *DeviceService) CompleteQuiz(ctx context.Context) (*mood.Result, error) {
	result, err := s.quiz.ComputeRecommendation(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordQuizCompleted()
	if err := s.quiz.SaveResult(ctx, result); err != nil {
		slog.Error("failed to save quiz result", "id", result.ID, "error", err)
	}
	return result, nil
}

// ---- Catalog browsing ----

func (s *DeviceService) Trending(ctx context.Context) ([]models.CatalogItem, error) {
	return s.catalog.Trending(ctx)
}

// Search returns movies and series matching query. People and titles
// without a poster are dropped.
func (s *DeviceService) Search(ctx context.Context, query string) ([]models.CatalogItem, error) {
	items, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]models.CatalogItem, 0, len(items))
	for _, it := range items {
		if it.MediaType == models.MediaPerson || !it.HasPoster() {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *DeviceService) Details(ctx context.Context, mediaType models.MediaType, id int) (*models.CatalogDetail, error) {
	return s.catalog.Details(ctx, mediaType, id)
}

func (s *DeviceService) Popular(ctx context.Context, page int) ([]models.CatalogItem, error) {
	return s.catalog.Popular(ctx, page)
}
