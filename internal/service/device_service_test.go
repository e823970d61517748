package service

import (
	"context"
	"slices"
	"testing"
	"time"

	"cinetrack/internal/catalog/catalogtest"
	"cinetrack/internal/events"
	"cinetrack/internal/gamification"
	"cinetrack/internal/models"
	"cinetrack/internal/repository"
	"cinetrack/internal/swipe"
)

var noon = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, fake *catalogtest.Fake, store repository.Store, emit events.Emitter) *DeviceService {
	t.Helper()
	svc, err := NewDeviceService(context.Background(), Deps{
		DeviceID: "test-device",
		Catalog:  fake,
		Store:    store,
		Emitter:  emit,
		Now:      func() time.Time { return noon },
	})
	if err != nil {
		t.Fatalf("NewDeviceService() error = %v", err)
	}
	return svc
}

func unlockedIDs(list []gamification.Achievement) []string {
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	return ids
}

func TestAddToWatchlist_CountsOnlyNewTitles(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, catalogtest.NewFake(), repository.NewMemoryStore(), nil)
	item := models.WatchlistItem{ID: 603, Title: "The Matrix", GenreIDs: []int{models.GenreAction}}

	added, unlocked, err := svc.AddToWatchlist(ctx, item)
	if err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}
	if !added || !slices.Contains(unlockedIDs(unlocked), "first_movie") {
		t.Errorf("AddToWatchlist() = %v, %v, want added with first_movie", added, unlockedIDs(unlocked))
	}

	added, unlocked, err = svc.AddToWatchlist(ctx, item)
	if err != nil {
		t.Fatalf("second AddToWatchlist() error = %v", err)
	}
	if added || len(unlocked) != 0 {
		t.Errorf("duplicate AddToWatchlist() = %v, %v, want false and nothing unlocked", added, unlocked)
	}

	stats := svc.Tracker().Stats()
	if stats.WatchlistTotal != 1 {
		t.Errorf("WatchlistTotal = %d, want 1", stats.WatchlistTotal)
	}
	if stats.GenreCounts[models.GenreAction] != 1 {
		t.Errorf("GenreCounts[action] = %d, want 1", stats.GenreCounts[models.GenreAction])
	}
}

func TestMarkWatched_CountsFirstWatchOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, catalogtest.NewFake(), repository.NewMemoryStore(), nil)

	if _, _, err := svc.AddToWatchlist(ctx, models.WatchlistItem{ID: 1, Title: "Up"}); err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}

	watched, unlocked, err := svc.MarkWatched(ctx, models.WatchlistItem{ID: 1})
	if err != nil {
		t.Fatalf("MarkWatched() error = %v", err)
	}
	if !watched || !slices.Contains(unlockedIDs(unlocked), "first_watch") {
		t.Errorf("MarkWatched() = %v, %v, want watched with first_watch", watched, unlockedIDs(unlocked))
	}
	if svc.Watchlist().Contains(1) {
		t.Error("title still on the watchlist after MarkWatched()")
	}

	watched, _, err = svc.MarkWatched(ctx, models.WatchlistItem{ID: 1})
	if err != nil {
		t.Fatalf("second MarkWatched() error = %v", err)
	}
	if watched {
		t.Error("second MarkWatched() reported a new watch")
	}
	if got := svc.Tracker().Stats().WatchedTotal; got != 1 {
		t.Errorf("WatchedTotal = %d, want 1", got)
	}
}

func TestJudge_AcceptCountsAsActivity(t *testing.T) {
	tests := []struct {
		dir        swipe.Direction
		wantStreak int
	}{
		{swipe.Accept, 1},
		{swipe.Reject, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			ctx := context.Background()
			fake := catalogtest.NewFake()
			fake.PopularPages[1] = catalogtest.Movies(1, 3, 7.5, models.GenreDrama)
			svc := newTestService(t, fake, repository.NewMemoryStore(), nil)

			if !svc.Swipes().LoadQueue(ctx) {
				t.Fatal("LoadQueue() found no candidates")
			}
			liked, _, err := svc.Judge(ctx, tt.dir)
			if err != nil {
				t.Fatalf("Judge() error = %v", err)
			}
			if liked != (tt.dir == swipe.Accept) {
				t.Errorf("Judge() liked = %v", liked)
			}
			if got := svc.Tracker().Stats().CurrentStreak; got != tt.wantStreak {
				t.Errorf("CurrentStreak = %d, want %d", got, tt.wantStreak)
			}
		})
	}
}

func TestSearch_DropsPeopleAndPosterless(t *testing.T) {
	fake := catalogtest.NewFake()
	fake.SearchItems = []models.CatalogItem{
		{ID: 1, MediaType: models.MediaMovie, Title: "Alien", PosterPath: "/a.jpg"},
		{ID: 2, MediaType: models.MediaPerson, Title: "Sigourney Weaver", PosterPath: "/p.jpg"},
		{ID: 3, MediaType: models.MediaTV, Title: "Alien: Earth"},
		{ID: 4, MediaType: models.MediaTV, Title: "Alien Nation", PosterPath: "/n.jpg"},
	}
	svc := newTestService(t, fake, repository.NewMemoryStore(), nil)

	items, err := svc.Search(context.Background(), "alien")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	var ids []int
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if !slices.Equal(ids, []int{1, 4}) {
		t.Errorf("Search() ids = %v, want [1 4]", ids)
	}
}

func TestStartup_ResetsStaleStreak(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	stale := gamification.ActivityStats{CurrentStreak: 4, LongestStreak: 6, LastActivity: "2024-03-01"}
	if err := repository.SaveJSON(ctx, store, "cinetrack_stats", stale); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	var got []events.Event
	svc := newTestService(t, catalogtest.NewFake(), store, events.EmitterFunc(func(e events.Event) {
		got = append(got, e)
	}))

	if err := svc.Startup(ctx); err != nil {
		t.Fatalf("Startup() error = %v", err)
	}
	stats := svc.Tracker().Stats()
	if stats.CurrentStreak != 0 || stats.LongestStreak != 6 {
		t.Errorf("streaks = %d/%d, want 0/6", stats.CurrentStreak, stats.LongestStreak)
	}
	if len(got) != 1 || got[0].Type != events.StreakBroken || got[0].Streak != 4 {
		t.Errorf("events = %+v, want one streak_broken with streak 4", got)
	}
}

func TestCompleteQuiz_SavesHistory(t *testing.T) {
	ctx := context.Background()
	fake := catalogtest.NewFake()
	fake.DiscoverItems = catalogtest.Movies(10, 3, 8.1)
	svc := newTestService(t, fake, repository.NewMemoryStore(), nil)

	for _, v := range []string{"happy", "medium", "medium", "alone", "comedy"} {
		if err := svc.Quiz().AnswerCurrentQuestion(v); err != nil {
			t.Fatalf("AnswerCurrentQuestion(%q) error = %v", v, err)
		}
	}
	res, err := svc.CompleteQuiz(ctx)
	if err != nil {
		t.Fatalf("CompleteQuiz() error = %v", err)
	}

	history, err := svc.Quiz().History(ctx)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0].ID != res.ID {
		t.Errorf("History() = %d entries, want the completed result", len(history))
	}
}
