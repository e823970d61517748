// Package gamification tracks daily activity streaks and unlockable
// achievements derived from cumulative counters.
package gamification

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"cinetrack/internal/events"
	"cinetrack/internal/repository"
)

const statsKey = "cinetrack_stats"

const dateLayout = "2006-01-02"

// ActivityStats is the persisted counter record.
type ActivityStats struct {
	WatchlistTotal int         `json:"watchlist_total"`
	WatchedTotal   int         `json:"watched_total"`
	CurrentStreak  int         `json:"current_streak"`
	LongestStreak  int         `json:"longest_streak"`
	LastActivity   string      `json:"last_activity"` // local date, empty before the first activity
	TodayWatched   int         `json:"today_watched"`
	LastWatchDate  string      `json:"last_watch_date"`
	EarnedBadges   []string    `json:"earned_badges"`
	GenreCounts    map[int]int `json:"genre_counts"`
}

func (s ActivityStats) clone() ActivityStats {
	s.EarnedBadges = slices.Clone(s.EarnedBadges)
	s.GenreCounts = maps.Clone(s.GenreCounts)
	return s
}

// Progress summarizes how much of the catalog is earned.
type Progress struct {
	Earned     int `json:"earned"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the wall clock. Dates are taken in the location of
// the returned time.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithEmitter sets the receiver of unlock and streak events.
func WithEmitter(e events.Emitter) Option {
	return func(t *Tracker) { t.emit = e }
}

// Tracker owns the activity stats of one device.
type Tracker struct {
	mu      sync.Mutex
	store   repository.Store
	now     func() time.Time
	emit    events.Emitter
	catalog []Achievement
	stats   ActivityStats
	earned  map[string]bool
}

// NewTracker loads the persisted stats from store. Missing or corrupt
// state starts from zero counters.
func NewTracker(ctx context.Context, store repository.Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:   store,
		now:     time.Now,
		emit:    events.Discard,
		catalog: defaultCatalog(),
		stats:   ActivityStats{GenreCounts: map[int]int{}},
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := repository.LoadJSON(ctx, store, statsKey, &t.stats); err != nil {
		return nil, fmt.Errorf("failed to load activity stats: %w", err)
	}
	t.normalize()
	return t, nil
}

// normalize restores the record invariants after loading.
func (t *Tracker) normalize() {
	if t.stats.GenreCounts == nil {
		t.stats.GenreCounts = map[int]int{}
	}
	if t.stats.LongestStreak < t.stats.CurrentStreak {
		t.stats.LongestStreak = t.stats.CurrentStreak
	}

	t.earned = make(map[string]bool, len(t.stats.EarnedBadges))
	unique := t.stats.EarnedBadges[:0]
	for _, id := range t.stats.EarnedBadges {
		if t.earned[id] {
			continue
		}
		t.earned[id] = true
		unique = append(unique, id)
	}
	t.stats.EarnedBadges = unique
}

// RecordActivity marks today as active. A second call on the same day is a
// no-op. Returns the achievements unlocked by this call.
func (t *Tracker) RecordActivity(ctx context.Context) ([]Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	changed, unlocked := t.recordActivity(now)
	if !changed {
		return nil, nil
	}
	return unlocked, t.save(ctx)
}

// CheckAndResetBrokenStreak zeroes the current streak when the last
// activity is older than yesterday. It reports whether a streak was broken.
func (t *Tracker) CheckAndResetBrokenStreak(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	last := t.stats.LastActivity
	if last == "" || t.stats.CurrentStreak == 0 {
		return false, nil
	}
	now := t.now()
	if last == day(now) || last == day(now.AddDate(0, 0, -1)) {
		return false, nil
	}

	previous := t.stats.CurrentStreak
	t.stats.CurrentStreak = 0
	if err := t.save(ctx); err != nil {
		return true, err
	}
	t.emit.Emit(events.Event{Type: events.StreakBroken, Streak: previous, At: now})
	return true, nil
}

// RecordWatchlistAddition counts a new watchlist entry carrying genreIDs.
func (t *Tracker) RecordWatchlistAddition(ctx context.Context, genreIDs []int) ([]Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.stats.WatchlistTotal++
	for _, g := range genreIDs {
		t.stats.GenreCounts[g]++
	}

	_, unlocked := t.recordActivity(now)
	unlocked = append(unlocked, t.evaluate(now, KindWatchlist, KindGenre, KindTimeWindow)...)
	return unlocked, t.save(ctx)
}

// RecordWatched counts a title marked watched.
func (t *Tracker) RecordWatched(ctx context.Context) ([]Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	today := day(now)
	t.stats.WatchedTotal++
	if t.stats.LastWatchDate != today {
		t.stats.TodayWatched = 1
		t.stats.LastWatchDate = today
	} else {
		t.stats.TodayWatched++
	}

	_, unlocked := t.recordActivity(now)
	unlocked = append(unlocked, t.evaluate(now, KindWatched, KindDailyWatch)...)
	return unlocked, t.save(ctx)
}

// Stats returns a copy of the counters.
func (t *Tracker) Stats() ActivityStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.clone()
}

// Achievements returns the full catalog with unlock state.
func (t *Tracker) Achievements() []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Achievement, len(t.catalog))
	for i, a := range t.catalog {
		a.Earned = t.earned[a.ID]
		out[i] = a
	}
	return out
}

// UnlockedAchievements returns the earned achievements in unlock order.
func (t *Tracker) UnlockedAchievements() []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Achievement, 0, len(t.stats.EarnedBadges))
	for _, id := range t.stats.EarnedBadges {
		if a, ok := t.find(id); ok {
			a.Earned = true
			out = append(out, a)
		}
	}
	return out
}

// Progress returns the earned share of the catalog.
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	earned := 0
	for _, a := range t.catalog {
		if t.earned[a.ID] {
			earned++
		}
	}
	total := len(t.catalog)
	return Progress{
		Earned:     earned,
		Total:      total,
		Percentage: int(math.Round(100 * float64(earned) / float64(total))),
	}
}

// BadgeProgress returns the counter behind achievement id clamped to its
// requirement. ok is false for an unknown id.
func (t *Tracker) BadgeProgress(id string) (current, requirement int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.find(id)
	if !ok {
		return 0, 0, false
	}
	requirement = a.Criterion.Threshold
	if t.earned[id] {
		return requirement, requirement, true
	}
	return min(t.value(a.Criterion, t.now()), requirement), requirement, true
}

// recordActivity applies the daily streak rule. changed is false when today
// was already recorded.
func (t *Tracker) recordActivity(now time.Time) (changed bool, unlocked []Achievement) {
	today := day(now)
	if t.stats.LastActivity == today {
		return false, nil
	}

	if t.stats.LastActivity == day(now.AddDate(0, 0, -1)) {
		t.stats.CurrentStreak++
	} else {
		t.stats.CurrentStreak = 1
	}
	t.stats.LongestStreak = max(t.stats.LongestStreak, t.stats.CurrentStreak)
	t.stats.LastActivity = today

	t.emit.Emit(events.Event{Type: events.StreakExtended, Streak: t.stats.CurrentStreak, At: now})
	return true, t.evaluate(now, KindStreak)
}

// evaluate unlocks every not yet earned achievement of the given kinds
// whose counter has reached its threshold.
func (t *Tracker) evaluate(now time.Time, kinds ...Kind) []Achievement {
	var unlocked []Achievement
	for _, a := range t.catalog {
		if t.earned[a.ID] || !slices.Contains(kinds, a.Criterion.Kind) {
			continue
		}
		if t.value(a.Criterion, now) < a.Criterion.Threshold {
			continue
		}

		t.earned[a.ID] = true
		t.stats.EarnedBadges = append(t.stats.EarnedBadges, a.ID)
		a.Earned = true
		unlocked = append(unlocked, a)
		t.emit.Emit(events.Event{Type: events.AchievementUnlocked, AchievementID: a.ID, Name: a.Name, Streak: t.stats.CurrentStreak, At: now})
	}
	return unlocked
}

func (t *Tracker) value(c Criterion, now time.Time) int {
	switch c.Kind {
	case KindWatchlist:
		return t.stats.WatchlistTotal
	case KindWatched:
		return t.stats.WatchedTotal
	case KindStreak:
		return t.stats.CurrentStreak
	case KindDailyWatch:
		if t.stats.LastWatchDate != day(now) {
			return 0
		}
		return t.stats.TodayWatched
	case KindGenre:
		return t.stats.GenreCounts[c.GenreID]
	case KindTimeWindow:
		if h := now.Hour(); h >= c.StartHour && h < c.EndHour {
			return 1
		}
		return 0
	}
	return 0
}

func (t *Tracker) find(id string) (Achievement, bool) {
	for _, a := range t.catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

func (t *Tracker) save(ctx context.Context) error {
	if err := repository.SaveJSON(ctx, t.store, statsKey, t.stats); err != nil {
		return fmt.Errorf("failed to save activity stats: %w", err)
	}
	return nil
}

func day(t time.Time) string {
	return t.Format(dateLayout)
}
