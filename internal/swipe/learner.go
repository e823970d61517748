// Package swipe learns a taste profile from accept/reject judgments over a
// queue of popular titles.
package swipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cinetrack/internal/catalog"
	"cinetrack/internal/models"
	"cinetrack/internal/repository"
)

const (
	preferencesKey = "swipe_preferences"
	historyKey     = "swipe_history"

	historySize = 100

	// Queue loading stops once this many candidates are waiting or after
	// maxQueuePages popular pages.
	queueTarget   = 10
	maxQueuePages = 5

	// Refills start from a random popular page in [1, refillPageSpan].
	refillPageSpan = 10

	defaultMaxRefillAttempts = 3
)

var (
	ErrJudgeInFlight = errors.New("a judgment is already in progress")
	ErrNoCandidate   = errors.New("no candidate to judge")
)

// Direction is a binary judgment.
type Direction string

const (
	Accept Direction = "accept"
	Reject Direction = "reject"
)

// ParseDirection accepts accept/reject and their like/right and
// dislike/left aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "like", "right":
		return Accept, nil
	case "reject", "dislike", "left":
		return Reject, nil
	}
	return "", fmt.Errorf("invalid swipe direction %q", s)
}

// Profile is the persisted preference record.
type Profile struct {
	LikedGenres    map[int]int `json:"liked_genres"`
	DislikedGenres map[int]int `json:"disliked_genres"`
	AvgRatingLiked float64     `json:"avg_rating_liked"`
	TotalSwipes    int         `json:"total_swipes"`
	TotalLikes     int         `json:"total_likes"`
	TotalDislikes  int         `json:"total_dislikes"`
}

func newProfile() Profile {
	return Profile{LikedGenres: map[int]int{}, DislikedGenres: map[int]int{}}
}

func (p Profile) clone() Profile {
	p.LikedGenres = maps.Clone(p.LikedGenres)
	p.DislikedGenres = maps.Clone(p.DislikedGenres)
	return p
}

// HistoryEntry records one judgment.
type HistoryEntry struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
	Liked      bool      `json:"liked"`
	Timestamp  time.Time `json:"timestamp"`
	GenreIDs   []int     `json:"genre_ids"`
}

// Option configures a Learner.
type Option func(*Learner)

// WithRand sets the source of random refill pages.
func WithRand(r *rand.Rand) Option {
	return func(l *Learner) { l.intn = r.IntN }
}

// WithClock overrides the wall clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Learner) { l.now = now }
}

// WithMaxRefillAttempts bounds how many random pages are tried when the
// queue runs dry after a judgment.
func WithMaxRefillAttempts(n int) Option {
	return func(l *Learner) {
		if n > 0 {
			l.maxRefill = n
		}
	}
}

// Learner owns the swipe profile and history of one device and the
// session-scoped candidate queue.
type Learner struct {
	mu        sync.Mutex
	judging   atomic.Bool
	catalog   catalog.Service
	store     repository.Store
	intn      func(int) int
	now       func() time.Time
	maxRefill int

	profile Profile
	history []HistoryEntry

	queue  []models.CatalogItem
	cursor int
}

// NewLearner loads the persisted profile and history from store.
func NewLearner(ctx context.Context, svc catalog.Service, store repository.Store, opts ...Option) (*Learner, error) {
	l := &Learner{
		catalog:   svc,
		store:     store,
		intn:      rand.IntN,
		now:       time.Now,
		maxRefill: defaultMaxRefillAttempts,
		profile:   newProfile(),
		history:   []HistoryEntry{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := repository.LoadJSON(ctx, store, preferencesKey, &l.profile); err != nil {
		return nil, fmt.Errorf("failed to load swipe preferences: %w", err)
	}
	if err := repository.LoadJSON(ctx, store, historyKey, &l.history); err != nil {
		return nil, fmt.Errorf("failed to load swipe history: %w", err)
	}
	if l.profile.LikedGenres == nil {
		l.profile.LikedGenres = map[int]int{}
	}
	if l.profile.DislikedGenres == nil {
		l.profile.DislikedGenres = map[int]int{}
	}
	return l, nil
}

// LoadQueue fetches popular pages from the first one until enough unseen
// candidates are queued. Catalog failures are logged; the result reports
// whether any candidate is waiting.
func (l *Learner) LoadQueue(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fill(ctx, 1)
	return l.remaining() > 0
}

// fill appends unseen candidates from successive popular pages starting at
// page. It returns how many were added.
func (l *Learner) fill(ctx context.Context, page int) int {
	l.compact()

	seen := make(map[int]bool, len(l.history)+len(l.queue))
	for _, h := range l.history {
		seen[h.ID] = true
	}
	for _, q := range l.queue {
		seen[q.ID] = true
	}

	added := 0
	for fetched := 0; fetched < maxQueuePages && l.remaining() < queueTarget; fetched++ {
		items, err := l.catalog.Popular(ctx, page+fetched)
		if err != nil {
			slog.Error("failed to load swipe candidates", "page", page+fetched, "error", err)
			break
		}
		for _, it := range items {
			if seen[it.ID] || !it.HasPoster() {
				continue
			}
			seen[it.ID] = true
			l.queue = append(l.queue, it)
			added++
		}
	}
	return added
}

// compact drops already judged candidates from the queue.
func (l *Learner) compact() {
	if l.cursor > 0 {
		l.queue = slices.Clone(l.queue[l.cursor:])
		l.cursor = 0
	}
}

func (l *Learner) remaining() int {
	return len(l.queue) - l.cursor
}

// Current returns the candidate waiting for a judgment.
func (l *Learner) Current() (models.CatalogItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor >= len(l.queue) {
		return models.CatalogItem{}, false
	}
	return l.queue[l.cursor], true
}

// Judge applies dir to the current candidate and advances the queue. A call
// made while another is running is rejected with ErrJudgeInFlight. It
// reports whether the judgment was an accept.
func (l *Learner) Judge(ctx context.Context, dir Direction) (bool, error) {
	if dir != Accept && dir != Reject {
		return false, fmt.Errorf("invalid swipe direction %q", dir)
	}
	if !l.judging.CompareAndSwap(false, true) {
		return false, ErrJudgeInFlight
	}
	defer l.judging.Store(false)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cursor >= len(l.queue) {
		return false, ErrNoCandidate
	}
	item := l.queue[l.cursor]
	liked := dir == Accept

	l.history = append(l.history, HistoryEntry{
		ID:         item.ID,
		Title:      item.Title,
		PosterPath: item.PosterPath,
		Liked:      liked,
		Timestamp:  l.now(),
		GenreIDs:   slices.Clone(item.GenreIDs),
	})
	if len(l.history) > historySize {
		l.history = slices.Clone(l.history[len(l.history)-historySize:])
	}

	p := &l.profile
	for _, g := range item.GenreIDs {
		if liked {
			p.LikedGenres[g]++
		} else {
			p.DislikedGenres[g]++
		}
	}
	if liked {
		p.AvgRatingLiked = (p.AvgRatingLiked*float64(p.TotalLikes) + item.Rating) / float64(p.TotalLikes+1)
		p.TotalLikes++
	} else {
		p.TotalDislikes++
	}
	p.TotalSwipes++

	err := l.save(ctx)

	l.cursor++
	if l.remaining() == 0 {
		l.refill(ctx)
	}
	return liked, err
}

// refill tries random popular pages until one yields unseen candidates or
// the attempt budget runs out.
func (l *Learner) refill(ctx context.Context) {
	for attempt := 1; attempt <= l.maxRefill; attempt++ {
		if ctx.Err() != nil {
			return
		}
		page := l.intn(refillPageSpan) + 1
		if l.fill(ctx, page) > 0 {
			return
		}
		slog.Debug("swipe refill found nothing new", "page", page, "attempt", attempt)
	}
	slog.Warn("swipe queue exhausted", "attempts", l.maxRefill)
}

// ResetPreferences clears the profile and history.
func (l *Learner) ResetPreferences(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.profile = newProfile()
	l.history = []HistoryEntry{}
	return l.save(ctx)
}

// Profile returns a copy of the preference record.
func (l *Learner) Profile() Profile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profile.clone()
}

// History returns the judgments, oldest first.
func (l *Learner) History() []HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.history)
}

// Liked returns the accepted entries of the history.
func (l *Learner) Liked() []HistoryEntry {
	return l.filterHistory(true)
}

// Disliked returns the rejected entries of the history.
func (l *Learner) Disliked() []HistoryEntry {
	return l.filterHistory(false)
}

func (l *Learner) filterHistory(liked bool) []HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []HistoryEntry{}
	for _, h := range l.history {
		if h.Liked == liked {
			out = append(out, h)
		}
	}
	return out
}

func (l *Learner) save(ctx context.Context) error {
	if err := repository.SaveJSON(ctx, l.store, preferencesKey, l.profile); err != nil {
		return fmt.Errorf("failed to save swipe preferences: %w", err)
	}
	if err := repository.SaveJSON(ctx, l.store, historyKey, l.history); err != nil {
		return fmt.Errorf("failed to save swipe history: %w", err)
	}
	return nil
}
