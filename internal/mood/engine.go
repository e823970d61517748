// Package mood runs the five question mood quiz and turns the answers into
// a single catalog recommendation plus a viewer personality.
package mood

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinetrack/internal/catalog"
	"cinetrack/internal/models"
	"cinetrack/internal/repository"
)

const (
	historyKey  = "quiz_history"
	historySize = 20

	// candidatePool is how many top results the pick is drawn from.
	candidatePool = 10
)

var (
	ErrQuizIncomplete = errors.New("quiz is not complete")
	ErrQuizComplete   = errors.New("quiz has no more questions")
	ErrUnknownOption  = errors.New("unknown option for question")
	ErrOutOfOrder     = errors.New("answer is not for the current question")
)

// Result is a completed quiz recommendation.
type Result struct {
	ID        string             `json:"id"`
	Item      models.CatalogItem `json:"item"`
	MediaType models.MediaType   `json:"media_type"`
	GenreIDs  []int              `json:"genre_ids"`
	Profile   ViewerProfile      `json:"profile"`
	Answers   map[string]string  `json:"answers"`
	CreatedAt time.Time          `json:"created_at"`
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRand sets the source of the random candidate and archetype picks.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) { e.intn = r.IntN }
}

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// Engine holds one quiz session. The zero session starts at the first
// question.
type Engine struct {
	mu        sync.Mutex
	catalog   catalog.Service
	store     repository.Store
	questions []Question
	intn      func(int) int
	now       func() time.Time

	index   int
	answers map[string]Option
}

// NewEngine creates an Engine querying svc and keeping history in store.
func NewEngine(svc catalog.Service, store repository.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:   svc,
		store:     store,
		questions: Questions(),
		intn:      rand.IntN,
		now:       time.Now,
		answers:   make(map[string]Option),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset starts a new session at the first question.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.index = 0
	e.answers = make(map[string]Option)
}

// CurrentQuestion returns the question waiting for an answer. ok is false
// once every question is answered.
func (e *Engine) CurrentQuestion() (Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index >= len(e.questions) {
		return Question{}, false
	}
	return e.questions[e.index], true
}

// Index returns the zero-based position of the current question.
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

func (e *Engine) TotalQuestions() int {
	return len(e.questions)
}

// AnswerCurrentQuestion records value for the current question and moves on.
func (e *Engine) AnswerCurrentQuestion(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answer(value)
}

// Answer records value for questionID, which must be the current question.
func (e *Engine) Answer(questionID, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index >= len(e.questions) {
		return ErrQuizComplete
	}
	if current := e.questions[e.index].ID; current != questionID {
		return fmt.Errorf("%w: got %q, expecting %q", ErrOutOfOrder, questionID, current)
	}
	return e.answer(value)
}

func (e *Engine) answer(value string) error {
	if e.index >= len(e.questions) {
		return ErrQuizComplete
	}
	q := e.questions[e.index]
	opt, ok := q.Option(value)
	if !ok {
		return fmt.Errorf("%w %s: %q", ErrUnknownOption, q.ID, value)
	}
	e.answers[q.ID] = opt
	e.index++
	return nil
}

// ComputeRecommendation queries the catalog with the answered preferences
// and picks one title.
func (e *Engine) ComputeRecommendation(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.index < len(e.questions) {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %d of %d answered", ErrQuizIncomplete, e.index, len(e.questions))
	}
	answers := maps.Clone(e.answers)
	e.mu.Unlock()

	moodAns := answers[questionMood]
	energyAns := answers[questionEnergy]
	durationAns := answers[questionDuration]
	genreAns := answers[questionGenre]

	genres := resolveGenres(moodAns, answers[questionCompany], genreAns)

	sortBy := models.SortRatingDesc
	if energyAns.Intensity == IntensityHigh {
		sortBy = models.SortPopularityDesc
	}
	mediaType := models.MediaMovie
	if durationAns.MediaType == models.MediaTV {
		mediaType = models.MediaTV
	}

	items, err := e.catalog.Discover(ctx, models.DiscoverQuery{
		MediaType:    mediaType,
		GenreIDs:     genres,
		SortBy:       sortBy,
		MinVoteCount: models.MinReliableVotes,
		Page:         1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover recommendation: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("quiz recommendation: %w", catalog.ErrNoResults)
	}

	filtered := items
	if mediaType == models.MediaMovie && durationAns.MaxRuntime > 0 {
		filtered = make([]models.CatalogItem, 0, len(items))
		for _, it := range items {
			if it.Runtime == 0 || it.Runtime <= durationAns.MaxRuntime {
				filtered = append(filtered, it)
			}
		}
	}

	pick := items[0]
	if n := min(candidatePool, len(filtered)); n > 0 {
		pick = filtered[e.intn(n)]
	}

	now := e.now()
	values := make(map[string]string, len(answers))
	for k, v := range answers {
		values[k] = v.Value
	}

	return &Result{
		ID:        uuid.NewString(),
		Item:      pick,
		MediaType: mediaType,
		GenreIDs:  genres,
		Profile: ViewerProfile{
			Archetype:      archetypeFor(moodAns, energyAns, e.intn),
			Mood:           moodAns.Label,
			Energy:         energyAns.Label,
			PreferredGenre: genreAns.Label,
			Timestamp:      now,
		},
		Answers:   values,
		CreatedAt: now,
	}, nil
}

// resolveGenres unions the mood and company genres unless the genre answer
// names its own non-empty list, which then wins outright.
func resolveGenres(mood, company, genre Option) []int {
	if len(genre.Genres) > 0 {
		return slices.Clone(genre.Genres)
	}
	out := []int{}
	for _, g := range slices.Concat(mood.Genres, company.Genres) {
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

// SaveResult prepends result to the persisted history, keeping the newest
// entries.
func (e *Engine) SaveResult(ctx context.Context, result *Result) error {
	if result == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	history, err := e.loadHistory(ctx)
	if err != nil {
		return err
	}
	history = append([]Result{*result}, history...)
	if len(history) > historySize {
		history = history[:historySize]
	}
	if err := repository.SaveJSON(ctx, e.store, historyKey, history); err != nil {
		return fmt.Errorf("failed to save quiz history: %w", err)
	}
	return nil
}

// History returns saved results, newest first.
func (e *Engine) History(ctx context.Context) ([]Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadHistory(ctx)
}

func (e *Engine) loadHistory(ctx context.Context) ([]Result, error) {
	history := []Result{}
	if err := repository.LoadJSON(ctx, e.store, historyKey, &history); err != nil {
		return nil, fmt.Errorf("failed to load quiz history: %w", err)
	}
	return history, nil
}
