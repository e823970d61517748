package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"cinetrack/internal/catalog"
	"cinetrack/internal/models"
)

var errNotFound = errors.New("TMDB resource not found")

// RequestObserver is notified after every TMDB request.
type RequestObserver func(endpoint string, err error)

// Client is the TMDB API client. It implements catalog.Service.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	observe  RequestObserver
}

var _ catalog.Service = (*Client)(nil)

// Options tunes the client. The zero value is usable.
type Options struct {
	Language  string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Observer  RequestObserver
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}

	burst := int(opts.RateLimit)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: opts.Language,
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), burst),
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "tmdb",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("catalog circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
		observe: opts.Observer,
	}
}

// ---- TMDB Response Types (internal, not exposed to consumers) ----

// pagedResponse is the envelope of every TMDB list endpoint.
type pagedResponse struct {
	Page         int         `json:"page"`
	Results      []tmdbTitle `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

// tmdbTitle is a movie, series or person from a TMDB listing.
type tmdbTitle struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	GenreIDs     []int   `json:"genre_ids"`
	Runtime      int     `json:"runtime"`
}

// tmdbDetail is the detail payload with appended credits and videos.
type tmdbDetail struct {
	tmdbTitle
	Genres         []models.Genre `json:"genres"`
	EpisodeRunTime []int          `json:"episode_run_time"`
	Status         string         `json:"status"`
	Credits        struct {
		Cast []models.CastMember `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []models.Video `json:"results"`
	} `json:"videos"`
}

func (t tmdbTitle) toItem(fallback models.MediaType) models.CatalogItem {
	mediaType := models.MediaType(t.MediaType)
	if mediaType == "" {
		mediaType = fallback
	}
	title := t.Title
	if title == "" {
		title = t.Name
	}
	released := t.ReleaseDate
	if released == "" {
		released = t.FirstAirDate
	}
	genres := t.GenreIDs
	if genres == nil {
		genres = []int{}
	}
	return models.CatalogItem{
		ID:           t.ID,
		MediaType:    mediaType,
		Title:        title,
		Overview:     t.Overview,
		PosterPath:   t.PosterPath,
		BackdropPath: t.BackdropPath,
		Rating:       t.VoteAverage,
		VoteCount:    t.VoteCount,
		Popularity:   t.Popularity,
		GenreIDs:     genres,
		ReleaseDate:  released,
		Runtime:      t.Runtime,
	}
}

// ---- Client Methods ----

// Trending fetches titles of every type trending this week.
func (c *Client) Trending(ctx context.Context) ([]models.CatalogItem, error) {
	return c.list(ctx, "trending", "/trending/all/week", nil, "")
}

// Search runs a multi-type search.
func (c *Client) Search(ctx context.Context, query string) ([]models.CatalogItem, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.list(ctx, "search", "/search/multi", params, "")
}

// Popular fetches one page of popular movies.
func (c *Client) Popular(ctx context.Context, page int) ([]models.CatalogItem, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return c.list(ctx, "popular", "/movie/popular", params, models.MediaMovie)
}

// Discover runs a discover query for movies or series.
func (c *Client) Discover(ctx context.Context, q models.DiscoverQuery) ([]models.CatalogItem, error) {
	q.Normalize()

	params := url.Values{}
	params.Set("sort_by", string(q.SortBy))
	params.Set("page", strconv.Itoa(q.Page))
	if q.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(q.MinVoteCount))
	}
	if len(q.GenreIDs) > 0 {
		ids := make([]string, len(q.GenreIDs))
		for i, g := range q.GenreIDs {
			ids[i] = strconv.Itoa(g)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}

	return c.list(ctx, "discover", "/discover/"+string(q.MediaType), params, q.MediaType)
}

// Details fetches one title with credits and videos appended.
func (c *Client) Details(ctx context.Context, mediaType models.MediaType, id int) (*models.CatalogDetail, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,videos")

	slog.Debug("fetching TMDB detail", "media_type", mediaType, "tmdb_id", id)
	body, err := c.get(ctx, "details", fmt.Sprintf("/%s/%d", mediaType, id), params)
	if err != nil {
		return nil, err
	}

	var raw tmdbDetail
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode detail response: %w", err)
	}

	item := raw.toItem(mediaType)
	if item.Runtime == 0 && len(raw.EpisodeRunTime) > 0 {
		item.Runtime = raw.EpisodeRunTime[0]
	}
	if len(item.GenreIDs) == 0 {
		for _, g := range raw.Genres {
			item.GenreIDs = append(item.GenreIDs, g.ID)
		}
	}

	return &models.CatalogDetail{
		CatalogItem: item,
		Genres:      raw.Genres,
		Cast:        raw.Credits.Cast,
		Videos:      raw.Videos.Results,
		Status:      raw.Status,
	}, nil
}

func (c *Client) list(ctx context.Context, endpoint, path string, params url.Values, fallback models.MediaType) ([]models.CatalogItem, error) {
	slog.Debug("fetching TMDB list", "endpoint", endpoint, "path", path)
	body, err := c.get(ctx, endpoint, path, params)
	if err != nil {
		return nil, err
	}

	var result pagedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	items := make([]models.CatalogItem, 0, len(result.Results))
	for _, r := range result.Results {
		items = append(items, r.toItem(fallback))
	}
	return items, nil
}

// get performs a rate-limited, breaker-protected GET and returns the body.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	target := c.baseURL + path + "?" + params.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.doGet(ctx, target)
	})

	if c.observe != nil {
		c.observe(endpoint, err)
	}
	switch {
	case err == nil:
		return body, nil
	case errors.Is(err, errNotFound):
		return nil, fmt.Errorf("%s: %w", endpoint, catalog.ErrNoResults)
	default:
		return nil, fmt.Errorf("%s: %w: %v", endpoint, catalog.ErrUnavailable, err)
	}
}

func (c *Client) doGet(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
