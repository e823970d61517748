package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinetrack/internal/catalog"
	"cinetrack/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL, Options{RateLimit: 1000})
}

func TestClient_DiscoverQueryParams(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		q := r.URL.Query()
		gotQuery = map[string]string{
			"api_key":        q.Get("api_key"),
			"sort_by":        q.Get("sort_by"),
			"with_genres":    q.Get("with_genres"),
			"vote_count.gte": q.Get("vote_count.gte"),
			"page":           q.Get("page"),
		}
		w.Write([]byte(`{"page":1,"results":[{"id":7,"name":"Show","first_air_date":"2020-01-02","vote_average":8.1,"genre_ids":[18]}]}`))
	})

	items, err := c.Discover(context.Background(), models.DiscoverQuery{
		MediaType:    models.MediaTV,
		GenreIDs:     []int{18, 80},
		SortBy:       models.SortRatingDesc,
		MinVoteCount: 100,
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if gotPath != "/discover/tv" {
		t.Errorf("path = %q, want /discover/tv", gotPath)
	}
	want := map[string]string{
		"api_key":        "test-key",
		"sort_by":        "vote_average.desc",
		"with_genres":    "18,80",
		"vote_count.gte": "100",
		"page":           "1",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.Title != "Show" || it.ReleaseDate != "2020-01-02" || it.MediaType != models.MediaTV || it.Rating != 8.1 {
		t.Errorf("item not folded from series fields: %+v", it)
	}
}

func TestClient_DiscoverWithoutGenresOmitsFilter(t *testing.T) {
	var hasGenres bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasGenres = r.URL.Query()["with_genres"]
		w.Write([]byte(`{"results":[]}`))
	})

	if _, err := c.Discover(context.Background(), models.DiscoverQuery{}); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if hasGenres {
		t.Error("with_genres sent for an empty genre set")
	}
}

func TestClient_Details(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("append_to_response") != "credits,videos" {
			t.Errorf("append_to_response = %q", r.URL.Query().Get("append_to_response"))
		}
		w.Write([]byte(`{
			"id": 550, "title": "Fight Club", "runtime": 139, "vote_average": 8.4,
			"genres": [{"id": 18, "name": "Drama"}],
			"credits": {"cast": [{"id": 1, "name": "Edward Norton", "character": "Narrator"}]},
			"videos": {"results": [{"key": "abc", "name": "Trailer", "site": "YouTube", "type": "Trailer"}]}
		}`))
	})

	d, err := c.Details(context.Background(), models.MediaMovie, 550)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if d.Runtime != 139 || d.Title != "Fight Club" {
		t.Errorf("detail = %+v", d.CatalogItem)
	}
	if len(d.GenreIDs) != 1 || d.GenreIDs[0] != 18 {
		t.Errorf("GenreIDs = %v, want [18] from genres", d.GenreIDs)
	}
	if len(d.Cast) != 1 || len(d.Videos) != 1 {
		t.Errorf("credits/videos not decoded: cast=%d videos=%d", len(d.Cast), len(d.Videos))
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"server error is unavailable", http.StatusInternalServerError, catalog.ErrUnavailable},
		{"not found is no results", http.StatusNotFound, catalog.ErrNoResults},
		{"unauthorized is unavailable", http.StatusUnauthorized, catalog.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.Popular(context.Background(), 1)
			if !errors.Is(err, tt.want) {
				t.Errorf("Popular() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 8; i++ {
		_, err := c.Trending(context.Background())
		if !errors.Is(err, catalog.ErrUnavailable) {
			t.Fatalf("call %d: error = %v, want ErrUnavailable", i, err)
		}
	}
	if calls != 5 {
		t.Errorf("server saw %d calls, want 5 before the breaker opened", calls)
	}
}

func TestClient_ObserverNotified(t *testing.T) {
	var endpoints []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":1,"title":"A","media_type":"movie"},{"id":2,"name":"P","media_type":"person"}]}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, Options{
		RateLimit: 1000,
		Observer: func(endpoint string, err error) {
			endpoints = append(endpoints, endpoint)
		},
	})

	items, err := c.Search(context.Background(), "a")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 2 || items[1].MediaType != models.MediaPerson {
		t.Errorf("Search() items = %+v", items)
	}
	if len(endpoints) != 1 || endpoints[0] != "search" {
		t.Errorf("observer endpoints = %v, want [search]", endpoints)
	}
}
