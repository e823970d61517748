package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"cinetrack/internal/catalog"
	"cinetrack/internal/catalog/catalogtest"
	"cinetrack/internal/mood"
	"cinetrack/internal/repository"
	"cinetrack/internal/service"
	"cinetrack/internal/swipe"
)

func newTestApp(t *testing.T, fake *catalogtest.Fake) *fiber.App {
	t.Helper()
	svc, err := service.NewDeviceService(context.Background(), service.Deps{
		DeviceID: "device-1",
		Catalog:  fake,
		Store:    repository.NewMemoryStore(),
		Now:      func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewDeviceService() error = %v", err)
	}
	app := fiber.New()
	NewDeviceHandler(svc).Routes(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{swipe.ErrJudgeInFlight, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", mood.ErrQuizIncomplete), http.StatusConflict},
		{mood.ErrOutOfOrder, http.StatusConflict},
		{mood.ErrUnknownOption, http.StatusBadRequest},
		{swipe.ErrNoCandidate, http.StatusNotFound},
		{catalog.ErrNoResults, http.StatusNotFound},
		{fmt.Errorf("discover: %w", catalog.ErrUnavailable), http.StatusBadGateway},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, catalogtest.NewFake())

	code, body := do(t, app, http.MethodGet, "/api/v1/health", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["device_id"] != "device-1" {
		t.Errorf("device_id = %v, want device-1", body["device_id"])
	}
}

func TestWatchlistRoutes(t *testing.T) {
	app := newTestApp(t, catalogtest.NewFake())
	item := `{"id": 550, "title": "Fight Club", "media_type": "movie", "genre_ids": [18]}`

	code, body := do(t, app, http.MethodPost, "/api/v1/watchlist", item)
	if code != http.StatusCreated {
		t.Fatalf("first add status = %d, want 201", code)
	}
	unlocked, _ := body["unlocked"].([]any)
	if len(unlocked) == 0 {
		t.Error("first add unlocked nothing, want first_movie")
	}

	if code, _ := do(t, app, http.MethodPost, "/api/v1/watchlist", item); code != http.StatusOK {
		t.Errorf("duplicate add status = %d, want 200", code)
	}
	if code, _ := do(t, app, http.MethodPost, "/api/v1/watchlist", `{"title": "no id"}`); code != http.StatusBadRequest {
		t.Errorf("add without id status = %d, want 400", code)
	}

	_, body = do(t, app, http.MethodGet, "/api/v1/watchlist", "")
	if items, _ := body["items"].([]any); len(items) != 1 {
		t.Errorf("watchlist has %d items, want 1", len(items))
	}

	if code, _ := do(t, app, http.MethodDelete, "/api/v1/watchlist/550", ""); code != http.StatusNoContent {
		t.Errorf("remove status = %d, want 204", code)
	}
	if code, _ := do(t, app, http.MethodDelete, "/api/v1/watchlist/550", ""); code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", code)
	}
}

func TestQuizRoutes(t *testing.T) {
	fake := catalogtest.NewFake()
	fake.DiscoverItems = catalogtest.Movies(1, 2, 7.9)
	app := newTestApp(t, fake)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"recommendation before answers", "/api/v1/quiz/recommendation", "", http.StatusConflict},
		{"answer for a later question", "/api/v1/quiz/answers", `{"question_id": "energy", "value": "high"}`, http.StatusConflict},
		{"unknown option", "/api/v1/quiz/answers", `{"value": "ecstatic"}`, http.StatusBadRequest},
		{"missing value", "/api/v1/quiz/answers", `{"question_id": "mood"}`, http.StatusBadRequest},
		{"answer mood", "/api/v1/quiz/answers", `{"question_id": "mood", "value": "happy"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, body := do(t, app, http.MethodPost, tt.path, tt.body); code != tt.want {
				t.Errorf("status = %d (%v), want %d", code, body["error"], tt.want)
			}
		})
	}

	for _, v := range []string{"high", "short", "alone", "comedy"} {
		if code, body := do(t, app, http.MethodPost, "/api/v1/quiz/answers", `{"value": "`+v+`"}`); code != http.StatusOK {
			t.Fatalf("answer %q status = %d (%v)", v, code, body["error"])
		}
	}
	_, state := do(t, app, http.MethodGet, "/api/v1/quiz", "")
	if state["complete"] != true {
		t.Errorf("quiz state = %v, want complete", state)
	}

	code, body := do(t, app, http.MethodPost, "/api/v1/quiz/recommendation", "")
	if code != http.StatusOK {
		t.Fatalf("recommendation status = %d (%v)", code, body["error"])
	}
	if _, ok := body["profile"].(map[string]any); !ok {
		t.Errorf("recommendation has no profile: %v", body)
	}

	_, history := do(t, app, http.MethodGet, "/api/v1/quiz/history", "")
	if results, _ := history["results"].([]any); len(results) != 1 {
		t.Errorf("history has %d results, want 1", len(results))
	}
}

func TestSwipeRoutes(t *testing.T) {
	fake := catalogtest.NewFake()
	app := newTestApp(t, fake)

	if code, _ := do(t, app, http.MethodPost, "/api/v1/swipe/judge", `{"direction": "like"}`); code != http.StatusNotFound {
		t.Errorf("judge without queue status = %d, want 404", code)
	}
	if code, _ := do(t, app, http.MethodPost, "/api/v1/swipe/judge", `{"direction": "up"}`); code != http.StatusBadRequest {
		t.Errorf("judge with bad direction status = %d, want 400", code)
	}
	if code, _ := do(t, app, http.MethodPost, "/api/v1/swipe/queue", ""); code != http.StatusNotFound {
		t.Errorf("empty queue status = %d, want 404", code)
	}

	fake.PopularPages[1] = catalogtest.Movies(1, 2, 8.0, 28)
	code, body := do(t, app, http.MethodPost, "/api/v1/swipe/queue", "")
	if code != http.StatusOK || body["candidate"] == nil {
		t.Fatalf("queue status = %d body = %v, want a candidate", code, body)
	}

	code, body = do(t, app, http.MethodPost, "/api/v1/swipe/judge", `{"direction": "right"}`)
	if code != http.StatusOK || body["liked"] != true {
		t.Fatalf("judge status = %d body = %v", code, body)
	}

	_, body = do(t, app, http.MethodGet, "/api/v1/swipe/profile", "")
	profile, _ := body["profile"].(map[string]any)
	if profile["like_rate"] != float64(100) {
		t.Errorf("profile = %v, want like_rate 100", body["profile"])
	}

	_, body = do(t, app, http.MethodGet, "/api/v1/swipe/history?filter=disliked", "")
	if h, _ := body["history"].([]any); len(h) != 0 {
		t.Errorf("disliked history = %v, want empty", h)
	}
	if code, _ := do(t, app, http.MethodDelete, "/api/v1/swipe/preferences", ""); code != http.StatusNoContent {
		t.Errorf("reset status = %d, want 204", code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	fake := catalogtest.NewFake()
	app := newTestApp(t, fake)

	if code, _ := do(t, app, http.MethodGet, "/api/v1/catalog/person/1", ""); code != http.StatusBadRequest {
		t.Errorf("details of a person status = %d, want 400", code)
	}
	if code, _ := do(t, app, http.MethodGet, "/api/v1/catalog/movie/42", ""); code != http.StatusNotFound {
		t.Errorf("unknown title status = %d, want 404", code)
	}
	if code, _ := do(t, app, http.MethodGet, "/api/v1/catalog/search", ""); code != http.StatusBadRequest {
		t.Errorf("search without q status = %d, want 400", code)
	}

	fake.Err = catalog.ErrUnavailable
	code, body := do(t, app, http.MethodGet, "/api/v1/catalog/trending", "")
	if code != http.StatusBadGateway || body["error"] != "catalog unavailable" {
		t.Errorf("trending with catalog down = %d %v, want 502", code, body)
	}
}
