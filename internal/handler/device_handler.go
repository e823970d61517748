package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"cinetrack/internal/catalog"
	"cinetrack/internal/gamification"
	"cinetrack/internal/models"
	"cinetrack/internal/mood"
	"cinetrack/internal/service"
	"cinetrack/internal/swipe"
)

// DeviceHandler handles HTTP requests for one device.
type DeviceHandler struct {
	svc *service.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(svc *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Routes registers every device endpoint on api.
func (h *DeviceHandler) Routes(api fiber.Router) {
	api.Get("/health", h.Health)

	api.Get("/catalog/trending", h.Trending)
	api.Get("/catalog/search", h.Search)
	api.Get("/catalog/popular", h.Popular)
	api.Get("/catalog/:type/:id", h.Details)

	api.Get("/watchlist", h.ListWatchlist)
	api.Post("/watchlist", h.AddToWatchlist)
	api.Delete("/watchlist/:id", h.RemoveFromWatchlist)
	api.Get("/watched", h.ListWatched)
	api.Post("/watched", h.MarkWatched)

	api.Get("/gamification", h.Gamification)
	api.Get("/gamification/achievements", h.Achievements)

	api.Get("/quiz", h.QuizState)
	api.Post("/quiz/reset", h.ResetQuiz)
	api.Post("/quiz/answers", h.AnswerQuiz)
	api.Post("/quiz/recommendation", h.QuizRecommendation)
	api.Get("/quiz/history", h.QuizHistory)

	api.Post("/swipe/queue", h.LoadSwipeQueue)
	api.Get("/swipe/current", h.CurrentCandidate)
	api.Post("/swipe/judge", h.Judge)
	api.Get("/swipe/profile", h.TasteProfile)
	api.Get("/swipe/recommendations", h.SwipeRecommendations)
	api.Delete("/swipe/preferences", h.ResetSwipePreferences)
	api.Get("/swipe/history", h.SwipeHistory)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, swipe.ErrJudgeInFlight),
		errors.Is(err, mood.ErrQuizIncomplete),
		errors.Is(err, mood.ErrQuizComplete),
		errors.Is(err, mood.ErrOutOfOrder):
		return fiber.StatusConflict
	case errors.Is(err, mood.ErrUnknownOption):
		return fiber.StatusBadRequest
	case errors.Is(err, swipe.ErrNoCandidate), errors.Is(err, catalog.ErrNoResults):
		return fiber.StatusNotFound
	case errors.Is(err, catalog.ErrUnavailable):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// fail writes err with its mapped status. Server-side failures are logged
// and answered with msg instead of the internal error text.
func fail(c fiber.Ctx, err error, msg string) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		slog.Error(msg, "error", err, "path", c.Path())
		return c.Status(code).JSON(ErrorResponse{Error: msg})
	}
	if code == fiber.StatusBadGateway {
		slog.Warn(msg, "error", err, "path", c.Path())
		return c.Status(code).JSON(ErrorResponse{Error: "catalog unavailable"})
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *DeviceHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   "cinetrack",
		"device_id": h.svc.DeviceID(),
	})
}

// ---- Catalog ----

// Trending returns this week's trending titles.
// @Router /catalog/trending [get]
func (h *DeviceHandler) Trending(c fiber.Ctx) error {
	items, err := h.svc.Trending(c.Context())
	if err != nil {
		return fail(c, err, "failed to load trending titles")
	}
	return c.JSON(fiber.Map{"results": nonNil(items)})
}

// Search runs a multi-type search.
// @Param q query string true "Search text"
// @Router /catalog/search [get]
func (h *DeviceHandler) Search(c fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return badRequest(c, "query parameter q is required")
	}
	items, err := h.svc.Search(c.Context(), q)
	if err != nil {
		return fail(c, err, "search failed")
	}
	return c.JSON(fiber.Map{"query": q, "results": nonNil(items)})
}

// Popular returns one page of popular movies.
// @Param page query int false "Page number" default(1)
// @Router /catalog/popular [get]
func (h *DeviceHandler) Popular(c fiber.Ctx) error {
	page := fiber.Query(c, "page", 1)
	if page < 1 {
		page = 1
	}
	items, err := h.svc.Popular(c.Context(), page)
	if err != nil {
		return fail(c, err, "failed to load popular titles")
	}
	return c.JSON(fiber.Map{"page": page, "results": nonNil(items)})
}

// Details returns one title with credits and videos.
// @Param type path string true "movie or tv"
// @Param id path int true "Title ID"
// @Router /catalog/{type}/{id} [get]
func (h *DeviceHandler) Details(c fiber.Ctx) error {
	mediaType := models.MediaType(c.Params("type"))
	if !mediaType.Valid() {
		return badRequest(c, "type must be movie or tv")
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return badRequest(c, "invalid title ID")
	}

	detail, err := h.svc.Details(c.Context(), mediaType, id)
	if err != nil {
		return fail(c, err, "failed to retrieve title details")
	}
	return c.JSON(detail)
}

// ---- Watchlist ----

type listChangeResponse struct {
	Changed  bool                       `json:"changed"`
	Unlocked []gamification.Achievement `json:"unlocked"`
}

func (h *DeviceHandler) ListWatchlist(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.svc.Watchlist().Items()})
}

// AddToWatchlist saves a title. Adding a listed title again is accepted and
// changes nothing.
// @Router /watchlist [post]
func (h *DeviceHandler) AddToWatchlist(c fiber.Ctx) error {
	var item models.WatchlistItem
	if err := c.Bind().JSON(&item); err != nil || item.ID <= 0 {
		return badRequest(c, "invalid request body")
	}

	added, unlocked, err := h.svc.AddToWatchlist(c.Context(), item)
	if err != nil {
		return fail(c, err, "failed to update watchlist")
	}
	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(listChangeResponse{Changed: added, Unlocked: nonNil(unlocked)})
}

// @Router /watchlist/{id} [delete]
func (h *DeviceHandler) RemoveFromWatchlist(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid title ID")
	}
	removed, err := h.svc.RemoveFromWatchlist(c.Context(), id)
	if err != nil {
		return fail(c, err, "failed to update watchlist")
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "title not on watchlist"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DeviceHandler) ListWatched(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.svc.Watchlist().Watched()})
}

// MarkWatched moves a title to the watched list. The body may carry only
// the id of a title already on the watchlist.
// @Router /watched [post]
func (h *DeviceHandler) MarkWatched(c fiber.Ctx) error {
	var item models.WatchlistItem
	if err := c.Bind().JSON(&item); err != nil || item.ID <= 0 {
		return badRequest(c, "invalid request body")
	}

	watched, unlocked, err := h.svc.MarkWatched(c.Context(), item)
	if err != nil {
		return fail(c, err, "failed to mark title watched")
	}
	status := fiber.StatusOK
	if watched {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(listChangeResponse{Changed: watched, Unlocked: nonNil(unlocked)})
}

// ---- Gamification ----

// Gamification returns the counters and overall badge progress.
// @Router /gamification [get]
func (h *DeviceHandler) Gamification(c fiber.Ctx) error {
	t := h.svc.Tracker()
	return c.JSON(fiber.Map{
		"stats":    t.Stats(),
		"progress": t.Progress(),
		"unlocked": t.UnlockedAchievements(),
	})
}

type achievementView struct {
	gamification.Achievement
	Current     int `json:"current"`
	Requirement int `json:"requirement"`
}

// Achievements lists the whole badge catalog with per-badge progress.
// @Router /gamification/achievements [get]
func (h *DeviceHandler) Achievements(c fiber.Ctx) error {
	t := h.svc.Tracker()
	all := t.Achievements()
	views := make([]achievementView, 0, len(all))
	for _, a := range all {
		current, requirement, _ := t.BadgeProgress(a.ID)
		views = append(views, achievementView{Achievement: a, Current: current, Requirement: requirement})
	}
	return c.JSON(fiber.Map{"achievements": views})
}

// ---- Mood quiz ----

type quizState struct {
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	Complete bool           `json:"complete"`
	Question *mood.Question `json:"question"`
}

func (h *DeviceHandler) quizState() quizState {
	q := h.svc.Quiz()
	state := quizState{Index: q.Index(), Total: q.TotalQuestions()}
	if current, ok := q.CurrentQuestion(); ok {
		state.Question = &current
	} else {
		state.Complete = true
	}
	return state
}

// QuizState returns the current question and progress.
// @Router /quiz [get]
func (h *DeviceHandler) QuizState(c fiber.Ctx) error {
	return c.JSON(h.quizState())
}

// @Router /quiz/reset [post]
func (h *DeviceHandler) ResetQuiz(c fiber.Ctx) error {
	h.svc.Quiz().Reset()
	return c.JSON(h.quizState())
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

// AnswerQuiz answers the current question. Without question_id the answer
// applies to whichever question is current.
// @Router /quiz/answers [post]
func (h *DeviceHandler) AnswerQuiz(c fiber.Ctx) error {
	var req answerRequest
	if err := c.Bind().JSON(&req); err != nil || req.Value == "" {
		return badRequest(c, "invalid request body")
	}

	var err error
	if req.QuestionID == "" {
		err = h.svc.Quiz().AnswerCurrentQuestion(req.Value)
	} else {
		err = h.svc.Quiz().Answer(req.QuestionID, req.Value)
	}
	if err != nil {
		return fail(c, err, "failed to record answer")
	}
	return c.JSON(h.quizState())
}

// QuizRecommendation turns the completed quiz into one title and saves it.
// @Router /quiz/recommendation [post]
func (h *DeviceHandler) QuizRecommendation(c fiber.Ctx) error {
	result, err := h.svc.CompleteQuiz(c.Context())
	if err != nil {
		return fail(c, err, "failed to compute recommendation")
	}
	return c.JSON(result)
}

// @Router /quiz/history [get]
func (h *DeviceHandler) QuizHistory(c fiber.Ctx) error {
	history, err := h.svc.Quiz().History(c.Context())
	if err != nil {
		return fail(c, err, "failed to load quiz history")
	}
	return c.JSON(fiber.Map{"results": history})
}

// ---- Swipe ----

type candidateResponse struct {
	Candidate *models.CatalogItem `json:"candidate"`
}

func (h *DeviceHandler) current() candidateResponse {
	if item, ok := h.svc.Swipes().Current(); ok {
		return candidateResponse{Candidate: &item}
	}
	return candidateResponse{}
}

// LoadSwipeQueue loads candidates for a swipe session.
// @Router /swipe/queue [post]
func (h *DeviceHandler) LoadSwipeQueue(c fiber.Ctx) error {
	if !h.svc.Swipes().LoadQueue(c.Context()) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no swipe candidates available"})
	}
	return c.JSON(h.current())
}

// @Router /swipe/current [get]
func (h *DeviceHandler) CurrentCandidate(c fiber.Ctx) error {
	return c.JSON(h.current())
}

type judgeRequest struct {
	Direction string `json:"direction"`
}

type judgeResponse struct {
	Liked     bool                       `json:"liked"`
	Unlocked  []gamification.Achievement `json:"unlocked"`
	Candidate *models.CatalogItem        `json:"candidate"`
}

// Judge accepts or rejects the current candidate.
// @Router /swipe/judge [post]
func (h *DeviceHandler) Judge(c fiber.Ctx) error {
	var req judgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	dir, err := swipe.ParseDirection(req.Direction)
	if err != nil {
		return badRequest(c, err.Error())
	}

	liked, unlocked, err := h.svc.Judge(c.Context(), dir)
	if err != nil {
		return fail(c, err, "failed to record swipe")
	}
	return c.JSON(judgeResponse{Liked: liked, Unlocked: nonNil(unlocked), Candidate: h.current().Candidate})
}

// TasteProfile returns the derived taste profile, or null before any swipe.
// @Router /swipe/profile [get]
func (h *DeviceHandler) TasteProfile(c fiber.Ctx) error {
	profile, ok := h.svc.Swipes().TasteProfile()
	if !ok {
		return c.JSON(fiber.Map{"profile": nil})
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// @Router /swipe/recommendations [get]
func (h *DeviceHandler) SwipeRecommendations(c fiber.Ctx) error {
	items, err := h.svc.Swipes().Recommendations(c.Context())
	if err != nil {
		return fail(c, err, "failed to load recommendations")
	}
	return c.JSON(fiber.Map{"results": nonNil(items)})
}

// @Router /swipe/preferences [delete]
func (h *DeviceHandler) ResetSwipePreferences(c fiber.Ctx) error {
	if err := h.svc.Swipes().ResetPreferences(c.Context()); err != nil {
		return fail(c, err, "failed to reset preferences")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SwipeHistory returns judgments. filter=liked or filter=disliked narrows
// the list.
// @Router /swipe/history [get]
func (h *DeviceHandler) SwipeHistory(c fiber.Ctx) error {
	l := h.svc.Swipes()
	switch c.Query("filter") {
	case "liked":
		return c.JSON(fiber.Map{"history": l.Liked()})
	case "disliked":
		return c.JSON(fiber.Map{"history": l.Disliked()})
	case "":
		return c.JSON(fiber.Map{"history": l.History()})
	}
	return badRequest(c, "filter must be liked or disliked")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
