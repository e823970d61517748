// Package metrics exposes Prometheus counters for the device process.
//
// Usage:
//
//	bus.Subscribe(metrics.ObserveEvent)
//	metrics.RecordSwipe(true)
//	metrics.RecordCatalogRequest("discover", err)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cinetrack/internal/events"
)

var (
	// AchievementsUnlockedTotal counts unlocks by achievement id.
	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_achievements_unlocked_total",
			Help: "Total number of achievements unlocked",
		},
		[]string{"id"},
	)

	// StreaksBrokenTotal counts streak resets found by the startup and periodic checks.
	StreaksBrokenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinetrack_streaks_broken_total",
			Help: "Total number of broken activity streaks",
		},
	)

	// SwipesTotal counts swipe judgments by direction.
	SwipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_swipes_total",
			Help: "Total number of swipe judgments",
		},
		[]string{"direction"},
	)

	// QuizCompletedTotal counts quizzes that produced a recommendation.
	QuizCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinetrack_quiz_completed_total",
			Help: "Total number of completed mood quizzes",
		},
	)

	// CatalogRequestsTotal counts catalog requests by endpoint and outcome.
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_catalog_requests_total",
			Help: "Total number of catalog API requests",
		},
		[]string{"endpoint", "status"},
	)
)

// ObserveEvent records tracker events. It is meant to be subscribed to an
// events.Bus.
func ObserveEvent(e events.Event) {
	switch e.Type {
	case events.AchievementUnlocked:
		AchievementsUnlockedTotal.WithLabelValues(e.AchievementID).Inc()
	case events.StreakBroken:
		StreaksBrokenTotal.Inc()
	}
}

// RecordSwipe counts one judgment.
func RecordSwipe(liked bool) {
	direction := "reject"
	if liked {
		direction = "accept"
	}
	SwipesTotal.WithLabelValues(direction).Inc()
}

// RecordQuizCompleted counts one completed quiz.
func RecordQuizCompleted() {
	QuizCompletedTotal.Inc()
}

// RecordCatalogRequest counts one catalog call. Its signature matches
// tmdb.RequestObserver.
func RecordCatalogRequest(endpoint string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	CatalogRequestsTotal.WithLabelValues(endpoint, status).Inc()
}
