package gamification

import "cinetrack/internal/models"

// Kind selects the counter an achievement is measured against.
type Kind string

const (
	KindWatchlist  Kind = "watchlist"   // cumulative watchlist additions
	KindWatched    Kind = "watched"     // cumulative titles marked watched
	KindStreak     Kind = "streak"      // consecutive active days
	KindDailyWatch Kind = "daily_watch" // titles watched on the same day
	KindTimeWindow Kind = "time_window" // local hour of a watchlist addition
	KindGenre      Kind = "genre"       // cumulative additions carrying GenreID
)

// Criterion is the unlock condition of an achievement. GenreID is only used
// by KindGenre; StartHour and EndHour bound the [start, end) hour window of
// KindTimeWindow.
type Criterion struct {
	Kind      Kind `json:"kind"`
	Threshold int  `json:"threshold"`
	GenreID   int  `json:"genre_id,omitempty"`
	StartHour int  `json:"start_hour,omitempty"`
	EndHour   int  `json:"end_hour,omitempty"`
}

// Achievement is a badge from the fixed catalog plus its unlock state.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Criterion   Criterion `json:"criterion"`
	Earned      bool      `json:"earned"`
}

func defaultCatalog() []Achievement {
	return []Achievement{
		{ID: "first_movie", Name: "First Movie", Icon: "🎬", Description: "Add your first title to the watchlist",
			Criterion: Criterion{Kind: KindWatchlist, Threshold: 1}},
		{ID: "collector", Name: "Collector", Icon: "📚", Description: "10 titles in your watchlist",
			Criterion: Criterion{Kind: KindWatchlist, Threshold: 10}},
		{ID: "cinephile", Name: "Cinephile", Icon: "🎭", Description: "50 titles in your watchlist",
			Criterion: Criterion{Kind: KindWatchlist, Threshold: 50}},
		{ID: "legend", Name: "Legend", Icon: "👑", Description: "100 titles in your watchlist",
			Criterion: Criterion{Kind: KindWatchlist, Threshold: 100}},

		{ID: "first_watch", Name: "First Watch", Icon: "👀", Description: "Mark a title as watched",
			Criterion: Criterion{Kind: KindWatched, Threshold: 1}},
		{ID: "marathon", Name: "Marathoner", Icon: "🏃", Description: "Watch 5 titles in one day",
			Criterion: Criterion{Kind: KindDailyWatch, Threshold: 5}},
		{ID: "night_owl", Name: "Night Owl", Icon: "🌙", Description: "Add a title after midnight",
			Criterion: Criterion{Kind: KindTimeWindow, Threshold: 1, StartHour: 0, EndHour: 6}},

		{ID: "streak_3", Name: "On Fire", Icon: "🔥", Description: "3 days in a row",
			Criterion: Criterion{Kind: KindStreak, Threshold: 3}},
		{ID: "streak_7", Name: "Unstoppable", Icon: "⚡", Description: "7 days in a row",
			Criterion: Criterion{Kind: KindStreak, Threshold: 7}},
		{ID: "streak_30", Name: "Diamond", Icon: "💎", Description: "30 days in a row",
			Criterion: Criterion{Kind: KindStreak, Threshold: 30}},
		{ID: "streak_100", Name: "Absolute Legend", Icon: "🏆", Description: "100 days in a row",
			Criterion: Criterion{Kind: KindStreak, Threshold: 100}},

		{ID: "genre_action", Name: "Action Fan", Icon: "💥", Description: "10 action titles",
			Criterion: Criterion{Kind: KindGenre, Threshold: 10, GenreID: models.GenreAction}},
		{ID: "genre_comedy", Name: "Joker", Icon: "😂", Description: "10 comedies",
			Criterion: Criterion{Kind: KindGenre, Threshold: 10, GenreID: models.GenreComedy}},
		{ID: "genre_horror", Name: "Fearless", Icon: "👻", Description: "10 horror titles",
			Criterion: Criterion{Kind: KindGenre, Threshold: 10, GenreID: models.GenreHorror}},
	}
}
