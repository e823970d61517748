package mood

import "cinetrack/internal/models"

// Energy intensities carried by the energy question.
const (
	IntensityHigh   = "high"
	IntensityMedium = "medium"
	IntensityLow    = "low"
	IntensityChill  = "chill"
)

// Option is one answer to a question. Each option sets only the attributes
// relevant to its question.
type Option struct {
	Value      string           `json:"value"`
	Label      string           `json:"label"`
	Emoji      string           `json:"emoji"`
	Genres     []int            `json:"genres,omitempty"`
	Intensity  string           `json:"intensity,omitempty"`
	MaxRuntime int              `json:"max_runtime,omitempty"` // minutes
	MediaType  models.MediaType `json:"media_type,omitempty"`
	Audience   string           `json:"audience,omitempty"`
}

// Question is one step of the quiz.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Emoji   string   `json:"emoji"`
	Options []Option `json:"options"`
}

// Option returns the option with the given value.
func (q Question) Option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

const (
	questionMood     = "mood"
	questionEnergy   = "energy"
	questionDuration = "duration"
	questionCompany  = "company"
	questionGenre    = "genre"
)

// Questions returns the fixed quiz in order.
func Questions() []Question {
	return []Question{
		{
			ID: questionMood, Prompt: "How are you feeling?", Emoji: "🎭",
			Options: []Option{
				{Value: "happy", Label: "Happy", Emoji: "😊", Genres: []int{models.GenreComedy, models.GenreFamily, models.GenreAnimation}},
				{Value: "sad", Label: "Sad", Emoji: "😢", Genres: []int{models.GenreDrama, models.GenreRomance}},
				{Value: "stressed", Label: "Stressed", Emoji: "😰", Genres: []int{models.GenreComedy, models.GenreMusic, models.GenreDocumentary}},
				{Value: "excited", Label: "Excited", Emoji: "🤩", Genres: []int{models.GenreAction, models.GenreAdventure, models.GenreSciFi}},
				{Value: "scared", Label: "Thrill-seeking", Emoji: "😱", Genres: []int{models.GenreHorror, models.GenreThriller}},
				{Value: "romantic", Label: "Romantic", Emoji: "💕", Genres: []int{models.GenreRomance, models.GenreComedy, models.GenreDrama}},
			},
		},
		{
			ID: questionEnergy, Prompt: "What's your energy level?", Emoji: "🔋",
			Options: []Option{
				{Value: "high", Label: "Energized", Emoji: "🚀", Intensity: IntensityHigh},
				{Value: "medium", Label: "Steady", Emoji: "😌", Intensity: IntensityMedium},
				{Value: "low", Label: "Tired", Emoji: "😴", Intensity: IntensityLow},
				{Value: "chill", Label: "Relaxed", Emoji: "🛋️", Intensity: IntensityChill},
			},
		},
		{
			ID: questionDuration, Prompt: "How much time do you have?", Emoji: "⏱️",
			Options: []Option{
				{Value: "short", Label: "Short (< 90 min)", Emoji: "⚡", MaxRuntime: 90},
				{Value: "medium", Label: "Regular (90-120 min)", Emoji: "🎬", MaxRuntime: 120},
				{Value: "long", Label: "Long (> 120 min)", Emoji: "🍿", MaxRuntime: 300},
				{Value: "series", Label: "Series (episodes)", Emoji: "📺", MediaType: models.MediaTV},
			},
		},
		{
			ID: questionCompany, Prompt: "Who are you watching with?", Emoji: "👥",
			Options: []Option{
				{Value: "alone", Label: "Alone", Emoji: "🙋", Audience: "solo"},
				{Value: "couple", Label: "As a couple", Emoji: "💑", Audience: "couple"},
				{Value: "friends", Label: "With friends", Emoji: "👯", Audience: "group"},
				{Value: "family", Label: "With family", Emoji: "👨‍👩‍👧‍👦", Genres: []int{models.GenreFamily, models.GenreAnimation, models.GenreAdventure}},
			},
		},
		{
			ID: questionGenre, Prompt: "Any genre preference?", Emoji: "🎪",
			Options: []Option{
				{Value: "action", Label: "Action/Adventure", Emoji: "💥", Genres: []int{models.GenreAction, models.GenreAdventure}},
				{Value: "comedy", Label: "Comedy", Emoji: "😂", Genres: []int{models.GenreComedy}},
				{Value: "drama", Label: "Drama", Emoji: "🎭", Genres: []int{models.GenreDrama}},
				{Value: "scifi", Label: "Sci-Fi/Fantasy", Emoji: "🚀", Genres: []int{models.GenreSciFi, models.GenreFantasy}},
				{Value: "horror", Label: "Horror/Thriller", Emoji: "👻", Genres: []int{models.GenreHorror, models.GenreThriller}},
				{Value: "surprise", Label: "Surprise me", Emoji: "🎲", Genres: []int{}},
			},
		},
	}
}
