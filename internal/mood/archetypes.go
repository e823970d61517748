package mood

import "time"

// Archetype is a viewer personality.
type Archetype struct {
	Type        string `json:"type"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

var archetypes = []Archetype{
	{Type: "Action Hero", Emoji: "🦸", Description: "Always ready for action"},
	{Type: "Romantic Dreamer", Emoji: "💕", Description: "A tender soul looking for love"},
	{Type: "Comedy Lover", Emoji: "😂", Description: "Laughter comes first"},
	{Type: "Thriller Seeker", Emoji: "🔍", Description: "Lives for suspense"},
	{Type: "Fantasy Explorer", Emoji: "🧙", Description: "Traveler of imaginary worlds"},
	{Type: "Drama Enthusiast", Emoji: "🎭", Description: "Craves strong emotions"},
	{Type: "Horror Brave", Emoji: "👻", Description: "Fearless in the face of horror"},
	{Type: "Chill Watcher", Emoji: "😌", Description: "Laid-back viewer"},
}

const (
	archetypeActionHero      = 0
	archetypeRomanticDreamer = 1
	archetypeHorrorBrave     = 6
	archetypeChillWatcher    = 7
)

// ViewerProfile is the personality derived from a completed quiz.
type ViewerProfile struct {
	Archetype
	Mood           string    `json:"mood"`
	Energy         string    `json:"energy"`
	PreferredGenre string    `json:"preferred_genre"`
	Timestamp      time.Time `json:"timestamp"`
}

// archetypeFor applies the fixed overrides, falling back to a random pick.
func archetypeFor(mood, energy Option, intn func(int) int) Archetype {
	switch {
	case mood.Value == "romantic":
		return archetypes[archetypeRomanticDreamer]
	case mood.Value == "excited":
		return archetypes[archetypeActionHero]
	case mood.Value == "scared":
		return archetypes[archetypeHorrorBrave]
	case energy.Intensity == IntensityChill:
		return archetypes[archetypeChillWatcher]
	}
	return archetypes[intn(len(archetypes))]
}
