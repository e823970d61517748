package models

// Well-known TMDB genre ids.
const (
	GenreAction      = 28
	GenreAdventure   = 12
	GenreAnimation   = 16
	GenreComedy      = 35
	GenreCrime       = 80
	GenreDocumentary = 99
	GenreDrama       = 18
	GenreFamily      = 10751
	GenreFantasy     = 14
	GenreHistory     = 36
	GenreHorror      = 27
	GenreMusic       = 10402
	GenreMystery     = 9648
	GenreRomance     = 10749
	GenreSciFi       = 878
	GenreTVMovie     = 10770
	GenreThriller    = 53
	GenreWar         = 10752
	GenreWestern     = 37
)

var genreNames = map[int]string{
	GenreAction:      "Action",
	GenreAdventure:   "Adventure",
	GenreAnimation:   "Animation",
	GenreComedy:      "Comedy",
	GenreCrime:       "Crime",
	GenreDocumentary: "Documentary",
	GenreDrama:       "Drama",
	GenreFamily:      "Family",
	GenreFantasy:     "Fantasy",
	GenreHistory:     "History",
	GenreHorror:      "Horror",
	GenreMusic:       "Music",
	GenreMystery:     "Mystery",
	GenreRomance:     "Romance",
	GenreSciFi:       "Science Fiction",
	GenreTVMovie:     "TV Movie",
	GenreThriller:    "Thriller",
	GenreWar:         "War",
	GenreWestern:     "Western",
}

// GenreName returns the display name for a genre id.
func GenreName(id int) string {
	if name, ok := genreNames[id]; ok {
		return name
	}
	return "Unknown"
}
