package models

import "time"

// MediaType distinguishes single titles from series in the catalog.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaTV     MediaType = "tv"
	MediaPerson MediaType = "person"
)

// Valid reports whether t is a browsable content type.
func (t MediaType) Valid() bool {
	return t == MediaMovie || t == MediaTV
}

// SortOrder is a catalog discover sort field.
type SortOrder string

const (
	SortPopularityDesc SortOrder = "popularity.desc"
	SortRatingDesc     SortOrder = "vote_average.desc"
)

// CatalogItem is a movie or series as returned by catalog listings.
type CatalogItem struct {
	ID           int       `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	Rating       float64   `json:"rating"`
	VoteCount    int       `json:"vote_count"`
	Popularity   float64   `json:"popularity"`
	GenreIDs     []int     `json:"genre_ids"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	Runtime      int       `json:"runtime,omitempty"` // minutes, 0 when unknown
}

// HasPoster reports whether the item has a displayable image.
func (i CatalogItem) HasPoster() bool {
	return i.PosterPath != ""
}

// PosterURL returns the w500 poster URL, or "" without a poster.
func (i CatalogItem) PosterURL() string {
	if i.PosterPath == "" {
		return ""
	}
	return TMDBImageBaseW500 + i.PosterPath
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited actor.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
}

// Video is a trailer or clip attached to a title.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// CatalogDetail is the detailed view of a title with credits and videos.
type CatalogDetail struct {
	CatalogItem
	Genres []Genre      `json:"genres"`
	Cast   []CastMember `json:"cast"`
	Videos []Video      `json:"videos"`
	Status string       `json:"status,omitempty"`
}

// DiscoverQuery parameterizes a catalog discover request.
type DiscoverQuery struct {
	MediaType    MediaType `json:"media_type"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
	SortBy       SortOrder `json:"sort_by"`
	MinVoteCount int       `json:"min_vote_count"`
	Page         int       `json:"page"`
}

// Normalize fills defaults for missing fields.
func (q *DiscoverQuery) Normalize() {
	if !q.MediaType.Valid() {
		q.MediaType = MediaMovie
	}
	if q.SortBy == "" {
		q.SortBy = SortPopularityDesc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.MinVoteCount < 0 {
		q.MinVoteCount = 0
	}
}

// WatchlistItem is a saved title on the device.
type WatchlistItem struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	PosterPath string     `json:"poster_path"`
	Rating     float64    `json:"rating"`
	MediaType  MediaType  `json:"media_type"`
	GenreIDs   []int      `json:"genre_ids"`
	AddedAt    time.Time  `json:"added_at"`
	WatchedAt  *time.Time `json:"watched_at,omitempty"`
}

const (
	TMDBImageBaseW500 = "https://image.tmdb.org/t/p/w500"
	TMDBImageBaseW780 = "https://image.tmdb.org/t/p/w780"

	// MinReliableVotes is the vote count below which a rating is ignored.
	MinReliableVotes = 100
)
