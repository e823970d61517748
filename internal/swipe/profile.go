package swipe

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"cinetrack/internal/models"
)

const (
	topGenreCount       = 3
	recommendationLimit = 10
)

// Personality classifies a viewer by how often they accept.
type Personality struct {
	Type        string `json:"type"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// GenreShare is one top genre with its share of all likes.
type GenreShare struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// TasteProfile is derived from the profile on demand.
type TasteProfile struct {
	Personality Personality  `json:"personality"`
	LikeRate    int          `json:"like_rate"`
	TotalSwipes int          `json:"total_swipes"`
	TopGenres   []GenreShare `json:"top_genres"`
	AvgRating   float64      `json:"avg_rating"`
	Selectivity string       `json:"selectivity"`
}

// TasteProfile summarizes the judgments so far. ok is false before the
// first swipe.
func (l *Learner) TasteProfile() (*TasteProfile, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return tasteProfile(l.profile)
}

func tasteProfile(p Profile) (*TasteProfile, bool) {
	if p.TotalSwipes == 0 {
		return nil, false
	}

	likeRate := int(math.Round(100 * float64(p.TotalLikes) / float64(p.TotalSwipes)))
	return &TasteProfile{
		Personality: personalityFor(likeRate),
		LikeRate:    likeRate,
		TotalSwipes: p.TotalSwipes,
		TopGenres:   topGenres(p),
		AvgRating:   math.Round(p.AvgRatingLiked*10) / 10,
		Selectivity: selectivityFor(likeRate),
	}, true
}

// topGenres ranks liked genres by count, breaking ties by lower id.
func topGenres(p Profile) []GenreShare {
	shares := make([]GenreShare, 0, len(p.LikedGenres))
	if p.TotalLikes == 0 {
		return shares
	}
	for id, count := range p.LikedGenres {
		if count <= 0 {
			continue
		}
		shares = append(shares, GenreShare{
			ID:         id,
			Name:       models.GenreName(id),
			Count:      count,
			Percentage: int(math.Round(100 * float64(count) / float64(p.TotalLikes))),
		})
	}
	slices.SortFunc(shares, func(a, b GenreShare) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(shares) > topGenreCount {
		shares = shares[:topGenreCount]
	}
	return shares
}

func personalityFor(likeRate int) Personality {
	switch {
	case likeRate > 70:
		return Personality{Type: "Optimist", Emoji: "😊", Description: "You like almost everything!"}
	case likeRate > 50:
		return Personality{Type: "Balanced", Emoji: "😌", Description: "You know what you want"}
	case likeRate > 30:
		return Personality{Type: "Selective", Emoji: "🤔", Description: "You have precise tastes"}
	default:
		return Personality{Type: "Demanding", Emoji: "👑", Description: "Only the best will do"}
	}
}

func selectivityFor(likeRate int) string {
	switch {
	case likeRate > 70:
		return "Easy to please"
	case likeRate > 50:
		return "Moderate"
	case likeRate > 30:
		return "Picky"
	default:
		return "Very demanding"
	}
}

// Recommendations queries the best rated movies in the top liked genres.
// It returns nil without error when there is no profile to go on.
func (l *Learner) Recommendations(ctx context.Context) ([]models.CatalogItem, error) {
	l.mu.Lock()
	tp, ok := tasteProfile(l.profile)
	l.mu.Unlock()

	if !ok || len(tp.TopGenres) == 0 {
		return nil, nil
	}

	genres := make([]int, len(tp.TopGenres))
	for i, g := range tp.TopGenres {
		genres[i] = g.ID
	}

	items, err := l.catalog.Discover(ctx, models.DiscoverQuery{
		MediaType:    models.MediaMovie,
		GenreIDs:     genres,
		SortBy:       models.SortRatingDesc,
		MinVoteCount: models.MinReliableVotes,
		Page:         1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover swipe recommendations: %w", err)
	}
	if len(items) > recommendationLimit {
		items = items[:recommendationLimit]
	}
	return items, nil
}
