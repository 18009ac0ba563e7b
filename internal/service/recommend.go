package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vybr/booking-api/internal/domain"
)

// Scoring weights. An artist hit dominates, genres are worth a couple
// of points, songs and free-text taste signals trail behind.
const (
	artistMatchWeight   = 5.0
	genreMatchWeight    = 2.0
	songMatchWeight     = 1.0
	bioTasteMatchWeight = 1.0
)

type RecommendUserRepository interface {
	FindProfile(ctx context.Context, userID uint) (domain.MusicProfile, error)
}

type RecommendEventRepository interface {
	FindRecommendationCandidates(ctx context.Context, userID uint) ([]domain.Event, error)
}

type RecommendService struct {
	users  RecommendUserRepository
	events RecommendEventRepository
}

func NewRecommendService(users RecommendUserRepository, events RecommendEventRepository) *RecommendService {
	return &RecommendService{
		users:  users,
		events: events,
	}
}

// RecommendEvents fetches the candidate events for a user and ranks
// them by taste relevance, highest first. Candidates with equal scores
// keep their fetch order.
func (s *RecommendService) RecommendEvents(ctx context.Context, userID uint) ([]domain.ScoredEvent, error) {
	profile, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.users.FindProfile -> %w", err)
	}

	candidates, err := s.events.FindRecommendationCandidates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.events.FindRecommendationCandidates -> %w", err)
	}

	taste := BuildTasteProfile(profile)

	scored := make([]domain.ScoredEvent, 0, len(candidates))
	for _, event := range candidates {
		scored = append(scored, domain.ScoredEvent{
			Event: event,
			Score: ScoreEvent(event, taste),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored, nil
}

// BuildTasteProfile normalizes everything the user has told us about
// their taste into lower-cased lookup sets.
func BuildTasteProfile(p domain.MusicProfile) domain.TasteProfile {
	taste := domain.TasteProfile{
		Artists:     make(map[string]struct{}),
		Genres:      make(map[string]struct{}),
		Songs:       make(map[string]struct{}),
		BioKeywords: make(map[string]struct{}),
	}

	addCommaSeparated(taste.Artists, p.FavoriteArtists)
	addCommaSeparated(taste.Genres, p.FavoriteGenres)
	addCommaSeparated(taste.Songs, p.FavoriteSongs)

	addList(taste.Artists, p.TopArtists)
	addList(taste.Genres, p.TopGenres)
	addList(taste.Songs, p.TopSongs)

	// Bio free text routes into the structured sets: what the user
	// writes about their taste reads as genres, a dream concert names
	// artists, the go-to song is a song.
	addBioTerms(taste.Genres, p.MusicTaste)
	addBioTerms(taste.Artists, p.DreamConcert)
	addBioTerms(taste.Songs, p.GoToSong)

	addKeywordTokens(taste.BioKeywords, p.FirstSong)
	addKeywordTokens(taste.BioKeywords, p.MustListenAlbum)
	addKeywordTokens(taste.BioKeywords, p.FavoriteAlbums)

	// Direct preference terms also count toward the fuzzy text pass.
	for term := range taste.Artists {
		taste.BioKeywords[term] = struct{}{}
	}
	for term := range taste.Genres {
		taste.BioKeywords[term] = struct{}{}
	}
	for term := range taste.Songs {
		taste.BioKeywords[term] = struct{}{}
	}

	return taste
}

// ScoreEvent computes the relevance of one event for one taste
// profile. Pure and deterministic; an empty profile scores zero.
func ScoreEvent(event domain.Event, taste domain.TasteProfile) float64 {
	if taste.Empty() {
		return 0
	}

	score := 0.0

	for _, artist := range event.Artists {
		if _, ok := taste.Artists[normalizeTerm(artist)]; ok {
			score += artistMatchWeight
		}
	}

	for _, genre := range event.Genres {
		normalized := normalizeTerm(genre)
		if _, ok := taste.Genres[normalized]; ok {
			score += genreMatchWeight

			// A genre the user both lists structurally and echoes in
			// free text counts a second time at half a bio point.
			if _, ok := taste.BioKeywords[normalized]; ok {
				score += bioTasteMatchWeight * 0.5
			}
		}
	}

	for _, song := range event.Songs {
		if _, ok := taste.Songs[normalizeTerm(song)]; ok {
			score += songMatchWeight
		}
	}

	eventText := strings.ToLower(event.Title + " " + event.Description)
	for token := range taste.BioKeywords {
		if len(token) > 2 && strings.Contains(eventText, token) {
			score += bioTasteMatchWeight * 0.2
		}
	}

	return score
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func addCommaSeparated(set map[string]struct{}, text string) {
	for _, part := range strings.Split(text, ",") {
		if term := normalizeTerm(part); term != "" {
			set[term] = struct{}{}
		}
	}
}

func addList(set map[string]struct{}, items []string) {
	for _, item := range items {
		if term := normalizeTerm(item); term != "" {
			set[term] = struct{}{}
		}
	}
}

// addBioTerms splits free text on commas, connector words and
// whitespace, so "house and techno" yields both genres.
func addBioTerms(set map[string]struct{}, text string) {
	lowered := strings.ToLower(text)
	lowered = strings.ReplaceAll(lowered, " and ", ",")
	lowered = strings.ReplaceAll(lowered, " with ", ",")

	for _, part := range strings.Split(lowered, ",") {
		for _, word := range strings.Fields(part) {
			if term := normalizeTerm(word); term != "" {
				set[term] = struct{}{}
			}
		}
	}
}

// addKeywordTokens tokenizes free text on whitespace and punctuation,
// strips non-alphanumeric characters and drops tokens of length <= 2.
func addKeywordTokens(set map[string]struct{}, text string) {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		token := stripNonAlnum(word)
		if len(token) > 2 {
			set[token] = struct{}{}
		}
	}
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}
