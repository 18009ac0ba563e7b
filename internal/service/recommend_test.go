package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybr/booking-api/internal/domain"
)

type fakeRecommendUserRepo struct {
	profile domain.MusicProfile
}

func (f *fakeRecommendUserRepo) FindProfile(_ context.Context, _ uint) (domain.MusicProfile, error) {
	return f.profile, nil
}

type fakeRecommendEventRepo struct {
	candidates []domain.Event
}

func (f *fakeRecommendEventRepo) FindRecommendationCandidates(_ context.Context, _ uint) ([]domain.Event, error) {
	return f.candidates, nil
}

func TestScoreEvent_EmptyProfileScoresZero(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{})

	event := domain.Event{
		Title:   "Warehouse Rave",
		Artists: []string{"Daft Punk"},
		Genres:  []string{"House"},
		Songs:   []string{"One More Time"},
	}

	assert.Equal(t, 0.0, ScoreEvent(event, taste))
}

func TestScoreEvent_Deterministic(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{
		FavoriteArtists: "Daft Punk, Justice",
		FavoriteGenres:  "house",
		MusicTaste:      "house and techno",
	})

	event := domain.Event{
		Title:       "House Night",
		Description: "All night house with Daft Punk classics",
		Artists:     []string{"Daft Punk"},
		Genres:      []string{"House", "Techno"},
	}

	first := ScoreEvent(event, taste)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ScoreEvent(event, taste))
	}
}

func TestScoreEvent_NonNegative(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{
		FavoriteArtists: "Daft Punk",
		FavoriteGenres:  "house",
		FavoriteSongs:   "One More Time",
	})

	events := []domain.Event{
		{},
		{Title: "Jazz Brunch", Genres: []string{"Jazz"}},
		{Title: "House Night", Genres: []string{"House"}},
	}
	for _, event := range events {
		assert.GreaterOrEqual(t, ScoreEvent(event, taste), 0.0)
	}
}

func TestScoreEvent_ArtistMatchDominates(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{
		FavoriteArtists: "Daft Punk",
	})

	withArtist := domain.Event{Artists: []string{"Daft Punk"}}
	withoutArtist := domain.Event{Artists: []string{"Justice"}}

	assert.GreaterOrEqual(t, ScoreEvent(withArtist, taste), 5.0)
	assert.Equal(t, 0.0, ScoreEvent(withoutArtist, taste))
}

func TestScoreEvent_GenreEchoCountsExtra(t *testing.T) {
	// "house" appears both in the structured genre favorites and in the
	// free-text taste, so a structural genre hit earns the half-point echo.
	echoed := BuildTasteProfile(domain.MusicProfile{
		FavoriteGenres: "house",
		MusicTaste:     "house",
	})
	structuralOnly := BuildTasteProfile(domain.MusicProfile{
		FavoriteGenres: "house",
	})

	event := domain.Event{Genres: []string{"House"}}

	// The structural genre term also feeds the keyword set, so the
	// echo fires either way; free text must not add more on top.
	assert.Equal(t, 2.5, ScoreEvent(event, structuralOnly))
	assert.Equal(t, 2.5, ScoreEvent(event, echoed))
}

func TestScoreEvent_SubstringPass(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{
		MustListenAlbum: "Discovery",
	})

	hit := domain.Event{Title: "Discovery listening party"}
	miss := domain.Event{Title: "Open decks"}

	assert.Equal(t, 0.2, ScoreEvent(hit, taste))
	assert.Equal(t, 0.0, ScoreEvent(miss, taste))
}

func TestScoreEvent_ShortTokensSkipSubstringPass(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{
		FirstSong: "Go on up",
	})

	// "go", "on", "up" are all too short to keyword-match.
	event := domain.Event{Title: "go on up to the roof"}

	assert.Equal(t, 0.0, ScoreEvent(event, taste))
}

func TestScoreEvent_EventWithoutTags(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{
		FavoriteArtists: "Daft Punk",
		FavoriteGenres:  "house",
	})

	// No artists/genres/songs on the event, so only the free-text pass
	// can contribute.
	event := domain.Event{
		Title:       "Secret warehouse party",
		Description: "Expect plenty of house",
	}

	assert.Equal(t, 0.2, ScoreEvent(event, taste))
}

func TestBuildTasteProfile_RoutesBioFields(t *testing.T) {
	taste := BuildTasteProfile(domain.MusicProfile{
		MusicTaste:   "house and techno",
		DreamConcert: "Daft Punk",
		GoToSong:     "One More Time",
	})

	assert.Contains(t, taste.Genres, "house")
	assert.Contains(t, taste.Genres, "techno")
	assert.Contains(t, taste.Artists, "daft")
	assert.Contains(t, taste.Songs, "one")
}

func TestRecommendEvents_RanksDescending(t *testing.T) {
	users := &fakeRecommendUserRepo{
		profile: domain.MusicProfile{
			FavoriteArtists: "Daft Punk",
			FavoriteGenres:  "house",
		},
	}
	events := &fakeRecommendEventRepo{
		candidates: []domain.Event{
			{ID: 1, Title: "Jazz Brunch", Genres: []string{"Jazz"}},
			{ID: 2, Title: "Daft Punk Tribute", Artists: []string{"Daft Punk"}},
			{ID: 3, Title: "House Night", Genres: []string{"House"}},
		},
	}

	svc := NewRecommendService(users, events)

	scored, err := svc.RecommendEvents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, uint(2), scored[0].Event.ID)
	assert.Equal(t, uint(3), scored[1].Event.ID)
	assert.Equal(t, uint(1), scored[2].Event.ID)
	for i := 1; i < len(scored); i++ {
		assert.LessOrEqual(t, scored[i].Score, scored[i-1].Score)
	}
}

func TestRecommendEvents_TiesKeepFetchOrder(t *testing.T) {
	users := &fakeRecommendUserRepo{}
	events := &fakeRecommendEventRepo{
		candidates: []domain.Event{
			{ID: 7, Title: "First"},
			{ID: 8, Title: "Second"},
			{ID: 9, Title: "Third"},
		},
	}

	svc := NewRecommendService(users, events)

	scored, err := svc.RecommendEvents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, uint(7), scored[0].Event.ID)
	assert.Equal(t, uint(8), scored[1].Event.ID)
	assert.Equal(t, uint(9), scored[2].Event.ID)
}
