package domain

import "time"

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MusicProfile holds everything a user has told us about their taste.
// Favorites fields are free text, comma separated. The streaming lists
// come from the account link import and are already one item per entry.
type MusicProfile struct {
	UserID uint `json:"user_id"`

	FavoriteArtists string `json:"favorite_artists"`
	FavoriteGenres  string `json:"favorite_genres"`
	FavoriteSongs   string `json:"favorite_songs"`

	TopArtists []string `json:"top_artists"`
	TopGenres  []string `json:"top_genres"`
	TopSongs   []string `json:"top_songs"`

	MusicTaste      string `json:"music_taste"`
	DreamConcert    string `json:"dream_concert"`
	GoToSong        string `json:"go_to_song"`
	FirstSong       string `json:"first_song"`
	MustListenAlbum string `json:"must_listen_album"`
	FavoriteAlbums  string `json:"favorite_albums"`
}
