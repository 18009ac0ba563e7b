package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type SaveMusicProfileRequest struct {
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

func (req *SaveMusicProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FavoriteArtists, validation.Length(0, 2000)),
		validation.Field(&req.FavoriteGenres, validation.Length(0, 2000)),
		validation.Field(&req.FavoriteSongs, validation.Length(0, 2000)),
		validation.Field(&req.MusicTaste, validation.Length(0, 2000)),
		validation.Field(&req.DreamConcert, validation.Length(0, 2000)),
		validation.Field(&req.GoToSong, validation.Length(0, 2000)),
		validation.Field(&req.FirstSong, validation.Length(0, 2000)),
		validation.Field(&req.MustListenAlbum, validation.Length(0, 2000)),
		validation.Field(&req.FavoriteAlbums, validation.Length(0, 2000)),
	)
}
