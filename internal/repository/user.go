package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	UpsertProfile(ctx context.Context, profile dao.MusicProfile) (dao.MusicProfile, error)
	FindProfileByUserID(ctx context.Context, userID uint) (dao.MusicProfile, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, dao.User{
		Email:    user.Email,
		Password: user.Password,
		Name:     user.Name,
		Country:  user.Country,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) SaveProfile(ctx context.Context, profile domain.MusicProfile) (domain.MusicProfile, error) {
	saved, err := r.dao.UpsertProfile(ctx, dao.MusicProfile{
		UserID:          profile.UserID,
		FavoriteArtists: profile.FavoriteArtists,
		FavoriteGenres:  profile.FavoriteGenres,
		FavoriteSongs:   profile.FavoriteSongs,
		TopArtists:      joinLines(profile.TopArtists),
		TopGenres:       joinLines(profile.TopGenres),
		TopSongs:        joinLines(profile.TopSongs),
		MusicTaste:      profile.MusicTaste,
		DreamConcert:    profile.DreamConcert,
		GoToSong:        profile.GoToSong,
		FirstSong:       profile.FirstSong,
		MustListenAlbum: profile.MustListenAlbum,
		FavoriteAlbums:  profile.FavoriteAlbums,
	})
	if err != nil {
		return domain.MusicProfile{}, fmt.Errorf("r.dao.UpsertProfile -> %w", err)
	}

	return r.profileDaoToDomain(saved), nil
}

func (r *UserRepository) FindProfile(ctx context.Context, userID uint) (domain.MusicProfile, error) {
	found, err := r.dao.FindProfileByUserID(ctx, userID)
	if err != nil {
		return domain.MusicProfile{}, fmt.Errorf("r.dao.FindProfileByUserID -> %w", err)
	}

	return r.profileDaoToDomain(found), nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		Country:   u.Country,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *UserRepository) profileDaoToDomain(p dao.MusicProfile) domain.MusicProfile {
	return domain.MusicProfile{
		UserID:          p.UserID,
		FavoriteArtists: p.FavoriteArtists,
		FavoriteGenres:  p.FavoriteGenres,
		FavoriteSongs:   p.FavoriteSongs,
		TopArtists:      splitLines(p.TopArtists),
		TopGenres:       splitLines(p.TopGenres),
		TopSongs:        splitLines(p.TopSongs),
		MusicTaste:      p.MusicTaste,
		DreamConcert:    p.DreamConcert,
		GoToSong:        p.GoToSong,
		FirstSong:       p.FirstSong,
		MustListenAlbum: p.MustListenAlbum,
		FavoriteAlbums:  p.FavoriteAlbums,
	}
}

func joinLines(items []string) string {
	return strings.Join(items, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}
