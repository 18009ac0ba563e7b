package service

import (
	"context"
	"fmt"

	"github.com/vybr/booking-api/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	SaveProfile(ctx context.Context, profile domain.MusicProfile) (domain.MusicProfile, error)
	FindProfile(ctx context.Context, userID uint) (domain.MusicProfile, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) SaveMusicProfile(ctx context.Context, profile domain.MusicProfile) (domain.MusicProfile, error) {
	saved, err := s.repo.SaveProfile(ctx, profile)
	if err != nil {
		return domain.MusicProfile{}, fmt.Errorf("s.repo.SaveProfile -> %w", err)
	}

	return saved, nil
}

func (s *UserService) GetMusicProfile(ctx context.Context, userID uint) (domain.MusicProfile, error) {
	profile, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		return domain.MusicProfile{}, fmt.Errorf("s.repo.FindProfile -> %w", err)
	}

	return profile, nil
}
