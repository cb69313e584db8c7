package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo     Repository
	storage  AvatarStorage
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewService(repo Repository, storage AvatarStorage, cache Cache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		repo:     repo,
		storage:  storage,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(userID, profile, s.cacheTTL)
	return profile, nil
}

func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := s.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Setup validates the form, checks the username, stores a new avatar when
// one was picked and upserts the profile, strictly in that order.
func (s *Service) Setup(ctx context.Context, input SetupInput) (*Profile, error) {
	input, err := Validate(input)
	if err != nil {
		return nil, err
	}
	if input.UserID == "" {
		return nil, ErrUserIDRequired
	}

	existing, err := s.repo.GetByUsername(ctx, input.Username)
	switch {
	case errors.Is(err, ErrProfileNotFound):
	case err != nil:
		return nil, fmt.Errorf("check username: %w", err)
	case existing.ID != input.UserID:
		return nil, ErrUsernameTaken
	}

	avatarURL := input.AvatarURL
	if len(input.Avatar) > 0 {
		if s.storage == nil {
			return nil, errors.New("avatar storage not configured")
		}
		path := AvatarPath(input.UserID, s.now())
		if err := s.storage.Upload(ctx, path, input.Avatar, AvatarContentType); err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		avatarURL = s.storage.PublicURL(path)
	}

	profile := Profile{
		ID:       input.UserID,
		FullName: input.FullName,
		Username: input.Username,
		Age:      input.Age,
		City:     input.City,
	}
	if avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return nil, err
	}
	s.cache.Delete(input.UserID)

	return &profile, nil
}

// AvatarPath is "{userID}/avatar_{unix millis}.jpg".
func AvatarPath(userID string, at time.Time) string {
	return fmt.Sprintf("%s/avatar_%d.jpg", strings.TrimSpace(userID), at.UnixMilli())
}
