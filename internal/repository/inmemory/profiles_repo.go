package inmemory

import (
	"context"
	"sync"
	"time"

	profilesdomain "telicommunity-go/internal/domain/profiles"
)

type Profiles struct {
	mu    sync.RWMutex
	items map[string]profilesdomain.Profile
	now   func() time.Time
}

func NewProfiles() *Profiles {
	return &Profiles{
		items: make(map[string]profilesdomain.Profile),
		now:   time.Now,
	}
}

func (p *Profiles) GetByID(ctx context.Context, id string) (*profilesdomain.Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.items[id]
	if !ok {
		return nil, profilesdomain.ErrProfileNotFound
	}
	return &profile, nil
}

func (p *Profiles) GetByUsername(ctx context.Context, username string) (*profilesdomain.Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, profile := range p.items {
		if profile.Username == username {
			found := profile
			return &found, nil
		}
	}
	return nil, profilesdomain.ErrProfileNotFound
}

// Upsert leaves an unchanged row alone, timestamps included.
func (p *Profiles) Upsert(ctx context.Context, profile *profilesdomain.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, other := range p.items {
		if id != profile.ID && other.Username == profile.Username {
			return profilesdomain.ErrUsernameTaken
		}
	}

	now := p.now().UTC()
	existing, ok := p.items[profile.ID]
	switch {
	case !ok:
		profile.CreatedAt = now
		profile.UpdatedAt = now
	case sameProfileContent(existing, *profile):
		*profile = existing
		return nil
	default:
		profile.CreatedAt = existing.CreatedAt
		profile.UpdatedAt = now
	}
	p.items[profile.ID] = *profile
	return nil
}

func sameProfileContent(a, b profilesdomain.Profile) bool {
	if a.FullName != b.FullName || a.Username != b.Username || a.Age != b.Age || a.City != b.City {
		return false
	}
	switch {
	case a.AvatarURL == nil && b.AvatarURL == nil:
		return true
	case a.AvatarURL == nil || b.AvatarURL == nil:
		return false
	default:
		return *a.AvatarURL == *b.AvatarURL
	}
}
