package profiles

import "time"

type Cache interface {
	Get(userID string) (*Profile, bool)
	Set(userID string, profile *Profile, ttl time.Duration)
	Delete(userID string)
}

type noopCache struct{}

func (noopCache) Get(string) (*Profile, bool) {
	return nil, false
}

func (noopCache) Set(string, *Profile, time.Duration) {}

func (noopCache) Delete(string) {}
