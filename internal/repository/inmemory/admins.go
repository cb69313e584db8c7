package inmemory

import (
	"context"
	"strings"
	"sync"
)

type Admins struct {
	mu     sync.RWMutex
	emails map[string]struct{}
}

func NewAdmins(emails ...string) *Admins {
	a := &Admins{emails: make(map[string]struct{}, len(emails))}
	for _, email := range emails {
		a.Add(email)
	}
	return a
}

func (a *Admins) Add(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	a.mu.Lock()
	a.emails[email] = struct{}{}
	a.mu.Unlock()
}

func (a *Admins) CountByEmail(ctx context.Context, email string) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.emails[strings.ToLower(email)]; ok {
		return 1, nil
	}
	return 0, nil
}
