package profiles

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Profile // userID -> profiles, newest last
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Profile)}
}

// Create stores a new profile for a user.
func (r *MemoryRepo) Create(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[profile.UserID] = append(r.data[profile.UserID], profile)
	return nil
}

// GetCurrentByUser returns the latest profile for a user.
func (r *MemoryRepo) GetCurrentByUser(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	userProfiles := r.data[userID]
	if len(userProfiles) == 0 {
		return Profile{}, ErrNotFound
	}
	return userProfiles[len(userProfiles)-1], nil
}

// Update replaces the stored profile.
func (r *MemoryRepo) Update(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userProfiles := r.data[profile.UserID]
	for i := range userProfiles {
		if userProfiles[i].ID == profile.ID {
			userProfiles[i] = profile
			r.data[profile.UserID] = userProfiles
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
