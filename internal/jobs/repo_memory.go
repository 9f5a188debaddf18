package jobs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Job // userID -> jobs
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Job)}
}

// Create stores a new job for a user.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[job.UserID] = append(r.data[job.UserID], job)
	return nil
}

// GetByID returns a job by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, job := range r.data[userID] {
		if job.ID == jobID {
			return job, nil
		}
	}
	return Job{}, ErrNotFound
}

// ListByUser returns jobs for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userJobs := r.data[userID]
	r.mu.RUnlock()

	if len(userJobs) == 0 || offset >= len(userJobs) {
		return []Job{}, nil
	}

	out := make([]Job, len(userJobs))
	copy(out, userJobs)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// Update replaces the stored job.
func (r *MemoryRepo) Update(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userJobs := r.data[job.UserID]
	for i := range userJobs {
		if userJobs[i].ID == job.ID {
			userJobs[i] = job
			r.data[job.UserID] = userJobs
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes a job.
func (r *MemoryRepo) Delete(ctx context.Context, userID, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userJobs := r.data[userID]
	for i := range userJobs {
		if userJobs[i].ID == jobID {
			r.data[userID] = append(userJobs[:i], userJobs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
