package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvwizard-backend/internal/language"
)

// Service contains business logic for job descriptions.
type Service struct {
	Repo            Repo
	DefaultLanguage string
}

// Create records a new job description for a user.
func (s *Service) Create(ctx context.Context, userID, title, company, description, locale string) (Job, error) {
	if userID == "" || strings.TrimSpace(title) == "" {
		return Job{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	job := Job{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Company:     strings.TrimSpace(company),
		Description: description,
		Language:    language.FromExternalOrFallback(locale, s.defaultLanguage()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Get returns a job by ID for a user.
func (s *Service) Get(ctx context.Context, userID, jobID string) (Job, error) {
	if userID == "" || jobID == "" {
		return Job{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, jobID)
}

// List returns jobs for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Update replaces the mutable fields of a job.
func (s *Service) Update(ctx context.Context, job Job) (Job, error) {
	if job.UserID == "" || job.ID == "" || strings.TrimSpace(job.Title) == "" {
		return Job{}, ErrInvalidInput
	}
	job.Language = language.FromExternalOrFallback(job.Language, s.defaultLanguage())
	job.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Delete removes a job for a user.
func (s *Service) Delete(ctx context.Context, userID, jobID string) error {
	if userID == "" || jobID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, jobID)
}

func (s *Service) defaultLanguage() string {
	if s.DefaultLanguage == "" {
		return "en"
	}
	return s.DefaultLanguage
}
