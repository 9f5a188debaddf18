package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvwizard-backend/internal/extract"
)

// Service contains business logic for CV profiles.
type Service struct {
	Repo Repo
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FullName string
	Email    string
	Phone    string
	City     string
	CVText   string
}

// Save creates the user's profile, or updates it if one already exists.
func (s *Service) Save(ctx context.Context, userID string, in ProfileInput) (Profile, error) {
	if userID == "" || strings.TrimSpace(in.FullName) == "" {
		return Profile{}, ErrInvalidInput
	}

	now := time.Now().UTC()

	existing, err := s.Repo.GetCurrentByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Profile{}, err
		}
		profile := Profile{
			ID:        uuid.NewString(),
			UserID:    userID,
			FullName:  strings.TrimSpace(in.FullName),
			Email:     strings.TrimSpace(in.Email),
			Phone:     strings.TrimSpace(in.Phone),
			City:      strings.TrimSpace(in.City),
			CVText:    in.CVText,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.Repo.Create(ctx, profile); err != nil {
			return Profile{}, err
		}
		return profile, nil
	}

	existing.FullName = strings.TrimSpace(in.FullName)
	existing.Email = strings.TrimSpace(in.Email)
	existing.Phone = strings.TrimSpace(in.Phone)
	existing.City = strings.TrimSpace(in.City)
	if in.CVText != "" {
		existing.CVText = in.CVText
	}
	existing.UpdatedAt = now

	if err := s.Repo.Update(ctx, existing); err != nil {
		return Profile{}, err
	}
	return existing, nil
}

// GetCurrent returns the user's profile.
func (s *Service) GetCurrent(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrInvalidInput
	}
	return s.Repo.GetCurrentByUser(ctx, userID)
}

// ImportCV extracts text from an uploaded CV file and stores it on the
// user's profile, creating a bare profile if none exists yet.
func (s *Service) ImportCV(ctx context.Context, userID string, data []byte, mimeType, fileName string) (Profile, error) {
	if userID == "" || len(data) == 0 {
		return Profile{}, ErrInvalidInput
	}

	text, err := extract.TextFromBytes(ctx, data, mimeType, fileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return Profile{}, ErrInvalidInput
		}
		return Profile{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Profile{}, ErrInvalidInput
	}

	now := time.Now().UTC()

	existing, err := s.Repo.GetCurrentByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Profile{}, err
		}
		profile := Profile{
			ID:        uuid.NewString(),
			UserID:    userID,
			FullName:  "",
			CVText:    text,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.Repo.Create(ctx, profile); err != nil {
			return Profile{}, err
		}
		return profile, nil
	}

	existing.CVText = text
	existing.UpdatedAt = now
	if err := s.Repo.Update(ctx, existing); err != nil {
		return Profile{}, err
	}
	return existing, nil
}
