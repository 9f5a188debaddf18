package profiles

import "context"

// Repo defines persistence operations for detailed CV profiles.
type Repo interface {
	Create(ctx context.Context, profile Profile) error
	GetCurrentByUser(ctx context.Context, userID string) (Profile, error)
	Update(ctx context.Context, profile Profile) error
}
