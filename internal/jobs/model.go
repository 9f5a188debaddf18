package jobs

import "time"

// Job represents a job description a user is tailoring a CV for.
type Job struct {
	ID          string
	UserID      string
	Title       string
	Company     string
	Description string
	Language    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
