package profiles

import "time"

// Profile is a user's detailed CV record: the raw CV text plus the
// personal details that flow into a generated document.
type Profile struct {
	ID        string
	UserID    string
	FullName  string
	Email     string
	Phone     string
	City      string
	CVText    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
