package session

import "time"

// Snapshot is the identity state written on every successful authenticate or
// refresh and read on every validate. It is keyed by user id and lives for
// the refresh-token lifetime.
type Snapshot struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Active    bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
