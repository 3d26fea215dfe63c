package domain

import "time"

// Session backs an issued access token; deleting it revokes the token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Caller is the resolved identity of an authenticated request. It is passed
// explicitly into every core operation.
type Caller struct {
	UserID    string
	Role      Role
	SessionID string
}

func (c Caller) Is(role Role) bool {
	return c.UserID != "" && c.Role == role
}
