package models

import "time"

// User is a player account record. Authentication lives outside this system;
// the user id arrives as an opaque identifier.
type User struct {
	UserID      string    `json:"user_id" badgerhold:"key"`
	DisplayName string    `json:"display_name"`
	Endowment   float64   `json:"endowment"` // initial virtual wallet
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// Name returns the display name, falling back to the user id.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.UserID
}
