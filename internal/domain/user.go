package domain

import "time"

// UserStatus represents the user's account tier and permission level.
type UserStatus string

const (
	// UserStatusAdmin grants full administrative access.
	UserStatusAdmin UserStatus = "ADMIN"
	// UserStatusVIP marks a standard user with VIP perks.
	UserStatusVIP UserStatus = "VIP"
	// UserStatusStandard is the default tier for new accounts.
	UserStatusStandard UserStatus = "STANDARD"
)

// UserSettings holds per-user presentation preferences.
type UserSettings struct {
	// ShowShelfPulse toggles the activity summary card on the home page.
	ShowShelfPulse bool `json:"show_shelf_pulse"`
}

// DefaultSettings returns the settings applied to new accounts.
func DefaultSettings() UserSettings {
	return UserSettings{ShowShelfPulse: true}
}

// User represents an authenticated account in the system.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Status       UserStatus   `json:"status"`
	Settings     UserSettings `json:"settings"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Status == UserStatusAdmin
}
