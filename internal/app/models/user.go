package models

import "time"

// User is a profile keyed by email.
type User struct {
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	PhotoURL  string    `json:"photoUrl,omitempty" db:"photo_url"`
	Role      RoleType  `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
