package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                  int64      `json:"id" db:"id"`
	Login               string     `json:"login" db:"login"`
	Email               string     `json:"email" db:"email"`
	Password            string     `json:"-" db:"password"`
	FirstName           string     `json:"firstName" db:"first_name"`
	LastName            string     `json:"lastName" db:"last_name"`
	Cell                *string    `json:"cell,omitempty" db:"cell"`
	Roles               []RoleType `json:"roles"`
	IsActive            bool       `json:"isActive" db:"is_active"`
	FailedLoginAttempts int        `json:"-" db:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"-" db:"locked_until"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasRole reports whether the user holds any of the given roles
func (u *User) HasRole(roles ...RoleType) bool {
	for _, held := range u.Roles {
		for _, r := range roles {
			if held == r {
				return true
			}
		}
	}
	return false
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the account is inside a lockout window
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// UserFilter narrows user listings
type UserFilter struct {
	Role   RoleType
	Search string
	Offset uint64
	Limit  int
}

// TouristProfile holds the tourism-specific data of a TOURIST user
type TouristProfile struct {
	UserID    int64     `json:"userId" db:"user_id"`
	BirthDate time.Time `json:"birthDate" db:"birth_date"`
	City      string    `json:"city" db:"city"`
	Address   string    `json:"address" db:"address"`
	Phone     string    `json:"phone" db:"phone"`
}

// Tourist is a user together with their tourist profile
type Tourist struct {
	User    User           `json:"user"`
	Profile TouristProfile `json:"profile"`
}

// TouristFilter narrows tourist searches
type TouristFilter struct {
	Search string
	City   string
	Active *bool
	Offset uint64
	Limit  int
}
