package domain

import (
	"strings"
	"time"
)

// User is the demo entity mapped onto the users table.
type User struct {
	Base
	Name      string
	Email     string
	Age       int
	Active    bool
	Nickname  *string // nullable
	CreatedAt time.Time
}

// DisplayName returns the nickname when present, the name otherwise.
func (u *User) DisplayName() string {
	if u.Nickname != nil && strings.TrimSpace(*u.Nickname) != "" {
		return *u.Nickname
	}
	return u.Name
}

// UserFilter holds the criteria accepted by user finders.
type UserFilter struct {
	MinAge     int
	NamePrefix string
	ActiveOnly bool
}

// Validate checks that the filter is well-formed.
func (f *UserFilter) Validate() error {
	if f.MinAge < 0 {
		return ErrValidation("min age must not be negative")
	}
	if strings.ContainsAny(f.NamePrefix, "%_") {
		return ErrValidation("name prefix must not contain wildcard characters")
	}
	return nil
}
