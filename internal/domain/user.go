package domain

import (
	"fmt"
	"strings"
)

// User is a learner account as seen by the notifier: just enough to address
// an email and attribute tracking events.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Validate checks that the user can receive mail.
func (u *User) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrInvalidID)
	}
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: username cannot be empty", ErrValidation)
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, u.Email)
	}
	return nil
}
