package model

import "strings"

// GuestIDPrefix marks generated guest identities as non-durable.
const GuestIDPrefix = "guest-"

// User identifies the acting party for the current session.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsGuest bool   `json:"is_guest,omitempty"`
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayNameFromEmail derives a display name from the local part of an
// email address, e.g. "ada@example.com" -> "ada".
func DisplayNameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
