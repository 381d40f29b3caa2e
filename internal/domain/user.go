package domain

import "time"

// User is an account holder. The password hash is opaque to everything
// outside the auth service.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
