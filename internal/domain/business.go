package domain

import "time"

// Business is the single registered business of a user. StartDate carries
// no time component; it drives fiscal quarter generation.
type Business struct {
	ID        int
	UserID    string
	Name      string
	StartDate time.Time
	CreatedAt time.Time
}
