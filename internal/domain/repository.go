package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// BusinessRepository handles persistence of the relational business record.
// Delete exists only as the compensating action when quarter generation
// fails after the business row has been committed.
type BusinessRepository interface {
	Create(ctx context.Context, business *Business) (*Business, error)
	FindByUser(ctx context.Context, userID string) (*Business, error)
	Delete(ctx context.Context, id int) error
}

// QuarterRepository owns the quarterly update documents. Replace must match
// on the version the quarter was loaded at and reject stale writes with
// ErrConflict.
type QuarterRepository interface {
	InsertMany(ctx context.Context, quarters []QuarterlyUpdate) error
	FindByBusiness(ctx context.Context, businessID int) ([]QuarterlyUpdate, error)
	FindOne(ctx context.Context, id string, businessID int) (*QuarterlyUpdate, error)
	Replace(ctx context.Context, quarter *QuarterlyUpdate) error
}
