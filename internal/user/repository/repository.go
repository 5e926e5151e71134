package repository

import (
	"context"

	"github.com/vincent-24/GlassBallots-sub001/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByWallet(ctx context.Context, address string) (*domain.User, error)
	// Create inserts u and sets u.ID. Returns domain.ErrUserAlreadyExists on a uniqueness collision.
	Create(ctx context.Context, u *domain.User) error
	// LinkWallet sets the wallet of a user that has none. See PostgresRepository.LinkWallet for the errors.
	LinkWallet(ctx context.Context, userID int64, address string) error
}
