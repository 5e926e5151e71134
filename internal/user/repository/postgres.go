package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vincent-24/GlassBallots-sub001/internal/db"
	"github.com/vincent-24/GlassBallots-sub001/internal/user/domain"
)

const userColumns = "id, wallet_address, username, email, role, created_at, updated_at"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByWallet returns the user owning address (case-insensitive), or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByWallet(ctx context.Context, address string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE wallet_address = $1",
		strings.ToLower(strings.TrimSpace(address)))
	return scanUser(row)
}

// Create persists u and assigns its ID. A unique violation on wallet, username or email maps to domain.ErrUserAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (wallet_address, username, email, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		nullString(u.WalletAddress), nullString(u.Username), nullString(u.Email), string(u.Role), u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if _, ok := db.UniqueViolation(err); ok {
		return domain.ErrUserAlreadyExists
	}
	return err
}

// LinkWallet binds address to a user that has no wallet yet. The update is guarded on the column being
// NULL, so concurrent links cannot overwrite each other. It returns domain.ErrUserAlreadyExists when
// another user owns address, domain.ErrWalletConflict when the user already has a different wallet and
// domain.ErrUserNotFound for an unknown id. Linking the wallet a user already has is a no-op.
func (r *PostgresRepository) LinkWallet(ctx context.Context, userID int64, address string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET wallet_address = $2, updated_at = now() WHERE id = $1 AND wallet_address IS NULL`,
		userID, address)
	if _, ok := db.UniqueViolation(err); ok {
		return domain.ErrUserAlreadyExists
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrUserNotFound
	}
	if u.WalletAddress != address {
		return domain.ErrWalletConflict
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u                      domain.User
		wallet, username, mail sql.NullString
		role                   string
	)
	err := row.Scan(&u.ID, &wallet, &username, &mail, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.WalletAddress = wallet.String
	u.Username = username.String
	u.Email = mail.String
	u.Role = domain.Role(role)
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
