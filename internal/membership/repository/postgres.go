package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUserAndOrg returns the membership for the user in the org regardless of status, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndOrg(ctx context.Context, userID, orgID int64) (*domain.Membership, error) {
	return r.get(ctx, "SELECT id, user_id, org_id, role, status, created_at FROM memberships WHERE user_id = $1 AND org_id = $2", userID, orgID)
}

// GetApprovedMembership returns the approved membership for the user in the org, or nil if there is none.
func (r *PostgresRepository) GetApprovedMembership(ctx context.Context, userID, orgID int64) (*domain.Membership, error) {
	return r.get(ctx, "SELECT id, user_id, org_id, role, status, created_at FROM memberships WHERE user_id = $1 AND org_id = $2 AND status = 'approved'", userID, orgID)
}

// Create persists m and assigns its ID.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	if m.Status == "" {
		m.Status = domain.StatusPending
	}
	if m.Role == "" {
		m.Role = domain.RoleMember
	}
	return r.db.QueryRowContext(ctx,
		"INSERT INTO memberships (user_id, org_id, role, status, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		m.UserID, m.OrgID, string(m.Role), string(m.Status), m.CreatedAt,
	).Scan(&m.ID)
}

func (r *PostgresRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Membership, error) {
	var (
		m            domain.Membership
		role, status string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.UserID, &m.OrgID, &role, &status, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Role = domain.Role(role)
	m.Status = domain.Status(status)
	return &m, nil
}
