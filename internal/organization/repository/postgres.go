package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vincent-24/GlassBallots-sub001/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Org, error) {
	var (
		o      domain.Org
		status string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, status, created_at FROM organizations WHERE id = $1", id,
	).Scan(&o.ID, &o.Name, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.OrgStatus(status)
	return &o, nil
}

// Create persists o and assigns its ID.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) error {
	if err := o.Validate(); err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		"INSERT INTO organizations (name, status, created_at) VALUES ($1, $2, $3) RETURNING id",
		o.Name, string(o.Status), o.CreatedAt,
	).Scan(&o.ID)
}
