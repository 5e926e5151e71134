package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
)

const proposalColumns = "id, title, body, created_by, organization_id, decision_date, status, allowed_voters, created_at"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a proposal repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the proposal for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Proposal, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx, "SELECT "+proposalColumns+" FROM proposals WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// List returns proposals newest first: those of organization orgID, or only unscoped ones when orgID is nil.
func (r *PostgresRepository) List(ctx context.Context, orgID *int64) ([]*domain.Proposal, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if orgID != nil {
		rows, err = r.db.QueryContext(ctx, "SELECT "+proposalColumns+" FROM proposals WHERE organization_id = $1 ORDER BY created_at DESC, id DESC", *orgID)
	} else {
		rows, err = r.db.QueryContext(ctx, "SELECT "+proposalColumns+" FROM proposals WHERE organization_id IS NULL ORDER BY created_at DESC, id DESC")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create persists p and assigns its ID.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Proposal) error {
	if err := p.Validate(); err != nil {
		return err
	}
	voters, err := json.Marshal(p.AllowedVoters)
	if err != nil {
		return err
	}
	createdBy := sql.NullInt64{Int64: p.CreatedBy, Valid: p.CreatedBy != 0}
	var org sql.NullInt64
	if p.OrganizationID != nil {
		org = sql.NullInt64{Int64: *p.OrganizationID, Valid: true}
	}
	var decision sql.NullTime
	if p.DecisionDate != nil {
		decision = sql.NullTime{Time: *p.DecisionDate, Valid: true}
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO proposals (title, body, created_by, organization_id, decision_date, status, allowed_voters, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.Title, p.Body, createdBy, org, decision, string(p.Status), string(voters), p.CreatedAt,
	).Scan(&p.ID)
}

// UpdateStatus sets the lifecycle status. It is a no-op for unknown ids.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	_, err := r.db.ExecContext(ctx, "UPDATE proposals SET status = $2 WHERE id = $1", id, string(status))
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProposal(s scanner) (*domain.Proposal, error) {
	var (
		p         domain.Proposal
		createdBy sql.NullInt64
		org       sql.NullInt64
		decision  sql.NullTime
		status    string
		voters    []byte
	)
	if err := s.Scan(&p.ID, &p.Title, &p.Body, &createdBy, &org, &decision, &status, &voters, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.CreatedBy = createdBy.Int64
	if org.Valid {
		id := org.Int64
		p.OrganizationID = &id
	}
	if decision.Valid {
		d := decision.Time
		p.DecisionDate = &d
	}
	p.Status = domain.Status(status)
	if err := p.AllowedVoters.UnmarshalJSON(voters); err != nil {
		return nil, fmt.Errorf("proposal %d: %w", p.ID, err)
	}
	return &p, nil
}
