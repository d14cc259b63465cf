package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"aprovame/internal/payable/models"
	id "aprovame/pkg/domain"
	"aprovame/pkg/platform/sentinel"
)

// PostgresStore persists payables in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Payable) error {
	if p == nil {
		return fmt.Errorf("payable is required")
	}
	query := `
		INSERT INTO payables (id, value, emission_date, assignor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID),
		p.Value.StringFixed(2),
		p.EmissionDate,
		uuid.UUID(p.AssignorID),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "create payable")
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, payableID id.PayableID) (*models.Payable, error) {
	query := `
		SELECT id, value, emission_date, assignor_id, created_at, updated_at, deleted_at
		FROM payables
		WHERE id = $1 AND deleted_at IS NULL
	`
	p, err := scanPayable(s.db.QueryRowContext(ctx, query, uuid.UUID(payableID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find payable by id: %w", err)
	}
	return p, nil
}

// ListByAssignor returns live payables of an assignor, newest first.
func (s *PostgresStore) ListByAssignor(ctx context.Context, assignorID id.AssignorID) ([]*models.Payable, error) {
	query := `
		SELECT id, value, emission_date, assignor_id, created_at, updated_at, deleted_at
		FROM payables
		WHERE assignor_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(assignorID))
	if err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Payable, 0)
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payable: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payables: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Payable) error {
	if p == nil {
		return fmt.Errorf("payable is required")
	}
	query := `
		UPDATE payables
		SET value = $2, emission_date = $3, assignor_id = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID),
		p.Value.StringFixed(2),
		p.EmissionDate,
		uuid.UUID(p.AssignorID),
		p.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "update payable")
	}
	return requireOneRow(res, "update payable")
}

func (s *PostgresStore) SoftDelete(ctx context.Context, payableID id.PayableID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE payables
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, uuid.UUID(payableID), at)
	if err != nil {
		return fmt.Errorf("soft delete payable: %w", err)
	}
	return requireOneRow(res, "soft delete payable")
}

type payableRow interface {
	Scan(dest ...any) error
}

func scanPayable(row payableRow) (*models.Payable, error) {
	var p models.Payable
	var payableID, assignorID uuid.UUID
	var deletedAt sql.NullTime
	if err := row.Scan(&payableID, &p.Value, &p.EmissionDate, &assignorID,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	p.ID = id.PayableID(payableID)
	p.AssignorID = id.AssignorID(assignorID)
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	return &p, nil
}

func requireOneRow(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func mapWriteErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return models.ErrAssignorMissing
		case "23505":
			return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
