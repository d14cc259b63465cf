package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"aprovame/internal/assignor/models"
	id "aprovame/pkg/domain"
	"aprovame/pkg/platform/sentinel"
)

const (
	documentIndex = "assignors_document_live_uniq"
	emailIndex    = "assignors_email_live_uniq"
)

// PostgresStore persists assignors in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed assignor store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new assignor. Partial unique indexes enforce uniqueness among live rows.
func (s *PostgresStore) Create(ctx context.Context, a *models.Assignor) error {
	if a == nil {
		return fmt.Errorf("assignor is required")
	}
	query := `
		INSERT INTO assignors (id, document, email, phone, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID),
		a.Document,
		a.Email,
		a.Phone,
		a.Name,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return uerr
		}
		return fmt.Errorf("create assignor: %w", err)
	}
	return nil
}

// FindByID retrieves a live assignor.
func (s *PostgresStore) FindByID(ctx context.Context, assignorID id.AssignorID) (*models.Assignor, error) {
	query := `
		SELECT id, document, email, phone, name, created_at, updated_at, deleted_at
		FROM assignors
		WHERE id = $1 AND deleted_at IS NULL
	`
	a, err := scanAssignor(s.db.QueryRowContext(ctx, query, uuid.UUID(assignorID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find assignor by id: %w", err)
	}
	return a, nil
}

// List returns live assignors ordered by name.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Assignor, error) {
	query := `
		SELECT id, document, email, phone, name, created_at, updated_at, deleted_at
		FROM assignors
		WHERE deleted_at IS NULL
		ORDER BY name ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assignors: %w", err)
	}
	defer rows.Close()

	var out []*models.Assignor
	for rows.Next() {
		a, err := scanAssignor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignor: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignors: %w", err)
	}
	return out, nil
}

// Update overwrites the mutable fields of a live assignor.
func (s *PostgresStore) Update(ctx context.Context, a *models.Assignor) error {
	if a == nil {
		return fmt.Errorf("assignor is required")
	}
	query := `
		UPDATE assignors
		SET document = $2, email = $3, phone = $4, name = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID),
		a.Document,
		a.Email,
		a.Phone,
		a.Name,
		a.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return uerr
		}
		return fmt.Errorf("update assignor: %w", err)
	}
	return requireOneRow(res, "update assignor")
}

// SoftDelete stamps deleted_at on a live assignor.
func (s *PostgresStore) SoftDelete(ctx context.Context, assignorID id.AssignorID, at time.Time) error {
	query := `
		UPDATE assignors
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(assignorID), at)
	if err != nil {
		return fmt.Errorf("soft delete assignor: %w", err)
	}
	return requireOneRow(res, "soft delete assignor")
}

// ExistingIDs returns the subset of ids that belong to live assignors in a single round trip.
func (s *PostgresStore) ExistingIDs(ctx context.Context, ids []id.AssignorID) (map[id.AssignorID]struct{}, error) {
	found := make(map[id.AssignorID]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	raw := make([]string, len(ids))
	for i, assignorID := range ids {
		raw[i] = assignorID.String()
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM assignors WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`, raw)
	if err != nil {
		return nil, fmt.Errorf("query existing assignors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u uuid.UUID
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan assignor id: %w", err)
		}
		found[id.AssignorID(u)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignor ids: %w", err)
	}
	return found, nil
}

type assignorRow interface {
	Scan(dest ...any) error
}

func scanAssignor(row assignorRow) (*models.Assignor, error) {
	var a models.Assignor
	var assignorID uuid.UUID
	var deletedAt sql.NullTime
	if err := row.Scan(&assignorID, &a.Document, &a.Email, &a.Phone, &a.Name,
		&a.CreatedAt, &a.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	a.ID = id.AssignorID(assignorID)
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return &a, nil
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

// uniqueViolation maps a unique-index violation to the matching model error, or nil.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case documentIndex:
		return models.ErrDocumentTaken
	case emailIndex:
		return models.ErrEmailTaken
	default:
		return fmt.Errorf("assignor must be unique: %w", sentinel.ErrAlreadyUsed)
	}
}
