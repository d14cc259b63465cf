//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"aprovame/internal/platform/database"
	"aprovame/migrations"
	id "aprovame/pkg/domain"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container with migrations applied.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("aprovame_test"),
		postgres.WithUsername("aprovame"),
		postgres.WithPassword("aprovame_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := database.Migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	// No t.Cleanup: the container is owned by the shared Manager and Ryuk
	// removes it when the test process exits.
	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables clears all data from the specified tables.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateAll clears payables and assignors.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	return p.TruncateTables(ctx, "payables", "assignors")
}

// Exec runs a SQL statement and returns the result.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// QueryRow runs a SQL query expected to return a single row.
func (p *PostgresContainer) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.DB.QueryRowContext(ctx, query, args...)
}

// CreateTestAssignor inserts a live assignor with a unique email and returns its ID.
// document must be a valid CPF or CNPJ in digits-only form.
func (p *PostgresContainer) CreateTestAssignor(ctx context.Context, t testing.TB, document string) id.AssignorID {
	t.Helper()
	assignorID := id.NewAssignorID()
	_, err := p.Exec(ctx, `
		INSERT INTO assignors (id, document, email, phone, name, created_at, updated_at)
		VALUES ($1, $2, $3, '11999990000', 'Test Assignor', NOW(), NOW())
	`, uuid.UUID(assignorID), document, "assignor-"+uuid.NewString()+"@example.com")
	if err != nil {
		t.Fatalf("CreateTestAssignor: %v", err)
	}
	return assignorID
}

// CountPayables returns the number of live payables for an assignor.
func (p *PostgresContainer) CountPayables(ctx context.Context, t testing.TB, assignorID id.AssignorID) int {
	t.Helper()
	var n int
	err := p.QueryRow(ctx,
		`SELECT COUNT(*) FROM payables WHERE assignor_id = $1 AND deleted_at IS NULL`,
		uuid.UUID(assignorID)).Scan(&n)
	if err != nil {
		t.Fatalf("CountPayables: %v", err)
	}
	return n
}
