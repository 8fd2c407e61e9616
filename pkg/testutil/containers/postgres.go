//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"registro/internal/platform/database"
)

// PostgresContainer is a throwaway Postgres reached through the same pool
// the server opens for the postgres backend.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	Pool      *database.Pool
}

func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("registro_test"),
		postgres.WithUsername("registro"),
		postgres.WithPassword("registro_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := database.New(ctx, database.DefaultConfig(dsn), nil)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("open postgres pool: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, Pool: pool}
}

// DropTable removes a contact table so each test starts from an empty schema.
func (p *PostgresContainer) DropTable(ctx context.Context, table string) error {
	if _, err := p.Pool.DB().ExecContext(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{table}.Sanitize()); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	return nil
}
