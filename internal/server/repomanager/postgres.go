package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	"github.com/dmitrijs2005/gophauth/internal/server/record"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresManager stores records as JSONB rows in the records table.
type PostgresManager struct {
	db      *sql.DB
	backend *record.PostgresBackend
}

func NewPostgresManager(db *sql.DB) *PostgresManager {
	return &PostgresManager{db: db, backend: record.NewPostgresBackend(db)}
}

func (m *PostgresManager) Backend() record.Backend { return m.backend }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the managed connection.
func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}
