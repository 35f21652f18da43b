package postgres

import (
	"context"
	"database/sql"
	"embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pressly/goose/v3"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

type Postgres struct {
	db       *sql.DB
	settings *settingsRepository
}

var _ interfaces.Repository = &Postgres{}

// New opens dsn with the pgx driver and verifies the connection. Schema
// changes are applied separately with Migrate.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	return &Postgres{
		db:       db,
		settings: newSettingsRepository(db),
	}, nil
}

func (p *Postgres) Settings() interfaces.SettingsRepository {
	return p.settings
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// Migrate applies every pending migration.
func (p *Postgres) Migrate(ctx context.Context) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, p.db, migrationsDir); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	return nil
}

// Rollback reverts the most recent migration.
func (p *Postgres) Rollback(ctx context.Context) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, p.db, migrationsDir); err != nil {
		return goerr.Wrap(err, "failed to roll back migration")
	}
	return nil
}

// Version returns the schema version currently applied.
func (p *Postgres) Version(ctx context.Context) (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, p.db)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read schema version")
	}
	return v, nil
}

func setupGoose() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return goerr.Wrap(err, "failed to set goose dialect")
	}
	return nil
}
