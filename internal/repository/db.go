package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	Driver          string // sqlite | postgres
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB bundles the Ent SQL driver with the pool behind it.
type DB struct {
	Driver  *entsql.Driver
	dialect string
	pool    *pgxpool.Pool // nil for sqlite
}

// Dialect returns the Ent dialect name used to build queries.
func (d *DB) Dialect() string { return d.dialect }

// Open connects to the configured database, wraps it for Ent and applies
// the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", cfg.Driver)

	var (
		db  *DB
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		db, err = openSQLite(ctx, cfg)
	case "postgres":
		db, err = openPostgres(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		Close(db, logger)
		return nil, err
	}

	logger.Info("successfully connected to database", "dialect", db.dialect)
	return db, nil
}

func openSQLite(ctx context.Context, cfg Config) (*DB, error) {
	sqldb, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// One connection keeps :memory: databases alive and serializes writers.
	sqldb.SetMaxOpenConns(1)
	if _, err := sqldb.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return &DB{Driver: entsql.OpenDB(dialect.SQLite, sqldb), dialect: dialect.SQLite}, nil
}

func openPostgres(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "pdf-renamer"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	// Wrap pool as *sql.DB for Ent
	sqldb := stdlib.OpenDBFromPool(pool)
	return &DB{Driver: entsql.OpenDB(dialect.Postgres, sqldb), dialect: dialect.Postgres, pool: pool}, nil
}

// Close closes the database connections gracefully
func Close(db *DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if err := db.Driver.Close(); err != nil {
		logger.Error("failed to close ent driver", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.Driver.DB().PingContext(ctx); err != nil {
		logger.Warn("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
