package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects, pings and migrates. sqlite gets a single connection so that
// ":memory:" databases are shared across calls.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	op := "db.Open"

	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", op, driver)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", op, err)
	}

	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxLifetime(2 * time.Hour)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}
	if err := RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: migrate: %w", op, err)
	}
	return conn, nil
}
