package repository

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open returns a Bun handle for dsn. postgres:// and postgresql:// DSNs use
// pgx; sqlite:// and file: DSNs use the sqlite shim.
func Open(dsn string) (*bun.DB, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil

	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		name := strings.TrimPrefix(dsn, "sqlite://")
		sqldb, err := sql.Open(sqliteshim.ShimName, name)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		if strings.Contains(name, ":memory:") {
			// every connection would get its own empty database
			sqldb.SetMaxOpenConns(1)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil

	default:
		return nil, fmt.Errorf("unsupported database dsn scheme: %q", redact(dsn))
	}
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "..."
	}
	return "..."
}
