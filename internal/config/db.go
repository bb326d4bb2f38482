package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	zlog "github.com/rs/zerolog/log"
)

const (
	dbMaxOpen     = 20
	dbMaxIdle     = 10
	dbIdleTime    = 5 * time.Minute
	dbMaxLifetime = time.Hour
	dbPingTimeout = 3 * time.Second
)

// NewDB opens the process-wide PostgreSQL handle through the pgx stdlib driver
// and pings it before returning.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty DATABASE_URI")
	}

	pgCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URI: %w", err)
	}
	pgCfg.RuntimeParams["application_name"] = "account-service"

	db := stdlib.OpenDB(*pgCfg)
	db.SetMaxOpenConns(dbMaxOpen)
	db.SetMaxIdleConns(dbMaxIdle)
	db.SetConnMaxIdleTime(dbIdleTime)
	db.SetConnMaxLifetime(dbMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s:%d/%s: %w", pgCfg.Host, pgCfg.Port, pgCfg.Database, err)
	}

	if debug {
		var user, version string
		_ = db.QueryRowContext(ctx, "SELECT current_user, current_setting('server_version')").Scan(&user, &version)
		zlog.Info().
			Str("host", pgCfg.Host).
			Str("db", pgCfg.Database).
			Str("user", user).
			Str("version", version).
			Msg("db connected")
	}

	return db, nil
}
