package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	idleTime    time.Duration
	lifetime    time.Duration
	pingTimeout time.Duration
}

var accountPool = poolSettings{
	maxOpen:     20,
	maxIdle:     10,
	idleTime:    5 * time.Minute,
	lifetime:    time.Hour,
	pingTimeout: 3 * time.Second,
}

func (p poolSettings) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxIdleTime(p.idleTime)
	db.SetConnMaxLifetime(p.lifetime)
}

// NewDB parses dsn with pgx, opens a database/sql handle over it and pings
// once. With debug set the connected server is logged.
func NewDB(dsn string, debug bool, lg zerolog.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_ADDR is empty")
	}
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DB_ADDR: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)
	accountPool.apply(db)

	ctx, cancel := context.WithTimeout(context.Background(), accountPool.pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s:%d/%s: %w", connCfg.Host, connCfg.Port, connCfg.Database, err)
	}

	if debug {
		var version string
		_ = db.QueryRowContext(ctx, "SHOW server_version").Scan(&version)
		lg.Info().
			Str("host", connCfg.Host).
			Uint16("port", connCfg.Port).
			Str("db", connCfg.Database).
			Str("user", connCfg.User).
			Str("version", version).
			Msg("db connected")
	}
	return db, nil
}
