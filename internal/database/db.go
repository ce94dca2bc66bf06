package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/fyyur/internal/config"
)

// DSN builds the MySQL data source name for cfg.
func DSN(cfg config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPass
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	// parseTime -> DATETIME scans into time.Time | loc=UTC keeps times consistent
	mc.ParseTime = true
	mc.Loc = time.UTC
	// clientFoundRows makes UPDATE report matched rows, so an edit that
	// changes nothing is not mistaken for a missing record.
	mc.ClientFoundRows = true
	mc.MultiStatements = false
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
