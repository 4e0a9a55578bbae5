package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseClient struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// NewDatabaseClient opens and pings a connection. For sqlite, foreign key
// enforcement is switched on and the pool is limited to one connection.
func NewDatabaseClient(driver, connectionString string) (*DatabaseClient, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	dsn := connectionString
	if driver == DriverSQLite && !strings.Contains(dsn, "foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db, driver: driver, now: time.Now}, nil
}

// Migrate applies the embedded schema for the client's driver.
func (d *DatabaseClient) Migrate(log Logger) error {
	migrator, err := NewMigrator(d.db, d.driver, log)
	if err != nil {
		return err
	}
	return migrator.Run()
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func (d *DatabaseClient) timestamp() time.Time {
	return d.now().UTC().Truncate(time.Microsecond)
}

// insertReturningID runs a single INSERT ... RETURNING <id> inside its own
// transaction. Any failure rolls the transaction back.
func (d *DatabaseClient) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		tx.Rollback()
		return 0, classify(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", classify(err))
	}

	return id, nil
}

func queryRows[T any](ctx context.Context, db *sql.DB, scan func(*sql.Rows) (T, error), query string, args ...interface{}) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
