package pg

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v4/stdlib"                        //nolint:revive
	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx" //nolint:revive
)

const (
	driverName       = "pgx"
	tracedDriverName = "nrpgx"
)

type Config struct {
	User               string
	Host               string
	Password           string
	Port               int
	DbName             string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration

	// Traced opens the pool with the New Relic instrumented pgx driver, so
	// that queries show up as datastore segments.
	Traced bool
}

// DSN returns the connection string for the config
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DbName,
	)
}

// Open gets a DB connection pool using username/password credentials
func Open(c *Config) (*sqlx.DB, error) {
	driver := driverName
	if c.Traced {
		driver = tracedDriverName
	}

	return OpenWithDSN(driver, c.DSN(), c)
}

// OpenWithDSN gets a DB connection pool for the provided driver and DSN. Pool
// limits are taken from c when it's non-nil.
func OpenWithDSN(driver, dsn string, c *Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening db")
	}

	if c != nil {
		if c.MaxOpenConnections > 0 {
			db.SetMaxOpenConns(c.MaxOpenConnections)
		}
		if c.MaxIdleConnections > 0 {
			db.SetMaxIdleConns(c.MaxIdleConnections)
		}
		if c.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(c.ConnMaxLifetime)
		}
	}

	// Check if the connection was successful
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error pinging db")
	}

	return db, nil
}
