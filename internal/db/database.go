package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const schema = `CREATE TABLE IF NOT EXISTS fio_cursors (
	key         TEXT PRIMARY KEY,
	last_id     TEXT,
	last_date   DATE,
	modified_at TIMESTAMPTZ NOT NULL
);`

type Config struct {
	User string
	Pass string
	Host string
	Name string
	Port int
}

func (cfg Config) dsn() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.Host, cfg.User, cfg.Pass, cfg.Name, cfg.Port)
}

func NewConnection(cfg Config) (*sqlx.DB, error) {
	log.Info("connecting to database...")
	db, err := sqlx.Connect("postgres", cfg.dsn())
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}

	log.Info("verifying connection...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}

	log.Info("verified postgres connection")
	return db, nil
}

// Migrate creates the cursor table when it does not exist yet.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "create fio_cursors table")
	}
	return nil
}
