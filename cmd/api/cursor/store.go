package cursor

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type record struct {
	ID   sql.NullString `db:"last_id"`
	Date sql.NullTime   `db:"last_date"`
}

// Load reads the cursor stored under key. A key never saved yields a zero
// cursor and no error.
func Load(dbc *sqlx.DB, key string) (Cursor, error) {
	pStmt, err := dbc.Preparex(selectByKey)
	if err != nil {
		return Cursor{}, errors.Wrap(err, "prepare select cursor query")
	}

	defer func() {
		if err := pStmt.Close(); err != nil {
			log.WithError(errors.Wrap(err, "close psql statement")).Info("load cursor")
		}
	}()

	var r record
	if err := pStmt.QueryRowx(key).StructScan(&r); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return Cursor{}, nil
		}
		return Cursor{}, errors.Wrap(err, "select cursor row")
	}

	c := Cursor{ID: r.ID.String}
	if r.Date.Valid {
		c.Date = r.Date.Time.UTC()
	}

	return c, nil
}

func Save(dbc *sqlx.DB, key string, c Cursor) error {
	var date interface{}
	if !c.Date.IsZero() {
		date = c.Date
	}

	pStmt, err := dbc.Preparex(upsert)
	if err != nil {
		return errors.Wrap(err, "prepare upsert cursor query")
	}

	defer func() {
		if err := pStmt.Close(); err != nil {
			log.WithError(errors.Wrap(err, "close psql statement")).Info("save cursor")
		}
	}()

	if _, err = pStmt.Exec(key, c.ID, date, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "upsert cursor row")
	}

	log.WithFields(log.Fields{"key": key, "id": c.ID}).Debug("saved cursor")
	return nil
}
