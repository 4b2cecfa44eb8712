package testdb

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

var TestTime = time.Date(2016, 8, 30, 0, 0, 0, 0, time.UTC)

// NewMock opens a sqlx handle backed by sqlmock. Statements are matched as
// regular expressions, so callers escape the queries they expect.
func NewMock() (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	return sqlx.NewDb(db, "sqlmock"), mock
}

func CursorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"last_id", "last_date"})
}
