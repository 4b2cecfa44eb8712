package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/tamasbrandstadter/fio-api/internal/testdb"
)

func TestMigrate(t *testing.T) {
	dbc, mock := testdb.NewMock()
	defer dbc.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS fio_cursors").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, Migrate(dbc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN(t *testing.T) {
	cfg := Config{User: "fio", Pass: "secret", Host: "postgres", Name: "fio", Port: 5432}

	assert.Equal(t, "host=postgres user=fio password=secret dbname=fio port=5432 sslmode=disable", cfg.dsn())
}
