package cursor

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/tamasbrandstadter/fio-api/internal/testdb"
)

const (
	selectQuery = "SELECT last_id, last_date FROM fio_cursors WHERE key=\\$1;"
	upsertQuery = "INSERT INTO fio_cursors\\(key, last_id, last_date, modified_at\\) VALUES\\(\\$1,\\$2,\\$3,\\$4\\) ON CONFLICT"
)

func TestLoad(t *testing.T) {
	db, mock := testdb.NewMock()
	defer db.Close()

	rows := testdb.CursorRows().AddRow("10000000002", testdb.TestTime)
	mock.ExpectPrepare(selectQuery).ExpectQuery().WithArgs("main").WillReturnRows(rows)

	c, err := Load(db, "main")

	assert.NoError(t, err)
	assert.Equal(t, Cursor{ID: "10000000002", Date: testdb.TestTime}, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadNotFound(t *testing.T) {
	db, mock := testdb.NewMock()
	defer db.Close()

	mock.ExpectPrepare(selectQuery).ExpectQuery().WithArgs("main").WillReturnError(sql.ErrNoRows)

	c, err := Load(db, "main")

	assert.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestLoadError(t *testing.T) {
	db, mock := testdb.NewMock()
	defer db.Close()

	mock.ExpectPrepare(selectQuery).ExpectQuery().WithArgs("main").WillReturnError(sql.ErrConnDone)

	_, err := Load(db, "main")

	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	db, mock := testdb.NewMock()
	defer db.Close()

	mock.ExpectPrepare(upsertQuery).ExpectExec().
		WithArgs("main", "10000000002", testdb.TestTime, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := Save(db, "main", Cursor{ID: "10000000002", Date: testdb.TestTime})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWithoutDate(t *testing.T) {
	db, mock := testdb.NewMock()
	defer db.Close()

	mock.ExpectPrepare(upsertQuery).ExpectExec().
		WithArgs("main", "308", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := Save(db, "main", Cursor{ID: "308"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveError(t *testing.T) {
	db, mock := testdb.NewMock()
	defer db.Close()

	mock.ExpectPrepare(upsertQuery).ExpectExec().WillReturnError(sql.ErrTxDone)

	err := Save(db, "main", Cursor{ID: "308"})

	assert.Error(t, err)
}
