package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/credoworks/bursar/pkg/logging"
)

func TestEnsureSchemaAppliesEmbeddedFiles(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accounts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := EnsureSchema(db, logging.NewLogger()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
