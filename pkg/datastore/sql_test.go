package datastore

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewSQLStoreFromDB(sqlxDB), mock
}

func TestSQLStore_PutJob(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO jobs").
		WithArgs("job-1", sqlmock.AnyArg(), int32(pb.StageQueued)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.PutJob(context.Background(), &Record{Name: "job-1", Stage: pb.StageQueued})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetJobNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"name", "record", "stage"})
	mock.ExpectQuery("SELECT name, record, stage FROM jobs WHERE name = ?").
		WithArgs("missing").
		WillReturnRows(rows)

	_, err := store.GetJob(context.Background(), "missing")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
