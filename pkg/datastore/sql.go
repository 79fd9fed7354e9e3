package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// SQLStore is a Store backed by any sqlx-compatible driver. BuildGrid
// targets Postgres (lib/pq) in production and sqlite3 (mattn/go-sqlite3)
// for local/single-node deployments and tests; both speak the same
// schema below since it avoids driver-specific SQL.
type SQLStore struct {
	db *sqlx.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	name TEXT PRIMARY KEY,
	record TEXT NOT NULL,
	stage INTEGER NOT NULL
)`

// NewSQLStore opens driverName ("postgres" or "sqlite3") at dsn and
// ensures the jobs table exists.
func NewSQLStore(driverName, dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s store: %w", driverName, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create jobs table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// NewSQLStoreFromDB wraps an already-open *sqlx.DB, for tests using
// DATA-DOG/go-sqlmock against the "sqlmock" driver.
func NewSQLStoreFromDB(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type jobRow struct {
	Name   string `db:"name"`
	Record string `db:"record"`
	Stage  int32  `db:"stage"`
}

func (s *SQLStore) PutJob(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO jobs (name, record, stage) VALUES (?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET record = excluded.record, stage = excluded.stage`),
		rec.Name, string(data), int32(rec.Stage))
	if err != nil {
		return fmt.Errorf("put job %s: %w", rec.Name, err)
	}
	return nil
}

func (s *SQLStore) GetJob(ctx context.Context, name string) (*Record, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind(`SELECT name, record, stage FROM jobs WHERE name = ?`), name)
	if err == sql.ErrNoRows {
		return nil, bgerrors.NotFound("job not found: " + name)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", name, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(row.Record), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLStore) DeleteJob(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM jobs WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", name, err)
	}
	return nil
}

func (s *SQLStore) ListQueued(ctx context.Context) ([]*Record, error) {
	return s.listWhere(ctx, "WHERE stage = ?", int32(pb.StageQueued))
}

func (s *SQLStore) ListAll(ctx context.Context) ([]*Record, error) {
	return s.listWhere(ctx, "")
}

// listWhere does not guarantee row order beyond what the driver returns by
// default: the SQL backend is meant for durability across restarts, not
// for reconstructing exact FIFO queue order (the in-memory scheduler
// queue only needs to be repopulated, not byte-identical to pre-restart).
func (s *SQLStore) listWhere(ctx context.Context, where string, args ...interface{}) ([]*Record, error) {
	query := "SELECT name, record, stage FROM jobs " + where
	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	recs := make([]*Record, 0, len(rows))
	for _, row := range rows {
		var rec Record
		if err := json.Unmarshal([]byte(row.Record), &rec); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
