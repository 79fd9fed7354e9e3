package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

var bucketJobs = []byte("jobs")

// BoltStore is an embedded, single-file Store, adapted from the teacher
// repo's pkg/storage.BoltStore bucket-per-entity pattern but collapsed to
// the single "jobs" bucket this server needs.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt database under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "buildgrid.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketJobs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) PutJob(_ context.Context, rec *Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.Name), data)
	})
}

func (s *BoltStore) GetJob(_ context.Context, name string) (*Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		data := b.Get([]byte(name))
		if data == nil {
			return bgerrors.NotFound("job not found: " + name)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *BoltStore) DeleteJob(_ context.Context, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		return b.Delete([]byte(name))
	})
}

func (s *BoltStore) ListQueued(ctx context.Context) ([]*Record, error) {
	return s.listFiltered(ctx, true)
}

func (s *BoltStore) ListAll(ctx context.Context) ([]*Record, error) {
	return s.listFiltered(ctx, false)
}

func (s *BoltStore) listFiltered(_ context.Context, queuedOnly bool) ([]*Record, error) {
	var recs []*Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if queuedOnly && rec.Stage != pb.StageQueued {
				return nil
			}
			recs = append(recs, &rec)
			return nil
		})
	})
	return recs, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
