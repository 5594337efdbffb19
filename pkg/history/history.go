// Package history keeps a best-effort audit trail of signing actions in a
// BoltDB file.
package history

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// DefaultPath is the history database location in the working directory.
const DefaultPath = ".modsign-history.db"

var eventsBucket = []byte("events")

// Event is one recorded handler run.
type Event struct {
	Time   time.Time `json:"time"`
	Action string    `json:"action"`
	OK     bool      `json:"ok"`
	Detail string    `json:"detail,omitempty"`
}

// Store is a handle to the history database.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultPath
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history database %s", dbPath)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create events bucket")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record appends an event. Keys are nanosecond timestamps so iteration order
// is insertion order.
func (s *Store) Record(e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}
	key := []byte(e.Time.UTC().Format(time.RFC3339Nano))
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(eventsBucket).Put(key, value)
	})
	return errors.Wrap(err, "failed to record event")
}

// List returns all events, oldest first.
func (s *Store) List() ([]Event, error) {
	var events []Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(eventsBucket).ForEach(func(_, v []byte) error {
			var e Event
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			events = append(events, e)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	return events, nil
}
