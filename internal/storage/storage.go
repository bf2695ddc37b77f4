package storage

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/hailam/zobristgen/internal/zobrist"
)

// Key prefixes
const (
	prefixMeta  = "meta/"
	prefixTable = "table/"
)

// ErrNotFound is returned when no table is stored under a name.
var ErrNotFound = errors.New("storage: table not found")

// Record describes a stored table.
type Record struct {
	Name        string    `json:"name"`
	Seed        uint64    `json:"seed"`
	Seeded      bool      `json:"seeded"`
	Fingerprint uint64    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the registry in the default database directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) a registry in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: open %s", dir)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores t under rec.Name, replacing any previous table of that name.
// The fingerprint is recomputed from t and CreatedAt is set if zero.
func (s *Storage) Save(rec *Record, t *zobrist.Table) error {
	if rec.Name == "" {
		return errors.New("storage: empty table name")
	}
	rec.Fingerprint = t.Fingerprint()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	meta, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixMeta+rec.Name), meta); err != nil {
			return err
		}
		return txn.Set([]byte(prefixTable+rec.Name), data)
	})
	return errors.Wrapf(err, "storage: save %q", rec.Name)
}

// Load returns the record and table stored under name.
func (s *Storage) Load(name string) (*Record, *zobrist.Table, error) {
	rec := &Record{}
	t := new(zobrist.Table)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixMeta + name))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		}); err != nil {
			return err
		}

		item, err = txn.Get([]byte(prefixTable + name))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(t.UnmarshalBinary)
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "storage: load %q", name)
	}

	if fp := t.Fingerprint(); fp != rec.Fingerprint {
		return nil, nil, errors.Errorf("storage: table %q is corrupt (fingerprint %016x, recorded %016x)", name, fp, rec.Fingerprint)
	}
	return rec, t, nil
}

// List returns all records sorted by name.
func (s *Storage) List() ([]Record, error) {
	var records []Record

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixMeta)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "storage: list")
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// Delete removes the table stored under name.
func (s *Storage) Delete(name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(prefixMeta + name)); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		if err := txn.Delete([]byte(prefixMeta + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(prefixTable + name))
	})
	return errors.Wrapf(err, "storage: delete %q", name)
}
