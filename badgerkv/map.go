package badgerkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/keyvalue"
)

const (
	metaPrefix    = "m:"
	contentPrefix = "c:"
)

// Config selects where the database lives.
type Config struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string `mapstructure:"dir"`
	// InMemory keeps everything in process memory.
	InMemory bool `mapstructure:"in_memory"`
}

// record is the persisted form of keyvalue.Record.
type record struct {
	Kind    string    `json:"kind"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Map implements keyvalue.Map on top of a badger.DB.
type Map struct {
	db *badger.DB
}

var _ keyvalue.Map = (*Map)(nil)

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*Map, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("open badger: %w: dir is required", drivedav.ErrInvalidInput)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Dir, err)
	}

	return &Map{db: db}, nil
}

// Close flushes and closes the database.
func (m *Map) Close() error {
	return m.db.Close()
}

func metaKey(key string) []byte    { return []byte(metaPrefix + key) }
func contentKey(key string) []byte { return []byte(contentPrefix + key) }

func decodeRecord(key string, val []byte) (keyvalue.Record, error) {
	var r record
	if err := json.Unmarshal(val, &r); err != nil {
		return keyvalue.Record{}, fmt.Errorf("decode record %q: %w", key, err)
	}
	kind, err := drivedav.ParseKind(r.Kind)
	if err != nil {
		return keyvalue.Record{}, fmt.Errorf("decode record %q: %w", key, err)
	}
	return keyvalue.Record{Key: key, Kind: kind, Size: r.Size, ModTime: r.ModTime}, nil
}

func (m *Map) Get(ctx context.Context, key string) (keyvalue.Record, error) {
	if err := ctx.Err(); err != nil {
		return keyvalue.Record{}, fmt.Errorf("get: %w", err)
	}

	var rec keyvalue.Record
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			rec, err = decodeRecord(key, val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return keyvalue.Record{}, fmt.Errorf("get %q: %w", key, drivedav.ErrNotFound)
	}
	if err != nil {
		return keyvalue.Record{}, fmt.Errorf("get %q: %w", key, err)
	}
	return rec, nil
}

func (m *Map) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	var data []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contentKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("load %q: %w", key, drivedav.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (m *Map) Put(ctx context.Context, rec keyvalue.Record, content []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("put: %w", err)
	}

	val, err := json.Marshal(record{Kind: rec.Kind.String(), Size: rec.Size, ModTime: rec.ModTime.UTC()})
	if err != nil {
		return fmt.Errorf("encode record %q: %w", rec.Key, err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(metaKey(rec.Key), val); err != nil {
			return err
		}
		if rec.Kind == drivedav.KindFile {
			if content == nil {
				content = []byte{}
			}
			return txn.Set(contentKey(rec.Key), content)
		}
		err := txn.Delete(contentKey(rec.Key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", rec.Key, err)
	}
	return nil
}

func (m *Map) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	err := m.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(key)); err != nil {
			return err
		}
		if err := txn.Delete(metaKey(key)); err != nil {
			return err
		}
		return txn.Delete(contentKey(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete %q: %w", key, drivedav.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (m *Map) Scan(ctx context.Context, prefix string) ([]keyvalue.Record, error) {
	var recs []keyvalue.Record
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = metaKey(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if n%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			n++

			item := it.Item()
			key := string(item.Key()[len(metaPrefix):])
			err := item.Value(func(val []byte) error {
				rec, err := decodeRecord(key, val)
				if err != nil {
					return err
				}
				recs = append(recs, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}
	return recs, nil
}
