package keyvalue

import (
	"context"
	"time"

	"github.com/sagarc03/drivedav"
)

// Record is the metadata stored for one key.
type Record struct {
	Key     string
	Kind    drivedav.Kind
	Size    int64
	ModTime time.Time
}

// Map is a flat store of records keyed by logical path.
//
// All methods accept a context for cancellation and timeout control.
// Implementations must be safe for concurrent use.
type Map interface {
	// Get returns the record for key, or drivedav.ErrNotFound.
	Get(ctx context.Context, key string) (Record, error)

	// Load returns the content stored for key, or drivedav.ErrNotFound.
	// Collections have no content.
	Load(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the record and content for rec.Key.
	// content is nil for collections.
	Put(ctx context.Context, rec Record, content []byte) error

	// Delete removes key and its content, or returns drivedav.ErrNotFound.
	Delete(ctx context.Context, key string) error

	// Scan returns every record whose key starts with prefix, ordered by key.
	// An empty prefix scans the whole map.
	Scan(ctx context.Context, prefix string) ([]Record, error)
}
