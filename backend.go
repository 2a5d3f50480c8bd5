package drivedav

import (
	"context"
	"io"
)

// Backend defines the tree-shaped storage a Gateway operates on.
// Implementations can be a local directory, a flat key-value map that
// synthesizes collections, or any other store.
//
// All paths are logical paths as returned by ResolvePath; the root is "".
// All methods accept a context for cancellation and timeout control.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Stat describes the node at a path.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - p: The logical path to look up
	//
	// Returns:
	//   - Info: Kind, size and modification time of the node
	//   - error: ErrNotFound if nothing exists at p, or other storage errors
	//
	// Stat of the root always succeeds with KindCollection.
	Stat(ctx context.Context, p string) (Info, error)

	// Read opens a file for reading.
	//
	// Returns:
	//   - io.ReadSeekCloser: Reader for file content with seek capability
	//   - error: ErrNotFound if p is absent or is a collection
	//
	// The caller is responsible for closing the returned ReadSeekCloser.
	Read(ctx context.Context, p string) (io.ReadSeekCloser, error)

	// Write stores content as a file at p, replacing any existing file.
	// Missing parent collections are created.
	//
	// Returns:
	//   - int64: Number of bytes written
	//   - error: ErrConflict if p is the root, a collection, or has a file
	//     ancestor; or other storage errors
	Write(ctx context.Context, p string, content io.Reader) (int64, error)

	// Remove deletes the node at p. With recursive set, a collection is
	// removed together with every descendant.
	//
	// Returns:
	//   - int: Number of nodes confirmed removed
	//   - error: ErrNotFound if p is absent, ErrConflict if p is a non-empty
	//     collection and recursive is false
	//
	// Recursive removal is best-effort: a failing descendant does not stop
	// the others, and the count reflects only what was removed.
	Remove(ctx context.Context, p string, recursive bool) (int, error)

	// List returns the names of the direct children of a collection.
	// The order is unspecified.
	//
	// Returns:
	//   - []string: Child names (single segments, not paths)
	//   - error: ErrNotFound if p is absent, ErrConflict if p is a file
	List(ctx context.Context, p string) ([]string, error)

	// CreateCollection creates an empty collection at p.
	//
	// Returns:
	//   - error: ErrConflict if p exists, or if its parent is missing or
	//     is not a collection
	CreateCollection(ctx context.Context, p string) error
}
