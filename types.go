package drivedav

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Kind tells files and collections apart.
type Kind int

const (
	KindFile Kind = iota
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindCollection:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "file":
		return KindFile, nil
	case "collection":
		return KindCollection, nil
	default:
		return 0, fmt.Errorf("parse kind %q: %w", s, ErrInvalidInput)
	}
}

// Info describes a single node of the tree.
type Info struct {
	Path    string
	Kind    Kind
	Size    int64
	ModTime time.Time
}

func (i Info) IsCollection() bool {
	return i.Kind == KindCollection
}

// Depth is the traversal depth requested by PROPFIND and COPY.
type Depth int

const (
	DepthZero Depth = iota
	DepthOne
	DepthInfinity
)

func (d Depth) String() string {
	switch d {
	case DepthZero:
		return "0"
	case DepthOne:
		return "1"
	default:
		return "infinity"
	}
}

// ParseDepth parses a Depth header value. An empty value yields def.
func ParseDepth(s string, def Depth) (Depth, error) {
	switch s {
	case "":
		return def, nil
	case "0":
		return DepthZero, nil
	case "1":
		return DepthOne, nil
	case "infinity", "Infinity":
		return DepthInfinity, nil
	default:
		return def, fmt.Errorf("parse depth %q: %w", s, ErrBadRequest)
	}
}

// ParseOverwrite reports whether an Overwrite header allows replacing an
// existing destination. Only the literal "F" disables it.
func ParseOverwrite(s string) bool {
	return s != "F"
}

// Tables holds configurable table names for the SQL entry stores.
// This allows several trees to share one database.
type Tables struct {
	Entries string `mapstructure:"entries"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Entries == "" {
		return errors.New("validate tables: entries table name cannot be empty")
	}

	if !IsValidTableName(t.Entries) {
		return fmt.Errorf("validate tables: invalid entries table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Entries)
	}

	return nil
}
