package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Column describes one column as the database reports it. Type is
// lower-cased by the caller.
type Column struct {
	Type     string
	Nullable bool
}

// ErrSchemaMismatch is returned when a table exists but its columns do not
// match the layout the migrations create.
var ErrSchemaMismatch = errors.New("schema mismatch")

// CheckColumns compares the columns found in table against want. Columns
// present in got but absent from want are ignored so operators may add
// their own.
func CheckColumns(table string, want, got map[string]Column) error {
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		w := want[name]
		g, ok := got[name]
		switch {
		case !ok:
			problems = append(problems, name+": missing")
		case g.Type != w.Type:
			problems = append(problems, fmt.Sprintf("%s: type %s, want %s", name, g.Type, w.Type))
		case g.Nullable != w.Nullable:
			problems = append(problems, fmt.Sprintf("%s: nullable=%t, want %t", name, g.Nullable, w.Nullable))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("table %s: %w: %s", table, ErrSchemaMismatch, strings.Join(problems, "; "))
}
