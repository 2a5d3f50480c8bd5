package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo with a unique table name for test isolation
func setupTestRepo(t *testing.T) *sqlite.Repo {
	t.Helper()

	ctx := context.Background()

	// Use a unique table name for each test to avoid conflicts
	tableName := fmt.Sprintf("entries_%s", getRandomString(t))
	tables := drivedav.Tables{Entries: tableName}

	// Connect to in-memory database
	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	// Migrate the table
	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	repo, err := db.GetRepo()
	require.NoError(t, err)

	return repo
}
