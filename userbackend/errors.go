package userbackend

import (
	"fmt"

	"github.com/sagarc03/drivedav"
)

// ErrUserNotFound is returned when the user name does not exist in the store.
var ErrUserNotFound = fmt.Errorf("user %w", drivedav.ErrNotFound)
