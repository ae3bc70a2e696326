package admin

import (
	"context"
	"fmt"

	"github.com/ukane-philemon/mentorship/internal/db"
)

// ErrAccountExists is returned by CreateAccount when the username is taken.
var ErrAccountExists = fmt.Errorf("%w: admin account exists", db.ErrorInvalidRequest)

type Repository interface {
	// CreateAccount creates a new admin and returns their id. Returns an error
	// wrapping ErrAccountExists if username is taken.
	CreateAccount(ctx context.Context, username, password string) (string, error)
	// LoginAccount authenticates an admin and returns their id.
	LoginAccount(ctx context.Context, username, password string) (string, error)
}
