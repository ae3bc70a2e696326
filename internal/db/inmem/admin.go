package inmem

import (
	"context"
	"fmt"

	"github.com/ukane-philemon/mentorship/internal/admin"
)

// AdminRepository implements admin.Repository.
type AdminRepository struct {
	db *DB
}

var _ admin.Repository = (*AdminRepository)(nil)

// NewAdminRepository creates an admin repository backed by d.
func NewAdminRepository(d *DB) *AdminRepository {
	return &AdminRepository{db: d}
}

func (repo *AdminRepository) CreateAccount(ctx context.Context, username, password string) (string, error) {
	a, err := admin.NewAdmin(username, password)
	if err != nil {
		return "", err
	}

	defer repo.db.lockWrite(ctx)()

	for _, existing := range repo.db.admins {
		if existing.Username == username {
			return "", fmt.Errorf("%w: please try another username", admin.ErrAccountExists)
		}
	}

	repo.db.admins = append(repo.db.admins, a)
	return a.ID.Hex(), nil
}

func (repo *AdminRepository) LoginAccount(_ context.Context, username, password string) (string, error) {
	repo.db.mu.Lock()
	var found *admin.Admin
	for _, a := range repo.db.admins {
		if a.Username == username {
			c := *a
			found = &c
			break
		}
	}
	repo.db.mu.Unlock()

	if found == nil {
		// Same answer as a wrong password.
		return (&admin.Admin{}).CheckPassword(password)
	}
	return found.CheckPassword(password)
}
