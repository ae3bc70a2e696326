package admin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ukane-philemon/mentorship/internal/db"
)

func TestNewAdminAndCheckPassword(t *testing.T) {
	_, err := NewAdmin("", "secret")
	require.True(t, errors.Is(err, db.ErrorInvalidRequest))

	a, err := NewAdmin("root", "secret")
	require.NoError(t, err)
	require.NotEqual(t, "secret", a.HashedPassword)
	require.NotZero(t, a.CreatedAt)

	id, err := a.CheckPassword("secret")
	require.NoError(t, err)
	require.Equal(t, a.ID.Hex(), id)

	_, err = a.CheckPassword("wrong")
	require.True(t, errors.Is(err, db.ErrorInvalidRequest))
}
