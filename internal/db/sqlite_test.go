package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-stream/subreview/internal/auth"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestEnsureAdminOnce(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.EnsureAdmin("admin", "pw"))
	require.NoError(t, d.EnsureAdmin("admin2", "pw"))

	u, err := d.GetUserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.True(t, auth.CheckPassword("pw", u.Password))

	_, err = d.GetUserByUsername("admin2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateAndGetUser(t *testing.T) {
	d := openTestDB(t)

	id, err := d.CreateUser("rev", "secret", RoleReviewer)
	require.NoError(t, err)

	u, err := d.GetUserByID(id)
	require.NoError(t, err)
	assert.Equal(t, "rev", u.Username)
	assert.Equal(t, RoleReviewer, u.Role)

	_, err = d.CreateUser("rev", "again", RoleReviewer)
	assert.Error(t, err)
}
