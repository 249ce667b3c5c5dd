package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"auth-blog/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, NewUserRepository(db).Init(context.Background()))
	require.NoError(t, NewPostRepository(db).Init(context.Background()))
	require.NoError(t, NewSessionRepository(db).Init(context.Background()))
	return db
}

func createTestUser(t *testing.T, db *sql.DB, subject, name string) *domain.User {
	t.Helper()

	user := &domain.User{Provider: "github", Subject: subject, DisplayName: name}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}
