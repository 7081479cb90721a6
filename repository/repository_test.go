package repository

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := Open("sqlite://file::memory:?cache=private")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

func seedUser(t *testing.T, db *bun.DB, user *identity.User) *identity.User {
	t.Helper()
	out, err := NewUsers(db).Create(context.Background(), user)
	require.NoError(t, err)
	return out
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
