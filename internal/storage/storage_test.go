package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekly-planner/backend/internal/planner"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, RunMigrations(db))
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count))
	assert.Equal(t, 1, count)
	assert.True(t, db.Healthy(context.Background()))
}

func testUsers(t *testing.T) []planner.User {
	t.Helper()
	sync, err := planner.NewEvent("sync",
		planner.MustWeekTime(planner.Tuesday, 9, 0), planner.MustWeekTime(planner.Tuesday, 10, 0),
		false, "Room 1", []string{"Host", "A"})
	require.NoError(t, err)
	retreat, err := planner.NewEvent("retreat",
		planner.MustWeekTime(planner.Friday, 18, 0), planner.MustWeekTime(planner.Sunday, 12, 0),
		true, "", []string{"Host"})
	require.NoError(t, err)
	late, err := planner.NewEvent("late",
		planner.MustWeekTime(planner.Monday, 22, 0), planner.MustWeekTime(planner.Monday, 24, 0),
		false, "", []string{"A"})
	require.NoError(t, err)

	host, err := planner.NewUser("Host", retreat, sync)
	require.NoError(t, err)
	a, err := planner.NewUser("A", sync, late)
	require.NoError(t, err)
	empty, err := planner.NewUser("Empty")
	require.NoError(t, err)
	return []planner.User{host, a, empty}
}

func TestPlannerRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewPlannerRepository(openTestDB(t))
	users := testUsers(t)

	require.NoError(t, repo.Save(ctx, users))
	got, err := repo.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got, len(users))
	for i := range users {
		assert.Equal(t, users[i].Name(), got[i].Name())
		want, have := users[i].Events(), got[i].Events()
		require.Len(t, have, len(want))
		for j := range want {
			assert.True(t, want[j].Equal(have[j]), "%s event %d", users[i].Name(), j)
		}
	}
}

func TestPlannerRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewPlannerRepository(openTestDB(t))
	users := testUsers(t)

	require.NoError(t, repo.Save(ctx, users))
	require.NoError(t, repo.Save(ctx, users[2:]))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Empty", got[0].Name())

	var events int
	require.NoError(t, repo.DB().QueryRow("SELECT COUNT(*) FROM event_invitees").Scan(&events))
	assert.Zero(t, events)
}

func TestPlannerRepository_LoadEmpty(t *testing.T) {
	got, err := NewPlannerRepository(openTestDB(t)).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(openTestDB(t))

	_, ok, err := repo.Get(ctx, "host")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "host", "Alice"))
	require.NoError(t, repo.Set(ctx, "host", "Bob"))

	v, ok, err := repo.Get(ctx, "host")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bob", v)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "host", all[0].Key)
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
