package services

import (
	"context"
	"math/rand"
	"testing"

	"habitlink-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHabitFixture(t *testing.T) (*memUserStore, *memHabitStore, *HabitService) {
	t.Helper()
	users := newMemUserStore()
	habits := newMemHabitStore()
	svc := NewHabitService(habits, users, rand.New(rand.NewSource(42)))
	seedUser(t, users, "alice", "alice")
	return users, habits, svc
}

func TestCreateHabit(t *testing.T) {
	ctx := context.Background()
	users, _, svc := newHabitFixture(t)

	habit, err := svc.Create(ctx, "alice", "Meditate", "08:00", "#8e44ad", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", habit.OwnerID)
	assert.Equal(t, 0, habit.Streak)
	assert.Equal(t, "#8e44ad", habit.Color)
	assert.Contains(t, users.mustUser("alice").Habits, habit.ID)
}

func TestCreateHabitPicksPaletteColorWhenUnset(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newHabitFixture(t)

	habit, err := svc.Create(ctx, "alice", "Meditate", "08:00", "", nil)
	require.NoError(t, err)
	assert.Contains(t, habitColors, habit.Color)
}

func TestCreateHabitValidation(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newHabitFixture(t)

	_, err := svc.Create(ctx, "alice", "", "08:00", "", nil)
	assert.Error(t, err)
	_, err = svc.Create(ctx, "alice", "Meditate", "", "", nil)
	assert.Error(t, err)
	_, err = svc.Create(ctx, "ghost", "Meditate", "08:00", "", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEnsureOwnedIsDeterministicUnderSeed(t *testing.T) {
	ctx := context.Background()

	colorFor := func(seed int64) string {
		users := newMemUserStore()
		habits := newMemHabitStore()
		svc := NewHabitService(habits, users, rand.New(rand.NewSource(seed)))
		seedUser(t, users, "alice", "alice")
		habit, created, err := svc.EnsureOwned(ctx, "alice", "Morning Run")
		require.NoError(t, err)
		require.True(t, created)
		return habit.Color
	}

	assert.Equal(t, colorFor(7), colorFor(7), "same seed must pick the same color")
}

func TestEnsureOwnedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	_, habits, svc := newHabitFixture(t)

	first, created, err := svc.EnsureOwned(ctx, "alice", "Morning Run")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.EnsureOwned(ctx, "alice", "Morning Run")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	owned, err := habits.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestCompleteIncrementsStreak(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newHabitFixture(t)

	habit, err := svc.Create(ctx, "alice", "Meditate", "08:00", "", nil)
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		updated, err := svc.Complete(ctx, "alice", habit.ID)
		require.NoError(t, err)
		assert.Equal(t, want, updated.Streak)
	}
}

func TestCompleteForbiddenForNonOwner(t *testing.T) {
	ctx := context.Background()
	users, _, svc := newHabitFixture(t)
	seedUser(t, users, "bob", "bob")

	habit, err := svc.Create(ctx, "alice", "Meditate", "08:00", "", nil)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "bob", habit.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDeleteHabit(t *testing.T) {
	ctx := context.Background()
	users, habits, svc := newHabitFixture(t)

	habit, err := svc.Create(ctx, "alice", "Meditate", "08:00", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", habit.ID))
	_, err = habits.GetByID(ctx, habit.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NotContains(t, users.mustUser("alice").Habits, habit.ID)
}
