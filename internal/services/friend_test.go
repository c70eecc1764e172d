package services

import (
	"context"
	"testing"
	"time"

	"habitlink-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *memUserStore, id, username string) {
	t.Helper()
	err := store.Create(context.Background(), &models.User{
		ID:               id,
		Username:         username,
		Habits:           []string{},
		Friends:          []string{},
		IncomingRequests: []string{},
		OutgoingRequests: []string{},
		CreatedAt:        time.Now(),
	})
	require.NoError(t, err)
}

// assertMirrors checks the request-mirror and friendship-symmetry
// invariants for a pair of users.
func assertMirrors(t *testing.T, store *memUserStore, aID, bID string) {
	t.Helper()
	a, b := store.mustUser(aID), store.mustUser(bID)

	assert.Equal(t, contains(a.Friends, bID), contains(b.Friends, aID),
		"friendship must be symmetric")
	assert.Equal(t, contains(a.OutgoingRequests, bID), contains(b.IncomingRequests, aID),
		"outgoing on %s must mirror incoming on %s", aID, bID)
	assert.Equal(t, contains(b.OutgoingRequests, aID), contains(a.IncomingRequests, bID),
		"outgoing on %s must mirror incoming on %s", bID, aID)
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	require.NoError(t, svc.SendRequest(ctx, "alice", "bob"))

	alice, bob := store.mustUser("alice"), store.mustUser("bob")
	assert.Contains(t, alice.OutgoingRequests, "bob")
	assert.Contains(t, bob.IncomingRequests, "alice")
	assert.Empty(t, alice.Friends)
	assert.Empty(t, bob.Friends)
	assertMirrors(t, store, "alice", "bob")
}

func TestSendRequestUnknownUser(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")

	err := svc.SendRequest(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = svc.SendRequest(ctx, "ghost", "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSendRequestDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	require.NoError(t, svc.SendRequest(ctx, "alice", "bob"))
	err := svc.SendRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, models.ErrDuplicateRequest)

	// Only one mirror entry per side regardless of retries.
	alice, bob := store.mustUser("alice"), store.mustUser("bob")
	assert.Len(t, alice.OutgoingRequests, 1)
	assert.Len(t, bob.IncomingRequests, 1)
}

func TestSendRequestHalfWrittenMirrorIsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	// Simulate a crash after the recipient write only: bob has the
	// incoming entry but alice lost her outgoing one.
	bob := store.mustUser("bob")
	bob.IncomingRequests = []string{"alice"}
	require.NoError(t, store.Save(ctx, bob))

	err := svc.SendRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, models.ErrDuplicateRequest)
}

func TestSendRequestWhenAlreadyFriends(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	require.NoError(t, svc.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	err := svc.SendRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, models.ErrAlreadyFriends)
}

func TestSendRequestToSelf(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")

	err := svc.SendRequest(ctx, "alice", "alice")
	assert.Error(t, err)

	alice := store.mustUser("alice")
	assert.Empty(t, alice.OutgoingRequests)
	assert.Empty(t, alice.IncomingRequests)
}

func TestAcceptRequest(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	require.NoError(t, svc.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))

	alice, bob := store.mustUser("alice"), store.mustUser("bob")
	assert.Equal(t, []string{"bob"}, alice.Friends)
	assert.Equal(t, []string{"alice"}, bob.Friends)
	assert.Empty(t, alice.OutgoingRequests)
	assert.Empty(t, bob.IncomingRequests)
	assertMirrors(t, store, "alice", "bob")
}

func TestAcceptRequestWithoutPending(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	err := svc.AcceptRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, models.ErrNoPendingRequest)
}

func TestAcceptRequestRejectsHalfWrittenMirror(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	// Corrupted state: only the recipient half exists. Accepting must
	// refuse rather than promote it to a friendship.
	bob := store.mustUser("bob")
	bob.IncomingRequests = []string{"alice"}
	require.NoError(t, store.Save(ctx, bob))

	err := svc.AcceptRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, models.ErrNoPendingRequest)
	assert.Empty(t, store.mustUser("bob").Friends)
	assert.Empty(t, store.mustUser("alice").Friends)
}

func TestRejectRequestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	require.NoError(t, svc.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.RejectRequest(ctx, "bob", "alice"))

	alice, bob := store.mustUser("alice"), store.mustUser("bob")
	assert.Empty(t, alice.OutgoingRequests)
	assert.Empty(t, bob.IncomingRequests)
	assert.Empty(t, alice.Friends)
	assert.Empty(t, bob.Friends)

	// Rejecting a request that no longer exists is a no-op.
	require.NoError(t, svc.RejectRequest(ctx, "bob", "alice"))
}

func TestRemoveFriendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	require.NoError(t, svc.SendRequest(ctx, "alice", "bob"))
	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))
	require.NoError(t, svc.RemoveFriend(ctx, "bob", "alice"))

	assert.Empty(t, store.mustUser("alice").Friends)
	assert.Empty(t, store.mustUser("bob").Friends)

	require.NoError(t, svc.RemoveFriend(ctx, "bob", "alice"))
	assert.Empty(t, store.mustUser("alice").Friends)
	assert.Empty(t, store.mustUser("bob").Friends)
}

func TestSendRequestPartialWriteSurfacesError(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	// Fail the second record write: the sender's outgoing entry commits
	// but the recipient's incoming entry does not. The error must reach
	// the caller and the first write stays.
	store.failSaveOn = 2
	err := svc.SendRequest(ctx, "alice", "bob")
	require.Error(t, err)

	alice, bob := store.mustUser("alice"), store.mustUser("bob")
	assert.Contains(t, alice.OutgoingRequests, "bob")
	assert.Empty(t, bob.IncomingRequests)

	// The asymmetric state is recoverable: a retry is reported as a
	// duplicate and a reject clears both halves.
	store.failSaveOn = 0
	assert.ErrorIs(t, svc.SendRequest(ctx, "alice", "bob"), models.ErrDuplicateRequest)
	require.NoError(t, svc.RejectRequest(ctx, "bob", "alice"))
	assertMirrors(t, store, "alice", "bob")
}

func TestFriendLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	require.NoError(t, svc.SendRequest(ctx, "alice", "bob"))
	assertMirrors(t, store, "alice", "bob")

	require.NoError(t, svc.AcceptRequest(ctx, "bob", "alice"))
	alice, bob := store.mustUser("alice"), store.mustUser("bob")
	assert.Equal(t, []string{"bob"}, alice.Friends)
	assert.Equal(t, []string{"alice"}, bob.Friends)
	assert.Empty(t, alice.IncomingRequests)
	assert.Empty(t, alice.OutgoingRequests)
	assert.Empty(t, bob.IncomingRequests)
	assert.Empty(t, bob.OutgoingRequests)

	require.NoError(t, svc.RemoveFriend(ctx, "bob", "alice"))
	assert.Empty(t, store.mustUser("alice").Friends)
	assert.Empty(t, store.mustUser("bob").Friends)
	assertMirrors(t, store, "alice", "bob")
}

func TestListFriendsSkipsDanglingIDs(t *testing.T) {
	ctx := context.Background()
	store := newMemUserStore()
	svc := NewFriendService(store)
	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bob", "bob")

	alice := store.mustUser("alice")
	alice.Friends = []string{"bob", "deleted-user"}
	require.NoError(t, store.Save(ctx, alice))

	friends, err := svc.ListFriends(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].ID)
}
