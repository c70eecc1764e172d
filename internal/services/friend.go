package services

import (
	"context"
	"fmt"

	"habitlink-backend/internal/models"
)

// FriendService manages the pairwise friendship state machine between two
// users: none -> pending (sender's outgoing mirrors recipient's incoming)
// -> friends (each appears in the other's friends set).
//
// Every mutating operation writes two user records sequentially. The store
// gives no cross-record atomicity, so a failure between the two writes
// leaves asymmetric state; the error surfaces to the caller and the first
// write is not undone. All operations are written to be retry-safe: the
// membership edits are set operations, so replaying a half-applied
// mutation converges instead of duplicating entries.
type FriendService struct {
	userRepo UserStore
}

// NewFriendService creates a new friend service
func NewFriendService(userRepo UserStore) *FriendService {
	return &FriendService{userRepo: userRepo}
}

// SendRequest records a pending friend request from sender to recipient.
func (s *FriendService) SendRequest(ctx context.Context, senderID, recipientID string) error {
	if senderID == recipientID {
		return fmt.Errorf("cannot send a friend request to yourself")
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return err
	}
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return err
	}

	if contains(sender.Friends, recipientID) {
		return models.ErrAlreadyFriends
	}
	// Either half of the mirror counts as a pending request. The two
	// lists store one logical relation; checking both keeps a partially
	// written request from being sent twice.
	if contains(sender.OutgoingRequests, recipientID) || contains(recipient.IncomingRequests, senderID) {
		return models.ErrDuplicateRequest
	}

	sender.OutgoingRequests = addID(sender.OutgoingRequests, recipientID)
	recipient.IncomingRequests = addID(recipient.IncomingRequests, senderID)

	if err := s.userRepo.Save(ctx, sender); err != nil {
		return fmt.Errorf("failed to save sender: %w", err)
	}
	if err := s.userRepo.Save(ctx, recipient); err != nil {
		return fmt.Errorf("failed to save recipient: %w", err)
	}
	return nil
}

// AcceptRequest turns a pending request from sender into a friendship.
// Both halves of the mirror must be present; accepting on the strength of
// one half would promote corrupted state into a friendship.
func (s *FriendService) AcceptRequest(ctx context.Context, accepterID, senderID string) error {
	accepter, err := s.userRepo.GetByID(ctx, accepterID)
	if err != nil {
		return err
	}
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return err
	}

	if !contains(accepter.IncomingRequests, senderID) || !contains(sender.OutgoingRequests, accepterID) {
		return models.ErrNoPendingRequest
	}

	accepter.IncomingRequests = removeID(accepter.IncomingRequests, senderID)
	sender.OutgoingRequests = removeID(sender.OutgoingRequests, accepterID)
	accepter.Friends = addID(accepter.Friends, senderID)
	sender.Friends = addID(sender.Friends, accepterID)

	if err := s.userRepo.Save(ctx, accepter); err != nil {
		return fmt.Errorf("failed to save accepter: %w", err)
	}
	if err := s.userRepo.Save(ctx, sender); err != nil {
		return fmt.Errorf("failed to save sender: %w", err)
	}
	return nil
}

// RejectRequest drops a pending request from sender. Absence of the
// request is not an error, so rejecting twice is a no-op; this also
// clears a half-written mirror.
func (s *FriendService) RejectRequest(ctx context.Context, accepterID, senderID string) error {
	accepter, err := s.userRepo.GetByID(ctx, accepterID)
	if err != nil {
		return err
	}
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return err
	}

	accepter.IncomingRequests = removeID(accepter.IncomingRequests, senderID)
	sender.OutgoingRequests = removeID(sender.OutgoingRequests, accepterID)

	if err := s.userRepo.Save(ctx, accepter); err != nil {
		return fmt.Errorf("failed to save accepter: %w", err)
	}
	if err := s.userRepo.Save(ctx, sender); err != nil {
		return fmt.Errorf("failed to save sender: %w", err)
	}
	return nil
}

// RemoveFriend removes each user from the other's friends set. Idempotent.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, otherID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return err
	}

	user.Friends = removeID(user.Friends, otherID)
	other.Friends = removeID(other.Friends, userID)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if err := s.userRepo.Save(ctx, other); err != nil {
		return fmt.Errorf("failed to save friend: %w", err)
	}
	return nil
}

// ListFriends resolves a user's friend ids to public profiles. Friend ids
// that no longer resolve are skipped rather than failing the whole list.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]models.PublicProfile, 0, len(user.Friends))
	for _, friendID := range user.Friends {
		friend, err := s.userRepo.GetByID(ctx, friendID)
		if err != nil {
			continue
		}
		friends = append(friends, friend.Public())
	}
	return friends, nil
}

// ListRequests resolves the senders of a user's incoming friend requests.
func (s *FriendService) ListRequests(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	senders := make([]models.PublicProfile, 0, len(user.IncomingRequests))
	for _, senderID := range user.IncomingRequests {
		sender, err := s.userRepo.GetByID(ctx, senderID)
		if err != nil {
			continue
		}
		senders = append(senders, sender.Public())
	}
	return senders, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// addID appends id unless already present, keeping the slice a set.
func addID(ids []string, id string) []string {
	if contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
