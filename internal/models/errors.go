package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
// Handlers translate these to HTTP status codes with errors.Is;
// store failures that are none of them surface as 500s.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrNoPendingRequest = errors.New("no pending friend request")
	ErrAlreadyMember    = errors.New("user already a member")
)
