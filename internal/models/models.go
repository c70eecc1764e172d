package models

import "time"

// User represents a registered user in the system.
//
// Friends, IncomingRequests and OutgoingRequests are denormalized id sets
// stored on the user record itself: a friendship appears in both users'
// Friends, and a pending request appears as an outgoing entry on the sender
// and an incoming entry on the recipient. Habits is a cached list of owned
// habit ids; Habit.OwnerID is the authoritative relation.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	ProfilePic       string    `json:"profile_pic"`
	PushToken        *string   `json:"push_token,omitempty"`
	Habits           []string  `json:"habits"`
	Friends          []string  `json:"friends"`
	IncomingRequests []string  `json:"incoming_requests"`
	OutgoingRequests []string  `json:"outgoing_requests"`
	CreatedAt        time.Time `json:"created_at"`
}

// PublicProfile is the subset of User safe to show to other users.
type PublicProfile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

// Public returns the user's public profile.
func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, ProfilePic: u.ProfilePic}
}

// Habit represents a tracked habit owned by a single user.
type Habit struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Time         string    `json:"time"`
	Color        string    `json:"color"`
	Streak       int       `json:"streak"`
	ReminderTime *string   `json:"reminder_time,omitempty"`
	OwnerID      string    `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Community represents a group of users sharing one habit.
// The creator is a member from creation; MemberIDs may contain blank
// entries left behind by older data and must be normalized on read.
type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HabitName   string    `json:"habit_name"`
	CreatorID   string    `json:"creator_id"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post represents a photo check-in for a habit. Posts are immutable
// after creation.
type Post struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HabitID     string    `json:"habit_id"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
