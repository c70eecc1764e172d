package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"habitlink-backend/internal/models"
)

// In-memory store fakes. Reads hand out copies so service-side mutations
// only become visible through Save, matching the read-then-write contract
// of the real repositories. Save calls can be made to fail on the Nth
// invocation to exercise partial multi-record writes.

type memUserStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	saveCalls  int
	failSaveOn int // 1-based Save call that fails; 0 disables
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Habits = append([]string(nil), u.Habits...)
	c.Friends = append([]string(nil), u.Friends...)
	c.IncomingRequests = append([]string(nil), u.IncomingRequests...)
	c.OutgoingRequests = append([]string(nil), u.OutgoingRequests...)
	return &c
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return copyUser(user), nil
}

func (s *memUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
}

func (s *memUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Save(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.failSaveOn > 0 && s.saveCalls == s.failSaveOn {
		return fmt.Errorf("injected save failure")
	}
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, models.ErrNotFound)
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memUserStore) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.User
	for _, user := range s.users {
		if len(out) >= limit {
			break
		}
		if len(user.Username) >= len(prefix) && user.Username[:len(prefix)] == prefix {
			out = append(out, copyUser(user))
		}
	}
	return out, nil
}

func (s *memUserStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	user.PushToken = pushToken
	return nil
}

// mustUser reads a user directly, bypassing the copy, for assertions.
func (s *memUserStore) mustUser(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.users[id])
}

type memHabitStore struct {
	mu        sync.Mutex
	habits    map[string]*models.Habit
	createErr error
}

func newMemHabitStore() *memHabitStore {
	return &memHabitStore{habits: make(map[string]*models.Habit)}
}

func copyHabit(h *models.Habit) *models.Habit {
	c := *h
	return &c
}

func (s *memHabitStore) Create(ctx context.Context, habit *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.habits[habit.ID] = copyHabit(habit)
	return nil
}

func (s *memHabitStore) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	habit, ok := s.habits[id]
	if !ok {
		return nil, fmt.Errorf("habit %s: %w", id, models.ErrNotFound)
	}
	return copyHabit(habit), nil
}

func (s *memHabitStore) FindByOwnerAndName(ctx context.Context, ownerID, name string) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, habit := range s.habits {
		if habit.OwnerID == ownerID && habit.Name == name {
			return copyHabit(habit), nil
		}
	}
	return nil, fmt.Errorf("habit %q of user %s: %w", name, ownerID, models.ErrNotFound)
}

func (s *memHabitStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Habit
	for _, habit := range s.habits {
		if habit.OwnerID == ownerID {
			out = append(out, copyHabit(habit))
		}
	}
	return out, nil
}

func (s *memHabitStore) Save(ctx context.Context, habit *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[habit.ID]; !ok {
		return fmt.Errorf("habit %s: %w", habit.ID, models.ErrNotFound)
	}
	s.habits[habit.ID] = copyHabit(habit)
	return nil
}

func (s *memHabitStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[id]; !ok {
		return fmt.Errorf("habit %s: %w", id, models.ErrNotFound)
	}
	delete(s.habits, id)
	return nil
}

type memCommunityStore struct {
	mu          sync.Mutex
	communities map[string]*models.Community
}

func newMemCommunityStore() *memCommunityStore {
	return &memCommunityStore{communities: make(map[string]*models.Community)}
}

func copyCommunity(c *models.Community) *models.Community {
	out := *c
	out.MemberIDs = append([]string(nil), c.MemberIDs...)
	return &out
}

func (s *memCommunityStore) Create(ctx context.Context, community *models.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.communities[community.ID] = copyCommunity(community)
	return nil
}

func (s *memCommunityStore) GetByID(ctx context.Context, id string) (*models.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	community, ok := s.communities[id]
	if !ok {
		return nil, fmt.Errorf("community %s: %w", id, models.ErrNotFound)
	}
	return copyCommunity(community), nil
}

func (s *memCommunityStore) Save(ctx context.Context, community *models.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.communities[community.ID]; !ok {
		return fmt.Errorf("community %s: %w", community.ID, models.ErrNotFound)
	}
	s.communities[community.ID] = copyCommunity(community)
	return nil
}

func (s *memCommunityStore) List(ctx context.Context, nameFilter string) ([]*models.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Community
	for _, community := range s.communities {
		if nameFilter == "" || containsFold(community.Name, nameFilter) {
			out = append(out, copyCommunity(community))
		}
	}
	return out, nil
}

func (s *memCommunityStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.communities[id]; !ok {
		return fmt.Errorf("community %s: %w", id, models.ErrNotFound)
	}
	delete(s.communities, id)
	return nil
}

func (s *memCommunityStore) mustCommunity(id string) *models.Community {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCommunity(s.communities[id])
}

type memPostStore struct {
	mu    sync.Mutex
	posts []*models.Post
}

func newMemPostStore() *memPostStore {
	return &memPostStore{}
}

func (s *memPostStore) Create(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *post
	s.posts = append(s.posts, &c)
	return nil
}

func (s *memPostStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.posts {
		if post.ID == id {
			c := *post
			return &c, nil
		}
	}
	return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
}

func (s *memPostStore) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Newest first: posts append in creation order, so walk backwards.
	var out []*models.Post
	for i := len(s.posts) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		c := *s.posts[i]
		out = append(out, &c)
	}
	return out, nil
}

func (s *memPostStore) ListByHabitIDs(ctx context.Context, habitIDs []string, limit, offset int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]bool, len(habitIDs))
	for _, id := range habitIDs {
		wanted[id] = true
	}
	var matched []*models.Post
	for i := len(s.posts) - 1; i >= 0; i-- {
		if wanted[s.posts[i].HabitID] {
			c := *s.posts[i]
			matched = append(matched, &c)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
