package identity_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements identity.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, id int64, patch identity.UserPatch) (*identity.User, error) {
	args := m.Called(ctx, id, patch)
	if user := args.Get(0); user != nil {
		return user.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserFinder implements identity.UserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAccountLinker implements identity.AccountLinker
type MockAccountLinker struct {
	mock.Mock
}

func (m *MockAccountLinker) Link(ctx context.Context, userID int64, account map[string]any) error {
	args := m.Called(ctx, userID, account)
	return args.Error(0)
}

// memoryStore is an in-memory UserStore that counts writes
type memoryStore struct {
	mu      sync.Mutex
	users   map[int64]*identity.User
	updates []identity.UserPatch
}

func newMemoryStore(users ...*identity.User) *memoryStore {
	s := &memoryStore{users: map[int64]*identity.User{}}
	for _, u := range users {
		c := *u
		s.users[u.ID] = &c
	}
	return s
}

func (s *memoryStore) FindByID(_ context.Context, id int64) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *memoryStore) Update(_ context.Context, id int64, patch identity.UserPatch) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	s.updates = append(s.updates, patch)
	patch.Apply(u)
	c := *u
	return &c, nil
}

func (s *memoryStore) user(id int64) identity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memoryStore) countUpdates(pred func(identity.UserPatch) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, p := range s.updates {
		if pred(p) {
			n++
		}
	}
	return n
}

func (s *memoryStore) totalUpdates() int {
	return s.countUpdates(func(identity.UserPatch) bool { return true })
}

func touchesLastSignedIn(p identity.UserPatch) bool {
	return p.LastSignedIn != nil
}

// capturingSink records activity events
type capturingSink struct {
	mu     sync.Mutex
	events []identity.ActivityEvent
}

func (c *capturingSink) Record(_ context.Context, event identity.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturingSink) types() []identity.ActivityEventType {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]identity.ActivityEventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.EventType)
	}
	return out
}
