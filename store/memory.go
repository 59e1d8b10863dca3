package store

import (
	"context"
	"sync"
	"time"

	"github.com/Maxbrain0/echo_blog/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store for tests. The server always runs against
// Mongo.
type Memory struct {
	mu    sync.RWMutex
	users []model.User
	posts []model.Post
	now   func() time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) UserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.usernameIndex(username); i >= 0 {
		u := m.users[i]
		return &u, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Username != "" && m.usernameIndex(u.Username) >= 0 {
		return ErrDuplicate
	}
	for _, p := range model.Providers {
		if id := u.ProviderID(p); id != "" && m.providerIndex(p, id) >= 0 {
			return ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, *u)
	return nil
}

func (m *Memory) FindOrCreateByProvider(ctx context.Context, provider model.Provider, subject string) (*model.User, error) {
	if _, err := provider.Field(); err != nil {
		return nil, err
	}
	if subject == "" {
		return nil, ErrEmptySubject
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.providerIndex(provider, subject); i >= 0 {
		u := m.users[i]
		return &u, nil
	}
	u := model.User{ID: primitive.NewObjectID()}
	if err := u.SetProviderID(provider, subject); err != nil {
		return nil, err
	}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *Memory) CreatePost(ctx context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now().UTC()
	}
	m.posts = append(m.posts, *p)
	return nil
}

func (m *Memory) PostsByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Post{}
	for _, p := range m.posts {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

// UserCount reports how many users are stored.
func (m *Memory) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *Memory) usernameIndex(username string) int {
	for i := range m.users {
		if m.users[i].Username == username {
			return i
		}
	}
	return -1
}

func (m *Memory) providerIndex(p model.Provider, subject string) int {
	for i := range m.users {
		if m.users[i].ProviderID(p) == subject {
			return i
		}
	}
	return -1
}
