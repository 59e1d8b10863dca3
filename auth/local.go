package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell which one happened.
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrMissingCredentials = errors.New("auth: username and password are required")
	ErrUsernameTaken      = errors.New("auth: username already taken")
)

// LocalUsers is the part of the store local authentication needs.
type LocalUsers interface {
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
}

// Local registers and verifies username/password users.
type Local struct {
	Users LocalUsers
	Cost  int

	dummyOnce sync.Once
	dummy     []byte
}

// NewLocal returns a Local hashing with the given bcrypt cost.
func NewLocal(users LocalUsers, cost int) *Local {
	return &Local{Users: users, Cost: cost}
}

// Register creates a user with a bcrypt hash of password.
func (l *Local) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Username: username, PasswordHash: string(hash)}
	if err := l.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Verify checks password against the stored hash for username.
func (l *Local) Verify(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := l.Users.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		// burn the same time a real comparison would
		_ = bcrypt.CompareHashAndPassword(l.dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// OAuth users have no hash and can never sign in locally
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (l *Local) dummyHash() []byte {
	l.dummyOnce.Do(func() {
		l.dummy, _ = bcrypt.GenerateFromPassword([]byte("not a real password"), l.Cost)
	})
	return l.dummy
}
