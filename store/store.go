// Package store persists users and posts.
package store

import (
	"context"
	"errors"

	"github.com/Maxbrain0/echo_blog/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrEmptySubject is returned when a provider lookup has no subject id.
	ErrEmptySubject = errors.New("store: empty provider subject")
)

// Store is the identity and post persistence used by the app.
type Store interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	// CreateUser inserts u and sets u.ID.
	CreateUser(ctx context.Context, u *model.User) error
	// FindOrCreateByProvider returns the user holding subject for provider,
	// creating one with only that field set if none exists.
	FindOrCreateByProvider(ctx context.Context, provider model.Provider, subject string) (*model.User, error)

	// CreatePost inserts p and sets p.ID.
	CreatePost(ctx context.Context, p *model.Post) error
	// PostsByOwner returns the owner's posts oldest first.
	PostsByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Post, error)
}
