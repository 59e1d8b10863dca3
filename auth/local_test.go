package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type brokenUsers struct{ err error }

func (b brokenUsers) UserByUsername(context.Context, string) (*model.User, error) { return nil, b.err }
func (b brokenUsers) CreateUser(context.Context, *model.User) error               { return b.err }

func TestLocalRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	users := store.NewMemory()
	local := NewLocal(users, bcrypt.MinCost)

	u, err := local.Register(ctx, " alice ", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "pw1", u.PasswordHash)

	got, err := local.Verify(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestLocalRegisterTwice(t *testing.T) {
	ctx := context.Background()
	local := NewLocal(store.NewMemory(), bcrypt.MinCost)

	_, err := local.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = local.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLocalRegisterMissingFields(t *testing.T) {
	local := NewLocal(store.NewMemory(), bcrypt.MinCost)

	_, err := local.Register(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = local.Register(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLocalVerifyFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	users := store.NewMemory()
	local := NewLocal(users, bcrypt.MinCost)
	_, err := local.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = users.FindOrCreateByProvider(ctx, model.ProviderGoogle, "g-1")
	require.NoError(t, err)

	_, unknown := local.Verify(ctx, "mallory", "pw1")
	_, wrong := local.Verify(ctx, "alice", "nope")
	_, empty := local.Verify(ctx, "", "")

	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.ErrorIs(t, wrong, ErrInvalidCredentials)
	assert.ErrorIs(t, empty, ErrInvalidCredentials)
	assert.Equal(t, unknown.Error(), wrong.Error())
}

func TestLocalStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	local := NewLocal(brokenUsers{err: boom}, bcrypt.MinCost)

	_, err := local.Verify(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	_, err = local.Register(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, boom)
}
