package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Maxbrain0/echo_blog/config"
	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/store"
	"github.com/Maxbrain0/echo_blog/util"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// flakyUsers fails every lookup while down is set.
type flakyUsers struct {
	*store.Memory
	down atomic.Bool
}

func (f *flakyUsers) UserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	if f.down.Load() {
		return nil, errors.New("server selection timeout")
	}
	return f.Memory.UserByID(ctx, id)
}

type sessionHarness struct {
	users  *flakyUsers
	client *http.Client
	url    string
}

func newSessionHarness(t *testing.T) *sessionHarness {
	t.Helper()
	users := &flakyUsers{Memory: store.NewMemory()}
	sessions := &Sessions{
		Manager: NewSessionManager(config.Config{SessionLifetime: time.Hour}, nil),
		Users:   users,
		Timeout: time.Second,
	}

	e := echo.New()
	e.Use(sessions.LoadAndSave(), sessions.Identify())
	e.POST("/login/:id", func(c echo.Context) error {
		id, _ := primitive.ObjectIDFromHex(c.Param("id"))
		if err := sessions.Login(c.Request().Context(), &model.User{ID: id}); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/logout", func(c echo.Context) error {
		if err := sessions.Logout(c.Request().Context()); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/")
	})
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, util.GetUID(c))
	}, RequireUser("/signin"))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &sessionHarness{
		users: users,
		url:   srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *sessionHarness) do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, h.url+path, nil)
	require.NoError(t, err)
	res, err := h.client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	return res
}

func TestSessionLifecycle(t *testing.T) {
	h := newSessionHarness(t)
	u, err := h.users.FindOrCreateByProvider(context.Background(), model.ProviderGoogle, "g-1")
	require.NoError(t, err)

	res := h.do(t, http.MethodGet, "/whoami")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/signin", res.Header.Get("Location"))

	res = h.do(t, http.MethodPost, "/login/"+u.ID.Hex())
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res = h.do(t, http.MethodGet, "/whoami")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = h.do(t, http.MethodGet, "/logout")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	res = h.do(t, http.MethodGet, "/whoami")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/signin", res.Header.Get("Location"))
}

func TestLogoutWithoutSession(t *testing.T) {
	h := newSessionHarness(t)

	res := h.do(t, http.MethodGet, "/logout")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))
}

func TestStoreFailureLeavesRequestAnonymous(t *testing.T) {
	h := newSessionHarness(t)
	u, err := h.users.FindOrCreateByProvider(context.Background(), model.ProviderGoogle, "g-1")
	require.NoError(t, err)
	h.do(t, http.MethodPost, "/login/"+u.ID.Hex())

	h.users.down.Store(true)
	res := h.do(t, http.MethodGet, "/whoami")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/signin", res.Header.Get("Location"))

	// the session survives a transient failure
	h.users.down.Store(false)
	res = h.do(t, http.MethodGet, "/whoami")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestSessionForMissingUser(t *testing.T) {
	h := newSessionHarness(t)

	h.do(t, http.MethodPost, "/login/"+primitive.NewObjectID().Hex())
	res := h.do(t, http.MethodGet, "/whoami")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/signin", res.Header.Get("Location"))
}
