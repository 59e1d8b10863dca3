package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Maxbrain0/echo_blog/config"
	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/store"
	"github.com/Maxbrain0/echo_blog/util"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// SessionCookie names the cookie carrying the session token.
	SessionCookie = "blog_session"

	userIDKey     = "userID"
	oauthStateKey = "oauthState"
)

// NewSessionManager configures an scs manager from cfg. A nil st keeps the
// in-memory store scs starts with.
func NewSessionManager(cfg config.Config, st scs.Store) *scs.SessionManager {
	m := scs.New()
	if st != nil {
		m.Store = st
	}
	m.Lifetime = cfg.SessionLifetime
	m.Cookie.Name = SessionCookie
	m.Cookie.HttpOnly = true
	m.Cookie.SameSite = http.SameSiteLaxMode
	m.Cookie.Secure = cfg.SecureCookies
	return m
}

// UserFinder loads the user a session points at.
type UserFinder interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// Sessions keeps only the user id in the session and turns it back into a
// full user on every request.
type Sessions struct {
	Manager *scs.SessionManager
	Users   UserFinder
	Timeout time.Duration
}

// LoadAndSave loads the session for the request and commits it, writing
// the cookie, just before the response header goes out.
func (s *Sessions) LoadAndSave() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.Response().Header().Add(echo.HeaderVary, "Cookie")

			var token string
			if cookie, err := req.Cookie(s.Manager.Cookie.Name); err == nil {
				token = cookie.Value
			}
			ctx, err := s.Manager.Load(req.Context(), token)
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}
			c.SetRequest(req.WithContext(ctx))
			c.Response().Before(func() { s.commit(c) })
			return next(c)
		}
	}
}

func (s *Sessions) commit(c echo.Context) {
	ctx := c.Request().Context()
	switch s.Manager.Status(ctx) {
	case scs.Modified:
		token, expiry, err := s.Manager.Commit(ctx)
		if err != nil {
			c.Logger().Errorf("commit session: %v", err)
			return
		}
		s.Manager.WriteSessionCookie(ctx, c.Response(), token, expiry)
	case scs.Destroyed:
		s.Manager.WriteSessionCookie(ctx, c.Response(), "", time.Time{})
	}
}

// Identify resolves the session user and stores it on the context. Any
// failure leaves the request anonymous.
func (s *Sessions) Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := s.Resolve(c.Request().Context())
			if err != nil {
				c.Logger().Warnf("resolve session user: %v", err)
			}
			if u != nil {
				util.SetUser(c, u)
			}
			return next(c)
		}
	}
}

// Resolve returns the signed in user, or nil for an anonymous session.
// A session pointing at a user that no longer exists is cleared.
func (s *Sessions) Resolve(ctx context.Context) (*model.User, error) {
	raw := s.Manager.GetString(ctx, userIDKey)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		s.Manager.Remove(ctx, userIDKey)
		return nil, fmt.Errorf("session user id %q: %w", raw, err)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	u, err := s.Users.UserByID(lookupCtx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.Manager.Remove(ctx, userIDKey)
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}

// Login binds u to the session under a fresh token.
func (s *Sessions) Login(ctx context.Context, u *model.User) error {
	if err := s.Manager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	s.Manager.Put(ctx, userIDKey, u.ID.Hex())
	return nil
}

// Logout ends the session whether or not anyone was signed in. If the
// store cannot delete the session its data is still wiped.
func (s *Sessions) Logout(ctx context.Context) error {
	if err := s.Manager.Destroy(ctx); err != nil {
		_ = s.Manager.Clear(ctx)
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// PutState remembers the OAuth state handed to the provider.
func (s *Sessions) PutState(ctx context.Context, state string) {
	s.Manager.Put(ctx, oauthStateKey, state)
}

// PopState returns and forgets the remembered OAuth state.
func (s *Sessions) PopState(ctx context.Context) string {
	return s.Manager.PopString(ctx, oauthStateKey)
}
