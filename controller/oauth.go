package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/Maxbrain0/echo_blog/auth"
	"github.com/labstack/echo/v4"
)

// OAuth runs the redirect and callback legs of every configured provider.
type OAuth struct {
	Reconciler   *auth.Reconciler
	States       *auth.States
	Sessions     *auth.Sessions
	Timeout      time.Duration
	StoreTimeout time.Duration
}

// Begin sends the browser to p's consent page.
func (o *OAuth) Begin(p *auth.Provider) Handler {
	return func(c echo.Context) Outcome {
		state, err := o.States.Issue(p.Name)
		if err != nil {
			c.Logger().Errorf("%s sign in: %v", p.Name, err)
			return Fail(http.StatusInternalServerError, "")
		}
		o.Sessions.PutState(c.Request().Context(), state)
		return Redirect(p.AuthCodeURL(state))
	}
}

// Callback completes sign in with p. Every failure lands on the sign in
// page; nothing about the cause is shown to the user.
func (o *OAuth) Callback(p *auth.Provider) Handler {
	return func(c echo.Context) Outcome {
		ctx := c.Request().Context()
		expected := o.Sessions.PopState(ctx)

		if reason := c.QueryParam("error"); reason != "" {
			c.Logger().Infof("%s sign in declined: %s", p.Name, reason)
			return Redirect(PathSignIn)
		}
		state := c.QueryParam("state")
		if state == "" || state != expected {
			c.Logger().Warnf("%s sign in: state does not match session", p.Name)
			return Redirect(PathSignIn)
		}
		if err := o.States.Verify(state, p.Name); err != nil {
			c.Logger().Warnf("%s sign in: %v", p.Name, err)
			return Redirect(PathSignIn)
		}

		subject, err := o.subject(ctx, p, c.QueryParam("code"))
		if err != nil {
			c.Logger().Warnf("%s sign in: %v", p.Name, err)
			return Redirect(PathSignIn)
		}

		storeCtx, cancel := context.WithTimeout(ctx, o.StoreTimeout)
		defer cancel()
		user, err := o.Reconciler.Reconcile(storeCtx, p.Name, subject)
		if err != nil {
			c.Logger().Errorf("%s sign in: %v", p.Name, err)
			return Redirect(PathSignIn)
		}

		if err := o.Sessions.Login(ctx, user); err != nil {
			c.Logger().Errorf("%s sign in: %v", p.Name, err)
			return Redirect(PathSignIn)
		}
		return Redirect(PathFeed)
	}
}

func (o *OAuth) subject(ctx context.Context, p *auth.Provider, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	return p.Subject(ctx, code)
}
