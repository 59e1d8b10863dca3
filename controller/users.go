package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Maxbrain0/echo_blog/auth"
	"github.com/labstack/echo/v4"
)

// Users handles local sign up, sign in and log out.
type Users struct {
	Local    *auth.Local
	Sessions *auth.Sessions
	Timeout  time.Duration
}

// SignUp registers a local user and signs them in. Any registration
// failure, including a taken username, sends them back to the form.
func (u *Users) SignUp(c echo.Context) Outcome {
	ctx, cancel := context.WithTimeout(c.Request().Context(), u.Timeout)
	defer cancel()

	user, err := u.Local.Register(ctx, c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) || errors.Is(err, auth.ErrMissingCredentials) {
			c.Logger().Infof("sign up rejected: %v", err)
		} else {
			c.Logger().Errorf("sign up: %v", err)
		}
		return Redirect(PathSignUp)
	}

	if err := u.Sessions.Login(c.Request().Context(), user); err != nil {
		c.Logger().Errorf("sign up: %v", err)
		return Fail(http.StatusInternalServerError, "")
	}
	return Redirect(PathFeed)
}

// SignIn checks the submitted credentials and starts a session.
func (u *Users) SignIn(c echo.Context) Outcome {
	ctx, cancel := context.WithTimeout(c.Request().Context(), u.Timeout)
	defer cancel()

	user, err := u.Local.Verify(ctx, c.FormValue("username"), c.FormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return Redirect(PathSignIn)
	}
	if err != nil {
		c.Logger().Errorf("sign in: %v", err)
		return Fail(http.StatusInternalServerError, "")
	}

	if err := u.Sessions.Login(c.Request().Context(), user); err != nil {
		c.Logger().Errorf("sign in: %v", err)
		return Fail(http.StatusInternalServerError, "")
	}
	return Redirect(PathFeed)
}

// LogOut ends the session and always goes home.
func (u *Users) LogOut(c echo.Context) Outcome {
	if err := u.Sessions.Logout(c.Request().Context()); err != nil {
		c.Logger().Errorf("log out: %v", err)
	}
	return Redirect(PathHome)
}
