package auth

import (
	"net/http"

	"github.com/Maxbrain0/echo_blog/util"
	"github.com/labstack/echo/v4"
)

// IsAuthenticated reports whether the request carries a signed in user.
func IsAuthenticated(c echo.Context) bool {
	return util.GetUser(c) != nil
}

// RequireUser redirects anonymous requests to signin without running the
// wrapped handler. It expects Sessions.Identify to have run first.
func RequireUser(signin string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return c.Redirect(http.StatusFound, signin)
			}
			return next(c)
		}
	}
}
