package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Maxbrain0/echo_blog/controller"
	"github.com/labstack/echo/v4"
)

// errorHandler renders errors echo raises itself (unknown routes, bad
// methods, failed renders) with the error view. Server errors are logged
// and shown without detail.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := ""
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if status < http.StatusInternalServerError {
			message = fmt.Sprint(he.Message)
		}
	}
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = controller.RenderError(c, status, message)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
