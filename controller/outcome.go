package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Routes the controllers redirect between.
const (
	PathHome    = "/"
	PathSignIn  = "/signin"
	PathSignUp  = "/signup"
	PathFeed    = "/userfeed"
	PathCompose = "/compose"
)

// Outcome is the response a handler decided on. It can only be built with
// Render, Redirect or Fail, so a Handler has to pick one on every path.
type Outcome interface {
	respond(c echo.Context) error
}

// Handler produces the outcome for a request.
type Handler func(c echo.Context) Outcome

// Handle adapts h to echo. A nil outcome is answered with a 500.
func Handle(h Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		o := h(c)
		if o == nil {
			c.Logger().Errorf("%s %s: handler returned no outcome", c.Request().Method, c.Path())
			o = Fail(http.StatusInternalServerError, "")
		}
		return o.respond(c)
	}
}

type rendered struct {
	name string
	data any
}

// Render answers 200 with the named view.
func Render(name string, data any) Outcome {
	return rendered{name: name, data: data}
}

func (o rendered) respond(c echo.Context) error {
	return c.Render(http.StatusOK, o.name, o.data)
}

type redirected struct {
	to string
}

// Redirect answers 302 to the given location.
func Redirect(to string) Outcome {
	return redirected{to: to}
}

func (o redirected) respond(c echo.Context) error {
	return c.Redirect(http.StatusFound, o.to)
}

type failed struct {
	status  int
	message string
}

// Fail answers with the error view. message is shown to the user, so keep
// it generic; an empty message uses the status text.
func Fail(status int, message string) Outcome {
	return failed{status: status, message: message}
}

func (o failed) respond(c echo.Context) error {
	return RenderError(c, o.status, o.message)
}

// RenderError writes the error view, falling back to plain text when the
// view cannot be rendered.
func RenderError(c echo.Context, status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	err := c.Render(status, "error", echo.Map{"status": status, "message": message})
	if err != nil && !c.Response().Committed {
		c.Logger().Errorf("render error view: %v", err)
		return c.String(status, message)
	}
	return err
}

// Page renders a view that needs no data.
func Page(name string) Handler {
	return func(echo.Context) Outcome {
		return Render(name, nil)
	}
}
