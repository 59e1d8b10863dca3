// Package server wires the blog's routes and middleware onto echo.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/Maxbrain0/echo_blog/auth"
	"github.com/Maxbrain0/echo_blog/config"
	"github.com/Maxbrain0/echo_blog/controller"
	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/store"
	"github.com/Maxbrain0/echo_blog/view"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// stateTTL bounds how long a user may sit on a provider's consent page.
const stateTTL = 10 * time.Minute

// Deps is everything the server needs from main.
type Deps struct {
	Config    config.Config
	Store     store.Store
	Providers auth.Providers

	// SessionStore persists sessions; nil keeps them in memory.
	SessionStore scs.Store
	// Renderer defaults to the embedded templates.
	Renderer echo.Renderer
}

// New builds the echo instance serving the blog.
func New(d Deps) (*echo.Echo, error) {
	cfg := d.Config
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(ParseLevel(cfg.LogLevel))
	e.HTTPErrorHandler = errorHandler

	e.Renderer = d.Renderer
	if e.Renderer == nil {
		names := d.Providers.Names()
		templates, err := view.New(names)
		if err != nil {
			return nil, fmt.Errorf("load views: %w", err)
		}
		e.Renderer = templates
	}

	sessions := &auth.Sessions{
		Manager: auth.NewSessionManager(cfg, d.SessionStore),
		Users:   d.Store,
		Timeout: cfg.StoreTimeout,
	}
	users := &controller.Users{
		Local:    auth.NewLocal(d.Store, cfg.BcryptCost),
		Sessions: sessions,
		Timeout:  cfg.StoreTimeout,
	}
	posts := &controller.Posts{Store: d.Store, Timeout: cfg.StoreTimeout}
	oauth := &controller.OAuth{
		Reconciler:   &auth.Reconciler{Users: d.Store},
		States:       auth.NewStates(cfg.Secret, stateTTL),
		Sessions:     sessions,
		Timeout:      cfg.OAuthTimeout,
		StoreTimeout: cfg.StoreTimeout,
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("1M"))
	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}
	e.Use(sessions.LoadAndSave(), sessions.Identify())

	handle := controller.Handle
	guard := auth.RequireUser(controller.PathSignIn)

	e.GET(controller.PathHome, handle(controller.Page("home")))
	e.GET(controller.PathSignIn, handle(controller.Page("signin")))
	e.GET(controller.PathSignUp, handle(controller.Page("signup")))
	e.POST(controller.PathSignUp, handle(users.SignUp))
	e.POST(controller.PathSignIn, handle(users.SignIn))
	e.GET("/logout", handle(users.LogOut))

	e.GET(controller.PathCompose, handle(controller.Page("compose")), guard)
	e.POST(controller.PathCompose, handle(posts.Create), guard)
	e.GET(controller.PathFeed, handle(posts.Feed), guard)
	e.GET("/posts/:postTitle", handle(posts.Show), guard)

	for _, name := range d.Providers.Names() {
		p := d.Providers[name]
		e.GET(providerPath(name), handle(oauth.Begin(p)))
		e.GET(providerPath(name)+controller.PathFeed, handle(oauth.Callback(p)))
	}
	return e, nil
}

func providerPath(name model.Provider) string {
	return "/auth/" + string(name)
}

// ParseLevel maps LOG_LEVEL values onto echo's logger levels.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
