package controller

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/util"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStore is the part of the store the post pages need.
type PostStore interface {
	CreatePost(ctx context.Context, p *model.Post) error
	PostsByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Post, error)
}

// Posts serves the signed in user's own posts. Nothing here ever reads or
// writes another user's posts.
type Posts struct {
	Store   PostStore
	Timeout time.Duration
}

// Feed lists the current user's posts.
func (p *Posts) Feed(c echo.Context) Outcome {
	user := util.GetUser(c)
	if user == nil {
		return Redirect(PathSignIn)
	}
	posts, err := p.list(c, user)
	if err != nil {
		c.Logger().Errorf("list posts for %s: %v", user.ID.Hex(), err)
		return Fail(http.StatusInternalServerError, "Your posts could not be loaded.")
	}
	return Render("userfeed", echo.Map{"posts": posts})
}

// Create saves a new post owned by the current user.
func (p *Posts) Create(c echo.Context) Outcome {
	user := util.GetUser(c)
	if user == nil {
		return Redirect(PathSignIn)
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return Fail(http.StatusBadRequest, "A post needs a title.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), p.Timeout)
	defer cancel()
	post := &model.Post{OwnerID: user.ID, Title: title, Content: c.FormValue("postBody")}
	if err := p.Store.CreatePost(ctx, post); err != nil {
		c.Logger().Errorf("create post for %s: %v", user.ID.Hex(), err)
		return Fail(http.StatusInternalServerError, "Your post could not be saved.")
	}
	return Redirect(PathFeed)
}

// Show renders the current user's post whose title matches the path.
func (p *Posts) Show(c echo.Context) Outcome {
	user := util.GetUser(c)
	if user == nil {
		return Redirect(PathSignIn)
	}
	title := c.Param("postTitle")
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}

	posts, err := p.list(c, user)
	if err != nil {
		c.Logger().Errorf("list posts for %s: %v", user.ID.Hex(), err)
		return Fail(http.StatusInternalServerError, "Your posts could not be loaded.")
	}
	post := FindByTitle(posts, title)
	if post == nil {
		return Fail(http.StatusNotFound, "No post with that title.")
	}
	return Render("post", echo.Map{"postTitle": post.Title, "postBody": post.Content})
}

func (p *Posts) list(c echo.Context, user *model.User) ([]model.Post, error) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), p.Timeout)
	defer cancel()
	return p.Store.PostsByOwner(ctx, user.ID)
}

// FindByTitle returns the first post whose normalized title equals the
// normalized title, or nil.
func FindByTitle(posts []model.Post, title string) *model.Post {
	want := util.NormalizeTitle(title)
	for i := range posts {
		if util.NormalizeTitle(posts[i].Title) == want {
			return &posts[i]
		}
	}
	return nil
}
