package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/store"
	"github.com/Maxbrain0/echo_blog/util"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// viewSpy records the last view rendered.
type viewSpy struct {
	name string
	data any
}

func (v *viewSpy) Render(w io.Writer, name string, data any, c echo.Context) error {
	v.name, v.data = name, data
	_, err := fmt.Fprintf(w, "view:%s", name)
	return err
}

type brokenPosts struct{}

func (brokenPosts) CreatePost(context.Context, *model.Post) error { return errors.New("write concern") }
func (brokenPosts) PostsByOwner(context.Context, primitive.ObjectID) ([]model.Post, error) {
	return nil, errors.New("cursor killed")
}

func newTestContext(method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder, *viewSpy) {
	e := echo.New()
	spy := &viewSpy{}
	e.Renderer = spy
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, spy
}

func TestHandleNilOutcome(t *testing.T) {
	c, rec, spy := newTestContext(http.MethodGet, "/", nil)

	err := Handle(func(echo.Context) Outcome { return nil })(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", spy.name)
}

func TestOutcomes(t *testing.T) {
	c, rec, spy := newTestContext(http.MethodGet, "/", nil)
	require.NoError(t, Handle(Page("home"))(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home", spy.name)

	c, rec, _ = newTestContext(http.MethodGet, "/", nil)
	require.NoError(t, Redirect("/elsewhere").respond(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/elsewhere", rec.Header().Get(echo.HeaderLocation))

	c, rec, spy = newTestContext(http.MethodGet, "/", nil)
	require.NoError(t, Fail(http.StatusTeapot, "").respond(c))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, echo.Map{"status": http.StatusTeapot, "message": "I'm a teapot"}, spy.data)
}

func TestRenderErrorFallsBackToText(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, RenderError(c, http.StatusNotFound, "gone"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "gone", rec.Body.String())
}

func TestFindByTitle(t *testing.T) {
	posts := []model.Post{
		{Title: "Hello", Content: "first"},
		{Title: "Hello World", Content: "second"},
		{Title: "hello", Content: "third"},
		{Title: "v2Release", Content: "fourth"},
	}

	got := FindByTitle(posts, "hello")
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Content)

	got = FindByTitle(posts, "hello-world")
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Content)

	got = FindByTitle(posts, "v2-release")
	require.NotNil(t, got)
	assert.Equal(t, "fourth", got.Content)

	assert.Nil(t, FindByTitle(posts, "nonexistent"))
	assert.Nil(t, FindByTitle(nil, "hello"))
}

func TestPostsWithoutUser(t *testing.T) {
	p := &Posts{Store: store.NewMemory()}
	for _, h := range []Handler{p.Feed, p.Create, p.Show} {
		c, rec, _ := newTestContext(http.MethodGet, "/", nil)
		require.NoError(t, Handle(h)(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, PathSignIn, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestPostsStoreFailures(t *testing.T) {
	p := &Posts{Store: brokenPosts{}}
	user := &model.User{ID: primitive.NewObjectID()}

	c, rec, spy := newTestContext(http.MethodGet, "/userfeed", nil)
	util.SetUser(c, user)
	require.NoError(t, Handle(p.Feed)(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", spy.name)

	c, rec, _ = newTestContext(http.MethodPost, "/compose", url.Values{"title": {"t"}, "postBody": {"b"}})
	util.SetUser(c, user)
	require.NoError(t, Handle(p.Create)(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	c, rec, _ = newTestContext(http.MethodGet, "/posts/t", nil)
	c.SetParamNames("postTitle")
	c.SetParamValues("t")
	util.SetUser(c, user)
	require.NoError(t, Handle(p.Show)(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateRequiresTitle(t *testing.T) {
	memory := store.NewMemory()
	p := &Posts{Store: memory}
	user := &model.User{ID: primitive.NewObjectID()}

	c, rec, _ := newTestContext(http.MethodPost, "/compose", url.Values{"title": {"   "}, "postBody": {"b"}})
	util.SetUser(c, user)
	require.NoError(t, Handle(p.Create)(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	posts, err := memory.PostsByOwner(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestShowUnescapesTitle(t *testing.T) {
	memory := store.NewMemory()
	p := &Posts{Store: memory}
	user := &model.User{ID: primitive.NewObjectID()}
	require.NoError(t, memory.CreatePost(context.Background(), &model.Post{OwnerID: user.ID, Title: "Hello World", Content: "body"}))

	c, rec, spy := newTestContext(http.MethodGet, "/posts/Hello%20World", nil)
	c.SetParamNames("postTitle")
	c.SetParamValues("Hello%20World")
	util.SetUser(c, user)
	require.NoError(t, Handle(p.Show)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, echo.Map{"postTitle": "Hello World", "postBody": "body"}, spy.data)
}
