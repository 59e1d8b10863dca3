package util

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Maxbrain0/echo_blog/model"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
)

// userKey is where the resolved user lives in the echo context.
const userKey = "user"

// SetUser records the user resolved from the session for this request.
func SetUser(c echo.Context, u *model.User) {
	c.Set(userKey, u)
}

// GetUser returns the signed in user, or nil for anonymous requests.
func GetUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// GetUID returns the hex id of the signed in user, or "".
func GetUID(c echo.Context) string {
	if u := GetUser(c); u != nil {
		return u.ID.Hex()
	}
	return ""
}

// NormalizeTitle reduces a title to lower-case words joined by single
// spaces so "Hello-World", "hello world" and "HelloWorld" compare equal.
// Words also break between letters and digits and after an acronym, so
// "v2Release" is "v 2 release" and "XMLHttp" is "xml http".
func NormalizeTitle(s string) string {
	fold := cases.Fold()
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, fold.String(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if r == '\'' || r == '’' {
			// apostrophes do not split words
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return strings.Join(words, " ")
}

// Excerpt shortens s to at most n runes, cutting at a word boundary when
// possible.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n]
	cut := string(runes)
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + "..."
}
