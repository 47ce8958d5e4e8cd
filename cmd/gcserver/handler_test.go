package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/lemmi/glubblog"
	"github.com/lemmi/glubblog/backend/memory"
	"github.com/lemmi/glubblog/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	return newTestServerSite(t, dirSite(http.FS(theme.FS)))
}

func newTestServerSite(t *testing.T, site func() (http.FileSystem, string, error)) (http.Handler, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	_, err := glubblog.Bootstrapper{Store: store}.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, store.SaveMember(ctx, glubblog.Principal{
		ID: "bob", Name: "Bob", Roles: glubblog.NewRoleSet(glubblog.RoleBlogManagement),
	}))
	require.NoError(t, store.SaveMember(ctx, glubblog.Principal{ID: "carol", Name: "Carol"}))

	h := &handler{
		store:      store,
		log:        zap.NewNop(),
		userHeader: "X-Remote-User",
		site:       site,
	}
	return h.routes(), store
}

func do(h http.Handler, method, target, user string, form url.Values, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set("X-Remote-User", user)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))

	rec = do(h, http.MethodGet, "/blog/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Blog module successfully installed")
	assert.NotContains(t, body, "Post a new blog entry")

	rec = do(h, http.MethodGet, "/blog/", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post a new blog entry")

	rec = do(h, http.MethodGet, "/blog/post", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Content is Markdown")
}

func TestStatusCodes(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		method string
		target string
		user   string
		code   int
	}{
		{http.MethodGet, "/blog", "", http.StatusOK},
		{http.MethodGet, "/blog/index", "", http.StatusOK},
		{http.MethodGet, "/blog/date/2006/01", "", http.StatusOK},
		{http.MethodGet, "/blog/" + glubblog.SampleEntrySegment, "", http.StatusOK},
		{http.MethodGet, "/blog/missing-entry", "", http.StatusNotFound},
		{http.MethodGet, "/nope/", "", http.StatusNotFound},
		{http.MethodGet, "/blog/metaweblog", "", http.StatusNotImplemented},
		{http.MethodGet, "/blog/post", "", http.StatusForbidden},
		{http.MethodGet, "/blog/post", "carol", http.StatusForbidden},
		{http.MethodGet, "/blog/post", "unknown", http.StatusForbidden},
		{http.MethodGet, "/blog/post", "bob", http.StatusOK},
		{http.MethodGet, "/blog/postblog", "bob", http.StatusMethodNotAllowed},
		{http.MethodPost, "/blog/tag", "bob", http.StatusMethodNotAllowed},
		{http.MethodPost, "/blog/BlogEntryForm", "", http.StatusForbidden},
		{http.MethodGet, "/static/blog.css", "", http.StatusOK},
		{http.MethodGet, "/robots.txt", "", http.StatusOK},
		{http.MethodGet, "/static/", "", http.StatusNotFound},
		{http.MethodGet, "/static/.hidden", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := do(h, tt.method, tt.target, tt.user, nil)
		assert.Equal(t, tt.code, rec.Code, "%s %s as %q", tt.method, tt.target, tt.user)
	}
}

func TestTagFilterIsEscaped(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(h, http.MethodGet, "/blog/tag/"+url.PathEscape("<script>x</script>"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<script>x")
	assert.Contains(t, body, "&lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, body, "Blog module successfully installed")

	rec = do(h, http.MethodGet, "/blog/tag/blog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Blog module successfully installed")
}

func TestSubmitEntry(t *testing.T) {
	h, store := newTestServer(t)
	ctx := context.Background()

	form := url.Values{
		"Title":   {"Hello World"},
		"Author":  {"Mallory"},
		"Tags":    {"go, news"},
		"Content": {"Some *markdown*"},
	}
	rec := do(h, http.MethodPost, "/blog/BlogEntryForm", "bob", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/hello-world", rec.Header().Get("Location"))

	rec = do(h, http.MethodPost, "/blog/postblog", "bob", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/hello-world-2", rec.Header().Get("Location"))

	rec = do(h, http.MethodGet, "/blog/hello-world", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<em>markdown</em>")

	holders, err := store.PagesByType(ctx, glubblog.StageLive, glubblog.TypeBlogHolder)
	require.NoError(t, err)
	entries, err := store.Children(ctx, glubblog.StageLive, holders[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		if e.URLSegment == "hello-world" {
			assert.Equal(t, "Bob", e.Author, "custom authors are disabled for non-admins")
		}
	}

	rec = do(h, http.MethodPost, "/blog/BlogEntryForm", "bob", url.Values{"Title": {" "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUniqueSegment(t *testing.T) {
	siblings := []glubblog.Page{{URLSegment: "hello"}, {URLSegment: "hello-2"}}
	assert.Equal(t, "hello-3", uniqueSegment("hello", siblings))
	assert.Equal(t, "other", uniqueSegment("other", siblings))
	assert.Equal(t, "post-2", uniqueSegment("post", nil))
	assert.Equal(t, "entry", uniqueSegment("", nil))
}

func TestSubmitEntryPlainText(t *testing.T) {
	h, _ := newTestServer(t)

	form := url.Values{
		"Title": {"Tom & Jerry's"},
		"Tags":  {"r&d, a/b"},
	}
	rec := do(h, http.MethodPost, "/blog/BlogEntryForm", "bob", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/tom-jerry-s", rec.Header().Get("Location"))

	rec = do(h, http.MethodGet, "/blog/tom-jerry-s", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Tom &amp; Jerry&#39;s")
	assert.NotContains(t, body, "&amp;amp;")
	assert.Contains(t, body, `href="/blog/tag/a%2Fb"`)

	for _, target := range []string{"/blog/tag/r%26d", "/blog/tag/R&D", "/blog/tag/a%2Fb"} {
		rec = do(h, http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "/blog/tom-jerry-s", target)
		assert.NotContains(t, rec.Body.String(), "Blog module successfully installed", target)
	}
}

func TestSiteETag(t *testing.T) {
	const etag = `"rev1"`
	h, _ := newTestServerSite(t, func() (http.FileSystem, string, error) {
		return http.FS(theme.FS), etag, nil
	})

	rec := do(h, http.MethodGet, "/static/blog.css", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, etag, rec.Header().Get("ETag"))
	rec = do(h, http.MethodGet, "/static/blog.css", "", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = do(h, http.MethodGet, "/blog/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("ETag"), "blog pages change without a new site revision")

	rec = do(h, http.MethodPost, "/blog/BlogEntryForm", "bob", url.Values{"Title": {"Fresh news"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(h, http.MethodGet, "/blog/", "", nil, "If-None-Match", etag)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fresh news")
}
