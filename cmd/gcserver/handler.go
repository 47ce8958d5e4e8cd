package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	g "github.com/gogits/git"
	"github.com/lemmi/ghfs"
	"github.com/lemmi/glubblog"
	"github.com/lemmi/glubblog/backend"
	"github.com/pkg/errors"
	"github.com/raymondbutcher/tidyhtml"
	"go.uber.org/zap"
)

const (
	tmplPath = "templates"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type ctxKey int

const (
	fsKey ctxKey = iota
	etagKey
)

func siteFS(ctx context.Context) http.FileSystem {
	return ctx.Value(fsKey).(http.FileSystem)
}

// siteETag identifies the revision of the site filesystem. It only covers
// theme files, blog pages come from the store.
func siteETag(ctx context.Context) string {
	etag, _ := ctx.Value(etagKey).(string)
	return etag
}

// statusCode maps the blog errors to HTTP status codes.
func statusCode(err error) int {
	switch errors.Cause(err) {
	case glubblog.ErrNotFound, glubblog.ErrUnknownAction:
		return http.StatusNotFound
	case glubblog.ErrForbidden:
		return http.StatusForbidden
	case glubblog.ErrChildNotAllowed:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func parseTemplates(fs http.FileSystem) (*template.Template, error) {
	dir, err := fs.Open(tmplPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open directory: %q", tmplPath)
	}
	defer dir.Close()
	tmain := template.New("_")
	fis, err := dir.Readdir(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read directory: %q", tmplPath)
	}
	for _, fi := range fis {
		if !strings.HasSuffix(fi.Name(), ".tmpl") {
			continue
		}
		fpath := path.Join(tmplPath, fi.Name())
		data, err := fs.Open(fpath)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot open file: %q", fpath)
		}
		databytes, err := io.ReadAll(data)
		data.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot read file: %q", fpath)
		}

		tname := strings.TrimSuffix(fi.Name(), ".tmpl")
		_, err = tmain.New(tname).Parse(string(databytes))
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot parse template: %q", fpath)
		}
	}

	return tmain, nil
}

// handler serves the live blog holders of the store.
type handler struct {
	store      backend.Backend
	log        *zap.Logger
	debug      bool
	userHeader string
	// site returns the filesystem with templates/ and static/ for one request
	// and the ETag to send, if any.
	site func() (http.FileSystem, string, error)
}

func dirSite(fs http.FileSystem) func() (http.FileSystem, string, error) {
	return func() (http.FileSystem, string, error) {
		return fs, "", nil
	}
}

// gitSite opens the master branch of the repository at path on every call,
// so pushed changes show up without a restart.
func gitSite(path string) func() (http.FileSystem, string, error) {
	return func() (http.FileSystem, string, error) {
		repo, err := g.OpenRepository(path)
		if err != nil {
			return nil, "", errors.Wrap(err, "g.OpenRepository("+path+")")
		}
		commit, err := repo.GetCommitOfBranch("master")
		if err != nil {
			return nil, "", errors.Wrap(err, "Can not open master branch")
		}
		return ghfs.FromCommit(commit), `"` + strings.Trim(commit.Id.String(), `"`) + `"`, nil
	}
}

func (h *handler) httpError(w http.ResponseWriter, code int, logErr error) {
	fields := []zap.Field{zap.Int("status", code), zap.Error(logErr)}
	if st, ok := logErr.(stackTracer); ok && h.debug {
		fields = append(fields, zap.String("stack", fmt.Sprintf("%+v", st.StackTrace())))
	}
	if code >= http.StatusInternalServerError {
		h.log.Error("Request failed", fields...)
	} else {
		h.log.Debug("Request rejected", fields...)
	}
	http.Error(w, http.StatusText(code), code)
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	h.httpError(w, statusCode(err), err)
}

func (h *handler) routes() http.Handler {
	staticHandler := StaticHandler{}

	r := chi.NewRouter()
	r.Use(h.withSite)
	r.Handle("/static/*", staticHandler)
	r.Handle("/robots.txt", staticHandler.Cd("/static"))
	r.Handle("/favicon.ico", staticHandler.Cd("/static"))
	r.Get("/", h.root)
	r.Get("/{segment}", h.serveHolder)
	r.Get("/{segment}/*", h.serveHolder)
	r.Post("/{segment}/*", h.submitEntry)
	return r
}

func (h *handler) withSite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs, etag, err := h.site()
		if err != nil {
			h.httpError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Cache-Control", "max-age=32")
		ctx := context.WithValue(r.Context(), fsKey, fs)
		ctx = context.WithValue(ctx, etagKey, etag)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principal looks up the member named by the user header. Unknown members
// are anonymous.
func (h *handler) principal(r *http.Request) (glubblog.Principal, error) {
	id := strings.TrimSpace(r.Header.Get(h.userHeader))
	if id == "" {
		return glubblog.Anonymous, nil
	}
	p, err := h.store.Member(r.Context(), id)
	if glubblog.IsNotFound(err) {
		return glubblog.Anonymous, nil
	}
	return p, err
}

func (h *handler) findHolder(ctx context.Context, segment string) (glubblog.BlogHolder, error) {
	pages, err := h.store.PagesByType(ctx, glubblog.StageLive, glubblog.TypeBlogHolder)
	if err != nil {
		return glubblog.BlogHolder{}, err
	}
	for _, p := range pages {
		if p.URLSegment == segment {
			bh, _ := glubblog.AsBlogHolder(p)
			return bh, nil
		}
	}
	return glubblog.BlogHolder{}, errors.Wrapf(glubblog.ErrNotFound, "blog %q", segment)
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	pages, err := h.store.PagesByType(r.Context(), glubblog.StageLive, glubblog.TypeBlogHolder)
	if err != nil {
		h.fail(w, err)
		return
	}
	if len(pages) == 0 {
		http.NotFound(w, r)
		return
	}
	bh, _ := glubblog.AsBlogHolder(pages[0])
	http.Redirect(w, r, bh.Link(), http.StatusFound)
}

// request resolves the holder, route and principal of r.
func (h *handler) request(r *http.Request) (glubblog.BlogHolder, glubblog.Route, glubblog.Principal, error) {
	var route glubblog.Route
	bh, err := h.findHolder(r.Context(), chi.URLParam(r, "segment"))
	if err != nil {
		return bh, route, glubblog.Anonymous, err
	}
	route = glubblog.ParseRoute(chi.URLParam(r, "*"))
	if r.URL.RawPath != "" {
		// chi routed on the escaped path
		for _, part := range []*string{&route.Action, &route.ID, &route.OtherID} {
			if *part, err = url.PathUnescape(*part); err != nil {
				return bh, route, glubblog.Anonymous, errors.Wrapf(glubblog.ErrNotFound, "bad path: %v", err)
			}
		}
	}
	viewer, err := h.principal(r)
	return bh, route, viewer, err
}

func (h *handler) serveHolder(w http.ResponseWriter, r *http.Request) {
	bh, route, viewer, err := h.request(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	action := route.ActionName()
	if _, declared := glubblog.AllowedActions[action]; declared {
		if err := glubblog.CheckAction(action, viewer); err != nil {
			h.fail(w, err)
			return
		}
	}
	switch action {
	case glubblog.ActionMetaWeblog:
		h.httpError(w, http.StatusNotImplemented, errors.New("metaweblog API is not supported"))
		return
	case glubblog.ActionPostBlog, glubblog.ActionEntryForm:
		w.Header().Set("Allow", http.MethodPost)
		h.httpError(w, http.StatusMethodNotAllowed, errors.Errorf("%s needs POST", action))
		return
	}

	v, err := glubblog.LoadHolderView(r.Context(), h.store, bh, route, viewer)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, r, v)
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, v glubblog.HolderView) {
	tmpl, err := parseTemplates(siteFS(r.Context()))
	if err != nil {
		h.httpError(w, http.StatusInternalServerError, err)
		return
	}
	buf := bytes.Buffer{}
	if err := tmpl.ExecuteTemplate(&buf, "main", v); err != nil {
		h.httpError(w, http.StatusInternalServerError, errors.Wrapf(err, "template execution failed: %q\n%s", r.URL.Path, tmpl.DefinedTemplates()))
		return
	}
	tbuf := bytes.Buffer{}
	if err := tidyhtml.Copy(&tbuf, &buf); err != nil {
		h.httpError(w, http.StatusInternalServerError, errors.Wrapf(err, "tidyhtml failed: %q", r.URL.Path))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	modtime := v.ModTime
	if v.IsPost || !v.Viewer.IsAnonymous() {
		// personalised pages must not be answered with 304
		modtime = time.Time{}
	}
	http.ServeContent(w, r, "", modtime, bytes.NewReader(tbuf.Bytes()))
}

// submitEntry handles the entry form: it writes and publishes a new entry.
func (h *handler) submitEntry(w http.ResponseWriter, r *http.Request) {
	bh, route, viewer, err := h.request(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	action := route.ActionName()
	if action != glubblog.ActionPostBlog && action != glubblog.ActionEntryForm {
		w.Header().Set("Allow", http.MethodGet)
		h.httpError(w, http.StatusMethodNotAllowed, errors.Errorf("%s does not accept POST", action))
		return
	}
	if err := glubblog.CheckAction(action, viewer); err != nil {
		h.fail(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.httpError(w, http.StatusBadRequest, errors.Wrap(err, "Cannot parse form"))
		return
	}

	title := strings.TrimSpace(glubblog.SanitizeText(r.PostForm.Get("Title")))
	if title == "" {
		h.httpError(w, http.StatusBadRequest, errors.New("entry without title"))
		return
	}
	author := viewer.Name
	if custom := strings.TrimSpace(glubblog.SanitizeText(r.PostForm.Get("Author"))); custom != "" && glubblog.CanSetAuthor(bh, viewer) {
		author = custom
	}

	siblings, err := h.store.Children(r.Context(), glubblog.StageDraft, bh.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	entry := glubblog.Page{
		ParentID:   bh.ID,
		Type:       glubblog.TypeBlogEntry,
		Title:      title,
		URLSegment: uniqueSegment(glubblog.URLSegment(title), siblings),
		Tags:       glubblog.SanitizeText(r.PostForm.Get("Tags")),
		Content:    r.PostForm.Get("Content"),
		Author:     author,
		Date:       glubblog.GCTime(time.Now()),
	}
	if !bh.CanContain(entry) {
		h.fail(w, errors.Wrapf(glubblog.ErrChildNotAllowed, "%s below %s", entry.Type, bh.Type))
		return
	}
	if err := h.store.WritePage(r.Context(), &entry); err != nil {
		h.fail(w, err)
		return
	}
	if err := h.store.Publish(r.Context(), entry.ID); err != nil {
		h.fail(w, err)
		return
	}
	h.log.Info("Entry posted",
		zap.String("blog", bh.URLSegment),
		zap.String("entry", entry.URLSegment),
		zap.String("member", viewer.ID))
	http.Redirect(w, r, bh.EntryLink(entry), http.StatusSeeOther)
}

// uniqueSegment appends a counter to segment until no sibling uses it.
// Segments that collide with an action are treated as taken.
func uniqueSegment(segment string, siblings []glubblog.Page) string {
	if segment == "" {
		segment = "entry"
	}
	taken := map[string]bool{}
	for a := range glubblog.AllowedActions {
		taken[string(a)] = true
	}
	for _, s := range siblings {
		taken[s.URLSegment] = true
	}
	ret := segment
	for i := 2; taken[ret]; i++ {
		ret = fmt.Sprintf("%s-%d", segment, i)
	}
	return ret
}
