package main

import (
	"net/http"
	"path"
	"strings"
)

// The StaticHandler behaves like http.ServeContent without directory listings
// or dotfiles. It serves from the site filesystem of the request.
type StaticHandler struct {
	prefix string
}

// Serve the file requested by r. Error 404 on directory access.
func (sh StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, part := range strings.Split(r.URL.Path, "/") {
		if strings.HasPrefix(part, ".") {
			http.Error(w, r.URL.Path, http.StatusNotFound)
			return
		}
	}
	f, err := sh.Open(siteFS(r.Context()), r.URL.Path)
	if err != nil {
		http.Error(w, r.URL.Path, http.StatusNotFound)
		return
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		http.Error(w, r.URL.Path, http.StatusInternalServerError)
		return
	}
	if stat.IsDir() {
		http.Error(w, r.URL.Path, http.StatusNotFound)
		return
	}
	if etag := siteETag(r.Context()); etag != "" {
		w.Header().Set("ETag", etag)
	}
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}

// Return a new StaticHandler with new root directory.
func (sh StaticHandler) Cd(dir string) StaticHandler {
	sh.prefix = path.Join(sh.prefix, path.Clean("/"+dir))
	return sh
}

func (sh StaticHandler) Open(fs http.FileSystem, name string) (http.File, error) {
	return fs.Open(path.Join("/", sh.prefix, path.Clean("/"+name)))
}
