// Package backend opens the storage behind a blog: the page tree and the
// member directory.
package backend

import (
	"context"
	"io"
	"strings"

	"github.com/lemmi/glubblog"
	"github.com/lemmi/glubblog/backend/memory"
	"github.com/lemmi/glubblog/backend/sqlite"
	"github.com/pkg/errors"
)

type Backend interface {
	glubblog.PageStore
	glubblog.Directory
	io.Closer
}

// Open opens the backend described by dsn. "memory:" is a fresh in-memory
// store, "sqlite:<path>" or a bare path is a sqlite database.
func Open(ctx context.Context, dsn string) (Backend, error) {
	scheme, rest, found := strings.Cut(dsn, ":")
	if !found {
		scheme, rest = "sqlite", dsn
	}
	switch scheme {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		if rest == "" {
			return nil, errors.Errorf("missing database path in %q", dsn)
		}
		s, err := sqlite.Open(ctx, rest)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.Errorf("unknown backend %q", scheme)
}
