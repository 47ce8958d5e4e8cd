package glubblog

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnknownAction   = errors.New("unknown action")
	ErrChildNotAllowed = errors.New("child type not allowed")
)

// IsNotFound unwraps err and compares it against ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// Directory is the member and role lookup.
type Directory interface {
	// MembersWithRole returns every member holding role. No members is not an error.
	MembersWithRole(ctx context.Context, role Role) ([]Principal, error)
	Member(ctx context.Context, id string) (Principal, error)
	SaveMember(ctx context.Context, p Principal) error
}

// PageStore persists the page tree and the widget areas.
//
// WritePage always writes the draft stage and assigns an ID to new pages.
// Publish copies the draft of a page to the live stage.
type PageStore interface {
	WritePage(ctx context.Context, p *Page) error
	Publish(ctx context.Context, id string) error
	Page(ctx context.Context, stage Stage, id string) (Page, error)
	PagesByType(ctx context.Context, stage Stage, t PageType) ([]Page, error)
	Children(ctx context.Context, stage Stage, parentID string) ([]Page, error)

	CreateWidgetArea(ctx context.Context) (string, error)
	WriteWidget(ctx context.Context, w *Widget) error
	Widgets(ctx context.Context, areaID string) ([]Widget, error)
}
