package glubblog

import (
	"html"
	"strings"
)

// Route is the part of a request path below a blog holder:
// Action/ID/OtherID.
type Route struct {
	Action  string
	ID      string
	OtherID string
}

// ParseRoute decomposes the path below the holder. Segments past the third are ignored.
func ParseRoute(rest string) Route {
	var r Route
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 4)
	for i, p := range parts {
		switch i {
		case 0:
			r.Action = p
		case 1:
			r.ID = p
		case 2:
			r.OtherID = p
		}
	}
	return r
}

// ActionName is the declared action r resolves to. An empty action is index.
func (r Route) ActionName() Action {
	if r.Action == "" {
		return ActionIndex
	}
	return Action(r.Action)
}

// IsOwner reports whether p may manage blogs. Only the global roles count,
// the OwnerID of a particular blog is not consulted.
func IsOwner(p Principal) bool {
	return p.Roles.Has(RoleAdmin) || p.Roles.Has(RoleBlogManagement)
}

func IsPostAction(r Route) bool {
	return r.Action == string(ActionPost)
}

// CurrentTagFilter returns the tag of a tag route, escaped for use in markup.
func CurrentTagFilter(r Route) (string, bool) {
	if r.Action != string(ActionTag) || r.ID == "" {
		return "", false
	}
	return html.EscapeString(r.ID), true
}

// CanSetAuthor reports whether p may enter an author other than itself on
// entries of h.
func CanSetAuthor(h BlogHolder, p Principal) bool {
	return p.Roles.Has(RoleAdmin) || h.Config.AllowCustomAuthors
}
