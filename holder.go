package glubblog

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// BlogConfig holds the per blog settings edited in the CMS.
type BlogConfig struct {
	TrackbacksEnabled  bool
	AllowCustomAuthors bool
	OwnerID            string `json:",omitempty"`
}

// BlogHolder is a page that lists blog entries. Only entries may be its children.
type BlogHolder struct {
	Page
	Config BlogConfig
}

func NewBlogHolder(title, segment string) BlogHolder {
	return BlogHolder{
		Page: Page{
			Type:       TypeBlogHolder,
			Title:      title,
			URLSegment: segment,
		},
	}
}

// AsBlogHolder converts a stored page. The second value is false for other page types.
func AsBlogHolder(p Page) (BlogHolder, bool) {
	if p.Type != TypeBlogHolder {
		return BlogHolder{}, false
	}
	h := BlogHolder{Page: p}
	if p.Blog != nil {
		h.Config = *p.Blog
	}
	h.Page.Blog = nil
	return h, true
}

// ToPage returns the storable page with the config attached.
func (h BlogHolder) ToPage() Page {
	p := h.Page
	p.Type = TypeBlogHolder
	cfg := h.Config
	p.Blog = &cfg
	return p
}

func (h BlogHolder) AllowedChildren() []PageType {
	return []PageType{TypeBlogEntry}
}

func (h BlogHolder) CanContain(n Node) bool {
	for _, t := range h.AllowedChildren() {
		if n.NodeType() == t {
			return true
		}
	}
	return false
}

// BlogHolderIDs lists the holders whose entries this page shows.
func (h BlogHolder) BlogHolderIDs() []string {
	return []string{h.ID}
}

// Link returns the URL of the holder, with the optional action path appended.
func (h BlogHolder) Link(action ...string) string {
	link := path.Join(append([]string{"/", h.URLSegment}, action...)...)
	if len(action) == 0 && !strings.HasSuffix(link, "/") {
		link += "/"
	}
	return link
}

// PostURL is the link to the entry form.
func (h BlogHolder) PostURL() string {
	return h.Link(string(ActionPost))
}

// TagLink is the tag filter URL of tag. The tag is escaped as a single path segment.
func (h BlogHolder) TagLink(tag string) string {
	return h.Link() + string(ActionTag) + "/" + url.PathEscape(tag)
}

func (h BlogHolder) EntryLink(e Page) string {
	return h.Link(e.URLSegment)
}

// ApplyFields stores submitted CMS field values. Names not in values are left untouched.
func (h *BlogHolder) ApplyFields(values map[string]string) {
	for name, v := range values {
		switch name {
		case "Title":
			h.Title = v
		case "URLSegment":
			h.URLSegment = URLSegment(v)
		case "Content":
			h.Content = v
		case "TrackBacksEnabled":
			h.Config.TrackbacksEnabled = checked(v)
		case "AllowCustomAuthors":
			h.Config.AllowCustomAuthors = checked(v)
		case "OwnerID":
			h.Config.OwnerID = v
		}
	}
}

func checked(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return strings.EqualFold(v, "on")
}
