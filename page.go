package glubblog

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// HolderView is everything the templates need to render a blog holder request.
// Content is set when the route names a single entry.
type HolderView struct {
	Holder   BlogHolder
	Route    Route
	Viewer   Principal
	Entries  Entries
	Content  *Entry
	Tag      string
	HasTag   bool
	IsPost   bool
	IsOwner  bool
	Widgets  []Widget
	TagCloud []TagCount
	Archive  []ArchiveMonth
	ModTime  time.Time
}

// TagHTML is the escaped tag filter.
func (v HolderView) TagHTML() template.HTML {
	return template.HTML(v.Tag)
}

// CustomAuthor reports whether the entry form offers an author field.
func (v HolderView) CustomAuthor() bool {
	return CanSetAuthor(v.Holder, v.Viewer)
}

func (v HolderView) HasWidget(t WidgetType) bool {
	for _, w := range v.Widgets {
		if w.Type == t {
			return true
		}
	}
	return false
}

// LoadHolderView reads the live entries and sidebar of h and applies the
// filters of r. A route whose action is not declared names an entry; if no
// entry has that URL segment ErrNotFound is returned.
func LoadHolderView(ctx context.Context, store PageStore, h BlogHolder, r Route, viewer Principal) (HolderView, error) {
	v := HolderView{
		Holder:  h,
		Route:   r,
		Viewer:  viewer,
		IsPost:  IsPostAction(r),
		IsOwner: IsOwner(viewer),
		ModTime: time.Time(h.Date),
	}
	v.Tag, v.HasTag = CurrentTagFilter(r)

	children, err := store.Children(ctx, StageLive, h.ID)
	if err != nil {
		return v, errors.Wrapf(err, "Cannot list entries of %q", h.URLSegment)
	}

	_, declared := AllowedActions[r.ActionName()]
	active := ""
	if !declared {
		active = r.Action
	}
	all := NewEntries(h, children, active)
	v.TagCloud = TagCloud(all)
	v.Archive = Archive(all)
	for _, e := range all {
		if e.Date().After(v.ModTime) {
			v.ModTime = e.Date()
		}
	}

	switch {
	case !declared:
		v.Content = all.Find(r.Action)
		if v.Content == nil {
			return v, errors.Wrapf(ErrNotFound, "entry %q", r.Action)
		}
		v.Entries = all
	case v.HasTag:
		v.Entries = all.FilterTag(r.ID)
	case r.ActionName() == ActionDate:
		v.Entries = filterDate(all, r)
	default:
		v.Entries = all
	}

	if h.SideBarID != "" {
		v.Widgets, err = store.Widgets(ctx, h.SideBarID)
		if err != nil {
			return v, errors.Wrapf(err, "Cannot load sidebar of %q", h.URLSegment)
		}
	}
	return v, nil
}

// filterDate applies a date/YYYY[/MM] route. Unparsable parts mean no filter.
func filterDate(e Entries, r Route) Entries {
	year, err := strconv.Atoi(r.ID)
	if err != nil {
		return e
	}
	month, err := strconv.Atoi(r.OtherID)
	if err != nil || month < 1 || month > 12 {
		month = 0
	}
	return e.FilterDate(year, time.Month(month))
}

// For debugging
func (v HolderView) Outline() string {
	buf := bytes.Buffer{}

	fmt.Fprintf(&buf, "Blog: %q (%s)\n", v.Holder.Title, v.Holder.Link())
	if v.HasTag {
		fmt.Fprintf(&buf, "Tag: %s\n", v.Tag)
	}
	fmt.Fprintln(&buf, "Entries:")
	for _, e := range v.Entries {
		fmt.Fprintf(&buf, "\t%q %s", e.Title(), GCTime(e.Date()))
		if e.Active() {
			fmt.Fprintf(&buf, " (active)")
		}
		fmt.Fprintln(&buf)
	}
	fmt.Fprintln(&buf, "Widgets:")
	for _, w := range v.Widgets {
		fmt.Fprintf(&buf, "\t%s\n", w.Type)
	}
	if len(v.TagCloud) > 0 {
		tags := make([]string, len(v.TagCloud))
		for i, t := range v.TagCloud {
			tags[i] = fmt.Sprintf("%s(%d)", t.Tag, t.Count)
		}
		fmt.Fprintf(&buf, "Tags: %s\n", strings.Join(tags, " "))
	}
	return buf.String()
}
