package glubblog

import (
	"html/template"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Entries []*Entry

func (e Entries) Len() int {
	return len(e)
}

// Newest first, title breaks ties.
func (e Entries) Less(i, j int) bool {
	di, dj := e[i].Date(), e[j].Date()
	if !di.Equal(dj) {
		return di.After(dj)
	}
	return e[i].Title() < e[j].Title()
}
func (e Entries) Swap(i, j int) {
	e[i], e[j] = e[j], e[i]
}

// Entry is a blog entry as shown below its holder.
type Entry struct {
	page       Page
	active     bool
	html       []byte
	link       string
	holder     BlogHolder
	next       *Entry
	prev       *Entry
	once       sync.Once
	renderHTML ContentRenderer
}

func (e *Entry) Active() bool {
	return e.active
}
func (e *Entry) Author() string {
	return e.page.Author
}
func (e *Entry) Date() time.Time {
	return time.Time(e.page.Date)
}
func (e *Entry) HTML() template.HTML {
	e.once.Do(func() {
		var err error
		e.html, err = e.renderHTML.Render()
		if err != nil {
			zap.L().Error("Cannot render entry", zap.String("id", e.page.ID), zap.Error(err))
		}
	})
	return template.HTML(e.html)
}
func (e *Entry) Link() string {
	return e.link
}

// TagLink is the tag filter URL of tag on the holder of e.
func (e *Entry) TagLink(tag string) string {
	return e.holder.TagLink(tag)
}
func (e *Entry) Page() Page {
	return e.page
}
func (e *Entry) Tags() []string {
	return e.page.TagList()
}
func (e *Entry) Title() string {
	return e.page.Title
}
func (e *Entry) URLSegment() string {
	return e.page.URLSegment
}

// Next is the next older entry.
func (e *Entry) Next() *Entry {
	return e.next
}

// Prev is the next newer entry.
func (e *Entry) Prev() *Entry {
	return e.prev
}

// NewEntries builds the sorted entry list of h from its child pages. Pages
// that are not blog entries are skipped. The entry with URL segment active
// is marked active.
func NewEntries(h BlogHolder, pages []Page, active string) Entries {
	ret := make(Entries, 0, len(pages))
	for _, p := range pages {
		if p.Type != TypeBlogEntry {
			continue
		}
		ret = append(ret, &Entry{
			page:       p,
			active:     active != "" && p.URLSegment == active,
			link:       h.EntryLink(p),
			holder:     h,
			renderHTML: entryRenderer{content: p.Content},
		})
	}
	sort.Sort(ret)
	for i := range ret {
		if i > 0 {
			ret[i].prev = ret[i-1]
		}
		if i < len(ret)-1 {
			ret[i].next = ret[i+1]
		}
	}
	return ret
}

func (e Entries) Find(segment string) *Entry {
	for _, v := range e {
		if v.URLSegment() == segment {
			return v
		}
	}
	return nil
}

func (e Entries) FilterTag(tag string) Entries {
	ret := Entries{}
	for _, v := range e {
		if v.page.HasTag(tag) {
			ret = append(ret, v)
		}
	}
	return ret
}

// FilterDate keeps the entries of a year, or of a single month if month is not zero.
func (e Entries) FilterDate(year int, month time.Month) Entries {
	ret := Entries{}
	for _, v := range e {
		d := v.Date()
		if d.Year() == year && (month == 0 || d.Month() == month) {
			ret = append(ret, v)
		}
	}
	return ret
}
