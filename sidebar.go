package glubblog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type WidgetType string

const (
	WidgetBlogManagement WidgetType = "BlogManagementWidget"
	WidgetTagCloud       WidgetType = "TagCloudWidget"
	WidgetArchive        WidgetType = "ArchiveWidget"
)

// DefaultWidgets is the sidebar of a freshly installed blog, in display order.
var DefaultWidgets = []WidgetType{
	WidgetBlogManagement,
	WidgetTagCloud,
	WidgetArchive,
}

type Widget struct {
	ID     string
	AreaID string
	Type   WidgetType
	Sort   int
}

type TagCount struct {
	Tag   string
	Count int
}

// TagCloud counts the tags of entries. Tags differing only in case are
// counted together under the first spelling seen.
func TagCloud(entries Entries) []TagCount {
	idx := map[string]int{}
	var ret []TagCount
	for _, e := range entries {
		for _, t := range e.Tags() {
			key := strings.ToLower(t)
			i, ok := idx[key]
			if !ok {
				i = len(ret)
				idx[key] = i
				ret = append(ret, TagCount{Tag: t})
			}
			ret[i].Count++
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Count != ret[j].Count {
			return ret[i].Count > ret[j].Count
		}
		return strings.ToLower(ret[i].Tag) < strings.ToLower(ret[j].Tag)
	})
	return ret
}

type ArchiveMonth struct {
	Year  int
	Month time.Month
	Count int
}

func (a ArchiveMonth) Link(h BlogHolder) string {
	return h.Link(string(ActionDate), strconv.Itoa(a.Year), fmt.Sprintf("%02d", int(a.Month)))
}

func (a ArchiveMonth) String() string {
	return fmt.Sprintf("%s %d", a.Month, a.Year)
}

// Archive groups entries by month, newest month first.
func Archive(entries Entries) []ArchiveMonth {
	var ret []ArchiveMonth
	idx := map[int]int{}
	for _, e := range entries {
		d := e.Date()
		key := d.Year()*100 + int(d.Month())
		i, ok := idx[key]
		if !ok {
			i = len(ret)
			idx[key] = i
			ret = append(ret, ArchiveMonth{Year: d.Year(), Month: d.Month()})
		}
		ret[i].Count++
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Year != ret[j].Year {
			return ret[i].Year > ret[j].Year
		}
		return ret[i].Month > ret[j].Month
	})
	return ret
}
