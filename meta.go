package glubblog

import (
	"strings"
	"time"
)

// PageType names the kind of a node in the page tree.
type PageType string

const (
	TypeBlogHolder PageType = "BlogHolder"
	TypeBlogEntry  PageType = "BlogEntry"
)

// Stage is one of the two persisted states of a page.
type Stage string

const (
	StageDraft Stage = "Stage"
	StageLive  Stage = "Live"
)

type GCTime time.Time

const GCTimeLayout = "2006-01-02 15:04"

func (t *GCTime) UnmarshalJSON(b []byte) error {
	tmp, err := time.Parse(GCTimeLayout, strings.Trim(string(b), "\""))
	*t = GCTime(tmp)
	return err
}

func (t GCTime) String() string {
	return time.Time(t).Format(GCTimeLayout)
}
func (t GCTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Node is the capability set shared by everything stored in the page tree.
type Node interface {
	NodeID() string
	NodeParent() string
	NodeType() PageType
}

// Page is a generic page tree record. Blog is only set on blog holders.
type Page struct {
	ID         string
	ParentID   string `json:",omitempty"`
	Type       PageType
	Title      string
	URLSegment string
	Content    string `json:",omitempty"`
	Tags       string `json:",omitempty"`
	Author     string `json:",omitempty"`
	Date       GCTime
	SideBarID  string      `json:",omitempty"`
	Blog       *BlogConfig `json:",omitempty"`
}

func (p Page) NodeID() string {
	return p.ID
}
func (p Page) NodeParent() string {
	return p.ParentID
}
func (p Page) NodeType() PageType {
	return p.Type
}

// TagList splits the comma separated tag field, dropping empty tags.
func (p Page) TagList() []string {
	var ret []string
	for _, t := range strings.Split(p.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			ret = append(ret, t)
		}
	}
	return ret
}

// HasTag compares case insensitively.
func (p Page) HasTag(tag string) bool {
	for _, t := range p.TagList() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
