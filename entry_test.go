package glubblog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) GCTime {
	return GCTime(time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
}

func testEntries() (BlogHolder, []Page) {
	h := NewBlogHolder("Blog", "blog")
	h.ID = "h"
	return h, []Page{
		{ID: "1", ParentID: "h", Type: TypeBlogEntry, Title: "Old", URLSegment: "old", Tags: "Go, news", Date: day(2023, 12, 24)},
		{ID: "2", ParentID: "h", Type: TypeBlogEntry, Title: "New", URLSegment: "new", Tags: "go", Date: day(2024, 5, 2)},
		{ID: "3", ParentID: "h", Type: TypeBlogEntry, Title: "Middle", URLSegment: "middle", Date: day(2024, 1, 10)},
		{ID: "4", ParentID: "h", Type: TypeBlogHolder, Title: "Not an entry", URLSegment: "nested"},
	}
}

func titles(e Entries) []string {
	ret := make([]string, len(e))
	for i, v := range e {
		ret[i] = v.Title()
	}
	return ret
}

func TestNewEntries(t *testing.T) {
	h, pages := testEntries()
	e := NewEntries(h, pages, "middle")

	assert.Equal(t, []string{"New", "Middle", "Old"}, titles(e))
	assert.True(t, e[1].Active())
	assert.False(t, e[0].Active())
	assert.Equal(t, "/blog/middle", e[1].Link())
	assert.Equal(t, "/blog/tag/go", e[0].TagLink("go"))
	assert.Equal(t, "/blog/tag/a%20b", e[0].TagLink("a b"))
	assert.Equal(t, h.TagLink("a/b"), e[0].TagLink("a/b"))

	assert.Nil(t, e[0].Prev())
	assert.Equal(t, e[1], e[0].Next())
	assert.Equal(t, e[1], e[2].Prev())
	assert.Nil(t, e[2].Next())

	assert.Equal(t, e[2], e.Find("old"))
	assert.Nil(t, e.Find("nested"))
}

func TestEntriesFilter(t *testing.T) {
	h, pages := testEntries()
	e := NewEntries(h, pages, "")

	assert.Equal(t, []string{"New", "Old"}, titles(e.FilterTag("GO")))
	assert.Equal(t, []string{"Old"}, titles(e.FilterTag("news")))
	assert.NotNil(t, e.FilterTag("missing"))
	assert.Empty(t, e.FilterTag("missing"))

	assert.Equal(t, []string{"New", "Middle"}, titles(e.FilterDate(2024, 0)))
	assert.Equal(t, []string{"Middle"}, titles(e.FilterDate(2024, time.January)))
	assert.Empty(t, e.FilterDate(2022, 0))
}

func TestSidebar(t *testing.T) {
	h, pages := testEntries()
	e := NewEntries(h, pages, "")

	assert.Equal(t, []TagCount{{"go", 2}, {"news", 1}}, TagCloud(e))
	assert.Empty(t, TagCloud(nil))

	archive := Archive(e)
	require.Len(t, archive, 3)
	assert.Equal(t, ArchiveMonth{2024, time.May, 1}, archive[0])
	assert.Equal(t, ArchiveMonth{2023, time.December, 1}, archive[2])
	assert.Equal(t, "/blog/date/2024/05", archive[0].Link(h))
	assert.Equal(t, "May 2024", archive[0].String())
}

func TestEntryHTML(t *testing.T) {
	h := NewBlogHolder("Blog", "blog")
	e := NewEntries(h, []Page{{
		Type:    TypeBlogEntry,
		Title:   "Markdown",
		Content: "# Heading\n\nSome *text* ![alt](/static/x.png)\n\n<script>alert(1)</script>\n\n[the CMS](admin)",
	}}, "")
	require.Len(t, e, 1)

	html := string(e[0].HTML())
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "<em>text</em>")
	assert.Contains(t, html, `title="alt"`)
	assert.Contains(t, html, `href="admin"`)
	assert.NotContains(t, html, "<script")
	assert.Equal(t, html, string(e[0].HTML()))
}

func TestPageTags(t *testing.T) {
	p := Page{Tags: " go,, News ,blog"}
	assert.Equal(t, []string{"go", "News", "blog"}, p.TagList())
	assert.True(t, p.HasTag("news"))
	assert.False(t, p.HasTag("new"))
	assert.Empty(t, Page{}.TagList())
}

func TestGCTime(t *testing.T) {
	d := day(2024, 5, 2)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-02 12:00"`, string(b))

	var back GCTime
	require.NoError(t, back.UnmarshalJSON(b))
	assert.True(t, time.Time(d).Equal(time.Time(back)))
	assert.Error(t, back.UnmarshalJSON([]byte(`"yesterday"`)))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Hello", strings.TrimSpace(SanitizeText("<b>Hello</b>")))
	assert.Equal(t, "Tom & Jerry's", SanitizeText("Tom & Jerry's"))
	assert.Equal(t, "r&d", SanitizeText("r&d"))
	assert.Equal(t, "a < b", SanitizeText("a < b"))
	assert.Equal(t, "x", SanitizeText("<script>alert(1)</script>x"))
}

func TestRenderSanitizes(t *testing.T) {
	out, err := entryRenderer{content: "hi <script>alert(1)</script>"}.Render()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
	assert.Contains(t, string(out), "hi")
}
