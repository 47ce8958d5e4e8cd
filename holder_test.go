package glubblog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogHolderPage(t *testing.T) {
	h := NewBlogHolder("Blog", "blog")
	h.ID = "h1"
	h.Config = BlogConfig{TrackbacksEnabled: true, OwnerID: "2"}

	p := h.ToPage()
	assert.Equal(t, TypeBlogHolder, p.Type)
	require.NotNil(t, p.Blog)
	assert.Equal(t, h.Config, *p.Blog)

	back, ok := AsBlogHolder(p)
	require.True(t, ok)
	assert.Equal(t, h.Config, back.Config)
	assert.Nil(t, back.Page.Blog)

	_, ok = AsBlogHolder(Page{Type: TypeBlogEntry})
	assert.False(t, ok)

	noCfg, ok := AsBlogHolder(Page{Type: TypeBlogHolder})
	require.True(t, ok)
	assert.Equal(t, BlogConfig{}, noCfg.Config)
}

func TestBlogHolderChildren(t *testing.T) {
	h := NewBlogHolder("Blog", "blog")
	assert.Equal(t, []PageType{TypeBlogEntry}, h.AllowedChildren())
	assert.True(t, h.CanContain(Page{Type: TypeBlogEntry}))
	assert.False(t, h.CanContain(Page{Type: TypeBlogHolder}))
	assert.False(t, h.CanContain(NewBlogHolder("Other", "other")))
}

func TestBlogHolderLinks(t *testing.T) {
	h := NewBlogHolder("Blog", "blog")
	h.ID = "h1"
	assert.Equal(t, "/blog/", h.Link())
	assert.Equal(t, "/blog/post", h.PostURL())
	assert.Equal(t, "/blog/tag/go", h.Link("tag", "go"))
	assert.Equal(t, "/blog/tag/a%2Fb", h.TagLink("a/b"))
	assert.Equal(t, "/blog/tag/r&d", h.TagLink("r&d"))
	assert.Equal(t, "/blog/first", h.EntryLink(Page{URLSegment: "first"}))
	assert.Equal(t, []string{"h1"}, h.BlogHolderIDs())
	assert.Equal(t, "/", NewBlogHolder("Root", "").Link())
}

func TestApplyFields(t *testing.T) {
	h := NewBlogHolder("Blog", "blog")
	h.ApplyFields(map[string]string{
		"Title":              "News",
		"URLSegment":         "Latest News",
		"TrackBacksEnabled":  "on",
		"AllowCustomAuthors": "1",
		"OwnerID":            "2",
		"Unknown":            "ignored",
	})
	assert.Equal(t, "News", h.Title)
	assert.Equal(t, "latest-news", h.URLSegment)
	assert.Equal(t, BlogConfig{TrackbacksEnabled: true, AllowCustomAuthors: true, OwnerID: "2"}, h.Config)

	h.ApplyFields(map[string]string{"TrackBacksEnabled": "0", "OwnerID": ""})
	assert.False(t, h.Config.TrackbacksEnabled)
	assert.True(t, h.Config.AllowCustomAuthors)
	assert.Empty(t, h.Config.OwnerID)
}

func TestEditorFields(t *testing.T) {
	ctx := context.Background()
	dir := fakeDirectory{byRole: map[Role][]Principal{
		RoleAdmin:          {carol},
		RoleBlogManagement: {bob, carol},
	}}
	h := NewBlogHolder("Blog", "blog")
	h.Config = BlogConfig{AllowCustomAuthors: true, OwnerID: "2"}

	fs, err := NewEditor(NewOwnerResolver(dir)).Fields(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "URLSegment", "Content", "TrackBacksEnabled", "OwnerID", "AllowCustomAuthors"}, fs.Names())

	owner, ok := fs.Field("OwnerID")
	require.True(t, ok)
	assert.Equal(t, FieldDropdown, owner.Kind)
	assert.Equal(t, TabMain, owner.Tab)
	assert.Equal(t, "2", owner.Value)
	assert.Equal(t, []Option{{"", "None"}, {"2", "Bob"}, {"3", "Carol"}}, owner.Options)

	tb, _ := fs.Field("TrackBacksEnabled")
	assert.Equal(t, "Enable TrackBacks", tb.Label)
	assert.Equal(t, "0", tb.Value)
	ca, _ := fs.Field("AllowCustomAuthors")
	assert.Equal(t, "1", ca.Value)
}

func TestEditorTransforms(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(NewOwnerResolver(fakeDirectory{}))
	var order []string
	e.UpdateCMSFields(func(fs EditableFieldSet) EditableFieldSet {
		order = append(order, "first")
		fs.AddFieldToTab("Root.Content.Extra", Field{Name: "Subtitle", Kind: FieldText})
		return fs
	})
	e.UpdateCMSFields(func(fs EditableFieldSet) EditableFieldSet {
		order = append(order, "second")
		_, ok := fs.Field("Subtitle")
		assert.True(t, ok, "transforms see the changes of earlier ones")
		fs.RemoveField("Content")
		return fs
	})

	fs, err := e.Fields(ctx, NewBlogHolder("Blog", "blog"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	_, ok := fs.Field("Content")
	assert.False(t, ok)
	sub, ok := fs.Field("Subtitle")
	require.True(t, ok)
	assert.Equal(t, "Root.Content.Extra", sub.Tab)

	owner, _ := fs.Field("OwnerID")
	assert.Equal(t, []Option{{"", "None"}}, owner.Options)

	_, err = e.Fields(ctx, NewBlogHolder("Blog", "blog"))
	require.NoError(t, err)
	assert.Len(t, order, 4, "transforms run once per call")
}

func TestFieldSetRemove(t *testing.T) {
	var fs EditableFieldSet
	fs.AddFieldToTab(TabMain, Field{Name: "A"})
	fs.AddFieldToTab(TabMain, Field{Name: "B"})
	cp := fs
	assert.True(t, fs.RemoveField("A"))
	assert.False(t, fs.RemoveField("A"))
	assert.Equal(t, []string{"B"}, fs.Names())
	assert.Equal(t, []string{"A", "B"}, cp.Names())
}

func TestURLSegment(t *testing.T) {
	tests := map[string]string{
		"Hello World":       "hello-world",
		"Grüße aus Köln":    "gruesse-aus-koeln",
		"  Spaces & Co.!  ": "spaces-co",
		"2024: Review":      "2024-review",
		"Café":              "café",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, URLSegment(in), in)
	}
}
