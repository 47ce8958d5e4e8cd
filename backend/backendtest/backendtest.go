// Package backendtest checks that a backend keeps the storage contract the
// blog relies on.
package backendtest

import (
	"context"
	"testing"
	"time"

	"github.com/lemmi/glubblog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Backend interface {
	glubblog.PageStore
	glubblog.Directory
}

// Run runs the conformance tests. open must return an empty backend.
func Run(t *testing.T, open func(t *testing.T) Backend) {
	t.Run("Pages", func(t *testing.T) { testPages(t, open(t)) })
	t.Run("Publish", func(t *testing.T) { testPublish(t, open(t)) })
	t.Run("Widgets", func(t *testing.T) { testWidgets(t, open(t)) })
	t.Run("Members", func(t *testing.T) { testMembers(t, open(t)) })
	t.Run("Bootstrap", func(t *testing.T) { testBootstrap(t, open(t)) })
}

func testPages(t *testing.T, b Backend) {
	ctx := context.Background()

	holders, err := b.PagesByType(ctx, glubblog.StageDraft, glubblog.TypeBlogHolder)
	require.NoError(t, err)
	assert.NotNil(t, holders)
	assert.Empty(t, holders)

	date := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	h := glubblog.NewBlogHolder("Blog", "blog")
	h.Config = glubblog.BlogConfig{TrackbacksEnabled: true, OwnerID: "alice"}
	h.Date = glubblog.GCTime(date)
	hp := h.ToPage()
	require.NoError(t, b.WritePage(ctx, &hp))
	require.NotEmpty(t, hp.ID)

	got, err := b.Page(ctx, glubblog.StageDraft, hp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blog", got.Title)
	assert.True(t, date.Equal(time.Time(got.Date)))
	require.NotNil(t, got.Blog)
	assert.Equal(t, h.Config, *got.Blog)

	e := glubblog.Page{ParentID: hp.ID, Type: glubblog.TypeBlogEntry, Title: "First", URLSegment: "first", Tags: "go, blog"}
	require.NoError(t, b.WritePage(ctx, &e))
	children, err := b.Children(ctx, glubblog.StageDraft, hp.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "go, blog", children[0].Tags)
	assert.Nil(t, children[0].Blog)

	e.Title = "First, edited"
	require.NoError(t, b.WritePage(ctx, &e))
	got, err = b.Page(ctx, glubblog.StageDraft, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "First, edited", got.Title)

	// 00:30 in UTC+2 is still the previous month in UTC.
	local := time.Date(2024, 6, 1, 0, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	z := glubblog.Page{ParentID: hp.ID, Type: glubblog.TypeBlogEntry, Title: "Zoned", URLSegment: "zoned", Date: glubblog.GCTime(local)}
	require.NoError(t, b.WritePage(ctx, &z))
	got, err = b.Page(ctx, glubblog.StageDraft, z.ID)
	require.NoError(t, err)
	gotDate := time.Time(got.Date)
	assert.True(t, local.Equal(gotDate))
	assert.Equal(t, time.June, gotDate.Month())
	assert.Equal(t, 0, gotDate.Hour())
	assert.Equal(t, "2024-06-01 00:30", got.Date.String())

	_, err = b.Page(ctx, glubblog.StageDraft, "missing")
	assert.True(t, glubblog.IsNotFound(err), "got %v", err)
}

func testPublish(t *testing.T, b Backend) {
	ctx := context.Background()

	p := glubblog.Page{Type: glubblog.TypeBlogEntry, Title: "Draft"}
	require.NoError(t, b.WritePage(ctx, &p))

	_, err := b.Page(ctx, glubblog.StageLive, p.ID)
	assert.True(t, glubblog.IsNotFound(err), "unpublished page is live: %v", err)

	require.NoError(t, b.Publish(ctx, p.ID))
	live, err := b.Page(ctx, glubblog.StageLive, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", live.Title)

	p.Title = "Edited"
	require.NoError(t, b.WritePage(ctx, &p))
	live, err = b.Page(ctx, glubblog.StageLive, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", live.Title, "draft edits must not reach live before publishing")

	require.NoError(t, b.Publish(ctx, p.ID))
	live, err = b.Page(ctx, glubblog.StageLive, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", live.Title)

	err = b.Publish(ctx, "missing")
	assert.True(t, glubblog.IsNotFound(err), "got %v", err)
}

func testWidgets(t *testing.T, b Backend) {
	ctx := context.Background()

	area, err := b.CreateWidgetArea(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, area)

	ws, err := b.Widgets(ctx, area)
	require.NoError(t, err)
	assert.Empty(t, ws)

	for i, typ := range []glubblog.WidgetType{glubblog.WidgetArchive, glubblog.WidgetTagCloud} {
		w := glubblog.Widget{AreaID: area, Type: typ, Sort: 2 - i}
		require.NoError(t, b.WriteWidget(ctx, &w))
		assert.NotEmpty(t, w.ID)
	}
	ws, err = b.Widgets(ctx, area)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, glubblog.WidgetTagCloud, ws[0].Type)
	assert.Equal(t, glubblog.WidgetArchive, ws[1].Type)

	err = b.WriteWidget(ctx, &glubblog.Widget{AreaID: "missing", Type: glubblog.WidgetArchive})
	assert.True(t, glubblog.IsNotFound(err), "got %v", err)
}

func testMembers(t *testing.T, b Backend) {
	ctx := context.Background()

	admins, err := b.MembersWithRole(ctx, glubblog.RoleAdmin)
	require.NoError(t, err)
	assert.NotNil(t, admins)
	assert.Empty(t, admins)

	require.NoError(t, b.SaveMember(ctx, glubblog.Principal{
		ID: "alice", Name: "Alice", Email: "alice@example.org",
		Roles: glubblog.NewRoleSet(glubblog.RoleAdmin, glubblog.RoleBlogManagement),
	}))
	require.NoError(t, b.SaveMember(ctx, glubblog.Principal{
		ID: "bob", Name: "Bob", Roles: glubblog.NewRoleSet(glubblog.RoleBlogManagement),
	}))
	require.NoError(t, b.SaveMember(ctx, glubblog.Principal{ID: "carol", Name: "Carol"}))

	admins, err = b.MembersWithRole(ctx, glubblog.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "alice", admins[0].ID)
	assert.True(t, admins[0].Roles.Has(glubblog.RoleBlogManagement))

	managers, err := b.MembersWithRole(ctx, glubblog.RoleBlogManagement)
	require.NoError(t, err)
	assert.Len(t, managers, 2)

	carol, err := b.Member(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "Carol", carol.Name)
	assert.Empty(t, carol.Roles)

	bob, err := b.Member(ctx, "bob")
	require.NoError(t, err)
	bob.Roles = glubblog.NewRoleSet()
	require.NoError(t, b.SaveMember(ctx, bob))
	managers, err = b.MembersWithRole(ctx, glubblog.RoleBlogManagement)
	require.NoError(t, err)
	assert.Len(t, managers, 1)

	_, err = b.Member(ctx, "dave")
	assert.True(t, glubblog.IsNotFound(err), "got %v", err)
}

func testBootstrap(t *testing.T, b Backend) {
	ctx := context.Background()
	boot := glubblog.Bootstrapper{Store: b}

	created, err := boot.Run(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	holders, err := b.PagesByType(ctx, glubblog.StageLive, glubblog.TypeBlogHolder)
	require.NoError(t, err)
	require.Len(t, holders, 1)
	assert.Equal(t, "blog", holders[0].URLSegment)

	entries, err := b.Children(ctx, glubblog.StageLive, holders[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, glubblog.SampleEntrySegment, entries[0].URLSegment)

	widgets, err := b.Widgets(ctx, holders[0].SideBarID)
	require.NoError(t, err)
	assert.Len(t, widgets, 3)

	created, err = boot.Run(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	holders, err = b.PagesByType(ctx, glubblog.StageDraft, glubblog.TypeBlogHolder)
	require.NoError(t, err)
	assert.Len(t, holders, 1)
}
