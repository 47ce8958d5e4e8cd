package glubblog

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultBlogTitle   = "Blog"
	DefaultBlogSegment = "blog"
	SampleEntrySegment = "sample-blog-entry"
)

// Bootstrapper seeds the default blog on installation. The sample entry is
// written in Language, English if unset. Now defaults to time.Now.
type Bootstrapper struct {
	Store    PageStore
	Language language.Tag
	Log      *zap.Logger
	Now      func() time.Time
}

// Run creates the default blog unless a blog holder already exists in the
// draft stage. It reports whether anything was created.
//
// The existence check and the writes are not atomic. Two concurrent first
// runs may both create a blog.
func (b Bootstrapper) Run(ctx context.Context) (bool, error) {
	created, err := b.run(ctx)
	return created, errors.Wrap(err, "bootstrap")
}

func (b Bootstrapper) run(ctx context.Context) (bool, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	holders, err := b.Store.PagesByType(ctx, StageDraft, TypeBlogHolder)
	if err != nil {
		return false, errors.Wrap(err, "Cannot look up blog holders")
	}
	// TODO: an orphaned holder left by an interrupted run still counts as installed.
	if len(holders) > 0 {
		log.Debug("Blog page exists", zap.String("id", holders[0].ID))
		return false, nil
	}

	areaID, err := b.Store.CreateWidgetArea(ctx)
	if err != nil {
		return false, errors.Wrap(err, "Cannot create widget area")
	}

	holder := NewBlogHolder(DefaultBlogTitle, DefaultBlogSegment)
	holder.SideBarID = areaID
	holder.Date = GCTime(now())
	hp := holder.ToPage()
	if err := b.Store.WritePage(ctx, &hp); err != nil {
		return false, errors.Wrap(err, "Cannot write blog holder")
	}
	if err := b.Store.Publish(ctx, hp.ID); err != nil {
		return false, errors.Wrap(err, "Cannot publish blog holder")
	}
	holder.Page.ID = hp.ID

	for i, t := range DefaultWidgets {
		w := Widget{AreaID: areaID, Type: t, Sort: i + 1}
		if err := b.Store.WriteWidget(ctx, &w); err != nil {
			return false, errors.Wrapf(err, "Cannot write %s", t)
		}
	}

	lang := b.Language
	if lang == language.Und {
		lang = language.English
	}
	p := message.NewPrinter(lang)
	entry := Page{
		ParentID:   hp.ID,
		Type:       TypeBlogEntry,
		Title:      p.Sprintf(msgSampleTitle),
		URLSegment: SampleEntrySegment,
		Tags:       p.Sprintf(msgSampleTags),
		Content:    p.Sprintf(msgSampleContent),
		Date:       GCTime(now()),
	}
	if !holder.CanContain(entry) {
		return false, errors.Wrapf(ErrChildNotAllowed, "%s below %s", entry.Type, holder.Type)
	}
	if err := b.Store.WritePage(ctx, &entry); err != nil {
		return false, errors.Wrap(err, "Cannot write sample entry")
	}
	if err := b.Store.Publish(ctx, entry.ID); err != nil {
		return false, errors.Wrap(err, "Cannot publish sample entry")
	}

	log.Info("Blog page created", zap.String("id", hp.ID), zap.String("segment", hp.URLSegment))
	return true, nil
}
