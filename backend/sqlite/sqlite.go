// Package sqlite persists the page tree and the directory in a sqlite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lemmi/glubblog"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

// Open opens the database at path and applies the pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open database: %q", path)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "Cannot open database: %q", path)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "Cannot read migrations")
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return errors.Wrap(err, "Cannot set up migrations")
	}
	if _, err := provider.Up(ctx); err != nil {
		return errors.Wrap(err, "Cannot apply migrations")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const pageColumns = `id, stage, parent_id, type, title, url_segment, content, tags, author, date,
	sidebar_id, has_blog, trackbacks_enabled, allow_custom_authors, owner_id`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPage(row scanner) (glubblog.Page, error) {
	var (
		p       glubblog.Page
		stage   string
		date    string
		hasBlog bool
		cfg     glubblog.BlogConfig
	)
	err := row.Scan(&p.ID, &stage, &p.ParentID, &p.Type, &p.Title, &p.URLSegment, &p.Content,
		&p.Tags, &p.Author, &date, &p.SideBarID, &hasBlog,
		&cfg.TrackbacksEnabled, &cfg.AllowCustomAuthors, &cfg.OwnerID)
	if err != nil {
		return p, err
	}
	if date != "" {
		t, err := time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return p, errors.Wrapf(err, "Cannot parse date of page %q", p.ID)
		}
		p.Date = glubblog.GCTime(t)
	}
	if hasBlog {
		p.Blog = &cfg
	}
	return p, nil
}

// formatDate keeps the UTC offset, so the wall clock of a date survives a round trip.
func formatDate(t glubblog.GCTime) string {
	if time.Time(t).IsZero() {
		return ""
	}
	return time.Time(t).Format(time.RFC3339Nano)
}

func (s *Store) WritePage(ctx context.Context, p *glubblog.Page) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var cfg glubblog.BlogConfig
	if p.Blog != nil {
		cfg = *p.Blog
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO pages (`+pageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id, stage) DO UPDATE SET
			parent_id = excluded.parent_id,
			type = excluded.type,
			title = excluded.title,
			url_segment = excluded.url_segment,
			content = excluded.content,
			tags = excluded.tags,
			author = excluded.author,
			date = excluded.date,
			sidebar_id = excluded.sidebar_id,
			has_blog = excluded.has_blog,
			trackbacks_enabled = excluded.trackbacks_enabled,
			allow_custom_authors = excluded.allow_custom_authors,
			owner_id = excluded.owner_id`,
		p.ID, string(glubblog.StageDraft), p.ParentID, string(p.Type), p.Title, p.URLSegment,
		p.Content, p.Tags, p.Author, formatDate(p.Date), p.SideBarID, p.Blog != nil,
		cfg.TrackbacksEnabled, cfg.AllowCustomAuthors, cfg.OwnerID)
	return errors.Wrapf(err, "Cannot write page %q", p.ID)
}

func (s *Store) Publish(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO pages (`+pageColumns+`)
		SELECT id, ?, parent_id, type, title, url_segment, content, tags, author, date,
			sidebar_id, has_blog, trackbacks_enabled, allow_custom_authors, owner_id
		FROM pages WHERE id = ? AND stage = ?
		ON CONFLICT (id, stage) DO UPDATE SET
			parent_id = excluded.parent_id,
			type = excluded.type,
			title = excluded.title,
			url_segment = excluded.url_segment,
			content = excluded.content,
			tags = excluded.tags,
			author = excluded.author,
			date = excluded.date,
			sidebar_id = excluded.sidebar_id,
			has_blog = excluded.has_blog,
			trackbacks_enabled = excluded.trackbacks_enabled,
			allow_custom_authors = excluded.allow_custom_authors,
			owner_id = excluded.owner_id`,
		string(glubblog.StageLive), id, string(glubblog.StageDraft))
	if err != nil {
		return errors.Wrapf(err, "Cannot publish page %q", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "Cannot publish page %q", id)
	}
	if n == 0 {
		return errors.Wrapf(glubblog.ErrNotFound, "page %q", id)
	}
	return nil
}

func (s *Store) Page(ctx context.Context, stage glubblog.Stage, id string) (glubblog.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ? AND stage = ?`,
		id, string(stage))
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return p, errors.Wrapf(glubblog.ErrNotFound, "page %q in %s", id, stage)
	}
	return p, errors.Wrapf(err, "Cannot read page %q", id)
}

func (s *Store) queryPages(ctx context.Context, where string, args ...interface{}) ([]glubblog.Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE `+where+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot query pages")
	}
	defer rows.Close()

	ret := []glubblog.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, errors.Wrap(err, "Cannot read page")
		}
		ret = append(ret, p)
	}
	return ret, errors.Wrap(rows.Err(), "Cannot query pages")
}

func (s *Store) PagesByType(ctx context.Context, stage glubblog.Stage, t glubblog.PageType) ([]glubblog.Page, error) {
	return s.queryPages(ctx, `stage = ? AND type = ?`, string(stage), string(t))
}

func (s *Store) Children(ctx context.Context, stage glubblog.Stage, parentID string) ([]glubblog.Page, error) {
	return s.queryPages(ctx, `stage = ? AND parent_id = ?`, string(stage), parentID)
}

func (s *Store) CreateWidgetArea(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO widget_areas (id) VALUES (?)`, id); err != nil {
		return "", errors.Wrap(err, "Cannot create widget area")
	}
	return id, nil
}

func (s *Store) areaExists(ctx context.Context, areaID string) error {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM widget_areas WHERE id = ?`, areaID).Scan(&n)
	if err != nil {
		return errors.Wrapf(err, "Cannot read widget area %q", areaID)
	}
	if n == 0 {
		return errors.Wrapf(glubblog.ErrNotFound, "widget area %q", areaID)
	}
	return nil
}

func (s *Store) WriteWidget(ctx context.Context, w *glubblog.Widget) error {
	if err := s.areaExists(ctx, w.AreaID); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO widgets (id, area_id, type, sort) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET area_id = excluded.area_id, type = excluded.type, sort = excluded.sort`,
		w.ID, w.AreaID, string(w.Type), w.Sort)
	return errors.Wrapf(err, "Cannot write widget %q", w.ID)
}

func (s *Store) Widgets(ctx context.Context, areaID string) ([]glubblog.Widget, error) {
	if err := s.areaExists(ctx, areaID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, area_id, type, sort FROM widgets
		WHERE area_id = ? ORDER BY sort, rowid`, areaID)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot query widgets of %q", areaID)
	}
	defer rows.Close()

	ret := []glubblog.Widget{}
	for rows.Next() {
		var w glubblog.Widget
		if err := rows.Scan(&w.ID, &w.AreaID, &w.Type, &w.Sort); err != nil {
			return nil, errors.Wrap(err, "Cannot read widget")
		}
		ret = append(ret, w)
	}
	return ret, errors.Wrapf(rows.Err(), "Cannot query widgets of %q", areaID)
}

func (s *Store) MembersWithRole(ctx context.Context, role glubblog.Role) ([]glubblog.Principal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT m.id, m.name, m.email,
			COALESCE((SELECT group_concat(x.role) FROM member_roles x WHERE x.member_id = m.id), '')
		FROM members m JOIN member_roles r ON r.member_id = m.id
		WHERE r.role = ?
		ORDER BY m.id`, string(role))
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot query members with role %s", role)
	}
	defer rows.Close()

	ret := []glubblog.Principal{}
	for rows.Next() {
		var (
			p     glubblog.Principal
			roles string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &roles); err != nil {
			return nil, errors.Wrap(err, "Cannot read member")
		}
		p.Roles = glubblog.ParseRoleSet(roles)
		ret = append(ret, p)
	}
	return ret, errors.Wrapf(rows.Err(), "Cannot query members with role %s", role)
}

func (s *Store) Member(ctx context.Context, id string) (glubblog.Principal, error) {
	var (
		p     glubblog.Principal
		roles string
	)
	err := s.db.QueryRowContext(ctx, `SELECT m.id, m.name, m.email,
			COALESCE((SELECT group_concat(x.role) FROM member_roles x WHERE x.member_id = m.id), '')
		FROM members m WHERE m.id = ?`, id).Scan(&p.ID, &p.Name, &p.Email, &roles)
	if err == sql.ErrNoRows {
		return p, errors.Wrapf(glubblog.ErrNotFound, "member %q", id)
	}
	if err != nil {
		return p, errors.Wrapf(err, "Cannot read member %q", id)
	}
	p.Roles = glubblog.ParseRoleSet(roles)
	return p, nil
}

func (s *Store) SaveMember(ctx context.Context, p glubblog.Principal) (err error) {
	if p.ID == "" {
		return errors.New("member without ID")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Cannot begin transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO members (id, name, email) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email`,
		p.ID, p.Name, p.Email)
	if err != nil {
		return errors.Wrapf(err, "Cannot write member %q", p.ID)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM member_roles WHERE member_id = ?`, p.ID); err != nil {
		return errors.Wrapf(err, "Cannot clear roles of %q", p.ID)
	}
	for _, r := range p.Roles.Slice() {
		_, err = tx.ExecContext(ctx, `INSERT INTO member_roles (member_id, role) VALUES (?, ?)`, p.ID, string(r))
		if err != nil {
			return errors.Wrapf(err, "Cannot grant %s to %q", r, p.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "Cannot commit member")
}
