// Package memory keeps the page tree and the directory in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lemmi/glubblog"
	"github.com/pkg/errors"
)

type Store struct {
	mu      sync.RWMutex
	pages   map[glubblog.Stage]map[string]glubblog.Page
	order   []string
	areas   map[string][]glubblog.Widget
	members map[string]glubblog.Principal
}

func New() *Store {
	return &Store{
		pages: map[glubblog.Stage]map[string]glubblog.Page{
			glubblog.StageDraft: {},
			glubblog.StageLive:  {},
		},
		areas:   map[string][]glubblog.Widget{},
		members: map[string]glubblog.Principal{},
	}
}

func (s *Store) Close() error {
	return nil
}

func clonePage(p glubblog.Page) glubblog.Page {
	if p.Blog != nil {
		cfg := *p.Blog
		p.Blog = &cfg
	}
	return p
}

func (s *Store) WritePage(ctx context.Context, p *glubblog.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := s.pages[glubblog.StageDraft][p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.pages[glubblog.StageDraft][p.ID] = clonePage(*p)
	return nil
}

func (s *Store) Publish(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[glubblog.StageDraft][id]
	if !ok {
		return errors.Wrapf(glubblog.ErrNotFound, "page %q", id)
	}
	s.pages[glubblog.StageLive][id] = clonePage(p)
	return nil
}

func (s *Store) Page(ctx context.Context, stage glubblog.Stage, id string) (glubblog.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[stage][id]
	if !ok {
		return glubblog.Page{}, errors.Wrapf(glubblog.ErrNotFound, "page %q in %s", id, stage)
	}
	return clonePage(p), nil
}

// filter returns the pages of stage matching keep in insertion order.
func (s *Store) filter(stage glubblog.Stage, keep func(glubblog.Page) bool) []glubblog.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := []glubblog.Page{}
	for _, id := range s.order {
		p, ok := s.pages[stage][id]
		if ok && keep(p) {
			ret = append(ret, clonePage(p))
		}
	}
	return ret
}

func (s *Store) PagesByType(ctx context.Context, stage glubblog.Stage, t glubblog.PageType) ([]glubblog.Page, error) {
	return s.filter(stage, func(p glubblog.Page) bool { return p.Type == t }), nil
}

func (s *Store) Children(ctx context.Context, stage glubblog.Stage, parentID string) ([]glubblog.Page, error) {
	return s.filter(stage, func(p glubblog.Page) bool { return p.ParentID == parentID }), nil
}

func (s *Store) CreateWidgetArea(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.areas[id] = []glubblog.Widget{}
	return id, nil
}

func (s *Store) WriteWidget(ctx context.Context, w *glubblog.Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	area, ok := s.areas[w.AreaID]
	if !ok {
		return errors.Wrapf(glubblog.ErrNotFound, "widget area %q", w.AreaID)
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	for i := range area {
		if area[i].ID == w.ID {
			area[i] = *w
			return nil
		}
	}
	s.areas[w.AreaID] = append(area, *w)
	return nil
}

func (s *Store) Widgets(ctx context.Context, areaID string) ([]glubblog.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	area, ok := s.areas[areaID]
	if !ok {
		return nil, errors.Wrapf(glubblog.ErrNotFound, "widget area %q", areaID)
	}
	ret := append([]glubblog.Widget{}, area...)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Sort < ret[j].Sort })
	return ret, nil
}

func clonePrincipal(p glubblog.Principal) glubblog.Principal {
	p.Roles = glubblog.NewRoleSet(p.Roles.Slice()...)
	return p
}

func (s *Store) MembersWithRole(ctx context.Context, role glubblog.Role) ([]glubblog.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := []glubblog.Principal{}
	for _, m := range s.members {
		if m.Roles.Has(role) {
			ret = append(ret, clonePrincipal(m))
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

func (s *Store) Member(ctx context.Context, id string) (glubblog.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return glubblog.Principal{}, errors.Wrapf(glubblog.ErrNotFound, "member %q", id)
	}
	return clonePrincipal(m), nil
}

func (s *Store) SaveMember(ctx context.Context, p glubblog.Principal) error {
	if p.ID == "" {
		return errors.New("member without ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[p.ID] = clonePrincipal(p)
	return nil
}
