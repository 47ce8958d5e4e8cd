package glubblog

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type SortKey string

const (
	SortByName  SortKey = "name"
	SortByID    SortKey = "id"
	SortByEmail SortKey = "email"
)

// ParseSortKey accepts the key case insensitively. The empty string is SortByName.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByName, nil
	case SortByName, SortByID, SortByEmail:
		return k, nil
	}
	return "", errors.Errorf("unknown sort key: %q", s)
}

func (k SortKey) value(p Principal) string {
	switch k {
	case SortByID:
		return p.ID
	case SortByEmail:
		return p.Email
	}
	return p.Name
}

type Order string

const (
	Ascending  Order = "ASC"
	Descending Order = "DESC"
)

// ParseOrder accepts "asc" and "desc" in any case. The empty string is Ascending.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToUpper(strings.TrimSpace(s))); o {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return o, nil
	}
	return "", errors.Errorf("unknown sort order: %q", s)
}

// Principals sorts by a SortKey, see SortPrincipals.
type Principals struct {
	list  []Principal
	key   SortKey
	order Order
}

func (p Principals) Len() int {
	return len(p.list)
}
func (p Principals) Less(i, j int) bool {
	if p.order == Descending {
		return p.key.value(p.list[i]) > p.key.value(p.list[j])
	}
	return p.key.value(p.list[i]) < p.key.value(p.list[j])
}
func (p Principals) Swap(i, j int) {
	p.list[i], p.list[j] = p.list[j], p.list[i]
}

// SortPrincipals sorts list in place. Equal keys keep their order.
func SortPrincipals(list []Principal, key SortKey, order Order) {
	sort.Stable(Principals{list: list, key: key, order: order})
}

// MergeOwners returns the union of admins and managers, unique by ID and sorted.
// The result is never nil.
func MergeOwners(admins, managers []Principal, key SortKey, order Order) []Principal {
	all := make([]Principal, 0, len(admins)+len(managers))
	all = append(all, managers...)
	all = append(all, admins...)
	ret := lo.UniqBy(all, func(p Principal) string { return p.ID })
	SortPrincipals(ret, key, order)
	return ret
}

// OwnerHook post-processes the resolved owner list.
type OwnerHook func([]Principal) []Principal

// OwnerResolver lists the members that may own a blog: everyone with
// RoleAdmin or RoleBlogManagement.
type OwnerResolver struct {
	dir   Directory
	hooks []OwnerHook
}

func NewOwnerResolver(dir Directory, hooks ...OwnerHook) *OwnerResolver {
	return &OwnerResolver{dir: dir, hooks: hooks}
}

// Extend registers h. Hooks run in registration order.
func (r *OwnerResolver) Extend(h OwnerHook) {
	r.hooks = append(r.hooks, h)
}

func (r *OwnerResolver) Resolve(ctx context.Context, key SortKey, order Order) ([]Principal, error) {
	admins, err := r.dir.MembersWithRole(ctx, RoleAdmin)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot list members with role %s", RoleAdmin)
	}
	managers, err := r.dir.MembersWithRole(ctx, RoleBlogManagement)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot list members with role %s", RoleBlogManagement)
	}

	owners := MergeOwners(admins, managers, key, order)
	for _, h := range r.hooks {
		owners = h(owners)
	}
	if owners == nil {
		owners = []Principal{}
	}
	return owners, nil
}
