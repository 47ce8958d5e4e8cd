package glubblog

import (
	"sort"
	"strings"
)

// Role is a named permission grant.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleBlogManagement Role = "BLOG_MANAGEMENT"
)

// RoleSet holds the roles assigned to a principal.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs.Add(r)
	}
	return rs
}

func (rs RoleSet) Add(r Role) {
	rs[r] = struct{}{}
}

// Has reports whether r is in the set. A nil set holds no roles.
func (rs RoleSet) Has(r Role) bool {
	_, ok := rs[r]
	return ok
}

// Slice returns the roles in lexical order.
func (rs RoleSet) Slice() []Role {
	ret := make([]Role, 0, len(rs))
	for r := range rs {
		ret = append(ret, r)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

func (rs RoleSet) String() string {
	roles := rs.Slice()
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, ",")
}

// ParseRoleSet reads a comma separated role list as stored by the backends.
func ParseRoleSet(s string) RoleSet {
	rs := RoleSet{}
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rs.Add(Role(r))
		}
	}
	return rs
}

// Principal is an identity with its assigned roles.
type Principal struct {
	ID    string
	Name  string
	Email string
	Roles RoleSet
}

// Anonymous is the principal of requests without a known member.
var Anonymous = Principal{}

func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

// Can reports whether p holds r. Admins hold every role.
func (p Principal) Can(r Role) bool {
	return p.Roles.Has(r) || p.Roles.Has(RoleAdmin)
}
