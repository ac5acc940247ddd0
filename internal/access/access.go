// Package access decides which models a principal may read or mutate.
package access

import (
	"sort"

	types "github.com/yungbote/leontief-backend/internal/domain"
)

type Kind int

const (
	Anonymous Kind = iota
	User
	Admin
)

func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Principal is the resolved caller. RoleIDs is materialised once when the
// principal is built and never re-queried.
type Principal struct {
	Kind    Kind
	UserID  uint
	RoleIDs []uint
}

func AnonymousPrincipal() Principal { return Principal{Kind: Anonymous} }

// FromUser builds a principal from a user with its roles loaded. Holding the
// role named "admin" makes the principal an Admin.
func FromUser(u *types.User) Principal {
	if u == nil {
		return AnonymousPrincipal()
	}
	p := Principal{Kind: User, UserID: u.ID, RoleIDs: u.RoleIDs()}
	for _, r := range u.Roles {
		if r.Name == types.RoleAdmin {
			p.Kind = Admin
			break
		}
	}
	return p
}

func (p Principal) IsAuthenticated() bool { return p.Kind != Anonymous }

// RoleSet is either the "all" marker (admins) or a concrete set of role ids.
type RoleSet struct {
	all bool
	ids map[uint]struct{}
}

func AllRoles() RoleSet { return RoleSet{all: true} }

func NewRoleSet(ids ...uint) RoleSet {
	set := RoleSet{ids: make(map[uint]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

func (r RoleSet) All() bool { return r.all }

func (r RoleSet) Contains(id uint) bool {
	if r.all {
		return true
	}
	_, ok := r.ids[id]
	return ok
}

// Intersects is true when any of ids is in the set; always true for "all".
func (r RoleSet) Intersects(ids []uint) bool {
	if r.all {
		return true
	}
	for _, id := range ids {
		if _, ok := r.ids[id]; ok {
			return true
		}
	}
	return false
}

// IDs returns the sorted members, nil for the "all" marker.
func (r RoleSet) IDs() []uint {
	if r.all {
		return nil
	}
	out := make([]uint, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type Resolver struct {
	guestRoleID uint
}

func NewResolver(guestRoleID uint) *Resolver {
	return &Resolver{guestRoleID: guestRoleID}
}

func (r *Resolver) GuestRoleID() uint { return r.guestRoleID }

func (r *Resolver) EffectiveRoles(p Principal) RoleSet {
	switch p.Kind {
	case Admin:
		return AllRoles()
	case User:
		return NewRoleSet(append([]uint{r.guestRoleID}, p.RoleIDs...)...)
	default:
		return NewRoleSet(r.guestRoleID)
	}
}

func (r *Resolver) IsAdmin(p Principal) bool { return p.Kind == Admin }

func (r *Resolver) CanView(p Principal, modelRoleIDs []uint) bool {
	if r.IsAdmin(p) {
		return true
	}
	return r.EffectiveRoles(p).Intersects(modelRoleIDs)
}

func (r *Resolver) CanViewWorkspace(p Principal, ownerID uint) bool {
	if r.IsAdmin(p) {
		return true
	}
	return p.Kind == User && p.UserID == ownerID
}

// Filter keeps the items p can view. Admins get items back unfiltered.
func Filter[T any](r *Resolver, p Principal, items []T, rolesOf func(T) []uint) []T {
	if r.IsAdmin(p) {
		return items
	}
	roles := r.EffectiveRoles(p)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if roles.Intersects(rolesOf(it)) {
			out = append(out, it)
		}
	}
	return out
}
