package policy

import (
	"sort"
	"strings"
)

// RoleSet is an immutable set of opaque role identifiers.
type RoleSet map[string]struct{}

// NewRoleSet creates a role set from the given role identifiers.
func NewRoleSet(roles ...string) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs[r] = struct{}{}
	}
	return rs
}

// Has reports whether the set contains the given role.
func (rs RoleSet) Has(role string) bool {
	_, ok := rs[role]
	return ok
}

// Intersects reports whether any of the given roles is in the set.
func (rs RoleSet) Intersects(roles []string) bool {
	for _, r := range roles {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set is empty.
func (rs RoleSet) IsEmpty() bool {
	return len(rs) == 0
}

// Roles returns the roles in the set in sorted order.
func (rs RoleSet) Roles() []string {
	roles := make([]string, 0, len(rs))
	for r := range rs {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// clone returns a copy of the set so callers cannot mutate the registry.
func (rs RoleSet) clone() RoleSet {
	out := make(RoleSet, len(rs))
	for r := range rs {
		out[r] = struct{}{}
	}
	return out
}

// roleGate pairs a path prefix with the role set allowed under it.
type roleGate struct {
	prefix string
	roles  RoleSet
}

// PathPolicy classifies request paths against static registries. It is
// immutable after construction and safe for unbounded concurrent use.
type PathPolicy struct {
	public  []string
	gates   []roleGate
	metrics *Metrics
}

// IsPublic reports whether the path is reachable without an identity
// token. The input may carry a query component, which is ignored. An
// empty path is never public.
//
// A normalized path is public when it exactly equals a registered
// prefix, starts with a registered prefix followed by "/", or starts
// with the literal characters of a registered prefix with no separator
// required. The last rule means a public entry /terms also matches
// /terms-and-conditions; existing route families depend on this
// broad-match behavior, so it is preserved as-is.
func (p *PathPolicy) IsPublic(path string) bool {
	if path == "" {
		p.metrics.RecordDecision(decisionProtected)
		return false
	}

	if p.matchPublic(normalizePath(path)) {
		p.metrics.RecordDecision(decisionPublic)
		return true
	}

	p.metrics.RecordDecision(decisionProtected)
	return false
}

// matchPublic tests a normalized path against the public registry.
func (p *PathPolicy) matchPublic(normalized string) bool {
	for _, entry := range p.public {
		// strings.HasPrefix covers all three match rules: exact
		// equality, entry+"/" and the boundary-less literal prefix.
		if strings.HasPrefix(normalized, entry) {
			return true
		}
	}
	return false
}

// IsProtected reports whether the path requires a valid identity token.
// It is the strict complement of IsPublic.
func (p *PathPolicy) IsProtected(path string) bool {
	return !p.IsPublic(path)
}

// AllowedRoles returns the role set permitted to access the path. The
// empty set is returned for absent input, for public paths, and for
// protected paths with no role gate; an empty result on a protected
// path means any authenticated identity suffices.
//
// Gates are evaluated in declaration order and the first matching
// prefix wins; a path matches at most one gate.
func (p *PathPolicy) AllowedRoles(path string) RoleSet {
	if path == "" {
		return RoleSet{}
	}

	normalized := normalizePath(path)
	if p.matchPublic(normalized) {
		return RoleSet{}
	}
	for _, gate := range p.gates {
		if strings.HasPrefix(normalized, gate.prefix) {
			p.metrics.RecordGateMatch(gate.prefix)
			return gate.roles.clone()
		}
	}

	return RoleSet{}
}

// PublicPrefixes returns the registered public prefixes in declaration
// order.
func (p *PathPolicy) PublicPrefixes() []string {
	out := make([]string, len(p.public))
	copy(out, p.public)
	return out
}

// normalizePath strips the query component: everything from the first
// '?' onward is discarded.
func normalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
