// Package policy implements the request-path authorization classifier
// consulted by the gateway on every inbound request.
//
// A PathPolicy holds two registries built once at startup and never
// mutated afterwards: a set of public path prefixes and an ordered list
// of role gates. It answers three questions about a raw request path:
//
//   - IsPublic: is the path reachable without an identity token?
//   - IsProtected: the strict complement of IsPublic.
//   - AllowedRoles: which role set, if any, may access the path?
//
// Classification is a pure function of the path and the registries.
// Absent, empty, or malformed input degrades to the restrictive default
// (not public, no elevated role), so the gateway fails closed.
//
//	p, err := policy.New(policy.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p.IsPublic("/denuncia?ref=123") // true
//	p.AllowedRoles("/admin/users")  // {ADMIN}
package policy
