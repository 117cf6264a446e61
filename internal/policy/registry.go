package policy

// DefaultPublicPrefixes is the default registry of access-open route
// families. Order is the declaration order of the routes.
var DefaultPublicPrefixes = []string{
	"/auth/login",
	"/auth/verify-start",
	"/auth/verify-callback",
	"/auth/logout",
	"/denuncia",
	"/denuncia/",
	"/seguimiento",
	"/seguimiento/",
	"/terms",
	"/terms/",
	"/css",
	"/js",
	"/img",
	"/images",
	"/webhooks",
	"/webhooks/",
	"/error",
	"/actuator/health",
}

// DefaultRoleGates is the default ordered mapping of role-gated route
// families. Earlier entries win when prefixes overlap.
var DefaultRoleGates = []RoleGateConfig{
	{Prefix: "/staff", Roles: []string{"ANALYST", "ADMIN"}},
	{Prefix: "/admin", Roles: []string{"ADMIN"}},
}
