package domain

// Action names a guarded capability. Catalog reads and contact submission are
// open to everyone and have no action.
type Action string

const (
	ActionManageCatalog      Action = "catalog:manage"
	ActionReadContacts       Action = "contacts:read"
	ActionExportContacts     Action = "contacts:export"
	ActionDeleteContacts     Action = "contacts:delete"
	ActionManageUsers        Action = "users:manage"
	ActionCreateAdmin        Action = "admins:create"
	ActionChangeRole         Action = "users:change-role"
	ActionViewUserDashboard  Action = "dashboard:user"
	ActionViewAdminDashboard Action = "dashboard:admin"
)

var (
	staff    = []Role{RoleAdmin, RoleSuperAdmin}
	everyone = []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
)

// policy is the single source of truth for role gating.
var policy = map[Action][]Role{
	ActionManageCatalog:      staff,
	ActionReadContacts:       staff,
	ActionExportContacts:     staff,
	ActionDeleteContacts:     staff,
	ActionManageUsers:        staff,
	ActionCreateAdmin:        staff,
	ActionChangeRole:         {RoleSuperAdmin},
	ActionViewUserDashboard:  everyone,
	ActionViewAdminDashboard: staff,
}

// Can reports whether u may perform a. A nil user can perform nothing.
func Can(u *User, a Action) bool {
	if u == nil {
		return false
	}
	return HasRole(u.Role, RolesFor(a))
}

// RolesFor returns a copy of the allow-list for a. Unknown actions allow no role.
func RolesFor(a Action) []Role {
	roles := policy[a]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// HasRole reports whether r appears in allowed.
func HasRole(r Role, allowed []Role) bool {
	for _, candidate := range allowed {
		if candidate == r {
			return true
		}
	}
	return false
}
