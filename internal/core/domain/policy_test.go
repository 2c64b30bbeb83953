package domain

import "testing"

func TestCan_Matrix(t *testing.T) {
	user := &User{Role: RoleUser}
	admin := &User{Role: RoleAdmin}
	super := &User{Role: RoleSuperAdmin}

	cases := []struct {
		action Action
		who    *User
		want   bool
	}{
		{ActionManageCatalog, nil, false},
		{ActionManageCatalog, user, false},
		{ActionManageCatalog, admin, true},
		{ActionManageCatalog, super, true},
		{ActionExportContacts, user, false},
		{ActionExportContacts, admin, true},
		{ActionCreateAdmin, user, false},
		{ActionCreateAdmin, admin, true},
		{ActionCreateAdmin, super, true},
		{ActionChangeRole, admin, false},
		{ActionChangeRole, super, true},
		{ActionViewUserDashboard, nil, false},
		{ActionViewUserDashboard, user, true},
		{ActionViewUserDashboard, super, true},
		{ActionViewAdminDashboard, user, false},
		{ActionViewAdminDashboard, admin, true},
		{Action("unknown"), super, false},
	}

	for _, tc := range cases {
		role := "anonymous"
		if tc.who != nil {
			role = string(tc.who.Role)
		}
		if got := Can(tc.who, tc.action); got != tc.want {
			t.Errorf("Can(%s, %s) = %v, want %v", role, tc.action, got, tc.want)
		}
	}
}

func TestRolesFor_ReturnsCopy(t *testing.T) {
	roles := RolesFor(ActionChangeRole)
	roles[0] = RoleUser

	if Can(&User{Role: RoleUser}, ActionChangeRole) {
		t.Fatal("mutating the returned slice must not change the policy")
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAdmin, RoleSuperAdmin} {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Role("root").Valid() {
		t.Error("expected unknown role to be invalid")
	}
}

func TestRole_AtLeast(t *testing.T) {
	cases := []struct {
		r, other Role
		want     bool
	}{
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleUser, RoleAdmin, false},
		{Role("root"), RoleUser, false},
	}
	for _, tc := range cases {
		if got := tc.r.AtLeast(tc.other); got != tc.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tc.r, tc.other, got, tc.want)
		}
	}
}
