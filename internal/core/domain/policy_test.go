package domain

import "testing"

func TestDefaultRolePolicy(t *testing.T) {
	policy := DefaultRolePolicy()

	cases := []struct {
		name       string
		role       Role
		permission string
		resource   string
		want       bool
	}{
		{"student reads courses", RoleStudent, PermissionRead, ResourceCourses, true},
		{"student submits work", RoleStudent, PermissionSubmit, ResourceSubmissions, true},
		{"student cannot grade", RoleStudent, PermissionGrade, ResourceSubmissions, false},
		{"student cannot read other students", RoleStudent, PermissionRead, ResourceStudents, false},
		{"faculty marks attendance", RoleFaculty, PermissionTake, ResourceAttendance, true},
		{"faculty grades submissions", RoleFaculty, PermissionGrade, ResourceSubmissions, true},
		{"faculty cannot manage users", RoleFaculty, PermissionCreate, ResourceUsers, false},
		{"admin manages students", RoleAdmin, PermissionCreate, ResourceStudents, true},
		{"admin decides admissions", RoleAdmin, PermissionDecide, ResourceAdmissions, true},
		{"admin cannot issue grants", RoleAdmin, PermissionGrant, ResourcePrivileges, false},
		{"epr admin issues grants", RoleEPRAdmin, PermissionGrant, ResourcePrivileges, true},
		{"epr admin revokes grants", RoleEPRAdmin, PermissionRevoke, ResourcePrivileges, true},
		{"epr admin keeps admin defaults", RoleEPRAdmin, PermissionCreate, ResourceStudents, true},
		{"unknown role denied", Role("registrar"), PermissionRead, ResourceStudents, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Allows(tc.role, tc.permission, tc.resource); got != tc.want {
				t.Fatalf("Allows(%q, %q, %q) = %v, want %v", tc.role, tc.permission, tc.resource, got, tc.want)
			}
		})
	}
}

func TestRolePolicyHasEntries(t *testing.T) {
	policy := DefaultRolePolicy()

	for _, role := range []Role{RoleStudent, RoleFaculty, RoleAdmin, RoleEPRAdmin} {
		if !policy.HasEntries(role) {
			t.Fatalf("expected entries for role %q", role)
		}
	}
	if policy.HasEntries(Role("registrar")) {
		t.Fatal("expected no entries for unknown role")
	}
}

func TestRolePolicyDefaultActionsForUnknownRole(t *testing.T) {
	if actions := DefaultRolePolicy().DefaultActionsFor(Role("registrar")); len(actions) != 0 {
		t.Fatalf("expected empty action set, got %d", len(actions))
	}
}

func TestGrantMatches(t *testing.T) {
	grant := Grant{UserID: 3, Permission: PermissionGrade, Resource: ResourceSubmissions}

	if !grant.Matches(PermissionGrade, ResourceSubmissions) {
		t.Fatal("expected exact triple to match")
	}
	if grant.Matches(PermissionGrade, ResourceResults) {
		t.Fatal("expected mismatched resource to not match")
	}
	if grant.Matches(PermissionRead, ResourceSubmissions) {
		t.Fatal("expected mismatched permission to not match")
	}
}
