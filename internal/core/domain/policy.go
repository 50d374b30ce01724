package domain

// Permission verbs. Opaque strings as far as storage and the decision engine
// are concerned; the constants exist so route registrations and the policy
// table cannot drift apart through typos.
const (
	PermissionRead   = "read"
	PermissionCreate = "create"
	PermissionUpdate = "update"
	PermissionDelete = "delete"
	PermissionSubmit = "submit"
	PermissionGrade  = "grade"
	PermissionTake   = "attendance"
	PermissionDecide = "decide"
	PermissionGrant  = "grant"
	PermissionRevoke = "revoke"
)

// Resource names guarded by the decision engine.
const (
	ResourceStudents    = "students"
	ResourceFaculty     = "faculty"
	ResourceUsers       = "users"
	ResourceCourses     = "courses"
	ResourceEnrollments = "enrollments"
	ResourceAttendance  = "attendance"
	ResourceExams       = "exams"
	ResourceSubmissions = "submissions"
	ResourceResults     = "results"
	ResourceAdmissions  = "admissions"
	ResourcePrivileges  = "privileges"
)

// Action is a permission applied to a resource.
type Action struct {
	Permission string
	Resource   string
}

// RolePolicy is the static role -> default actions table. It is built once at
// process start and must not be mutated afterwards; coarse role policy is a
// deployment-time decision, not runtime data.
type RolePolicy struct {
	entries map[Role]map[Action]struct{}
}

// NewRolePolicy builds a policy table from per-role action lists.
func NewRolePolicy(table map[Role][]Action) *RolePolicy {
	entries := make(map[Role]map[Action]struct{}, len(table))
	for role, actions := range table {
		set := make(map[Action]struct{}, len(actions))
		for _, action := range actions {
			set[action] = struct{}{}
		}
		entries[role] = set
	}
	return &RolePolicy{entries: entries}
}

// DefaultActionsFor returns the actions the role is permitted by default.
// Unknown roles yield an empty set; no default access is a valid outcome.
func (p *RolePolicy) DefaultActionsFor(role Role) []Action {
	set, ok := p.entries[role]
	if !ok {
		return nil
	}
	actions := make([]Action, 0, len(set))
	for action := range set {
		actions = append(actions, action)
	}
	return actions
}

// Allows reports whether the role's default policy covers the action.
func (p *RolePolicy) Allows(role Role, permission, resource string) bool {
	set, ok := p.entries[role]
	if !ok {
		return false
	}
	_, ok = set[Action{Permission: permission, Resource: resource}]
	return ok
}

// HasEntries reports whether the role appears in the table at all. Used to
// distinguish an unknown role from a known role lacking a specific action.
func (p *RolePolicy) HasEntries(role Role) bool {
	set, ok := p.entries[role]
	return ok && len(set) > 0
}

var defaultStudentActions = []Action{
	{PermissionRead, ResourceCourses},
	{PermissionRead, ResourceExams},
	{PermissionRead, ResourceResults},
	{PermissionRead, ResourceAttendance},
	{PermissionSubmit, ResourceSubmissions},
}

var defaultFacultyActions = []Action{
	{PermissionRead, ResourceCourses},
	{PermissionRead, ResourceStudents},
	{PermissionRead, ResourceEnrollments},
	{PermissionRead, ResourceExams},
	{PermissionRead, ResourceResults},
	{PermissionRead, ResourceAttendance},
	{PermissionTake, ResourceAttendance},
	{PermissionCreate, ResourceExams},
	{PermissionUpdate, ResourceExams},
	{PermissionGrade, ResourceSubmissions},
}

var defaultAdminActions = appendActions(
	[]Action{
		{PermissionRead, ResourceAttendance},
		{PermissionRead, ResourceExams},
		{PermissionRead, ResourceResults},
		{PermissionDecide, ResourceAdmissions},
	},
	crudActions(ResourceStudents),
	crudActions(ResourceFaculty),
	crudActions(ResourceUsers),
	crudActions(ResourceCourses),
	crudActions(ResourceEnrollments),
	crudActions(ResourceAdmissions),
)

var defaultEPRAdminActions = appendActions(
	defaultAdminActions,
	[]Action{
		{PermissionGrant, ResourcePrivileges},
		{PermissionRevoke, ResourcePrivileges},
		{PermissionRead, ResourcePrivileges},
	},
)

func crudActions(resource string) []Action {
	return []Action{
		{PermissionRead, resource},
		{PermissionCreate, resource},
		{PermissionUpdate, resource},
		{PermissionDelete, resource},
	}
}

func appendActions(base []Action, more ...[]Action) []Action {
	out := make([]Action, 0, len(base))
	out = append(out, base...)
	for _, actions := range more {
		out = append(out, actions...)
	}
	return out
}

var defaultRolePolicy = NewRolePolicy(map[Role][]Action{
	RoleStudent:  defaultStudentActions,
	RoleFaculty:  defaultFacultyActions,
	RoleAdmin:    defaultAdminActions,
	RoleEPRAdmin: defaultEPRAdminActions,
})

// DefaultRolePolicy returns the process-wide role policy table.
func DefaultRolePolicy() *RolePolicy {
	return defaultRolePolicy
}
