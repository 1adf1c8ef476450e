// Package auth defines user roles, their permissions and password hashing.
package auth

import "fmt"

// Role identifies what a user may see and record.
type Role int

const (
	RoleLeaderShift1 Role = 1
	RoleLeaderShift2 Role = 2
	RoleLeaderShift3 Role = 3
	RoleProcesses    Role = 4
	RoleManager      Role = 5
	RoleIT           Role = 6
)

// Resource is a protected area of the API.
type Resource string

const (
	ResDashboard    Resource = "dashboard"
	ResShifts       Resource = "shifts"
	ResMachines     Resource = "machines"
	ResReasons      Resource = "reasons"
	ResReports      Resource = "reports"
	ResUsers        Resource = "users"
	ResAPIRead      Resource = "api_read"
	ResReportShift1 Resource = "report_shift_1"
	ResReportShift2 Resource = "report_shift_2"
	ResReportShift3 Resource = "report_shift_3"
)

var permissions = map[Role]map[Resource]bool{
	RoleLeaderShift1: {ResDashboard: true, ResAPIRead: true, ResReportShift1: true},
	RoleLeaderShift2: {ResDashboard: true, ResAPIRead: true, ResReportShift2: true},
	RoleLeaderShift3: {ResDashboard: true, ResAPIRead: true, ResReportShift3: true},
	RoleProcesses:    {ResDashboard: true, ResShifts: true, ResMachines: true, ResReasons: true, ResAPIRead: true},
	RoleManager:      {ResDashboard: true, ResReports: true, ResAPIRead: true},
	RoleIT: {
		ResDashboard: true, ResShifts: true, ResMachines: true, ResReasons: true,
		ResReports: true, ResUsers: true, ResAPIRead: true,
	},
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r >= RoleLeaderShift1 && r <= RoleIT
}

// Can reports whether r grants access to res.
func (r Role) Can(res Resource) bool {
	return permissions[r][res]
}

// CanAny reports whether r grants access to at least one of res.
func (r Role) CanAny(res ...Resource) bool {
	for _, x := range res {
		if r.Can(x) {
			return true
		}
	}
	return false
}

// Shift returns the shift a leader role is tied to, or 0.
func (r Role) Shift() int {
	switch r {
	case RoleLeaderShift1, RoleLeaderShift2, RoleLeaderShift3:
		return int(r)
	}
	return 0
}

// CanRecord reports whether r may record events at all.
func (r Role) CanRecord() bool {
	return r.Valid() && r != RoleProcesses && r != RoleManager
}

// Unrestricted reports whether r may record any past instant of any shift.
func (r Role) Unrestricted() bool {
	return r == RoleIT
}

// ReportResource is the per-shift report permission of a shift.
func ReportResource(shift int) Resource {
	return Resource(fmt.Sprintf("report_shift_%d", shift))
}

func (r Role) String() string {
	switch r {
	case RoleLeaderShift1:
		return "leader_shift_1"
	case RoleLeaderShift2:
		return "leader_shift_2"
	case RoleLeaderShift3:
		return "leader_shift_3"
	case RoleProcesses:
		return "processes"
	case RoleManager:
		return "manager"
	case RoleIT:
		return "it"
	}
	return fmt.Sprintf("role(%d)", int(r))
}
