package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"

	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceManage  Permission = "attendance.manage"

	// Payroll
	PermissionPayrollViewOwn Permission = "payroll.view_own"
	PermissionPayrollViewAll Permission = "payroll.view_all"
	PermissionPayrollManage  Permission = "payroll.manage"

	// Tasks
	PermissionTaskViewAssigned Permission = "task.view_assigned"
	PermissionTaskManage       Permission = "task.manage"

	// Events
	PermissionEventCreate    Permission = "event.create"
	PermissionEventManageAll Permission = "event.manage_all"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeApprove Permission = "employee.approve"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionViewOwnProfile,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionAttendanceViewAll,
		PermissionAttendanceManage,
		PermissionPayrollViewOwn,
		PermissionPayrollViewAll,
		PermissionPayrollManage,
		PermissionTaskViewAssigned,
		PermissionTaskManage,
		PermissionEventCreate,
		PermissionEventManageAll,
		PermissionEmployeeViewAll,
		PermissionEmployeeApprove,
	},
	RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionPayrollViewOwn,
		PermissionTaskViewAssigned,
		PermissionEventCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
