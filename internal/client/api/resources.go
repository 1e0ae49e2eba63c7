package api

// Logical resources and the paths tried for each, newest API layout first.
const (
	ResourceLogin           = "login"
	ResourceRefresh         = "refresh"
	ResourceLogout          = "logout"
	ResourceMe              = "me"
	ResourceTasks           = "tasks"
	ResourceMyAttendance    = "my_attendance"
	ResourcePayrollSettings = "payroll_settings"
	ResourceSocketToken     = "socket_token"
	ResourceNotificationsWS = "notifications_ws"
)

var Candidates = map[string][]string{
	ResourceLogin:           {"/api/v1/auth/login", "/api/auth/login", "/auth/login"},
	ResourceRefresh:         {"/api/v1/auth/refresh", "/api/auth/refresh", "/auth/refresh"},
	ResourceLogout:          {"/api/v1/auth/logout", "/api/auth/logout", "/auth/logout"},
	ResourceMe:              {"/api/v1/auth/me", "/api/auth/me", "/auth/me"},
	ResourceTasks:           {"/api/v1/tasks", "/api/tasks", "/tasks"},
	ResourceMyAttendance:    {"/api/v1/attendance/my", "/api/attendance/my", "/attendance/my"},
	ResourcePayrollSettings: {"/api/v1/payroll/settings", "/api/payroll/settings", "/payroll/settings"},
	ResourceSocketToken:     {"/api/v1/notifications/token", "/api/notifications/token"},
	ResourceNotificationsWS: {"/api/v1/notifications/ws", "/api/notifications/ws"},
}
