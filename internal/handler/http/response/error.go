package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/auth"
	"github.com/officecorner/officecorner-backend-go/internal/domain/employee"
	"github.com/officecorner/officecorner-backend-go/internal/domain/event"
	"github.com/officecorner/officecorner-backend-go/internal/domain/notification"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/domain/task"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrMissingClaims):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")
	case errors.Is(err, auth.ErrAccountRejected):
		Forbidden(w, "Account has been rejected")
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, auth.ErrEmailAlreadyExists), errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, auth.ErrEmailAlreadyVerified):
		Conflict(w, "Email already verified")
	case errors.Is(err, auth.ErrOTPInvalid):
		BadRequest(w, "Invalid verification code", nil)
	case errors.Is(err, auth.ErrOTPExpired):
		BadRequest(w, "Verification code expired or not requested", nil)
	case errors.Is(err, auth.ErrOTPAttemptsExceeded):
		TooManyRequests(w, "Too many invalid attempts, request a new code")
	case errors.Is(err, auth.ErrOTPCooldown):
		TooManyRequests(w, "Please wait before requesting a new code")
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		BadRequest(w, "OAuth state mismatch", nil)
	case errors.Is(err, auth.ErrOAuthEmailUnverified):
		Forbidden(w, "Google account email is not verified")

	// User and employee errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrApprovalRequired):
		Forbidden(w, "Account is awaiting approval")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrUserNotPending):
		Conflict(w, "Employee has already been approved or rejected")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNotAnEmployee):
		BadRequest(w, "Only employee accounts go through approval", nil)

	// Notification errors
	case errors.Is(err, notification.ErrMissingToken), errors.Is(err, notification.ErrInvalidToken):
		Unauthorized(w, err.Error())

	// Attendance errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already clocked in")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "Not clocked in", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrOpenRecordExists):
		Conflict(w, "Employee already has an open attendance record for this day")
	case errors.Is(err, attendance.ErrInvalidTimeRange), errors.Is(err, attendance.ErrInvalidTimestamp):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Payroll errors
	case errors.Is(err, payroll.ErrForbiddenEmployee):
		Forbidden(w, "Employees can only view their own payroll")
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Task errors
	case errors.Is(err, task.ErrTaskNotFound):
		NotFound(w, "Task not found")
	case errors.Is(err, task.ErrAssigneeNotFound):
		NotFound(w, "Assignee not found")
	case errors.Is(err, task.ErrAssigneeNotActive):
		BadRequest(w, "Assignee is not an approved employee", nil)
	case errors.Is(err, task.ErrTaskForbidden):
		Forbidden(w, "Task is not assigned to you")
	case errors.Is(err, task.ErrStatusOnlyUpdate):
		Forbidden(w, "Only the status of an assigned task can be changed")

	// Event errors
	case errors.Is(err, event.ErrEventNotFound):
		NotFound(w, "Event not found")
	case errors.Is(err, event.ErrEventForbidden):
		Forbidden(w, "Only the creator or an admin can change this event")
	case errors.Is(err, event.ErrInvalidRange):
		BadRequest(w, "Event must not end before it starts", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
