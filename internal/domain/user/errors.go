package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrOAuthProviderIDExists   = errors.New("oauth provider id already registered")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrApprovalRequired        = errors.New("account is awaiting approval")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrUserNotPending          = errors.New("user is not pending approval")
	ErrInvalidStatus           = errors.New("invalid user status")
)
