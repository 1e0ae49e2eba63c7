package payroll

import "errors"

var (
	ErrPayrollSettingsNotFound = errors.New("payroll settings not found")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrForbiddenEmployee       = errors.New("employees can only view their own payroll")
)
