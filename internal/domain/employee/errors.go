package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNotAnEmployee    = errors.New("only employee accounts go through approval")
)
