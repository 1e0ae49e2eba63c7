package notification

import "errors"

var (
	ErrMissingToken = errors.New("missing socket token")
	ErrInvalidToken = errors.New("invalid or expired socket token")
)
