package event

import "errors"

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrEventForbidden = errors.New("only the creator or an admin can change this event")
	ErrInvalidRange   = errors.New("event must not end before it starts")
)
