package task

import "errors"

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrAssigneeNotFound  = errors.New("assignee not found")
	ErrTaskForbidden     = errors.New("task is not assigned to you")
	ErrStatusOnlyUpdate  = errors.New("only the status of an assigned task can be changed")
	ErrAssigneeNotActive = errors.New("assignee is not an approved employee")
)
