package employee

import "github.com/officecorner/officecorner-backend-go/internal/pkg/validator"

// RejectRequest optionally explains a rejection to the employee.
type RejectRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func (r *RejectRequest) Validate() error {
	return validator.Struct(r)
}
