package reimbursement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamlabs/reimbursement-service/internal"
)

// SubmitDTO is the request payload for a new reimbursement.
type SubmitDTO struct {
	RequestDate time.Time       `json:"request_date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func (d SubmitDTO) Validate() error {
	if d.Description == "" {
		return internal.NewValidationFieldError("description", "description is required", internal.ErrCodeInvalidDescription)
	}
	if len(d.Description) > 500 {
		return internal.NewValidationFieldError("description", "description must not exceed 500 characters", internal.ErrCodeInvalidDescription)
	}
	if d.Amount.LessThanOrEqual(decimal.Zero) {
		return internal.NewValidationFieldError("amount", "amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if d.RequestDate.IsZero() {
		return internal.NewValidationFieldError("request_date", "request date is required", internal.ErrCodeInvalidDate)
	}
	if d.RequestDate.After(time.Now()) {
		return internal.NewValidationFieldError("request_date", "request date cannot be in the future", internal.ErrCodeInvalidDate)
	}
	return nil
}

// Status change discriminators accepted by the PUT endpoint.
const (
	ActionApprove  = "approve"
	ActionDeny     = "deny"
	ActionReassign = "reassign"
)

// StatusChangeDTO is the single mutating request shape: a discriminator
// plus the acting manager's id and, for reassignment, the target user.
type StatusChangeDTO struct {
	Status    string `json:"status"`
	ManagerID int64  `json:"managerid"`
	UserID    int64  `json:"userid,omitempty"`
}

func (d StatusChangeDTO) Validate() error {
	switch d.Status {
	case ActionApprove, ActionDeny:
	case ActionReassign:
		if d.UserID == 0 {
			return internal.NewValidationFieldError("userid", "userid is required for reassignment", internal.ErrCodeValidationFailed)
		}
	default:
		return internal.NewValidationFieldError("status", "status must be approve, deny or reassign", internal.ErrCodeValidationFailed)
	}
	if d.ManagerID == 0 {
		return internal.NewValidationFieldError("managerid", "managerid is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
