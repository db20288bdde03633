package reimbursement

import (
	"time"

	"github.com/shopspring/decimal"

	reimbDatamodel "github.com/jamlabs/reimbursement-service/internal/core/datamodel/reimbursement"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

type Reimbursement struct {
	ID          int64           `json:"id"`
	RequestDate time.Time       `json:"request_date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	UserID      int64           `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *Reimbursement) IsPending() bool {
	return r.Status == StatusPending
}

// Approve sets the approved status. Approving an already approved record
// re-sets the same status; the transition is idempotent.
func (r *Reimbursement) Approve() {
	r.Status = StatusApproved
	r.UpdatedAt = time.Now()
}

func (r *Reimbursement) Deny() {
	r.Status = StatusDenied
	r.UpdatedAt = time.Now()
}

func ToDataModel(r *Reimbursement) *reimbDatamodel.Reimbursement {
	return &reimbDatamodel.Reimbursement{
		ID:          r.ID,
		RequestDate: r.RequestDate,
		Description: r.Description,
		Amount:      r.Amount,
		Status:      r.Status,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *reimbDatamodel.Reimbursement) *Reimbursement {
	return &Reimbursement{
		ID:          r.ID,
		RequestDate: r.RequestDate,
		Description: r.Description,
		Amount:      r.Amount,
		Status:      r.Status,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModelSlice(rs []*reimbDatamodel.Reimbursement) []*Reimbursement {
	result := make([]*Reimbursement, len(rs))
	for i, r := range rs {
		result[i] = FromDataModel(r)
	}
	return result
}
