package reimbursement

import (
	"time"

	"github.com/shopspring/decimal"
)

type Reimbursement struct {
	ID          int64           `gorm:"primaryKey"`
	RequestDate time.Time       `gorm:"column:request_date;type:date"`
	Description string          `gorm:"column:description;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Status      string          `gorm:"column:status;default:pending"`
	UserID      int64           `gorm:"column:user_id;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reimbursement) TableName() string {
	return "reimbursements"
}
