package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jamlabs/reimbursement-service/internal"
	reimbDatamodel "github.com/jamlabs/reimbursement-service/internal/core/datamodel/reimbursement"
	"github.com/jamlabs/reimbursement-service/internal/reimbursement"
)

// ReimbursementRepository implements the reimbursement.Repository
// interface using GORM.
type ReimbursementRepository struct {
	db *gorm.DB
}

func NewReimbursementRepository(db *gorm.DB) reimbursement.Repository {
	return &ReimbursementRepository{db: db}
}

func (r *ReimbursementRepository) Create(rec *reimbursement.Reimbursement) error {
	dm := reimbursement.ToDataModel(rec)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	rec.ID = dm.ID
	rec.CreatedAt = dm.CreatedAt
	rec.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *ReimbursementRepository) GetByID(id int64) (*reimbursement.Reimbursement, error) {
	var dm reimbDatamodel.Reimbursement
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrReimbursementNotFound
		}
		return nil, err
	}
	return reimbursement.FromDataModel(&dm), nil
}

func (r *ReimbursementRepository) GetByUserID(userID int64) ([]*reimbursement.Reimbursement, error) {
	var dms []*reimbDatamodel.Reimbursement
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return reimbursement.FromDataModelSlice(dms), nil
}

func (r *ReimbursementRepository) GetAll() ([]*reimbursement.Reimbursement, error) {
	var dms []*reimbDatamodel.Reimbursement
	err := r.db.Order("id ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return reimbursement.FromDataModelSlice(dms), nil
}

func (r *ReimbursementRepository) UpdateStatus(id int64, status string) error {
	result := r.db.Model(&reimbDatamodel.Reimbursement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrReimbursementNotFound
	}
	return nil
}

func (r *ReimbursementRepository) UpdateOwner(id int64, userID int64) error {
	result := r.db.Model(&reimbDatamodel.Reimbursement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_id":    userID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrReimbursementNotFound
	}
	return nil
}
