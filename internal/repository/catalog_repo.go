package repository

import (
	"context"

	"vetpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository is the read-side contract over the four sellable catalogs.
// The pricing resolver depends on it but does not own catalog data.
type CatalogRepository interface {
	FindRetailProduct(ctx context.Context, id uuid.UUID) (*model.RetailProduct, error)
	FindMedicalService(ctx context.Context, id uuid.UUID) (*model.MedicalService, error)
	FindVaccinationPlan(ctx context.Context, id uuid.UUID) (*model.VaccinationPlan, error)
	FindVaccine(ctx context.Context, id uuid.UUID) (*model.Vaccine, error)

	// Branch stock, used only by the one-shot retail purchase flow.
	// DecrementStockTx returns gorm.ErrRecordNotFound when fewer than qty
	// units remain.
	FindStock(ctx context.Context, branchID, productID uuid.UUID) (*model.BranchStock, error)
	DecrementStockTx(tx *gorm.DB, branchID, productID uuid.UUID, qty int) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) FindRetailProduct(ctx context.Context, id uuid.UUID) (*model.RetailProduct, error) {
	var p model.RetailProduct
	err := r.db.WithContext(ctx).Where("id = ? AND active = true", id).First(&p).Error
	return &p, err
}

func (r *catalogRepo) FindMedicalService(ctx context.Context, id uuid.UUID) (*model.MedicalService, error) {
	var s model.MedicalService
	err := r.db.WithContext(ctx).Where("id = ? AND active = true", id).First(&s).Error
	return &s, err
}

func (r *catalogRepo) FindVaccinationPlan(ctx context.Context, id uuid.UUID) (*model.VaccinationPlan, error) {
	var p model.VaccinationPlan
	err := r.db.WithContext(ctx).Where("id = ? AND active = true", id).First(&p).Error
	return &p, err
}

func (r *catalogRepo) FindVaccine(ctx context.Context, id uuid.UUID) (*model.Vaccine, error) {
	var v model.Vaccine
	err := r.db.WithContext(ctx).Where("id = ? AND active = true", id).First(&v).Error
	return &v, err
}

func (r *catalogRepo) FindStock(ctx context.Context, branchID, productID uuid.UUID) (*model.BranchStock, error) {
	var s model.BranchStock
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND retail_product_id = ?", branchID, productID).
		First(&s).Error
	return &s, err
}

// DecrementStockTx only applies when enough quantity remains; zero rows
// affected means a concurrent sale drained the stock after the availability
// check, reported as gorm.ErrRecordNotFound.
func (r *catalogRepo) DecrementStockTx(tx *gorm.DB, branchID, productID uuid.UUID, qty int) error {
	res := tx.Model(&model.BranchStock{}).
		Where("branch_id = ? AND retail_product_id = ? AND quantity >= ?", branchID, productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
