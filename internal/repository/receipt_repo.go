package repository

import (
	"context"

	"vetpos/internal/dto"
	"vetpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceiptRepository owns Receipt and ReceiptItem rows. All mutating methods
// take the caller's transaction — the service layer decides the boundary.
type ReceiptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *model.Receipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	// FindForUpdateTx locks the receipt row so concurrent add/remove/complete
	// calls on the same receipt serialize on the draft-status check.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Receipt, error)
	NextNumber(ctx context.Context, tx *gorm.DB) (int, error)

	CreateItemTx(tx *gorm.DB, item *model.ReceiptItem) error
	DeleteItemTx(tx *gorm.DB, receiptID uuid.UUID, itemNo int) (int64, error)
	UpdateItemQuantityTx(tx *gorm.DB, receiptID uuid.UUID, itemNo, quantity int) (int64, error)
	// NextItemNoTx returns max(item_no)+1 scoped to ONE receipt. Must be called
	// under the receipt row lock.
	NextItemNoTx(tx *gorm.DB, receiptID uuid.UUID) (int, error)
	// SumItemsTx recomputes the total from the full set of line items.
	SumItemsTx(tx *gorm.DB, receiptID uuid.UUID) (decimal.Decimal, error)
	SetTotalTx(tx *gorm.DB, receiptID uuid.UUID, total decimal.Decimal) error
	SetStatusTx(tx *gorm.DB, receiptID uuid.UUID, status string) error

	List(ctx context.Context, filter dto.ReceiptFilter) ([]model.Receipt, int64, error)
	DB() *gorm.DB
}

type receiptRepo struct{ db *gorm.DB }

func NewReceiptRepository(db *gorm.DB) ReceiptRepository { return &receiptRepo{db: db} }

func (r *receiptRepo) DB() *gorm.DB { return r.db }

func (r *receiptRepo) Create(ctx context.Context, tx *gorm.DB, rec *model.Receipt) error {
	return tx.WithContext(ctx).Create(rec).Error
}

func (r *receiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var rec model.Receipt
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Customer").Preload("Branch").Preload("Receptionist").
		First(&rec, id).Error
	return &rec, err
}

func (r *receiptRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Receipt, error) {
	var rec model.Receipt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, id).Error
	return &rec, err
}

func (r *receiptRepo) NextNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('receipts_number_seq')").Scan(&num).Error
	return num, err
}

func (r *receiptRepo) CreateItemTx(tx *gorm.DB, item *model.ReceiptItem) error {
	return tx.Create(item).Error
}

func (r *receiptRepo) DeleteItemTx(tx *gorm.DB, receiptID uuid.UUID, itemNo int) (int64, error) {
	res := tx.Where("receipt_id = ? AND item_no = ?", receiptID, itemNo).
		Delete(&model.ReceiptItem{})
	return res.RowsAffected, res.Error
}

func (r *receiptRepo) UpdateItemQuantityTx(tx *gorm.DB, receiptID uuid.UUID, itemNo, quantity int) (int64, error) {
	res := tx.Model(&model.ReceiptItem{}).
		Where("receipt_id = ? AND item_no = ?", receiptID, itemNo).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

func (r *receiptRepo) NextItemNoTx(tx *gorm.DB, receiptID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&model.ReceiptItem{}).
		Where("receipt_id = ?", receiptID).
		Select("COALESCE(MAX(item_no), 0)").Scan(&max).Error
	return max + 1, err
}

func (r *receiptRepo) SumItemsTx(tx *gorm.DB, receiptID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&model.ReceiptItem{}).
		Where("receipt_id = ?", receiptID).
		Select("COALESCE(SUM(quantity * unit_price), 0)").Scan(&total).Error
	return total, err
}

func (r *receiptRepo) SetTotalTx(tx *gorm.DB, receiptID uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.Receipt{}).Where("id = ?", receiptID).
		Update("total_price", total).Error
}

func (r *receiptRepo) SetStatusTx(tx *gorm.DB, receiptID uuid.UUID, status string) error {
	return tx.Model(&model.Receipt{}).Where("id = ?", receiptID).
		Update("status", status).Error
}

func (r *receiptRepo) List(ctx context.Context, filter dto.ReceiptFilter) ([]model.Receipt, int64, error) {
	var receipts []model.Receipt
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Receipt{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.BranchID != "" {
		q = q.Where("branch_id = ?", filter.BranchID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").Preload("Customer").Preload("Receptionist").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&receipts).Error
	return receipts, total, err
}
