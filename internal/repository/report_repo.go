package repository

import (
	"context"
	"time"

	"vetpos/internal/dto"
	"vetpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository runs read-only rollups over persisted receipt and ledger
// data. Only completed receipts count towards revenue.
type ReportRepository interface {
	DailyBranchRevenue(ctx context.Context, branchID uuid.UUID, date time.Time) (decimal.Decimal, int64, error)
	DistinctCustomers(ctx context.Context, branchID uuid.UUID, date time.Time) (int64, error)
	ReceptionistPerformance(ctx context.Context, branchID uuid.UUID, date time.Time, limit int) ([]dto.EmployeeStat, error)
	TopItems(ctx context.Context, date time.Time, limit int) ([]dto.ItemStat, error)
	MonthlyRevenueByBranch(ctx context.Context, year int) ([]dto.MonthlyRevenueRow, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) DailyBranchRevenue(ctx context.Context, branchID uuid.UUID, date time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("COALESCE(SUM(total_price), 0) AS total, COUNT(*) AS count").
		Where("branch_id = ? AND status = ? AND DATE(created_at) = ?",
			branchID, model.ReceiptCompleted, date.Format("2006-01-02")).
		Scan(&row).Error
	return row.Total, row.Count, err
}

func (r *reportRepo) DistinctCustomers(ctx context.Context, branchID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("branch_id = ? AND status = ? AND DATE(created_at) = ? AND customer_id IS NOT NULL",
			branchID, model.ReceiptCompleted, date.Format("2006-01-02")).
		Distinct("customer_id").Count(&count).Error
	return count, err
}

func (r *reportRepo) ReceptionistPerformance(ctx context.Context, branchID uuid.UUID, date time.Time, limit int) ([]dto.EmployeeStat, error) {
	var stats []dto.EmployeeStat
	err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("employees.name AS name, COUNT(receipts.id) AS receipt_count, COALESCE(SUM(receipts.total_price), 0) AS revenue").
		Joins("JOIN employees ON employees.id = receipts.receptionist_id").
		Where("receipts.branch_id = ? AND receipts.status = ? AND DATE(receipts.created_at) = ?",
			branchID, model.ReceiptCompleted, date.Format("2006-01-02")).
		Group("employees.name").
		Order("receipt_count DESC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

func (r *reportRepo) TopItems(ctx context.Context, date time.Time, limit int) ([]dto.ItemStat, error) {
	var stats []dto.ItemStat
	err := r.db.WithContext(ctx).Model(&model.ReceiptItem{}).
		Select("receipt_items.item_name AS name, SUM(receipt_items.quantity) AS quantity, SUM(receipt_items.quantity * receipt_items.unit_price) AS revenue").
		Joins("JOIN receipts ON receipts.id = receipt_items.receipt_id").
		Where("receipts.status = ? AND DATE(receipts.created_at) = ?",
			model.ReceiptCompleted, date.Format("2006-01-02")).
		Group("receipt_items.item_name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

func (r *reportRepo) MonthlyRevenueByBranch(ctx context.Context, year int) ([]dto.MonthlyRevenueRow, error) {
	var rows []dto.MonthlyRevenueRow
	err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("branches.name AS branch, EXTRACT(MONTH FROM receipts.created_at)::int AS month, SUM(receipts.total_price) AS total").
		Joins("JOIN branches ON branches.id = receipts.branch_id").
		Where("receipts.status = ? AND EXTRACT(YEAR FROM receipts.created_at) = ?",
			model.ReceiptCompleted, year).
		Group("branches.name, month").
		Order("branch ASC, month ASC").
		Scan(&rows).Error
	return rows, err
}
