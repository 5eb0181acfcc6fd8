package service

import (
	"context"
	"time"

	"vetpos/internal/dto"
	"vetpos/internal/repository"

	"github.com/google/uuid"
)

const reportTopN = 5

// ReportService assembles read-only revenue rollups. Only completed receipts
// contribute; drafts are invisible to every report.
type ReportService interface {
	DailyBranch(ctx context.Context, branchID uuid.UUID, date time.Time) (*dto.DailyBranchReport, error)
	Dashboard(ctx context.Context, branchID uuid.UUID, date time.Time) (*dto.DashboardReport, error)
}

type reportService struct {
	repo repository.ReportRepository
}

func NewReportService(repo repository.ReportRepository) ReportService {
	return &reportService{repo: repo}
}

func (s *reportService) DailyBranch(ctx context.Context, branchID uuid.UUID, date time.Time) (*dto.DailyBranchReport, error) {
	revenue, count, err := s.repo.DailyBranchRevenue(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.DistinctCustomers(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	employees, err := s.repo.ReceptionistPerformance(ctx, branchID, date, reportTopN)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.TopItems(ctx, date, reportTopN)
	if err != nil {
		return nil, err
	}
	return &dto.DailyBranchReport{
		BranchID:      branchID.String(),
		Date:          date.Format("2006-01-02"),
		TotalRevenue:  revenue,
		ReceiptCount:  count,
		CustomerCount: customers,
		TopEmployees:  employees,
		TopItems:      items,
	}, nil
}

func (s *reportService) Dashboard(ctx context.Context, branchID uuid.UUID, date time.Time) (*dto.DashboardReport, error) {
	revenue, count, err := s.repo.DailyBranchRevenue(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	employees, err := s.repo.ReceptionistPerformance(ctx, branchID, date, reportTopN)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.TopItems(ctx, date, reportTopN)
	if err != nil {
		return nil, err
	}
	monthly, err := s.repo.MonthlyRevenueByBranch(ctx, date.Year())
	if err != nil {
		return nil, err
	}
	return &dto.DashboardReport{
		DailyRevenue:   revenue,
		ReceiptCount:   count,
		TopEmployees:   employees,
		TopItems:       items,
		MonthlyRevenue: monthly,
	}, nil
}
