package dto

import "github.com/shopspring/decimal"

type EmployeeStat struct {
	Name         string          `json:"name"`
	ReceiptCount int64           `json:"receipt_count"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type ItemStat struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type MonthlyRevenueRow struct {
	Branch string          `json:"branch"`
	Month  int             `json:"month"`
	Total  decimal.Decimal `json:"total"`
}

// DailyBranchReport aggregates one branch's completed receipts for one day.
type DailyBranchReport struct {
	BranchID       string          `json:"branch_id"`
	Date           string          `json:"date"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	ReceiptCount   int64           `json:"receipt_count"`
	CustomerCount  int64           `json:"customer_count"`
	TopEmployees   []EmployeeStat  `json:"top_employees"`
	TopItems       []ItemStat      `json:"top_items"`
}

type DashboardReport struct {
	DailyRevenue   decimal.Decimal     `json:"daily_revenue"`
	ReceiptCount   int64               `json:"receipt_count"`
	TopEmployees   []EmployeeStat      `json:"top_employees"`
	TopItems       []ItemStat          `json:"top_items"`
	MonthlyRevenue []MonthlyRevenueRow `json:"monthly_revenue"`
}
