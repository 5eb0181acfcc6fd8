package dto

import "github.com/shopspring/decimal"

// ReviewRow reports one customer's classification during a yearly review.
type ReviewRow struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	OldRank      string          `json:"old_rank"`
	NewRank      string          `json:"new_rank"`
	MoneySpent   decimal.Decimal `json:"money_spent"`
}

// ReviewFailure records a customer whose rank update failed. The run carries
// on — failures are reported, never fatal.
type ReviewFailure struct {
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
}

type ReviewSummary struct {
	Year            int `json:"year"`
	TotalCustomers  int `json:"total_customers"`
	TotalUpgrades   int `json:"total_upgrades"`
	TotalDowngrades int `json:"total_downgrades"`
	TotalMaintained int `json:"total_maintained"`
	TotalFailures   int `json:"total_failures"`
}

// ReviewResult is the reporting side-channel of a yearly review run. The
// authoritative state is the customers table's rank column.
type ReviewResult struct {
	Upgrades   []ReviewRow     `json:"upgrades"`
	Downgrades []ReviewRow     `json:"downgrades"`
	Maintained []ReviewRow     `json:"maintained"`
	Failures   []ReviewFailure `json:"failures"`
	Summary    ReviewSummary   `json:"summary"`
}
