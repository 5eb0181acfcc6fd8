package dto

import "github.com/shopspring/decimal"

type PetResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Species string  `json:"species"`
	Breed   *string `json:"breed,omitempty"`
}

type CustomerResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Phone         *string         `json:"phone,omitempty"`
	Email         *string         `json:"email,omitempty"`
	LoyaltyPoints int64           `json:"loyalty_points"`
	Rank          string          `json:"rank"`
	YearlySpend   decimal.Decimal `json:"yearly_spend"`
	Pets          []PetResponse   `json:"pets"`
}

type SpendingResponse struct {
	CustomerID string          `json:"customer_id"`
	Year       int             `json:"year"`
	MoneySpent decimal.Decimal `json:"money_spent"`
}
