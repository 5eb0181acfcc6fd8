package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ReceiptFilter is bound from the query string of GET /v1/receipts.
type ReceiptFilter struct {
	Status   string `form:"status"` // draft | completed | all
	BranchID string `form:"branch_id"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemRef is the tagged reference to one sellable thing. The kind is resolved
// once at the API boundary; services never scan catalogs to guess it.
type ItemRef struct {
	Kind string `json:"kind" validate:"required,oneof=retail_product medical_service vaccination_plan vaccine_dose"`
	ID   string `json:"id"   validate:"required,uuid"`
}

type CreateDraftRequest struct {
	// CustomerID is optional for anonymous walk-in sales, though in practice
	// always present so the sale feeds the loyalty ledger.
	CustomerID    *string `json:"customer_id"    validate:"omitempty,uuid"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash card transfer"`
}

type AddItemRequest struct {
	Item ItemRef `json:"item" validate:"required"`
	// Quantity is caller-supplied for retail products and ignored (forced to 1)
	// for services, plans and doses.
	Quantity int     `json:"quantity"`
	PetID    *string `json:"pet_id" validate:"omitempty,uuid"`
}

type AddVaccineDoseRequest struct {
	VaccineID string `json:"vaccine_id" validate:"required,uuid"`
	PetID     string `json:"pet_id"     validate:"required,uuid"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReceiptItemResponse struct {
	ItemNo    int             `json:"item_no"`
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	PetID     *string         `json:"pet_id,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type ReceiptResponse struct {
	ID            string                `json:"id"`
	Number        int                   `json:"number"`
	BranchID      string                `json:"branch_id"`
	CustomerID    *string               `json:"customer_id,omitempty"`
	CustomerName  string                `json:"customer_name,omitempty"`
	Receptionist  string                `json:"receptionist,omitempty"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"payment_method"`
	TotalPrice    decimal.Decimal       `json:"total_price"`
	Items         []ReceiptItemResponse `json:"items"`
	CreatedAt     string                `json:"created_at"`
}

type ReceiptListResponse struct {
	Data  []ReceiptResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
