package dto

// One-shot purchase flows: draft, item and completion collapse into a single
// transaction. Used by the self-service portal and the quick-sale screen.

type RetailPurchaseRequest struct {
	ProductID     string `json:"product_id"     validate:"required,uuid"`
	Quantity      int    `json:"quantity"       validate:"required,min=1"`
	CustomerID    string `json:"customer_id"    validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card transfer"`
}

type VaccinationPlanPurchaseRequest struct {
	PlanID        string `json:"plan_id"        validate:"required,uuid"`
	PetID         string `json:"pet_id"         validate:"required,uuid"`
	CustomerID    string `json:"customer_id"    validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card transfer"`
}
