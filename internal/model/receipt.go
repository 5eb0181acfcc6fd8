package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt status values. A receipt is mutable only while draft; completion is
// terminal — there is no cancelled state in this subsystem.
const (
	ReceiptDraft     = "draft"
	ReceiptCompleted = "completed"
)

// Line item kinds. Each kind carries its own price-resolution and validation
// rules (see service.PricingResolver and service.ReceiptService).
const (
	ItemRetailProduct   = "retail_product"
	ItemMedicalService  = "medical_service"
	ItemVaccinationPlan = "vaccination_plan"
	ItemVaccineDose     = "vaccine_dose"
)

// Receipt is the billing aggregate root. TotalPrice is derived — always
// recomputed from the full set of items after every mutation, never adjusted
// incrementally.
type Receipt struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Number is a human-facing sequence from receipts_number_seq.
	Number         int        `gorm:"uniqueIndex;not null"`
	BranchID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID     *uuid.UUID `gorm:"type:uuid;index"` // nil = anonymous walk-in
	ReceptionistID uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status         string     `gorm:"type:varchar(20);not null;default:'draft'"`
	PaymentMethod  string     `gorm:"type:varchar(20);not null;default:'cash'"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Customer     *Customer     `gorm:"foreignKey:CustomerID"`
	Receptionist *Employee     `gorm:"foreignKey:ReceptionistID"`
	Branch       *Branch       `gorm:"foreignKey:BranchID"`
	Items        []ReceiptItem `gorm:"foreignKey:ReceiptID"`
}

// ReceiptItem is one line of a receipt. ItemNo is sequential PER RECEIPT
// (composite key), assigned under the receipt row lock. UnitPrice is
// snapshotted at add-time; later catalog price changes never touch open drafts.
type ReceiptItem struct {
	ReceiptID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemNo    int       `gorm:"primaryKey;autoIncrement:false"`
	ItemType  string    `gorm:"type:varchar(20);not null"`
	ItemRefID uuid.UUID `gorm:"type:uuid;not null"`
	ItemName  string    `gorm:"not null"`
	// PetID is required for vaccination plan and vaccine dose items.
	PetID     *uuid.UUID      `gorm:"type:uuid"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time
}

// Subtotal returns quantity x unit price for this line.
func (i ReceiptItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
