package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The four sellable catalogs. Item ids are disjoint across catalogs (uuid
// primary keys), so the pricing resolver's precedence scan cannot collide.

// RetailProduct is an over-the-counter store item (food, toys, medicine).
type RetailProduct struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MedicalService is a billable clinic act (checkup, surgery, grooming).
type MedicalService struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VaccinationPlan is a multi-dose vaccination package sold as one line item.
// The only catalog whose price is reduced by the customer's membership rank.
type VaccinationPlan struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string          `gorm:"index;not null"`
	Price          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DurationMonths int             `gorm:"not null;default:12"`
	Active         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Vaccine is a single administrable dose. Doses are billed through the
// dedicated vaccination lookup path, never through the generic item picker.
type Vaccine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BranchStock tracks retail product quantity per branch. Only the one-shot
// retail purchase flow checks and decrements it.
type BranchStock struct {
	BranchID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RetailProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity        int       `gorm:"not null;default:0"`
	UpdatedAt       time.Time
}

func (BranchStock) TableName() string { return "branch_stocks" }
