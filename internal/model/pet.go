package model

import (
	"time"

	"github.com/google/uuid"
)

// Pet belongs to exactly one customer. Referenced by vaccination plan and
// vaccine dose line items, which always attach to a specific animal.
type Pet struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null"`
	Species    string    `gorm:"not null"`
	Breed      *string
	Birthdate  *time.Time
	Weight     *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

// PetVaccinationPlan links a pet to a purchased vaccination plan. Created as
// a side effect of adding a plan line item to a draft receipt, dated at the
// moment the item was added (not at payment).
type PetVaccinationPlan struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PetID             uuid.UUID `gorm:"type:uuid;index;not null"`
	VaccinationPlanID uuid.UUID `gorm:"type:uuid;index;not null"`
	ReceiptID         uuid.UUID `gorm:"type:uuid;index;not null"`
	StartDate         time.Time `gorm:"not null"`
	CreatedAt         time.Time

	Pet  *Pet             `gorm:"foreignKey:PetID"`
	Plan *VaccinationPlan `gorm:"foreignKey:VaccinationPlanID"`
}
