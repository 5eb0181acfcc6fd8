package model

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical clinic/store location.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Address   *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Branch) TableName() string { return "branches" }

// Employee is a staff member. Role: "receptionist" | "vet" | "sales" |
// "manager" | "director".
type Employee struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string     `gorm:"not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	BranchID     *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
}
