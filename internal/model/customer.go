package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a clinic/store customer. MembershipRankID is mutated only by
// registration and by the yearly membership review.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Phone     *string   `gorm:"uniqueIndex"`
	Email     *string   `gorm:"uniqueIndex"`
	Gender    *string   `gorm:"type:varchar(10)"`
	Birthdate *time.Time
	// LoyaltyPoints is a lifetime display-only counter, accrued on receipt
	// completion. It never drives rank classification — CustomerSpending does.
	LoyaltyPoints    int64     `gorm:"not null;default:0"`
	MembershipRankID uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	MembershipRank *MembershipRank `gorm:"foreignKey:MembershipRankID"`
	Pets           []Pet           `gorm:"foreignKey:CustomerID"`
}

// MembershipRank is static reference data: an ordered loyalty tier.
// Invariants: exactly one rank has UpgradeCondition = 0 (the base rank),
// conditions are strictly increasing with Level, and
// MaintainThreshold <= UpgradeCondition for every rank.
type MembershipRank struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"uniqueIndex;not null"`
	// Level orders the tiers; 1 is the base rank.
	Level int `gorm:"uniqueIndex;not null"`
	// UpgradeCondition is the minimum yearly spend to newly qualify for this rank.
	UpgradeCondition decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// MaintainThreshold is the (more lenient) minimum yearly spend to keep it.
	MaintainThreshold decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// DiscountPercent applies to vaccination plan purchases only.
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CustomerSpending is the loyalty ledger: one row per customer per calendar
// year, created lazily on first purchase and incremented atomically with the
// completing receipt. Rows are never decremented and persist for audit.
type CustomerSpending struct {
	CustomerID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Year       int             `gorm:"primaryKey"`
	MoneySpent decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	UpdatedAt  time.Time
}

func (CustomerSpending) TableName() string { return "customer_spendings" }
