package repository

import (
	"context"

	"vetpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByIDWithPets(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// ListAll returns every customer (id, name, rank). The yearly review loads
	// the whole population; pagination happens only on the HTTP list endpoints,
	// which are outside this core.
	ListAll(ctx context.Context) ([]model.Customer, error)

	// FindForUpdateTx re-reads the customer under a row lock so the yearly
	// review's read-classify-write is atomic per customer.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	UpdateRankTx(tx *gorm.DB, id, rankID uuid.UUID) error
	AddLoyaltyPointsTx(tx *gorm.DB, id uuid.UUID, points int64) error

	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) DB() *gorm.DB { return r.db }

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) FindByIDWithPets(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Preload("Pets").Preload("MembershipRank").First(&c, id).Error
	return &c, err
}

func (r *customerRepo) ListAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) UpdateRankTx(tx *gorm.DB, id, rankID uuid.UUID) error {
	return tx.Model(&model.Customer{}).Where("id = ?", id).
		Update("membership_rank_id", rankID).Error
}

func (r *customerRepo) AddLoyaltyPointsTx(tx *gorm.DB, id uuid.UUID, points int64) error {
	return tx.Model(&model.Customer{}).Where("id = ?", id).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points)).Error
}

// RankRepository reads the static membership rank table.
type RankRepository interface {
	// ListOrdered returns all ranks sorted ascending by upgrade condition.
	ListOrdered(ctx context.Context) ([]model.MembershipRank, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.MembershipRank, error)
}

type rankRepo struct{ db *gorm.DB }

func NewRankRepository(db *gorm.DB) RankRepository { return &rankRepo{db: db} }

func (r *rankRepo) ListOrdered(ctx context.Context) ([]model.MembershipRank, error) {
	var ranks []model.MembershipRank
	err := r.db.WithContext(ctx).Order("upgrade_condition ASC").Find(&ranks).Error
	return ranks, err
}

func (r *rankRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MembershipRank, error) {
	var rank model.MembershipRank
	err := r.db.WithContext(ctx).First(&rank, id).Error
	return &rank, err
}
