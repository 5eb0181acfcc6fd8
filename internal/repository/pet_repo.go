package repository

import (
	"context"

	"vetpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pet, error)
	// CreatePlanTx records a pet's enrollment in a vaccination plan inside the
	// transaction that adds the plan line item.
	CreatePlanTx(tx *gorm.DB, p *model.PetVaccinationPlan) error
	ListPlansByPet(ctx context.Context, petID uuid.UUID) ([]model.PetVaccinationPlan, error)
}

type petRepo struct{ db *gorm.DB }

func NewPetRepository(db *gorm.DB) PetRepository { return &petRepo{db: db} }

func (r *petRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	var p model.Pet
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *petRepo) CreatePlanTx(tx *gorm.DB, p *model.PetVaccinationPlan) error {
	return tx.Create(p).Error
}

func (r *petRepo) ListPlansByPet(ctx context.Context, petID uuid.UUID) ([]model.PetVaccinationPlan, error) {
	var plans []model.PetVaccinationPlan
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("pet_id = ?", petID).Order("start_date DESC").Find(&plans).Error
	return plans, err
}
