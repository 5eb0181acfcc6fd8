package repository

import (
	"context"

	"vetpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	Create(ctx context.Context, e *model.Employee) error
}

type employeeRepo struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository { return &employeeRepo{db: db} }

func (r *employeeRepo) FindByUsername(ctx context.Context, username string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).Where("username = ? AND active = true", username).First(&e).Error
	return &e, err
}

func (r *employeeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *employeeRepo) Create(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}
