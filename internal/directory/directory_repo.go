package directory

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository is the read-side view of the employee/role/team directory. The
// engine never writes these tables; CRUD belongs to the upstream HR service.
//
//go:generate mockgen -source=directory_repo.go -destination=mock/directory_repo_mock.go -package=mock
type Repository interface {
	FindEmployeeByID(ctx context.Context, id string) (*Employee, error)
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	// FindApprover returns the employee holding the role on the team, or nil
	// when the seat is vacant.
	FindApprover(ctx context.Context, roleID, teamID string) (*Employee, error)
	// ListEmployees returns active employees, optionally filtered by gender.
	ListEmployees(ctx context.Context, gender *string) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindEmployeeByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Team").
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.db.WithContext(ctx).
		First(&role, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindApprover(ctx context.Context, roleID, teamID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Where("team_id = ?", teamID).
		Where("is_active = true").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) ListEmployees(ctx context.Context, gender *string) ([]Employee, error) {
	q := r.db.WithContext(ctx).
		Where("is_active = true")
	if gender != nil {
		q = q.Where("gender = ?", *gender)
	}

	var employees []Employee
	err := q.Find(&employees).Error
	return employees, err
}
