package leavetype

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leavetype_repo.go -destination=mock/leavetype_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Insert(ctx context.Context, lt *LeaveType) error
	Update(ctx context.Context, lt *LeaveType) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*LeaveType, error)
	FindAll(ctx context.Context) ([]LeaveType, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) Insert(ctx context.Context, lt *LeaveType) error {
	query := `
INSERT INTO leave_types (
	id, name, description, total_days, approval_levels, auto_approve,
	allocation_frequency, is_auto_allocatable, default_annual_allocation,
	is_carry_forward_allowed, carry_forward_limit, applicable_gender
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		lt.ID, lt.Name, lt.Description, lt.TotalDays, lt.ApprovalLevels, lt.AutoApprove,
		lt.AllocationFrequency, lt.IsAutoAllocatable, lt.DefaultAnnualAllocation,
		lt.IsCarryForwardAllowed, lt.CarryForwardLimit, lt.ApplicableGender,
	)
	return err
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	query := `
UPDATE leave_types
SET name = $2, description = $3, total_days = $4, approval_levels = $5,
	auto_approve = $6, allocation_frequency = $7, is_auto_allocatable = $8,
	default_annual_allocation = $9, is_carry_forward_allowed = $10,
	carry_forward_limit = $11, applicable_gender = $12, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(
		ctx, query,
		lt.ID, lt.Name, lt.Description, lt.TotalDays, lt.ApprovalLevels,
		lt.AutoApprove, lt.AllocationFrequency, lt.IsAutoAllocatable,
		lt.DefaultAnnualAllocation, lt.IsCarryForwardAllowed,
		lt.CarryForwardLimit, lt.ApplicableGender,
	)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&LeaveType{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveType, error) {
	var lt LeaveType
	err := r.db.WithContext(ctx).First(&lt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}
