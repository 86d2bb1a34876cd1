package leaverequest

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Insert(ctx context.Context, lr *LeaveRequest) error
	UpdateStatus(ctx context.Context, id, status string, remarks *string) error
	// FindByID loads the request with its employee and leave type, or nil
	// when no row matches.
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	// HasOverlapping reports whether the employee already has a pending or
	// approved request whose period intersects [startDate, endDate].
	HasOverlapping(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
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
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) Insert(ctx context.Context, lr *LeaveRequest) error {
	query := `
        INSERT INTO leave_requests (
            id, employee_id, leave_type_id, start_date, end_date,
            is_half_day, total_days, reason, status, remarks
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		lr.ID, lr.EmployeeID, lr.LeaveTypeID, lr.StartDate, lr.EndDate,
		lr.IsHalfDay, lr.TotalDays, lr.Reason, lr.Status, lr.Remarks,
	)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string, remarks *string) error {
	query := `
UPDATE leave_requests
SET
	status = $2,
	remarks = COALESCE($3, remarks),
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, status, remarks)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("Employee.Role").
		Preload("LeaveType").
		First(&lr, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

func (r *repository) HasOverlapping(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&requests).Error
	return requests, err
}
