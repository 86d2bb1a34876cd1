package balance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository reads balances through gorm and routes every write through raw
// SQL on the shared *sql.Tx, so callers can compose balance mutations with
// their own statements in one transaction.
//
//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// GetForUpdate locks the row for the remainder of the transaction.
	// Returns nil when no balance row exists.
	GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	Get(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	Insert(ctx context.Context, b *LeaveBalance) error
	UpdateAmounts(ctx context.Context, id string, total, used, remaining decimal.Decimal) error
	RetargetType(ctx context.Context, leaveTypeID string, newTotal decimal.Decimal) error
	DeleteForExcludedGender(ctx context.Context, leaveTypeID, gender string) error
	CreateMissingForEligible(ctx context.Context, leaveTypeID string, gender *string, year int, totalDays decimal.Decimal) error
	ListByLeaveTypeAndYear(ctx context.Context, leaveTypeID string, year int) ([]LeaveBalance, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]BalanceWithType, error)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
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

func (r *repository) execer() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	query := `
SELECT id, employee_id, leave_type_id, year, total_days, used_days, remaining_days
FROM leave_balances
WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
FOR UPDATE
`
	return r.scanOne(r.execer().QueryRowContext(ctx, query, employeeID, leaveTypeID, year))
}

func (r *repository) Get(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	query := `
SELECT id, employee_id, leave_type_id, year, total_days, used_days, remaining_days
FROM leave_balances
WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
`
	return r.scanOne(r.execer().QueryRowContext(ctx, query, employeeID, leaveTypeID, year))
}

func (r *repository) scanOne(row *sql.Row) (*LeaveBalance, error) {
	var b LeaveBalance
	err := row.Scan(
		&b.ID,
		&b.EmployeeID,
		&b.LeaveTypeID,
		&b.Year,
		&b.TotalDays,
		&b.UsedDays,
		&b.RemainingDays,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Insert(ctx context.Context, b *LeaveBalance) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	query := `
INSERT INTO leave_balances (id, employee_id, leave_type_id, year, total_days, used_days, remaining_days)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING
`
	_, err := r.execer().ExecContext(
		ctx, query,
		b.ID, b.EmployeeID, b.LeaveTypeID, b.Year,
		b.TotalDays, b.UsedDays, b.RemainingDays,
	)
	return err
}

func (r *repository) UpdateAmounts(ctx context.Context, id string, total, used, remaining decimal.Decimal) error {
	query := `
UPDATE leave_balances
SET total_days = $2, used_days = $3, remaining_days = $4, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, total, used, remaining)
	return err
}

func (r *repository) RetargetType(ctx context.Context, leaveTypeID string, newTotal decimal.Decimal) error {
	// Used days are never reduced retroactively, so remaining floors at zero.
	query := `
UPDATE leave_balances
SET total_days = $2,
	remaining_days = GREATEST(0, $2 - used_days),
	updated_at = NOW()
WHERE leave_type_id = $1
`
	_, err := r.execer().ExecContext(ctx, query, leaveTypeID, newTotal)
	return err
}

func (r *repository) DeleteForExcludedGender(ctx context.Context, leaveTypeID, gender string) error {
	query := `
DELETE FROM leave_balances b
USING employees e
WHERE b.employee_id = e.id
	AND b.leave_type_id = $1
	AND (e.gender IS NULL OR e.gender <> $2)
`
	_, err := r.execer().ExecContext(ctx, query, leaveTypeID, gender)
	return err
}

func (r *repository) CreateMissingForEligible(ctx context.Context, leaveTypeID string, gender *string, year int, totalDays decimal.Decimal) error {
	query := `
INSERT INTO leave_balances (id, employee_id, leave_type_id, year, total_days, used_days, remaining_days)
SELECT gen_random_uuid(), e.id, $1, $2, $3, 0, $3
FROM employees e
WHERE e.is_active = true
	AND e.deleted_at IS NULL
	AND ($4::text IS NULL OR e.gender = $4)
	AND NOT EXISTS (
		SELECT 1 FROM leave_balances b
		WHERE b.employee_id = e.id AND b.leave_type_id = $1 AND b.year = $2
	)
`
	_, err := r.execer().ExecContext(ctx, query, leaveTypeID, year, totalDays, gender)
	return err
}

func (r *repository) ListByLeaveTypeAndYear(ctx context.Context, leaveTypeID string, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("leave_type_id = ?", leaveTypeID).
		Where("year = ?", year).
		Find(&balances).Error
	return balances, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]BalanceWithType, error) {
	var balances []BalanceWithType
	err := r.db.WithContext(ctx).
		Table("leave_balances").
		Select("leave_balances.*, leave_types.name AS leave_type_name").
		Joins("JOIN leave_types ON leave_types.id = leave_balances.leave_type_id").
		Where("leave_balances.employee_id = ?", employeeID).
		Order("leave_types.name ASC").
		Scan(&balances).Error
	return balances, err
}
