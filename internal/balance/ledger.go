package balance

import (
	"context"
	"database/sql"

	balanceerrors "go-leave/internal/balance/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger owns the total/used/remaining arithmetic. Every mutation is a
// locked read-modify-write on one balance row; callers bind it to their
// transaction with WithTx so a failed debit rolls back with the rest of
// their work.
//
//go:generate mockgen -source=ledger.go -destination=mock/ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	// Ensure returns the locked balance row, creating a zeroed one if absent.
	Ensure(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	// Available reports remaining days without taking a lock. Used for the
	// creation-time guard, which is a check rather than a hold.
	Available(ctx context.Context, employeeID, leaveTypeID string, year int) (decimal.Decimal, error)
	Debit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	Credit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	// Retarget rewrites every balance of the type to the new default total.
	Retarget(ctx context.Context, leaveTypeID string, newTotal decimal.Decimal) error
	// Regender removes balances of newly ineligible employees and seeds
	// balances for newly eligible ones. A nil gender means unrestricted.
	Regender(ctx context.Context, leaveTypeID string, gender *string, year int, totalDays decimal.Decimal) error
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	return &ledger{repo: repo, logger: l}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: l.repo.WithTx(tx), logger: l.logger}
}

func (l *ledger) Ensure(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	b, err := l.repo.GetForUpdate(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}

	zeroed := &LeaveBalance{
		ID:            uuid.New(),
		EmployeeID:    uuid.MustParse(employeeID),
		LeaveTypeID:   uuid.MustParse(leaveTypeID),
		Year:          year,
		TotalDays:     decimal.Zero,
		UsedDays:      decimal.Zero,
		RemainingDays: decimal.Zero,
	}
	if err := l.repo.Insert(ctx, zeroed); err != nil {
		return nil, err
	}

	// Re-read under lock; a concurrent insert may have won the conflict.
	b, err = l.repo.GetForUpdate(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, balanceerrors.ErrBalanceNotFound
	}
	return b, nil
}

func (l *ledger) Available(ctx context.Context, employeeID, leaveTypeID string, year int) (decimal.Decimal, error) {
	b, err := l.repo.Get(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return decimal.Zero, err
	}
	if b == nil {
		return decimal.Zero, balanceerrors.ErrBalanceNotFound
	}
	return b.RemainingDays, nil
}

func (l *ledger) Debit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	b, err := l.repo.GetForUpdate(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return err
	}
	if b == nil {
		return balanceerrors.ErrBalanceNotFound
	}

	if b.TotalDays.Sub(b.UsedDays).LessThan(days) {
		l.logger.Warn("debit rejected",
			zap.String("employee_id", employeeID),
			zap.String("leave_type_id", leaveTypeID),
			zap.String("requested", days.String()),
			zap.String("remaining", b.TotalDays.Sub(b.UsedDays).String()),
		)
		return balanceerrors.ErrInsufficientBalance
	}

	used := b.UsedDays.Add(days)
	remaining := b.TotalDays.Sub(used)
	return l.repo.UpdateAmounts(ctx, b.ID.String(), b.TotalDays, used, remaining)
}

func (l *ledger) Credit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	b, err := l.Ensure(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return err
	}

	total := b.TotalDays.Add(days)
	remaining := total.Sub(b.UsedDays)
	return l.repo.UpdateAmounts(ctx, b.ID.String(), total, b.UsedDays, remaining)
}

func (l *ledger) Retarget(ctx context.Context, leaveTypeID string, newTotal decimal.Decimal) error {
	l.logger.Info("retarget balances",
		zap.String("leave_type_id", leaveTypeID),
		zap.String("new_total", newTotal.String()),
	)
	return l.repo.RetargetType(ctx, leaveTypeID, newTotal)
}

func (l *ledger) Regender(ctx context.Context, leaveTypeID string, gender *string, year int, totalDays decimal.Decimal) error {
	if gender != nil {
		if err := l.repo.DeleteForExcludedGender(ctx, leaveTypeID, *gender); err != nil {
			return err
		}
	}
	return l.repo.CreateMissingForEligible(ctx, leaveTypeID, gender, year, totalDays)
}
