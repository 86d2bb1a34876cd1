package allocation

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/directory"
	"go-leave/internal/events"
	"go-leave/internal/leavetype"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RunSummary reports what one allocation run did. Skipped counts credits
// whose log row already existed for the date.
type RunSummary struct {
	RunDate        string `json:"run_date"`
	Credited       int    `json:"credited"`
	Skipped        int    `json:"skipped"`
	CarriedForward int    `json:"carried_forward"`
	Failed         int    `json:"failed"`
}

//go:generate mockgen -source=allocation_service.go -destination=mock/allocation_service_mock.go -package=mock
type Service interface {
	// Run performs every allocation due on the given day. Running the same
	// day twice credits nothing the second time.
	Run(ctx context.Context, today time.Time) (RunSummary, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	types     leavetype.Repository
	directory directory.Repository
	balances  balance.Repository
	ledger    balance.Ledger
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	types leavetype.Repository,
	dir directory.Repository,
	balances balance.Repository,
	ledger balance.Ledger,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("allocation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("allocation.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		types:     types,
		directory: dir,
		balances:  balances,
		ledger:    ledger,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Run(ctx context.Context, today time.Time) (RunSummary, error) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	summary := RunSummary{RunDate: today.Format("2006-01-02")}

	s.logger.Info("allocation run started", zap.String("run_date", summary.RunDate))

	types, err := s.types.FindAll(ctx)
	if err != nil {
		s.logger.Error("allocation run type listing failed", zap.Error(err))
		return summary, err
	}

	for i := range types {
		lt := &types[i]

		if isYearStart(today) && lt.IsCarryForwardAllowed && lt.AllocationFrequency == leavetype.FrequencyYearly {
			s.carryForward(ctx, lt, today, &summary)
		}
		if lt.IsAutoAllocatable && isAllocationDay(lt.AllocationFrequency, today) {
			s.allocate(ctx, lt, today, &summary)
		}
	}

	s.logger.Info("allocation run finished",
		zap.String("run_date", summary.RunDate),
		zap.Int("credited", summary.Credited),
		zap.Int("skipped", summary.Skipped),
		zap.Int("carried_forward", summary.CarriedForward),
		zap.Int("failed", summary.Failed),
	)

	if summary.Credited > 0 || summary.CarriedForward > 0 {
		s.publishSummary(ctx, summary)
	}
	return summary, nil
}

// allocate credits one period's share of the annual allocation to every
// eligible employee.
func (s *service) allocate(ctx context.Context, lt *leavetype.LeaveType, today time.Time, summary *RunSummary) {
	amount := lt.DefaultAnnualAllocation.
		Div(decimal.NewFromInt(periodsPerYear(lt.AllocationFrequency))).
		Round(2)
	if !amount.IsPositive() {
		return
	}

	employees, err := s.directory.ListEmployees(ctx, lt.ApplicableGender)
	if err != nil {
		s.logger.Error("allocation employee listing failed",
			zap.String("leave_type_id", lt.ID.String()),
			zap.Error(err),
		)
		summary.Failed++
		return
	}

	for _, e := range employees {
		credited, err := s.creditOnce(ctx, e.ID, lt.ID, lt.AllocationFrequency, today, today.Year(), amount)
		if err != nil {
			s.logger.Error("allocation credit failed",
				zap.String("employee_id", e.ID.String()),
				zap.String("leave_type_id", lt.ID.String()),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}
		if credited {
			summary.Credited++
		} else {
			summary.Skipped++
		}
	}
}

// carryForward moves unused days from last year into the new year, clamped
// to the type's carry-forward limit.
func (s *service) carryForward(ctx context.Context, lt *leavetype.LeaveType, today time.Time, summary *RunSummary) {
	prevYear := today.Year() - 1
	rows, err := s.balances.ListByLeaveTypeAndYear(ctx, lt.ID.String(), prevYear)
	if err != nil {
		s.logger.Error("carry forward balance listing failed",
			zap.String("leave_type_id", lt.ID.String()),
			zap.Error(err),
		)
		summary.Failed++
		return
	}

	for _, b := range rows {
		carry := b.RemainingDays
		if lt.CarryForwardLimit != nil && carry.GreaterThan(*lt.CarryForwardLimit) {
			carry = *lt.CarryForwardLimit
		}
		if !carry.IsPositive() {
			continue
		}

		credited, err := s.creditOnce(ctx, b.EmployeeID, lt.ID, FrequencyCarryForward, today, today.Year(), carry)
		if err != nil {
			s.logger.Error("carry forward credit failed",
				zap.String("employee_id", b.EmployeeID.String()),
				zap.String("leave_type_id", lt.ID.String()),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}
		if credited {
			summary.CarriedForward++
		} else {
			summary.Skipped++
		}
	}
}

// creditOnce writes the log row and the balance credit in one transaction
// per employee, so a crash mid-run leaves every prior credit intact and
// every missing one retryable.
func (s *service) creditOnce(ctx context.Context, employeeID, leaveTypeID uuid.UUID, frequency string, today time.Time, year int, days decimal.Decimal) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	log := &AllocationLog{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		LeaveTypeID:    leaveTypeID,
		Frequency:      frequency,
		AllocationDate: today,
		Days:           days,
	}
	inserted, err := s.repo.WithTx(tx).InsertLog(ctx, log)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	if err := s.ledger.WithTx(tx).Credit(ctx, employeeID.String(), leaveTypeID.String(), year, days); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (s *service) publishSummary(ctx context.Context, summary RunSummary) {
	eventType := events.EventAllocationCompleted
	if summary.CarriedForward > 0 && summary.Credited == 0 {
		eventType = events.EventCarryForwardCompleted
	}
	payload := events.AllocationCompletedEvent{
		EventType:     eventType,
		RunDate:       summary.RunDate,
		CreditedCount: summary.Credited + summary.CarriedForward,
		SkippedCount:  summary.Skipped,
		OccurredAt:    time.Now().UTC(),
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"allocation_run",
		summary.RunDate,
		eventType,
		events.AllocationCompletedTopic,
		payload,
	)
	if err != nil {
		s.logger.Error("build allocation event failed", zap.Error(err))
		return
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error("enqueue allocation event failed", zap.Error(err))
	}
}

func isYearStart(today time.Time) bool {
	return today.Month() == time.January && today.Day() == 1
}

func isAllocationDay(frequency string, today time.Time) bool {
	if today.Day() != 1 {
		return false
	}
	switch frequency {
	case leavetype.FrequencyYearly:
		return today.Month() == time.January
	case leavetype.FrequencyQuarterly:
		switch today.Month() {
		case time.January, time.April, time.July, time.October:
			return true
		}
		return false
	case leavetype.FrequencyMonthly:
		return true
	}
	return false
}

func periodsPerYear(frequency string) int64 {
	switch frequency {
	case leavetype.FrequencyMonthly:
		return 12
	case leavetype.FrequencyQuarterly:
		return 4
	default:
		return 1
	}
}
