package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/directory"
	"go-leave/internal/events"
	leaverequesterrors "go-leave/internal/leaverequest/errors"
	"go-leave/internal/leavetype"
	leavetypeerrors "go-leave/internal/leavetype/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// AutoApproveRemarks is written on requests the engine approves itself.
const AutoApproveRemarks = "Auto-approved by system"

const dashboardCacheTTL = 60 * time.Second

// ApprovalOrchestrator is a local interface. The approval package implements
// it; requests never import that package directly.
type ApprovalOrchestrator interface {
	// CreateChain inserts one approval row per level for the request, using
	// the requester's role and team to pick approvers.
	CreateChain(ctx context.Context, tx *sql.Tx, requestID, employeeID string, levels int) error
	// AutoApprove inserts a single already-approved level attributed to the
	// system role.
	AutoApprove(ctx context.Context, tx *sql.Tx, requestID string) error
	// CancelOpen cancels every approval of the request that is still pending.
	CancelOpen(ctx context.Context, tx *sql.Tx, requestID string) error
}

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, actorID, id string) (LeaveRequestResponse, error)
	GetByID(ctx context.Context, actorID, id string) (LeaveRequestResponse, error)
	History(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	Dashboard(ctx context.Context, employeeID string) (DashboardResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	directory directory.Repository
	types     leavetype.Repository
	balances  balance.Repository
	ledger    balance.Ledger
	approvals ApprovalOrchestrator
	outbox    kafka.OutboxRepository
	cache     *redis.Client
	group     singleflight.Group
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	dir directory.Repository,
	types leavetype.Repository,
	balances balance.Repository,
	ledger balance.Ledger,
	approvals ApprovalOrchestrator,
	outbox kafka.OutboxRepository,
	cache *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		directory: dir,
		types:     types,
		balances:  balances,
		ledger:    ledger,
		approvals: approvals,
		outbox:    outbox,
		cache:     cache,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error) {
	s.logger.Debug("create leave request requested",
		zap.String("employee_id", actorID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Bool("last_day_half", req.LastDayHalf),
	)

	employeeUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidEmployeeID
	}
	typeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveTypeID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateRange
	}

	employee, err := s.directory.FindEmployeeByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrEmployeeNotFound
		}
		s.logger.Error("create leave request employee lookup failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if !employee.IsActive {
		return LeaveRequestResponse{}, leaverequesterrors.ErrEmployeeInactive
	}

	lt, err := s.types.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		s.logger.Error("create leave request type lookup failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if !genderEligible(lt.ApplicableGender, employee.Gender) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrGenderNotEligible
	}

	workingDays := countWorkingDays(startDate, endDate)
	if workingDays == 0 {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNoWorkingDays
	}
	totalDays := decimal.NewFromInt(int64(workingDays))
	if req.LastDayHalf && isWeekday(endDate) {
		// A weekend end date gets no half-day adjustment.
		totalDays = totalDays.Sub(decimal.NewFromFloat(0.5))
	}

	today := time.Now().UTC()
	if exceedsBackdateLimit(startDate, today) {
		s.logger.Warn("create leave request backdated too far",
			zap.String("employee_id", actorID),
			zap.String("start_date", req.StartDate),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrBackdateLimitExceeded
	}

	overlap, err := s.repo.HasOverlapping(ctx, actorID, startDate, endDate)
	if err != nil {
		s.logger.Error("create leave request overlap check failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave request overlap detected",
			zap.String("employee_id", actorID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveOverlap
	}

	year := startDate.Year()
	available, err := s.ledger.Available(ctx, actorID, req.LeaveTypeID, year)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if available.LessThan(totalDays) {
		s.logger.Warn("create leave request insufficient balance",
			zap.String("employee_id", actorID),
			zap.String("leave_type_id", req.LeaveTypeID),
			zap.String("requested", totalDays.String()),
			zap.String("available", available.String()),
		)
		return LeaveRequestResponse{}, balanceerrors.ErrInsufficientBalance
	}

	autoApprove := lt.AutoApprove

	lr := &LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeUUID,
		LeaveTypeID: typeUUID,
		StartDate:   startDate,
		EndDate:     endDate,
		IsHalfDay:   req.LastDayHalf,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Status:      StatusPending,
	}
	if autoApprove {
		lr.Status = StatusApproved
		remarks := AutoApproveRemarks
		lr.Remarks = &remarks
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave request begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Insert(ctx, lr); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if autoApprove {
		// Auto-approved requests consume balance immediately. The remaining
		// days were re-read without a lock above, so debit under lock here.
		if err := s.ledger.WithTx(tx).Debit(ctx, actorID, req.LeaveTypeID, year, totalDays); err != nil {
			s.logger.Error("create leave request auto debit failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		if err := s.approvals.AutoApprove(ctx, tx, lr.ID.String()); err != nil {
			s.logger.Error("create leave request auto approval failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
	} else {
		if err := s.approvals.CreateChain(ctx, tx, lr.ID.String(), actorID, lt.ApprovalLevels); err != nil {
			s.logger.Error("create leave request chain build failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
	}

	if err := s.enqueueLifecycleEvent(ctx, tx, lr, events.EventLeaveRequestCreated); err != nil {
		return LeaveRequestResponse{}, err
	}
	if autoApprove {
		if err := s.enqueueLifecycleEvent(ctx, tx, lr, events.EventLeaveRequestApproved); err != nil {
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave request commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	s.invalidateDashboard(ctx, actorID)
	s.logger.Info("create leave request success",
		zap.String("request_id", lr.ID.String()),
		zap.String("employee_id", actorID),
		zap.String("status", lr.Status),
		zap.String("total_days", totalDays.String()),
	)

	lr.Employee = employee
	lr.LeaveType = lt
	return mapToResponse(*lr), nil
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (LeaveRequestResponse, error) {
	s.logger.Debug("cancel leave request requested",
		zap.String("request_id", id),
		zap.String("actor_id", actorID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("cancel leave request lookup failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if lr == nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
	}
	if lr.EmployeeID.String() != actorID {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNotRequestOwner
	}
	if lr.Status != StatusPending {
		s.logger.Warn("cancel leave request not pending",
			zap.String("request_id", id),
			zap.String("status", lr.Status),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrNotCancellable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave request begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	// Pending requests hold no balance, so cancellation releases nothing.
	if err := s.repo.WithTx(tx).UpdateStatus(ctx, id, StatusCancelled, nil); err != nil {
		s.logger.Error("cancel leave request persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if err := s.approvals.CancelOpen(ctx, tx, id); err != nil {
		s.logger.Error("cancel leave request approvals failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	lr.Status = StatusCancelled
	if err := s.enqueueLifecycleEvent(ctx, tx, lr, events.EventLeaveRequestCancelled); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave request commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	s.invalidateDashboard(ctx, actorID)
	s.logger.Info("cancel leave request success", zap.String("request_id", id))

	return mapToResponse(*lr), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}
	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if lr == nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
	}
	if lr.EmployeeID.String() != actorID {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNotRequestOwner
	}
	return mapToResponse(*lr), nil
}

func (s *service) History(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error) {
	requests, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToResponse(lr)
	}
	return resp, nil
}

func (s *service) Dashboard(ctx context.Context, employeeID string) (DashboardResponse, error) {
	key := dashboardCacheKey(employeeID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var resp DashboardResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return resp, nil
			}
		}
	}

	// Collapse concurrent misses for the same employee into one query.
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.loadDashboard(ctx, employeeID)
	})
	if err != nil {
		return DashboardResponse{}, err
	}
	resp := v.(DashboardResponse)

	if s.cache != nil {
		if body, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, key, body, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache set failed", zap.Error(err))
			}
		}
	}
	return resp, nil
}

func (s *service) loadDashboard(ctx context.Context, employeeID string) (DashboardResponse, error) {
	history, err := s.History(ctx, employeeID)
	if err != nil {
		return DashboardResponse{}, err
	}

	rows, err := s.balances.FindByEmployee(ctx, employeeID)
	if err != nil {
		return DashboardResponse{}, err
	}
	balances := make([]BalanceSummary, len(rows))
	for i, b := range rows {
		balances[i] = BalanceSummary{
			LeaveTypeID:   b.LeaveTypeID.String(),
			LeaveTypeName: b.LeaveTypeName,
			Year:          b.Year,
			TotalDays:     b.TotalDays.InexactFloat64(),
			UsedDays:      b.UsedDays.InexactFloat64(),
			RemainingDays: b.RemainingDays.InexactFloat64(),
		}
	}

	return DashboardResponse{History: history, Balances: balances}, nil
}

func (s *service) enqueueLifecycleEvent(ctx context.Context, tx *sql.Tx, lr *LeaveRequest, eventType string) error {
	payload := events.LeaveRequestLifecycleEvent{
		EventType:   eventType,
		RequestID:   lr.ID.String(),
		EmployeeID:  lr.EmployeeID.String(),
		LeaveTypeID: lr.LeaveTypeID.String(),
		Status:      lr.Status,
		TotalDays:   lr.TotalDays.String(),
		OccurredAt:  time.Now().UTC(),
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		AggregateType,
		lr.ID.String(),
		eventType,
		events.LeaveRequestLifecycleTopic,
		payload,
	)
	if err != nil {
		s.logger.Error("build lifecycle event failed", zap.Error(err))
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("enqueue lifecycle event failed",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) invalidateDashboard(ctx context.Context, employeeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(employeeID)).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidate failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func dashboardCacheKey(employeeID string) string {
	return "dashboard:" + employeeID
}

func genderEligible(applicable, gender *string) bool {
	if applicable == nil {
		return true
	}
	return gender != nil && *gender == *applicable
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:          lr.ID.String(),
		EmployeeID:  lr.EmployeeID.String(),
		LeaveTypeID: lr.LeaveTypeID.String(),
		StartDate:   lr.StartDate.Format("2006-01-02"),
		EndDate:     lr.EndDate.Format("2006-01-02"),
		IsHalfDay:   lr.IsHalfDay,
		TotalDays:   lr.TotalDays.InexactFloat64(),
		Reason:      lr.Reason,
		Status:      lr.Status,
		Remarks:     lr.Remarks,
		CreatedAt:   lr.CreatedAt.Format(time.RFC3339),
	}
	if lr.Employee != nil {
		resp.EmployeeName = lr.Employee.Name
	}
	if lr.LeaveType != nil {
		resp.LeaveTypeName = lr.LeaveType.Name
	}
	return resp
}
