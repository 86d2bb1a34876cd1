package approval

import (
	"context"
	"database/sql"
	"errors"
	"time"

	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/authz"
	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/directory"
	"go-leave/internal/events"
	"go-leave/internal/leaverequest"
	leaverequesterrors "go-leave/internal/leaverequest/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// escalationPaths maps a requester's role to the roles that review their
// requests, in order. Roles absent from the directory are skipped when the
// chain is built.
var escalationPaths = map[string][]string{
	authz.RoleDeveloper: {authz.RoleTeamLead, authz.RoleManager, authz.RoleHR},
	authz.RoleTeamLead:  {authz.RoleManager, authz.RoleHR},
	authz.RoleManager:   {authz.RoleHR},
	authz.RoleHR:        {authz.RoleHR},
}

func escalationPath(roleName string) []string {
	if path, ok := escalationPaths[roleName]; ok {
		return path
	}
	return escalationPaths[authz.RoleDeveloper]
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	leaverequest.ApprovalOrchestrator

	Resolve(ctx context.Context, actorID, approvalID string, req ResolveApprovalRequest) (ApprovalResponse, error)
	Pending(ctx context.Context, actorID string) ([]ApprovalResponse, error)
	Processed(ctx context.Context, actorID string) ([]ApprovalResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	requests  leaverequest.Repository
	directory directory.Repository
	ledger    balance.Ledger
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	requests leaverequest.Repository,
	dir directory.Repository,
	ledger balance.Ledger,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		requests:  requests,
		directory: dir,
		ledger:    ledger,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) CreateChain(ctx context.Context, tx *sql.Tx, requestID, employeeID string, levels int) error {
	employee, err := s.directory.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if employee.Role == nil {
		return leaverequesterrors.ErrEmployeeNotFound
	}

	path := escalationPath(employee.Role.Name)
	if levels >= 0 && levels < len(path) {
		path = path[:levels]
	}

	requestUUID, err := uuid.Parse(requestID)
	if err != nil {
		return leaverequesterrors.ErrInvalidRequestID
	}

	qtx := s.repo.WithTx(tx)
	level := 0
	for _, roleName := range path {
		role, err := s.directory.FindRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("approval chain role missing, level skipped",
					zap.String("request_id", requestID),
					zap.String("role", roleName),
				)
				continue
			}
			return err
		}

		approver, err := s.directory.FindApprover(ctx, role.ID.String(), employee.TeamID.String())
		if err != nil {
			return err
		}

		level++
		a := &LeaveApproval{
			ID:             uuid.New(),
			LeaveRequestID: requestUUID,
			Level:          level,
			Status:         StatusPending,
		}
		roleID := role.ID
		a.RoleID = &roleID
		if approver != nil {
			approverID := approver.ID
			a.ApproverID = &approverID
		}
		if err := qtx.Insert(ctx, a); err != nil {
			return err
		}
	}

	if level == 0 {
		// Either the type is configured with zero levels or every role in the
		// path is missing from the directory. The request stays pending until
		// someone with access intervenes.
		s.logger.Warn("approval chain is empty",
			zap.String("request_id", requestID),
			zap.String("requester_role", employee.Role.Name),
		)
	}
	return nil
}

func (s *service) AutoApprove(ctx context.Context, tx *sql.Tx, requestID string) error {
	requestUUID, err := uuid.Parse(requestID)
	if err != nil {
		return leaverequesterrors.ErrInvalidRequestID
	}

	a := &LeaveApproval{
		ID:             uuid.New(),
		LeaveRequestID: requestUUID,
		Level:          1,
		Status:         StatusApproved,
	}
	remarks := leaverequest.AutoApproveRemarks
	a.Remarks = &remarks
	now := time.Now().UTC()
	a.ApprovedAt = &now

	role, err := s.directory.FindRoleByName(ctx, SystemRoleName)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if role != nil {
		roleID := role.ID
		a.RoleID = &roleID
	}

	return s.repo.WithTx(tx).Insert(ctx, a)
}

func (s *service) CancelOpen(ctx context.Context, tx *sql.Tx, requestID string) error {
	return s.repo.WithTx(tx).CancelOpenByRequest(ctx, requestID)
}

func (s *service) Resolve(ctx context.Context, actorID, approvalID string, req ResolveApprovalRequest) (ApprovalResponse, error) {
	s.logger.Debug("resolve approval requested",
		zap.String("approval_id", approvalID),
		zap.String("actor_id", actorID),
		zap.String("action", req.Action),
	)

	if _, err := uuid.Parse(approvalID); err != nil {
		return ApprovalResponse{}, approvalerrors.ErrInvalidApprovalID
	}
	a, err := s.repo.FindByID(ctx, approvalID)
	if err != nil {
		s.logger.Error("resolve approval lookup failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	if a == nil {
		return ApprovalResponse{}, approvalerrors.ErrApprovalNotFound
	}
	if a.Status != StatusPending {
		return ApprovalResponse{}, approvalerrors.ErrAlreadyProcessed
	}
	lr := a.LeaveRequest
	if lr == nil {
		return ApprovalResponse{}, leaverequesterrors.ErrRequestNotFound
	}
	if lr.Status != leaverequest.StatusPending {
		return ApprovalResponse{}, approvalerrors.ErrRequestFinalized
	}

	actor, err := s.directory.FindEmployeeByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApprovalResponse{}, leaverequesterrors.ErrEmployeeNotFound
		}
		return ApprovalResponse{}, err
	}
	if !canResolve(a, actor) {
		return ApprovalResponse{}, approvalerrors.ErrNotAssignedApprover
	}

	if req.Action == ActionApprove {
		// The balance may have been consumed by other requests since this one
		// was validated, so every approval re-checks it before the level is
		// recorded. The final debit below still enforces it under lock.
		available, err := s.ledger.Available(ctx, lr.EmployeeID.String(), lr.LeaveTypeID.String(), lr.StartDate.Year())
		if err != nil {
			s.logger.Error("resolve approval balance check failed", zap.Error(err))
			return ApprovalResponse{}, err
		}
		if available.LessThan(lr.TotalDays) {
			s.logger.Warn("resolve approval insufficient balance",
				zap.String("request_id", lr.ID.String()),
				zap.String("requested", lr.TotalDays.String()),
				zap.String("available", available.String()),
			)
			return ApprovalResponse{}, balanceerrors.ErrInsufficientBalance
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("resolve approval begin tx failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	rtx := s.requests.WithTx(tx)
	now := time.Now().UTC()

	if req.Action == ActionReject {
		if err := qtx.UpdateStatus(ctx, approvalID, StatusRejected, &actorID, req.Remarks, nil); err != nil {
			s.logger.Error("resolve approval persist failed", zap.Error(err))
			return ApprovalResponse{}, err
		}
		// One rejection is final for the whole request.
		if err := rtx.UpdateStatus(ctx, lr.ID.String(), leaverequest.StatusRejected, req.Remarks); err != nil {
			s.logger.Error("resolve approval reject request failed", zap.Error(err))
			return ApprovalResponse{}, err
		}
		lr.Status = leaverequest.StatusRejected
		if err := s.enqueueLifecycleEvent(ctx, tx, lr, events.EventLeaveRequestRejected); err != nil {
			return ApprovalResponse{}, err
		}

		a.Status = StatusRejected
	} else {
		if err := qtx.UpdateStatus(ctx, approvalID, StatusApproved, &actorID, req.Remarks, &now); err != nil {
			s.logger.Error("resolve approval persist failed", zap.Error(err))
			return ApprovalResponse{}, err
		}

		remaining, err := qtx.CountUnapproved(ctx, lr.ID.String())
		if err != nil {
			s.logger.Error("resolve approval remaining count failed", zap.Error(err))
			return ApprovalResponse{}, err
		}
		if remaining == 0 {
			// Last level approved. Balance is only consumed now, under lock,
			// so it may have shrunk since the request was validated.
			year := lr.StartDate.Year()
			if err := s.ledger.WithTx(tx).Debit(ctx, lr.EmployeeID.String(), lr.LeaveTypeID.String(), year, lr.TotalDays); err != nil {
				s.logger.Warn("resolve approval final debit failed",
					zap.String("request_id", lr.ID.String()),
					zap.Error(err),
				)
				return ApprovalResponse{}, err
			}
			if err := rtx.UpdateStatus(ctx, lr.ID.String(), leaverequest.StatusApproved, nil); err != nil {
				s.logger.Error("resolve approval finalize request failed", zap.Error(err))
				return ApprovalResponse{}, err
			}
			lr.Status = leaverequest.StatusApproved
			if err := s.enqueueLifecycleEvent(ctx, tx, lr, events.EventLeaveRequestApproved); err != nil {
				return ApprovalResponse{}, err
			}
		}

		a.Status = StatusApproved
		a.ApprovedAt = &now
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("resolve approval commit failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	s.logger.Info("resolve approval success",
		zap.String("approval_id", approvalID),
		zap.String("action", req.Action),
		zap.String("request_status", lr.Status),
	)

	actorUUID := actor.ID
	a.ApproverID = &actorUUID
	a.Approver = actor
	if req.Remarks != nil {
		a.Remarks = req.Remarks
	}
	return mapToResponse(*a), nil
}

func (s *service) Pending(ctx context.Context, actorID string) ([]ApprovalResponse, error) {
	actor, err := s.directory.FindEmployeeByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaverequesterrors.ErrEmployeeNotFound
		}
		return nil, err
	}

	approvals, err := s.repo.FindPendingForApprover(ctx, actorID, actor.RoleID.String())
	if err != nil {
		return nil, err
	}
	return mapToListResponse(approvals), nil
}

func (s *service) Processed(ctx context.Context, actorID string) ([]ApprovalResponse, error) {
	approvals, err := s.repo.FindProcessedByApprover(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(approvals), nil
}

// canResolve allows the assigned approver, or anyone holding the level's
// role when the seat is unassigned.
func canResolve(a *LeaveApproval, actor *directory.Employee) bool {
	if a.ApproverID != nil {
		return *a.ApproverID == actor.ID
	}
	if a.RoleID != nil {
		return *a.RoleID == actor.RoleID
	}
	return false
}

func (s *service) enqueueLifecycleEvent(ctx context.Context, tx *sql.Tx, lr *leaverequest.LeaveRequest, eventType string) error {
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
		leaverequest.AggregateType,
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

func mapToResponse(a LeaveApproval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:             a.ID.String(),
		LeaveRequestID: a.LeaveRequestID.String(),
		Level:          a.Level,
		Status:         a.Status,
		Remarks:        a.Remarks,
	}
	if a.Role != nil {
		name := a.Role.Name
		resp.RoleName = &name
	}
	if a.ApproverID != nil {
		id := a.ApproverID.String()
		resp.ApproverID = &id
	}
	if a.Approver != nil {
		name := a.Approver.Name
		resp.ApproverName = &name
	}
	if a.ApprovedAt != nil {
		v := a.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if a.LeaveRequest != nil {
		lr := a.LeaveRequest
		summary := &ApprovalRequestSummary{
			EmployeeID: lr.EmployeeID.String(),
			StartDate:  lr.StartDate.Format("2006-01-02"),
			EndDate:    lr.EndDate.Format("2006-01-02"),
			IsHalfDay:  lr.IsHalfDay,
			TotalDays:  lr.TotalDays.InexactFloat64(),
			Reason:     lr.Reason,
			Status:     lr.Status,
		}
		if lr.Employee != nil {
			summary.EmployeeName = lr.Employee.Name
		}
		if lr.LeaveType != nil {
			summary.LeaveTypeName = lr.LeaveType.Name
		}
		resp.Request = summary
	}
	return resp
}

func mapToListResponse(approvals []LeaveApproval) []ApprovalResponse {
	resp := make([]ApprovalResponse, len(approvals))
	for i, a := range approvals {
		resp[i] = mapToResponse(a)
	}
	return resp
}
