package leavetype

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/balance"
	leavetypeerrors "go-leave/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger balance.Ledger
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ledger balance.Ledger, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, ledger: ledger, logger: l}
}

// genderForStorage maps the API's "all" onto NULL.
func genderForStorage(g string) *string {
	if g == "" || g == "all" {
		return nil
	}
	v := g
	return &v
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	s.logger.Debug("create leave type requested", zap.String("name", req.Name))

	frequency := req.AllocationFrequency
	if frequency == "" {
		frequency = FrequencyYearly
	}

	lt := &LeaveType{
		ID:                      uuid.New(),
		Name:                    req.Name,
		Description:             req.Description,
		TotalDays:               decimal.NewFromFloat(req.TotalDays),
		ApprovalLevels:          req.ApprovalLevels,
		AutoApprove:             req.AutoApprove,
		AllocationFrequency:     frequency,
		IsAutoAllocatable:       req.IsAutoAllocatable,
		DefaultAnnualAllocation: decimal.NewFromFloat(req.DefaultAnnualAllocation),
		IsCarryForwardAllowed:   req.IsCarryForwardAllowed,
		ApplicableGender:        genderForStorage(req.ApplicableGender),
	}
	if req.CarryForwardLimit != nil {
		limit := decimal.NewFromFloat(*req.CarryForwardLimit)
		lt.CarryForwardLimit = &limit
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave type begin tx failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Insert(ctx, lt); err != nil {
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	// Seed a balance for every eligible employee at the default allocation.
	year := time.Now().UTC().Year()
	if err := s.ledger.WithTx(tx).Regender(ctx, lt.ID.String(), lt.ApplicableGender, year, lt.TotalDays); err != nil {
		s.logger.Error("create leave type seed balances failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave type commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	s.logger.Info("create leave type success",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("name", lt.Name),
	)

	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	s.logger.Debug("update leave type requested", zap.String("leave_type_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	originalTotal := lt.TotalDays
	originalGender := lt.ApplicableGender

	applyUpdate(lt, req)

	totalChanged := !lt.TotalDays.Equal(originalTotal)
	genderChanged := genderDiffers(originalGender, lt.ApplicableGender)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave type begin tx failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Update(ctx, lt); err != nil {
		s.logger.Error("update leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	ledger := s.ledger.WithTx(tx)
	if totalChanged {
		if err := ledger.Retarget(ctx, id, lt.TotalDays); err != nil {
			s.logger.Error("update leave type retarget failed", zap.Error(err))
			return LeaveTypeResponse{}, err
		}
	}
	if genderChanged {
		year := time.Now().UTC().Year()
		if err := ledger.Regender(ctx, id, lt.ApplicableGender, year, lt.TotalDays); err != nil {
			s.logger.Error("update leave type regender failed", zap.Error(err))
			return LeaveTypeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave type commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	s.logger.Info("update leave type success",
		zap.String("leave_type_id", id),
		zap.Bool("total_changed", totalChanged),
		zap.Bool("gender_changed", genderChanged),
	)

	return mapToResponse(*lt), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leavetypeerrors.ErrInvalidLeaveTypeID
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	return s.repo.Delete(ctx, id)
}

func applyUpdate(lt *LeaveType, req UpdateLeaveTypeRequest) {
	if req.Name != nil {
		lt.Name = *req.Name
	}
	if req.Description != nil {
		lt.Description = req.Description
	}
	if req.TotalDays != nil {
		lt.TotalDays = decimal.NewFromFloat(*req.TotalDays)
	}
	if req.ApprovalLevels != nil {
		lt.ApprovalLevels = *req.ApprovalLevels
	}
	if req.AutoApprove != nil {
		lt.AutoApprove = *req.AutoApprove
	}
	if req.AllocationFrequency != nil {
		lt.AllocationFrequency = *req.AllocationFrequency
	}
	if req.IsAutoAllocatable != nil {
		lt.IsAutoAllocatable = *req.IsAutoAllocatable
	}
	if req.DefaultAnnualAllocation != nil {
		lt.DefaultAnnualAllocation = decimal.NewFromFloat(*req.DefaultAnnualAllocation)
	}
	if req.IsCarryForwardAllowed != nil {
		lt.IsCarryForwardAllowed = *req.IsCarryForwardAllowed
	}
	if req.CarryForwardLimit != nil {
		limit := decimal.NewFromFloat(*req.CarryForwardLimit)
		lt.CarryForwardLimit = &limit
	}
	if req.ApplicableGender != nil {
		lt.ApplicableGender = genderForStorage(*req.ApplicableGender)
	}
}

func genderDiffers(a, b *string) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return *a != *b
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	resp := LeaveTypeResponse{
		ID:                      lt.ID.String(),
		Name:                    lt.Name,
		Description:             lt.Description,
		TotalDays:               lt.TotalDays.InexactFloat64(),
		ApprovalLevels:          lt.ApprovalLevels,
		AutoApprove:             lt.AutoApprove,
		AllocationFrequency:     lt.AllocationFrequency,
		IsAutoAllocatable:       lt.IsAutoAllocatable,
		DefaultAnnualAllocation: lt.DefaultAnnualAllocation.InexactFloat64(),
		IsCarryForwardAllowed:   lt.IsCarryForwardAllowed,
		ApplicableGender:        lt.ApplicableGender,
	}
	if lt.CarryForwardLimit != nil {
		v := lt.CarryForwardLimit.InexactFloat64()
		resp.CarryForwardLimit = &v
	}
	return resp
}
