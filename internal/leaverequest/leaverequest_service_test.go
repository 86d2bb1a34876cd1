package leaverequest_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/directory"
	"go-leave/internal/leaverequest"
	leaverequesterrors "go-leave/internal/leaverequest/errors"
	"go-leave/internal/leavetype"
	"go-leave/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeRequestRepository struct {
	withTxFn         func(tx *sql.Tx) leaverequest.Repository
	insertFn         func(ctx context.Context, lr *leaverequest.LeaveRequest) error
	updateStatusFn   func(ctx context.Context, id, status string, remarks *string) error
	findByIDFn       func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error)
	hasOverlappingFn func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	findByEmployeeFn func(ctx context.Context, employeeID string) ([]leaverequest.LeaveRequest, error)
}

func (f *fakeRequestRepository) WithTx(tx *sql.Tx) leaverequest.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRequestRepository) Insert(ctx context.Context, lr *leaverequest.LeaveRequest) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, lr)
	}
	return nil
}

func (f *fakeRequestRepository) UpdateStatus(ctx context.Context, id, status string, remarks *string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status, remarks)
	}
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeRequestRepository) HasOverlapping(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	if f.hasOverlappingFn != nil {
		return f.hasOverlappingFn(ctx, employeeID, startDate, endDate)
	}
	return false, nil
}

func (f *fakeRequestRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leaverequest.LeaveRequest, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

type fakeDirectoryRepository struct {
	findEmployeeByIDFn func(ctx context.Context, id string) (*directory.Employee, error)
	findRoleByNameFn   func(ctx context.Context, name string) (*directory.Role, error)
	findApproverFn     func(ctx context.Context, roleID, teamID string) (*directory.Employee, error)
	listEmployeesFn    func(ctx context.Context, gender *string) ([]directory.Employee, error)
}

func (f *fakeDirectoryRepository) FindEmployeeByID(ctx context.Context, id string) (*directory.Employee, error) {
	if f.findEmployeeByIDFn != nil {
		return f.findEmployeeByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeDirectoryRepository) FindRoleByName(ctx context.Context, name string) (*directory.Role, error) {
	if f.findRoleByNameFn != nil {
		return f.findRoleByNameFn(ctx, name)
	}
	return nil, nil
}

func (f *fakeDirectoryRepository) FindApprover(ctx context.Context, roleID, teamID string) (*directory.Employee, error) {
	if f.findApproverFn != nil {
		return f.findApproverFn(ctx, roleID, teamID)
	}
	return nil, nil
}

func (f *fakeDirectoryRepository) ListEmployees(ctx context.Context, gender *string) ([]directory.Employee, error) {
	if f.listEmployeesFn != nil {
		return f.listEmployeesFn(ctx, gender)
	}
	return nil, nil
}

type fakeTypeRepository struct {
	withTxFn   func(tx *sql.Tx) leavetype.Repository
	insertFn   func(ctx context.Context, lt *leavetype.LeaveType) error
	updateFn   func(ctx context.Context, lt *leavetype.LeaveType) error
	deleteFn   func(ctx context.Context, id string) error
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
	findAllFn  func(ctx context.Context) ([]leavetype.LeaveType, error)
}

func (f *fakeTypeRepository) WithTx(tx *sql.Tx) leavetype.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeTypeRepository) Insert(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, lt)
	}
	return nil
}

func (f *fakeTypeRepository) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, lt)
	}
	return nil
}

func (f *fakeTypeRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTypeRepository) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeTypeRepository) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

type fakeLedger struct {
	withTxFn    func(tx *sql.Tx) balance.Ledger
	ensureFn    func(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error)
	availableFn func(ctx context.Context, employeeID, leaveTypeID string, year int) (decimal.Decimal, error)
	debitFn     func(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	creditFn    func(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	retargetFn  func(ctx context.Context, leaveTypeID string, newTotal decimal.Decimal) error
	regenderFn  func(ctx context.Context, leaveTypeID string, gender *string, year int, totalDays decimal.Decimal) error
}

func (f *fakeLedger) WithTx(tx *sql.Tx) balance.Ledger {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLedger) Ensure(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error) {
	if f.ensureFn != nil {
		return f.ensureFn(ctx, employeeID, leaveTypeID, year)
	}
	return nil, nil
}

func (f *fakeLedger) Available(ctx context.Context, employeeID, leaveTypeID string, year int) (decimal.Decimal, error) {
	if f.availableFn != nil {
		return f.availableFn(ctx, employeeID, leaveTypeID, year)
	}
	return decimal.NewFromInt(100), nil
}

func (f *fakeLedger) Debit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if f.debitFn != nil {
		return f.debitFn(ctx, employeeID, leaveTypeID, year, days)
	}
	return nil
}

func (f *fakeLedger) Credit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if f.creditFn != nil {
		return f.creditFn(ctx, employeeID, leaveTypeID, year, days)
	}
	return nil
}

func (f *fakeLedger) Retarget(ctx context.Context, leaveTypeID string, newTotal decimal.Decimal) error {
	if f.retargetFn != nil {
		return f.retargetFn(ctx, leaveTypeID, newTotal)
	}
	return nil
}

func (f *fakeLedger) Regender(ctx context.Context, leaveTypeID string, gender *string, year int, totalDays decimal.Decimal) error {
	if f.regenderFn != nil {
		return f.regenderFn(ctx, leaveTypeID, gender, year, totalDays)
	}
	return nil
}

type fakeOrchestrator struct {
	createChainFn func(ctx context.Context, tx *sql.Tx, requestID, employeeID string, levels int) error
	autoApproveFn func(ctx context.Context, tx *sql.Tx, requestID string) error
	cancelOpenFn  func(ctx context.Context, tx *sql.Tx, requestID string) error
}

func (f *fakeOrchestrator) CreateChain(ctx context.Context, tx *sql.Tx, requestID, employeeID string, levels int) error {
	if f.createChainFn != nil {
		return f.createChainFn(ctx, tx, requestID, employeeID, levels)
	}
	return nil
}

func (f *fakeOrchestrator) AutoApprove(ctx context.Context, tx *sql.Tx, requestID string) error {
	if f.autoApproveFn != nil {
		return f.autoApproveFn(ctx, tx, requestID)
	}
	return nil
}

func (f *fakeOrchestrator) CancelOpen(ctx context.Context, tx *sql.Tx, requestID string) error {
	if f.cancelOpenFn != nil {
		return f.cancelOpenFn(ctx, tx, requestID)
	}
	return nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type requestServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   leaverequest.Service
	repo      *fakeRequestRepository
	directory *fakeDirectoryRepository
	types     *fakeTypeRepository
	ledger    *fakeLedger
	approvals *fakeOrchestrator
	outbox    *fakeOutboxRepository
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &requestServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      &fakeRequestRepository{},
		directory: &fakeDirectoryRepository{},
		types:     &fakeTypeRepository{},
		ledger:    &fakeLedger{},
		approvals: &fakeOrchestrator{},
		outbox:    &fakeOutboxRepository{},
	}
	deps.service = leaverequest.NewService(
		db, deps.repo, deps.directory, deps.types, nil,
		deps.ledger, deps.approvals, deps.outbox, nil,
	)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func activeEmployee(id uuid.UUID) *directory.Employee {
	gender := directory.GenderMale
	return &directory.Employee{
		ID:       id,
		Name:     "Dana Smith",
		Email:    "dana@example.com",
		Gender:   &gender,
		RoleID:   uuid.New(),
		Role:     &directory.Role{ID: uuid.New(), Name: "Developer"},
		TeamID:   uuid.New(),
		IsActive: true,
	}
}

func annualLeaveType(id uuid.UUID) *leavetype.LeaveType {
	return &leavetype.LeaveType{
		ID:             id,
		Name:           "Annual Leave",
		TotalDays:      decimal.NewFromInt(12),
		ApprovalLevels: 3,
	}
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	typeID := uuid.New()

	baseReq := leaverequest.CreateLeaveRequestRequest{
		LeaveTypeID: typeID.String(),
		StartDate:   "2027-03-01", // Monday
		EndDate:     "2027-03-03", // Wednesday
		Reason:      "Family trip",
	}

	t.Run("success pending request holds no balance", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			assert.Equal(t, employeeID.String(), id)
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}
		deps.ledger.availableFn = func(ctx context.Context, eid, tid string, year int) (decimal.Decimal, error) {
			assert.Equal(t, 2027, year)
			return decimal.NewFromInt(5), nil
		}
		debited := false
		deps.ledger.debitFn = func(ctx context.Context, eid, tid string, year int, days decimal.Decimal) error {
			debited = true
			return nil
		}
		var chainLevels int
		deps.approvals.createChainFn = func(ctx context.Context, tx *sql.Tx, requestID, eid string, levels int) error {
			assert.NotNil(t, tx)
			chainLevels = levels
			return nil
		}
		deps.repo.insertFn = func(ctx context.Context, lr *leaverequest.LeaveRequest) error {
			assert.Equal(t, leaverequest.StatusPending, lr.Status)
			assert.True(t, lr.TotalDays.Equal(decimal.NewFromInt(3)))
			return nil
		}

		resp, err := deps.service.Create(ctx, employeeID.String(), baseReq)

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusPending, resp.Status)
		assert.Equal(t, 3.0, resp.TotalDays)
		assert.Equal(t, 3, chainLevels)
		assert.False(t, debited)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.request.created", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success zero approval levels still creates pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			lt := annualLeaveType(typeID)
			lt.ApprovalLevels = 0
			return lt, nil
		}
		debited := false
		deps.ledger.debitFn = func(ctx context.Context, eid, tid string, year int, days decimal.Decimal) error {
			debited = true
			return nil
		}
		var chainLevels int
		chainBuilt := false
		deps.approvals.createChainFn = func(ctx context.Context, tx *sql.Tx, requestID, eid string, levels int) error {
			chainBuilt = true
			chainLevels = levels
			return nil
		}

		resp, err := deps.service.Create(ctx, employeeID.String(), baseReq)

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusPending, resp.Status)
		assert.True(t, chainBuilt)
		assert.Equal(t, 0, chainLevels)
		assert.False(t, debited)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success auto approve debits immediately", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			lt := annualLeaveType(typeID)
			lt.AutoApprove = true
			return lt, nil
		}
		var debitedDays decimal.Decimal
		deps.ledger.debitFn = func(ctx context.Context, eid, tid string, year int, days decimal.Decimal) error {
			debitedDays = days
			return nil
		}
		autoApproved := false
		deps.approvals.autoApproveFn = func(ctx context.Context, tx *sql.Tx, requestID string) error {
			autoApproved = true
			return nil
		}
		deps.repo.insertFn = func(ctx context.Context, lr *leaverequest.LeaveRequest) error {
			assert.Equal(t, leaverequest.StatusApproved, lr.Status)
			assert.NotNil(t, lr.Remarks)
			assert.Equal(t, leaverequest.AutoApproveRemarks, *lr.Remarks)
			return nil
		}

		resp, err := deps.service.Create(ctx, employeeID.String(), baseReq)

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusApproved, resp.Status)
		assert.True(t, debitedDays.Equal(decimal.NewFromInt(3)))
		assert.True(t, autoApproved)
		assert.Len(t, deps.outbox.created, 2)
		assert.Equal(t, "leave.request.approved", deps.outbox.created[1].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success single day with half flag counts half", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}
		deps.repo.insertFn = func(ctx context.Context, lr *leaverequest.LeaveRequest) error {
			assert.True(t, lr.TotalDays.Equal(decimal.NewFromFloat(0.5)))
			return nil
		}

		req := baseReq
		req.StartDate = "2027-03-02"
		req.EndDate = "2027-03-02"
		req.LastDayHalf = true

		resp, err := deps.service.Create(ctx, employeeID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, 0.5, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success half flag shortens multi-day range", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}

		req := baseReq // Monday through Wednesday
		req.LastDayHalf = true

		resp, err := deps.service.Create(ctx, employeeID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, 2.5, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success weekend end date gets no half adjustment", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}

		req := baseReq
		req.StartDate = "2027-03-04" // Thursday
		req.EndDate = "2027-03-06"   // Saturday
		req.LastDayHalf = true

		resp, err := deps.service.Create(ctx, employeeID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, 2.0, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative start after end", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := baseReq
		req.StartDate = "2027-03-05"
		req.EndDate = "2027-03-01"

		_, err := deps.service.Create(ctx, employeeID.String(), req)

		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidDateRange)
	})

	t.Run("negative weekend only span", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}

		req := baseReq
		req.StartDate = "2027-03-06" // Saturday
		req.EndDate = "2027-03-07"   // Sunday

		_, err := deps.service.Create(ctx, employeeID.String(), req)

		assert.ErrorIs(t, err, leaverequesterrors.ErrNoWorkingDays)
	})

	t.Run("negative backdated too far", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}

		req := baseReq
		req.StartDate = "2020-01-06"
		req.EndDate = "2020-01-07"

		_, err := deps.service.Create(ctx, employeeID.String(), req)

		assert.ErrorIs(t, err, leaverequesterrors.ErrBackdateLimitExceeded)
	})

	t.Run("negative gender restricted type", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			lt := annualLeaveType(typeID)
			gender := directory.GenderFemale
			lt.ApplicableGender = &gender
			return lt, nil
		}

		_, err := deps.service.Create(ctx, employeeID.String(), baseReq)

		assert.ErrorIs(t, err, leaverequesterrors.ErrGenderNotEligible)
	})

	t.Run("negative overlapping request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}
		deps.repo.hasOverlappingFn = func(ctx context.Context, eid string, startDate, endDate time.Time) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(ctx, employeeID.String(), baseReq)

		assert.ErrorIs(t, err, leaverequesterrors.ErrLeaveOverlap)
	})

	t.Run("negative insufficient balance leaves nothing behind", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			return activeEmployee(employeeID), nil
		}
		deps.types.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			return annualLeaveType(typeID), nil
		}
		deps.ledger.availableFn = func(ctx context.Context, eid, tid string, year int) (decimal.Decimal, error) {
			return decimal.NewFromInt(2), nil
		}
		inserted := false
		deps.repo.insertFn = func(ctx context.Context, lr *leaverequest.LeaveRequest) error {
			inserted = true
			return nil
		}

		_, err := deps.service.Create(ctx, employeeID.String(), baseReq)

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.False(t, inserted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative inactive employee", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.directory.findEmployeeByIDFn = func(ctx context.Context, id string) (*directory.Employee, error) {
			e := activeEmployee(employeeID)
			e.IsActive = false
			return e, nil
		}

		_, err := deps.service.Create(ctx, employeeID.String(), baseReq)

		assert.ErrorIs(t, err, leaverequesterrors.ErrEmployeeInactive)
	})
}

func TestRequestService_Cancel(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	requestID := uuid.New()

	pendingRequest := func() *leaverequest.LeaveRequest {
		return &leaverequest.LeaveRequest{
			ID:          requestID,
			EmployeeID:  employeeID,
			LeaveTypeID: uuid.New(),
			StartDate:   time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2027, 3, 3, 0, 0, 0, 0, time.UTC),
			TotalDays:   decimal.NewFromInt(3),
			Status:      leaverequest.StatusPending,
		}
	}

	t.Run("success cancels request and open approvals", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(), nil
		}
		var gotStatus string
		deps.repo.updateStatusFn = func(ctx context.Context, id, status string, remarks *string) error {
			gotStatus = status
			return nil
		}
		cancelled := false
		deps.approvals.cancelOpenFn = func(ctx context.Context, tx *sql.Tx, id string) error {
			assert.Equal(t, requestID.String(), id)
			cancelled = true
			return nil
		}

		resp, err := deps.service.Cancel(ctx, employeeID.String(), requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusCancelled, resp.Status)
		assert.Equal(t, leaverequest.StatusCancelled, gotStatus)
		assert.True(t, cancelled)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.request.cancelled", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not the owner", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(), nil
		}

		_, err := deps.service.Cancel(ctx, uuid.New().String(), requestID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrNotRequestOwner)
	})

	t.Run("negative already approved", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			lr := pendingRequest()
			lr.Status = leaverequest.StatusApproved
			return lr, nil
		}

		_, err := deps.service.Cancel(ctx, employeeID.String(), requestID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrNotCancellable)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Cancel(ctx, employeeID.String(), requestID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrRequestNotFound)
	})
}

func TestRequestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("success combines history and balances", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) ([]leaverequest.LeaveRequest, error) {
			return []leaverequest.LeaveRequest{
				{
					ID:          uuid.New(),
					EmployeeID:  employeeID,
					LeaveTypeID: uuid.New(),
					StartDate:   time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC),
					EndDate:     time.Date(2027, 2, 2, 0, 0, 0, 0, time.UTC),
					TotalDays:   decimal.NewFromInt(2),
					Status:      leaverequest.StatusApproved,
				},
			}, nil
		}

		balances := &fakeBalancesRepo{
			rows: []balance.BalanceWithType{
				{
					LeaveBalance: balance.LeaveBalance{
						ID:            uuid.New(),
						EmployeeID:    employeeID,
						LeaveTypeID:   uuid.New(),
						Year:          2027,
						TotalDays:     decimal.NewFromInt(12),
						UsedDays:      decimal.NewFromInt(2),
						RemainingDays: decimal.NewFromInt(10),
					},
					LeaveTypeName: "Annual Leave",
				},
			},
		}
		deps.service = leaverequest.NewService(
			deps.db, deps.repo, deps.directory, deps.types, balances,
			deps.ledger, deps.approvals, deps.outbox, nil,
		)

		resp, err := deps.service.Dashboard(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Len(t, resp.History, 1)
		assert.Len(t, resp.Balances, 1)
		assert.Equal(t, "Annual Leave", resp.Balances[0].LeaveTypeName)
		assert.Equal(t, 10.0, resp.Balances[0].RemainingDays)
	})
}

// fakeBalancesRepo only serves the dashboard read path.
type fakeBalancesRepo struct {
	rows []balance.BalanceWithType
}

func (f *fakeBalancesRepo) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalancesRepo) GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error) {
	return nil, nil
}

func (f *fakeBalancesRepo) Get(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.LeaveBalance, error) {
	return nil, nil
}

func (f *fakeBalancesRepo) Insert(ctx context.Context, b *balance.LeaveBalance) error { return nil }

func (f *fakeBalancesRepo) UpdateAmounts(ctx context.Context, id string, total, used, remaining decimal.Decimal) error {
	return nil
}

func (f *fakeBalancesRepo) RetargetType(ctx context.Context, leaveTypeID string, newTotal decimal.Decimal) error {
	return nil
}

func (f *fakeBalancesRepo) DeleteForExcludedGender(ctx context.Context, leaveTypeID, gender string) error {
	return nil
}

func (f *fakeBalancesRepo) CreateMissingForEligible(ctx context.Context, leaveTypeID string, gender *string, year int, totalDays decimal.Decimal) error {
	return nil
}

func (f *fakeBalancesRepo) ListByLeaveTypeAndYear(ctx context.Context, leaveTypeID string, year int) ([]balance.LeaveBalance, error) {
	return nil, nil
}

func (f *fakeBalancesRepo) FindByEmployee(ctx context.Context, employeeID string) ([]balance.BalanceWithType, error) {
	return f.rows, nil
}
