package approval

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Insert(ctx context.Context, a *LeaveApproval) error
	UpdateStatus(ctx context.Context, id, status string, approverID, remarks *string, approvedAt *time.Time) error
	// CancelOpenByRequest cancels every approval of the request that is
	// still pending.
	CancelOpenByRequest(ctx context.Context, requestID string) error
	// FindByID loads the approval with its parent request, or nil when no
	// row matches.
	FindByID(ctx context.Context, id string) (*LeaveApproval, error)
	// CountUnapproved counts levels of the request that are not approved
	// yet. Runs through the bound transaction so it observes writes made
	// earlier in it.
	CountUnapproved(ctx context.Context, requestID string) (int, error)
	// FindPendingForApprover lists actionable approvals: assigned to the
	// approver, or unassigned but matching their role, on still-pending
	// requests, with every lower level already approved.
	FindPendingForApprover(ctx context.Context, approverID, roleID string) ([]LeaveApproval, error)
	FindProcessedByApprover(ctx context.Context, approverID string) ([]LeaveApproval, error)
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

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) execer() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) Insert(ctx context.Context, a *LeaveApproval) error {
	query := `
        INSERT INTO leave_approvals (
            id, leave_request_id, level, role_id, approver_id,
            status, remarks, approved_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		a.ID, a.LeaveRequestID, a.Level, a.RoleID, a.ApproverID,
		a.Status, a.Remarks, a.ApprovedAt,
	)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string, approverID, remarks *string, approvedAt *time.Time) error {
	query := `
UPDATE leave_approvals
SET
	status = $2,
	approver_id = COALESCE($3, approver_id),
	remarks = COALESCE($4, remarks),
	approved_at = COALESCE($5, approved_at),
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, status, approverID, remarks, approvedAt)
	return err
}

func (r *repository) CancelOpenByRequest(ctx context.Context, requestID string) error {
	query := `
UPDATE leave_approvals
SET status = $2, updated_at = NOW()
WHERE leave_request_id = $1 AND status = $3
`
	_, err := r.execer().ExecContext(ctx, query, requestID, StatusCancelled, StatusPending)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveApproval, error) {
	var a LeaveApproval
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("LeaveRequest").
		Preload("LeaveRequest.Employee").
		Preload("LeaveRequest.LeaveType").
		First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) CountUnapproved(ctx context.Context, requestID string) (int, error) {
	query := `
SELECT COUNT(*)
FROM leave_approvals
WHERE leave_request_id = $1 AND status <> $2
`
	var count int
	err := r.execer().QueryRowContext(ctx, query, requestID, StatusApproved).Scan(&count)
	return count, err
}

func (r *repository) FindPendingForApprover(ctx context.Context, approverID, roleID string) ([]LeaveApproval, error) {
	var approvals []LeaveApproval
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("LeaveRequest").
		Preload("LeaveRequest.Employee").
		Preload("LeaveRequest.LeaveType").
		Joins("JOIN leave_requests lr ON lr.id = leave_approvals.leave_request_id").
		Where("leave_approvals.status = ?", StatusPending).
		Where("lr.status = ?", StatusPending).
		Where("(leave_approvals.approver_id = ? OR (leave_approvals.approver_id IS NULL AND leave_approvals.role_id = ?))", approverID, roleID).
		Where(`NOT EXISTS (
			SELECT 1 FROM leave_approvals lower
			WHERE lower.leave_request_id = leave_approvals.leave_request_id
				AND lower.level < leave_approvals.level
				AND lower.status <> ?
		)`, StatusApproved).
		Order("leave_approvals.created_at ASC").
		Find(&approvals).Error
	return approvals, err
}

func (r *repository) FindProcessedByApprover(ctx context.Context, approverID string) ([]LeaveApproval, error) {
	var approvals []LeaveApproval
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("LeaveRequest").
		Preload("LeaveRequest.Employee").
		Preload("LeaveRequest.LeaveType").
		Where("approver_id = ?", approverID).
		Where("status <> ?", StatusPending).
		Order("updated_at DESC").
		Find(&approvals).Error
	return approvals, err
}
