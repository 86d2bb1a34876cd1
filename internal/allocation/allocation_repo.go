package allocation

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=allocation_repo.go -destination=mock/allocation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// InsertLog writes the log row and reports whether it was new. A false
	// return means this credit already ran for the date.
	InsertLog(ctx context.Context, log *AllocationLog) (bool, error)
	FindLogsByDate(ctx context.Context, date time.Time) ([]AllocationLog, error)
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

func (r *repository) InsertLog(ctx context.Context, log *AllocationLog) (bool, error) {
	query := `
        INSERT INTO allocation_logs (
            id, employee_id, leave_type_id, frequency, allocation_date, days
        ) VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (employee_id, leave_type_id, frequency, allocation_date) DO NOTHING
    `
	res, err := r.execer().ExecContext(
		ctx, query,
		log.ID, log.EmployeeID, log.LeaveTypeID, log.Frequency, log.AllocationDate, log.Days,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) FindLogsByDate(ctx context.Context, date time.Time) ([]AllocationLog, error) {
	var logs []AllocationLog
	err := r.db.WithContext(ctx).
		Where("allocation_date = ?", date).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
