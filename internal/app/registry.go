package app

import (
	"database/sql"

	"go-leave/internal/allocation"
	"go-leave/internal/approval"
	"go-leave/internal/authz"
	"go-leave/internal/balance"
	"go-leave/internal/directory"
	"go-leave/internal/leaverequest"
	"go-leave/internal/leavetype"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	directoryRepo := directory.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB, db)
	balanceRepo := balance.NewRepository(gormDB, db)
	requestRepo := leaverequest.NewRepository(gormDB, db)
	approvalRepo := approval.NewRepository(gormDB, db)
	allocationRepo := allocation.NewRepository(gormDB, db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Authorization ---
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return err
	}
	authzService := authz.NewService(enforcer)

	// --- Services ---
	ledger := balance.NewLedger(balanceRepo)
	approvalService := approval.NewService(db, approvalRepo, requestRepo, directoryRepo, ledger, outboxRepo)
	requestService := leaverequest.NewService(
		db, requestRepo, directoryRepo, leaveTypeRepo, balanceRepo,
		ledger, approvalService, outboxRepo, rdb,
	)
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo, ledger)
	allocationService := allocation.NewService(
		db, allocationRepo, leaveTypeRepo, directoryRepo, balanceRepo, ledger, outboxRepo,
	)

	// --- Handlers ---
	requestHandler := leaverequest.NewHandler(requestService)
	approvalHandler := approval.NewHandler(approvalService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	allocationHandler := allocation.NewHandler(allocationService)

	// --- Routes Registration ---
	auth := middleware.AuthMiddleware()
	idempotency := middleware.Idempotency(rdb)

	api := router.Group("/api/v1")
	{
		leaverequest.RegisterRoutes(api, requestHandler, authzService, auth, idempotency)
		approval.RegisterRoutes(api, approvalHandler, authzService, auth, idempotency)
		leavetype.RegisterRoutes(api, leaveTypeHandler, authzService, auth)
		allocation.RegisterRoutes(api, allocationHandler, authzService, auth)
	}

	return nil
}
