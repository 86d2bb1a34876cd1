package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-leave/internal/allocation"
	"go-leave/internal/balance"
	"go-leave/internal/directory"
	"go-leave/internal/leavetype"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/messaging/kafka/producer"
	"go-leave/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker hosts the outbox publisher and the allocation scheduler. The
// scheduler polls hourly; the allocation log keeps repeat passes over the
// same day from crediting twice.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	directoryRepo := directory.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB, sqlDB)
	balanceRepo := balance.NewRepository(gormDB, sqlDB)
	allocationRepo := allocation.NewRepository(gormDB, sqlDB)
	ledger := balance.NewLedger(balanceRepo)

	allocationService := allocation.NewService(
		sqlDB, allocationRepo, leaveTypeRepo, directoryRepo, balanceRepo, ledger, outboxRepo,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runAllocationLoop(ctx, allocationService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func runAllocationLoop(ctx context.Context, svc allocation.Service, logger *zap.Logger) {
	log := logger.Named("allocation.loop")

	interval := time.Hour
	if v := os.Getenv("ALLOCATION_POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("allocation loop started", zap.Duration("poll_interval", interval))

	// Run once at startup so a worker restart on an allocation day does not
	// wait a full interval.
	if _, err := svc.Run(ctx, time.Now().UTC()); err != nil {
		log.Error("allocation run failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("allocation loop stopped")
			return
		case <-ticker.C:
			if _, err := svc.Run(ctx, time.Now().UTC()); err != nil {
				log.Error("allocation run failed", zap.Error(err))
			}
		}
	}
}
