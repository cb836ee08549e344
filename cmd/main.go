package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Leganyst/studio-calendar/internal/config"
	"github.com/Leganyst/studio-calendar/internal/db"
	"github.com/Leganyst/studio-calendar/internal/grpcapi"
	"github.com/Leganyst/studio-calendar/internal/handler"
	"github.com/Leganyst/studio-calendar/internal/logging"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/notification"
	"github.com/Leganyst/studio-calendar/internal/reminder"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/router"
	"github.com/Leganyst/studio-calendar/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. .env (если есть) и конфиги из env.
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}
	profile, err := config.LoadStudioProfile(appCfg.StudioConfigPath)
	if err != nil {
		log.Fatalf("load studio profile: %v", err)
	}

	// 2. Логгер.
	logger := logging.New(appCfg.LogLevel, appCfg.LogFormat)

	// 3. Подключаемся к БД через GORM и мигрируем модели.
	gormDB, err := db.NewGormDB(dbCfg, logger)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	eventRepo := repository.NewGormEventRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	projectRepo := repository.NewGormProjectRepository(gormDB)
	scheduleRepo := repository.NewGormScheduleRepository(gormDB)
	auditRepo := repository.NewGormAuditRepository(gormDB)
	notificationRepo := repository.NewGormNotificationRepository(gormDB)

	// 5. Сервисы.
	sink := notification.NewSink(userRepo, notificationRepo, logger)
	schedulingSvc := service.NewSchedulingService(eventRepo, projectRepo, userRepo, scheduleRepo, auditRepo, sink, profile, logger)
	identitySvc := service.NewIdentityService(userRepo, appCfg.JWTSecret, appCfg.TokenTTL)

	// 6. HTTP (fiber) и gRPC.
	app := router.NewApp(router.Options{
		Calendar:    handler.NewCalendarHandler(schedulingSvc, profile, logger),
		Auth:        identitySvc,
		FrontendURL: appCfg.FrontendURL,
		Log:         logger,
	})
	grpcServer, healthSrv := grpcapi.NewGRPCServer(schedulingSvc, identitySvc, logger)

	lis, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", appCfg.GRPCAddr, err)
	}

	// 7. Все компоненты живут до SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", appCfg.HTTPAddr)
		return app.Listen(appCfg.HTTPAddr)
	})
	g.Go(func() error {
		logger.Info("grpc server listening", "addr", appCfg.GRPCAddr)
		return grpcServer.Serve(lis)
	})

	if appCfg.ReminderEnabled {
		jobs := reminder.NewJobs(eventRepo, userRepo, auditRepo, sink, logger)
		scheduler, err := reminder.NewScheduler(jobs, appCfg.ReminderCron, appCfg.DigestCron, logger)
		if err != nil {
			log.Fatalf("init scheduler: %v", err)
		}
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	// 8. Грейсфул-шатдаун.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		healthSrv.Shutdown()
		grpcServer.GracefulStop()
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	logger.Info("bye")
}
