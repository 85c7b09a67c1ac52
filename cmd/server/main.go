package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sevapay.backend/internal/config"
	"sevapay.backend/internal/infrastructure/bbps"
	"sevapay.backend/internal/infrastructure/jobs"
	infrarepos "sevapay.backend/internal/infrastructure/repositories"
	"sevapay.backend/internal/usecases"
	"sevapay.backend/pkg/jwt"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Server.Env)
	log := logger.GetLogger()
	defer log.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Database.URL()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := redis.Init(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	sessionStore, err := redis.NewSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		log.Fatal("invalid session encryption key", zap.Error(err))
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	bbpsClient := bbps.NewClient(cfg.BBPS)

	partnerRepo := infrarepos.NewPartnerRepository(db)
	posMachineRepo := infrarepos.NewPosMachineRepository(db)
	posMappingRepo := infrarepos.NewPosMappingRepository(db)
	adminRepo := infrarepos.NewAdminUserRepository(db)
	walletRepo := infrarepos.NewWalletRepository(db)
	txnRepo := infrarepos.NewTransactionRepository(db)

	partnerUsecase := usecases.NewPartnerUsecase(partnerRepo, walletRepo)
	verificationUsecase := usecases.NewVerificationUsecase(partnerRepo)
	posUsecase := usecases.NewPosUsecase(posMachineRepo, posMappingRepo, partnerRepo)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, partnerRepo)
	billpayUsecase := usecases.NewBillpayUsecase(bbpsClient, partnerRepo, walletRepo, txnRepo, cfg.BBPS.StatusPollWait)
	adminUsecase := usecases.NewAdminUsecase(adminRepo, partnerRepo, jwtService, sessionStore)
	reportUsecase := usecases.NewReportUsecase(txnRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statusPollJob := jobs.NewStatusPollJob(txnRepo, billpayUsecase, 1*time.Minute, 2*time.Minute, 50)
	statusPollJob.Start(ctx)

	router := setupRouter(routeDeps{
		cfg:                 cfg,
		jwtService:          jwtService,
		partnerUsecase:      partnerUsecase,
		verificationUsecase: verificationUsecase,
		posUsecase:          posUsecase,
		walletUsecase:       walletUsecase,
		billpayUsecase:      billpayUsecase,
		adminUsecase:        adminUsecase,
		reportUsecase:       reportUsecase,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	statusPollJob.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
