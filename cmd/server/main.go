package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"randevu.backend/internal/config"
	"randevu.backend/internal/infrastructure/jobs"
	"randevu.backend/internal/infrastructure/models"
	"randevu.backend/internal/infrastructure/repositories"
	"randevu.backend/internal/infrastructure/sms"
	"randevu.backend/internal/interfaces/http/handlers"
	"randevu.backend/internal/usecases"
	"randevu.backend/pkg/jwt"
	"randevu.backend/pkg/logger"
	"randevu.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&models.VerificationCode{}, &models.AuditLog{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	verifRepo := repositories.NewVerificationRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	gateway := sms.NewClient(cfg.SMS)

	verificationUsecase := usecases.NewVerificationUsecase(verifRepo, auditRepo, gateway, cfg.Verification)
	verificationHandler := handlers.NewVerificationHandler(verificationUsecase)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cleanupJob := jobs.NewVerificationCleanupJob(verificationUsecase, cfg.Verification.CleanupInterval)
	go cleanupJob.Start(ctx)
	defer cleanupJob.Stop()

	r := gin.New()
	registerRoutes(r, routeDeps{
		verificationHandler: verificationHandler,
		jwtService:          jwtService,
	})

	logger.Info(ctx, "Server starting", zap.String("port", cfg.Server.Port))
	return runServer(r, cfg.Server.Port)
}
