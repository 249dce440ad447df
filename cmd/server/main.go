// Package main is the entry point for the vetdesk API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vetdesk/internal/domain"
	"vetdesk/internal/domain/attendance"
	"vetdesk/internal/domain/auth"
	"vetdesk/internal/domain/billing"
	"vetdesk/internal/domain/catalogs/animal"
	"vetdesk/internal/domain/catalogs/collaborator"
	"vetdesk/internal/domain/catalogs/product"
	"vetdesk/internal/domain/catalogs/servicedef"
	"vetdesk/internal/domain/catalogs/tutor"
	"vetdesk/internal/domain/schedule"
	"vetdesk/internal/domain/stockledger"
	v1 "vetdesk/internal/infrastructure/http/v1"
	"vetdesk/internal/infrastructure/storage/postgres"
	"vetdesk/internal/infrastructure/storage/postgres/attendance_repo"
	"vetdesk/internal/infrastructure/storage/postgres/auth_repo"
	"vetdesk/internal/infrastructure/storage/postgres/billing_repo"
	"vetdesk/internal/infrastructure/storage/postgres/catalog_repo"
	"vetdesk/internal/infrastructure/storage/postgres/schedule_repo"
	"vetdesk/internal/infrastructure/storage/postgres/stock_repo"
	"vetdesk/pkg/logger"
	"vetdesk/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting vetdesk server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	tutorRepo := catalog_repo.NewTutorRepo(txManager)
	animalRepo := catalog_repo.NewAnimalRepo(txManager)
	collaboratorRepo := catalog_repo.NewCollaboratorRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	serviceDefRepo := catalog_repo.NewServiceDefinitionRepo(txManager)
	appointmentRepo := schedule_repo.NewAppointmentRepo(txManager)
	attendanceRepo := attendance_repo.NewAttendanceRepo(txManager)
	invoiceRepo := billing_repo.NewInvoiceRepo(txManager)
	stockRepo := stock_repo.NewStockRepo(txManager)

	// --- Catalog services ---
	tutorService := domain.NewCatalogService(domain.CatalogServiceConfig[*tutor.Tutor]{
		Repo: tutorRepo, TxManager: txManager, EntityName: "tutor",
	})
	animalService := domain.NewCatalogService(domain.CatalogServiceConfig[*animal.Animal]{
		Repo: animalRepo, TxManager: txManager, EntityName: "animal",
	})
	collaboratorService := collaborator.NewService(collaboratorRepo, txManager)
	productService := domain.NewCatalogService(domain.CatalogServiceConfig[*product.Product]{
		Repo: productRepo, TxManager: txManager, EntityName: "product",
	})
	serviceDefService := domain.NewCatalogService(domain.CatalogServiceConfig[*servicedef.ServiceDefinition]{
		Repo: serviceDefRepo, TxManager: txManager, EntityName: "service_definition",
	})

	// --- Domain services ---
	ledger := stockledger.NewLedger(stockRepo)
	numeratorService := numerator.New(pool)

	attendanceService := attendance.NewService(attendanceRepo, txManager, ledger, nil)
	scheduleService := schedule.NewService(appointmentRepo, txManager, attendanceService, collaboratorService)
	billingService := billing.NewService(
		invoiceRepo,
		attendanceService,
		animalService,
		productService,
		txManager,
		ledger,
		numeratorService,
	)
	// Billing needs attendances and attendances need billing; the
	// gateway closes the cycle after both exist.
	attendanceService.SetBillingGateway(billingService)

	// --- Auth ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	userRepo := auth_repo.NewUserRepo(txManager)
	roleRepo := auth_repo.NewRoleRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)
	authService := auth.NewService(userRepo, roleRepo, tokenRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Infrastructure services ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	var idempotencyStore *postgres.IdempotencyStore
	if getEnv("IDEMPOTENCY_ENABLED", "true") == "true" {
		ttl := getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour)
		idempotencyStore = postgres.NewIdempotencyStore(txManager, ttl)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:      pool,
		Logger:    log,
		Validator: jwtService,

		AuthService: authService,

		TutorService:        tutorService,
		AnimalService:       animalService,
		CollaboratorService: collaboratorService,
		ProductService:      productService,
		ServiceDefService:   serviceDefService,

		ProductRepo: productRepo,
		StockRepo:   stockRepo,

		ScheduleService:   scheduleService,
		AttendanceService: attendanceService,
		BillingService:    billingService,

		AuditService:     auditService,
		IdempotencyStore: idempotencyStore,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
