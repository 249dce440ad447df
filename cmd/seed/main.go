// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/security"
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/auth"
	"vetdesk/internal/domain/billing"
	"vetdesk/internal/infrastructure/storage/postgres"
	"vetdesk/internal/infrastructure/storage/postgres/auth_repo"
	"vetdesk/internal/infrastructure/storage/postgres/billing_repo"
	"vetdesk/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedInvoiceStatuses(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed invoice statuses", "error", err)
	}

	if err := seedRoles(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed roles", "error", err)
	}

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedInvoiceStatuses inserts the fixed status rows the billing
// synchronizer resolves by slug. Re-running is safe: inserts are
// skipped when the slug already exists.
func seedInvoiceStatuses(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	repo := billing_repo.NewInvoiceRepo(txManager)

	statuses := []struct {
		slug string
		name string
	}{
		{billing.StatusSlugOpen, "Open"},
		{billing.StatusSlugPartiallyPaid, "Partially paid"},
		{billing.StatusSlugPaid, "Paid"},
	}

	for _, s := range statuses {
		status := &billing.InvoiceStatus{
			Catalog: entity.NewCatalog(s.slug, s.name),
			Slug:    s.slug,
		}
		if err := repo.CreateStatus(ctx, status); err != nil {
			return fmt.Errorf("create status %s: %w", s.slug, err)
		}
	}

	log.Infow("invoice statuses seeded", "count", len(statuses))
	return nil
}

// seedRoles inserts the built-in roles. Permission sets are static
// and expanded into the JWT at login, so only the role rows exist in
// the database.
func seedRoles(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	repo := auth_repo.NewRoleRepo(txManager)

	roles := []struct {
		code string
		name string
	}{
		{string(security.RoleAdmin), "Administrator"},
		{string(security.RoleVeterinarian), "Veterinarian"},
		{string(security.RoleAssistant), "Assistant"},
		{string(security.RoleReceptionist), "Receptionist"},
		{string(security.RoleViewer), "Viewer"},
	}

	for _, r := range roles {
		role := auth.NewRole(r.code, r.name)
		role.IsSystem = true
		if err := repo.Create(ctx, role); err != nil {
			return fmt.Errorf("create role %s: %w", r.code, err)
		}
	}

	log.Infow("roles seeded", "count", len(roles))
	return nil
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	userRepo := auth_repo.NewUserRepo(txManager)
	roleRepo := auth_repo.NewRoleRepo(txManager)

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@vetdesk.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	exists, err := userRepo.Exists(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin exists: %w", err)
	}
	if exists {
		log.Infow("admin user already exists", "email", adminEmail)
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser(adminEmail, string(passwordHash))
	admin.FirstName = "Admin"
	admin.IsAdmin = true

	adminRole, err := roleRepo.GetByCode(ctx, string(security.RoleAdmin))
	if err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := userRepo.Create(ctx, admin); err != nil {
			return err
		}
		return userRepo.AssignRole(ctx, admin.ID, adminRole.ID, id.Nil())
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", admin.ID)
	return nil
}

// seedDemoData bulk-loads a small demo catalog via COPY.
func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	inserter := postgres.NewBatchInserter(txManager)
	now := time.Now().UTC()

	tutorColumns := []string{
		"id", "code", "name", "email", "phone",
		"deletion_mark", "version", "created_at", "updated_at",
	}
	tutorRows := [][]any{
		{id.New(), "T-0001", "Maria Santos", "maria.santos@example.com", "+55 11 91234-0001", false, 1, now, now},
		{id.New(), "T-0002", "João Pereira", "joao.pereira@example.com", "+55 11 91234-0002", false, 1, now, now},
		{id.New(), "T-0003", "Ana Oliveira", "ana.oliveira@example.com", "+55 11 91234-0003", false, 1, now, now},
	}

	productColumns := []string{
		"id", "code", "name", "stock", "min_stock",
		"cost_price", "sale_price", "active", "sellable",
		"deletion_mark", "version", "created_at", "updated_at",
	}
	productRows := [][]any{
		{id.New(), "P-0001", "Rabies vaccine dose", 40, 10, types.MustMoney("18.50"), types.MustMoney("45.00"), true, true, false, 1, now, now},
		{id.New(), "P-0002", "Flea treatment pipette", 25, 5, types.MustMoney("22.00"), types.MustMoney("60.00"), true, true, false, 1, now, now},
		{id.New(), "P-0003", "Surgical gloves (pair)", 200, 50, types.MustMoney("1.20"), types.Zero(), true, false, false, 1, now, now},
	}

	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := inserter.CopyFromSlice(ctx, "cat_tutors", tutorColumns, tutorRows)
		if err != nil {
			return fmt.Errorf("copy tutors: %w", err)
		}
		log.Infow("demo tutors inserted", "count", n)

		n, err = inserter.CopyFromSlice(ctx, "cat_products", productColumns, productRows)
		if err != nil {
			return fmt.Errorf("copy products: %w", err)
		}
		log.Infow("demo products inserted", "count", n)

		return nil
	})
}
