package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sevapay.backend/internal/config"
	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	infrarepos "sevapay.backend/internal/infrastructure/repositories"
	"sevapay.backend/pkg/crypto"
)

// admin-seed creates the first super_admin account. It refuses to touch an
// existing account so it is safe to run repeatedly.
func main() {
	email := flag.String("email", "", "super admin email")
	name := flag.String("name", "Super Admin", "display name")
	password := flag.String("password", "", "initial password (min 8 chars)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: admin-seed -email admin@example.com -password <password> [-name <name>]")
		os.Exit(2)
	}
	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "password must be at least 8 characters")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.Database.URL()), &gorm.Config{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "database connection failed:", err)
		os.Exit(1)
	}

	repo := infrarepos.NewAdminUserRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, strings.ToLower(*email)); err == nil {
		fmt.Fprintln(os.Stderr, "an admin with this email already exists")
		os.Exit(1)
	} else if err != domainerrors.ErrNotFound {
		fmt.Fprintln(os.Stderr, "lookup failed:", err)
		os.Exit(1)
	}

	hash, err := crypto.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "password hashing failed:", err)
		os.Exit(1)
	}

	admin := &entities.AdminUser{
		Email:        strings.ToLower(*email),
		Name:         *name,
		PasswordHash: hash,
		AdminType:    entities.AdminTypeSuper,
		Departments:  []string{entities.DepartmentAll},
		IsActive:     true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		fmt.Fprintln(os.Stderr, "create failed:", err)
		os.Exit(1)
	}

	fmt.Printf("super admin created: %s (%s)\n", admin.Email, admin.ID)
}
