package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/pkg/config"
	"github.com/peptracker/peptracker-backend/pkg/db"
	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/security"
)

const tempPasswordLength = 24

// provision-admin seeds one elevated account so a fresh deployment has a
// moderation login before any interactive signup exists.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "provision-admin"})

	_ = godotenv.Load()

	email := flag.String("email", "", "email for the provisioned account")
	role := flag.String("role", enums.UserRoleAdmin.String(), "role to grant: admin|moderator")
	password := flag.String("password", "", "password to set; generated when empty")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "missing -email")
		os.Exit(1)
	}
	grantedRole, err := enums.ParseUserRole(*role)
	if err != nil || grantedRole == enums.UserRoleUser {
		fmt.Fprintf(os.Stderr, "role must be admin or moderator, got %q\n", *role)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "provision-admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	plaintext := *password
	generated := false
	if plaintext == "" {
		plaintext, err = security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			logg.Error(ctx, "failed to generate password", err)
			os.Exit(1)
		}
		generated = true
	}

	hash, err := security.HashPassword(plaintext, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	normalized := strings.ToLower(strings.TrimSpace(*email))
	conn := dbClient.DB().WithContext(ctx)

	var existing models.User
	err = conn.Where("email = ?", normalized).First(&existing).Error
	switch {
	case err == nil:
		fmt.Fprintf(os.Stderr, "user %s already exists with role %s\n", normalized, existing.Role)
		os.Exit(1)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		logg.Error(ctx, "failed to check existing user", err)
		os.Exit(1)
	}

	user := models.User{
		Email:        normalized,
		PasswordHash: hash,
		Role:         grantedRole,
		IsActive:     true,
	}
	if err := conn.Create(&user).Error; err != nil {
		logg.Error(ctx, "failed to create user", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"user_id": user.ID.String(),
		"role":    grantedRole.String(),
	})
	logg.Info(ctx, "provisioned account")

	fmt.Println("provisioned:", normalized)
	if generated {
		fmt.Println("temporary password:", plaintext)
	}
}
