package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/nmorales-dev/localchat-backend/internal/accounts"
	"github.com/nmorales-dev/localchat-backend/internal/tenant"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"github.com/nmorales-dev/localchat-backend/pkg/migrate"
	"github.com/nmorales-dev/localchat-backend/pkg/security"
)

// Default credentials for the bootstrap admin. The account takes id 1 on a
// fresh identity store and its role stays pinned to admin forever.
const (
	rootUsername = "root"
	rootPassword = "123@Root!"
	rootEmail    = "root@localhost"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "setup"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Join(cfg.Storage.DataDir, "userchats"), 0o755); err != nil {
		logg.Error(ctx, "failed to create data directories", err)
		os.Exit(1)
	}

	paths := map[migrate.Target]string{
		migrate.TargetIdentity: cfg.Storage.IdentityPath(),
		migrate.TargetSecurity: cfg.Storage.SecurityPath(),
		migrate.TargetAdmin:    cfg.Storage.AdminPath(),
	}
	for _, target := range migrate.Targets() {
		path := paths[target]
		client, err := db.Open(ctx, path, cfg.Storage, logg)
		if err != nil {
			logg.Error(logg.WithField(ctx, "db_path", path), "failed to open database", err)
			os.Exit(1)
		}
		sqlDB, err := client.SQLDB()
		if err == nil {
			err = migrate.Up(ctx, sqlDB, target)
		}
		client.Close()
		if err != nil {
			logg.Error(logg.WithField(ctx, "db_path", path), "failed to run migrations", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "db_path", path), "store migrated")
	}

	if err := seedRootAdmin(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "failed to seed root admin", err)
		os.Exit(1)
	}

	logg.Info(ctx, "setup complete")
}

func seedRootAdmin(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	client, err := db.Open(ctx, cfg.Storage.IdentityPath(), cfg.Storage, logg)
	if err != nil {
		return err
	}
	defer client.Close()

	repo := accounts.NewRepository(client.DB())
	if _, err := repo.FindByUsername(ctx, rootUsername); err == nil {
		logg.Info(ctx, "root admin already present")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := security.HashPassword(rootPassword, cfg.Password)
	if err != nil {
		return err
	}

	account, err := repo.Create(ctx, accounts.CreateAccountDTO{
		Username:     rootUsername,
		Email:        rootEmail,
		PasswordHash: hash,
		Role:         enums.RoleAdmin,
		ChatUUID:     uuid.NewString(),
	})
	if err != nil {
		return err
	}

	provisioner := tenant.NewProvisioner(cfg.Storage, logg)
	if err := provisioner.Ensure(ctx, account.ChatUUID); err != nil {
		return err
	}

	logg.Info(logg.WithAccountID(ctx, account.ID), "root admin created")
	return nil
}
