package db

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"gorm.io/gorm"
)

func TestDSNOptions(t *testing.T) {
	dsn := DSN("database/identity.db", config.StorageConfig{BusyTimeout: 5000000000})
	if !strings.HasPrefix(dsn, "file:database/identity.db?") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}
	for _, want := range []string{"_journal_mode=WAL", "_foreign_keys=on", "_busy_timeout=5000"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn missing %s: %s", want, dsn)
		}
	}
}

func TestOpenAndPing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.db")
	client, err := Open(context.Background(), path, config.StorageConfig{}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if client.Path() != path {
		t.Errorf("path = %s", client.Path())
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client, err := OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	defer client.Close()

	if err := client.DB().AutoMigrate(&models.Conversation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sentinel := errors.New("abort")
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Conversation{ID: "c1", Title: "New Chat"}).Error; err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	var count int64
	if err := client.DB().Model(&models.Conversation{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}
