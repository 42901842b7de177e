package tenant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db"
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
)

const chatDirName = "userchats"

// Provisioner creates and opens per-account chat stores. Each store is a
// standalone SQLite file named by the account's chat UUID. First use builds
// the file at a temporary path and renames it into place, so a crash mid
// provisioning never leaves a half-built store behind.
type Provisioner struct {
	storage config.StorageConfig
	logg    *logger.Logger

	locks sync.Map // chat uuid -> *sync.Mutex
}

// NewProvisioner constructs a provisioner rooted at the configured data dir.
func NewProvisioner(storage config.StorageConfig, logg *logger.Logger) *Provisioner {
	return &Provisioner{storage: storage, logg: logg}
}

// Path returns the on-disk location of the chat store for the given UUID.
func (p *Provisioner) Path(chatUUID string) string {
	return filepath.Join(p.storage.DataDir, chatDirName, chatUUID+".db")
}

// Open ensures the chat store exists, then opens a connection to it. Callers
// own the returned client and must close it.
func (p *Provisioner) Open(ctx context.Context, chatUUID string) (*db.Client, error) {
	if err := p.Ensure(ctx, chatUUID); err != nil {
		return nil, err
	}
	return db.Open(ctx, p.Path(chatUUID), p.storage, p.logg)
}

// Ensure creates the chat store with its schema if it does not exist yet.
// Safe for concurrent callers on the same UUID.
func (p *Provisioner) Ensure(ctx context.Context, chatUUID string) error {
	if _, err := uuid.Parse(chatUUID); err != nil {
		return fmt.Errorf("invalid chat store id %q: %w", chatUUID, err)
	}

	path := p.Path(chatUUID)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	lock := p.lockFor(chatUUID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the lock: a concurrent request may have built it.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating chat store dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := p.buildAt(ctx, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("activating chat store: %w", err)
	}

	if p.logg != nil {
		p.logg.Info(p.logg.WithField(ctx, "chat_uuid", chatUUID), "tenant.store.provisioned")
	}
	return nil
}

func (p *Provisioner) buildAt(ctx context.Context, path string) error {
	client, err := db.Open(ctx, path, p.storage, p.logg)
	if err != nil {
		return fmt.Errorf("building chat store: %w", err)
	}
	defer client.Close()

	if err := client.DB().WithContext(ctx).AutoMigrate(&models.Conversation{}, &models.Message{}); err != nil {
		return fmt.Errorf("migrating chat store: %w", err)
	}
	return nil
}

func (p *Provisioner) lockFor(chatUUID string) *sync.Mutex {
	actual, _ := p.locks.LoadOrStore(chatUUID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
