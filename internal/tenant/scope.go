package tenant

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// ErrNoIdentity is returned when a handler asks for the chat store on a
// request that carries no authenticated account.
var ErrNoIdentity = errors.New("no authenticated identity in scope")

// ChatUUIDResolver maps an account to its chat store identifier.
type ChatUUIDResolver interface {
	ChatUUID(ctx context.Context, accountID int64) (string, error)
}

// Scope is the request-scoped handle to the caller's private chat store. The
// connection is opened lazily on first use and torn down by middleware when
// the request finishes, so handlers never manage connection lifecycle.
type Scope struct {
	accountID   int64
	resolver    ChatUUIDResolver
	provisioner *Provisioner

	mu   sync.Mutex
	chat *closableDB
}

type closableDB struct {
	conn   *gorm.DB
	closer func() error
}

// NewScope builds a scope for the authenticated account. An accountID of zero
// produces a scope whose Chat always fails with ErrNoIdentity.
func NewScope(accountID int64, resolver ChatUUIDResolver, provisioner *Provisioner) *Scope {
	return &Scope{
		accountID:   accountID,
		resolver:    resolver,
		provisioner: provisioner,
	}
}

// Chat returns the caller's chat store connection, provisioning the store on
// first contact. Repeated calls within a request reuse the same connection.
func (s *Scope) Chat(ctx context.Context) (*gorm.DB, error) {
	if s.accountID <= 0 {
		return nil, ErrNoIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chat != nil {
		return s.chat.conn.WithContext(ctx), nil
	}

	chatUUID, err := s.resolver.ChatUUID(ctx, s.accountID)
	if err != nil {
		return nil, err
	}

	client, err := s.provisioner.Open(ctx, chatUUID)
	if err != nil {
		return nil, err
	}

	s.chat = &closableDB{conn: client.DB(), closer: client.Close}
	return s.chat.conn.WithContext(ctx), nil
}

// Close releases every connection the scope opened. Idempotent.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	if s.chat != nil {
		errs = multierr.Append(errs, s.chat.closer())
		s.chat = nil
	}
	return errs
}
