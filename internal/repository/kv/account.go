package kv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"github.com/lalith-99/roomcast/internal/store"
	"go.uber.org/zap"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
)

// AccountStore binds network addresses to accounts. Three tables: the account
// records themselves, address -> id for auto-login, and lowercased
// username -> id for case-insensitive uniqueness.
type AccountStore struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

var _ repository.AccountRepository = (*AccountStore)(nil)

func NewAccountStore(s store.Store, logger *zap.Logger) *AccountStore {
	return &AccountStore{store: s, logger: logger, now: time.Now}
}

func (s *AccountStore) Register(ctx context.Context, username, address string) (*models.Account, error) {
	if address == "" {
		return nil, repository.NewValidationError("no network address")
	}

	// Known address: this is a login, not a registration. The account comes
	// back unchanged apart from a refreshed LastLogin.
	account, err := s.Lookup(ctx, address)
	if err == nil {
		account.LastLogin = s.now().UnixMilli()
		if err := s.store.HashSet(ctx, accountsKey, account.ID, account); err != nil {
			return nil, err
		}
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return nil, repository.NewValidationError("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}

	lower := strings.ToLower(username)
	var takenBy string
	taken, err := s.store.HashGet(ctx, usernamesKey, lower, &takenBy)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrDuplicate
	}

	nowMs := s.now().UnixMilli()
	account = &models.Account{
		ID:        uuid.NewString(),
		Username:  username,
		Address:   address,
		CreatedAt: nowMs,
		LastLogin: nowMs,
	}
	if err := s.store.HashSet(ctx, accountsKey, account.ID, account); err != nil {
		return nil, err
	}
	if err := s.store.HashSet(ctx, addressesKey, address, account.ID); err != nil {
		return nil, err
	}
	if err := s.store.HashSet(ctx, usernamesKey, lower, account.ID); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", zap.String("username", username), zap.String("address", address))
	return account, nil
}

func (s *AccountStore) Lookup(ctx context.Context, address string) (*models.Account, error) {
	var accountID string
	found, err := s.store.HashGet(ctx, addressesKey, address, &accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}

	var account models.Account
	found, err = s.store.HashGet(ctx, accountsKey, accountID, &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}
