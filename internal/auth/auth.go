package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/store"
)

// Manager hands out valid credentials for API calls, refreshing expired
// ones through the registered TokenRefresher for the provider.
type Manager struct {
	store      store.CredentialStore
	refreshers map[providers.Provider]TokenRefresher
	logger     *log.Logger
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a credential manager over the given store.
func NewManager(credStore store.CredentialStore, refreshers map[providers.Provider]TokenRefresher, logger *log.Logger) *Manager {
	return &Manager{
		store:      credStore,
		refreshers: refreshers,
		logger:     logger,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Obtain returns a credential that is valid for immediate use,
// refreshing the stored one first if it has expired or is about to.
//
// Refreshes for the same user and provider are serialized: concurrent
// callers holding an expired credential trigger a single refresh, and
// everyone observes the credential the winner stored.
func (m *Manager) Obtain(ctx context.Context, userID string, provider providers.Provider) (providers.Credential, error) {
	cred, err := m.get(ctx, userID, provider)
	if err != nil {
		return providers.Credential{}, err
	}
	if !cred.Expired(m.now()) {
		return cred, nil
	}

	lock := m.refreshLock(userID, provider)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	cred, err = m.get(ctx, userID, provider)
	if err != nil {
		return providers.Credential{}, err
	}
	if !cred.Expired(m.now()) {
		return cred, nil
	}

	return m.refresh(ctx, userID, cred)
}

// Store persists a credential for the user, replacing any existing one
// for the same provider.
func (m *Manager) Store(ctx context.Context, userID string, cred providers.Credential) error {
	return m.store.Put(ctx, userID, cred)
}

// Status reports whether the user holds a credential for the provider
// and whether it is currently valid without a refresh.
func (m *Manager) Status(ctx context.Context, userID string, provider providers.Provider) (held, valid bool, err error) {
	cred, err := m.store.Get(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, store.ErrCredentialNotFound) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, !cred.Expired(m.now()), nil
}

// Revoke removes the stored credential for the provider.
func (m *Manager) Revoke(ctx context.Context, userID string, provider providers.Provider) error {
	return m.store.Delete(ctx, userID, provider)
}

func (m *Manager) get(ctx context.Context, userID string, provider providers.Provider) (providers.Credential, error) {
	cred, err := m.store.Get(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, store.ErrCredentialNotFound) {
			return providers.Credential{}, providers.Errorf(provider, providers.KindUnauthenticated, "no credential stored for user %s", userID)
		}
		return providers.Credential{}, err
	}
	return cred, nil
}

func (m *Manager) refresh(ctx context.Context, userID string, cred providers.Credential) (providers.Credential, error) {
	refresher, ok := m.refreshers[cred.Provider]
	if !ok {
		return providers.Credential{}, providers.Errorf(cred.Provider, providers.KindUnauthenticated, "no refresher registered for %s", cred.Provider)
	}

	m.logger.Debug("refreshing credential", "user", userID, "provider", cred.Provider)

	refreshed, err := refresher.Refresh(ctx, cred)
	if err != nil {
		m.logger.Warn("credential refresh failed", "user", userID, "provider", cred.Provider, "error", err)
		return providers.Credential{}, err
	}

	if err := m.store.Put(ctx, userID, refreshed); err != nil {
		return providers.Credential{}, err
	}

	m.logger.Info("credential refreshed", "user", userID, "provider", cred.Provider, "expires_at", refreshed.ExpiresAt)
	return refreshed, nil
}

func (m *Manager) refreshLock(userID string, provider providers.Provider) *sync.Mutex {
	key := userID + ":" + provider.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}
