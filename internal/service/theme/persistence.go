package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStorageUnavailable is returned by storage slots that are disabled,
// sandboxed or over quota.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Storage is a single durable client-side key-value slot.
type Storage interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
}

// Persistence reads and writes the theme choice. Every failure of the
// underlying slot, including a panic, reads as "nothing stored" and drops
// the write.
type Persistence struct {
	store  Storage
	logger *slog.Logger
}

// NewPersistence wraps store. A nil store behaves as disabled storage.
func NewPersistence(store Storage, logger *slog.Logger) *Persistence {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Persistence{store: store, logger: logger}
}

// Read returns the stored value for key. Empty values count as absent.
func (p *Persistence) Read(key string) (value string, ok bool) {
	if p == nil || p.store == nil {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("theme storage read panicked", "key", key, "panic", fmt.Sprint(r))
			value, ok = "", false
		}
	}()
	v, found, err := p.store.GetItem(key)
	if err != nil {
		p.logger.Debug("theme storage read failed", "key", key, "error", err)
		return "", false
	}
	if !found || v == "" {
		return "", false
	}
	return v, true
}

// Write stores value under key, silently dropping it on failure.
func (p *Persistence) Write(key, value string) {
	if p == nil || p.store == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("theme storage write panicked", "key", key, "panic", fmt.Sprint(r))
		}
	}()
	if err := p.store.SetItem(key, value); err != nil {
		p.logger.Debug("theme storage write failed", "key", key, "error", err)
	}
}

// MemoryStorage is an in-process storage slot. Set Denied to make every
// call fail with ErrStorageUnavailable.
type MemoryStorage struct {
	mu     sync.Mutex
	items  map[string]string
	Denied bool
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

// GetItem implements Storage.
func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied {
		return "", false, ErrStorageUnavailable
	}
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Storage.
func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied {
		return ErrStorageUnavailable
	}
	if m.items == nil {
		m.items = make(map[string]string)
	}
	m.items[key] = value
	return nil
}
