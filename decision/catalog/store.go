package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	perrors "smart-pricing/pkg/errors"
)

// Backend is durable key-value storage for the encoded category lists.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Store holds the three category lists in memory and writes each change
// through to the backend. The in-memory lists are authoritative for the
// session: a failed write is reported but never rolled back.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu    sync.RWMutex
	lists map[Category][]PricedItem
}

// NewStore creates an empty store. Call Load to read the backend.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	s := &Store{
		backend: backend,
		logger:  logger.With().Str("component", "catalog").Logger(),
		lists:   make(map[Category][]PricedItem, 3),
	}
	for _, c := range Categories() {
		s.lists[c] = []PricedItem{}
	}
	return s
}

// Load reads every category from the backend. A category that is absent,
// unreadable or corrupt starts empty; the returned errors are warnings
// describing those categories and never prevent startup.
func (s *Store) Load(ctx context.Context) []error {
	var warnings []error
	loaded := make(map[Category][]PricedItem, 3)

	for _, c := range Categories() {
		key := c.StorageKey()
		items, err := s.loadCategory(ctx, key)
		if err != nil {
			lerr := perrors.NewLoadError(key, err)
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to load catalog category, starting empty")
			warnings = append(warnings, lerr)
			items = []PricedItem{}
		}
		loaded[c] = items
	}

	s.mu.Lock()
	s.lists = loaded
	s.mu.Unlock()

	s.logger.Debug().
		Int("materials", len(loaded[Materials])).
		Int("accessories", len(loaded[Accessories])).
		Int("labor", len(loaded[Labor])).
		Msg("Catalog loaded")
	return warnings
}

func (s *Store) loadCategory(ctx context.Context, key string) ([]PricedItem, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []PricedItem{}, nil
	}
	return decodeItems(data)
}

// List returns a copy of a category's items in insertion order.
func (s *Store) List(c Category) []PricedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.lists[c])
}

// Snapshot copies all three lists.
func (s *Store) Snapshot() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Catalog{
		Materials:   clone(s.lists[Materials]),
		Accessories: clone(s.lists[Accessories]),
		Labor:       clone(s.lists[Labor]),
	}
}

// Add validates item and appends it to the category. An invalid item is
// rejected with INVALID_ITEM and nothing changes. A STORAGE_PERSIST_FAILED
// error means the item was added but could not be saved.
func (s *Store) Add(ctx context.Context, c Category, item PricedItem) error {
	if err := checkCategory(c); err != nil {
		return err
	}
	item, err := NewPricedItem(item.Name, item.Unit, item.Price)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(clone(s.lists[c]), item)
	s.lists[c] = next
	return s.persistLocked(ctx, c, next)
}

// Delete removes the entry at index. An index outside the list fails with
// INDEX_OUT_OF_RANGE and changes nothing.
func (s *Store) Delete(ctx context.Context, c Category, index int) error {
	if err := checkCategory(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.lists[c]
	if index < 0 || index >= len(current) {
		return perrors.NewIndexOutOfRangeError(index, len(current))
	}

	next := make([]PricedItem, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	s.lists[c] = next
	return s.persistLocked(ctx, c, next)
}

// Replace swaps a whole category list, used by catalog import. Every item
// must validate; otherwise nothing changes.
func (s *Store) Replace(ctx context.Context, c Category, items []PricedItem) error {
	if err := checkCategory(c); err != nil {
		return err
	}
	next := make([]PricedItem, 0, len(items))
	for _, item := range items {
		valid, err := NewPricedItem(item.Name, item.Unit, item.Price)
		if err != nil {
			return err
		}
		next = append(next, valid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[c] = next
	return s.persistLocked(ctx, c, next)
}

func (s *Store) persistLocked(ctx context.Context, c Category, items []PricedItem) error {
	key := c.StorageKey()
	data, err := encodeItems(items)
	if err == nil {
		err = s.backend.Put(ctx, key, data)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Int("items", len(items)).
			Msg("Failed to persist catalog category, keeping in-memory state")
		return perrors.NewPersistError(key, err)
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func checkCategory(c Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownCategory, string(c))
	}
	return nil
}

func clone(items []PricedItem) []PricedItem {
	out := make([]PricedItem, len(items))
	copy(out, items)
	return out
}
