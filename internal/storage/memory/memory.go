package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"moneymanager/internal/ledger"
)

// Store keeps persisted collections in process memory.
type Store struct {
	mu    sync.Mutex
	items map[ledger.Collection][]byte
}

var _ ledger.Persister = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[ledger.Collection][]byte)}
}

// NewFromDir preloads every collection that has a <key>.json file in dir.
// Missing files are skipped so the ledger falls back to its seed data.
func NewFromDir(dir string) *Store {
	s := New()
	for _, c := range ledger.Collections {
		data, err := os.ReadFile(filepath.Join(dir, string(c)+".json"))
		if err != nil || len(data) == 0 {
			continue
		}
		s.items[c] = data
	}
	return s
}

func (s *Store) Load(_ context.Context, c ledger.Collection) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[c]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *Store) Save(_ context.Context, c ledger.Collection, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c] = append([]byte(nil), data...)
	return nil
}
