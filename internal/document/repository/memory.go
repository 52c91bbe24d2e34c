package repository

import (
	"strconv"
	"sync"
	"time"

	"github.com/gogotex/docmanager/internal/document"
)

// MemoryRepo is the in-memory document store. It owns its identifier counter
// and its map, so independent instances never share state.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID uint64
	store  map[string]document.Document
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store: make(map[string]document.Document),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Save upserts doc and returns it exactly as stored.
//
// A document without an ID gets the next counter value and the current time.
// A document whose ID is already stored keeps the stored creation time. Any
// other document is stored as given.
func (m *MemoryRepo) Save(doc document.Document) document.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = strconv.FormatUint(m.nextID, 10)
		m.nextID++
		doc.CreatedAt = m.now()
	} else if existing, ok := m.store[doc.ID]; ok {
		doc.CreatedAt = existing.CreatedAt
	}
	m.store[doc.ID] = doc
	return doc
}

// FindByID returns the stored document and true, or false when id is unknown.
func (m *MemoryRepo) FindByID(id string) (document.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	return d, ok
}

// Search scans every stored document. The result order is unspecified.
func (m *MemoryRepo) Search(req document.SearchRequest) []document.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]document.Document, 0, len(m.store))
	for _, d := range m.store {
		if document.Matches(d, req) {
			out = append(out, d)
		}
	}
	return out
}
