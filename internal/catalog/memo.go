package catalog

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/db/models"
)

// Memo caches the most recent Apply result keyed on the complete input tuple.
// Repeated calls with the same product list and criteria return the cached
// slice without re-running the pipeline; any change to either input evicts
// the single entry. Callers must treat the returned slice as read-only.
type Memo struct {
	mu     sync.Mutex
	key    uint64
	result []models.Product
	hits   uint64
	misses uint64
}

func NewMemo() *Memo {
	return &Memo{}
}

// Apply is the memoized form of the package-level Apply.
func (m *Memo) Apply(products []models.Product, c Criteria) []models.Product {
	key := fingerprint(products, c)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.result != nil && m.key == key {
		m.hits++
		return m.result
	}

	m.misses++
	m.key = key
	m.result = Apply(products, c)
	return m.result
}

// Stats returns hit and miss counters since construction.
func (m *Memo) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

func fingerprint(products []models.Product, c Criteria) uint64 {
	h := fnv.New64a()

	for _, p := range products {
		h.Write(p.ID[:])
		fmt.Fprintf(h, "|%d|%d", p.UpdatedAt.UnixNano(), p.Stock)
	}

	fmt.Fprintf(h, "#%s|%d|%d|%s", strings.ToLower(c.Query), c.MinPrice, c.MaxPrice, c.Sort)
	writeSet(h, c.Brands)
	writeSet(h, c.RAM)
	writeSet(h, c.Storage)
	writeSet(h, c.CPU)
	writeSet(h, c.ScreenSizes)
	writeIDSet(h, c.CategoryIDs)

	return h.Sum64()
}

func writeSet(h interface{ Write([]byte) (int, error) }, values []string) {
	h.Write([]byte{';'})
	for _, v := range values {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(v))))
		h.Write([]byte{','})
	}
}

func writeIDSet(h interface{ Write([]byte) (int, error) }, ids []uuid.UUID) {
	h.Write([]byte{';'})
	for _, id := range ids {
		h.Write(id[:])
	}
}
