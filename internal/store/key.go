package store

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// KeyGenerator produces collection keys that sort by creation time, the
// same property push ids of realtime databases have.
type KeyGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Next returns a fresh lowercase key.
func (g *KeyGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return strings.ToLower(id.String()), nil
}
