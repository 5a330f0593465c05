package nlquery

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// keyCooldown is how long a rate-limited key sits out of rotation.
const keyCooldown = time.Minute

// KeyManager handles API key rotation
type KeyManager struct {
	keys    []string
	current uint32
	mu      sync.RWMutex
	failed  map[string]time.Time
	now     func() time.Time
}

// NewKeyManager creates a key manager from GEMINI_API_KEY and GEMINI_API_KEY_1..4
func NewKeyManager() *KeyManager {
	keys := make([]string, 0)
	seen := make(map[string]bool)

	add := func(key string) {
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	add(os.Getenv("GEMINI_API_KEY"))
	for i := 1; i <= 4; i++ {
		add(os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)))
	}

	return NewStaticKeyManager(keys...)
}

// NewStaticKeyManager rotates over the given keys.
func NewStaticKeyManager(keys ...string) *KeyManager {
	return &KeyManager{
		keys:   keys,
		failed: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Len returns the number of configured keys.
func (km *KeyManager) Len() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.keys)
}

// GetNextKey returns the next API key in rotation, skipping keys that are
// cooling down. When every key is cooling down it rotates over all of them.
func (km *KeyManager) GetNextKey() string {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if len(km.keys) == 0 {
		return ""
	}

	n := uint32(len(km.keys))
	for attempt := uint32(0); attempt < n; attempt++ {
		current := atomic.AddUint32(&km.current, 1)
		key := km.keys[(current-1)%n]
		if until, ok := km.failed[key]; !ok || km.now().After(until) {
			return key
		}
	}

	current := atomic.AddUint32(&km.current, 1)
	return km.keys[(current-1)%n]
}

// MarkKeyFailed takes a key out of rotation for keyCooldown.
func (km *KeyManager) MarkKeyFailed(key string) {
	km.mu.Lock()
	defer km.mu.Unlock()
	km.failed[key] = km.now().Add(keyCooldown)
}
