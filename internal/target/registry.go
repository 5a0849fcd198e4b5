package target

import "sync"

// Target is a registered destination architecture.
type Target struct {
	Arch        string
	PointerSize int
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Target{}
)

// Register adds a target to the process-wide registry. Registering the same
// architecture twice is harmless.
func Register(t *Target) {
	registryMu.Lock()
	registry[t.Arch] = t
	registryMu.Unlock()
}

// Lookup returns the registered target for an architecture name, or nil.
// Callers that require the target to exist treat nil as a broken build, not
// a user error.
func Lookup(arch string) *Target {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[arch]
}

// RegisterGenX primes the registry with the two genx targets. Must run
// before any target machine is constructed.
func RegisterGenX() {
	Register(&Target{Arch: "genx32", PointerSize: 32})
	Register(&Target{Arch: "genx64", PointerSize: 64})
}
