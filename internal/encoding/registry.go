package encoding

import (
	"fmt"
	"sort"
	"sync"

	"optdrive/internal/setting"
)

// ErrUnknownEncoder indicates the named encoder has no registered factory.
// It is a configuration error: errors.Is(err, setting.ErrConfiguration)
// holds for every wrapped instance.
var ErrUnknownEncoder = fmt.Errorf("%w: unknown encoder", setting.ErrConfiguration)

// Factory builds an encoder instance from a validated configuration.
// Construction must validate every setting in the configuration so that
// malformed configs fail before any value is processed.
type Factory func(cfg *Config) (Encoder, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds an encoder factory under the given identifier. Encoders
// register themselves from init functions; a duplicate or empty name is a
// programming error and panics.
func Register(name string, factory Factory) {
	if name == "" {
		panic("encoding: Register called with empty encoder name")
	}
	if factory == nil {
		panic(fmt.Sprintf("encoding: Register called with nil factory for encoder %q", name))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("encoding: encoder %q already registered", name))
	}
	registry[name] = factory
}

// New resolves the encoder named by the configuration and instantiates it.
// Resolution failure is a typed configuration error, never a panic.
func New(cfg *Config) (Encoder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: encoder configuration is required", setting.ErrConfiguration)
	}
	registryMu.RLock()
	factory, ok := registry[cfg.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEncoder, cfg.Name)
	}
	return factory(cfg)
}

// Names returns the registered encoder identifiers in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
