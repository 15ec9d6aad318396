package dotnet

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// AssemblyIdentity names an assembly.
type AssemblyIdentity struct {
	Name           string
	Version        string
	Culture        string
	PublicKeyToken string
}

// IsZero reports whether the identity is unset.
func (id AssemblyIdentity) IsZero() bool {
	return id == AssemblyIdentity{}
}

// FullName renders the identity in display-name syntax, omitting empty parts.
func (id AssemblyIdentity) FullName() string {
	var b strings.Builder
	b.WriteString(id.Name)
	if id.Version != "" {
		b.WriteString(", Version=")
		b.WriteString(id.Version)
	}
	if id.Culture != "" {
		b.WriteString(", Culture=")
		b.WriteString(id.Culture)
	}
	if id.PublicKeyToken != "" {
		b.WriteString(", PublicKeyToken=")
		b.WriteString(id.PublicKeyToken)
	}
	return b.String()
}

// Key is the cache key for the identity. Assembly names compare
// case-insensitively.
func (id AssemblyIdentity) Key() string {
	return strings.ToLower(id.FullName())
}

func (id AssemblyIdentity) String() string {
	return id.FullName()
}

// AssemblyResolver locates assemblies referenced by a module.
type AssemblyResolver interface {
	// HasCached reports whether id has already been resolved successfully.
	HasCached(id AssemblyIdentity) bool

	// Resolve returns the assembly for id.
	Resolve(id AssemblyIdentity) (*Assembly, error)
}

// AssemblyLoader performs the actual, uncached lookup of an assembly.
type AssemblyLoader interface {
	LoadAssembly(id AssemblyIdentity) (*Assembly, error)
}

// AssemblyLoaderFunc adapts a function to AssemblyLoader.
type AssemblyLoaderFunc func(id AssemblyIdentity) (*Assembly, error)

func (f AssemblyLoaderFunc) LoadAssembly(id AssemblyIdentity) (*Assembly, error) {
	return f(id)
}

type resolution struct {
	assembly *Assembly
	err      error
}

// CachingResolver is an AssemblyResolver that loads each identity at most
// once. Concurrent Resolve calls for the same identity share one load, and
// failures are cached as well as successes.
//
// It is safe for concurrent use.
type CachingResolver struct {
	loader AssemblyLoader
	group  singleflight.Group

	mu      sync.RWMutex
	entries map[string]resolution
}

// NewCachingResolver creates a resolver backed by loader. A nil loader
// resolves nothing beyond seeded assemblies.
func NewCachingResolver(loader AssemblyLoader) *CachingResolver {
	return &CachingResolver{
		loader:  loader,
		entries: make(map[string]resolution),
	}
}

// Seed records an assembly as already resolved.
func (c *CachingResolver) Seed(a *Assembly) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[a.Identity.Key()] = resolution{assembly: a}
}

// HasCached implements AssemblyResolver.
func (c *CachingResolver) HasCached(id AssemblyIdentity) bool {
	_, ok := c.Cached(id)
	return ok
}

// Cached returns a successfully resolved assembly without loading.
func (c *CachingResolver) Cached(id AssemblyIdentity) (*Assembly, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id.Key()]
	if !ok || e.err != nil {
		return nil, false
	}
	return e.assembly, true
}

// Resolve implements AssemblyResolver.
func (c *CachingResolver) Resolve(id AssemblyIdentity) (*Assembly, error) {
	key := id.Key()

	if e, ok := c.lookup(key); ok {
		return e.assembly, e.err
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// A caller that lost the race to an earlier flight finds it here.
		if e, ok := c.lookup(key); ok {
			return e, nil
		}

		e := c.load(id)

		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return e, nil
	})

	e := v.(resolution)
	return e.assembly, e.err
}

func (c *CachingResolver) lookup(key string) (resolution, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *CachingResolver) load(id AssemblyIdentity) resolution {
	if c.loader == nil {
		return resolution{err: fmt.Errorf("%w: %s", ErrAssemblyNotFound, id)}
	}

	a, err := c.loader.LoadAssembly(id)
	if err != nil {
		return resolution{err: fmt.Errorf("dotnet: resolve %s: %w", id, err)}
	}
	if a == nil {
		return resolution{err: fmt.Errorf("%w: %s", ErrAssemblyNotFound, id)}
	}
	return resolution{assembly: a}
}

// Assemblies returns the successfully resolved assemblies.
func (c *CachingResolver) Assemblies() []*Assembly {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Assembly, 0, len(c.entries))
	for _, e := range c.entries {
		if e.err == nil {
			out = append(out, e.assembly)
		}
	}
	return out
}
