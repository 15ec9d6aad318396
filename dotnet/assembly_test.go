package dotnet

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *atomic.Int32, known ...string) AssemblyLoader {
	return AssemblyLoaderFunc(func(id AssemblyIdentity) (*Assembly, error) {
		calls.Add(1)
		for _, name := range known {
			if name == id.Name {
				return &Assembly{Identity: id}, nil
			}
		}
		return nil, ErrAssemblyNotFound
	})
}

func TestCachingResolverLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	r := NewCachingResolver(countingLoader(&calls, "Ext"))
	id := AssemblyIdentity{Name: "Ext"}

	assert.False(t, r.HasCached(id))

	a1, err := r.Resolve(id)
	require.NoError(t, err)
	a2, err := r.Resolve(AssemblyIdentity{Name: "EXT"})
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.True(t, r.HasCached(id))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachingResolverCachesFailure(t *testing.T) {
	var calls atomic.Int32
	r := NewCachingResolver(countingLoader(&calls))
	id := AssemblyIdentity{Name: "Missing"}

	_, err := r.Resolve(id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssemblyNotFound))

	_, err = r.Resolve(id)
	require.Error(t, err)

	assert.False(t, r.HasCached(id))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachingResolverConcurrent(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	loader := AssemblyLoaderFunc(func(id AssemblyIdentity) (*Assembly, error) {
		calls.Add(1)
		<-release
		return &Assembly{Identity: id}, nil
	})
	r := NewCachingResolver(loader)
	id := AssemblyIdentity{Name: "Shared"}

	const n = 16
	results := make([]*Assembly, n)
	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			a, err := r.Resolve(id)
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}
	started.Wait()
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, a := range results {
		assert.Same(t, results[0], a)
	}
}

func TestCachingResolverNilLoader(t *testing.T) {
	r := NewCachingResolver(nil)
	seeded := &Assembly{Identity: AssemblyIdentity{Name: "Self"}}
	r.Seed(seeded)

	a, err := r.Resolve(AssemblyIdentity{Name: "self"})
	require.NoError(t, err)
	assert.Same(t, seeded, a)

	_, err = r.Resolve(AssemblyIdentity{Name: "Other"})
	assert.ErrorIs(t, err, ErrAssemblyNotFound)
	assert.Len(t, r.Assemblies(), 1)
}

func TestAssemblyFindType(t *testing.T) {
	outer := &TypeDefinition{Namespace: "N", Name: "Outer"}
	inner := &TypeDefinition{Name: "Inner", DeclaringType: outer}
	a := &Assembly{Types: []*TypeDefinition{outer, inner}}

	d, ok := a.FindType("N.Outer+Inner")
	require.True(t, ok)
	assert.Same(t, inner, d)

	_, ok = a.FindType("N.Inner")
	assert.False(t, ok)
}
