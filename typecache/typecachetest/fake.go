// Package typecachetest provides an in-memory Domain/Domains implementation
// for exercising the resolver without a real loader or JVM reflection API.
// Production code wires typecache.Domain to its own loader and reflection
// facilities; this package is the "implementations for real loaders and for
// tests are separate" half of that split.
package typecachetest

import (
	"context"
	"sync"

	"github.com/dhamidi/typecache"
)

// FakeDomain is a loader domain backed entirely by in-memory maps: class
// bytes registered with PutClassBytes, load state tracked with markers a
// test can flip, and reflection results registered with PutReflected.
type FakeDomain struct {
	mu         sync.Mutex
	handle     *typecache.LoaderHandle
	resources  map[string][]byte
	resourceIO map[string]error
	loaded     map[string]bool
	owner      map[string]*typecache.LoaderHandle
	reflected  map[string]typecache.ReflectedType
	forceLoad  map[string]bool
}

func NewFakeDomain(handle *typecache.LoaderHandle) *FakeDomain {
	return &FakeDomain{
		handle:     handle,
		resources:  make(map[string][]byte),
		resourceIO: make(map[string]error),
		loaded:     make(map[string]bool),
		owner:      make(map[string]*typecache.LoaderHandle),
		reflected:  make(map[string]typecache.ReflectedType),
		forceLoad:  make(map[string]bool),
	}
}

func (d *FakeDomain) PutClassBytes(name string, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resources[name] = data
	d.loaded[name] = true
}

// PutResourceError makes ResourceBytes(name) fail instead of reporting an
// absent resource, for exercising ResourceIOError.
func (d *FakeDomain) PutResourceError(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resourceIO[name] = err
}

// MarkLoadedWithoutBytes simulates a type the domain has already loaded
// but can no longer (or never could) produce raw bytes for.
func (d *FakeDomain) MarkLoadedWithoutBytes(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded[name] = true
}

// MarkDefinedByParent simulates loader delegation: this domain reports name
// already loaded, but attributes the definition to a different (parent)
// domain's handle, the way FindLoaded reports the defining domain rather
// than the one asked.
func (d *FakeDomain) MarkDefinedByParent(name string, parent *typecache.LoaderHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded[name] = true
	d.owner[name] = parent
}

func (d *FakeDomain) PutReflected(name string, rt typecache.ReflectedType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reflected[name] = rt
}

// AllowForceLoad makes ForceLoad(name) succeed and mark name loaded,
// simulating a non-initializing name-based load.
func (d *FakeDomain) AllowForceLoad(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forceLoad[name] = true
}

func (d *FakeDomain) ResourceBytes(_ context.Context, name string) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.resourceIO[name]; ok {
		return nil, false, err
	}
	data, ok := d.resources[name]
	return data, ok, nil
}

func (d *FakeDomain) FindLoaded(_ context.Context, name string) (*typecache.LoaderHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded[name] {
		return nil, false
	}
	if owner, ok := d.owner[name]; ok {
		return owner, true
	}
	return d.handle, true
}

func (d *FakeDomain) ForceLoad(_ context.Context, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.forceLoad[name] {
		d.loaded[name] = true
		return true
	}
	return false
}

func (d *FakeDomain) Reflect(_ context.Context, name string) (typecache.ReflectedType, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rt, ok := d.reflected[name]
	return rt, ok
}

// FakeDomains resolves LoaderHandles to FakeDomains registered with
// Register. Resolve returns nil for a handle with no registered domain; it
// does not fall back to any parent domain. Delegation to a parent is
// modelled per name with FakeDomain.MarkDefinedByParent instead.
type FakeDomains struct {
	mu      sync.Mutex
	domains map[*typecache.LoaderHandle]*FakeDomain
}

func NewFakeDomains() *FakeDomains {
	return &FakeDomains{domains: make(map[*typecache.LoaderHandle]*FakeDomain)}
}

func (f *FakeDomains) Register(handle *typecache.LoaderHandle, dom *FakeDomain) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domains[handle] = dom
}

func (f *FakeDomains) Resolve(handle *typecache.LoaderHandle) typecache.Domain {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dom, ok := f.domains[handle]; ok {
		return dom
	}
	return nil
}
