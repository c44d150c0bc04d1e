package typecache

import (
	"runtime"
	"sort"
	"strings"
	"weak"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Stats is a read-only snapshot of the cache's size. It exists for
// observability and tests; it implies no eviction or persistence policy.
type Stats struct {
	Domains         int
	BootstrapTypes  int
	CachedTypeNames int
	CachedMethods   int
}

// Cache is the cache root: one strongly-owned bootstrap map for the nil
// loader domain, a weak-keyed index of per-domain maps for every other
// domain, and the name index used for type-name queries across all of them.
//
// The domain index's key is weak.Pointer[LoaderHandle] itself, not a
// wrapper around it: the map holds no strong reference back to a
// LoaderHandle, so once nothing else in the host process keeps one alive,
// runtime.AddCleanup reclaims its entry here too.
type Cache struct {
	mu      deadlock.RWMutex
	domains map[weak.Pointer[LoaderHandle]]*domainTypes

	bootstrap *domainTypes

	typeNames *nameIndex
}

func NewCache() *Cache {
	return &Cache{
		domains:   make(map[weak.Pointer[LoaderHandle]]*domainTypes),
		bootstrap: &domainTypes{},
		typeNames: newNameIndex(),
	}
}

// domainFor returns the per-domain map for handle, creating it (and
// registering the weak-reclaim cleanup) on first use. A nil handle always
// resolves to the dedicated bootstrap map, which is never weak and never
// collected.
func (c *Cache) domainFor(handle *LoaderHandle) *domainTypes {
	if handle == nil {
		return c.bootstrap
	}

	key := weak.Make(handle)

	c.mu.RLock()
	dt, ok := c.domains[key]
	c.mu.RUnlock()
	if ok {
		return dt
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if dt, ok := c.domains[key]; ok {
		return dt
	}

	dt = &domainTypes{}
	c.domains[key] = dt
	runtime.AddCleanup(handle, c.evictDomain, key)
	return dt
}

func (c *Cache) evictDomain(key weak.Pointer[LoaderHandle]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.domains, key)
}

// domainSnapshot copies the current set of per-domain maps (excluding the
// bootstrap map) under the lock, so callers can scan them without holding
// it.
func (c *Cache) domainSnapshot() []*domainTypes {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domainTypes, 0, len(c.domains))
	for _, dt := range c.domains {
		out = append(out, dt)
	}
	return out
}

// typesNamed collects every Parsed Type named typeName across the bootstrap
// map and every per-domain map, bootstrap first, then per-domain maps in
// iteration order — the same shape matching_method_names and
// matching_parsed_methods scan in spec.md §4.3.
func (c *Cache) typesNamed(typeName string) []*ParsedType {
	var out []*ParsedType
	if pt, ok := c.bootstrap.get(typeName); ok {
		out = append(out, pt)
	}
	for _, dt := range c.domainSnapshot() {
		if pt, ok := dt.get(typeName); ok {
			out = append(out, pt)
		}
	}
	return out
}

// lookup returns an already-cached type for name in handle's domain
// without attempting to parse or fall back.
func (c *Cache) lookup(handle *LoaderHandle, name string) (*ParsedType, bool) {
	return c.domainFor(handle).get(name)
}

// installParsed runs build on a miss and installs its result under
// install-once-never-replace semantics, indexing it if this call's result
// is the one that won the race.
func (c *Cache) installParsed(handle *LoaderHandle, name string, build func() (*ParsedType, error)) (*ParsedType, error) {
	dt := c.domainFor(handle)
	pt, installed, err := dt.loadOrInstall(name, build)
	if err != nil {
		return nil, err
	}
	if installed {
		c.index(pt)
	}
	return pt, nil
}

// Add donates a fully-constructed ParsedType into handle's domain, e.g.
// one synthesized by a fallback path. It returns the type actually
// installed under that name — pt itself, or whatever a concurrent caller
// installed first — and whether pt was the winner.
func (c *Cache) Add(pt *ParsedType, handle *LoaderHandle) (*ParsedType, bool) {
	actual, installed := c.domainFor(handle).storeOnce(pt)
	if installed {
		c.index(actual)
	}
	return actual, installed
}

func (c *Cache) index(pt *ParsedType) {
	c.typeNames.add(pt.Name)
}

// MatchingTypeNames returns up to limit distinct canonical type names whose
// case-folded form contains partial as a substring, in alphabetical order
// by upper-cased key. limit <= 0 means unlimited. Names belonging to
// domains since collected are not pruned from this list.
func (c *Cache) MatchingTypeNames(partial string, limit int) []string {
	return c.typeNames.matchingSubstring(partial, limit)
}

// MatchingMethodNames collects every Parsed Type named typeName from every
// per-domain map, unions their declared method names whose case-folded form
// contains partial as a substring, sorts case-insensitively, and truncates
// to limit (limit <= 0 means unlimited).
func (c *Cache) MatchingMethodNames(typeName, partial string, limit int) []string {
	upPartial := upperName(partial)

	seen := make(map[string]bool)
	var names []string
	for _, pt := range c.typesNamed(typeName) {
		for _, m := range pt.Methods {
			if !strings.Contains(upperName(m.Name), upPartial) {
				continue
			}
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}

	sort.Slice(names, func(i, j int) bool { return upperName(names[i]) < upperName(names[j]) })
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}

// MatchingParsedMethods returns every method named exactly methodName
// (case-sensitive) declared directly by a Parsed Type named typeName,
// across every per-domain map, in domain-iteration order then declaration
// order.
func (c *Cache) MatchingParsedMethods(typeName, methodName string) []ParsedMethod {
	var out []ParsedMethod
	for _, pt := range c.typesNamed(typeName) {
		for _, m := range pt.Methods {
			if m.Name == methodName {
				out = append(out, m)
			}
		}
	}
	return out
}

func (c *Cache) Stats() Stats {
	domains := c.domainSnapshot()

	bootstrapCount, methodCount := 0, 0
	c.bootstrap.forEach(func(pt *ParsedType) {
		bootstrapCount++
		methodCount += len(pt.Methods)
	})
	for _, dt := range domains {
		dt.forEach(func(pt *ParsedType) { methodCount += len(pt.Methods) })
	}

	return Stats{
		Domains:         len(domains),
		BootstrapTypes:  bootstrapCount,
		CachedTypeNames: c.typeNames.count(),
		CachedMethods:   methodCount,
	}
}
