package typecache

import "sync"

// domainTypes is the lock-free concurrent map of type name to ParsedType
// scoped to a single loader domain. Concurrent misses on the same name may
// both run their build function; only the first result to be stored wins,
// and every caller observes that same winner afterward.
type domainTypes struct {
	m sync.Map // string -> *ParsedType
}

// loadOrInstall returns the cached type for name, building and
// install-once-never-replace storing it on a miss. installed reports
// whether this call's build result is the one that got stored (false if
// another concurrent caller's build won the race, or the entry already
// existed).
func (d *domainTypes) loadOrInstall(name string, build func() (*ParsedType, error)) (pt *ParsedType, installed bool, err error) {
	if v, ok := d.m.Load(name); ok {
		return v.(*ParsedType), false, nil
	}

	built, err := build()
	if err != nil {
		return nil, false, err
	}

	actual, loaded := d.m.LoadOrStore(name, built)
	return actual.(*ParsedType), !loaded, nil
}

func (d *domainTypes) get(name string) (*ParsedType, bool) {
	v, ok := d.m.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*ParsedType), true
}

// storeOnce installs pt unless an entry already exists for its name,
// matching the cache's install-once-never-replace semantics for
// externally donated types (Cache.Add). It returns the winning value
// (pt itself, or whatever another caller installed first) and whether pt
// was the one stored.
func (d *domainTypes) storeOnce(pt *ParsedType) (*ParsedType, bool) {
	actual, loaded := d.m.LoadOrStore(pt.Name, pt)
	return actual.(*ParsedType), !loaded
}

// forEach visits every entry currently in the map. Order is unspecified;
// callers that need a stable order sort afterward.
func (d *domainTypes) forEach(fn func(*ParsedType)) {
	d.m.Range(func(_, v any) bool {
		fn(v.(*ParsedType))
		return true
	})
}
