package typecache

import (
	"bytes"
	"context"

	"github.com/dhamidi/typecache/classfile"
	"github.com/tliron/commonlog"
)

// Resolver answers type-hierarchy queries by combining the cache with a
// host-supplied Domains capability set. It never loads or initializes a
// class itself — every byte it parses, every "is this already loaded"
// check, and every reflection call crosses the Domain boundary, so it can
// never re-enter the instrumentation hook that calls it.
type Resolver struct {
	cache   *Cache
	domains Domains
	log     commonlog.Logger
}

func NewResolver(cache *Cache, domains Domains) *Resolver {
	return &Resolver{
		cache:   cache,
		domains: domains,
		log:     commonlog.GetLogger("typecache.resolver"),
	}
}

// GetParsedType resolves name starting from handle's loader domain. Step
// one is always the preload probe (FindLoaded): if some domain in the
// delegation chain already owns a definition for name, every subsequent
// step — cache lookup, ResourceBytes, the fallbacks — runs against that
// owning (effective) domain and handle instead of the requesting one, so a
// type discovered through a parent domain is cached once under its real
// owner rather than once per requesting child. A cache hit on the effective
// handle returns immediately; a miss parses raw bytes if the effective
// domain can produce them, then tries Fallback A (reflect an already-loaded
// type) and Fallback B (force a non-initializing load, then retry
// Fallback A) before giving up with TypeNotFoundError.
func (r *Resolver) GetParsedType(ctx context.Context, name string, handle *LoaderHandle) (*ParsedType, error) {
	dom := r.domains.Resolve(handle)
	if dom == nil {
		if pt, ok := r.cache.lookup(handle, name); ok {
			return pt, nil
		}
		return nil, &TypeNotFoundError{Name: name}
	}

	effHandle, alreadyLoaded := handle, false
	if owner, loaded := dom.FindLoaded(ctx, name); loaded && owner != nil {
		effHandle, alreadyLoaded = owner, true
	}

	effDom := dom
	if effHandle != handle {
		if d := r.domains.Resolve(effHandle); d != nil {
			effDom = d
		}
	}

	if pt, ok := r.cache.lookup(effHandle, name); ok {
		return pt, nil
	}

	data, ok, err := effDom.ResourceBytes(ctx, classfile.SourceToInternalName(name))
	if err != nil {
		ioErr := &ResourceIOError{Name: name, Err: err}
		r.log.Errorf("%s", ioErr)
		return nil, ioErr
	}
	if ok {
		pt, err := r.parseAndInstall(effHandle, name, data)
		if err != nil {
			r.log.Errorf("%s", err)
			return nil, err
		}
		return pt, nil
	}

	if alreadyLoaded {
		if pt, ok := r.tryReflectFallback(ctx, effDom, effHandle, name); ok {
			r.log.Warningf("%s", &LoaderBypassError{Name: name, Reason: "no class bytes available, reflected already-loaded type"})
			return pt, nil
		}
	}

	if effDom.ForceLoad(ctx, name) {
		if pt, ok := r.tryReflectFallback(ctx, effDom, effHandle, name); ok {
			r.log.Warningf("%s", &LoaderBypassError{Name: name, Reason: "forced non-initializing load, then reflected"})
			return pt, nil
		}
	}

	return nil, &TypeNotFoundError{Name: name}
}

func (r *Resolver) parseAndInstall(handle *LoaderHandle, name string, data []byte) (*ParsedType, error) {
	return r.cache.installParsed(handle, name, func() (*ParsedType, error) {
		cf, err := classfile.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, &MalformedClassError{Name: name, Err: err}
		}
		return newParsedType(cf), nil
	})
}

// tryReflectFallback asks dom to synthesize name via runtime reflection and
// installs the result under handle, the domain that actually owns the
// definition (handle and dom are already the effective pair resolved by
// GetParsedType's preload probe).
func (r *Resolver) tryReflectFallback(ctx context.Context, dom Domain, handle *LoaderHandle, name string) (*ParsedType, bool) {
	reflected, ok := dom.Reflect(ctx, name)
	if !ok {
		return nil, false
	}

	superName := reflected.SuperName
	if superName == "java.lang.Object" {
		superName = ""
	}
	pt, _ := r.cache.Add(&ParsedType{
		Name:           reflected.Name,
		IsInterface:    reflected.IsInterface,
		SuperName:      superName,
		InterfaceNames: reflected.InterfaceNames,
		Methods:        reflected.Methods,
	}, handle)
	return pt, true
}

// TypeHierarchy walks the super-type edge, then every interface edge, of
// name outward, depth-first. Duplicates are not removed — a diamond
// interface graph visits the shared ancestor once per path, which keeps
// the walk O(edges) instead of O(edges) plus a dedup pass. A sub-resolution
// failure is recorded and the walk continues along the remaining edges
// rather than aborting: a single unreachable ancestor should not blind the
// caller to everything else that is reachable.
func (r *Resolver) TypeHierarchy(ctx context.Context, name string, handle *LoaderHandle) []*ParsedType {
	var out []*ParsedType
	r.walk(ctx, name, handle, &out)
	return out
}

func (r *Resolver) walk(ctx context.Context, name string, handle *LoaderHandle, out *[]*ParsedType) {
	if name == "" || name == "java.lang.Object" {
		return
	}

	pt, err := r.GetParsedType(ctx, name, handle)
	if err != nil {
		r.log.Debugf("hierarchy walk: could not resolve %s: %s", name, err)
		return
	}

	*out = append(*out, pt)

	if pt.SuperName != "" {
		r.walk(ctx, pt.SuperName, handle, out)
	}
	for _, iface := range pt.InterfaceNames {
		r.walk(ctx, iface, handle, out)
	}
}
