package typecache

import "context"

// LoaderHandle is the opaque identity of a loader domain: class loader,
// module, or whatever unit of isolation the host's loading scheme uses.
// The cache never dereferences it; it only compares identity and holds a
// weak reference to it so that a reclaimed domain's cache entries can be
// collected too. The bootstrap domain is represented by a nil *LoaderHandle.
type LoaderHandle struct {
	// Label is for logging and the CLI only; it plays no role in identity.
	Label string
}

// ReflectedType is what Fallback A/B synthesize from runtime reflection
// when raw class bytes are unavailable. It carries exactly what a
// ParsedType needs and nothing tied to any particular reflection API.
type ReflectedType struct {
	Name           string
	IsInterface    bool
	SuperName      string
	InterfaceNames []string
	Methods        []ParsedMethod
}

// Domain is the host-supplied capability set for one loader domain. The
// resolver never loads or initializes classes itself: every class-loading
// side effect crosses this boundary so the cache cannot re-enter the
// instrumentation hook it is there to serve.
type Domain interface {
	// ResourceBytes returns the raw class bytes for the type whose
	// slash-separated internal name is name (e.g. "a/B"), if the domain can
	// produce them without triggering a load. ok is false if the domain has
	// no such resource; a non-nil error means the lookup itself failed.
	ResourceBytes(ctx context.Context, name string) (data []byte, ok bool, err error)

	// FindLoaded reports whether name is already defined in this domain (or
	// a domain it delegates to) without causing a load, and the handle that
	// actually owns the definition.
	FindLoaded(ctx context.Context, name string) (owner *LoaderHandle, ok bool)

	// ForceLoad asks the domain to perform a non-initializing, name-based
	// load of name (Fallback B) and reports whether it succeeded.
	ForceLoad(ctx context.Context, name string) bool

	// Reflect synthesizes type metadata via runtime reflection for a name
	// this domain has already loaded. It is the last resort when no raw
	// bytes are obtainable.
	Reflect(ctx context.Context, name string) (ReflectedType, bool)
}

// Domains resolves a LoaderHandle to the Domain capable of acting on its
// behalf. A nil handle resolves to the bootstrap domain.
type Domains interface {
	Resolve(handle *LoaderHandle) Domain
}
