package typecache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dhamidi/typecache/typecachetest"
)

func newTestResolver() (*Resolver, *typecachetest.FakeDomains, *typecachetest.FakeDomain, *LoaderHandle) {
	handle := &LoaderHandle{Label: "app"}
	dom := typecachetest.NewFakeDomain(handle)
	domains := typecachetest.NewFakeDomains()
	domains.Register(handle, dom)
	return NewResolver(NewCache(), domains), domains, dom, handle
}

// Scenario: a.B extends a.A and implements a.I. Resolving a.B's hierarchy
// should surface a.B, a.A, and a.I.
func TestTypeHierarchySimple(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()

	dom.PutClassBytes("a/I", buildClassBytes("a/I", "", nil, nil))
	dom.PutClassBytes("a/A", buildClassBytes("a/A", "java/lang/Object", nil, nil))
	dom.PutClassBytes("a/B", buildClassBytes("a/B", "a/A", []string{"a/I"}, []testMethod{
		{name: "run", descriptor: "()V"},
	}))

	hier := r.TypeHierarchy(ctx, "a.B", handle)

	names := make([]string, len(hier))
	for i, pt := range hier {
		names[i] = pt.Name
	}
	want := []string{"a.B", "a.A", "a.I"}
	if len(names) != len(want) {
		t.Fatalf("hierarchy = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("hierarchy[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

// Scenario: a.D extends a.C extends a.B, and all three directly implement
// a.I, so a.I is reached along three edges. The walk must not deduplicate.
func TestTypeHierarchyPermitsDuplicates(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()

	dom.PutClassBytes("a/I", buildClassBytes("a/I", "", nil, nil))
	dom.PutClassBytes("a/B", buildClassBytes("a/B", "java/lang/Object", []string{"a/I"}, nil))
	dom.PutClassBytes("a/C", buildClassBytes("a/C", "a/B", []string{"a/I"}, nil))
	dom.PutClassBytes("a/D", buildClassBytes("a/D", "a/C", []string{"a/I"}, nil))

	hier := r.TypeHierarchy(ctx, "a.D", handle)

	count := 0
	for _, pt := range hier {
		if pt.Name == "a.I" {
			count++
		}
	}
	if count != 3 {
		t.Errorf("a.I appeared %d times, want 3 (once per direct-implements edge)", count)
	}
}

func TestGetParsedTypeConcurrentParseInstallsOnce(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()
	dom.PutClassBytes("a/B", buildClassBytes("a/B", "java/lang/Object", nil, nil))

	const n = 10
	results := make([]*ParsedType, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			pt, err := r.GetParsedType(ctx, "a.B", handle)
			if err != nil {
				t.Errorf("goroutine %d: %v", i, err)
				return
			}
			results[i] = pt
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("goroutine %d got a different *ParsedType than goroutine 0", i)
		}
	}
}

func TestGetParsedTypeMalformedClass(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()
	dom.PutClassBytes("a/Bad", []byte{0, 0, 0, 0})

	_, err := r.GetParsedType(ctx, "a.Bad", handle)
	var malformed *MalformedClassError
	if !errors.As(err, &malformed) {
		t.Fatalf("got %v, want *MalformedClassError", err)
	}
}

func TestGetParsedTypeMalformedThenCorrectedRetrySucceeds(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()
	dom.PutClassBytes("a/Fixable", []byte{0, 0, 0, 0})

	if _, err := r.GetParsedType(ctx, "a.Fixable", handle); err == nil {
		t.Fatal("expected first parse to fail")
	}

	dom.PutClassBytes("a/Fixable", buildClassBytes("a/Fixable", "java/lang/Object", nil, nil))
	pt, err := r.GetParsedType(ctx, "a.Fixable", handle)
	if err != nil {
		t.Fatalf("retry after fixing bytes failed: %v", err)
	}
	if pt.Name != "a.Fixable" {
		t.Errorf("pt.Name = %q, want a.Fixable", pt.Name)
	}
}

func TestGetParsedTypeResourceIOError(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()
	dom.PutResourceError("a/Broken", errors.New("disk fell over"))

	_, err := r.GetParsedType(ctx, "a.Broken", handle)
	var ioErr *ResourceIOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("got %v, want *ResourceIOError", err)
	}
}

// Scenario: the owning domain can no longer produce raw bytes for a.Legacy
// but reports it already loaded; the resolver falls back to reflection.
func TestGetParsedTypeFallbackAReflection(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()

	dom.MarkLoadedWithoutBytes("a.Legacy")
	dom.PutReflected("a.Legacy", ReflectedType{
		Name:      "a.Legacy",
		SuperName: "java.lang.Object",
	})

	pt, err := r.GetParsedType(ctx, "a.Legacy", handle)
	if err != nil {
		t.Fatalf("GetParsedType: %v", err)
	}
	if pt.Name != "a.Legacy" {
		t.Errorf("pt.Name = %q, want a.Legacy", pt.Name)
	}
}

// Scenario: the domain has no bytes and doesn't yet report the type
// loaded, but will after a forced non-initializing load (Fallback B).
func TestGetParsedTypeFallbackBForceLoad(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()

	dom.AllowForceLoad("a.Deferred")
	dom.PutReflected("a.Deferred", ReflectedType{Name: "a.Deferred"})

	pt, err := r.GetParsedType(ctx, "a.Deferred", handle)
	if err != nil {
		t.Fatalf("GetParsedType: %v", err)
	}
	if pt.Name != "a.Deferred" {
		t.Errorf("pt.Name = %q, want a.Deferred", pt.Name)
	}
}

func TestGetParsedTypeNotFound(t *testing.T) {
	r, _, _, handle := newTestResolver()
	_, err := r.GetParsedType(context.Background(), "a.Nowhere", handle)
	var notFound *TypeNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want *TypeNotFoundError", err)
	}
}

// Scenario 5: a child domain delegates to a parent that actually defines
// a.Shared. The child's FindLoaded reports the parent as owner even though
// the child itself could also produce bytes for the name; GetParsedType
// must resolve and cache the type under the parent's handle, not the
// child's, so a second request through either handle hits the same entry.
func TestGetParsedTypeRoutesThroughDefiningParentDomain(t *testing.T) {
	parentHandle := &LoaderHandle{Label: "parent"}
	childHandle := &LoaderHandle{Label: "child"}

	parentDom := typecachetest.NewFakeDomain(parentHandle)
	childDom := typecachetest.NewFakeDomain(childHandle)
	domains := typecachetest.NewFakeDomains()
	domains.Register(parentHandle, parentDom)
	domains.Register(childHandle, childDom)

	parentDom.PutClassBytes("a/Shared", buildClassBytes("a/Shared", "java/lang/Object", nil, nil))
	childDom.MarkDefinedByParent("a.Shared", parentHandle)
	// The child domain could also produce bytes; the preload probe must
	// still route resolution to the parent, not consult these.
	childDom.PutClassBytes("a/Shared", buildClassBytes("a/Shared", "a/Other", nil, nil))

	r := NewResolver(NewCache(), domains)
	ctx := context.Background()

	pt, err := r.GetParsedType(ctx, "a.Shared", childHandle)
	if err != nil {
		t.Fatalf("GetParsedType via child: %v", err)
	}
	if pt.SuperName != "" {
		t.Fatalf("resolved via child domain instead of the defining parent: SuperName = %q, want empty", pt.SuperName)
	}

	viaParent, ok := r.cache.lookup(parentHandle, "a.Shared")
	if !ok || viaParent != pt {
		t.Fatalf("expected a.Shared cached under the parent handle, got %v, %v", viaParent, ok)
	}
	if _, ok := r.cache.lookup(childHandle, "a.Shared"); ok {
		t.Fatal("a.Shared should not also be cached under the child handle")
	}
}

func TestMatchingQueries(t *testing.T) {
	r, _, dom, handle := newTestResolver()
	ctx := context.Background()

	dom.PutClassBytes("a/Widget", buildClassBytes("a/Widget", "java/lang/Object", nil, []testMethod{
		{name: "widgetize", descriptor: "()V"},
		{name: "widgetsRemaining", descriptor: "()I"},
	}))
	dom.PutClassBytes("a/WidgetFactory", buildClassBytes("a/WidgetFactory", "java/lang/Object", nil, []testMethod{
		{name: "widgetize", descriptor: "()Z"},
	}))

	if _, err := r.GetParsedType(ctx, "a.Widget", handle); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetParsedType(ctx, "a.WidgetFactory", handle); err != nil {
		t.Fatal(err)
	}

	// MatchingTypeNames is a substring match over every cached type name,
	// not scoped to a single type.
	names := r.cache.MatchingTypeNames("Widget", 0)
	if len(names) != 2 {
		t.Fatalf("MatchingTypeNames = %v, want 2 entries", names)
	}

	// A limit of 1 truncates but keeps alphabetical order.
	limited := r.cache.MatchingTypeNames("Widget", 1)
	if len(limited) != 1 || limited[0] != names[0] {
		t.Fatalf("MatchingTypeNames with limit 1 = %v, want [%s]", limited, names[0])
	}

	// MatchingMethodNames is scoped to one type name: a.Widget declares two
	// methods containing "widget", a.WidgetFactory's widgetize is a
	// different type and must not appear.
	methodNames := r.cache.MatchingMethodNames("a.Widget", "widget", 0)
	want := []string{"widgetize", "widgetsRemaining"}
	if len(methodNames) != len(want) {
		t.Fatalf("MatchingMethodNames = %v, want %v", methodNames, want)
	}
	for i := range want {
		if methodNames[i] != want[i] {
			t.Errorf("MatchingMethodNames[%d] = %q, want %q", i, methodNames[i], want[i])
		}
	}

	// MatchingParsedMethods filters by exact, case-sensitive method name
	// within the named type only.
	methods := r.cache.MatchingParsedMethods("a.Widget", "widgetize")
	if len(methods) != 1 || methods[0].Name != "widgetize" {
		t.Fatalf("MatchingParsedMethods = %v, want exactly one widgetize", methods)
	}
	if got := r.cache.MatchingParsedMethods("a.Widget", "Widgetize"); len(got) != 0 {
		t.Fatalf("MatchingParsedMethods with wrong case = %v, want none (case-sensitive)", got)
	}
}
