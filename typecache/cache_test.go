package typecache

import (
	"runtime"
	"testing"
	"time"
)

func TestCacheBootstrapDomainIsSharedAcrossNilHandles(t *testing.T) {
	c := NewCache()
	pt := &ParsedType{Name: "a.Bootstrapped"}
	c.Add(pt, nil)

	got, ok := c.lookup(nil, "a.Bootstrapped")
	if !ok || got != pt {
		t.Fatalf("lookup(nil, ...) = %v, %v; want %v, true", got, ok, pt)
	}
}

func TestCacheAddInstallOnceNeverReplace(t *testing.T) {
	c := NewCache()
	handle := &LoaderHandle{Label: "app"}

	first := &ParsedType{Name: "a.B", SuperName: "java.lang.Object"}
	second := &ParsedType{Name: "a.B", SuperName: "a.Other"}

	winner1, installed1 := c.Add(first, handle)
	winner2, installed2 := c.Add(second, handle)

	if !installed1 || installed2 {
		t.Fatalf("installed1=%v installed2=%v, want true, false", installed1, installed2)
	}
	if winner1 != first || winner2 != first {
		t.Fatal("second Add should return the first-installed value, not replace it")
	}
}

// Once a loader handle becomes unreachable, its domain entry is eligible
// for cleanup; Stats().Domains should eventually reflect that. This test
// is inherently racing the garbage collector and runtime.AddCleanup's
// background goroutine, so it polls with a generous timeout rather than
// asserting collection happened on the very first GC cycle.
func TestCacheDomainCollectedWhenHandleUnreachable(t *testing.T) {
	c := NewCache()

	func() {
		handle := &LoaderHandle{Label: "ephemeral"}
		c.Add(&ParsedType{Name: "a.Temp"}, handle)
		if c.Stats().Domains != 1 {
			t.Fatalf("Stats().Domains = %d, want 1 while handle is reachable", c.Stats().Domains)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		if c.Stats().Domains == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Skip("domain entry was not observed collected within the poll window; GC timing is inherently non-deterministic")
}

func TestNameIndexSubstringMatchIsAlphabeticalByUpperKey(t *testing.T) {
	idx := newNameIndex()
	for _, n := range []string{"b.Zebra", "b.apple", "b.Banana"} {
		idx.add(n)
	}
	got := idx.matchingSubstring("b.", 0)
	want := []string{"b.apple", "b.Banana", "b.Zebra"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// The required match mode is substring, not prefix: "anana" must find
// "b.Banana" even though it is not a leading substring.
func TestNameIndexSubstringMatchIsNotPrefixOnly(t *testing.T) {
	idx := newNameIndex()
	for _, n := range []string{"b.Banana", "b.apple"} {
		idx.add(n)
	}
	got := idx.matchingSubstring("anana", 0)
	if len(got) != 1 || got[0] != "b.Banana" {
		t.Fatalf("matchingSubstring(%q) = %v, want [b.Banana]", "anana", got)
	}
}

func TestNameIndexSubstringMatchRespectsLimit(t *testing.T) {
	idx := newNameIndex()
	for _, n := range []string{"b.Apple", "b.Apricot", "b.Avocado"} {
		idx.add(n)
	}
	got := idx.matchingSubstring("b.a", 2)
	want := []string{"b.Apple", "b.Apricot"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
