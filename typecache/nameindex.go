package typecache

import (
	"sort"
	"strings"

	deadlock "github.com/sasha-s/go-deadlock"
)

// nameIndex is the ordered, case-folded index of every type name the cache
// has ever seen, used to answer case-insensitive substring queries in
// alphabetical order. It is never pruned when a loader domain is collected:
// a name that every owning domain has since been reclaimed can still appear
// in a query result, stale but harmless, until the process restarts. This
// matches the cache's authoritative source of truth on staleness:
// per-domain maps, not this index, decide what GetParsedType actually
// returns.
type nameIndex struct {
	mu      deadlock.RWMutex
	upper   []string          // sorted, case-folded
	byUpper map[string]string // upper -> canonical, first-seen spelling wins
}

func newNameIndex() *nameIndex {
	return &nameIndex{byUpper: make(map[string]string)}
}

func (idx *nameIndex) add(name string) {
	up := upperName(name)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.byUpper[up]; exists {
		return
	}
	idx.byUpper[up] = name

	i := sort.SearchStrings(idx.upper, up)
	idx.upper = append(idx.upper, "")
	copy(idx.upper[i+1:], idx.upper[i:])
	idx.upper[i] = up
}

// matchingSubstring returns up to limit canonical names whose case-folded
// form contains the given case-folded substring, in alphabetical order by
// upper-cased key. limit <= 0 means unlimited.
func (idx *nameIndex) matchingSubstring(partial string, limit int) []string {
	up := upperName(partial)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []string
	for _, u := range idx.upper {
		if !strings.Contains(u, up) {
			continue
		}
		out = append(out, idx.byUpper[u])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (idx *nameIndex) count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.upper)
}
