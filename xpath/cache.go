package xpath

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// exprCache memoizes parsed ASTs by query text, the same
// groupcache/lru-backed cache teacher's xpath.go keeps for compiled
// expressions, sized the same (1000 entries).
var (
	exprCache   *lru.Cache
	exprCacheMu sync.RWMutex
)

func init() {
	exprCache = lru.New(1000)
}

// ParseCached parses query, reusing a prior parse of the identical text
// when one is cached. Safe for concurrent use from multiple goroutines
// evaluating different queries (§5: concurrent evaluation of *one* query
// instance is out of scope, not concurrent use of the package).
func ParseCached(query string) (ASTNode, error) {
	// Get moves the entry to the front of the recency list, so it needs the
	// write lock, not the read lock.
	exprCacheMu.Lock()
	cached, ok := exprCache.Get(query)
	exprCacheMu.Unlock()
	if ok {
		return cached.(ASTNode), nil
	}

	ast, err := Parse(query)
	if err != nil {
		return nil, err
	}

	exprCacheMu.Lock()
	exprCache.Add(query, ast)
	exprCacheMu.Unlock()

	return ast, nil
}
