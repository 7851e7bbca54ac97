package mapping

import (
	"strings"
	"sync"
)

// Cache memoizes compiled Plans keyed by structural (result, relationships,
// columns) equality, per the "Generated routine" caching contract: the
// cache is thread-safe, write-once per key, and identity-stable so that
// repeated executions of the same query reuse the same compiled routine.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Plan
}

// NewCache returns an empty plan cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]*Plan{}}
}

// GetOrCompile returns the cached Plan for this (result, relationships,
// columns) triple, compiling and inserting one on first access.
func (c *Cache) GetOrCompile(result Result, relationships []Relationship, columns []string) (*Plan, error) {
	key := planKey(result, relationships, columns)

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[key]; ok {
		return p, nil
	}
	p, err := Compile(result, relationships, columns)
	if err != nil {
		return nil, err
	}
	c.entries[key] = p
	return p, nil
}

// Len reports how many distinct plans are currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func planKey(result Result, relationships []Relationship, columns []string) string {
	var b strings.Builder
	for _, s := range result.Specs() {
		b.WriteString("R:")
		b.WriteString(s.key())
		b.WriteByte('\n')
	}
	for _, rel := range relationships {
		b.WriteString("X:")
		b.WriteString(rel.key())
		b.WriteByte('\n')
	}
	for _, col := range columns {
		b.WriteString("C:")
		b.WriteString(strings.ToLower(col))
		b.WriteByte('\n')
	}
	return b.String()
}
