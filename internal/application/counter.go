package application

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sp3dr4/dovelink/internal/domain"
)

// DomainCounter counts shorten calls per registrable domain. Entries are
// created on first sighting and only ever grow.
type DomainCounter struct {
	counts sync.Map // string -> *atomic.Int64
}

func NewDomainCounter() *DomainCounter {
	return &DomainCounter{}
}

// Increment adds one to name and returns the new count.
func (c *DomainCounter) Increment(name string) int64 {
	if v, ok := c.counts.Load(name); ok {
		return v.(*atomic.Int64).Add(1)
	}
	v, _ := c.counts.LoadOrStore(name, new(atomic.Int64))
	return v.(*atomic.Int64).Add(1)
}

func (c *DomainCounter) Count(name string) int64 {
	if v, ok := c.counts.Load(name); ok {
		return v.(*atomic.Int64).Load()
	}
	return 0
}

// TopK returns at most k domains ordered by count descending, ties by name
// ascending.
func (c *DomainCounter) TopK(k int) []domain.DomainCount {
	if k <= 0 {
		return []domain.DomainCount{}
	}

	all := make([]domain.DomainCount, 0)
	c.counts.Range(func(key, value any) bool {
		all = append(all, domain.DomainCount{
			Domain: key.(string),
			Count:  value.(*atomic.Int64).Load(),
		})
		return true
	})

	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Domain < all[j].Domain
	})

	if len(all) > k {
		all = all[:k]
	}
	return all
}
