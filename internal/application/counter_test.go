package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sp3dr4/dovelink/internal/domain"
)

func TestDomainCounter_TopK(t *testing.T) {
	c := NewDomainCounter()
	for _, d := range []string{"a.com", "a.com", "c.com", "a.com", "b.com"} {
		c.Increment(d)
	}

	assert.Equal(t, []domain.DomainCount{
		{Domain: "a.com", Count: 3},
		{Domain: "b.com", Count: 1},
		{Domain: "c.com", Count: 1},
	}, c.TopK(3))

	assert.Equal(t, []domain.DomainCount{{Domain: "a.com", Count: 3}}, c.TopK(1))
	assert.Len(t, c.TopK(10), 3)
	assert.Empty(t, c.TopK(0))
	assert.Empty(t, c.TopK(-1))

	// No increments in between: same answer.
	assert.Equal(t, c.TopK(3), c.TopK(3))
}

func TestDomainCounter_Count(t *testing.T) {
	c := NewDomainCounter()
	assert.Equal(t, int64(0), c.Count("missing.com"))
	assert.Equal(t, int64(1), c.Increment("x.com"))
	assert.Equal(t, int64(2), c.Increment("x.com"))
	assert.Equal(t, int64(2), c.Count("x.com"))
}

func TestDomainCounter_ConcurrentIncrements(t *testing.T) {
	c := NewDomainCounter()

	const (
		workers    = 32
		perWorker  = 500
		domainsLen = 4
	)
	domains := []string{"a.com", "b.com", "c.com", "d.com"}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.Increment(domains[i%domainsLen])
			}
		}()
	}
	wg.Wait()

	for _, d := range domains {
		assert.Equal(t, int64(workers*perWorker/domainsLen), c.Count(d), d)
	}
}
