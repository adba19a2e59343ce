package grammar

import (
	"sync"

	"github.com/cnf/structhash"
)

type analysisKey struct {
	Fingerprint string
	Start       string
}

// AnalysisCache shares analyses between callers. Grammars with the same fingerprint and start
// symbol share one Analysis. It is safe for concurrent use.
type AnalysisCache struct {
	mu       sync.Mutex
	analyses map[string]*Analysis
	hits     int
	misses   int
}

func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{
		analyses: map[string]*Analysis{},
	}
}

// Analyze returns the cached analysis or runs Analyze and caches its result. Failed analyses are
// not cached.
func (c *AnalysisCache) Analyze(gram *Grammar, start string) (*Analysis, error) {
	fp, err := gram.Fingerprint()
	if err != nil {
		return nil, err
	}
	key, err := structhash.Hash(analysisKey{
		Fingerprint: fp,
		Start:       start,
	}, 1)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.analyses[key]; ok {
		c.hits++
		tracer().Debugf("analysis cache hit; start: %v", start)
		return a, nil
	}
	c.misses++
	a, err := Analyze(gram, start)
	if err != nil {
		return nil, err
	}
	c.analyses[key] = a
	return a, nil
}

func (c *AnalysisCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.analyses)
}

// Stats returns the numbers of hits and misses.
func (c *AnalysisCache) Stats() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
