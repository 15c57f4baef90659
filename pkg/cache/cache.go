package cache

import (
	"crypto/md5"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/ristretto"

	"github.com/oarkflow/spp/interpreter"
)

// ProgramCache keeps parsed programs keyed by a hash of their source, so
// repeated evaluations of the same text skip lexing and parsing. Programs
// are never mutated by evaluation and can be shared.
type ProgramCache struct {
	cache  *ristretto.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func New(maxPrograms int64) (*ProgramCache, error) {
	if maxPrograms <= 0 {
		maxPrograms = 1024
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxPrograms * 10,
		MaxCost:     maxPrograms,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create program cache: %w", err)
	}
	return &ProgramCache{cache: c}, nil
}

func Key(source string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(source)))
}

func (pc *ProgramCache) Get(source string) (*interpreter.Program, bool) {
	if v, found := pc.cache.Get(Key(source)); found {
		if program, ok := v.(*interpreter.Program); ok {
			pc.hits.Add(1)
			return program, true
		}
	}
	pc.misses.Add(1)
	return nil, false
}

// GetOrParse returns the cached program for source, parsing and storing it
// on a miss. Parse errors are not cached.
func (pc *ProgramCache) GetOrParse(source string) (*interpreter.Program, error) {
	if program, ok := pc.Get(source); ok {
		return program, nil
	}
	program, err := interpreter.Parse(source)
	if err != nil {
		return nil, err
	}
	pc.cache.Set(Key(source), program, 1)
	return program, nil
}

// Wait blocks until buffered writes are visible to Get.
func (pc *ProgramCache) Wait() {
	pc.cache.Wait()
}

func (pc *ProgramCache) Stats() Stats {
	return Stats{Hits: pc.hits.Load(), Misses: pc.misses.Load()}
}

func (pc *ProgramCache) Close() {
	pc.cache.Close()
}
