// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffzip

import (
	"encoding/binary"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jba/huffzip/internal/log"
)

// A TableCache remembers the Codes built for recently seen frequency tables,
// so that decompressing many containers with the same table builds its tree once.
// A TableCache is safe for concurrent use. A nil *TableCache caches nothing.
type TableCache struct {
	codes        *lru.Cache[string, *Code]
	hits, misses atomic.Int64
}

// NewTableCache returns a TableCache holding at most size Codes.
func NewTableCache(size int) (*TableCache, error) {
	c, err := lru.New[string, *Code](size)
	if err != nil {
		return nil, err
	}
	return &TableCache{codes: c}, nil
}

// code returns the Code for t, building and remembering it if necessary.
// Tables differing only in order are different keys.
func (tc *TableCache) code(t Table) (*Code, error) {
	if tc == nil {
		return NewCode(t)
	}
	key := tableKey(t)
	if c, ok := tc.codes.Get(key); ok {
		tc.hits.Add(1)
		log.Debugf("huffzip: code cache hit for %d-symbol table", len(t))
		return c, nil
	}
	tc.misses.Add(1)
	c, err := NewCode(t)
	if err != nil {
		return nil, err
	}
	tc.codes.Add(key, c)
	return c, nil
}

// Len returns the number of Codes in the cache.
func (tc *TableCache) Len() int {
	if tc == nil {
		return 0
	}
	return tc.codes.Len()
}

// Stats returns the number of lookups that found and did not find a Code.
func (tc *TableCache) Stats() (hits, misses int64) {
	if tc == nil {
		return 0, 0
	}
	return tc.hits.Load(), tc.misses.Load()
}

func tableKey(t Table) string {
	buf := make([]byte, 0, len(t)*9)
	for _, s := range t {
		buf = append(buf, s.Byte)
		buf = binary.LittleEndian.AppendUint64(buf, s.Count)
	}
	return string(buf)
}
