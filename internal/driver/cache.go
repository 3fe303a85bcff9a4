package driver

import (
	"crypto/sha256"
	"sync"

	"escheck/internal/ecma"
	"escheck/internal/htmlscript"
	"escheck/internal/syntax"
)

// Digest is a SHA-256 value (compatible with source.File.Hash).
type Digest [32]byte

// Finding is one parse failure of a file, before it becomes a diagnostic.
// Fragment is set for inline scripts; its Text is not retained.
type Finding struct {
	Failure  syntax.Failure
	Fragment *htmlscript.Fragment
}

// fileResult is what checking one file yields independently of run
// configuration other than the version: exclusion is applied afterwards.
type fileResult struct {
	Findings  []Finding
	Fragments int
}

// resultKey is H(content || version || schema).
func resultKey(content [32]byte, v ecma.Version) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	_, _ = h.Write([]byte{byte(v), byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// ResultCache keeps per-file results in memory, keyed by path. An entry is
// only returned while the content hash and version still match.
type ResultCache struct {
	mu     sync.RWMutex
	byPath map[string]cachedResult
}

type cachedResult struct {
	key    Digest
	result fileResult
}

// NewResultCache creates a ResultCache with the given capacity hint.
func NewResultCache(capHint int) *ResultCache {
	return &ResultCache{byPath: make(map[string]cachedResult, capHint)}
}

func (c *ResultCache) get(path string, key Digest) (fileResult, bool) {
	if c == nil {
		return fileResult{}, false
	}
	c.mu.RLock()
	rec, ok := c.byPath[path]
	c.mu.RUnlock()
	if !ok || rec.key != key {
		return fileResult{}, false
	}
	return rec.result, true
}

func (c *ResultCache) put(path string, key Digest, res fileResult) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.byPath[path] = cachedResult{key: key, result: res}
	c.mu.Unlock()
}

// Len returns the number of cached files.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byPath)
}

// stripFragmentText drops fragment bodies so cached findings stay small.
func stripFragmentText(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	for i, f := range findings {
		out[i] = f
		if f.Fragment != nil {
			frag := *f.Fragment
			frag.Text = ""
			out[i].Fragment = &frag
		}
	}
	return out
}
