package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// diskCache is a content-addressed cache of raw response payloads, keyed by
// a hash of the endpoint and its query parameters (spec §4.6 "every response
// is cached on durable storage keyed by endpoint and query parameters").
// Writes are write-once-per-key via temp-file + atomic rename, so two
// concurrent writers for the same key racing is harmless: both produce the
// same content and the loser's rename simply overwrites an identical file
// (spec §5 "Shared resources").
type diskCache struct {
	dir string
}

func newDiskCache(dir string) *diskCache {
	return &diskCache{dir: dir}
}

// cacheKey derives a deterministic filename from an endpoint and its
// parameters, independent of parameter ordering.
func cacheKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func (c *diskCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached payload for key, or (nil, false) on a miss.
func (c *diskCache) Get(endpoint string, params map[string]string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(cacheKey(endpoint, params)))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put writes payload for (endpoint, params) via a temp file + atomic rename
// so a reader never observes a partially-written cache entry.
func (c *diskCache) Put(endpoint string, params map[string]string, payload []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return eris.Wrap(err, "source: create cache dir")
	}

	key := cacheKey(endpoint, params)
	dest := c.path(key)

	tmp, err := os.CreateTemp(c.dir, key+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "source: create temp cache file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return eris.Wrap(err, "source: write temp cache file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return eris.Wrap(err, "source: close temp cache file")
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return eris.Wrap(err, fmt.Sprintf("source: rename cache file for %s", endpoint))
	}

	return nil
}
