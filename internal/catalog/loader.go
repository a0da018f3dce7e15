package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/medfactors/internal/cache"
)

// Loader reads a catalog source, builds it and memoizes the result as a
// snapshot in a cache keyed by the source digest.
type Loader struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewLoader creates a loader. A nil cache disables memoization.
func NewLoader(c cache.Cache, ttl time.Duration) *Loader {
	if c == nil {
		c = cache.Nop{}
	}
	return &Loader{cache: c, ttl: ttl}
}

// LoadResult is a built catalog plus where it came from
type LoadResult struct {
	Catalog   *Catalog
	Stats     BuildStats
	Source    string
	Format    Format
	FromCache bool
	CacheErr  error
}

type snapshot struct {
	Version string     `json:"version"`
	Format  Format     `json:"format"`
	Stats   BuildStats `json:"stats"`
	Rules   []Rule     `json:"rules"`
}

// Load reads the file at path (empty selects the embedded dataset).
func (l *Loader) Load(path string, format Format) (*LoadResult, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	source := path
	if source == "" {
		source = "builtin"
	}
	if format == FormatAuto || format == "" {
		format = DetectFormat(path, data)
	}
	return l.LoadBytes(source, data, format)
}

// LoadBytes builds a catalog from raw source bytes. A failure to store the
// snapshot is reported in CacheErr and never fails the load.
func (l *Loader) LoadBytes(source string, data []byte, format Format) (*LoadResult, error) {
	key := cache.SnapshotKey(BuilderVersion+"/"+string(format), data)

	if raw, ok := l.cache.Get(key); ok {
		var snap snapshot
		if err := json.Unmarshal(raw, &snap); err == nil && snap.Version == BuilderVersion {
			return &LoadResult{
				Catalog:   Restore(snap.Rules),
				Stats:     snap.Stats,
				Source:    source,
				Format:    format,
				FromCache: true,
			}, nil
		}
		_ = l.cache.Delete(key)
	}

	rows, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	cat, stats := BuildWithStats(rows)
	result := &LoadResult{
		Catalog: cat,
		Stats:   stats,
		Source:  source,
		Format:  format,
	}

	raw, err := json.Marshal(snapshot{
		Version: BuilderVersion,
		Format:  format,
		Stats:   stats,
		Rules:   cat.rules,
	})
	if err != nil {
		result.CacheErr = fmt.Errorf("encode snapshot: %w", err)
		return result, nil
	}
	if err := l.cache.Set(key, raw, l.ttl); err != nil {
		result.CacheErr = fmt.Errorf("store snapshot: %w", err)
	}

	return result, nil
}
