// Package cache persists built catalog snapshots so that repeated runs
// skip decoding and normalizing the regulatory source.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque snapshot bytes by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SnapshotKey derives a cache key from the builder version and the raw
// source bytes. Any change to either yields a new key.
func SnapshotKey(builderVersion string, source []byte) string {
	h := sha256.New()
	h.Write([]byte(builderVersion))
	h.Write([]byte{0})
	h.Write(source)
	return "medfactors-catalog-v" + builderVersion + "-" + hex.EncodeToString(h.Sum(nil))
}

// Nop is a cache that never stores anything
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
