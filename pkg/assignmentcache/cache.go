/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package assignmentcache implements the Assignment Cache (C7):
// short-TTL, best-effort memoization of schedule_order results keyed
// by a canonical hash of the order and the scoring-relevant slice of
// the fleet's current state.
package assignmentcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

// Result is the cached shape of a successful schedule_order call.
type Result struct {
	OrderID     string
	Assignments []string
	Scores      []float64
	SubOrders   [][]printtypes.PrintType
	Priority    int
	Timestamp   time.Time
}

// Cache wraps a TTL map. Entries are advisory: the Scheduler Core
// always re-runs validate-and-consume before trusting a hit, so a
// stale hit that would violate resources is rejected downstream and
// treated as a miss (§4.7).
type Cache struct {
	inner *gocache.Cache
	ttl   time.Duration
}

// New builds a cache with the given TTL. Expired entries are swept on
// a cleanup interval of 2x the TTL, matching go-cache's recommended
// usage for bursty workloads.
func New(ttl time.Duration) *Cache {
	return &Cache{
		inner: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Key canonicalizes (order, fleet digest) into a stable cache key:
// sorted keys and fixed float formatting, so non-behavioral
// differences in map iteration order never cause spurious misses.
// queueSizes carries each printer's current queue length, since a
// drained or newly-full queue changes which candidate the Scheduler
// Core would pick even when paper and ink are unchanged.
func Key(order printtypes.Order, fleet map[string]*printtypes.PrinterDef, queueSizes map[string]int) string {
	h := sha256.New()

	types := make([]string, 0, len(order))
	for t := range order {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		req := order[printtypes.PrintType(t)]
		fmt.Fprintf(h, "order:%s{", t)
		kinds := make([]string, 0, len(req.PaperCount))
		for k := range req.PaperCount {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(h, "%s=%d;", k, req.PaperCount[printtypes.PaperKind(k)])
		}
		h.Write([]byte("}"))
	}

	ids := make([]string, 0, len(fleet))
	for id := range fleet {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := fleet[id]
		fmt.Fprintf(h, "printer:%s{", id)

		kinds := make([]string, 0, len(p.PaperCount))
		for k := range p.PaperCount {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(h, "paper:%s=%d;", k, p.PaperCount[printtypes.PaperKind(k)])
		}

		channels := make([]string, 0, len(p.Ink))
		for c := range p.Ink {
			channels = append(channels, string(c))
		}
		sort.Strings(channels)
		for _, c := range channels {
			fmt.Fprintf(h, "ink:%s=%.4f;", c, p.Ink[printtypes.InkChannel(c)])
		}
		fmt.Fprintf(h, "queue:%d;", queueSizes[id])
		h.Write([]byte("}"))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached result, if present and unexpired.
func (c *Cache) Get(key string) (Result, bool) {
	v, ok := c.inner.Get(key)
	if !ok {
		return Result{}, false
	}
	return v.(Result), true
}

// Set stores a result under key with the cache's configured TTL.
func (c *Cache) Set(key string, result Result) {
	c.inner.Set(key, result, c.ttl)
}

// Clear drops every cached entry. Called on any ApplyManualUpdate
// (§4.7/§9): conservative, but correct.
func (c *Cache) Clear() {
	c.inner.Flush()
}
