package rates

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/georgemunganga/shipzone-backend/internal/modules/warehouse"
)

// DefaultCacheTTL is how long a zone snapshot is served before a reload
// is triggered.
const DefaultCacheTTL = 5 * time.Minute

// reloadTimeout bounds a single snapshot load against the store.
const reloadTimeout = 30 * time.Second

// ZoneSource feeds the cache with the current set of active zones.
type ZoneSource interface {
	ListActiveZones(ctx context.Context) ([]*warehouse.ZoneDetail, error)
}

type zoneTarget struct {
	warehouseID   uuid.UUID
	warehouseName string
}

type prefixZone struct {
	pattern string
	zoneTarget
}

// snapshot is an immutable view of all active zones. It is either the
// complete set from one successful load, or deliberately empty when no
// load has ever succeeded. Readers swap whole snapshots atomically and
// never observe a partial set.
type snapshot struct {
	exact    map[string]zoneTarget
	prefixes []prefixZone // sorted longest pattern first
	loadedAt time.Time
	loaded   bool // false only for the never-successfully-loaded state
}

// CacheStats is the health view of the cache.
type CacheStats struct {
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
	Zones    int       `json:"zones"`
}

// ZoneCache holds the atomically-replaceable zone snapshot used for
// constant-cost matching on the request path. Reads never block: a stale
// snapshot keeps serving while a single-flighted reload runs in the
// background.
type ZoneCache struct {
	source ZoneSource
	ttl    time.Duration
	log    *slog.Logger

	snap  atomic.Pointer[snapshot]
	force atomic.Bool
	group singleflight.Group
}

// NewZoneCache builds a cache over the given source. A ttl of zero uses
// DefaultCacheTTL.
func NewZoneCache(source ZoneSource, ttl time.Duration, log *slog.Logger) *ZoneCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ZoneCache{source: source, ttl: ttl, log: log}
}

// WarmUp performs one blocking load, for process startup. A failure here
// is not fatal; the cache starts in the explicit empty state and retries
// on the request path.
func (c *ZoneCache) WarmUp(ctx context.Context) error {
	_, err, _ := c.group.Do("reload", func() (any, error) {
		return nil, c.reload(ctx)
	})
	return err
}

// EnsureFresh triggers a background reload when the snapshot is missing,
// expired, or force-invalidated. It never blocks the caller: concurrent
// staleness signals collapse into the one in-flight reload, and readers
// keep using the previous snapshot meanwhile.
func (c *ZoneCache) EnsureFresh() {
	if !c.stale() {
		return
	}
	// DoChan returns immediately; duplicate triggers during the flight
	// share the same underlying load.
	c.group.DoChan("reload", func() (any, error) {
		return nil, c.reload(context.Background())
	})
}

// Invalidate forces a reload on the next EnsureFresh call regardless of
// TTL. Called by warehouse/zone administration after any mutation.
func (c *ZoneCache) Invalidate() {
	c.force.Store(true)
}

// Match looks the normalized postcode up in the current snapshot. Exact
// zones always win over prefix zones; among overlapping prefix zones the
// longest pattern wins.
func (c *ZoneCache) Match(postcode string) Decision {
	snap := c.snap.Load()
	if snap == nil {
		return Decision{}
	}
	if t, ok := snap.exact[postcode]; ok {
		return Decision{
			Matched:       true,
			WarehouseID:   t.warehouseID,
			WarehouseName: t.warehouseName,
			MatchType:     MatchExact,
		}
	}
	for _, p := range snap.prefixes {
		if strings.HasPrefix(postcode, p.pattern) {
			return Decision{
				Matched:       true,
				WarehouseID:   p.warehouseID,
				WarehouseName: p.warehouseName,
				MatchType:     MatchPrefix,
			}
		}
	}
	return Decision{}
}

// Stats reports the cache state for health output. Loaded=false with zero
// zones means no load has ever succeeded, as opposed to a successful load
// of an empty zone table.
func (c *ZoneCache) Stats() CacheStats {
	snap := c.snap.Load()
	if snap == nil {
		return CacheStats{}
	}
	return CacheStats{
		Loaded:   snap.loaded,
		LoadedAt: snap.loadedAt,
		Zones:    len(snap.exact) + len(snap.prefixes),
	}
}

func (c *ZoneCache) stale() bool {
	if c.force.Load() {
		return true
	}
	snap := c.snap.Load()
	return snap == nil || time.Since(snap.loadedAt) >= c.ttl
}

// reload queries the store and swaps in a fresh snapshot. On failure the
// previous snapshot is retained untouched; if none has ever existed, an
// explicit empty snapshot is published so lookups keep answering "no
// match" without blocking.
func (c *ZoneCache) reload(parent context.Context) error {
	// Consume a pending force flag, but put it back if this load fails:
	// an admin mutation must not be forgotten just because the store was
	// briefly unreachable. An Invalidate arriving mid-flight re-sets the
	// flag and survives either way.
	forced := c.force.CompareAndSwap(true, false)
	ctx, cancel := context.WithTimeout(parent, reloadTimeout)
	defer cancel()

	details, err := c.source.ListActiveZones(ctx)
	if err != nil {
		if forced {
			c.force.Store(true)
		}
		if prev := c.snap.Load(); prev != nil && prev.loaded {
			c.log.Warn("zone snapshot reload failed, serving previous snapshot",
				"error", err, "snapshot_age", time.Since(prev.loadedAt).String())
			return err
		}
		c.snap.Store(&snapshot{loadedAt: time.Now()})
		c.log.Error("zone snapshot reload failed with no prior snapshot, all lookups will miss",
			"error", err)
		return err
	}

	c.snap.Store(buildSnapshot(details))
	c.log.Info("zone snapshot refreshed", "zones", len(details))
	return nil
}

func buildSnapshot(details []*warehouse.ZoneDetail) *snapshot {
	snap := &snapshot{
		exact:    make(map[string]zoneTarget),
		loadedAt: time.Now(),
		loaded:   true,
	}
	for _, d := range details {
		t := zoneTarget{warehouseID: d.WarehouseID, warehouseName: d.WarehouseName}
		if d.IsPrefix {
			snap.prefixes = append(snap.prefixes, prefixZone{pattern: d.Pattern, zoneTarget: t})
			continue
		}
		if _, exists := snap.exact[d.Pattern]; !exists {
			snap.exact[d.Pattern] = t
		}
	}
	// Longest-prefix-wins among overlapping prefix zones; pattern order
	// breaks exact-length ties deterministically.
	sort.SliceStable(snap.prefixes, func(i, j int) bool {
		if len(snap.prefixes[i].pattern) != len(snap.prefixes[j].pattern) {
			return len(snap.prefixes[i].pattern) > len(snap.prefixes[j].pattern)
		}
		return snap.prefixes[i].pattern < snap.prefixes[j].pattern
	})
	return snap
}
