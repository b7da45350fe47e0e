// Package placement implements the shard placement engine: shard-count
// computation and per-shard rack-aware replica selection over the live
// membership snapshot.
//
// The random-selection shape mirrors the hostdb/gateway
// random-peer-selection idiom (modules/gateway/nodes.go's
// fastrand.Perm-based shuffle, modules/gateway/peersmanager.go); the
// injectable Rand interface exists purely so tests can get deterministic
// placements.
package placement

import (
	"sort"

	"github.com/NebulousLabs/fastrand"
	"github.com/Lykaioss/s4stry/membership"
	"github.com/Lykaioss/s4stry/modules"
)

// Rand is the random source the engine draws on when choosing replicas.
// FastrandSource satisfies it using github.com/NebulousLabs/fastrand, the
// same library used elsewhere in this codebase for peer/replica
// selection; tests supply a deterministic stub.
type Rand interface {
	// Intn returns a uniform random value in [0, n). It is only called
	// with n > 0.
	Intn(n int) int
}

// FastrandSource is the production Rand, backed by fastrand.Intn.
type FastrandSource struct{}

// Intn implements Rand.
func (FastrandSource) Intn(n int) int { return fastrand.Intn(n) }

// ShardCount computes N = clamp(ceil(fileSize/targetShardSize), minShards,
// maxShards). Callers must reject fileSize == 0 before calling ShardCount
// (an empty file has no valid shard count).
func ShardCount(fileSize int64, targetShardSize int64, minShards, maxShards int) int {
	n := int((fileSize + targetShardSize - 1) / targetShardSize)
	if n < minShards {
		n = minShards
	}
	if n > maxShards {
		n = maxShards
	}
	return n
}

// Engine chooses replica placements for shards given a live membership
// snapshot.
type Engine struct {
	replicationFactor int
	rand              Rand
}

// New creates a placement Engine. replicationFactor is R; rand is the
// injectable random source (use FastrandSource{} in production).
func New(replicationFactor int, rand Rand) *Engine {
	return &Engine{replicationFactor: replicationFactor, rand: rand}
}

// ErrNoLiveRenters is modules.ErrNoRenters under a package-local name; it
// is returned as-is when the snapshot has no live renters.
var ErrNoLiveRenters = modules.ErrNoRenters

// SelectReplicas chooses, for one shard, an ordered list of distinct live
// renter IDs to hold its replicas, preferring rack diversity.
// The selection's length is R_effective = min(R, |L|); calling it for
// every shard of one upload with the same snapshot yields the same
// R_effective for each shard.
func (e *Engine) SelectReplicas(snap membership.Snapshot) ([]string, error) {
	live := len(snap.Renters)
	if live == 0 {
		return nil, ErrNoLiveRenters
	}

	rEffective := e.replicationFactor
	if live < rEffective {
		rEffective = live
	}

	selected := make([]string, 0, rEffective)
	selectedSet := make(map[string]bool, rEffective)

	// Step 3: walk racks in deterministic order, picking one renter from
	// each not-yet-represented rack.
	for _, rack := range snap.RackOrder {
		if len(selected) >= rEffective {
			break
		}
		candidates := remaining(snap.Racks[rack], selectedSet)
		if len(candidates) == 0 {
			continue
		}
		pick := candidates[e.rand.Intn(len(candidates))]
		selected = append(selected, pick)
		selectedSet[pick] = true
	}

	// Step 4: fill from the remaining live renters uniformly at random.
	// The candidate pool is sorted by ID before drawing from it so that,
	// given a fixed Rand sequence, selection is reproducible independent of
	// Go's randomized map iteration order; test determinism relies on the
	// Rand source, not on map order.
	if len(selected) < rEffective {
		var pool []string
		for id := range snap.Renters {
			if !selectedSet[id] {
				pool = append(pool, id)
			}
		}
		sort.Strings(pool)
		for len(selected) < rEffective && len(pool) > 0 {
			idx := e.rand.Intn(len(pool))
			pick := pool[idx]
			selected = append(selected, pick)
			selectedSet[pick] = true
			pool[idx] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		}
	}

	return selected, nil
}

// remaining returns the elements of rackMembers not present in excluded,
// keeping rackMembers' order (the snapshot supplies each rack's IDs
// sorted), so a given Rand sequence always yields the same pick.
func remaining(rackMembers []string, excluded map[string]bool) []string {
	var out []string
	for _, id := range rackMembers {
		if !excluded[id] {
			out = append(out, id)
		}
	}
	return out
}
