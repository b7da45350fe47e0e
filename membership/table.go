// Package membership implements the renter membership / liveness table:
// registration, heartbeat, lazy sweeping of stale renters, and a
// rack-label index used by the placement engine for best-effort locality
// diversity.
//
// The table's add/prune/lookup shape mirrors modules/gateway/peers.go and
// modules/gateway/nodes.go, which maintain an analogous peer/node table
// under a single mutex.
package membership

import (
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/NebulousLabs/errors"
	"github.com/NebulousLabs/fastrand"
	"github.com/Lykaioss/s4stry/modules"
)

// Table is the coordinator's live view of registered renters. The zero
// value is not usable; use New.
type Table struct {
	mu      sync.RWMutex
	renters map[string]*modules.RenterRecord
	racks   map[string]map[string]bool // rack label -> set of renter IDs
	timeout time.Duration
	rackCount int

	now func() time.Time // overridable for tests
}

// New creates an empty membership table. timeout is the heartbeat
// staleness threshold (RENTER_TIMEOUT); rackCount is K.
func New(timeout time.Duration, rackCount int) *Table {
	return &Table{
		renters:   make(map[string]*modules.RenterRecord),
		racks:     make(map[string]map[string]bool),
		timeout:   timeout,
		rackCount: rackCount,
		now:       time.Now,
	}
}

// Register assigns a rack (round-robin by current membership size modulo
// K) and records the renter, stamping last_heartbeat = now. If id is
// empty, a random identity is generated; if id already exists, the
// existing record is refreshed in place (idempotent re-registration).
// Register returns the renter's assigned identity.
func (t *Table) Register(id, url string, capacity uint64, ledgerAddress string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == "" {
		id = generateRenterID()
	}

	if existing, ok := t.renters[id]; ok {
		existing.URL = url
		existing.StorageCapacity = capacity
		existing.LastHeartbeat = t.now()
		if ledgerAddress != "" {
			existing.LedgerAddress = ledgerAddress
		}
		return id
	}

	rack := modules.RackLabel(len(t.renters) % t.rackCount)

	rec := &modules.RenterRecord{
		RenterID:        id,
		URL:             url,
		StorageCapacity: capacity,
		LastHeartbeat:   t.now(),
		Rack:            rack,
		LedgerAddress:   ledgerAddress,
	}
	t.renters[id] = rec

	if t.racks[rack] == nil {
		t.racks[rack] = make(map[string]bool)
	}
	t.racks[rack][id] = true

	return id
}

// Heartbeat updates last_heartbeat for id and, if ledgerAddress is
// non-empty, refreshes the stored ledger address. Returns
// modules.ErrRenterNotFound if id is not registered.
func (t *Table) Heartbeat(id, ledgerAddress string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.renters[id]
	if !ok {
		return errors.AddContext(modules.ErrRenterNotFound, "heartbeat: "+id)
	}
	rec.LastHeartbeat = t.now()
	if ledgerAddress != "" {
		rec.LedgerAddress = ledgerAddress
	}
	return nil
}

// Sweep removes every renter whose last heartbeat is older than the
// configured timeout, unlinking it from its rack set. Sweep is safe to
// call before every placement or retrieval decision; it needs no
// background timer to keep the table correct.
func (t *Table) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
}

func (t *Table) sweepLocked() {
	now := t.now()
	for id, rec := range t.renters {
		if now.Sub(rec.LastHeartbeat) > t.timeout {
			delete(t.renters, id)
			if set, ok := t.racks[rec.Rack]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(t.racks, rec.Rack)
				}
			}
		}
	}
}

// Snapshot is an immutable view of the live membership, produced after a
// sweep, for the placement engine and reconstruction to consume without
// holding the table's lock during I/O.
type Snapshot struct {
	Renters map[string]modules.RenterRecord   // renter_id -> record (copy)
	Racks   map[string][]string               // rack label -> renter IDs, deterministic order
	RackOrder []string                        // non-empty rack labels in index order (rack0..rackK-1)
}

// Snapshot sweeps stale renters, then returns a consistent, independent
// copy of the membership for use by the placement engine.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()

	snap := Snapshot{
		Renters: make(map[string]modules.RenterRecord, len(t.renters)),
		Racks:   make(map[string][]string, len(t.racks)),
	}
	for id, rec := range t.renters {
		snap.Renters[id] = *rec
	}
	// Deterministic rack order: rack0..rackK-1 by index, as registered.
	for i := 0; i < t.rackCount; i++ {
		label := modules.RackLabel(i)
		if ids, ok := t.racks[label]; ok {
			var list []string
			for id := range ids {
				list = append(list, id)
			}
			sort.Strings(list)
			snap.Racks[label] = list
			snap.RackOrder = append(snap.RackOrder, label)
		}
	}
	return snap
}

// Lookup returns a copy of the record for id, and whether it is (still)
// live, without triggering a sweep. Used by reconstruction and delete to
// check "is this renter still registered" for a specific descriptor.
func (t *Table) Lookup(id string) (modules.RenterRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.renters[id]
	if !ok {
		return modules.RenterRecord{}, false
	}
	return *rec, true
}

// Len returns the current number of registered renters without sweeping.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.renters)
}

func generateRenterID() string {
	return "renter-" + hex.EncodeToString(fastrand.Bytes(8))
}
