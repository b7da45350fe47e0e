package membership

import (
	"testing"
	"time"
)

func TestRegisterAssignsRacksRoundRobin(t *testing.T) {
	table := New(60*time.Second, 3)
	a := table.Register("", "http://a", 100, "")
	b := table.Register("", "http://b", 100, "")
	c := table.Register("", "http://c", 100, "")
	d := table.Register("", "http://d", 100, "")

	snap := table.Snapshot()
	if snap.Renters[a].Rack != "rack0" {
		t.Fatalf("expected renter a on rack0, got %v", snap.Renters[a].Rack)
	}
	if snap.Renters[b].Rack != "rack1" {
		t.Fatalf("expected renter b on rack1, got %v", snap.Renters[b].Rack)
	}
	if snap.Renters[c].Rack != "rack2" {
		t.Fatalf("expected renter c on rack2, got %v", snap.Renters[c].Rack)
	}
	if snap.Renters[d].Rack != "rack0" {
		t.Fatalf("expected renter d to wrap back to rack0, got %v", snap.Renters[d].Rack)
	}
}

func TestRegisterIdempotentWithSuppliedID(t *testing.T) {
	table := New(60*time.Second, 3)
	id := table.Register("fixed-id", "http://a", 100, "")
	if id != "fixed-id" {
		t.Fatalf("expected supplied id to be used, got %v", id)
	}
	// re-registering with the same id should refresh, not duplicate.
	id2 := table.Register("fixed-id", "http://a-new", 200, "addr1")
	if id2 != "fixed-id" {
		t.Fatalf("expected re-registration to keep the same id, got %v", id2)
	}
	if table.Len() != 1 {
		t.Fatalf("expected exactly one renter, got %v", table.Len())
	}
	snap := table.Snapshot()
	if snap.Renters["fixed-id"].URL != "http://a-new" {
		t.Fatalf("expected re-registration to refresh the URL")
	}
	if snap.Renters["fixed-id"].LedgerAddress != "addr1" {
		t.Fatalf("expected re-registration to refresh the ledger address")
	}
}

func TestHeartbeatUnknownRenterReturnsNotFound(t *testing.T) {
	table := New(60*time.Second, 3)
	if err := table.Heartbeat("nope", ""); err == nil {
		t.Fatal("expected error for unknown renter")
	}
}

func TestSweepEvictsStaleRenters(t *testing.T) {
	table := New(60*time.Second, 3)
	fakeNow := time.Now()
	table.now = func() time.Time { return fakeNow }

	a := table.Register("", "http://a", 100, "")
	table.Register("", "http://b", 100, "")

	// Advance time past the timeout for everyone, then heartbeat only 'a'.
	fakeNow = fakeNow.Add(120 * time.Second)
	if err := table.Heartbeat(a, ""); err != nil {
		t.Fatal(err)
	}

	snap := table.Snapshot()
	if _, ok := snap.Renters[a]; !ok {
		t.Fatal("expected renter a to survive the sweep")
	}
	if len(snap.Renters) != 1 {
		t.Fatalf("expected only renter a to survive, got %v renters", len(snap.Renters))
	}
}

func TestSweepUnlinksRackMembership(t *testing.T) {
	table := New(10*time.Millisecond, 3)
	fakeNow := time.Now()
	table.now = func() time.Time { return fakeNow }
	table.Register("", "http://a", 100, "")

	fakeNow = fakeNow.Add(time.Second)
	table.Sweep()

	snap := table.Snapshot()
	if len(snap.Racks) != 0 {
		t.Fatalf("expected no racks to remain after eviction, got %v", snap.Racks)
	}
}
