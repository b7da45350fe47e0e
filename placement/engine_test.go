package placement

import (
	"testing"
	"time"

	"github.com/Lykaioss/s4stry/membership"
)

// stubRand always returns 0, making selection deterministic: the engine
// always picks the first candidate in each (sorted) pool.
type stubRand struct{}

func (stubRand) Intn(n int) int { return 0 }

func TestShardCountBoundaries(t *testing.T) {
	cases := []struct {
		size int64
		want int
	}{
		{0, 3},               // clamped to minShards (caller rejects 0 separately)
		{1, 3},               // smaller than target -> N_min
		{1 << 20, 3},         // exactly target size, one shard worth, clamped to min
		{3 * (1 << 20), 3},   // exactly 3 shards worth
		{100 * (1 << 20), 10}, // far larger than max*target -> capped at N_max
	}
	for _, c := range cases {
		got := ShardCount(c.size, 1<<20, 3, 10)
		if got != c.want {
			t.Errorf("ShardCount(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestSelectReplicasRackSpread(t *testing.T) {
	table := membership.New(60*time.Second, 3)
	table.Register("r1", "http://r1", 100, "")
	table.Register("r2", "http://r2", 100, "")
	table.Register("r3", "http://r3", 100, "")

	eng := New(3, stubRand{})
	snap := table.Snapshot()
	selected, err := eng.SelectReplicas(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 3 {
		t.Fatalf("expected 3 replicas selected, got %d", len(selected))
	}
	racks := map[string]bool{}
	for _, id := range selected {
		racks[snap.Renters[id].Rack] = true
	}
	if len(racks) != 3 {
		t.Fatalf("expected all 3 racks represented, got %v", racks)
	}
}

func TestSelectReplicasDegradesWithFewerRenters(t *testing.T) {
	table := membership.New(60*time.Second, 3)
	table.Register("only", "http://only", 100, "")

	eng := New(3, stubRand{})
	snap := table.Snapshot()
	selected, err := eng.SelectReplicas(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected R_effective = 1 with a single live renter, got %d replicas", len(selected))
	}
}

func TestSelectReplicasNoLiveRenters(t *testing.T) {
	table := membership.New(60*time.Second, 3)
	eng := New(3, stubRand{})
	_, err := eng.SelectReplicas(table.Snapshot())
	if err == nil {
		t.Fatal("expected an error when no renters are live")
	}
}

func TestSelectReplicasDistinctPerShard(t *testing.T) {
	table := membership.New(60*time.Second, 3)
	table.Register("r1", "http://r1", 100, "")
	table.Register("r2", "http://r2", 100, "")

	eng := New(2, stubRand{})
	snap := table.Snapshot()
	selected, err := eng.SelectReplicas(snap)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, id := range selected {
		if seen[id] {
			t.Fatalf("replica set contains duplicate renter %v", id)
		}
		seen[id] = true
	}
}
