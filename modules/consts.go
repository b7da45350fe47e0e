package modules

import (
	"strconv"
	"time"

	"github.com/Lykaioss/s4stry/build"
)

// Tunables shared by the coordinator and renter processes. "standard"
// values are the reference durations; "testing" shortens every duration so
// the test suite doesn't take minutes to run, the same way
// modules/gateway/peers.go varies acceptInterval/dialTimeout by
// build.Release.
var (
	// RenterTimeout is the heartbeat staleness threshold after which the
	// membership sweeper evicts a renter.
	RenterTimeout = func() time.Duration {
		switch build.Release {
		case "testing":
			return 500 * time.Millisecond
		default:
			return 60 * time.Second
		}
	}()

	// HeartbeatInterval is how often a renter process heartbeats to the
	// coordinator.
	HeartbeatInterval = func() time.Duration {
		switch build.Release {
		case "testing":
			return 100 * time.Millisecond
		default:
			return 30 * time.Second
		}
	}()

	// ShardRPCTimeout bounds store-shard/retrieve-shard/delete-shard calls
	// to a renter.
	ShardRPCTimeout = func() time.Duration {
		switch build.Release {
		case "testing":
			return 2 * time.Second
		default:
			return 300 * time.Second
		}
	}()

	// SmallRPCTimeout bounds register/heartbeat/ledger RPCs.
	SmallRPCTimeout = func() time.Duration {
		switch build.Release {
		case "testing":
			return 1 * time.Second
		default:
			return 30 * time.Second
		}
	}()

	// ReconstructionTTL is how long a reconstructed artifact is staged for
	// delivery before the janitor deletes it.
	ReconstructionTTL = func() time.Duration {
		switch build.Release {
		case "testing":
			return 1 * time.Second
		default:
			return 30 * time.Second
		}
	}()

	// ChallengeTTL bounds the lifetime of an issued-but-unverified
	// challenge. Defaults to the reconstruction TTL: a challenge that
	// outlives its staged artifact can never be satisfied anyway.
	ChallengeTTL = ReconstructionTTL
)

const (
	// ReplicationFactor is the configured replica count R.
	ReplicationFactor = 3

	// RackCount is the number of rack labels the coordinator round-robins
	// registrations across.
	RackCount = 3

	// MinShards is the minimum shard count for any upload.
	MinShards = 3

	// MaxShards is the hard maximum shard count.
	MaxShards = 10

	// TargetShardSize is the baseline shard size in bytes (1 MiB).
	TargetShardSize = 1 << 20
)

// RackLabel returns the deterministic rack label for rack index i, e.g.
// "rack0", "rack1", ... "rack<K-1>".
func RackLabel(i int) string {
	return "rack" + strconv.Itoa(i)
}
