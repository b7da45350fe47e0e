package placement

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Lykaioss/s4stry/membership"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/renterclient"
)

// storeShard bounds a single store-shard call to modules.ShardRPCTimeout,
// per shard replica.
func storeShard(ctx context.Context, client *http.Client, baseURL, blobName string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, modules.ShardRPCTimeout)
	defer cancel()
	return renterclient.StoreShard(ctx, client, baseURL, blobName, data)
}

// Split divides data into n equal-sized contiguous byte ranges, with the
// last shard absorbing the remainder. Shards are opaque; Split never
// interprets their content.
func Split(data []byte, n int) [][]byte {
	total := len(data)
	base := total / n
	shards := make([][]byte, n)
	offset := 0
	for i := 0; i < n; i++ {
		size := base
		if i == n-1 {
			size = total - offset
		}
		shards[i] = data[offset : offset+size]
		offset += size
	}
	return shards
}

// BlobName returns the conventional opaque blob name a renter stores a
// shard replica under.
func BlobName(shardIndex, replicaIndex int, filename string) string {
	return fmt.Sprintf("shard_%d_replica_%d_%s", shardIndex, replicaIndex, filename)
}

// distributeResult is one shard's outcome.
type distributeResult struct {
	descriptors []modules.ShardDescriptor
	err         error
}

// Distribute pushes every shard's replicas to its selected renters,
// fanning the per-renter I/O out over a worker per shard, mirroring the
// per-host upload worker shape (see other_examples' renter upload.go
// uploadWorker/reqChan pattern) generalized from "one worker per host" to
// "one worker per shard" since here a shard's replicas are pushed to
// distinct renters sequentially but shards upload concurrently. A shard's
// worker stops at its first transport error. Distribute waits for every
// shard's worker to finish and, if any failed, returns the first error it
// received; shards already pushed are tolerated as dangling blobs.
func Distribute(ctx context.Context, client *http.Client, table *membership.Table, shards [][]byte, replicas [][]string, filename string) ([]modules.ShardDescriptor, error) {
	results := make(chan distributeResult, len(shards))

	for shardIndex, shardData := range shards {
		go func(shardIndex int, shardData []byte, renterIDs []string) {
			var descriptors []modules.ShardDescriptor
			for replicaIndex, renterID := range renterIDs {
				rec, ok := table.Lookup(renterID)
				if !ok {
					results <- distributeResult{err: fmt.Errorf("placement: renter %v vanished mid-upload", renterID)}
					return
				}
				blob := BlobName(shardIndex, replicaIndex, filename)
				if err := storeShard(ctx, client, rec.URL, blob, shardData); err != nil {
					results <- distributeResult{err: fmt.Errorf("placement: store shard %d replica %d on %v: %w", shardIndex, replicaIndex, renterID, err)}
					return
				}
				descriptors = append(descriptors, modules.ShardDescriptor{
					ShardIndex:   shardIndex,
					ReplicaIndex: replicaIndex,
					RenterID:     renterID,
					BlobName:     blob,
				})
			}
			results <- distributeResult{descriptors: descriptors}
		}(shardIndex, shardData, replicas[shardIndex])
	}

	var all []modules.ShardDescriptor
	var firstErr error
	for range shards {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		all = append(all, r.descriptors...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}
