// Package reconstruct implements file reassembly from surviving shard
// replicas: for each shard index, try replicas in recorded order until one
// succeeds, then concatenate. It also owns the staged artifact's
// TTL-based deletion, registered with a threadgroup so shutdown is clean;
// the "read bytes from storage, stream to caller" half mirrors
// modules/host/download.go, and NebulousLabs/threadgroup backs the
// janitor goroutine the same way it backs other background tasks here.
package reconstruct

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/NebulousLabs/threadgroup"
	"github.com/Lykaioss/s4stry/membership"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/renterclient"
)

// Reconstruct reassembles filename from placement's recorded shard
// descriptors, reading whichever replica of each shard is reachable first.
// It returns modules.ErrIncomplete if any shard has no successful replica.
func Reconstruct(ctx context.Context, client *http.Client, table *membership.Table, placement *modules.PlacementRecord, n int) ([]byte, error) {
	var assembled []byte
	for shardIndex := 0; shardIndex < n; shardIndex++ {
		data, ok := tryShard(ctx, client, table, placement.ReplicasForShard(shardIndex))
		if !ok {
			return nil, modules.ErrIncomplete
		}
		assembled = append(assembled, data...)
	}
	return assembled, nil
}

// tryShard attempts each replica in order, returning the first successful
// body. A replica succeeds only if its renter is still live, the retrieval
// responds within the shard RPC timeout, and the body is non-empty.
func tryShard(ctx context.Context, client *http.Client, table *membership.Table, replicas []modules.ShardDescriptor) ([]byte, bool) {
	for _, replica := range replicas {
		rec, live := table.Lookup(replica.RenterID)
		if !live {
			continue
		}
		data, ok := retrieveShard(ctx, client, rec.URL, replica.BlobName)
		if !ok || len(data) == 0 {
			continue
		}
		return data, true
	}
	return nil, false
}

// retrieveShard bounds a single retrieve-shard call to
// modules.ShardRPCTimeout.
func retrieveShard(ctx context.Context, client *http.Client, baseURL, blobName string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, modules.ShardRPCTimeout)
	defer cancel()
	data, err := renterclient.RetrieveShard(ctx, client, baseURL, blobName)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Janitor schedules the deletion of a staged artifact file after ttl has
// elapsed, as a fire-and-forget task tracked by tg so the coordinator can
// wait for it on shutdown. The removal's error is ignored; if the removal
// fails, no other code path removes the file later.
func Janitor(tg *threadgroup.ThreadGroup, path string, ttl time.Duration) {
	if err := tg.Add(); err != nil {
		// ThreadGroup is already stopping; remove immediately instead of
		// leaking the scratch file.
		os.Remove(path)
		return
	}
	go func() {
		defer tg.Done()
		timer := time.NewTimer(ttl)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-tg.StopChan():
		}
		os.Remove(path)
	}()
}
