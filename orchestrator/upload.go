package orchestrator

import (
	"fmt"
	"os"

	"github.com/Lykaioss/s4stry/build"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/placement"
)

// UploadResult is returned to the HTTP layer on a successful upload.
type UploadResult struct {
	Filename          string
	NumShards         int
	ReplicationFactor int
	ShardSize         int
	Message           string
}

// Upload stages data to a scratch file, splits it into shards, distributes
// replicas across live renters, and records the resulting placement.
// Every scratch path opened here is released on every exit path.
func (c *Coordinator) Upload(filename string, data []byte, payment float64) (UploadResult, error) {
	if payment <= 0 {
		return UploadResult{}, modules.ErrBadRequest
	}
	if filename == "" {
		return UploadResult{}, modules.ErrBadRequest
	}
	if len(data) == 0 {
		return UploadResult{}, modules.ErrEmptyFile
	}

	scratchPath, err := c.stageScratch(filename, data)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: staging upload: %v", modules.ErrUpstreamFailure, err)
	}
	defer func() {
		if err := os.Remove(scratchPath); err != nil && !os.IsNotExist(err) {
			c.Logger.Printf("WARN: upload: %v", build.ExtendErr("removing scratch file "+scratchPath, err))
		}
	}()

	n := placement.ShardCount(int64(len(data)), modules.TargetShardSize, modules.MinShards, modules.MaxShards)
	shards := placement.Split(data, n)

	snap := c.Table.Snapshot()
	replicas := make([][]string, n)
	for i := 0; i < n; i++ {
		selected, err := c.Engine.SelectReplicas(snap)
		if err != nil {
			return UploadResult{}, err
		}
		replicas[i] = selected
	}

	descriptors, err := placement.Distribute(c.context(), c.HTTPClient, c.Table, shards, replicas, filename)
	if err != nil {
		c.Logger.Printf("WARN: upload: distribution of %v failed: %v", filename, err)
		return UploadResult{}, fmt.Errorf("%w: %v", modules.ErrUpstreamFailure, err)
	}

	uniqueRenters := (&modules.PlacementRecord{Descriptors: descriptors}).UniqueRenterIDs()
	share := payment
	if len(uniqueRenters) > 0 {
		share = payment / float64(len(uniqueRenters))
	}

	record := &modules.PlacementRecord{
		Filename:       filename,
		Descriptors:    descriptors,
		TotalPayment:   payment,
		PerRenterShare: share,
		Retrieved:      false,
	}

	if indices := record.ShardIndices(); len(indices) != n {
		build.Critical("placement record for", filename, "covers", len(indices), "shard indices, want", n)
	} else {
		for i := 0; i < n; i++ {
			if !indices[i] {
				build.Critical("placement record for", filename, "missing shard index", i)
				break
			}
		}
	}

	c.putPlacement(filename, record)

	c.Logger.Printf("INFO: upload: %v split into %d shards, placed with %d unique renters", filename, n, len(uniqueRenters))

	shardSize := len(shards[0])
	return UploadResult{
		Filename:          filename,
		NumShards:         n,
		ReplicationFactor: len(replicas[0]),
		ShardSize:         shardSize,
		Message:           "upload successful",
	}, nil
}

// stageScratch writes data to a temp file under c.ScratchDir, returning its
// path. The orchestrator exclusively owns this path for the duration of
// the upload.
func (c *Coordinator) stageScratch(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(c.ScratchDir, 0700); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(c.ScratchDir, "upload-*-"+sanitizeForTempName(filename))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func sanitizeForTempName(filename string) string {
	b := []byte(filename)
	for i, c := range b {
		if c == '/' || c == '\\' || c == '*' {
			b[i] = '_'
		}
	}
	return string(b)
}
