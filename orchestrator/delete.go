package orchestrator

import (
	"context"
	"fmt"

	"github.com/Lykaioss/s4stry/build"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/renterclient"
)

// Delete issues delete-shard to each recorded (renter, blob) whose renter
// is still live, best-effort (failures are logged but never abort the
// loop), then removes the placement record. Delete returns
// modules.ErrFileNotFound if no placement record existed, making a second
// delete of the same filename idempotent.
func (c *Coordinator) Delete(filename string) error {
	record, ok := c.getPlacement(filename)
	if !ok {
		return modules.ErrFileNotFound
	}

	var failures []error
	for _, d := range record.Descriptors {
		rec, live := c.Table.Lookup(d.RenterID)
		if !live {
			continue
		}
		ctx, cancel := context.WithTimeout(c.context(), modules.ShardRPCTimeout)
		err := renterclient.DeleteShard(ctx, c.HTTPClient, rec.URL, d.BlobName)
		cancel()
		if err != nil {
			failures = append(failures, fmt.Errorf("blob %v on renter %v: %w", d.BlobName, d.RenterID, err))
		}
	}
	if composed := build.ComposeErrors(failures...); composed != nil {
		c.Logger.Printf("WARN: delete: %v of %v shard deletions failed for %v: %v", len(failures), len(record.Descriptors), filename, composed)
	}

	c.deletePlacement(filename)
	return nil
}
