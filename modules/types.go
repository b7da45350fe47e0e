// Package modules defines the data model and error vocabulary shared by the
// coordinator's subsystems (membership, placement, reconstruction,
// challenge/response, settlement, and the HTTP surfaces that sit on top of
// them). These are kept as explicit structs rather than loosely typed maps;
// see DESIGN.md.
package modules

import "time"

// RenterRecord describes one registered storage peer.
type RenterRecord struct {
	RenterID        string    `json:"renter_id"`
	URL             string    `json:"url"`
	StorageCapacity uint64    `json:"storage_available"`
	LastHeartbeat   time.Time `json:"-"`
	Rack            string    `json:"rack"`
	LedgerAddress   string    `json:"blockchain_address,omitempty"`
}

// ShardDescriptor identifies one stored replica of one shard of one file.
type ShardDescriptor struct {
	ShardIndex   int    `json:"shard_index"`
	ReplicaIndex int    `json:"replica_index"`
	RenterID     string `json:"renter_id"`
	BlobName     string `json:"blob_name"`
}

// PlacementRecord is the per-filename record created on upload completion
// and consulted by download and delete.
type PlacementRecord struct {
	Filename      string            `json:"filename"`
	Descriptors   []ShardDescriptor `json:"descriptors"`
	TotalPayment  float64           `json:"total_payment"`
	PerRenterShare float64          `json:"per_renter_share"`
	Retrieved     bool              `json:"retrieved"`
}

// UniqueRenterIDs returns the set of distinct renter IDs referenced by the
// placement's descriptors, in first-seen order.
func (p *PlacementRecord) UniqueRenterIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range p.Descriptors {
		if !seen[d.RenterID] {
			seen[d.RenterID] = true
			ids = append(ids, d.RenterID)
		}
	}
	return ids
}

// ShardIndices returns the set of distinct shard indices referenced by the
// placement's descriptors.
func (p *PlacementRecord) ShardIndices() map[int]bool {
	indices := make(map[int]bool)
	for _, d := range p.Descriptors {
		indices[d.ShardIndex] = true
	}
	return indices
}

// ReplicasForShard returns the descriptors for one shard index, in the
// order they were recorded (i.e. replica order chosen by the placement
// engine).
func (p *PlacementRecord) ReplicasForShard(shardIndex int) []ShardDescriptor {
	var out []ShardDescriptor
	for _, d := range p.Descriptors {
		if d.ShardIndex == shardIndex {
			out = append(out, d)
		}
	}
	return out
}

// Receipt is returned by the ledger's send_money RPC.
type Receipt struct {
	TransactionHash string    `json:"transaction_hash"`
	Sender          string    `json:"sender"`
	Receiver        string    `json:"receiver"`
	Amount          float64   `json:"amount"`
	Timestamp       time.Time `json:"timestamp"`
}
