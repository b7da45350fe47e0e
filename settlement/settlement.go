// Package settlement implements ledger settlement: once per filename, on
// successful verify-challenge, each unique renter referenced by the
// placement is paid its per-renter share from the coordinator's held
// payment, provided the renter is still registered and has a known ledger
// address.
//
// The independent-failure-tolerant fan-out shape mirrors
// modules/gateway/peersmanager.go's threadedBroadcast: every transfer is
// attempted regardless of whether an earlier one failed, and failures are
// logged, never propagated as a reason to abort the remaining transfers
// or the file delivery.
package settlement

import (
	"log"
	"time"

	"github.com/Lykaioss/s4stry/membership"
	"github.com/Lykaioss/s4stry/modules"
)

// LedgerClient is the subset of ledgerrpc.Client that settlement needs.
// Accepting an interface rather than a concrete *ledgerrpc.Client, the way
// modules.ConsensusSet/modules.Wallet are accepted as interfaces rather
// than concrete types, lets tests supply a stub without standing up a
// real TCP-and-gob ledger server.
type LedgerClient interface {
	SendMoney(sender, receiver string, amount float64, timeout time.Duration) (modules.Receipt, error)
}

// Settle pays each unique renter_id referenced by placement's descriptors
// its per-renter share at most once, skipping any renter that is no
// longer registered or has no known ledger address. Settle never returns
// an error: every failure is independent and logged via logger.
func Settle(client LedgerClient, table *membership.Table, coordinatorAddress string, placement *modules.PlacementRecord, logger *log.Logger) {
	for _, renterID := range placement.UniqueRenterIDs() {
		rec, live := table.Lookup(renterID)
		if !live || rec.LedgerAddress == "" {
			logger.Printf("WARN: settlement: skipping renter %v (live=%v, ledger address set=%v)", renterID, live, rec.LedgerAddress != "")
			continue
		}

		receipt, err := client.SendMoney(coordinatorAddress, rec.LedgerAddress, placement.PerRenterShare, modules.SmallRPCTimeout)
		if err != nil {
			logger.Printf("WARN: settlement: send_money to renter %v failed: %v", renterID, err)
			continue
		}
		logger.Printf("INFO: settlement: paid renter %v %v (tx %v)", renterID, receipt.Amount, receipt.TransactionHash)
	}
}
