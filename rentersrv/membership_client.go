package rentersrv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/NebulousLabs/threadgroup"
)

// registerRequest/registerResponse mirror the coordinator's
// /register-renter/ contract.
type registerRequest struct {
	RenterID         string `json:"renter_id,omitempty"`
	URL              string `json:"url"`
	StorageAvailable uint64 `json:"storage_available"`
	BlockchainAddr   string `json:"blockchain_address,omitempty"`
}

type registerResponse struct {
	RenterID string `json:"renter_id"`
	Message  string `json:"message"`
}

type heartbeatRequest struct {
	RenterID       string `json:"renter_id"`
	BlockchainAddr string `json:"blockchain_address,omitempty"`
}

// Register posts a registration request to the coordinator and returns the
// assigned renter_id. Passing a non-empty renterID makes the call idempotent
// from the peer's side.
func Register(ctx context.Context, client *http.Client, coordinatorURL, renterID, selfURL string, capacity uint64, ledgerAddress string) (string, error) {
	reqBody := registerRequest{RenterID: renterID, URL: selfURL, StorageAvailable: capacity, BlockchainAddr: ledgerAddress}
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(coordinatorURL, "/") + "/register-renter/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rentersrv: register-renter returned status %v", resp.StatusCode)
	}

	var out registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.RenterID, nil
}

// heartbeatOnce sends a single heartbeat. A 404 response (renter_id unknown
// to the coordinator, e.g. after a coordinator restart) is returned as an
// error so HeartbeatLoop can re-register.
func heartbeatOnce(ctx context.Context, client *http.Client, coordinatorURL, renterID, ledgerAddress string) error {
	reqBody := heartbeatRequest{RenterID: renterID, BlockchainAddr: ledgerAddress}
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(coordinatorURL, "/") + "/heartbeat/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("rentersrv: heartbeat: renter_id %v not found at coordinator", renterID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rentersrv: heartbeat returned status %v", resp.StatusCode)
	}
	return nil
}

// HeartbeatLoop heartbeats to the coordinator every interval until tg stops,
// re-registering automatically whenever a heartbeat fails: a not-found
// reply (e.g. the coordinator restarted and lost its volatile membership
// table) or any other error. It
// mirrors modules/gateway/peers.go's threadedAcceptConn-style "loop until
// stopped" shape, generalized from accepting connections to heartbeating
// one peer.
func HeartbeatLoop(tg *threadgroup.ThreadGroup, client *http.Client, coordinatorURL, selfURL string, capacity uint64, renterID, ledgerAddress string, interval time.Duration, logger *log.Logger) {
	if err := tg.Add(); err != nil {
		return
	}
	go func() {
		defer tg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx := context.Background()
				if err := heartbeatOnce(ctx, client, coordinatorURL, renterID, ledgerAddress); err != nil {
					logger.Printf("WARN: heartbeat failed, re-registering: %v", err)
					newID, regErr := Register(ctx, client, coordinatorURL, renterID, selfURL, capacity, ledgerAddress)
					if regErr != nil {
						logger.Printf("WARN: re-registration failed: %v", regErr)
						continue
					}
					renterID = newID
				}
			case <-tg.StopChan():
				return
			}
		}
	}()
}
