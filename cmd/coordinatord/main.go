// Command coordinatord runs the s4stry coordinator process: membership,
// placement, reconstruction, challenge/response, the public-key registry,
// and ledger settlement, exposed over HTTP.
//
// Startup/shutdown shape (a listener handed to an *http.Server, signal
// handling that closes the listener to unblock Serve) mirrors
// api/server.go (Server.Serve's os.Interrupt handling) and
// cmd/siad/server.go's listener-first-then-handler construction.
package main

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lykaioss/s4stry/api"
	"github.com/Lykaioss/s4stry/challenge"
	"github.com/Lykaioss/s4stry/ledgerrpc"
	"github.com/Lykaioss/s4stry/membership"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/orchestrator"
	"github.com/Lykaioss/s4stry/persist"
	"github.com/Lykaioss/s4stry/placement"
	"github.com/Lykaioss/s4stry/registry"
	"github.com/Lykaioss/s4stry/settlement"
)

// Exit codes: 0 on clean shutdown, non-zero on startup failure, the same
// sysexits.h-inspired convention as cmd/siac/main.go.
const (
	exitOK      = 0
	exitGeneral = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := envOrDefault("S4STRY_COORDINATOR_ADDR", ":8080")
	dataDir := envOrDefault("S4STRY_COORDINATOR_DATADIR", "coordinator-data")

	logger, err := persist.NewLogger(dataDir, "coordinatord")
	if err != nil {
		log.New(os.Stderr, "coordinatord: ", log.LstdFlags).Printf("startup failed: opening log file: %v", err)
		return exitGeneral
	}

	ledgerAddr := os.Getenv("S4STRY_LEDGER_ADDR")
	if ledgerAddr == "" {
		ledgerAddr, err = promptLedgerAddr()
		if err != nil {
			logger.Printf("startup failed: %v", err)
			return exitGeneral
		}
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		logger.Printf("startup failed: creating data directory: %v", err)
		return exitGeneral
	}

	ledgerClient, err := ledgerrpc.Dial(ledgerAddr)
	ledgerUp := err == nil
	if err != nil {
		logger.Printf("WARN: could not connect to ledger at %v: %v (starting without settlement)", ledgerAddr, err)
	}

	coordinatorLedgerAddr := ""
	if ledgerUp {
		coordinatorLedgerAddr, err = ledgerClient.CreateAccount("coordinator", 0, modules.SmallRPCTimeout)
		if err != nil {
			logger.Printf("WARN: could not create coordinator ledger account: %v", err)
			ledgerUp = false
		}
	}

	table := membership.New(modules.RenterTimeout, modules.RackCount)
	engine := placement.New(modules.ReplicationFactor, placement.FastrandSource{})
	reg, err := registry.New(filepath.Join(dataDir, "registry.json"))
	if err != nil {
		logger.Printf("startup failed: loading public-key registry: %v", err)
		return exitGeneral
	}
	challenges := challenge.New(modules.ChallengeTTL)

	var ledger settlement.LedgerClient
	if ledgerUp {
		ledger = ledgerClient
	}

	coordinator := orchestrator.New(table, engine, reg, challenges, ledger, coordinatorLedgerAddr, filepath.Join(dataDir, "scratch"), logger)

	srv := api.NewCoordinatorServer(coordinator, func() bool {
		if !ledgerUp {
			return false
		}
		_, probeErr := ledgerClient.GetBalance(coordinatorLedgerAddr, modules.SmallRPCTimeout)
		return probeErr == nil
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Printf("startup failed: %v", err)
		return exitGeneral
	}

	httpServer := &http.Server{
		Handler:           srv.Handler,
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		logger.Println("caught stop signal, shutting down")
		listener.Close()
	}()

	logger.Printf("listening on %v", addr)
	if err := httpServer.Serve(listener); err != nil && !strings.HasSuffix(err.Error(), "use of closed network connection") {
		logger.Printf("serve error: %v", err)
		coordinator.ThreadGroup.Stop()
		return exitGeneral
	}
	coordinator.ThreadGroup.Stop()
	return exitOK
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func promptLedgerAddr() (string, error) {
	fmt.Print("Ledger endpoint (host:port): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
