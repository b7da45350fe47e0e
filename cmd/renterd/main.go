// Command renterd runs a single storage peer ("renter"): it serves opaque
// shard storage over HTTP and registers/heartbeats with a coordinator.
// Startup/shutdown shape mirrors api/server.go's Serve/signal pattern,
// same as cmd/coordinatord.
package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/NebulousLabs/threadgroup"
	"github.com/Lykaioss/s4stry/api"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/persist"
	"github.com/Lykaioss/s4stry/rentersrv"
)

const (
	exitOK      = 0
	exitGeneral = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := envOrDefault("S4STRY_RENTER_ADDR", ":9090")
	selfURL := envOrDefault("S4STRY_RENTER_URL", "http://localhost"+addr)
	dataDir := envOrDefault("S4STRY_RENTER_DATADIR", "renter-data")
	coordinatorURL := envOrDefault("S4STRY_COORDINATOR_URL", "http://localhost:8080")
	ledgerAddress := os.Getenv("S4STRY_RENTER_LEDGER_ADDR")

	logger, err := persist.NewLogger(dataDir, "renterd")
	if err != nil {
		log.New(os.Stderr, "renterd: ", log.LstdFlags).Printf("startup failed: opening log file: %v", err)
		return exitGeneral
	}

	capacity, err := strconv.ParseUint(envOrDefault("S4STRY_RENTER_CAPACITY", "1073741824"), 10, 64)
	if err != nil {
		logger.Printf("startup failed: invalid capacity: %v", err)
		return exitGeneral
	}

	store, err := rentersrv.NewStore(dataDir)
	if err != nil {
		logger.Printf("startup failed: %v", err)
		return exitGeneral
	}
	if err := store.AllocatePlaceholder(capacity); err != nil {
		logger.Printf("startup failed: %v", err)
		return exitGeneral
	}

	httpClient := &http.Client{Timeout: modules.SmallRPCTimeout}
	renterID, err := rentersrv.Register(context.Background(), httpClient, coordinatorURL, "", selfURL, capacity, ledgerAddress)
	if err != nil {
		logger.Printf("startup failed: registering with coordinator: %v", err)
		return exitGeneral
	}
	logger.Printf("registered with coordinator as %v", renterID)

	var tg threadgroup.ThreadGroup
	rentersrv.HeartbeatLoop(&tg, httpClient, coordinatorURL, selfURL, capacity, renterID, ledgerAddress, modules.HeartbeatInterval, logger)

	srv := api.NewRenterServer(store)

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
		tg.Stop()
		return exitGeneral
	}
	tg.Stop()
	return exitOK
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
