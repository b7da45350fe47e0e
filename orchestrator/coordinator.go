// Package orchestrator wires membership, placement, reconstruction,
// challenge/response, the public-key registry, and ledger settlement into
// the upload/download/delete contracts. It owns the placement index and
// all scratch-path lifetimes, using explicit defer-based release rather
// than any ambient cleanup mechanism.
//
// The Coordinator struct's shape (a handful of module handles passed in
// at construction rather than reached for as globals) mirrors api.API
// (api/api.go), which holds its modules (cs, gateway, host, renter, ...)
// as explicit fields rather than package-level singletons.
package orchestrator

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/NebulousLabs/threadgroup"
	"github.com/Lykaioss/s4stry/challenge"
	"github.com/Lykaioss/s4stry/membership"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/placement"
	"github.com/Lykaioss/s4stry/registry"
	"github.com/Lykaioss/s4stry/settlement"
)

// Coordinator holds every handle the upload/download/delete operations
// need. All fields are safe for concurrent use by multiple request
// handlers.
type Coordinator struct {
	Table      *membership.Table
	Engine     *placement.Engine
	Registry   *registry.Registry
	Challenges *challenge.Table
	Ledger     settlement.LedgerClient
	LedgerAddr string // the coordinator's own ledger account address

	HTTPClient *http.Client
	ScratchDir string
	Logger     *log.Logger
	ThreadGroup *threadgroup.ThreadGroup

	mu         sync.Mutex
	placements map[string]*modules.PlacementRecord

	staged *stagedArtifacts

	now func() time.Time
}

// New constructs a Coordinator. scratchDir is created if it does not
// exist.
func New(table *membership.Table, engine *placement.Engine, reg *registry.Registry, challenges *challenge.Table, ledger settlement.LedgerClient, ledgerAddr, scratchDir string, logger *log.Logger) *Coordinator {
	return &Coordinator{
		Table:       table,
		Engine:      engine,
		Registry:    reg,
		Challenges:  challenges,
		Ledger:      ledger,
		LedgerAddr:  ledgerAddr,
		HTTPClient:  &http.Client{},
		ScratchDir:  scratchDir,
		Logger:      logger,
		ThreadGroup: new(threadgroup.ThreadGroup),
		placements:  make(map[string]*modules.PlacementRecord),
		staged:      &stagedArtifacts{paths: make(map[string]string)},
		now:         time.Now,
	}
}

// getPlacement returns the placement record for filename, if any.
func (c *Coordinator) getPlacement(filename string) (*modules.PlacementRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.placements[filename]
	return p, ok
}

// putPlacement inserts or overwrites the placement record for filename.
// Insertion happens-before the caller's response is sent.
func (c *Coordinator) putPlacement(filename string, p *modules.PlacementRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placements[filename] = p
}

// deletePlacement removes the placement record for filename, reporting
// whether one existed.
func (c *Coordinator) deletePlacement(filename string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.placements[filename]
	delete(c.placements, filename)
	return ok
}

// context returns a background context; a real deployment might derive one
// from the incoming HTTP request, but no operation here needs request
// cancellation beyond what the HTTP server itself provides.
func (c *Coordinator) context() context.Context {
	return context.Background()
}
