package orchestrator

import (
	"fmt"
	"os"
	"sync"

	"github.com/Lykaioss/s4stry/build"
	"github.com/Lykaioss/s4stry/modules"
	"github.com/Lykaioss/s4stry/reconstruct"
	"github.com/Lykaioss/s4stry/settlement"
)

// stagedArtifacts tracks, per filename, the scratch path of a reconstructed
// file awaiting delivery after a successful verify-challenge. Entries are
// created by BeginDownload and consumed by VerifyChallenge; the janitor
// (reconstruct.Janitor) independently removes the file after its TTL as a
// fallback if verification never happens. A Coordinator owns exactly one
// stagedArtifacts instance (see Coordinator.staged), not a package-level
// singleton.
type stagedArtifacts struct {
	mu    sync.Mutex
	paths map[string]string
}

func (s *stagedArtifacts) put(filename, path string) {
	s.mu.Lock()
	s.paths[filename] = path
	s.mu.Unlock()
}

func (s *stagedArtifacts) take(filename string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.paths[filename]
	if ok {
		delete(s.paths, filename)
	}
	return path, ok
}

// BeginDownload is phase 1 of a two-phase download: verify the username is
// registered and the file has a placement, reconstruct the file now (not
// lazily, since a reconstruction failure at challenge time must surface as
// a server error before any nonce is stored), stage the result, and return
// the OAEP-encrypted nonce for the client to decrypt and echo back.
func (c *Coordinator) BeginDownload(filename, username string) (string, error) {
	pub, ok := c.Registry.Lookup(username)
	if !ok {
		return "", modules.ErrUnauthorized
	}

	record, ok := c.getPlacement(filename)
	if !ok {
		return "", modules.ErrFileNotFound
	}

	n := len(record.ShardIndices())
	data, err := reconstruct.Reconstruct(c.context(), c.HTTPClient, c.Table, record, n)
	if err != nil {
		return "", err
	}

	path, err := c.stageArtifact(filename, data)
	if err != nil {
		return "", fmt.Errorf("%w: staging reconstructed artifact: %v", modules.ErrUpstreamFailure, err)
	}
	reconstruct.Janitor(c.ThreadGroup, path, modules.ReconstructionTTL)
	c.staged.put(filename, path)

	// Challenge insertion happens-before the challenge bytes are returned.
	return c.Challenges.Issue(username, pub)
}

// VerifyChallenge is phase 2 of the download handshake: consume the active
// challenge, and on a match, mark the placement retrieved, settle the
// ledger, and return the staged file body. Challenge removal
// happens-before ledger settlement begins, and settlement happens after
// staging but before delivery; a settlement failure never blocks delivery.
func (c *Coordinator) VerifyChallenge(filename, username, response string) ([]byte, error) {
	if err := c.Challenges.Verify(username, response); err != nil {
		return nil, err
	}

	path, ok := c.staged.take(filename)
	if !ok {
		// The staged artifact already expired (TTL janitor beat us to it)
		// or was never created; caller must request a fresh challenge.
		return nil, modules.ErrFileNotFound
	}
	data, err := os.ReadFile(path)
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		c.Logger.Printf("WARN: download: %v", build.ExtendErr("removing staged artifact "+path, rmErr))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading staged artifact: %v", modules.ErrUpstreamFailure, err)
	}

	record, ok := c.getPlacement(filename)
	if ok {
		record.Retrieved = true
		if c.Ledger != nil {
			settlement.Settle(c.Ledger, c.Table, c.LedgerAddr, record, c.Logger)
		}
	}

	return data, nil
}

func (c *Coordinator) stageArtifact(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(c.ScratchDir, 0700); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(c.ScratchDir, "download-*-"+sanitizeForTempName(filename))
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
