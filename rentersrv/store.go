// Package rentersrv implements the renter shard server: the process a
// storage peer runs to expose opaque blob storage to a coordinator, plus
// the registration/heartbeat client loop that keeps the coordinator's
// membership table current.
//
// The placeholder-capacity-file allocation mirrors
// modules/host/contractmanager/storagefolderadd.go (sectorFile.Truncate to
// reserve disk space up front); the registration/heartbeat loop mirrors
// modules/gateway/peers.go's periodic-dial-and-retry shape, adapted from
// "dial peers" to "heartbeat one coordinator".
package rentersrv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Lykaioss/s4stry/modules"
)

// placeholderName is the sparse file AllocatePlaceholder reserves capacity
// in; it is excluded from usedBytes accounting since it isn't a shard.
const placeholderName = ".capacity-reservation"

// Store is a renter's on-disk blob storage. The zero value is not usable;
// use NewStore. usedBytes is a best-effort in-memory counter of shard bytes
// on disk, not a durable quota ledger; it is rebuilt from the directory
// listing on every restart.
type Store struct {
	mu        sync.Mutex
	dir       string
	capacity  uint64
	usedBytes uint64
}

// NewStore creates a Store rooted at dir, creating dir if necessary, and
// seeds usedBytes from whatever shards already exist there (a restart
// resuming an existing data directory).
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("rentersrv: creating blob directory: %w", err)
	}
	s := &Store{dir: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("rentersrv: listing blob directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == placeholderName {
			continue
		}
		if info, err := e.Info(); err == nil {
			s.usedBytes += uint64(info.Size())
		}
	}
	return s, nil
}

// sanitize maps a blob name to a safe on-disk filename: blob names are
// coordinator-chosen and conventionally shard_<i>_replica_<j>_<filename>,
// but the embedded filename is client-supplied, so path separators are
// neutralised rather than trusted.
func sanitize(blobName string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "__")
	return r.Replace(blobName)
}

// StoreShard writes data under blobName, overwriting any prior contents.
// It rejects the write with modules.ErrRenterFull if doing so would push
// usedBytes past the advertised capacity; a blobName that already exists
// is credited for its old size first, so re-stores of the same shard
// never spuriously trip the quota.
func (s *Store) StoreShard(blobName string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, sanitize(blobName))

	var oldSize uint64
	if info, err := os.Stat(path); err == nil {
		oldSize = uint64(info.Size())
	}
	projected := s.usedBytes - oldSize + uint64(len(data))
	if s.capacity > 0 && projected > s.capacity {
		return modules.ErrRenterFull
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	s.usedBytes = projected
	return nil
}

// RetrieveShard returns the bytes stored under blobName, or an error if
// absent.
func (s *Store) RetrieveShard(blobName string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, sanitize(blobName))
	return os.ReadFile(path)
}

// DeleteShard removes the blob stored under blobName. Deleting an absent
// blob is not an error.
func (s *Store) DeleteShard(blobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, sanitize(blobName))
	info, statErr := os.Stat(path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if statErr == nil {
		if size := uint64(info.Size()); size <= s.usedBytes {
			s.usedBytes -= size
		} else {
			s.usedBytes = 0
		}
	}
	return nil
}

// AllocatePlaceholder reserves advertised capacity on first startup by
// truncating a sparse placeholder file to size bytes, mirroring the
// storage-folder pre-allocation step referenced above. It is idempotent:
// re-running it against an existing placeholder just re-truncates to the
// same size.
func (s *Store) AllocatePlaceholder(size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, placeholderName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("rentersrv: creating capacity placeholder: %w", err)
	}
	defer f.Close()
	if err := f.Truncate(int64(size)); err != nil {
		return fmt.Errorf("rentersrv: reserving %d bytes: %w", size, err)
	}
	s.capacity = size
	return nil
}
