package rentersrv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lykaioss/s4stry/modules"
)

func TestStoreShardRetrieveShardRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.StoreShard("shard_0_replica_0_f.txt", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	data, err := store.RetrieveShard("shard_0_replica_0_f.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want %q", data, "hello")
	}
}

func TestStoreShardOverwritesExisting(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store.StoreShard("b", []byte("first"))
	store.StoreShard("b", []byte("second"))
	data, err := store.RetrieveShard("b")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwrite to take effect, got %q", data)
	}
}

func TestRetrieveShardMissingReturnsError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.RetrieveShard("ghost"); err == nil {
		t.Fatal("expected an error retrieving a blob that was never stored")
	}
}

func TestDeleteShardOfAbsentBlobIsNotAnError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteShard("never-stored"); err != nil {
		t.Fatalf("expected deleting an absent blob to succeed, got %v", err)
	}
}

func TestDeleteShardRemovesBlob(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store.StoreShard("x", []byte("data"))
	if err := store.DeleteShard("x"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RetrieveShard("x"); err == nil {
		t.Fatal("expected blob to be gone after delete")
	}
}

func TestSanitizeNeutralisesPathSeparators(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	maliciousName := "shard_0_replica_0_../../etc/passwd"
	if err := store.StoreShard(maliciousName, []byte("x")); err != nil {
		t.Fatal(err)
	}
	// The written file must stay within dir; it must not have escaped via
	// traversal components in the (client-influenced) embedded filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Dir(filepath.Join(dir, e.Name())) != filepath.Clean(dir) {
			t.Fatalf("blob escaped the store directory: %v", e.Name())
		}
	}
}

func TestAllocatePlaceholderReservesSize(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.AllocatePlaceholder(4096); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, ".capacity-reservation"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 4096 {
		t.Fatalf("expected placeholder size 4096, got %d", info.Size())
	}
}

func TestStoreShardRejectsOnceCapacityExhausted(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.AllocatePlaceholder(8); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreShard("a", []byte("12345678")); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreShard("b", []byte("x")); !errors.Is(err, modules.ErrRenterFull) {
		t.Fatalf("expected ErrRenterFull once capacity is exhausted, got %v", err)
	}
}

func TestStoreShardOverwriteDoesNotDoubleCount(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.AllocatePlaceholder(8); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreShard("a", []byte("12345678")); err != nil {
		t.Fatal(err)
	}
	// Re-storing the same blob credits back its old size first, so it must
	// not spuriously trip the just-filled quota.
	if err := store.StoreShard("a", []byte("abcdefgh")); err != nil {
		t.Fatalf("re-storing the same blob at full capacity should succeed, got %v", err)
	}
}

func TestNewStoreSeedsUsedBytesFromExistingShards(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.StoreShard("a", []byte("12345678")); err != nil {
		t.Fatal(err)
	}
	if err := store.AllocatePlaceholder(8); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	reopened.capacity = 8
	if err := reopened.StoreShard("b", []byte("x")); !errors.Is(err, modules.ErrRenterFull) {
		t.Fatalf("expected restart to recover usedBytes from disk and reject, got %v", err)
	}
}
