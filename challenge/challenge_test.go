package challenge

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"
)

func genKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func decrypt(t *testing.T, priv *rsa.PrivateKey, b64 string) string {
	t.Helper()
	ciphertext, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatal(err)
	}
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
	if err != nil {
		t.Fatal(err)
	}
	return string(plaintext)
}

func TestIssueThenVerifySucceeds(t *testing.T) {
	key := genKey(t)
	table := New(0)

	enc, err := table.Issue("alice", &key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	nonce := decrypt(t, key, enc)

	if err := table.Verify("alice", nonce); err != nil {
		t.Fatalf("expected verification to succeed, got %v", err)
	}
}

func TestReplayAfterSuccessfulVerifyFails(t *testing.T) {
	key := genKey(t)
	table := New(0)

	enc, _ := table.Issue("alice", &key.PublicKey)
	nonce := decrypt(t, key, enc)

	if err := table.Verify("alice", nonce); err != nil {
		t.Fatal(err)
	}
	// Replaying the same response with no new challenge issued must fail:
	// the entry was consumed by the first verify.
	if err := table.Verify("alice", nonce); err == nil {
		t.Fatal("expected replayed verification to fail")
	}
}

func TestWrongResponseConsumesChallenge(t *testing.T) {
	key := genKey(t)
	table := New(0)

	first, _ := table.Issue("alice", &key.PublicKey)
	firstNonce := decrypt(t, key, first)
	if err := table.Verify("alice", "wrong-nonce"); err == nil {
		t.Fatal("expected mismatched response to fail")
	}
	// The entry should be consumed even on failure; the correct nonce now
	// has nothing to match against.
	if err := table.Verify("alice", firstNonce); err == nil {
		t.Fatal("expected the original nonce to be rejected after a failed verify consumed it")
	}
	enc, _ := table.Issue("alice", &key.PublicKey)
	nonce := decrypt(t, key, enc)
	if err := table.Verify("alice", nonce); err != nil {
		t.Fatalf("fresh challenge after a failed verify should still work: %v", err)
	}
}

func TestNewChallengeOverwritesPrior(t *testing.T) {
	key := genKey(t)
	table := New(0)

	enc1, _ := table.Issue("alice", &key.PublicKey)
	nonce1 := decrypt(t, key, enc1)
	table.Issue("alice", &key.PublicKey) // overwrite before verifying nonce1

	if err := table.Verify("alice", nonce1); err == nil {
		t.Fatal("expected stale nonce to be rejected after overwrite")
	}
}

func TestVerifyWithNoActiveChallengeFails(t *testing.T) {
	table := New(0)
	if err := table.Verify("nobody", "anything"); err == nil {
		t.Fatal("expected verification with no active challenge to fail")
	}
}

func TestExpiredChallengeFailsVerification(t *testing.T) {
	key := genKey(t)
	fakeNow := time.Now()
	table := New(5 * time.Second)
	table.now = func() time.Time { return fakeNow }

	enc, _ := table.Issue("alice", &key.PublicKey)
	nonce := decrypt(t, key, enc)

	fakeNow = fakeNow.Add(10 * time.Second)
	if err := table.Verify("alice", nonce); err == nil {
		t.Fatal("expected expired challenge to be rejected")
	}
}
