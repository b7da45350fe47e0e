// Package challenge implements the nonce-based challenge/response
// authentication protocol bound to one download: a fresh 128-bit nonce is
// generated per username, stored as the single outstanding challenge for
// that user, and returned OAEP-encrypted under the user's registered RSA
// public key. Verification is single-use: the stored entry is consumed
// (removed) whether it matches or not.
//
// Sia's own authentication is Ed25519 transaction signing, a different
// mechanism entirely, so this package is original to this domain. Nonce
// generation draws on fastrand (see crypto/rand.go) rather than reaching
// for crypto/rand directly, and the table shape (map + mutex +
// overwrite-on-reissue, consume-on-verify) mirrors that package's
// discipline around a shared mutable table.
package challenge

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/NebulousLabs/fastrand"
	"github.com/Lykaioss/s4stry/modules"
)

// entry is one outstanding challenge.
type entry struct {
	nonce    string
	issuedAt time.Time
}

// Table is the coordinator's active-challenge table: at most one
// outstanding nonce per username.
type Table struct {
	mu  sync.Mutex
	byUser map[string]entry
	ttl time.Duration
	now func() time.Time
}

// New creates an empty active-challenge table. ttl bounds how long an
// issued challenge remains valid before verification; a zero ttl disables
// the bound.
func New(ttl time.Duration) *Table {
	return &Table{byUser: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Issue generates a fresh 128-bit nonce (rendered as a 36-char canonical
// UUID-shaped string), stores it for username (overwriting any prior
// entry), and returns it OAEP/MGF1-SHA256-encrypted under pub, base64
// encoded, ready to place in the download response body.
func (t *Table) Issue(username string, pub *rsa.PublicKey) (string, error) {
	nonce := newNonce()

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, []byte(nonce), nil)
	if err != nil {
		return "", fmt.Errorf("challenge: OAEP encryption failed: %w", err)
	}

	t.mu.Lock()
	t.byUser[username] = entry{nonce: nonce, issuedAt: t.now()}
	t.mu.Unlock()

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Verify consumes the active challenge for username (if any) and reports
// whether response matches it. The entry is removed whether or not it
// matches, and whether or not it had already expired; consumption is
// unconditional on any verify attempt.
func (t *Table) Verify(username, response string) error {
	t.mu.Lock()
	e, ok := t.byUser[username]
	delete(t.byUser, username)
	t.mu.Unlock()

	if !ok {
		return modules.ErrUnauthorized
	}
	if t.ttl > 0 && t.now().Sub(e.issuedAt) > t.ttl {
		return modules.ErrUnauthorized
	}
	if response != e.nonce {
		return modules.ErrUnauthorized
	}
	return nil
}

// newNonce returns a random 128-bit value rendered in canonical
// 8-4-4-4-12 hex-with-dashes form (36 characters). No UUID version/variant
// bits are fixed since the identifier only needs to be unguessable and
// unique, not RFC-4122 conformant.
func newNonce() string {
	b := fastrand.Bytes(16)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
