// Package registry implements the public-key registry: a username ->
// PEM-encoded RSA public key mapping, persisted to a local JSON file
// after every mutation, never auto-expired.
//
// The save/load shape mirrors modules/gateway/persist.go's save/load
// pair, adapted to use the persist package's Metadata-tagged JSON helper
// instead of a bare json.Encoder so that a registry file from an
// incompatible version is rejected rather than silently misparsed.
package registry

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"sync"

	"github.com/Lykaioss/s4stry/persist"
)

var meta = persist.Metadata{Header: "s4stry Public Key Registry", Version: "1.0"}

// ErrInvalidPEM is returned by Register when the supplied key is not a
// parseable PEM-encoded RSA public key.
var ErrInvalidPEM = errors.New("registry: not a valid PEM-encoded RSA public key")

// Registry is the coordinator's public-key registry.
type Registry struct {
	mu       sync.RWMutex
	keys     map[string]string // username -> PEM text, persisted verbatim
	filename string
}

// New creates a Registry backed by filename. If filename already exists,
// its contents are loaded; if it doesn't, the registry starts empty (first
// Register call creates the file).
func New(filename string) (*Registry, error) {
	r := &Registry{keys: make(map[string]string), filename: filename}
	if _, err := os.Stat(filename); err == nil {
		if err := persist.LoadJSON(meta, &r.keys, filename); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or overwrites the PEM-encoded public key for username,
// then persists the registry. Entries are append-or-overwrite; they are
// never auto-expired.
func (r *Registry) Register(username, pemKey string) error {
	if _, err := parsePublicKey(pemKey); err != nil {
		return ErrInvalidPEM
	}

	r.mu.Lock()
	r.keys[username] = pemKey
	snapshot := make(map[string]string, len(r.keys))
	for k, v := range r.keys {
		snapshot[k] = v
	}
	r.mu.Unlock()

	return persist.SaveJSON(meta, snapshot, r.filename)
}

// Lookup returns the parsed RSA public key for username, if registered.
func (r *Registry) Lookup(username string) (*rsa.PublicKey, bool) {
	r.mu.RLock()
	pemKey, ok := r.keys[username]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	key, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, false
	}
	return key, true
}

func parsePublicKey(pemKey string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, ErrInvalidPEM
	}
	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}
	anyPub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, ErrInvalidPEM
	}
	rsaPub, ok := anyPub.(*rsa.PublicKey)
	if !ok {
		return nil, ErrInvalidPEM
	}
	return rsaPub, nil
}
