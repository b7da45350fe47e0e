package modules

import "errors"

// Sentinel errors returned by the coordinator's subsystems. The HTTP surface
// (api package) maps each of these to a specific status code.
var (
	// ErrNoRenters is returned when the membership table is empty after a
	// sweep, so no upload placement can be made. Maps to 503.
	ErrNoRenters = errors.New("no-renters: no live renters available")

	// ErrBadRequest covers non-positive payments, empty filenames, and
	// missing required fields. Maps to 400.
	ErrBadRequest = errors.New("bad-request: invalid request parameters")

	// ErrRenterNotFound is returned by heartbeat when the renter ID is not
	// in the membership table. Maps to 404.
	ErrRenterNotFound = errors.New("not-found: unknown renter")

	// ErrFileNotFound is returned when no placement record exists for a
	// filename. Maps to 404.
	ErrFileNotFound = errors.New("not-found: unknown file")

	// ErrUnauthorized covers unregistered public keys, missing active
	// challenges, and challenge-response mismatches. Maps to 401.
	ErrUnauthorized = errors.New("unauthorized: challenge authentication failed")

	// ErrIncomplete is returned by reconstruction when at least one shard
	// has no live replica. Maps to 500 ("incomplete").
	ErrIncomplete = errors.New("partial-retrieval: one or more shards have no live replica")

	// ErrUpstreamFailure covers renter and ledger transport errors that the
	// coordinator does not retry transparently. Maps to 500.
	ErrUpstreamFailure = errors.New("upstream-fail: a remote peer or ledger RPC failed")

	// ErrEmptyFile is returned when an upload's file body has zero length.
	ErrEmptyFile = errors.New("bad-request: file is empty")

	// ErrRenterFull is returned by a renter's store-shard handler when
	// writing the shard would exceed the renter's advertised capacity.
	// Maps to 507.
	ErrRenterFull = errors.New("insufficient-storage: renter capacity exhausted")
)
