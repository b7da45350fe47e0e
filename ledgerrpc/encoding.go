package ledgerrpc

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

// maxMessageSize bounds a single framed RPC message, guarding against a
// corrupt or hostile length prefix causing an unbounded allocation, the
// same way encoding.ReadPrefix's maxLen guard does.
const maxMessageSize = 1 << 20 // 1 MiB; ledger messages are small structs

// handlerName is an 8-byte, zero-padded identifier written ahead of every
// RPC call so the receiving side knows which handler to invoke. Grounded
// on modules/gateway/rpc.go's rpcID/handlerName.
type handlerName [8]byte

func newHandlerName(name string) handlerName {
	var id handlerName
	copy(id[:], name)
	return id
}

func (id handlerName) String() string {
	n := bytes.IndexByte(id[:], 0)
	if n < 0 {
		n = len(id)
	}
	return string(id[:n])
}

// writeFrame writes a 4-byte big-endian length prefix followed by the
// gob-encoded payload. The encoding package elsewhere in this corpus
// implements a general reflect-based marshaler for this purpose
// (encoding/marshal.go); ledger RPC only ever carries three small,
// fixed-shape structs, so this uses stdlib encoding/gob under the same
// length-prefixed framing instead of reimplementing a general marshaler
// (see DESIGN.md).
func writeFrame(w io.Writer, v interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	if buf.Len() > maxMessageSize {
		return fmt.Errorf("ledgerrpc: encoded message (%d bytes) exceeds max size", buf.Len())
	}
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readFrame reads one length-prefixed, gob-encoded payload into v.
func readFrame(r io.Reader, v interface{}) error {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(lenPrefix[:])
	if n > maxMessageSize {
		return fmt.Errorf("ledgerrpc: incoming message (%d bytes) exceeds max size", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(payload)).Decode(v)
}
