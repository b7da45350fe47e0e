package ledgerrpc

import (
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

// fakeLedger is an in-memory stand-in for the external ledger service,
// used only by this package's tests. It speaks the same framed,
// handler-name-dispatched wire protocol as the production client expects,
// mirroring modules/gateway/rpc.go's threadedHandleConn dispatch loop, but
// is not a reimplementation of the real ledger (persistence, the real
// account model, etc. live outside this repo entirely).
type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]float64
	nextAddr int
	listener net.Listener
}

func newFakeLedger(t *testing.T) (*fakeLedger, string) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	fl := &fakeLedger{balances: make(map[string]float64), listener: l}
	go fl.serve()
	t.Cleanup(func() { l.Close() })
	return fl, l.Addr().String()
}

func (fl *fakeLedger) serve() {
	for {
		conn, err := fl.listener.Accept()
		if err != nil {
			return
		}
		go fl.handleConn(conn)
	}
}

func (fl *fakeLedger) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		var id handlerName
		if _, err := io.ReadFull(conn, id[:]); err != nil {
			return
		}
		switch id {
		case newHandlerName(rpcCreateAccount):
			var req CreateAccountRequest
			if readFrame(conn, &req) != nil {
				return
			}
			fl.mu.Lock()
			fl.nextAddr++
			addr := fmt.Sprintf("addr-%d", fl.nextAddr)
			fl.balances[addr] = req.InitialBalance
			fl.mu.Unlock()
			writeFrame(conn, &CreateAccountResponse{Address: addr})
		case newHandlerName(rpcGetBalance):
			var req GetBalanceRequest
			if readFrame(conn, &req) != nil {
				return
			}
			fl.mu.Lock()
			bal, ok := fl.balances[req.Address]
			fl.mu.Unlock()
			if !ok {
				writeFrame(conn, &GetBalanceResponse{Err: "unknown address"})
				continue
			}
			writeFrame(conn, &GetBalanceResponse{Amount: bal})
		case newHandlerName(rpcSendMoney):
			var req SendMoneyRequest
			if readFrame(conn, &req) != nil {
				return
			}
			fl.mu.Lock()
			if fl.balances[req.Sender] < req.Amount {
				fl.mu.Unlock()
				writeFrame(conn, &SendMoneyResponse{Err: "insufficient balance"})
				continue
			}
			fl.balances[req.Sender] -= req.Amount
			fl.balances[req.Receiver] += req.Amount
			fl.mu.Unlock()
			writeFrame(conn, &SendMoneyResponse{
				TransactionHash: fmt.Sprintf("tx-%d", time.Now().UnixNano()),
				Sender:          req.Sender,
				Receiver:        req.Receiver,
				Amount:          req.Amount,
				Timestamp:       time.Now(),
			})
		default:
			return
		}
	}
}
