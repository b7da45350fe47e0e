// Package ledgerrpc is the coordinator's client for the external ledger
// service: create_account, get_balance, send_money over a synchronous
// request/reply RPC on a single TCP connection established at startup.
// The ledger service's own implementation lives outside this repo; this
// package only speaks the client half of the protocol.
//
// The handler-name-then-payload framing and single-shared-connection shape
// mirrors modules/gateway/rpc.go's Gateway.RPC, narrowed from "one call
// per open stream over a multiplexed session" to "one call at a time over
// a single plain net.Conn": a single TCP connection with reconnection
// left to the caller, no multiplexing layer.
package ledgerrpc

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/NebulousLabs/errors"
	"github.com/Lykaioss/s4stry/modules"
)

// Client is a connection to a ledger service. It is safe for concurrent
// use: calls are serialized internally since the wire protocol has
// exactly one in-flight request at a time per connection.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial establishes the single TCP connection to addr that the client will
// reuse for every subsequent call.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ledgerrpc: dial %v: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call sends handlerName then req, and decodes the single response frame
// into resp, under the client's mutex and a deadline of timeout.
func (c *Client) call(handler string, timeout time.Duration, req, resp interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(timeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	id := newHandlerName(handler)
	if _, err := c.conn.Write(id[:]); err != nil {
		return errors.AddContext(modules.ErrUpstreamFailure, "writing handler name: "+err.Error())
	}
	if err := writeFrame(c.conn, req); err != nil {
		return errors.AddContext(modules.ErrUpstreamFailure, "writing request frame: "+err.Error())
	}
	if err := readFrame(c.conn, resp); err != nil {
		return errors.AddContext(modules.ErrUpstreamFailure, "reading response frame: "+err.Error())
	}
	return nil
}

// CreateAccount creates a ledger account for username with the given
// initial balance and returns its address.
func (c *Client) CreateAccount(username string, initialBalance float64, timeout time.Duration) (string, error) {
	req := CreateAccountRequest{Username: username, InitialBalance: initialBalance}
	var resp CreateAccountResponse
	if err := c.call(rpcCreateAccount, timeout, &req, &resp); err != nil {
		return "", err
	}
	if resp.Err != "" {
		return "", errors.AddContext(modules.ErrUpstreamFailure, resp.Err)
	}
	return resp.Address, nil
}

// GetBalance returns the balance of the account at address.
func (c *Client) GetBalance(address string, timeout time.Duration) (float64, error) {
	req := GetBalanceRequest{Address: address}
	var resp GetBalanceResponse
	if err := c.call(rpcGetBalance, timeout, &req, &resp); err != nil {
		return 0, err
	}
	if resp.Err != "" {
		return 0, errors.AddContext(modules.ErrUpstreamFailure, resp.Err)
	}
	return resp.Amount, nil
}

// SendMoney transfers amount from sender to receiver and returns the
// resulting receipt.
func (c *Client) SendMoney(sender, receiver string, amount float64, timeout time.Duration) (modules.Receipt, error) {
	req := SendMoneyRequest{Sender: sender, Receiver: receiver, Amount: amount}
	var resp SendMoneyResponse
	if err := c.call(rpcSendMoney, timeout, &req, &resp); err != nil {
		return modules.Receipt{}, err
	}
	if resp.Err != "" {
		return modules.Receipt{}, errors.AddContext(modules.ErrUpstreamFailure, resp.Err)
	}
	return modules.Receipt{
		TransactionHash: resp.TransactionHash,
		Sender:          resp.Sender,
		Receiver:        resp.Receiver,
		Amount:          resp.Amount,
		Timestamp:       resp.Timestamp,
	}, nil
}
