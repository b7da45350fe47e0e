package ledgerrpc

import "time"

// Request/response pairs for the three ledger RPCs. Each call writes a
// handlerName frame identifying the RPC, then a request frame, then reads
// exactly one response frame.

const (
	rpcCreateAccount = "CreatAcct" // truncated to 8 bytes by newHandlerName
	rpcGetBalance    = "GetBalanc"
	rpcSendMoney     = "SendMoney"
)

// CreateAccountRequest is sent to create_account(username, initial_balance).
type CreateAccountRequest struct {
	Username       string
	InitialBalance float64
}

// CreateAccountResponse carries the newly created account's address.
type CreateAccountResponse struct {
	Address string
	Err     string
}

// GetBalanceRequest is sent to get_balance(address).
type GetBalanceRequest struct {
	Address string
}

// GetBalanceResponse carries the account's balance.
type GetBalanceResponse struct {
	Amount float64
	Err    string
}

// SendMoneyRequest is sent to send_money(sender, receiver, amount).
type SendMoneyRequest struct {
	Sender   string
	Receiver string
	Amount   float64
}

// SendMoneyResponse carries the transfer receipt.
type SendMoneyResponse struct {
	TransactionHash string
	Sender          string
	Receiver        string
	Amount          float64
	Timestamp       time.Time
	Err             string
}
