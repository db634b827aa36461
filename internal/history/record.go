package history

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/yolodolo42/ethwallet/internal/chain"
)

// TransactionRecord is one entry of an account's normal transaction list as
// reported by Etherscan. Every field is the raw decimal or hex string from
// the API.
type TransactionRecord struct {
	BlockNumber       string `json:"blockNumber"`
	TimeStamp         string `json:"timeStamp"`
	Hash              string `json:"hash"`
	Nonce             string `json:"nonce"`
	BlockHash         string `json:"blockHash"`
	TransactionIndex  string `json:"transactionIndex"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	Gas               string `json:"gas"`
	GasPrice          string `json:"gasPrice"`
	IsError           string `json:"isError"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	Input             string `json:"input"`
	ContractAddress   string `json:"contractAddress"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	Confirmations     string `json:"confirmations"`
	MethodID          string `json:"methodId"`
	FunctionName      string `json:"functionName"`
}

// Time returns the block time, or the zero time if the timestamp is not a
// number.
func (r TransactionRecord) Time() time.Time {
	secs, err := strconv.ParseInt(r.TimeStamp, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// ValueWei returns the transferred value. ok is false when the field is not
// a decimal integer.
func (r TransactionRecord) ValueWei() (*big.Int, bool) {
	return new(big.Int).SetString(r.Value, 10)
}

// ValueEther renders the value in ether with eight decimals.
func (r TransactionRecord) ValueEther() string {
	wei, ok := r.ValueWei()
	if !ok {
		return ""
	}
	return chain.FormatEther(wei)
}

// IsOutgoing reports whether address sent this transaction.
func (r TransactionRecord) IsOutgoing(address common.Address) bool {
	return strings.EqualFold(r.From, address.Hex())
}

// Failed reports whether execution reverted.
func (r TransactionRecord) Failed() bool {
	return r.IsError == "1"
}

// Counterparty returns the other side of the transfer from address's point
// of view.
func (r TransactionRecord) Counterparty(address common.Address) string {
	if r.IsOutgoing(address) {
		return r.To
	}
	return r.From
}

// ShortFrom abbreviates the sender as 0x12...abcd.
func (r TransactionRecord) ShortFrom() string { return shorten(r.From) }

// ShortTo abbreviates the recipient as 0x12...abcd.
func (r TransactionRecord) ShortTo() string { return shorten(r.To) }

func shorten(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
