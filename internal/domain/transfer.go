package domain

import "github.com/shopspring/decimal"

// NativeTransfer is a value-moving transaction denominated in ETH.
type NativeTransfer struct {
	BlockNumber string `json:"block_number,omitempty"`
	Timestamp   int64  `json:"ts"` // seconds since epoch
	Hash        string `json:"hash,omitempty"`
	From        string `json:"from"`
	To          string `json:"to"`
	ValueWei    string `json:"value_wei"`
	GasPrice    string `json:"gas_price,omitempty"`
	GasUsed     string `json:"gas_used,omitempty"`
	Failed      bool   `json:"failed,omitempty"`
}

// TokenTransfer is an ERC-20 transfer touching the wallet.
type TokenTransfer struct {
	Timestamp       int64  `json:"ts"`
	TokenSymbol     string `json:"token_symbol"`
	TokenName       string `json:"token_name,omitempty"`
	ContractAddress string `json:"contract_address"`
	From            string `json:"from"`
	To              string `json:"to"`
}

// NFTTransfer is an ERC-721 transfer touching the wallet.
type NFTTransfer struct {
	Timestamp       int64  `json:"ts"`
	TokenName       string `json:"token_name"`
	TokenID         string `json:"token_id"`
	ContractAddress string `json:"contract_address"`
}

// ActivityAggregate is one wallet's raw activity handed to the badge engine.
// Transactions must be ordered ascending by timestamp; the first and last
// elements determine wallet age and recency.
type ActivityAggregate struct {
	Transactions   []NativeTransfer
	TokenTransfers []TokenTransfer
	NFTTransfers   []NFTTransfer
	Balance        decimal.Decimal // ETH
	WalletAgeDays  int
}
