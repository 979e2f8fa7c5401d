package types

import "bluemercantile/internal/model"

// SessionView is the wire shape of the wallet session state.
type SessionView struct {
	Address          string `json:"address"`
	IsConnected      bool   `json:"isConnected"`
	IsCorrectNetwork bool   `json:"isCorrectNetwork"`
	EthBalance       string `json:"ethBalance"`
	TokenBalance     string `json:"tokenBalance"`
	IsLoading        bool   `json:"isLoading"`
	Error            string `json:"error,omitempty"`
}

type WalletSessionResp struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Session SessionView `json:"session"`
}

type SwitchNetworkResp struct {
	Success bool        `json:"success"`
	Session SessionView `json:"session"`
}

type TransferReq struct {
	To     string `json:"to" validate:"required"`
	Amount string `json:"amount" validate:"required"` // human readable, e.g. "1.5"
}

type TransferResp struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Hash    string `json:"hash,omitempty"`
}

type TransactionsResp struct {
	Success bool                `json:"success"`
	Data    []model.LedgerEntry `json:"data"`
}
