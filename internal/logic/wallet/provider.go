package wallet

import (
	"context"
	"errors"
	"math/big"

	"bluemercantile/internal/config"
)

// Session-manager precondition errors. Handlers surface these as
// {success:false, message} responses.
var (
	ErrProviderUnavailable = errors.New("wallet provider is not available")
	ErrNotConnected        = errors.New("wallet not connected")
	ErrWrongNetwork        = errors.New("please switch to the Sepolia network")
	ErrUnknownChain        = errors.New("chain is not known to the provider")
)

// Event types delivered on the provider's event channel.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

type Event struct {
	Type     string
	Accounts []string // accountsChanged: current account list
	ChainId  *big.Int // chainChanged: new chain id
}

// Provider is the chain/wallet client the session manager delegates to.
// The production implementation wraps an ethclient against the configured
// chain registry; tests inject a mock.
type Provider interface {
	// RequestAccounts asks for account access and returns the authorized
	// addresses, primary first.
	RequestAccounts(ctx context.Context) ([]string, error)
	// ChainID reads the active chain id.
	ChainID(ctx context.Context) (*big.Int, error)
	// SwitchChain moves the provider to the chain with the given id.
	// Returns ErrUnknownChain when the chain is not registered.
	SwitchChain(ctx context.Context, chainId int64) error
	// AddChain registers chain parameters so a later SwitchChain can find them.
	AddChain(ctx context.Context, conf config.ChainConf) error
	// NativeBalance returns the native-currency balance in wei.
	NativeBalance(ctx context.Context, address string) (*big.Int, error)
	// TokenBalance returns the token contract balance in base units.
	TokenBalance(ctx context.Context, address string) (*big.Int, error)
	// TransferToken submits a token transfer and returns the tx hash.
	TransferToken(ctx context.Context, to string, amount *big.Int) (string, error)
	// WaitReceipt blocks until the transaction is included and reports
	// whether it succeeded.
	WaitReceipt(ctx context.Context, hash string) (bool, error)
	// Events streams account/chain change notifications.
	Events() <-chan Event
	Close()
}
