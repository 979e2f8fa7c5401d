package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"bluemercantile/internal/config"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/zeromicro/go-zero/core/logx"
)

// ERC20 method ids used for hand-packed calldata.
var (
	// transfer(address to, uint256 amount) -> 0xa9059cbb
	transferMethodId = []byte{0xa9, 0x05, 0x9c, 0xbb}
	// balanceOf(address owner) -> 0x70a08231
	balanceOfMethodId = []byte{0x70, 0xa0, 0x82, 0x31}
)

const receiptPollInterval = 3 * time.Second

const receiptTimeout = 2 * time.Minute

// EvmProvider is the production Provider: a hot wallet over an ethclient
// against the configured chain registry. 账户列表永远只有配置的那一个热钱包
// 地址；SwitchChain 通过重连目标链的 RPC 节点实现。
type EvmProvider struct {
	mu         sync.Mutex
	chains     map[string]config.ChainConf
	active     config.ChainConf
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	token      common.Address
	events     chan Event
	closed     bool
}

// NewEvmProvider dials the active chain and derives the hot wallet address
// from the configured private key.
func NewEvmProvider(chains map[string]config.ChainConf, activeChain, privateKeyHex, contractAddress string) (*EvmProvider, error) {
	active, ok := chains[activeChain]
	if !ok {
		return nil, fmt.Errorf("unknown active chain: %s", activeChain)
	}

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, errors.New("invalid wallet private key")
	}

	client, err := ethclient.Dial(active.RpcUrl)
	if err != nil {
		return nil, errors.New("failed to connect to chain")
	}

	// registry 拷贝一份，后续 AddChain 不影响外部配置
	registry := make(map[string]config.ChainConf, len(chains))
	for name, conf := range chains {
		registry[name] = conf
	}

	return &EvmProvider{
		chains:     registry,
		active:     active,
		client:     client,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		token:      common.HexToAddress(contractAddress),
		events:     make(chan Event, 8),
	}, nil
}

func (p *EvmProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return []string{p.address.Hex()}, nil
}

func (p *EvmProvider) ChainID(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	return client.ChainID(ctx)
}

// SwitchChain redials the RPC of the registered chain with the requested id
// and emits a chainChanged event. ErrUnknownChain when nothing in the registry
// carries that id (the wallet_addEthereumChain analogue is AddChain).
func (p *EvmProvider) SwitchChain(ctx context.Context, chainId int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active.ChainId == chainId {
		return nil
	}

	var target *config.ChainConf
	for _, conf := range p.chains {
		if conf.ChainId == chainId {
			c := conf
			target = &c
			break
		}
	}
	if target == nil {
		return ErrUnknownChain
	}

	client, err := ethclient.Dial(target.RpcUrl)
	if err != nil {
		return errors.New("failed to connect to chain")
	}

	p.client.Close()
	p.client = client
	p.active = *target

	logx.Infof("已切换到链 %s (chainId=%d)", target.Name, target.ChainId)
	p.emit(Event{Type: EventChainChanged, ChainId: big.NewInt(chainId)})
	return nil
}

func (p *EvmProvider) AddChain(ctx context.Context, conf config.ChainConf) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conf.Name == "" || conf.RpcUrl == "" || conf.ChainId == 0 {
		return errors.New("incomplete chain parameters")
	}
	p.chains[conf.Name] = conf
	logx.Infof("链 %s (chainId=%d) 已注册", conf.Name, conf.ChainId)
	return nil
}

func (p *EvmProvider) NativeBalance(ctx context.Context, address string) (*big.Int, error) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	return client.BalanceAt(ctx, common.HexToAddress(address), nil)
}

// TokenBalance calls balanceOf on the token contract. Callers treat a failure
// here as "contract not deployed yet" and fall back to zero.
func (p *EvmProvider) TokenBalance(ctx context.Context, address string) (*big.Int, error) {
	p.mu.Lock()
	client := p.client
	token := p.token
	p.mu.Unlock()

	if token == (common.Address{}) {
		return nil, errors.New("contract address not configured")
	}

	owner := common.HexToAddress(address)
	data := append([]byte{}, balanceOfMethodId...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)

	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(result), nil
}

// TransferToken builds, signs and submits an ERC20 transfer and returns the
// transaction hash.
func (p *EvmProvider) TransferToken(ctx context.Context, to string, amount *big.Int) (string, error) {
	p.mu.Lock()
	client := p.client
	token := p.token
	chainId := p.active.ChainId
	fromAddr := p.address
	privateKey := p.privateKey
	p.mu.Unlock()

	if token == (common.Address{}) {
		return "", errors.New("contract address not configured")
	}

	// 1. 构建 ERC20 transfer 调用数据
	data := buildTransferData(to, amount)

	// 2. 估算 gas
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %v", err)
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: fromAddr,
		To:   &token,
		Data: data,
	})
	if err != nil {
		logx.WithContext(ctx).Infof("ERC20 Gas 估算失败，使用默认值: %v", err)
		gasLimit = 100000
	}
	if gasLimit < 60000 {
		gasLimit = 60000
	}
	// 增加缓冲
	gasLimit = gasLimit * 120 / 100

	// 3. 获取 nonce
	nonce, err := client.PendingNonceAt(ctx, fromAddr)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %v", err)
	}

	// 4. 构建并签名交易
	tx := evmTypes.NewTx(&evmTypes.LegacyTx{
		Nonce:    nonce,
		To:       &token,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signedTx, err := evmTypes.SignTx(tx, evmTypes.NewEIP155Signer(big.NewInt(chainId)), privateKey)
	if err != nil {
		return "", errors.New("failed to sign transaction")
	}

	// 5. 发送交易
	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %v", err)
	}

	txHash := signedTx.Hash().Hex()
	logx.WithContext(ctx).Infof("交易已提交, TxHash: %s", txHash)
	return txHash, nil
}

// WaitReceipt polls for the inclusion receipt until the timeout and reports
// whether the transaction succeeded.
func (p *EvmProvider) WaitReceipt(ctx context.Context, hash string) (bool, error) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	txHash := common.HexToHash(hash)
	for {
		select {
		case <-waitCtx.Done():
			return false, waitCtx.Err()
		case <-ticker.C:
			receipt, err := client.TransactionReceipt(waitCtx, txHash)
			if err != nil {
				if err == ethereum.NotFound {
					// 交易尚未确认，继续等待
					continue
				}
				return false, err
			}
			return receipt.Status == evmTypes.ReceiptStatusSuccessful, nil
		}
	}
}

func (p *EvmProvider) Events() <-chan Event {
	return p.events
}

func (p *EvmProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.client.Close()
	close(p.events)
}

func (p *EvmProvider) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
		// 订阅方没有及时消费，丢弃事件而不是阻塞交易流程
	}
}

// buildTransferData packs transfer(address,uint256) calldata.
func buildTransferData(toAddress string, amount *big.Int) []byte {
	toAddr := common.HexToAddress(toAddress)

	data := append([]byte{}, transferMethodId...)
	data = append(data, common.LeftPadBytes(toAddr.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data
}
