package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"bluemercantile/internal/config"
	"bluemercantile/internal/constant"
	"bluemercantile/internal/model"
)

// Mock for Provider
type mockProvider struct {
	requestAccountsFunc func(ctx context.Context) ([]string, error)
	chainIDFunc         func(ctx context.Context) (*big.Int, error)
	switchChainFunc     func(ctx context.Context, chainId int64) error
	addChainFunc        func(ctx context.Context, conf config.ChainConf) error
	nativeBalanceFunc   func(ctx context.Context, address string) (*big.Int, error)
	tokenBalanceFunc    func(ctx context.Context, address string) (*big.Int, error)
	transferTokenFunc   func(ctx context.Context, to string, amount *big.Int) (string, error)
	waitReceiptFunc     func(ctx context.Context, hash string) (bool, error)
	events              chan Event
}

func newMockProvider() *mockProvider {
	return &mockProvider{events: make(chan Event, 8)}
}

func (m *mockProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if m.requestAccountsFunc != nil {
		return m.requestAccountsFunc(ctx)
	}
	return []string{"0xAlice"}, nil
}

func (m *mockProvider) ChainID(ctx context.Context) (*big.Int, error) {
	if m.chainIDFunc != nil {
		return m.chainIDFunc(ctx)
	}
	return big.NewInt(constant.SepoliaChainID), nil
}

func (m *mockProvider) SwitchChain(ctx context.Context, chainId int64) error {
	if m.switchChainFunc != nil {
		return m.switchChainFunc(ctx, chainId)
	}
	return nil
}

func (m *mockProvider) AddChain(ctx context.Context, conf config.ChainConf) error {
	if m.addChainFunc != nil {
		return m.addChainFunc(ctx, conf)
	}
	return nil
}

func (m *mockProvider) NativeBalance(ctx context.Context, address string) (*big.Int, error) {
	if m.nativeBalanceFunc != nil {
		return m.nativeBalanceFunc(ctx, address)
	}
	return big.NewInt(0), nil
}

func (m *mockProvider) TokenBalance(ctx context.Context, address string) (*big.Int, error) {
	if m.tokenBalanceFunc != nil {
		return m.tokenBalanceFunc(ctx, address)
	}
	return big.NewInt(0), nil
}

func (m *mockProvider) TransferToken(ctx context.Context, to string, amount *big.Int) (string, error) {
	if m.transferTokenFunc != nil {
		return m.transferTokenFunc(ctx, to, amount)
	}
	return "0xhash", nil
}

func (m *mockProvider) WaitReceipt(ctx context.Context, hash string) (bool, error) {
	if m.waitReceiptFunc != nil {
		return m.waitReceiptFunc(ctx, hash)
	}
	return true, nil
}

func (m *mockProvider) Events() <-chan Event { return m.events }

func (m *mockProvider) Close() {}

func sepoliaConf() config.ChainConf {
	return config.ChainConf{
		Name:    "Sepolia test network",
		RpcUrl:  "http://localhost:8545",
		ChainId: constant.SepoliaChainID,
	}
}

func newTestManager(p Provider) *Manager {
	kv := model.NewMemoryKvDao()
	m := NewManager(p, kv, NewLedger(kv), sepoliaConf())
	m.refreshDelay = time.Millisecond
	return m
}

// waitFor polls the session until cond passes or the deadline hits.
func waitFor(t *testing.T, m *Manager, cond func(Session) bool) Session {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := m.Session()
		if cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline, session = %+v", m.Session())
	return Session{}
}

func TestConnect(t *testing.T) {
	p := newMockProvider()
	p.nativeBalanceFunc = func(ctx context.Context, address string) (*big.Int, error) {
		v, _ := new(big.Int).SetString("2500000000000000000", 10)
		return v, nil
	}
	p.tokenBalanceFunc = func(ctx context.Context, address string) (*big.Int, error) {
		v, _ := new(big.Int).SetString("10000000000000000000", 10)
		return v, nil
	}
	m := newTestManager(p)

	s, err := m.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !s.IsConnected || s.Address != "0xAlice" {
		t.Fatalf("session = %+v", s)
	}
	if !s.IsCorrectNetwork {
		t.Fatal("expected correct network on Sepolia chain id")
	}

	// 余额是延迟异步刷新的
	s = waitFor(t, m, func(s Session) bool { return s.EthBalance == "2.5" })
	if s.TokenBalance != "10" {
		t.Fatalf("token balance = %q, want 10", s.TokenBalance)
	}

	// 地址持久化，供下次启动自动重连
	addr, _, err := m.kv.Get(context.Background(), constant.KeyWalletAddress)
	if err != nil || addr != "0xAlice" {
		t.Fatalf("persisted address = (%q, %v), want 0xAlice", addr, err)
	}
}

func TestConnectNoAccounts(t *testing.T) {
	p := newMockProvider()
	p.requestAccountsFunc = func(ctx context.Context) ([]string, error) {
		return nil, nil
	}
	m := newTestManager(p)

	s, err := m.Connect(context.Background())
	if err == nil {
		t.Fatal("expected an error for empty account list")
	}
	if s.IsConnected {
		t.Fatal("session must stay disconnected")
	}
	if s.Err == "" {
		t.Fatal("session error must be set")
	}
}

func TestConnectWithoutProvider(t *testing.T) {
	m := newTestManager(nil)

	if _, err := m.Connect(context.Background()); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestConnectWrongNetwork(t *testing.T) {
	p := newMockProvider()
	p.chainIDFunc = func(ctx context.Context) (*big.Int, error) {
		return big.NewInt(1), nil // mainnet
	}
	m := newTestManager(p)

	s, err := m.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !s.IsConnected {
		t.Fatal("connect still succeeds on the wrong network")
	}
	if s.IsCorrectNetwork {
		t.Fatal("network flag must be false on mainnet")
	}
}

func TestDisconnect(t *testing.T) {
	p := newMockProvider()
	m := newTestManager(p)
	ctx := context.Background()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	s := m.Disconnect(ctx)
	if s.IsConnected || s.Address != "" {
		t.Fatalf("session = %+v, want empty", s)
	}
	if s.EthBalance != "0" || s.TokenBalance != "0" {
		t.Fatalf("balances = %q/%q, want 0/0", s.EthBalance, s.TokenBalance)
	}

	// 持久化地址被删除，重启后不再自动重连
	if _, _, err := m.kv.Get(ctx, constant.KeyWalletAddress); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("persisted address err = %v, want ErrNotFound", err)
	}
}

func TestStaleRefreshDiscarded(t *testing.T) {
	release := make(chan struct{})
	p := newMockProvider()
	p.nativeBalanceFunc = func(ctx context.Context, address string) (*big.Int, error) {
		<-release
		v, _ := new(big.Int).SetString("9000000000000000000", 10)
		return v, nil
	}
	m := newTestManager(p)
	ctx := context.Background()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// 余额查询还卡着的时候断开连接，世代号前进
	m.Disconnect(ctx)
	close(release)

	// 给过期的刷新一点时间返回，然后确认它被丢弃
	time.Sleep(50 * time.Millisecond)
	s := m.Session()
	if s.EthBalance != "0" {
		t.Fatalf("stale balance applied after disconnect: %q", s.EthBalance)
	}
	if s.IsConnected {
		t.Fatal("session must stay disconnected")
	}
}

func TestSwitchNetworkRegistersUnknownChain(t *testing.T) {
	var added []config.ChainConf
	attempts := 0
	p := newMockProvider()
	p.switchChainFunc = func(ctx context.Context, chainId int64) error {
		attempts++
		if attempts == 1 {
			return ErrUnknownChain
		}
		return nil
	}
	p.addChainFunc = func(ctx context.Context, conf config.ChainConf) error {
		added = append(added, conf)
		return nil
	}
	m := newTestManager(p)

	if ok := m.SwitchNetwork(context.Background()); !ok {
		t.Fatal("SwitchNetwork should succeed after registering the chain")
	}
	if attempts != 2 {
		t.Fatalf("switch attempts = %d, want 2", attempts)
	}
	if len(added) != 1 || added[0].ChainId != constant.SepoliaChainID {
		t.Fatalf("added chains = %+v, want exactly the Sepolia params", added)
	}
}

func TestTransferPreconditions(t *testing.T) {
	p := newMockProvider()
	m := newTestManager(p)
	ctx := context.Background()

	// 未连接
	if _, err := m.TransferTokens(ctx, "0xBob", "1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	if len(m.Transactions()) != 0 {
		t.Fatal("failed precondition must not touch the ledger")
	}

	// 错误网络
	p.chainIDFunc = func(ctx context.Context) (*big.Int, error) {
		return big.NewInt(1), nil
	}
	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := m.TransferTokens(ctx, "0xBob", "1"); !errors.Is(err, ErrWrongNetwork) {
		t.Fatalf("err = %v, want ErrWrongNetwork", err)
	}
	if len(m.Transactions()) != 0 {
		t.Fatal("wrong-network transfer must not touch the ledger")
	}
}

func TestTransferInvalidAmount(t *testing.T) {
	p := newMockProvider()
	m := newTestManager(p)
	ctx := context.Background()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := m.TransferTokens(ctx, "0xBob", "not-a-number"); err == nil {
		t.Fatal("expected an invalid amount error")
	}
	if len(m.Transactions()) != 0 {
		t.Fatal("invalid amount must not touch the ledger")
	}
}

func TestTransferSubmitFailureLeavesLedgerUntouched(t *testing.T) {
	p := newMockProvider()
	p.transferTokenFunc = func(ctx context.Context, to string, amount *big.Int) (string, error) {
		return "", errors.New("insufficient funds")
	}
	m := newTestManager(p)
	ctx := context.Background()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := m.TransferTokens(ctx, "0xBob", "1"); err == nil {
		t.Fatal("expected a transfer error")
	}
	if len(m.Transactions()) != 0 {
		t.Fatal("submission failure produced no hash, ledger must stay empty")
	}
}

func TestTransferConfirmed(t *testing.T) {
	var gotAmount *big.Int
	p := newMockProvider()
	p.transferTokenFunc = func(ctx context.Context, to string, amount *big.Int) (string, error) {
		gotAmount = amount
		return "0xdeadbeef", nil
	}
	m := newTestManager(p)
	ctx := context.Background()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	hash, err := m.TransferTokens(ctx, "0xBob", "1.5")
	if err != nil {
		t.Fatalf("TransferTokens: %v", err)
	}
	if hash != "0xdeadbeef" {
		t.Fatalf("hash = %q", hash)
	}
	if gotAmount.String() != "1500000000000000000" {
		t.Fatalf("submitted amount = %s, want 1.5 scaled to base units", gotAmount)
	}

	txs := m.Transactions()
	if len(txs) != 1 {
		t.Fatalf("ledger size = %d, want 1", len(txs))
	}
	entry := txs[0]
	if entry.Status != constant.TxStatusConfirmed {
		t.Fatalf("status = %q, want confirmed", entry.Status)
	}
	if entry.To != "0xBob" || entry.From != "0xAlice" || entry.Amount != "1.5" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Type != constant.TxTypeTransfer {
		t.Fatalf("type = %q, want transfer", entry.Type)
	}
}

func TestTransferRevertedMarksFailed(t *testing.T) {
	p := newMockProvider()
	p.waitReceiptFunc = func(ctx context.Context, hash string) (bool, error) {
		return false, nil
	}
	m := newTestManager(p)
	ctx := context.Background()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := m.TransferTokens(ctx, "0xBob", "1"); err != nil {
		t.Fatalf("TransferTokens: %v", err)
	}

	txs := m.Transactions()
	if len(txs) != 1 || txs[0].Status != constant.TxStatusFailed {
		t.Fatalf("ledger = %+v, want one failed entry", txs)
	}
}

func TestTransferReceiptTimeoutSurfacesError(t *testing.T) {
	p := newMockProvider()
	p.transferTokenFunc = func(ctx context.Context, to string, amount *big.Int) (string, error) {
		return "0xstuck", nil
	}
	p.waitReceiptFunc = func(ctx context.Context, hash string) (bool, error) {
		return false, context.DeadlineExceeded
	}
	m := newTestManager(p)
	ctx := context.Background()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	hash, err := m.TransferTokens(ctx, "0xBob", "1")
	if err == nil {
		t.Fatal("caller must see the confirmation failure")
	}
	if hash != "0xstuck" {
		t.Fatalf("hash = %q, want the submitted hash alongside the error", hash)
	}

	// 回执未知时条目保持 pending
	txs := m.Transactions()
	if len(txs) != 1 || txs[0].Status != constant.TxStatusPending {
		t.Fatalf("ledger = %+v, want one pending entry", txs)
	}
}

func TestAccountsChangedEvent(t *testing.T) {
	p := newMockProvider()
	m := newTestManager(p)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	go m.watchEvents(ctx)

	// 切换到新账户：世代前进，余额清零后重新拉取
	p.events <- Event{Type: EventAccountsChanged, Accounts: []string{"0xCarol"}}
	s := waitFor(t, m, func(s Session) bool { return s.Address == "0xCarol" })
	if !s.IsConnected {
		t.Fatal("session must stay connected across an account switch")
	}

	// 空账户列表等价于断开
	p.events <- Event{Type: EventAccountsChanged}
	s = waitFor(t, m, func(s Session) bool { return !s.IsConnected })
	if s.Address != "" {
		t.Fatalf("address = %q after disconnect event", s.Address)
	}
}

func TestChainChangedEvent(t *testing.T) {
	var chainId atomic.Int64
	chainId.Store(constant.SepoliaChainID)
	p := newMockProvider()
	p.chainIDFunc = func(ctx context.Context) (*big.Int, error) {
		return big.NewInt(chainId.Load()), nil
	}
	m := newTestManager(p)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	go m.watchEvents(ctx)

	chainId.Store(1)
	p.events <- Event{Type: EventChainChanged, ChainId: big.NewInt(1)}
	waitFor(t, m, func(s Session) bool { return !s.IsCorrectNetwork })

	chainId.Store(constant.SepoliaChainID)
	p.events <- Event{Type: EventChainChanged, ChainId: big.NewInt(constant.SepoliaChainID)}
	waitFor(t, m, func(s Session) bool { return s.IsCorrectNetwork })
}

func TestSubscribe(t *testing.T) {
	p := newMockProvider()
	m := newTestManager(p)
	ctx := context.Background()

	ch, unsubscribe := m.Subscribe()
	defer unsubscribe()

	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// 至少会收到 loading 和 connected 两个快照
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if s.IsConnected {
				return
			}
		case <-deadline:
			t.Fatal("no connected snapshot delivered to the subscriber")
		}
	}
}
