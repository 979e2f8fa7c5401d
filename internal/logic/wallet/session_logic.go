package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bluemercantile/internal/config"
	"bluemercantile/internal/constant"
	"bluemercantile/internal/model"

	"github.com/zeromicro/go-zero/core/logx"
)

// Session is the single mutable view of the connected wallet.
type Session struct {
	Address          string
	IsConnected      bool
	IsCorrectNetwork bool
	EthBalance       string
	TokenBalance     string
	IsLoading        bool
	Err              string
}

func emptySession() Session {
	return Session{EthBalance: "0", TokenBalance: "0"}
}

// Manager mediates between callers and the chain provider. It is constructed
// once in the service context and passed by reference, not kept as a package
// level singleton. Subscribers get a snapshot on every state change.
//
// 每个异步操作都打上发起时的 generation 标记；回来时如果 generation 已经变了
// （断开、切换账户），结果直接丢弃，避免旧地址的余额覆盖新会话。
type Manager struct {
	mu       sync.Mutex
	provider Provider
	kv       model.KvDao
	ledger   *Ledger

	// expected is the test network the app runs against (Sepolia).
	expected config.ChainConf

	session    Session
	generation uint64

	subscribers map[int]chan Session
	nextSubId   int

	// refreshDelay is the short pause before refetching balances after a
	// connect or account change. Shortened in tests.
	refreshDelay time.Duration
}

// NewManager wires the session manager. provider may be nil, in which case
// every operation fails with ErrProviderUnavailable.
func NewManager(provider Provider, kv model.KvDao, ledger *Ledger, expected config.ChainConf) *Manager {
	return &Manager{
		provider:     provider,
		kv:           kv,
		ledger:       ledger,
		expected:     expected,
		session:      emptySession(),
		subscribers:  make(map[int]chan Session),
		refreshDelay: 500 * time.Millisecond,
	}
}

// Start launches the provider event loop and attempts auto-reconnect when a
// previously connected address was persisted.
func (m *Manager) Start(ctx context.Context) {
	if m.provider == nil {
		logx.Info("未配置钱包 provider，钱包会话不可用")
		return
	}

	go m.watchEvents(ctx)

	if _, _, err := m.kv.Get(ctx, constant.KeyWalletAddress); err == nil {
		logx.Info("检测到已保存的钱包地址，尝试自动重连...")
		if _, err := m.Connect(ctx); err != nil {
			logx.Errorf("自动重连失败: %v", err)
		}
	}
}

// LoadLedger restores the persisted transaction ledger. Call before serving.
func (m *Manager) LoadLedger(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Load(ctx)
}

// Session returns a snapshot of the current session state.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Transactions returns the local ledger, newest first.
func (m *Manager) Transactions() []model.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.List()
}

// Subscribe registers a session observer. The returned func unsubscribes.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubId
	m.nextSubId++
	ch := make(chan Session, 16)
	m.subscribers[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
	}
}

// publishLocked pushes the current session to all subscribers. Callers hold mu.
func (m *Manager) publishLocked() {
	for _, ch := range m.subscribers {
		select {
		case ch <- m.session:
		default:
			// 订阅方没有及时消费，丢弃快照
		}
	}
}

// Connect requests account access, captures the primary address, checks the
// network, persists the address for auto-reconnect and refreshes balances
// asynchronously.
func (m *Manager) Connect(ctx context.Context) (Session, error) {
	if m.provider == nil {
		return m.failConnect("wallet provider is not available"), ErrProviderUnavailable
	}

	m.mu.Lock()
	m.session.IsLoading = true
	m.session.Err = ""
	m.publishLocked()
	m.mu.Unlock()

	logx.WithContext(ctx).Info("请求钱包账户授权...")
	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return m.failConnect(err.Error()), err
	}
	if len(accounts) == 0 {
		return m.failConnect("no accounts found"), fmt.Errorf("no accounts found")
	}

	address := accounts[0]
	isCorrect := m.probeNetwork(ctx)

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.session.Address = address
	m.session.IsConnected = true
	m.session.IsCorrectNetwork = isCorrect
	m.session.IsLoading = false
	m.session.Err = ""
	snapshot := m.session
	m.publishLocked()
	m.mu.Unlock()

	m.persistAddress(ctx, address)

	// 延迟一小段时间后异步刷新余额
	go func() {
		time.Sleep(m.refreshDelay)
		m.refreshBalances(context.Background(), address, gen)
	}()

	logx.WithContext(ctx).Infof("钱包已连接: %s (正确网络: %v)", address, isCorrect)
	return snapshot, nil
}

func (m *Manager) failConnect(msg string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.IsLoading = false
	m.session.Err = msg
	m.publishLocked()
	return m.session
}

// Disconnect resets the session to its empty defaults and drops the persisted
// address. Provider-side authorization is left untouched.
func (m *Manager) Disconnect(ctx context.Context) Session {
	m.mu.Lock()
	m.generation++
	m.session = emptySession()
	snapshot := m.session
	m.publishLocked()
	m.mu.Unlock()

	if err := m.kv.Delete(ctx, constant.KeyWalletAddress); err != nil {
		logx.WithContext(ctx).Errorf("删除已保存钱包地址失败: %v", err)
	}

	logx.WithContext(ctx).Info("钱包已断开连接")
	return snapshot
}

// CheckNetwork compares the active chain id against the expected network and
// updates the flag. It does not block any operation by itself.
func (m *Manager) CheckNetwork(ctx context.Context) bool {
	isCorrect := m.probeNetwork(ctx)

	m.mu.Lock()
	m.session.IsCorrectNetwork = isCorrect
	m.publishLocked()
	m.mu.Unlock()

	return isCorrect
}

func (m *Manager) probeNetwork(ctx context.Context) bool {
	if m.provider == nil {
		return false
	}
	chainId, err := m.provider.ChainID(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("读取链 ID 失败: %v", err)
		return false
	}
	return chainId.Int64() == m.expected.ChainId
}

// SwitchNetwork asks the provider to move to the expected chain. When the
// chain is unknown to the provider, the chain parameters are registered and
// the switch retried once. On success the network flag and balances refresh.
func (m *Manager) SwitchNetwork(ctx context.Context) bool {
	if m.provider == nil {
		return false
	}

	m.mu.Lock()
	m.session.IsLoading = true
	m.publishLocked()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.session.IsLoading = false
		m.publishLocked()
		m.mu.Unlock()
	}()

	err := m.provider.SwitchChain(ctx, m.expected.ChainId)
	if err == ErrUnknownChain {
		addErr := m.provider.AddChain(ctx, m.expected)
		if addErr != nil {
			logx.WithContext(ctx).Errorf("注册链参数失败: %v", addErr)
			return false
		}
		err = m.provider.SwitchChain(ctx, m.expected.ChainId)
	}
	if err != nil {
		logx.WithContext(ctx).Errorf("切换网络失败: %v", err)
		return false
	}

	m.CheckNetwork(ctx)

	m.mu.Lock()
	address := m.session.Address
	gen := m.generation
	connected := m.session.IsConnected
	m.mu.Unlock()
	if connected {
		m.refreshBalances(ctx, address, gen)
	}
	return true
}

// RefreshBalances refetches balances for the connected address.
func (m *Manager) RefreshBalances(ctx context.Context) {
	m.mu.Lock()
	address := m.session.Address
	gen := m.generation
	connected := m.session.IsConnected
	m.mu.Unlock()

	if !connected {
		return
	}
	m.refreshBalances(ctx, address, gen)
}

// refreshBalances fetches native and token balances for address. The result is
// applied only while gen still matches the session generation. A failing token
// read falls back to zero (contract not deployed is expected); a failing
// native read becomes a session error message.
func (m *Manager) refreshBalances(ctx context.Context, address string, gen uint64) {
	if m.provider == nil {
		return
	}

	native, err := m.provider.NativeBalance(ctx, address)
	if err != nil {
		logx.WithContext(ctx).Errorf("获取 ETH 余额失败: %v", err)
		m.applyIfCurrent(gen, func(s *Session) {
			s.Err = fmt.Sprintf("Failed to fetch balances: %s", err.Error())
		})
		return
	}

	tokenBalance := "0"
	token, err := m.provider.TokenBalance(ctx, address)
	if err != nil {
		// 合约尚未部署是预期情况，静默回退为 0
		logx.WithContext(ctx).Infof("代币余额查询失败（合约可能未部署）: %v", err)
	} else {
		tokenBalance = FormatUnits(token)
	}

	ethBalance := FormatUnits(native)
	m.applyIfCurrent(gen, func(s *Session) {
		s.EthBalance = ethBalance
		s.TokenBalance = tokenBalance
		s.Err = ""
	})
}

// applyIfCurrent mutates the session only when the generation tag still
// matches; stale completions are discarded.
func (m *Manager) applyIfCurrent(gen uint64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		logx.Infof("丢弃过期的异步结果 (generation %d != %d)", gen, m.generation)
		return
	}
	fn(&m.session)
	m.publishLocked()
}

// TransferTokens submits a token transfer, appends a pending ledger entry once
// a hash exists, waits for the receipt and resolves the entry. Preconditions
// fail fast; a submission error leaves the ledger untouched.
func (m *Manager) TransferTokens(ctx context.Context, to, amount string) (string, error) {
	if m.provider == nil {
		return "", ErrProviderUnavailable
	}

	m.mu.Lock()
	connected := m.session.IsConnected
	correctNetwork := m.session.IsCorrectNetwork
	from := m.session.Address
	gen := m.generation
	m.mu.Unlock()

	if !connected {
		return "", ErrNotConnected
	}
	if !correctNetwork {
		return "", ErrWrongNetwork
	}

	amountWei, err := ParseUnits(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %s", amount)
	}

	logx.WithContext(ctx).Infof("提交代币转账: %s -> %s, 金额 %s", from, to, amount)
	hash, err := m.provider.TransferToken(ctx, to, amountWei)
	if err != nil {
		// 提交阶段失败，没有 hash，不写账本
		return "", fmt.Errorf("transfer failed: %v", err)
	}

	m.mu.Lock()
	appendErr := m.ledger.Append(ctx, model.LedgerEntry{
		Hash:      hash,
		Status:    constant.TxStatusPending,
		Timestamp: time.Now().UTC(),
		Type:      constant.TxTypeTransfer,
		Amount:    amount,
		To:        to,
		From:      from,
	})
	m.mu.Unlock()
	if appendErr != nil {
		logx.WithContext(ctx).Errorf("写入本地账本失败: %v", appendErr)
	}

	ok, err := m.provider.WaitReceipt(ctx, hash)
	if err != nil {
		// 回执没等到，账本条目保持 pending，把失败连同 hash 一起交给调用方
		logx.WithContext(ctx).Errorf("等待交易回执失败: %v", err)
		return hash, fmt.Errorf("transaction %s submitted but confirmation failed: %v", hash, err)
	}

	status := constant.TxStatusFailed
	if ok {
		status = constant.TxStatusConfirmed
	}
	m.mu.Lock()
	if uerr := m.ledger.UpdateStatus(ctx, hash, status); uerr != nil {
		logx.WithContext(ctx).Errorf("更新账本状态失败: %v", uerr)
	}
	m.mu.Unlock()

	if ok {
		m.refreshBalances(ctx, from, gen)
	}
	return hash, nil
}

// watchEvents consumes provider notifications for as long as the provider is
// present.
func (m *Manager) watchEvents(ctx context.Context) {
	events := m.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *Manager) handleEvent(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventAccountsChanged:
		if len(ev.Accounts) == 0 {
			m.Disconnect(ctx)
			return
		}
		newAddress := ev.Accounts[0]

		m.mu.Lock()
		if newAddress == m.session.Address {
			m.mu.Unlock()
			return
		}
		logx.Infof("账户已切换: %s", newAddress)
		m.generation++
		gen := m.generation
		m.session.Address = newAddress
		m.session.EthBalance = "0"
		m.session.TokenBalance = "0"
		m.publishLocked()
		m.mu.Unlock()

		m.persistAddress(ctx, newAddress)

		go func() {
			time.Sleep(m.refreshDelay)
			m.refreshBalances(context.Background(), newAddress, gen)
		}()

	case EventChainChanged:
		logx.Info("链已切换，重新检查网络")
		m.CheckNetwork(ctx)

		m.mu.Lock()
		address := m.session.Address
		gen := m.generation
		connected := m.session.IsConnected
		m.mu.Unlock()
		if connected {
			go func() {
				time.Sleep(m.refreshDelay)
				m.refreshBalances(context.Background(), address, gen)
			}()
		}
	}
}

// persistAddress stores the connected address under its fixed key so the next
// startup can auto-reconnect.
func (m *Manager) persistAddress(ctx context.Context, address string) {
	for i := 0; i < 3; i++ {
		_, version, err := m.kv.Get(ctx, constant.KeyWalletAddress)
		if err != nil && err != model.ErrNotFound {
			logx.WithContext(ctx).Errorf("读取已保存钱包地址失败: %v", err)
			return
		}
		err = m.kv.Put(ctx, constant.KeyWalletAddress, address, version)
		if err == nil {
			return
		}
		if err != model.ErrVersionConflict {
			logx.WithContext(ctx).Errorf("保存钱包地址失败: %v", err)
			return
		}
	}
}
