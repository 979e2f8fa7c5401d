package svc

import (
	"context"
	"log"
	"time"

	"bluemercantile/internal/config"
	"bluemercantile/internal/logic/notify"
	"bluemercantile/internal/logic/wallet"
	"bluemercantile/internal/model"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ServiceContext struct {
	Config   config.Config
	DB       *gorm.DB
	Kv       model.KvDao
	Registry *model.RegistryStore
	Notifier *notify.Notifier
	Wallet   *wallet.Manager

	sweeper    *notify.ApprovalSweeper
	cancelJobs context.CancelFunc
}

func NewServiceContext(c config.Config) *ServiceContext {
	if c.Postgres.DSN != "" {
		db, err := initDB(c.Postgres.DSN)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		svcCtx := buildContext(c, model.NewKvDao(db))
		svcCtx.DB = db
		return svcCtx
	}

	// 未配置 DSN 时退化为进程内存储，方便本地开发
	logx.Info("未配置 Postgres DSN，使用内存 kv 存储")
	return buildContext(c, model.NewMemoryKvDao())
}

func buildContext(c config.Config, kv model.KvDao) *ServiceContext {
	registry := model.NewRegistryStore(kv)
	notifier := notify.NewNotifier(registry)

	var provider wallet.Provider
	if c.Wallet.PrivateKey != "" {
		p, err := wallet.NewEvmProvider(c.Chains, c.Wallet.ActiveChain, c.Wallet.PrivateKey, c.Wallet.ContractAddress)
		if err != nil {
			logx.Errorf("初始化链 provider 失败，钱包功能不可用: %v", err)
		} else {
			provider = p
		}
	}

	ledger := wallet.NewLedger(kv)
	expected := c.Chains[c.Wallet.ActiveChain]

	return &ServiceContext{
		Config:   c,
		Kv:       kv,
		Registry: registry,
		Notifier: notifier,
		Wallet:   wallet.NewManager(provider, kv, ledger, expected),
		sweeper:  notify.NewApprovalSweeper(registry, notifier, time.Minute),
	}
}

// Start launches the background jobs: the approval-notification sweeper and
// the wallet session manager (event loop + auto-reconnect).
func (s *ServiceContext) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelJobs = cancel

	// 账本要在任何转账发生之前加载
	if err := s.Wallet.LoadLedger(ctx); err != nil {
		logx.Errorf("加载本地交易账本失败: %v", err)
	}

	go s.sweeper.Start(ctx)
	if s.Config.Wallet.AutoConnect {
		s.Wallet.Start(ctx)
	}
}

// Stop cancels the background jobs.
func (s *ServiceContext) Stop() {
	if s.cancelJobs != nil {
		s.cancelJobs()
	}
}

func initDB(dsn string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.KvEntry{}); err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
