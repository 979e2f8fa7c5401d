package config

import "github.com/zeromicro/go-zero/rest"

type ChainConf struct {
	Name    string `json:"Name"`
	RpcUrl  string `json:"RpcUrl"`
	ChainId int64  `json:"ChainId"`
	Symbol  string `json:"Symbol,optional"`
}

type Config struct {
	rest.RestConf
	Postgres struct {
		DSN string `json:",optional"`
	}
	Admin struct {
		Username string `json:",default=admin"`
		Password string `json:",default=Qwerty"`
	}
	Jwt struct {
		Secret      string
		ExpireHours int `json:",default=24"`
	}
	Wallet struct {
		// PrivateKey is the hot wallet key in hex. In production it must be
		// stored encrypted and fetched through a KMS, not kept in the yaml.
		PrivateKey      string `json:",optional"`
		ContractAddress string `json:",optional"`
		ActiveChain     string `json:",default=ETH-Sepolia"`
		AutoConnect     bool   `json:",default=true"`
	}
	// Chains maps a chain name (e.g., "ETH-Sepolia") to its configuration.
	Chains map[string]ChainConf
}
