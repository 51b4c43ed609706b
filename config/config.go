package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// GenesisBalance seeds a token balance at first start so the gateway has
// funds to move. Amount is a base-10 integer string.
type GenesisBalance struct {
	Token   string `toml:"Token"`
	Account string `toml:"Account"`
	Amount  string `toml:"Amount"`
}

type Config struct {
	RPCAddress     string `toml:"RPCAddress"`
	DataDir        string `toml:"DataDir"`
	Env            string `toml:"Env"`
	AdminAddress   string `toml:"AdminAddress"`
	CustodyAddress string `toml:"CustodyAddress"`
	FeeWallet      string `toml:"FeeWallet,omitempty"`
	UnstakeFeeBps  uint64 `toml:"UnstakeFeeBps"`
	LogFile        string `toml:"LogFile,omitempty"`
	LogMaxSizeMB   int    `toml:"LogMaxSizeMB,omitempty"`
	LogMaxBackups  int    `toml:"LogMaxBackups,omitempty"`

	GenesisBalances []GenesisBalance `toml:"GenesisBalance,omitempty"`
}

const (
	defaultRPCAddress = "127.0.0.1:8645"
	defaultDataDir    = "./stakehub-data"
	// DefaultCustodyAddress is the module vault holding staked principal,
	// reward allowances and withheld fees.
	DefaultCustodyAddress = "0x0000000000000000000000000000000000000A11"
)

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = defaultRPCAddress
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.CustodyAddress) == "" {
		c.CustodyAddress = DefaultCustodyAddress
	}
	if c.UnstakeFeeBps == 0 {
		c.UnstakeFeeBps = 5
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if !common.IsHexAddress(strings.TrimSpace(c.AdminAddress)) {
		return fmt.Errorf("config: AdminAddress %q is not a valid hex address", c.AdminAddress)
	}
	if !common.IsHexAddress(strings.TrimSpace(c.CustodyAddress)) {
		return fmt.Errorf("config: CustodyAddress %q is not a valid hex address", c.CustodyAddress)
	}
	if trimmed := strings.TrimSpace(c.FeeWallet); trimmed != "" && !common.IsHexAddress(trimmed) {
		return fmt.Errorf("config: FeeWallet %q is not a valid hex address", c.FeeWallet)
	}
	if c.UnstakeFeeBps > 1000 {
		return fmt.Errorf("config: UnstakeFeeBps %d exceeds the 1000 denominator", c.UnstakeFeeBps)
	}
	for i, bal := range c.GenesisBalances {
		if !common.IsHexAddress(strings.TrimSpace(bal.Token)) {
			return fmt.Errorf("config: GenesisBalance[%d].Token %q is not a valid hex address", i, bal.Token)
		}
		if !common.IsHexAddress(strings.TrimSpace(bal.Account)) {
			return fmt.Errorf("config: GenesisBalance[%d].Account %q is not a valid hex address", i, bal.Account)
		}
		if strings.TrimSpace(bal.Amount) == "" {
			return fmt.Errorf("config: GenesisBalance[%d].Amount is required", i)
		}
	}
	return nil
}

// Admin returns the parsed admin address.
func (c *Config) Admin() common.Address {
	return common.HexToAddress(strings.TrimSpace(c.AdminAddress))
}

// Custody returns the parsed custody address.
func (c *Config) Custody() common.Address {
	return common.HexToAddress(strings.TrimSpace(c.CustodyAddress))
}

// FeeSink returns the fee wallet when configured.
func (c *Config) FeeSink() (common.Address, bool) {
	trimmed := strings.TrimSpace(c.FeeWallet)
	if trimmed == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(trimmed), true
}

// createDefault creates and saves a default configuration file. The admin
// address is intentionally left empty so the operator must set it before the
// daemon will start.
func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("config: wrote default config to %s; set AdminAddress and restart", path)
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
