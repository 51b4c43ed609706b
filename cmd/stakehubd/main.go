package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stakehub/config"
	"stakehub/core/events"
	"stakehub/native/staking"
	"stakehub/observability/logging"
	"stakehub/rpc"
	"stakehub/state"
	"stakehub/storage"
	"stakehub/token"
)

const envVar = "STAKEHUB_ENV"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envVar))

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("stakehub", env, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ledger := token.NewLedger(db)
	if err := seedGenesisBalances(db, ledger, cfg.GenesisBalances); err != nil {
		logger.Error("Failed to seed genesis balances", slog.Any("error", err))
		os.Exit(1)
	}

	engine := staking.NewEngine()
	engine.SetState(state.NewStakingStore(db))
	engine.SetGateway(token.NewVaultGateway(ledger, cfg.Custody()))
	engine.SetAuthorizer(staking.SingleAdmin{Admin: cfg.Admin()})
	engine.SetEmitter(events.SlogEmitter{Logger: logger})
	engine.SetUnstakeFeeBps(cfg.UnstakeFeeBps)
	if sink, ok := cfg.FeeSink(); ok {
		if err := engine.SetFeeWallet(cfg.Admin(), sink); err != nil {
			logger.Error("Failed to configure fee wallet", slog.Any("error", err))
			os.Exit(1)
		}
	}

	server := rpc.NewServer(engine, ledger, logger)
	logger.Info("stakehub daemon starting",
		slog.String("rpc", cfg.RPCAddress),
		slog.String("admin", cfg.Admin().Hex()),
		slog.String("custody", cfg.Custody().Hex()),
	)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// seedGenesisBalances mints the configured balances exactly once, guarded by
// a marker key so restarts do not double-fund accounts.
func seedGenesisBalances(db storage.Database, ledger *token.Ledger, balances []config.GenesisBalance) error {
	if len(balances) == 0 {
		return nil
	}
	const marker = "genesis/seeded"
	existing, err := db.Get([]byte(marker))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	for _, bal := range balances {
		amount, ok := new(big.Int).SetString(strings.TrimSpace(bal.Amount), 10)
		if !ok || amount.Sign() <= 0 {
			return fmt.Errorf("invalid genesis amount %q", bal.Amount)
		}
		tok := common.HexToAddress(strings.TrimSpace(bal.Token))
		account := common.HexToAddress(strings.TrimSpace(bal.Account))
		if err := ledger.Mint(tok, account, amount); err != nil {
			return err
		}
	}
	return db.Put([]byte(marker), []byte{1})
}
