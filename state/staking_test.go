package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"stakehub/native/staking"
	"stakehub/storage"
)

func TestPoolRoundTrip(t *testing.T) {
	store := NewStakingStore(storage.NewMemDB())
	token := common.HexToAddress("0x01")

	missing, err := store.GetPool(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown pool, got %+v", missing)
	}

	pool := &staking.Pool{
		Name:         "main",
		StakingToken: token,
		RewardToken:  common.HexToAddress("0x02"),
		APY:          5,
		Validity:     172800,
		Exists:       true,
	}
	if err := store.PutPool(pool); err != nil {
		t.Fatalf("put pool: %v", err)
	}
	loaded, err := store.GetPool(token)
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if loaded.Name != pool.Name || loaded.APY != pool.APY || loaded.Validity != pool.Validity || !loaded.Exists {
		t.Fatalf("pool mismatch: %+v", loaded)
	}
}

func TestStakeRoundTrip(t *testing.T) {
	store := NewStakingStore(storage.NewMemDB())
	owner := common.HexToAddress("0xA1")
	token := common.HexToAddress("0x01")

	missing, err := store.GetStake(owner, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown stake, got %+v", missing)
	}

	stake := &staking.UserStake{
		Owner:         owner,
		StakingToken:  token,
		Principal:     big.NewInt(1_000_000),
		DepositTime:   1_700_000_000,
		LastAccrual:   1_700_000_100,
		AccruedReward: big.NewInt(42),
	}
	if err := store.PutStake(stake); err != nil {
		t.Fatalf("put stake: %v", err)
	}
	loaded, err := store.GetStake(owner, token)
	if err != nil {
		t.Fatalf("get stake: %v", err)
	}
	if loaded.Principal.Cmp(stake.Principal) != 0 || loaded.AccruedReward.Cmp(stake.AccruedReward) != 0 {
		t.Fatalf("stake amounts mismatch: %+v", loaded)
	}
	if loaded.DepositTime != stake.DepositTime || loaded.LastAccrual != stake.LastAccrual {
		t.Fatalf("stake timestamps mismatch: %+v", loaded)
	}

	// Records are isolated per (owner, pool) pair.
	other, err := store.GetStake(common.HexToAddress("0xB0"), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other != nil {
		t.Fatalf("expected nil for other owner, got %+v", other)
	}
}
