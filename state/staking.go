package state

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"stakehub/native/staking"
	"stakehub/storage"
)

const (
	poolPrefix  = "staking/pool/"
	stakePrefix = "staking/stake/"
)

// StakingStore persists pool and stake records in a key-value database and
// implements the staking engine's state interface.
type StakingStore struct {
	db storage.Database
}

// NewStakingStore wraps the given database.
func NewStakingStore(db storage.Database) *StakingStore {
	return &StakingStore{db: db}
}

func poolKey(token common.Address) []byte {
	return append([]byte(poolPrefix), token.Bytes()...)
}

func stakeKey(owner, token common.Address) []byte {
	key := append([]byte(stakePrefix), token.Bytes()...)
	key = append(key, '/')
	return append(key, owner.Bytes()...)
}

// GetPool loads a pool record, returning nil when the key was never written.
func (s *StakingStore) GetPool(token common.Address) (*staking.Pool, error) {
	raw, err := s.db.Get(poolKey(token))
	if err != nil {
		return nil, fmt.Errorf("staking store: load pool: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	pool := new(staking.Pool)
	if err := json.Unmarshal(raw, pool); err != nil {
		return nil, fmt.Errorf("staking store: decode pool: %w", err)
	}
	return pool, nil
}

// PutPool stores a pool record under its staking-token key.
func (s *StakingStore) PutPool(pool *staking.Pool) error {
	if pool == nil {
		return fmt.Errorf("staking store: nil pool")
	}
	raw, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("staking store: encode pool: %w", err)
	}
	return s.db.Put(poolKey(pool.StakingToken), raw)
}

// GetStake loads a stake record, returning nil when the key was never written.
func (s *StakingStore) GetStake(owner, token common.Address) (*staking.UserStake, error) {
	raw, err := s.db.Get(stakeKey(owner, token))
	if err != nil {
		return nil, fmt.Errorf("staking store: load stake: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	stake := new(staking.UserStake)
	if err := json.Unmarshal(raw, stake); err != nil {
		return nil, fmt.Errorf("staking store: decode stake: %w", err)
	}
	return stake, nil
}

// PutStake stores a stake record under its (owner, staking-token) key.
func (s *StakingStore) PutStake(stake *staking.UserStake) error {
	if stake == nil {
		return fmt.Errorf("staking store: nil stake")
	}
	raw, err := json.Marshal(stake)
	if err != nil {
		return fmt.Errorf("staking store: encode stake: %w", err)
	}
	return s.db.Put(stakeKey(stake.Owner, stake.StakingToken), raw)
}
