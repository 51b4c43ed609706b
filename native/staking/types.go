package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool captures the configuration and lifecycle state of a staking offer. The
// staking-token address is the pool key and is immutable once created.
type Pool struct {
	Name         string
	StakingToken common.Address
	RewardToken  common.Address
	// APY is the integer annual rate parameter consumed by the reward-rate
	// formula; see RewardPerSecond for its scaling.
	APY uint64
	// StakingStart is the unix second the pool was activated, zero until then.
	StakingStart uint64
	// Validity holds the configured duration in seconds while the pool has
	// not started; StartStaking replaces it with the absolute unix deadline.
	Validity uint64
	Started  bool
	Exists   bool
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// UserStake is the per-(account, pool) position. A record with zero principal
// and no pending reward is logically absent even when physically retained.
type UserStake struct {
	Owner         common.Address
	StakingToken  common.Address
	Principal     *big.Int
	DepositTime   uint64
	LastAccrual   uint64
	AccruedReward *big.Int
}

// Clone returns a deep copy of the stake record.
func (s *UserStake) Clone() *UserStake {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Principal != nil {
		clone.Principal = new(big.Int).Set(s.Principal)
	}
	if s.AccruedReward != nil {
		clone.AccruedReward = new(big.Int).Set(s.AccruedReward)
	}
	return &clone
}

func (s *UserStake) normalize() {
	if s.Principal == nil {
		s.Principal = big.NewInt(0)
	}
	if s.AccruedReward == nil {
		s.AccruedReward = big.NewInt(0)
	}
}
