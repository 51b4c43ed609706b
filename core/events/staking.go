package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// TypePoolCreated is emitted when a new staking pool is registered.
	TypePoolCreated = "staking.poolCreated"
	// TypePoolStarted marks the activation of a pool and the fixing of its
	// validity deadline.
	TypePoolStarted = "staking.poolStarted"
	// TypePoolAPYUpdated captures a pre-start APY edit.
	TypePoolAPYUpdated = "staking.poolAPYUpdated"
	// TypeStaked captures a principal deposit.
	TypeStaked = "staking.deposited"
	// TypeRewardsClaimed is emitted when accrued rewards are paid out.
	TypeRewardsClaimed = "staking.rewardsClaimed"
	// TypeUnstaked captures a principal withdrawal with its fee split.
	TypeUnstaked = "staking.unstaked"
)

// PoolCreated captures the configuration of a freshly registered pool.
type PoolCreated struct {
	Name         string
	StakingToken common.Address
	RewardToken  common.Address
	APY          uint64
	Allowance    *big.Int
}

func (PoolCreated) EventType() string { return TypePoolCreated }

func (e PoolCreated) Attributes() map[string]string {
	return map[string]string{
		"name":         e.Name,
		"stakingToken": e.StakingToken.Hex(),
		"rewardToken":  e.RewardToken.Hex(),
		"apy":          strconv.FormatUint(e.APY, 10),
		"allowance":    formatAmount(e.Allowance),
	}
}

// PoolStarted records the absolute deadline fixed at activation.
type PoolStarted struct {
	StakingToken common.Address
	StartTime    uint64
	ValidUntil   uint64
}

func (PoolStarted) EventType() string { return TypePoolStarted }

func (e PoolStarted) Attributes() map[string]string {
	return map[string]string{
		"stakingToken": e.StakingToken.Hex(),
		"startTime":    strconv.FormatUint(e.StartTime, 10),
		"validUntil":   strconv.FormatUint(e.ValidUntil, 10),
	}
}

// PoolAPYUpdated records a configuration-phase APY change.
type PoolAPYUpdated struct {
	StakingToken common.Address
	OldAPY       uint64
	NewAPY       uint64
}

func (PoolAPYUpdated) EventType() string { return TypePoolAPYUpdated }

func (e PoolAPYUpdated) Attributes() map[string]string {
	return map[string]string{
		"stakingToken": e.StakingToken.Hex(),
		"oldApy":       strconv.FormatUint(e.OldAPY, 10),
		"newApy":       strconv.FormatUint(e.NewAPY, 10),
	}
}

// Staked captures a deposit and the resulting principal.
type Staked struct {
	Account      common.Address
	StakingToken common.Address
	Amount       *big.Int
	NewPrincipal *big.Int
}

func (Staked) EventType() string { return TypeStaked }

func (e Staked) Attributes() map[string]string {
	return map[string]string{
		"account":      e.Account.Hex(),
		"stakingToken": e.StakingToken.Hex(),
		"amount":       formatAmount(e.Amount),
		"newPrincipal": formatAmount(e.NewPrincipal),
	}
}

// RewardsClaimed captures a reward payout.
type RewardsClaimed struct {
	Account      common.Address
	StakingToken common.Address
	Paid         *big.Int
}

func (RewardsClaimed) EventType() string { return TypeRewardsClaimed }

func (e RewardsClaimed) Attributes() map[string]string {
	return map[string]string{
		"account":      e.Account.Hex(),
		"stakingToken": e.StakingToken.Hex(),
		"paid":         formatAmount(e.Paid),
	}
}

// Unstaked captures an exit, including the early-exit fee withheld.
type Unstaked struct {
	Account      common.Address
	StakingToken common.Address
	Principal    *big.Int
	Fee          *big.Int
	Net          *big.Int
}

func (Unstaked) EventType() string { return TypeUnstaked }

func (e Unstaked) Attributes() map[string]string {
	return map[string]string{
		"account":      e.Account.Hex(),
		"stakingToken": e.StakingToken.Hex(),
		"principal":    formatAmount(e.Principal),
		"fee":          formatAmount(e.Fee),
		"net":          formatAmount(e.Net),
	}
}
