package staking

import "math/big"

// SecondsPerYear is the accrual denominator for the annual rate.
const SecondsPerYear = 31_536_000

var (
	hundred     = big.NewInt(100)
	yearSeconds = big.NewInt(SecondsPerYear)
)

// RewardPerSecond computes principal * apy / 100 / SecondsPerYear with floor
// division at each step. The truncation is deliberate: repeated accrual over
// short intervals yields a lower total than a single accrual over the full
// interval, matching the deployed behaviour.
func RewardPerSecond(principal *big.Int, apy uint64) *big.Int {
	if principal == nil || principal.Sign() <= 0 || apy == 0 {
		return big.NewInt(0)
	}
	rate := new(big.Int).Mul(principal, new(big.Int).SetUint64(apy))
	rate.Quo(rate, hundred)
	return rate.Quo(rate, yearSeconds)
}

// accrue folds the reward earned since the last accrual point into the stake
// record and advances the accrual timestamp.
func accrue(stake *UserStake, pool *Pool, now uint64) {
	if stake == nil || pool == nil {
		return
	}
	stake.normalize()
	if now <= stake.LastAccrual {
		return
	}
	elapsed := now - stake.LastAccrual
	rate := RewardPerSecond(stake.Principal, pool.APY)
	if rate.Sign() > 0 {
		delta := new(big.Int).Mul(rate, new(big.Int).SetUint64(elapsed))
		stake.AccruedReward = new(big.Int).Add(stake.AccruedReward, delta)
	}
	stake.LastAccrual = now
}

// projectReward returns the reward the stake would hold after an accrual at
// the given instant, without persisting anything.
func projectReward(stake *UserStake, pool *Pool, now uint64) *big.Int {
	if stake == nil || pool == nil {
		return big.NewInt(0)
	}
	projected := stake.Clone()
	projected.normalize()
	accrue(projected, pool, now)
	return projected.AccruedReward
}
