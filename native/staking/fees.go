package staking

import "math/big"

const (
	// DefaultUnstakeFeeBps is the default early-exit fee, expressed over the
	// 1000 denominator (5 = 0.5%).
	DefaultUnstakeFeeBps = 5
	// FeeDenominator scales the unstake fee. Note this is 1000, not the
	// conventional 10000 basis-point denominator.
	FeeDenominator = 1000
)

var feeDenominator = big.NewInt(FeeDenominator)

// earlyExitFee computes floor(principal * feeBps / 1000). The fee applies to
// principal only, never to reward.
func earlyExitFee(principal *big.Int, feeBps uint64) *big.Int {
	if principal == nil || principal.Sign() <= 0 || feeBps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(principal, new(big.Int).SetUint64(feeBps))
	return fee.Quo(fee, feeDenominator)
}
