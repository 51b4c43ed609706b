package staking

import (
	"math/big"
	"testing"
)

func TestEarlyExitFee(t *testing.T) {
	cases := []struct {
		name      string
		principal *big.Int
		bps       uint64
		want      string
	}{
		{"default half percent", amount(500), DefaultUnstakeFeeBps, "2500000000000000000"},
		{"rounds down", big.NewInt(199), DefaultUnstakeFeeBps, "0"},
		{"exact thousandth", big.NewInt(1000), DefaultUnstakeFeeBps, "5"},
		{"zero bps", amount(500), 0, "0"},
		{"zero principal", big.NewInt(0), DefaultUnstakeFeeBps, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := earlyExitFee(tc.principal, tc.bps)
			if got.String() != tc.want {
				t.Fatalf("fee %s, want %s", got, tc.want)
			}
		})
	}
}

func TestEarlyExitFeeLeavesPrincipalUntouched(t *testing.T) {
	principal := amount(500)
	before := new(big.Int).Set(principal)
	_ = earlyExitFee(principal, DefaultUnstakeFeeBps)
	if principal.Cmp(before) != 0 {
		t.Fatalf("principal mutated: %s", principal)
	}
}
