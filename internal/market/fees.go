// internal/market/fees.go
package market

import "math/bits"

// mulDiv computes floor(a*b/d) through a 128-bit intermediate so the
// product never silently wraps. Returns ErrArithmeticOverflow when the
// quotient does not fit in 64 bits.
func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrArithmeticOverflow
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrArithmeticOverflow
	}
	return a - b, nil
}

// Fee returns floor(gross * rateBPS / BasisPoints).
func Fee(gross, rateBPS uint64) (uint64, error) {
	return mulDiv(gross, rateBPS, BasisPoints)
}

// BuyFees is the split applied to the gross token amount of a buy.
type BuyFees struct {
	Burn       uint64
	Raffle     uint64
	NetToBuyer uint64
}

// SplitBuy applies the buy-side fee schedule to a gross token amount.
// The burn share is never minted; the raffle share accrues to the
// airdrop pot. The underflow check on the net amount cannot trip with
// the current rates but is kept explicit.
func SplitBuy(gross uint64) (BuyFees, error) {
	burn, err := Fee(gross, BurnFeeBPS)
	if err != nil {
		return BuyFees{}, err
	}
	raffle, err := Fee(gross, RaffleFeeBPS)
	if err != nil {
		return BuyFees{}, err
	}
	net, err := checkedSub(gross, burn)
	if err != nil {
		return BuyFees{}, err
	}
	net, err = checkedSub(net, raffle)
	if err != nil {
		return BuyFees{}, err
	}
	return BuyFees{Burn: burn, Raffle: raffle, NetToBuyer: net}, nil
}

// SellBurn returns the burn fee taken from the token amount being
// redeemed, not from the proceeds.
func SellBurn(tokenIn uint64) (uint64, error) {
	return Fee(tokenIn, SellBurnFeeBPS)
}
