// internal/market/curve.go
package market

// QuoteBuy converts a lamport amount into the gross token amount at the
// given price: floor(nativeIn * TokenScale / price). Fees are applied on
// top by SplitBuy.
func QuoteBuy(price, nativeIn uint64) (uint64, error) {
	if nativeIn < MinBuyAmount {
		return 0, ErrBuyAmountTooSmall
	}
	if nativeIn > MaxBuyAmount {
		return 0, ErrBuyAmountTooLarge
	}
	if price == 0 {
		return 0, ErrInvalidPrice
	}
	return mulDiv(nativeIn, TokenScale, price)
}

// priceDelta is the linear curve step: one lamport of price per whole
// SOL traded, with a minimum step of one.
func priceDelta(native uint64) uint64 {
	d := native / TokenScale
	if d == 0 {
		d = 1
	}
	return d
}

// NextBuyPrice returns the post-buy price. Overflow is fatal to the
// operation, never saturated.
func NextBuyPrice(price, nativeIn uint64) (uint64, error) {
	return checkedAdd(price, priceDelta(nativeIn))
}

// SellQuote carries the full arithmetic of a sell at a fixed price.
type SellQuote struct {
	BurnFee   uint64 // tokens burned off the top
	NetTokens uint64 // tokens actually converted to lamports
	NativeOut uint64 // lamports owed to the seller
}

// QuoteSell prices a token redemption: the sell-burn fee comes off the
// token amount first, then proceeds are floor(net * price / TokenScale).
// Vault sufficiency is the caller's concern.
func QuoteSell(price, tokenIn uint64) (SellQuote, error) {
	if tokenIn < MinSellAmount {
		return SellQuote{}, ErrSellAmountTooSmall
	}
	if price == 0 {
		return SellQuote{}, ErrInvalidPrice
	}
	burn, err := SellBurn(tokenIn)
	if err != nil {
		return SellQuote{}, err
	}
	net, err := checkedSub(tokenIn, burn)
	if err != nil {
		return SellQuote{}, err
	}
	out, err := mulDiv(net, price, TokenScale)
	if err != nil {
		return SellQuote{}, err
	}
	return SellQuote{BurnFee: burn, NetTokens: net, NativeOut: out}, nil
}

// NextSellPrice returns the post-sell price: a saturating step down that
// never crosses the MinPrice floor.
func NextSellPrice(price, nativeOut uint64) uint64 {
	d := priceDelta(nativeOut)
	var next uint64
	if d < price {
		next = price - d
	}
	if next < MinPrice {
		next = MinPrice
	}
	return next
}
