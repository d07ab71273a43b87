// Package trading implements the portfolio ledger as pure value transitions.
// No operation returns an error for a no-op condition; callers compare the
// returned portfolio with the input (or run ValidateTrade first) to tell
// whether anything happened.
package trading

import "math"

// Position sizing and exit parameters per difficulty.
const (
	noobFixedSize     = 50.0 // quote units per buy
	degenBuyFraction  = 0.10
	proBuyFraction    = 0.25
	proBuyCapFraction = 0.50

	defaultSellFraction = 0.50
	proPartialFraction  = 0.30
	proTakeProfitPct    = 20.0
	proStopLossPct      = -10.0

	noobMaxPositionShare = 0.80
)

// Buy opens or adds to a position using the difficulty's default sizing.
func Buy(p Portfolio, currentPrice float64, difficulty Difficulty) Portfolio {
	return buyWithSize(p, currentPrice, positionSize(p, difficulty))
}

// BuyAmount opens or adds to a position spending exactly amount quote units.
func BuyAmount(p Portfolio, currentPrice float64, amount float64) Portfolio {
	return buyWithSize(p, currentPrice, amount)
}

func buyWithSize(p Portfolio, currentPrice, size float64) Portfolio {
	if size <= 0 || p.BalanceQuote < size {
		return p
	}

	tokensBought := size / currentPrice

	// Weighted-average cost basis across all open lots. A nil entry price
	// contributes zero, which is exact for a zero holding.
	totalCost := p.BalanceAsset*p.entry(0) + size
	totalTokens := p.BalanceAsset + tokensBought

	next := p
	next.BalanceQuote = p.BalanceQuote - size
	next.BalanceAsset = totalTokens
	next.EntryPrice = entryPtr(totalCost / totalTokens)
	next.TotalTrades = p.TotalTrades + 1
	return next
}

// Sell closes part of a position using the difficulty's default exit rule.
func Sell(p Portfolio, currentPrice float64, difficulty Difficulty) Portfolio {
	if p.BalanceAsset <= 0 {
		return p
	}
	return sellQty(p, currentPrice, sellQuantity(p, currentPrice, difficulty))
}

// SellAmount sells up to amount tokens, capped at the held quantity.
func SellAmount(p Portfolio, currentPrice float64, amount float64) Portfolio {
	if p.BalanceAsset <= 0 {
		return p
	}
	return sellQty(p, currentPrice, math.Min(amount, p.BalanceAsset))
}

// PanicExit liquidates the entire position regardless of difficulty.
func PanicExit(p Portfolio, currentPrice float64) Portfolio {
	if p.BalanceAsset <= 0 {
		return p
	}
	return sellQty(p, currentPrice, p.BalanceAsset)
}

func sellQty(p Portfolio, currentPrice, qty float64) Portfolio {
	if qty <= 0 {
		return p
	}

	proceeds := qty * currentPrice
	pnl := proceeds - qty*p.entry(currentPrice)

	next := p
	next.BalanceQuote = p.BalanceQuote + proceeds
	next.BalanceAsset = p.BalanceAsset - qty
	next.RealizedPnL = p.RealizedPnL + pnl
	next.TotalTrades = p.TotalTrades + 1
	if next.BalanceAsset > 0 {
		next.EntryPrice = p.EntryPrice
	} else {
		next.BalanceAsset = 0
		next.EntryPrice = nil
	}
	return next
}

// UnrealizedPnL marks the open position to currentPrice.
func UnrealizedPnL(p Portfolio, currentPrice float64) float64 {
	if p.EntryPrice == nil || p.BalanceAsset <= 0 {
		return 0
	}
	return p.BalanceAsset * (currentPrice - *p.EntryPrice)
}

// ValidateTrade is the advisory pre-check callers use to produce user-facing
// messages before invoking Buy/Sell.
func ValidateTrade(p Portfolio, currentPrice float64, difficulty Difficulty, side Side) Validation {
	switch side {
	case SideBuy:
		size := positionSize(p, difficulty)
		if p.BalanceQuote < size {
			return Validation{Valid: false, Reason: "Insufficient balance"}
		}
		if difficulty == DifficultyNoob {
			totalValue := p.BalanceQuote + p.BalanceAsset*currentPrice
			newPositionValue := (p.BalanceAsset + size/currentPrice) * currentPrice
			if newPositionValue > totalValue*noobMaxPositionShare {
				return Validation{Valid: false, Reason: "Safety limit exceeded: position cannot exceed 80% of portfolio"}
			}
		}
	case SideSell:
		if p.BalanceAsset <= 0 {
			return Validation{Valid: false, Reason: "No tokens to sell"}
		}
	}
	return Validation{Valid: true}
}

// positionSize is the single source of truth for default buy sizing.
func positionSize(p Portfolio, difficulty Difficulty) float64 {
	switch difficulty {
	case DifficultyDegen:
		return p.BalanceQuote * degenBuyFraction
	case DifficultyPro:
		return math.Min(p.BalanceQuote*proBuyFraction, p.BalanceQuote*proBuyCapFraction)
	default:
		return noobFixedSize
	}
}

// sellQuantity is the single source of truth for default sell sizing.
func sellQuantity(p Portfolio, currentPrice float64, difficulty Difficulty) float64 {
	if difficulty != DifficultyPro {
		return p.BalanceAsset * defaultSellFraction
	}

	if p.EntryPrice != nil {
		profitPct := (currentPrice - *p.EntryPrice) / *p.EntryPrice * 100
		if profitPct >= proTakeProfitPct {
			return p.BalanceAsset * defaultSellFraction // take profit
		}
		if profitPct <= proStopLossPct {
			return p.BalanceAsset // stop loss
		}
	}
	return p.BalanceAsset * proPartialFraction // partial sell
}
