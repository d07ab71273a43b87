package trading

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuyNoobFixedSize(t *testing.T) {
	p := NewPortfolio(1000)

	got := Buy(p, 1.0, DifficultyNoob)

	if !almostEqual(got.BalanceQuote, 950) {
		t.Errorf("BalanceQuote=%v, expected 950", got.BalanceQuote)
	}
	if !almostEqual(got.BalanceAsset, 50) {
		t.Errorf("BalanceAsset=%v, expected 50", got.BalanceAsset)
	}
	if got.EntryPrice == nil || !almostEqual(*got.EntryPrice, 1.0) {
		t.Errorf("EntryPrice=%v, expected 1.0", got.EntryPrice)
	}
	if got.TotalTrades != 1 {
		t.Errorf("TotalTrades=%v, expected 1", got.TotalTrades)
	}
}

func TestBuySizingByDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		difficulty Difficulty
		wantSpent  float64
	}{
		{"noob fixed 50", DifficultyNoob, 50},
		{"degen 10 percent", DifficultyDegen, 100},
		{"pro 25 percent", DifficultyPro, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPortfolio(1000)
			got := Buy(p, 2.0, tt.difficulty)
			spent := p.BalanceQuote - got.BalanceQuote
			if !almostEqual(spent, tt.wantSpent) {
				t.Errorf("spent %v, expected %v", spent, tt.wantSpent)
			}
			if !almostEqual(got.BalanceAsset, tt.wantSpent/2.0) {
				t.Errorf("BalanceAsset=%v, expected %v", got.BalanceAsset, tt.wantSpent/2.0)
			}
		})
	}
}

func TestBuyInsufficientBalanceIsNoOp(t *testing.T) {
	p := NewPortfolio(10)

	got := Buy(p, 1.0, DifficultyNoob)

	if got != p {
		t.Errorf("expected unchanged portfolio, got %+v", got)
	}
}

func TestBuyAmountNonPositiveIsNoOp(t *testing.T) {
	p := NewPortfolio(1000)

	if got := BuyAmount(p, 1.0, 0); got != p {
		t.Errorf("zero amount: expected unchanged portfolio, got %+v", got)
	}
	if got := BuyAmount(p, 1.0, -5); got != p {
		t.Errorf("negative amount: expected unchanged portfolio, got %+v", got)
	}
}

func TestBuyWeightedAverageEntry(t *testing.T) {
	p := NewPortfolio(1000)

	p = BuyAmount(p, 1.0, 100) // 100 tokens @ 1.0
	p = BuyAmount(p, 2.0, 100) // 50 tokens @ 2.0

	// 200 quote spent for 150 tokens.
	if p.EntryPrice == nil || !almostEqual(*p.EntryPrice, 200.0/150.0) {
		t.Errorf("EntryPrice=%v, expected %v", p.EntryPrice, 200.0/150.0)
	}
	if !almostEqual(p.BalanceAsset, 150) {
		t.Errorf("BalanceAsset=%v, expected 150", p.BalanceAsset)
	}
	if p.TotalTrades != 2 {
		t.Errorf("TotalTrades=%v, expected 2", p.TotalTrades)
	}
}

func TestSellNoobHalfPosition(t *testing.T) {
	p := Portfolio{
		BalanceQuote: 500,
		BalanceAsset: 100,
		EntryPrice:   entryPtr(1.0),
		TotalTrades:  1,
	}

	got := Sell(p, 1.5, DifficultyNoob)

	if !almostEqual(got.BalanceAsset, 50) {
		t.Errorf("BalanceAsset=%v, expected 50", got.BalanceAsset)
	}
	if !almostEqual(got.BalanceQuote, 575) {
		t.Errorf("BalanceQuote=%v, expected 575", got.BalanceQuote)
	}
	if !almostEqual(got.RealizedPnL, 25) {
		t.Errorf("RealizedPnL=%v, expected 25", got.RealizedPnL)
	}
	if got.TotalTrades != 2 {
		t.Errorf("TotalTrades=%v, expected 2", got.TotalTrades)
	}
	if got.EntryPrice == nil || *got.EntryPrice != 1.0 {
		t.Errorf("EntryPrice=%v, expected to keep 1.0", got.EntryPrice)
	}
}

func TestSellWithoutHoldingsIsNoOp(t *testing.T) {
	p := NewPortfolio(500)

	if got := Sell(p, 1.5, DifficultyNoob); got != p {
		t.Errorf("expected unchanged portfolio, got %+v", got)
	}
	if got := PanicExit(p, 1.5); got != p {
		t.Errorf("panic exit: expected unchanged portfolio, got %+v", got)
	}
}

func TestSellProExitRules(t *testing.T) {
	base := Portfolio{
		BalanceQuote: 0,
		BalanceAsset: 100,
		EntryPrice:   entryPtr(1.0),
	}

	tests := []struct {
		name     string
		price    float64
		wantQty  float64 // tokens sold
		wantFlat bool
	}{
		{"take profit sells half", 1.25, 50, false},
		{"stop loss sells all", 0.85, 100, true},
		{"partial sell otherwise", 1.05, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sell(base, tt.price, DifficultyPro)
			sold := base.BalanceAsset - got.BalanceAsset
			if !almostEqual(sold, tt.wantQty) {
				t.Errorf("sold %v tokens, expected %v", sold, tt.wantQty)
			}
			if tt.wantFlat != (got.EntryPrice == nil) {
				t.Errorf("flat=%v, expected %v", got.EntryPrice == nil, tt.wantFlat)
			}
		})
	}
}

func TestPanicExitLiquidatesEverything(t *testing.T) {
	p := Portfolio{
		BalanceQuote: 500,
		BalanceAsset: 100,
		EntryPrice:   entryPtr(1.0),
		TotalTrades:  1,
	}

	got := PanicExit(p, 1.5)

	if got.BalanceAsset != 0 {
		t.Errorf("BalanceAsset=%v, expected 0", got.BalanceAsset)
	}
	if !almostEqual(got.BalanceQuote, 650) {
		t.Errorf("BalanceQuote=%v, expected 650", got.BalanceQuote)
	}
	if got.EntryPrice != nil {
		t.Errorf("EntryPrice=%v, expected cleared", *got.EntryPrice)
	}
}

// Selling the whole position right after a buy at the same price locks in
// zero PnL and clears the cost basis.
func TestBuyThenFullSellRoundTrip(t *testing.T) {
	p := NewPortfolio(1000)

	p = Buy(p, 2.0, DifficultyDegen)
	p = SellAmount(p, 2.0, p.BalanceAsset)

	if !almostEqual(p.RealizedPnL, 0) {
		t.Errorf("RealizedPnL=%v, expected 0", p.RealizedPnL)
	}
	if p.BalanceAsset != 0 {
		t.Errorf("BalanceAsset=%v, expected 0", p.BalanceAsset)
	}
	if p.EntryPrice != nil {
		t.Errorf("EntryPrice=%v, expected cleared", *p.EntryPrice)
	}
	if !almostEqual(p.BalanceQuote, 1000) {
		t.Errorf("BalanceQuote=%v, expected 1000", p.BalanceQuote)
	}
}

// Balances never go negative under any operation sequence.
func TestBalancesStayNonNegative(t *testing.T) {
	p := NewPortfolio(120)
	prices := []float64{1.0, 0.5, 2.5, 0.01, 3.7, 0.9}

	for i, price := range prices {
		p = Buy(p, price, DifficultyDegen)
		if i%2 == 0 {
			p = Sell(p, price, DifficultyPro)
		}
		p = SellAmount(p, price, 1e9) // over-sized sell caps at holdings
		if p.BalanceQuote < 0 {
			t.Fatalf("BalanceQuote went negative: %v", p.BalanceQuote)
		}
		if p.BalanceAsset < 0 {
			t.Fatalf("BalanceAsset went negative: %v", p.BalanceAsset)
		}
	}
}

func TestUnrealizedPnL(t *testing.T) {
	flat := NewPortfolio(1000)
	if got := UnrealizedPnL(flat, 2.0); got != 0 {
		t.Errorf("flat portfolio UnrealizedPnL=%v, expected 0", got)
	}

	open := Portfolio{BalanceAsset: 100, EntryPrice: entryPtr(1.0)}
	if got := UnrealizedPnL(open, 1.5); !almostEqual(got, 50) {
		t.Errorf("UnrealizedPnL=%v, expected 50", got)
	}
	if got := UnrealizedPnL(open, 0.5); !almostEqual(got, -50) {
		t.Errorf("UnrealizedPnL=%v, expected -50", got)
	}
}

func TestValidateTrade(t *testing.T) {
	tests := []struct {
		name       string
		portfolio  Portfolio
		price      float64
		difficulty Difficulty
		side       Side
		wantValid  bool
		wantReason string
	}{
		{
			name:       "buy with insufficient balance",
			portfolio:  NewPortfolio(10),
			price:      1.0,
			difficulty: DifficultyNoob,
			side:       SideBuy,
			wantValid:  false,
			wantReason: "Insufficient balance",
		},
		{
			name: "noob safety limit",
			portfolio: Portfolio{
				BalanceQuote: 60,
				BalanceAsset: 300,
				EntryPrice:   entryPtr(1.0),
			},
			price:      1.0,
			difficulty: DifficultyNoob,
			side:       SideBuy,
			wantValid:  false,
			wantReason: "Safety limit",
		},
		{
			name:       "sell with no holdings",
			portfolio:  NewPortfolio(1000),
			price:      1.0,
			difficulty: DifficultyNoob,
			side:       SideSell,
			wantValid:  false,
			wantReason: "No tokens to sell",
		},
		{
			name:       "valid buy",
			portfolio:  NewPortfolio(1000),
			price:      1.0,
			difficulty: DifficultyDegen,
			side:       SideBuy,
			wantValid:  true,
		},
		{
			name: "valid sell",
			portfolio: Portfolio{
				BalanceAsset: 10,
				EntryPrice:   entryPtr(1.0),
			},
			price:      1.0,
			difficulty: DifficultyPro,
			side:       SideSell,
			wantValid:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateTrade(tt.portfolio, tt.price, tt.difficulty, tt.side)
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid=%v, expected %v (reason=%q)", got.Valid, tt.wantValid, got.Reason)
			}
			if tt.wantReason != "" && !contains(got.Reason, tt.wantReason) {
				t.Errorf("Reason=%q, expected to contain %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
	}{
		{"noob", DifficultyNoob},
		{"DEGEN", DifficultyDegen},
		{" pro ", DifficultyPro},
		{"", DifficultyNoob},
		{"whale", DifficultyNoob},
	}
	for _, tt := range tests {
		if got := ParseDifficulty(tt.in); got != tt.want {
			t.Errorf("ParseDifficulty(%q)=%v, expected %v", tt.in, got, tt.want)
		}
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
