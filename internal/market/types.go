package market

// Trend labels a tick with the dominant market regime.
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendSideways Trend = "sideways"
	TrendWhale    Trend = "whale"
	TrendRug      Trend = "rug"
)

// Tick is one discrete price update emitted by the simulator.
type Tick struct {
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // unix millis
	Trend     Trend   `json:"trend"`
}
