package events

// Event enumerates high-level topics inside a trading session.
type Event string

const (
	EventPriceTick     Event = "price_tick"
	EventDeviceSignal  Event = "device_signal"
	EventTradeExecuted Event = "trade_executed"
	EventLevelUp       Event = "level_up"
)
