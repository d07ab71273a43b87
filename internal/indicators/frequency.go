package indicators

import "time"

// BuyFrequency counts buy timestamps inside the trailing window and
// normalizes to buys per minute.
func BuyFrequency(buyTimestamps []int64, windowMinutes int) float64 {
	return buyFrequencyAt(buyTimestamps, windowMinutes, nowMillis())
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func buyFrequencyAt(buyTimestamps []int64, windowMinutes int, nowMillis int64) float64 {
	if len(buyTimestamps) == 0 || windowMinutes <= 0 {
		return 0
	}

	windowStart := nowMillis - int64(windowMinutes)*60*1000
	recent := 0
	for _, ts := range buyTimestamps {
		if ts >= windowStart {
			recent++
		}
	}
	return float64(recent) / float64(windowMinutes)
}
