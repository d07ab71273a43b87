package i18n

import (
	"reflect"
	"sync"
)

// Language type
type Language string

const (
	LangEN Language = "en"
	LangZH Language = "zh"
)

// Messages holds all translatable strings
type Messages struct {
	// System
	Starting           string
	ConfigLoaded       string
	UsingDBPath        string
	ServerListening    string
	ShuttingDown       string
	SystemMetricsInit  string
	ConfigLoadFailed   string
	DBInitFailed       string
	DBMigrationsFailed string
	APIServerError     string
	InstanceID         string

	// Market
	MarketPresetsLoaded     string
	MarketPresetsLoadFailed string
	SimulatorStarted        string
	SimulatorStopped        string
	HistorySeeded           string

	// Sessions
	SessionStarted     string
	SessionReset       string
	SessionNotFound    string
	FeedStarted        string
	SnapshotSaveFailed string

	// Trading
	TradeExecuted     string
	TradeRejected     string
	TradeSaveFailed   string
	StatsUpdateFailed string
	LevelUp           string

	// AI trader
	BotStarted     string
	BotStopped     string
	BotStartFailed string
	BotTradeFailed string
}

var (
	currentLang Language = LangEN
	mu          sync.RWMutex
	messages    *Messages
)

// English messages
var messagesEN = Messages{
	// System
	Starting:           "Starting tradeOS core...",
	ConfigLoaded:       "Config loaded (Port: %s)",
	UsingDBPath:        "Using DB path: %s",
	ServerListening:    "Server listening on :%s",
	ShuttingDown:       "Shutting down gracefully...",
	SystemMetricsInit:  "System metrics initialized",
	ConfigLoadFailed:   "Failed to load config: %v",
	DBInitFailed:       "Failed to init database: %v",
	DBMigrationsFailed: "Failed to apply migrations: %v",
	APIServerError:     "API server error: %v",
	InstanceID:         "Instance ID: %s",

	// Market
	MarketPresetsLoaded:     "Market presets loaded from %s",
	MarketPresetsLoadFailed: "Failed to load market presets: %v (using defaults)",
	SimulatorStarted:        "Simulator started for %s (difficulty=%s, interval=%v)",
	SimulatorStopped:        "Simulator stopped for %s",
	HistorySeeded:           "Seeded %d historical ticks for %s (last price: %.4f)",

	// Sessions
	SessionStarted:     "Session started: %s (difficulty=%s)",
	SessionReset:       "Session reset: %s",
	SessionNotFound:    "Session not found: %s",
	FeedStarted:        "Public price feed started: %s",
	SnapshotSaveFailed: "Failed to save session snapshot for %s: %v",

	// Trading
	TradeExecuted:     "Trade executed: %s %s %.4f @ %.4f (points: %d)",
	TradeRejected:     "Trade rejected for %s: %s",
	TradeSaveFailed:   "Failed to save trade for %s: %v",
	StatsUpdateFailed: "Failed to update user stats for %s: %v",
	LevelUp:           "Level up: %s is now level %d",

	// AI trader
	BotStarted:     "AI trader started: %s (difficulty=%s)",
	BotStopped:     "AI trader stopped: %s",
	BotStartFailed: "Failed to start AI trader: %v",
	BotTradeFailed: "AI trader %s trade failed: %v",
}

// Chinese messages
var messagesZH = Messages{
	// System
	Starting:           "啟動 tradeOS 核心...",
	ConfigLoaded:       "設定已載入（埠號：%s）",
	UsingDBPath:        "使用資料庫路徑：%s",
	ServerListening:    "服務監聽於 :%s",
	ShuttingDown:       "正在優雅關閉...",
	SystemMetricsInit:  "系統指標初始化完成",
	ConfigLoadFailed:   "讀取設定失敗：%v",
	DBInitFailed:       "初始化資料庫失敗：%v",
	DBMigrationsFailed: "套用資料庫遷移失敗：%v",
	APIServerError:     "API 伺服器錯誤：%v",
	InstanceID:         "主機識別碼：%s",

	// Market
	MarketPresetsLoaded:     "已從 %s 載入行情預設",
	MarketPresetsLoadFailed: "載入行情預設失敗：%v（使用內建值）",
	SimulatorStarted:        "%s 的行情模擬器已啟動（難度=%s，間隔=%v）",
	SimulatorStopped:        "%s 的行情模擬器已停止",
	HistorySeeded:           "已為 %s 播種 %d 筆歷史行情（最新價格：%.4f）",

	// Sessions
	SessionStarted:     "交易場次已開始：%s（難度=%s）",
	SessionReset:       "交易場次已重置：%s",
	SessionNotFound:    "找不到交易場次：%s",
	FeedStarted:        "公開行情已啟動：%s",
	SnapshotSaveFailed: "儲存 %s 的場次快照失敗：%v",

	// Trading
	TradeExecuted:     "交易完成：%s %s %.4f @ %.4f（積分：%d）",
	TradeRejected:     "%s 的交易被拒絕：%s",
	TradeSaveFailed:   "儲存 %s 的交易紀錄失敗：%v",
	StatsUpdateFailed: "更新 %s 的使用者統計失敗：%v",
	LevelUp:           "升級：%s 已達等級 %d",

	// AI trader
	BotStarted:     "AI 交易員已啟動：%s（難度=%s）",
	BotStopped:     "AI 交易員已停止：%s",
	BotStartFailed: "啟動 AI 交易員失敗：%v",
	BotTradeFailed: "AI 交易員 %s 交易失敗：%v",
}

func init() {
	messages = &messagesEN
}

// SetLanguage sets the current language
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()

	currentLang = lang
	switch lang {
	case LangZH:
		messages = &messagesZH
	default:
		messages = &messagesEN
	}
}

// GetLanguage returns the current language
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return currentLang
}

// M returns the current messages
func M() *Messages {
	mu.RLock()
	defer mu.RUnlock()
	return messages
}

// Get returns specific message by key dynamically using reflection
func Get(key string) string {
	msg := M()
	v := reflect.ValueOf(msg).Elem()
	f := v.FieldByName(key)
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return key
}
