package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"tradeos-core/internal/session"
	"tradeos-core/internal/trading"
	"tradeos-core/pkg/i18n"

	"github.com/gin-gonic/gin"
)

// errSimulatorNotStarted is the user-facing message for requests that need a
// live session.
const errSimulatorNotStarted = "Price simulator not started"

// getSystemStatus exposes service identity and runtime counters.
func (s *Server) getSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"version":         s.Meta.Version,
		"instance_id":     s.Meta.InstanceID,
		"language":        s.Meta.Language,
		"difficulty":      s.Meta.Difficulty,
		"active_sessions": s.Registry.Count(),
		"uptime_seconds":  int(time.Since(s.startedAt).Seconds()),
	})
}

// getMetrics returns the full metrics snapshot.
func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Metrics.GetSnapshot())
}

// startSession boots (or reboots) the caller's trading session.
func (s *Server) startSession(c *gin.Context) {
	var req struct {
		Difficulty string `json:"difficulty"`
		Resume     bool   `json:"resume"`
	}
	// Empty body is fine; defaults apply.
	_ = c.ShouldBindJSON(&req)

	userID := CurrentUserID(c)
	difficulty := trading.ParseDifficulty(req.Difficulty)

	sess, err := s.Registry.Start(c.Request.Context(), userID, difficulty, req.Resume)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"userId":              userID,
		"difficulty":          sess.Difficulty(),
		"currentPrice":        sess.CurrentPrice(),
		"initialPriceHistory": sess.History().Ticks(),
	})
}

// resetSession tears the caller's session down and wipes the snapshot.
func (s *Server) resetSession(c *gin.Context) {
	userID := CurrentUserID(c)
	if err := s.Registry.Reset(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// getState returns the live game state for the caller.
func (s *Server) getState(c *gin.Context) {
	sess := s.Registry.Get(CurrentUserID(c))
	if sess == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errSimulatorNotStarted})
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// getSignals returns the indicator snapshot for the caller's session.
func (s *Server) getSignals(c *gin.Context) {
	sess := s.Registry.Get(CurrentUserID(c))
	if sess == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errSimulatorNotStarted})
		return
	}
	c.JSON(http.StatusOK, sess.Signals())
}

func (s *Server) tradeBuy(c *gin.Context)   { s.executeTrade(c, session.TradeBuy) }
func (s *Server) tradeSell(c *gin.Context)  { s.executeTrade(c, session.TradeSell) }
func (s *Server) tradePanic(c *gin.Context) { s.executeTrade(c, session.TradePanic) }

func (s *Server) executeTrade(c *gin.Context, kind session.TradeKind) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	// Missing body means default sizing.
	_ = c.ShouldBindJSON(&req)

	userID := CurrentUserID(c)
	result, err := s.Registry.ExecuteTrade(c.Request.Context(), userID, kind, req.Amount)
	if err != nil {
		if errors.Is(err, session.ErrNotStarted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errSimulatorNotStarted})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getUserPoints returns the caller's lifetime aggregates.
func (s *Server) getUserPoints(c *gin.Context) {
	stats, err := s.DB.GetUserStats(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"points":      stats.TotalPoints,
		"totalTrades": stats.TotalTrades,
		"totalVolume": stats.TotalVolume,
		"bestTrade":   stats.BestTrade,
		"worstTrade":  stats.WorstTrade,
		"winRate":     stats.WinRate,
	})
}

// leaderboardTTL bounds how stale a cached leaderboard page may be. Rankings
// only move when trades land, so a few seconds is plenty.
const leaderboardTTL = 5 * time.Second

type leaderboardEntry struct {
	Rank     int     `json:"rank"`
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Points   int64   `json:"points"`
	Trades   int64   `json:"trades"`
	Volume   float64 `json:"volume"`
	WinRate  float64 `json:"winRate"`
	IsAI     bool    `json:"isAI"`
}

// getLeaderboard returns users ranked by lifetime points.
func (s *Server) getLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	includeAI := c.Query("includeAI") == "true"

	key := "limit=" + strconv.Itoa(limit) + "&ai=" + strconv.FormatBool(includeAI)
	if ranked, ok := s.lbCache.GetFresh(key, leaderboardTTL); ok {
		c.JSON(http.StatusOK, gin.H{"leaderboard": ranked})
		return
	}

	stats, err := s.DB.Leaderboard(c.Request.Context(), limit, includeAI)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ranked := make([]leaderboardEntry, len(stats))
	for i, st := range stats {
		ranked[i] = leaderboardEntry{
			Rank:     i + 1,
			UserID:   st.UserID,
			Username: st.Username,
			Points:   st.TotalPoints,
			Trades:   st.TotalTrades,
			Volume:   st.TotalVolume,
			WinRate:  st.WinRate,
			IsAI:     st.IsAI,
		}
	}
	s.lbCache.Set(key, ranked)
	c.JSON(http.StatusOK, gin.H{"leaderboard": ranked})
}

// startFeed boots an anonymous price feed so charts can render without a
// session. Feeds live in their own id namespace: the endpoint is
// unauthenticated, so a caller-chosen name must never collide with (and
// replace) a player's live session.
func (s *Server) startFeed(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	_ = c.ShouldBindJSON(&req)
	name := req.UserID
	if name == "" {
		name = "public"
	}
	feedID := "feed:" + name

	sess, err := s.Registry.Start(c.Request.Context(), feedID, trading.DifficultyNoob, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf(i18n.M().FeedStarted, feedID)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"feedId":              feedID,
		"currentPrice":        sess.CurrentPrice(),
		"initialPriceHistory": sess.History().Ticks(),
	})
}
