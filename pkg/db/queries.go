// Package db persists users, trades and session snapshots for the tradeOS core.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrUserIDRequired = errors.New("user_id is required for data isolation")
	ErrNotFound       = errors.New("record not found")
)

// ----------------------------------------
// User Queries
// ----------------------------------------

// CreateUser inserts a new user row.
func (d *Database) CreateUser(ctx context.Context, u User) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail returns the user with the given email, or nil if absent.
func (d *Database) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE email = ?
	`, email)
	return scanUser(row)
}

// GetUserByID returns the user with the given id, or nil if absent.
func (d *Database) GetUserByID(ctx context.Context, id string) (*User, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ----------------------------------------
// Trade Queries
// ----------------------------------------

// InsertTrade records an executed trade.
func (d *Database) InsertTrade(ctx context.Context, t Trade) error {
	if t.UserID == "" {
		return ErrUserIDRequired
	}

	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO trades (id, user_id, side, price, qty, quote_value, pnl, points, difficulty, is_ai, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Side, t.Price, t.Qty, t.QuoteValue, t.PnL, t.Points, t.Difficulty, t.IsAI, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetTradesByUser returns the most recent trades for a user.
func (d *Database) GetTradesByUser(ctx context.Context, userID string, limit int) ([]Trade, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, user_id, side, price, qty, quote_value, pnl, points, difficulty, is_ai, created_at
		FROM trades
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.ID, &t.UserID, &t.Side, &t.Price, &t.Qty, &t.QuoteValue, &t.PnL, &t.Points, &t.Difficulty, &t.IsAI, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ----------------------------------------
// User Stats / Leaderboard Queries
// ----------------------------------------

// AddUserStats increments per-user aggregates after a trade. pnl is the
// trade's realized pnl change; it feeds the best/worst trade extremes and,
// when non-zero, the win/loss counters (buys realize nothing and count as
// neither).
func (d *Database) AddUserStats(ctx context.Context, userID string, points int64, volume, pnl float64, isAI bool) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	var wins, losses int64
	if pnl > 0 {
		wins = 1
	} else if pnl < 0 {
		losses = 1
	}

	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, total_points, total_trades, total_volume, best_trade, worst_trade, wins, losses, is_ai, last_active)
		VALUES (?, ?, 1, ?, MAX(?, 0), MIN(?, 0), ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			total_points = total_points + excluded.total_points,
			total_trades = total_trades + 1,
			total_volume = total_volume + excluded.total_volume,
			best_trade = MAX(best_trade, excluded.best_trade),
			worst_trade = MIN(worst_trade, excluded.worst_trade),
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			last_active = CURRENT_TIMESTAMP
	`, userID, points, volume, pnl, pnl, wins, losses, isAI)
	if err != nil {
		return fmt.Errorf("upsert user stats: %w", err)
	}
	return nil
}

// statsColumns is shared by GetUserStats and Leaderboard so the scan order
// stays in one place. win_rate is derived from the closing-trade counters.
const statsColumns = `
	s.user_id,
	COALESCE(NULLIF(u.username, ''), s.user_id) AS username,
	s.total_points, s.total_trades, s.total_volume,
	s.best_trade, s.worst_trade, s.wins, s.losses,
	CASE WHEN s.wins + s.losses > 0 THEN CAST(s.wins AS REAL) / (s.wins + s.losses) ELSE 0 END AS win_rate,
	s.is_ai, s.last_active
`

func scanStats(s *UserStats, scan func(dest ...any) error) error {
	return scan(&s.UserID, &s.Username, &s.TotalPoints, &s.TotalTrades, &s.TotalVolume,
		&s.BestTrade, &s.WorstTrade, &s.Wins, &s.Losses, &s.WinRate, &s.IsAI, &s.LastActive)
}

// GetUserStats returns aggregates for a user; zero-valued stats if absent.
func (d *Database) GetUserStats(ctx context.Context, userID string) (UserStats, error) {
	if userID == "" {
		return UserStats{}, ErrUserIDRequired
	}

	row := d.DB.QueryRowContext(ctx, `
		SELECT `+statsColumns+`
		FROM user_stats s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.user_id = ?
	`, userID)

	var s UserStats
	if err := scanStats(&s, row.Scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserStats{UserID: userID, Username: userID}, nil
		}
		return UserStats{}, fmt.Errorf("scan user stats: %w", err)
	}
	return s, nil
}

// Leaderboard returns users ordered by points. AI participants are excluded
// unless includeAI is set. Usernames fall back to the raw user id for rows
// without an account (bots, feeds).
func (d *Database) Leaderboard(ctx context.Context, limit int, includeAI bool) ([]UserStats, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + statsColumns + `
		FROM user_stats s
		LEFT JOIN users u ON u.id = s.user_id
	`
	if !includeAI {
		query += " WHERE s.is_ai = 0"
	}
	query += " ORDER BY s.total_points DESC LIMIT ?"

	rows, err := d.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var stats []UserStats
	for rows.Next() {
		var s UserStats
		if err := scanStats(&s, rows.Scan); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// ----------------------------------------
// Session Snapshot Queries
// ----------------------------------------

// UpsertSnapshot persists the latest session state for a user.
func (d *Database) UpsertSnapshot(ctx context.Context, s SessionSnapshot) error {
	if s.UserID == "" {
		return ErrUserIDRequired
	}

	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO session_snapshots (user_id, difficulty, balance_quote, balance_asset, entry_price, realized_pnl, total_trades, level, xp, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			difficulty = excluded.difficulty,
			balance_quote = excluded.balance_quote,
			balance_asset = excluded.balance_asset,
			entry_price = excluded.entry_price,
			realized_pnl = excluded.realized_pnl,
			total_trades = excluded.total_trades,
			level = excluded.level,
			xp = excluded.xp,
			updated_at = CURRENT_TIMESTAMP
	`, s.UserID, s.Difficulty, s.BalanceQuote, s.BalanceAsset, s.EntryPrice, s.RealizedPnL, s.TotalTrades, s.Level, s.XP)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the persisted session state for a user.
func (d *Database) GetSnapshot(ctx context.Context, userID string) (*SessionSnapshot, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	row := d.DB.QueryRowContext(ctx, `
		SELECT user_id, difficulty, balance_quote, balance_asset, entry_price, realized_pnl, total_trades, level, xp, updated_at
		FROM session_snapshots WHERE user_id = ?
	`, userID)

	var s SessionSnapshot
	var entry sql.NullFloat64
	if err := row.Scan(&s.UserID, &s.Difficulty, &s.BalanceQuote, &s.BalanceAsset, &entry, &s.RealizedPnL, &s.TotalTrades, &s.Level, &s.XP, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	if entry.Valid {
		v := entry.Float64
		s.EntryPrice = &v
	}
	return &s, nil
}

// DeleteSnapshot removes the persisted session state on reset.
func (d *Database) DeleteSnapshot(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	if _, err := d.DB.ExecContext(ctx, `DELETE FROM session_snapshots WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
