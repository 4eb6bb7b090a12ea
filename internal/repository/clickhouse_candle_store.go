package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"GlickoLab/internal/domain/models"
	domrepo "GlickoLab/internal/domain/repository"
	pkgch "GlickoLab/pkg/clickhouse"
	applogger "GlickoLab/pkg/logger"
)

// CHCandleStore implements CandleStore backed by ClickHouse. Candles are the
// only persisted data; ratings and backtest results are always recomputed.
type CHCandleStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client, table string) *CHCandleStore {
	if table == "" {
		table = "glickolab.candles"
	}
	return &CHCandleStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

var candleSchema = []string{
	`CREATE DATABASE IF NOT EXISTS glickolab`,
	`CREATE TABLE IF NOT EXISTS glickolab.candles (
        symbol LowCardinality(String),
        open_time Int64,
        close_time Int64,
        open Float64,
        high Float64,
        low Float64,
        close Float64,
        volume Float64,
        quote_asset_volume Float64,
        number_of_trades UInt32,
        taker_buy_base_asset_volume Float64,
        taker_buy_quote_asset_volume Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, open_time)`,
}

func (s *CHCandleStore) Init(ctx context.Context) error {
	for _, stmt := range candleSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init candle schema: %w", err)
		}
	}
	return nil
}

func (s *CHCandleStore) Store(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s
        (symbol, open_time, close_time, open, high, low, close, volume,
         quote_asset_volume, number_of_trades, taker_buy_base_asset_volume, taker_buy_quote_asset_volume)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		c.Symbol, c.OpenTime, c.CloseTime,
		c.Open, c.High, c.Low, c.Close, c.Volume,
		c.QuoteAssetVolume, c.NumberOfTrades,
		c.TakerBuyBaseAssetVolume, c.TakerBuyQuoteAssetVolume,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store candle error",
				applogger.String("symbol", c.Symbol),
				applogger.Int64("open_time", c.OpenTime),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store candle: %w", err)
	}
	return nil
}

func (s *CHCandleStore) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	for _, c := range candles {
		if c == nil {
			return fmt.Errorf("candle is nil")
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO %s
        (symbol, open_time, close_time, open, high, low, close, volume,
         quote_asset_volume, number_of_trades, taker_buy_base_asset_volume, taker_buy_quote_asset_volume)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx,
			c.Symbol, c.OpenTime, c.CloseTime,
			c.Open, c.High, c.Low, c.Close, c.Volume,
			c.QuoteAssetVolume, c.NumberOfTrades,
			c.TakerBuyBaseAssetVolume, c.TakerBuyQuoteAssetVolume,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch insert candle %s@%d: %w", c.Symbol, c.OpenTime, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	if s.l != nil {
		s.l.Debug("stored candle batch", applogger.Int("count", len(candles)))
	}
	return nil
}

func (s *CHCandleStore) Query(ctx context.Context, symbol string, from, to int64, limit int) ([]models.Candle, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT symbol, open_time, close_time, open, high, low, close, volume,
               quote_asset_volume, number_of_trades, taker_buy_base_asset_volume, taker_buy_quote_asset_volume
        FROM %s
        WHERE symbol = ? AND open_time >= ? AND open_time <= ?
        ORDER BY open_time ASC`, s.table)
	args := []interface{}{symbol, from, to}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query candles error",
				applogger.String("symbol", symbol),
				applogger.Int64("from", from),
				applogger.Int64("to", to),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 1024)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(
			&c.Symbol, &c.OpenTime, &c.CloseTime,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume,
			&c.QuoteAssetVolume, &c.NumberOfTrades,
			&c.TakerBuyBaseAssetVolume, &c.TakerBuyQuoteAssetVolume,
		); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse query candles ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHCandleStore) Close() error {
	return nil // pool is owned by pkg/clickhouse client
}

var _ domrepo.CandleStore = (*CHCandleStore)(nil)
