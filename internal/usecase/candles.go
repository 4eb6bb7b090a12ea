package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"GlickoLab/internal/domain/models"
	domrepo "GlickoLab/internal/domain/repository"
	icache "GlickoLab/internal/service/cache"
	pkgcache "GlickoLab/pkg/cache"
)

const candlesCacheTTL = 30 * time.Second

// CandlesUseCase provides business logic for retrieving stored candles, with
// a short-lived in-process cache in front of ClickHouse.
type CandlesUseCase struct {
	store domrepo.CandleStore
	cache icache.BytesCache
}

func NewCandlesUseCase(store domrepo.CandleStore, cache icache.BytesCache) *CandlesUseCase {
	return &CandlesUseCase{store: store, cache: cache}
}

type GetCandlesParams struct {
	Symbol string
	From   int64 // unix ms, inclusive
	To     int64 // unix ms, inclusive
	Limit  int
}

type GetCandlesResult struct {
	Symbol  string          `json:"symbol"`
	From    int64           `json:"from"`
	To      int64           `json:"to"`
	Count   int             `json:"count"`
	Candles []models.Candle `json:"candles"`
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From > p.To {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}

	key := candlesCacheKey(p)
	if uc.cache != nil {
		if b, ok, err := uc.cache.GetBytes(key); err == nil && ok {
			var cached GetCandlesResult
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	if uc.store == nil {
		return nil, fmt.Errorf("no candle store configured")
	}
	candles, err := uc.store.Query(ctx, p.Symbol, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}

	res := &GetCandlesResult{
		Symbol:  p.Symbol,
		From:    p.From,
		To:      p.To,
		Count:   len(candles),
		Candles: candles,
	}
	if uc.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			_ = uc.cache.SetBytes(key, b, candlesCacheTTL)
		}
	}
	return res, nil
}

func candlesCacheKey(p GetCandlesParams) string {
	return pkgcache.GenerateKeyWithParams("candles", p.Symbol, p.From, p.To, p.Limit)
}
