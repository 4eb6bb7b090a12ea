package api

import (
	"strconv"

	"GlickoLab/internal/domain/models"
	"GlickoLab/internal/usecase"
	xhttp "GlickoLab/pkg/http"
	xlogger "GlickoLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EngineEchoHandler exposes the rating and backtest engines over HTTP.
type EngineEchoHandler struct {
	logger   *xlogger.Logger
	ratings  *usecase.RatingsUseCase
	backtest *usecase.BacktestUseCase
	candles  *usecase.CandlesUseCase
}

func NewEngineEchoHandler(
	logger *xlogger.Logger,
	ratings *usecase.RatingsUseCase,
	backtest *usecase.BacktestUseCase,
	candles *usecase.CandlesUseCase,
) *EngineEchoHandler {
	return &EngineEchoHandler{logger: logger, ratings: ratings, backtest: backtest, candles: candles}
}

func (h *EngineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/candles", h.Candles)
	g.POST("/ratings", h.CalculateRatings)
	g.POST("/backtest", h.RunBacktest)
	g.POST("/backtest/stored", h.RunStoredBacktest)
	g.POST("/backtest/windowed", h.RunWindowedBacktest)
	g.GET("/backtest/windowed/:key", h.FetchWindowedBacktest)
}

func (h *EngineEchoHandler) Candles(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	from, ok1 := parseTimeMs(c.QueryParam("from"))
	to, ok2 := parseTimeMs(c.QueryParam("to"))
	if symbol == "" || !ok1 || !ok2 {
		return xhttp.BadRequestResponse(c, "symbol, from and to are required")
	}
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0)

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol: symbol,
		From:   from,
		To:     to,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// parseTimeMs accepts unix milliseconds or any layout ParseTime knows.
func parseTimeMs(s string) (int64, bool) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, true
	}
	if t, ok := xhttp.ParseTime(s); ok {
		return t.UnixMilli(), true
	}
	return 0, false
}

func (h *EngineEchoHandler) CalculateRatings(c echo.Context) error {
	req := &models.CalculateRatingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snaps, err := h.ratings.Calculate(c.Request().Context(), req.Candles, req.Publish)
	if err != nil {
		h.logger.Error("ratings usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snaps)
}

func (h *EngineEchoHandler) RunBacktest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.backtest.Run(c.Request().Context(), req.Config, req.Ratings)
	if err != nil {
		h.logger.Error("backtest usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) RunStoredBacktest(c echo.Context) error {
	req := &models.StoredRatingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.backtest.RunFromStore(c.Request().Context(), req.Config)
	if err != nil {
		h.logger.Error("stored backtest usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) RunWindowedBacktest(c echo.Context) error {
	req := &models.WindowedBacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	if req.Async {
		key, err := h.backtest.EnqueueWindowed(ctx, req.Config, req.Ratings)
		if err != nil {
			h.logger.Error("enqueue windowed backtest error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.CreatedResponse(c, map[string]string{"key": key})
	}

	results, err := h.backtest.RunWindowed(ctx, req.Config, req.Ratings)
	if err != nil {
		h.logger.Error("windowed backtest usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, results)
}

func (h *EngineEchoHandler) FetchWindowedBacktest(c echo.Context) error {
	key := c.Param("key")
	results, ok, err := h.backtest.FetchWindowed(c.Request().Context(), key)
	if err != nil {
		h.logger.Error("fetch windowed backtest error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "results not ready")
	}
	return xhttp.SuccessResponse(c, results)
}
