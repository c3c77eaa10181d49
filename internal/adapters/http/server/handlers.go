package server

import (
	"net/http"
	"strings"
	"time"

	"cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/domain/date"
	httpports "cryptowallet/internal/ports/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HandlerAdapter adapts application services to HTTP handlers
type HandlerAdapter struct {
	valuationService httpports.ValuationService
	assetsService    httpports.AssetsService
	priceService     httpports.PriceService
	syncService      httpports.SyncService
	logger           *logger.Logger
}

// NewHandlerAdapter creates a new handler adapter
func NewHandlerAdapter(
	valuationService httpports.ValuationService,
	assetsService httpports.AssetsService,
	priceService httpports.PriceService,
	syncService httpports.SyncService,
	logger *logger.Logger,
) *HandlerAdapter {
	return &HandlerAdapter{
		valuationService: valuationService,
		assetsService:    assetsService,
		priceService:     priceService,
		syncService:      syncService,
		logger:           logger,
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, httpports.ErrorResponse{
		Error:   "Bad Request",
		Message: message,
	})
}

// fail logs err and writes it with the status it maps to.
func (h *HandlerAdapter) fail(c echo.Context, msg string, err error, fields ...zap.Field) error {
	status := httpports.StatusFor(err)
	fields = append(fields, zap.Error(err))
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, fields...)
	} else {
		h.logger.Warn(msg, fields...)
	}
	return c.JSON(status, httpports.NewErrorResponse(status, err))
}

// GetPortfolio handles GET /api/v1/portfolio
func (h *HandlerAdapter) GetPortfolio(c echo.Context) error {
	v, err := h.valuationService.Calculate(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to value portfolio", err)
	}

	if len(v.Failures) > 0 {
		h.logger.Warn("Portfolio valued with failures", zap.Int("failures", len(v.Failures)))
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPValuation(v, true))
}

// GetHoldings handles GET /api/v1/portfolio/holdings
func (h *HandlerAdapter) GetHoldings(c echo.Context) error {
	v, err := h.valuationService.Calculate(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to value portfolio", err)
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPValuation(v, false))
}

// GetHistory handles GET /api/v1/portfolio/history?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *HandlerAdapter) GetHistory(c echo.Context) error {
	var from, to date.Date
	var err error

	if param := c.QueryParam("from"); param != "" {
		if from, err = date.Parse(param); err != nil {
			return badRequest(c, "invalid from date")
		}
	}
	if param := c.QueryParam("to"); param != "" {
		if to, err = date.Parse(param); err != nil {
			return badRequest(c, "invalid to date")
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return badRequest(c, "to must not be before from")
	}

	v, err := h.valuationService.Calculate(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to value portfolio", err)
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPHistory(v, from, to))
}

// ListOperations handles GET /api/v1/operations
func (h *HandlerAdapter) ListOperations(c echo.Context) error {
	ops, err := h.assetsService.Operations(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to list operations", err)
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPOperations(ops))
}

// ResetOperations handles DELETE /api/v1/operations
func (h *HandlerAdapter) ResetOperations(c echo.Context) error {
	if err := h.assetsService.Reset(c.Request().Context()); err != nil {
		return h.fail(c, "Failed to reset portfolio", err)
	}

	h.logger.Info("Portfolio reset")
	return c.NoContent(http.StatusNoContent)
}

// DeleteAssetHistory handles DELETE /api/v1/operations/:assetID
func (h *HandlerAdapter) DeleteAssetHistory(c echo.Context) error {
	assetID := c.Param("assetID")
	if assetID == "" {
		return badRequest(c, "assetID is required")
	}

	if err := h.assetsService.RemoveAssetHistory(c.Request().Context(), assetID); err != nil {
		return h.fail(c, "Failed to remove asset history", err, zap.String("asset_id", assetID))
	}

	return c.NoContent(http.StatusNoContent)
}

// AddAsset handles POST /api/v1/assets
func (h *HandlerAdapter) AddAsset(c echo.Context) error {
	var req httpports.AddAssetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		return badRequest(c, "symbol is required")
	}

	snapshot, err := h.assetsService.AddAsset(c.Request().Context(), symbol, req.Amount)
	if err != nil {
		return h.fail(c, "Failed to add asset", err, zap.String("symbol", symbol))
	}

	return c.JSON(http.StatusCreated, httpports.ToHTTPHolding(snapshot))
}

// EditAsset handles PUT /api/v1/assets/:symbol
func (h *HandlerAdapter) EditAsset(c echo.Context) error {
	symbol := c.Param("symbol")

	var req httpports.EditAssetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	changed, err := h.assetsService.EditAsset(c.Request().Context(), symbol, req.InitialAmount, req.NewAmount)
	if err != nil {
		return h.fail(c, "Failed to edit asset", err, zap.String("symbol", symbol))
	}

	return c.JSON(http.StatusOK, httpports.EditAssetResponse{Changed: changed})
}

// DeleteAsset handles DELETE /api/v1/assets/:symbol
func (h *HandlerAdapter) DeleteAsset(c echo.Context) error {
	symbol := c.Param("symbol")

	var req httpports.DeleteAssetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.assetsService.DeleteAsset(c.Request().Context(), symbol, req.Amount); err != nil {
		return h.fail(c, "Failed to delete asset", err, zap.String("symbol", symbol))
	}

	return c.NoContent(http.StatusNoContent)
}

// ListCoins handles GET /api/v1/coins
func (h *HandlerAdapter) ListCoins(c echo.Context) error {
	coins, err := h.assetsService.Catalog(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to list coins", err)
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPCoins(coins))
}

// GetPriceCoverage handles GET /api/v1/prices/:assetID
func (h *HandlerAdapter) GetPriceCoverage(c echo.Context) error {
	assetID := c.Param("assetID")

	coverage, err := h.priceService.Coverage(c.Request().Context(), assetID)
	if err != nil {
		return h.fail(c, "Failed to read price coverage", err, zap.String("asset_id", assetID))
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPCoverage(coverage))
}

// SyncPrices handles POST /api/v1/prices/sync
func (h *HandlerAdapter) SyncPrices(c echo.Context) error {
	report, err := h.syncService.Sync(c.Request().Context())
	if err != nil {
		return h.fail(c, "Failed to sync prices", err)
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPSyncReport(report))
}

func (h *HandlerAdapter) HealthCheck(c echo.Context) error {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "crypto-portfolio-valuation",
		"version":   "1.0.0",
	}
	return c.JSON(http.StatusOK, status)
}
