package server

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// registerRoutes registers all HTTP routes using Echo
func registerRoutes(e *echo.Echo, handler *HandlerAdapter) {
	// Health check
	e.GET("/health", handler.HealthCheck)

	// Swagger documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/api/v1")

	// Valuation endpoints
	portfolio := v1.Group("/portfolio")
	portfolio.GET("", handler.GetPortfolio)
	portfolio.GET("/history", handler.GetHistory)
	portfolio.GET("/holdings", handler.GetHoldings)

	// Ledger endpoints
	operations := v1.Group("/operations")
	operations.GET("", handler.ListOperations)
	operations.DELETE("", handler.ResetOperations)
	operations.DELETE("/:assetID", handler.DeleteAssetHistory)

	assets := v1.Group("/assets")
	assets.POST("", handler.AddAsset)
	assets.PUT("/:symbol", handler.EditAsset)
	assets.DELETE("/:symbol", handler.DeleteAsset)

	v1.GET("/coins", handler.ListCoins)

	// Price cache endpoints
	prices := v1.Group("/prices")
	prices.POST("/sync", handler.SyncPrices)
	prices.GET("/:assetID", handler.GetPriceCoverage)
}
