// Package router wires the gin engine: middleware, the three /api route
// groups, and the root and health endpoints.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"futubridge/internal/handler"
)

type Config struct {
	AccountHandler *handler.AccountHandler
	MarketHandler  *handler.MarketHandler
	TradeHandler   *handler.TradeHandler
	SystemHandler  *handler.SystemHandler
	CORSOrigins    []string
	Debug          bool
	Log            *logrus.Logger
}

func NewRouter(cfg *Config) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger(cfg.Log))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/", cfg.SystemHandler.Root)
	router.GET("/health", cfg.SystemHandler.Health)

	api := router.Group("/api")
	registerAccountRoutes(api, cfg.AccountHandler)
	registerMarketRoutes(api, cfg.MarketHandler)
	registerTradeRoutes(api, cfg.TradeHandler)

	return router
}
