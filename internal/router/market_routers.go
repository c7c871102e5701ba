package router

import (
	"github.com/gin-gonic/gin"

	"futubridge/internal/handler"
)

func registerMarketRoutes(router *gin.RouterGroup, marketHandler *handler.MarketHandler) {
	market := router.Group("/market")
	{
		market.GET("/quote/:stock_code", marketHandler.Quote)
		market.GET("/kline/:stock_code", marketHandler.KLine)
		market.GET("/search", marketHandler.Search)
		market.GET("/ws/:stock_code", marketHandler.QuoteStream)
	}
}
