package router

import (
	"github.com/gin-gonic/gin"

	"futubridge/internal/handler"
)

func registerTradeRoutes(router *gin.RouterGroup, tradeHandler *handler.TradeHandler) {
	trade := router.Group("/trade")
	{
		trade.POST("/order", tradeHandler.CreateOrder)
		trade.DELETE("/order/:order_id", tradeHandler.CancelOrder)
		trade.GET("/orders", tradeHandler.Orders)
		trade.GET("/order/:order_id", tradeHandler.Order)
	}
}
