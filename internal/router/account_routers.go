package router

import (
	"github.com/gin-gonic/gin"

	"futubridge/internal/handler"
)

func registerAccountRoutes(router *gin.RouterGroup, accountHandler *handler.AccountHandler) {
	account := router.Group("/account")
	{
		account.GET("/list", accountHandler.List)
		account.GET("/info", accountHandler.Info)
		account.GET("/positions", accountHandler.Positions)
		account.GET("/status", accountHandler.Status)
		account.POST("/reconnect", accountHandler.Reconnect)
	}
}
