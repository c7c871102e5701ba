package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser clients are served from other origins, same as the REST
	// surface.
	CheckOrigin: func(*http.Request) bool { return true },
}

// QuoteStream upgrades the connection and pushes the stock's quote once per
// second until the peer disconnects or a quote fetch fails.
func (h *MarketHandler) QuoteStream(c *gin.Context) {
	stockCode := c.Param("stock_code")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket升级失败")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		quote, err := h.src.Quote(ctx, stockCode)
		if err != nil {
			h.log.WithError(err).Warnf("WebSocket行情获取失败: %s", stockCode)
			return
		}
		if err := conn.WriteJSON(quote); err != nil {
			h.log.Infof("WebSocket断开连接: %s", stockCode)
			return
		}
	}
}
