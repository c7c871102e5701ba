package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"futubridge/internal/model"
	"futubridge/internal/source"
)

type TradeHandler struct {
	src   source.Provider
	flags source.Flags
}

func NewTradeHandler(src source.Provider, flags source.Flags) *TradeHandler {
	return &TradeHandler{src: src, flags: flags}
}

func (h *TradeHandler) trading() bool {
	return h.flags.IsConnected() && h.flags.IsTradeEnabled()
}

// CreateOrder places one order. Trading availability is checked before the
// body is parsed, so a disabled gateway answers 400 regardless of body
// validity.
func (h *TradeHandler) CreateOrder(c *gin.Context) {
	if !h.trading() {
		detail(c, http.StatusBadRequest, source.ErrTradingDisabled.Error())
		return
	}
	var req model.OrderCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.src.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder requests cancellation of one order. Offline cancellation
// always succeeds and says so in the message.
func (h *TradeHandler) CancelOrder(c *gin.Context) {
	orderID := c.Param("order_id")
	if err := h.src.CancelOrder(c.Request.Context(), orderID); err != nil {
		fail(c, err)
		return
	}
	message := fmt.Sprintf("订单 %s 已撤销", orderID)
	if !h.flags.IsConnected() {
		message += "（模拟）"
	}
	c.JSON(http.StatusOK, model.CancelResult{Message: message, Success: true})
}

// Orders lists orders, optionally filtered by status.
func (h *TradeHandler) Orders(c *gin.Context) {
	status := model.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		detail(c, http.StatusBadRequest, fmt.Sprintf("无效订单状态: %s", status))
		return
	}
	orders, err := h.src.Orders(c.Request.Context(), status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Order returns one order's detail.
func (h *TradeHandler) Order(c *gin.Context) {
	order, err := h.src.Order(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
