package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"futubridge/internal/model"
	"futubridge/internal/source"
)

const noAccountSelected = "未选择"

type AccountHandler struct {
	src source.Provider
	gw  Gateway
}

func NewAccountHandler(src source.Provider, gw Gateway) *AccountHandler {
	return &AccountHandler{src: src, gw: gw}
}

// List returns the discovered accounts, empty while disconnected or locked.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.src.Accounts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Info returns the funds snapshot for acc_id, defaulting to the active
// account.
func (h *AccountHandler) Info(c *gin.Context) {
	info, err := h.src.AccountInfo(c.Request.Context(), c.Query("acc_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Positions returns the holdings of acc_id, defaulting to the active
// account.
func (h *AccountHandler) Positions(c *gin.Context) {
	positions, err := h.src.Positions(c.Request.Context(), c.Query("acc_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

// Status reports the adapter flags and account list. A disconnected adapter
// gets one reconnect attempt before the flags are read.
func (h *AccountHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.gw.IsConnected() {
		h.gw.Connect(ctx)
	}

	accountID := h.gw.ActiveAccountID()
	if accountID == "" {
		accountID = noAccountSelected
	}
	accounts, err := h.src.Accounts(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	var lastSync *time.Time
	if h.gw.IsConnected() {
		now := time.Now()
		lastSync = &now
	}
	c.JSON(http.StatusOK, model.AccountStatus{
		AccountID:      accountID,
		Status:         "active",
		OpendConnected: h.gw.IsConnected(),
		TradeEnabled:   h.gw.IsTradeEnabled(),
		Accounts:       accounts,
		LastSync:       lastSync,
	})
}

// Reconnect closes whatever sessions exist and connects from scratch.
func (h *AccountHandler) Reconnect(c *gin.Context) {
	ctx := c.Request.Context()
	h.gw.Close()
	success := h.gw.Connect(ctx)

	message := "OpenD连接失败"
	if success {
		message = "OpenD连接成功"
	}
	accounts, err := h.src.Accounts(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ReconnectResult{
		Success:        success,
		OpendConnected: h.gw.IsConnected(),
		TradeEnabled:   h.gw.IsTradeEnabled(),
		ActiveAccount:  h.gw.ActiveAccountID(),
		Accounts:       accounts,
		Message:        message,
	})
}
