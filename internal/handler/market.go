package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"futubridge/internal/source"
)

const defaultKLineType = "K_DAY"

type MarketHandler struct {
	src source.Provider
	log *logrus.Logger
}

func NewMarketHandler(src source.Provider, log *logrus.Logger) *MarketHandler {
	return &MarketHandler{src: src, log: log}
}

// Quote returns the current snapshot for one stock code, e.g. HK.00700.
func (h *MarketHandler) Quote(c *gin.Context) {
	quote, err := h.src.Quote(c.Request.Context(), c.Param("stock_code"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// KLine returns recent bars for one stock code. start_date and end_date are
// accepted for compatibility but the gateway query always returns the most
// recent bars.
func (h *MarketHandler) KLine(c *gin.Context) {
	klType := c.DefaultQuery("kline_type", defaultKLineType)
	klines, err := h.src.KLines(c.Request.Context(), c.Param("stock_code"), klType)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, klines)
}

// Search matches a keyword against stock codes and names.
func (h *MarketHandler) Search(c *gin.Context) {
	keyword, ok := c.GetQuery("keyword")
	if !ok {
		detail(c, http.StatusBadRequest, "缺少keyword参数")
		return
	}
	results, err := h.src.Search(c.Request.Context(), keyword)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
