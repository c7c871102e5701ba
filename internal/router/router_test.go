package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"futubridge/config"
	"futubridge/internal/gateway"
	"futubridge/internal/handler"
	"futubridge/internal/opend"
	"futubridge/internal/source"
)

// testConfig points the gateway at port 1, which refuses immediately, so
// reconnect attempts fail fast.
func testConfig() *config.Config {
	return &config.Config{
		AppName:        "富途股票交易管理系统",
		AppVersion:     "0.1.0",
		FutuHost:       "127.0.0.1",
		FutuPort:       1,
		GatewayTimeout: time.Second,
	}
}

// newTestEngine builds the full stack against an unreachable gateway, so
// every route serves its offline behavior.
func newTestEngine(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig()
	log := logrus.New()
	log.SetOutput(io.Discard)

	gw := gateway.NewClient(cfg, opend.NewConnector(time.Second), log)
	t.Cleanup(gw.Close)
	selector := source.NewSelector(gw, gw, source.NewFixture())

	return NewRouter(&Config{
		AccountHandler: handler.NewAccountHandler(selector, gw),
		MarketHandler:  handler.NewMarketHandler(selector, log),
		TradeHandler:   handler.NewTradeHandler(selector, gw),
		SystemHandler:  handler.NewSystemHandler(cfg.AppName, cfg.AppVersion, gw),
		CORSOrigins:    []string{"http://localhost:5173"},
		Log:            log,
	})
}

func doRequest(t *testing.T, engine http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestRootEndpoint(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]any
	decode(t, w, &body)

	if body["name"] != "富途股票交易管理系统" || body["status"] != "running" {
		t.Errorf("Unexpected root payload: %v", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/health", "")

	var body map[string]any
	decode(t, w, &body)

	if body["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", body["status"])
	}

	if body["opend_connected"] != false {
		t.Error("Expected opend_connected false")
	}
}

func TestQuoteOfflineKnownCode(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/market/quote/HK.00700", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var quote struct {
		StockName    string  `json:"stock_name"`
		CurrentPrice float64 `json:"current_price"`
		HighPrice    float64 `json:"high_price"`
		LowPrice     float64 `json:"low_price"`
	}
	decode(t, w, &quote)

	if quote.StockName != "腾讯控股" || quote.CurrentPrice != 360.00 {
		t.Errorf("Unexpected quote: %+v", quote)
	}

	if quote.HighPrice != 360.00*1.01 || quote.LowPrice != 360.00*0.98 {
		t.Errorf("Unexpected derived prices: %+v", quote)
	}
}

func TestQuoteOfflineUnknownCode(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/market/quote/HK.99999", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}

	var body map[string]string
	decode(t, w, &body)

	if !strings.Contains(body["detail"], "未找到股票") {
		t.Errorf("Unexpected detail: %q", body["detail"])
	}
}

func TestKLineOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/market/kline/HK.00700?kline_type=K_DAY", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var klines []map[string]any
	decode(t, w, &klines)

	if len(klines) != 30 {
		t.Errorf("Expected 30 bars, got %d", len(klines))
	}
}

func TestSearchOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/market/search?keyword=腾讯", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var results []map[string]string
	decode(t, w, &results)

	if len(results) != 1 || results[0]["stock_code"] != "HK.00700" {
		t.Errorf("Unexpected search results: %v", results)
	}
}

func TestSearchMissingKeyword(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/market/search", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestAccountListOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/account/list", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var accounts []map[string]any
	decode(t, w, &accounts)

	if len(accounts) != 0 {
		t.Errorf("Expected empty list, got %v", accounts)
	}
}

func TestAccountInfoOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/account/info", "")

	var info struct {
		AccID       string  `json:"acc_id"`
		TotalAssets float64 `json:"total_assets"`
		Currency    string  `json:"currency"`
	}
	decode(t, w, &info)

	if info.AccID != "mock_account" || info.TotalAssets != 100000.00 || info.Currency != "HKD" {
		t.Errorf("Unexpected account info: %+v", info)
	}
}

func TestPositionsOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/account/positions", "")

	var positions []struct {
		ProfitLossRatio float64 `json:"profit_loss_ratio"`
	}
	decode(t, w, &positions)

	if len(positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(positions))
	}

	if positions[0].ProfitLossRatio != 0.0286 || positions[1].ProfitLossRatio != -0.0625 {
		t.Errorf("Unexpected ratios: %+v", positions)
	}
}

func TestAccountStatusOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/account/status", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var status struct {
		AccountID      string `json:"account_id"`
		OpendConnected bool   `json:"opend_connected"`
		TradeEnabled   bool   `json:"trade_enabled"`
		LastSync       *string `json:"last_sync"`
	}
	decode(t, w, &status)

	if status.AccountID != "未选择" {
		t.Errorf("Expected 未选择, got %q", status.AccountID)
	}

	if status.OpendConnected || status.TradeEnabled {
		t.Error("Expected both flags false")
	}

	if status.LastSync != nil {
		t.Error("Expected null last_sync while disconnected")
	}
}

func TestReconnectOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodPost, "/api/account/reconnect", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, w, &result)

	if result.Success {
		t.Error("Expected failed reconnect against an unreachable gateway")
	}

	if result.Message != "OpenD连接失败" {
		t.Errorf("Unexpected message: %q", result.Message)
	}
}

func TestCreateOrderOffline(t *testing.T) {
	engine := newTestEngine(t)

	body := `{"stock_code":"HK.00700","side":"BUY","order_type":"LIMIT","price":350,"quantity":100}`
	w := doRequest(t, engine, http.MethodPost, "/api/trade/order", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp map[string]string
	decode(t, w, &resp)

	if resp["detail"] != "交易权限未开启" {
		t.Errorf("Unexpected detail: %q", resp["detail"])
	}
}

func TestCreateOrderOfflineInvalidBody(t *testing.T) {
	engine := newTestEngine(t)

	// The trading check comes first, so even garbage bodies answer 400 with
	// the trading-disabled detail.
	w := doRequest(t, engine, http.MethodPost, "/api/trade/order", `{"side":"HOLD"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp map[string]string
	decode(t, w, &resp)

	if resp["detail"] != "交易权限未开启" {
		t.Errorf("Unexpected detail: %q", resp["detail"])
	}
}

func TestCancelOrderOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodDelete, "/api/trade/order/NO_SUCH_ORDER", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var result struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}
	decode(t, w, &result)

	if !result.Success {
		t.Error("Expected success true for offline cancel")
	}

	if result.Message != "订单 NO_SUCH_ORDER 已撤销（模拟）" {
		t.Errorf("Unexpected message: %q", result.Message)
	}
}

func TestOrdersOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/trade/orders", "")

	var orders []struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	decode(t, w, &orders)

	if len(orders) != 2 {
		t.Fatalf("Expected 2 mock orders, got %d", len(orders))
	}

	if orders[0].OrderID != "MOCK_001" || orders[0].Status != "FILLED" {
		t.Errorf("Unexpected first order: %+v", orders[0])
	}

	if orders[1].OrderID != "MOCK_002" || orders[1].Status != "SUBMITTED" {
		t.Errorf("Unexpected second order: %+v", orders[1])
	}
}

func TestOrdersInvalidStatus(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/trade/orders?status=WHATEVER", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestOrderDetailOffline(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/api/trade/order/MOCK_001", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}

	var resp map[string]string
	decode(t, w, &resp)

	if !strings.Contains(resp["detail"], "订单不存在") {
		t.Errorf("Unexpected detail: %q", resp["detail"])
	}
}

func TestCORSHeaders(t *testing.T) {
	engine := newTestEngine(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/market/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin, got %q", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(t, engine, http.MethodGet, "/health", "")

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("Expected caller id to be echoed, got %q", got)
	}
}

func TestQuoteWebSocket(t *testing.T) {
	engine := newTestEngine(t)
	server := httptest.NewServer(engine)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/market/ws/HK.00700"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var quote struct {
		StockCode    string  `json:"stock_code"`
		CurrentPrice float64 `json:"current_price"`
	}
	if err := conn.ReadJSON(&quote); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	if quote.StockCode != "HK.00700" || quote.CurrentPrice != 360.00 {
		t.Errorf("Unexpected pushed quote: %+v", quote)
	}
}
