// Package model defines the request and response records exchanged over the
// HTTP API. All records are transient; nothing here is persisted.
package model

import "time"

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderType classifies an order. LIMIT is submitted to the gateway as a
// normal (enhanced limit) order.
type OrderType string

const (
	OrderTypeNormal OrderType = "NORMAL"
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeStop   OrderType = "STOP"
)

// OrderStatus is the lifecycle state of an order as reported by the gateway.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusSubmitted, OrderStatusFilled,
		OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// Account is one brokerage account discovered from the gateway's trade
// sessions, de-duplicated by AccID across markets.
type Account struct {
	AccID         string `json:"acc_id"`
	TrdEnv        string `json:"trd_env"`
	AccType       string `json:"acc_type"`
	AccStatus     string `json:"acc_status"`
	UniCardNum    string `json:"uni_card_num"`
	CardNum       string `json:"card_num"`
	SecurityFirm  string `json:"security_firm"`
	TrdMarketAuth string `json:"trdmarket_auth"`
	AccRole       string `json:"acc_role"`
}

// AccountInfo is a snapshot of one account's funds.
type AccountInfo struct {
	AccID         string    `json:"acc_id"`
	TotalAssets   float64   `json:"total_assets"`
	Cash          float64   `json:"cash"`
	MarketValue   float64   `json:"market_value"`
	FrozenCash    float64   `json:"frozen_cash"`
	AvailableCash float64   `json:"available_cash"`
	Currency      string    `json:"currency"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AccountStatus reports the adapter's connectivity flags and account list.
type AccountStatus struct {
	AccountID      string     `json:"account_id"`
	Status         string     `json:"status"`
	OpendConnected bool       `json:"opend_connected"`
	TradeEnabled   bool       `json:"trade_enabled"`
	Accounts       []Account  `json:"accounts"`
	LastSync       *time.Time `json:"last_sync"`
}

// ReconnectResult is the response of a forced close-and-reconnect.
type ReconnectResult struct {
	Success        bool      `json:"success"`
	OpendConnected bool      `json:"opend_connected"`
	TradeEnabled   bool      `json:"trade_enabled"`
	ActiveAccount  string    `json:"active_account"`
	Accounts       []Account `json:"accounts"`
	Message        string    `json:"message"`
}

// Quote is a point-in-time snapshot for one instrument.
type Quote struct {
	StockCode      string    `json:"stock_code"`
	StockName      string    `json:"stock_name"`
	CurrentPrice   float64   `json:"current_price"`
	OpenPrice      float64   `json:"open_price"`
	HighPrice      float64   `json:"high_price"`
	LowPrice       float64   `json:"low_price"`
	PrevClosePrice float64   `json:"prev_close_price"`
	Volume         int64     `json:"volume"`
	Turnover       float64   `json:"turnover"`
	Change         float64   `json:"change"`
	ChangeRatio    float64   `json:"change_ratio"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// KLine is one OHLCV interval.
type KLine struct {
	Timestamp  time.Time `json:"timestamp"`
	OpenPrice  float64   `json:"open_price"`
	HighPrice  float64   `json:"high_price"`
	LowPrice   float64   `json:"low_price"`
	ClosePrice float64   `json:"close_price"`
	Volume     int64     `json:"volume"`
	Turnover   float64   `json:"turnover"`
}

// StockMatch is one stock search result.
type StockMatch struct {
	StockCode string `json:"stock_code"`
	StockName string `json:"stock_name"`
	Market    string `json:"market"`
}

// Position is a holding of one instrument in one account.
type Position struct {
	StockCode         string  `json:"stock_code"`
	StockName         string  `json:"stock_name"`
	Quantity          int64   `json:"quantity"`
	AvailableQuantity int64   `json:"available_quantity"`
	CostPrice         float64 `json:"cost_price"`
	CurrentPrice      float64 `json:"current_price"`
	MarketValue       float64 `json:"market_value"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossRatio   float64 `json:"profit_loss_ratio"`
}

// Order is one order as created or reported by the gateway. The service
// holds no order state of its own; status is only ever re-queried.
type Order struct {
	OrderID        string      `json:"order_id"`
	StockCode      string      `json:"stock_code"`
	StockName      string      `json:"stock_name"`
	Side           OrderSide   `json:"side"`
	OrderType      OrderType   `json:"order_type"`
	Price          float64     `json:"price"`
	Quantity       int64       `json:"quantity"`
	FilledQuantity int64       `json:"filled_quantity"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderCreate is the request body for placing an order. OrderType defaults
// to LIMIT when omitted.
type OrderCreate struct {
	StockCode       string    `json:"stock_code" binding:"required"`
	Side            OrderSide `json:"side" binding:"required,oneof=BUY SELL"`
	OrderType       OrderType `json:"order_type" binding:"omitempty,oneof=NORMAL MARKET LIMIT STOP"`
	Price           float64   `json:"price" binding:"required"`
	Quantity        int64     `json:"quantity" binding:"required,gt=0"`
	AccID           string    `json:"acc_id"`
	StopPrice       *float64  `json:"stop_price"`
	TakeProfitPrice *float64  `json:"take_profit_price"`
}

// CancelResult is the response of an order cancellation.
type CancelResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
