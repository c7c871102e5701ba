// Package source defines the data-source abstraction behind the HTTP
// handlers: a Provider interface with a live gateway-backed implementation
// and a Fixture implementation serving the documented offline payloads. The
// Selector picks between them per call based on gateway connectivity, so no
// route carries its own mock branching.
package source

import (
	"context"
	"errors"

	"futubridge/internal/model"
)

// Errors classified by the handlers. Messages are the user-facing strings;
// handlers wrap them with the offending code or id.
var (
	// ErrNotConnected means no quote session is available.
	ErrNotConnected = errors.New("OpenD未连接")

	// ErrTradeUnavailable means no trade session is available or trading
	// was never unlocked.
	ErrTradeUnavailable = errors.New("OpenD未连接或交易权限未开通")

	// ErrTradingDisabled rejects order placement while trading is off.
	ErrTradingDisabled = errors.New("交易权限未开启")

	// ErrNoAccount means no account id was given and none is active.
	ErrNoAccount = errors.New("未指定账户ID")

	// ErrUnknownSymbol means the requested stock code is not known.
	ErrUnknownSymbol = errors.New("未找到股票")

	// ErrOrderNotFound means the requested order does not exist.
	ErrOrderNotFound = errors.New("订单不存在")
)

// Provider serves every capability the route layer needs. An empty accID
// selects the adapter's default active account.
type Provider interface {
	Accounts(ctx context.Context) ([]model.Account, error)
	AccountInfo(ctx context.Context, accID string) (*model.AccountInfo, error)
	Positions(ctx context.Context, accID string) ([]model.Position, error)

	Quote(ctx context.Context, code string) (*model.Quote, error)
	KLines(ctx context.Context, code, klType string) ([]model.KLine, error)
	Search(ctx context.Context, keyword string) ([]model.StockMatch, error)

	PlaceOrder(ctx context.Context, req model.OrderCreate) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	Orders(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	Order(ctx context.Context, orderID string) (*model.Order, error)
}

// Flags exposes the gateway adapter's connectivity state to the Selector.
type Flags interface {
	IsConnected() bool
	IsTradeEnabled() bool
}
