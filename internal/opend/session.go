// Package opend is the typed client for the local OpenD gateway daemon. It
// exposes the daemon's driver surface as session interfaces so the adapter
// and its tests can inject fakes; the shipped connector binds the daemon's
// framed request/reply protocol, which is otherwise treated as opaque.
package opend

// QuoteSession is an open market-data channel to the daemon. All methods
// block until the daemon replies; there is no retry.
type QuoteSession interface {
	// GlobalState is a lightweight status probe used to validate the
	// session after connecting.
	GlobalState() error

	// MarketSnapshot returns one snapshot row per requested code.
	MarketSnapshot(codes []string) ([]SnapshotRow, error)

	// CurKLine returns up to num most recent bars for code at the given
	// kline type (K_DAY, K_WEEK, ...).
	CurKLine(code string, num int, klType string) ([]KLineRow, error)

	// StockBasicInfo lists instruments for one market.
	StockBasicInfo(market Market) ([]StaticInfoRow, error)

	Close()
}

// TradeSession is an authorized order-entry channel to one market.
type TradeSession interface {
	// UnlockTrade enables order entry with the configured trade password.
	UnlockTrade(password string) error

	// AccList enumerates the accounts visible through this session.
	AccList() ([]AccListRow, error)

	// AccInfo returns the funds snapshot for one account.
	AccInfo(accID uint64, trdEnv string) (*FundsRow, error)

	// PositionList returns the holdings of one account.
	PositionList(accID uint64, trdEnv string) ([]PositionRow, error)

	// PlaceOrder submits one order and returns the created order row.
	PlaceOrder(req PlaceOrderRequest) (*OrderRow, error)

	// CancelOrder requests cancellation of an open order.
	CancelOrder(orderID string) error

	// OrderList returns every order visible through this session.
	OrderList() ([]OrderRow, error)

	Close()
}

// Connector opens sessions against a gateway daemon address.
type Connector interface {
	OpenQuoteSession(host string, port int) (QuoteSession, error)
	OpenTradeSession(market Market, host string, port int) (TradeSession, error)
}
