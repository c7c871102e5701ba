package source

import (
	"context"

	"futubridge/internal/model"
)

// Selector delegates each call to the live provider or the fixture based on
// the gateway's current flags. Market reads need a connection; account reads
// additionally need trading to be unlocked; order placement is a hard error
// rather than a fixture when trading is off.
type Selector struct {
	flags   Flags
	live    Provider
	fixture Provider
}

// NewSelector builds the per-call live/fixture selector.
func NewSelector(flags Flags, live, fixture Provider) *Selector {
	return &Selector{flags: flags, live: live, fixture: fixture}
}

var _ Provider = (*Selector)(nil)

func (s *Selector) trading() bool {
	return s.flags.IsConnected() && s.flags.IsTradeEnabled()
}

func (s *Selector) Accounts(ctx context.Context) ([]model.Account, error) {
	if s.trading() {
		return s.live.Accounts(ctx)
	}
	return s.fixture.Accounts(ctx)
}

func (s *Selector) AccountInfo(ctx context.Context, accID string) (*model.AccountInfo, error) {
	if s.trading() {
		return s.live.AccountInfo(ctx, accID)
	}
	return s.fixture.AccountInfo(ctx, accID)
}

func (s *Selector) Positions(ctx context.Context, accID string) ([]model.Position, error) {
	if s.trading() {
		return s.live.Positions(ctx, accID)
	}
	return s.fixture.Positions(ctx, accID)
}

func (s *Selector) Quote(ctx context.Context, code string) (*model.Quote, error) {
	if s.flags.IsConnected() {
		return s.live.Quote(ctx, code)
	}
	return s.fixture.Quote(ctx, code)
}

func (s *Selector) KLines(ctx context.Context, code, klType string) ([]model.KLine, error) {
	if s.flags.IsConnected() {
		return s.live.KLines(ctx, code, klType)
	}
	return s.fixture.KLines(ctx, code, klType)
}

func (s *Selector) Search(ctx context.Context, keyword string) ([]model.StockMatch, error) {
	if s.flags.IsConnected() {
		return s.live.Search(ctx, keyword)
	}
	return s.fixture.Search(ctx, keyword)
}

func (s *Selector) PlaceOrder(ctx context.Context, req model.OrderCreate) (*model.Order, error) {
	if !s.trading() {
		return nil, ErrTradingDisabled
	}
	return s.live.PlaceOrder(ctx, req)
}

func (s *Selector) CancelOrder(ctx context.Context, orderID string) error {
	if s.flags.IsConnected() {
		return s.live.CancelOrder(ctx, orderID)
	}
	return s.fixture.CancelOrder(ctx, orderID)
}

func (s *Selector) Orders(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if s.flags.IsConnected() {
		return s.live.Orders(ctx, status)
	}
	return s.fixture.Orders(ctx, status)
}

func (s *Selector) Order(ctx context.Context, orderID string) (*model.Order, error) {
	if s.flags.IsConnected() {
		return s.live.Order(ctx, orderID)
	}
	return s.fixture.Order(ctx, orderID)
}
