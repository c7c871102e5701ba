// Package gateway holds the adapter around the OpenD driver: connection and
// unlock lifecycle, account discovery, and one capability method per
// operation. Every driver call is offloaded and bounded by the configured
// gateway timeout; failures surface immediately with the driver's message,
// with no retry and no caching.
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"futubridge/config"
	"futubridge/internal/model"
	"futubridge/internal/opend"
	"futubridge/internal/source"
)

const klineCount = 100

const searchLimit = 20

// Client is the single point of contact with the gateway daemon. It owns one
// quote session and up to two market-specific trade sessions.
type Client struct {
	host      string
	port      int
	password  string
	timeout   time.Duration
	connector opend.Connector
	log       *logrus.Logger

	mu           sync.RWMutex
	quote        opend.QuoteSession
	tradeHK      opend.TradeSession
	tradeUS      opend.TradeSession
	connected    bool
	tradeEnabled bool
	accounts     []model.Account
	activeAccID  string
}

var _ source.Provider = (*Client)(nil)

// NewClient builds the adapter from configuration. No connection is made
// until Connect.
func NewClient(cfg *config.Config, connector opend.Connector, log *logrus.Logger) *Client {
	return &Client{
		host:      cfg.FutuHost,
		port:      cfg.FutuPort,
		password:  cfg.TradePassword,
		timeout:   cfg.GatewayTimeout,
		connector: connector,
		log:       log,
	}
}

// call offloads one blocking driver call and bounds it with the gateway
// timeout and the caller's context. On timeout or cancellation the caller is
// released; the underlying call still runs to completion in its goroutine.
func call[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn()
		ch <- outcome{v: v, err: err}
	}()
	select {
	case out := <-ch:
		return out.v, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Client) callErr(ctx context.Context, fn func() error) error {
	_, err := call(ctx, c.timeout, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Connect opens the quote session, validates it with a status probe, then
// opens the per-market trade sessions, unlocks trading, and discovers the
// account list. All failures are logged and swallowed; the return value only
// reports whether the quote connection came up. There is no retry and no
// guard against concurrent re-entry.
func (c *Client) Connect(ctx context.Context) bool {
	quote, err := c.connector.OpenQuoteSession(c.host, c.port)
	if err != nil {
		c.log.WithError(err).Errorf("OpenD连接失败: %s:%d", c.host, c.port)
		return false
	}
	c.mu.Lock()
	c.quote = quote
	c.mu.Unlock()

	if err := c.callErr(ctx, quote.GlobalState); err != nil {
		c.log.WithError(err).Error("OpenD连接失败")
		return false
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.log.Infof("OpenD行情连接成功: %s:%d", c.host, c.port)

	c.openTradeSessions(ctx)
	return true
}

func (c *Client) openTradeSessions(ctx context.Context) {
	tradeHK, err := c.connector.OpenTradeSession(opend.MarketHK, c.host, c.port)
	if err != nil {
		c.log.WithError(err).Warn("交易上下文创建失败")
		return
	}
	tradeUS, err := c.connector.OpenTradeSession(opend.MarketUS, c.host, c.port)
	if err != nil {
		c.log.WithError(err).Warn("[US] 交易上下文创建失败")
	}
	c.mu.Lock()
	c.tradeHK = tradeHK
	c.tradeUS = tradeUS
	c.mu.Unlock()

	if c.password == "" {
		c.log.Warn("未配置交易密码，交易功能不可用")
		return
	}
	if err := c.callErr(ctx, func() error { return tradeHK.UnlockTrade(c.password) }); err != nil {
		c.log.WithError(err).Warn("交易解锁失败")
		return
	}
	c.mu.Lock()
	c.tradeEnabled = true
	c.mu.Unlock()
	c.log.Info("OpenD交易权限已解锁")

	if tradeUS != nil {
		if err := c.callErr(ctx, func() error { return tradeUS.UnlockTrade(c.password) }); err != nil {
			c.log.WithError(err).Warn("[US] 交易解锁失败")
		}
	}
	c.discoverAccounts(ctx, tradeHK, tradeUS)
}

// discoverAccounts enumerates accounts from every market session and merges
// them by id, first seen wins. The list is rebuilt from scratch so repeated
// connects never duplicate entries.
func (c *Client) discoverAccounts(ctx context.Context, tradeHK, tradeUS opend.TradeSession) {
	sessions := []struct {
		sess  opend.TradeSession
		label string
	}{
		{tradeHK, "HK"},
		{tradeUS, "US"},
	}

	seen := make(map[string]bool)
	accounts := make([]model.Account, 0)
	for _, s := range sessions {
		if s.sess == nil {
			continue
		}
		rows, err := call(ctx, c.timeout, s.sess.AccList)
		if err != nil {
			c.log.Warnf("[%s] 获取账户列表失败: %v", s.label, err)
			continue
		}
		c.log.Infof("[%s] 获取到 %d 个账户", s.label, len(rows))
		for _, row := range rows {
			acc := accountFromRow(row)
			if !seen[acc.AccID] {
				seen[acc.AccID] = true
				accounts = append(accounts, acc)
			}
		}
	}
	c.log.Infof("合并去重后共 %d 个账户", len(accounts))

	active := ""
	for _, acc := range accounts {
		if acc.AccStatus == opend.AccStatusActive && acc.TrdEnv == opend.TrdEnvReal {
			active = acc.AccID
			c.log.Infof("默认选择真实账户: %s", active)
			break
		}
	}
	if active == "" {
		for _, acc := range accounts {
			if acc.AccStatus == opend.AccStatusActive {
				active = acc.AccID
				c.log.Infof("默认选择账户: %s (%s)", acc.AccID, acc.TrdEnv)
				break
			}
		}
	}

	c.mu.Lock()
	c.accounts = accounts
	c.activeAccID = active
	c.mu.Unlock()
}

// Close releases whichever sessions exist, quote first then HK and US trade,
// and clears the connectivity flags. Safe to call at any time, including
// before any Connect.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quote != nil {
		c.quote.Close()
		c.quote = nil
	}
	if c.tradeHK != nil {
		c.tradeHK.Close()
		c.tradeHK = nil
	}
	if c.tradeUS != nil {
		c.tradeUS.Close()
		c.tradeUS = nil
	}
	c.connected = false
	c.tradeEnabled = false
	c.log.Info("OpenD连接已关闭")
}

// IsConnected reports whether the quote session is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// IsTradeEnabled reports whether trading was unlocked.
func (c *Client) IsTradeEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tradeEnabled
}

// ActiveAccountID returns the default account id, empty when none.
func (c *Client) ActiveAccountID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeAccID
}

// Accounts returns the discovered account list. The list survives Close and
// is rebuilt on the next successful Connect.
func (c *Client) Accounts(_ context.Context) ([]model.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Account, len(c.accounts))
	copy(out, c.accounts)
	return out, nil
}

func (c *Client) quoteSession() (opend.QuoteSession, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.quote == nil {
		return nil, source.ErrNotConnected
	}
	return c.quote, nil
}

func (c *Client) tradeGuard() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.tradeHK == nil {
		return source.ErrTradeUnavailable
	}
	return nil
}

// resolveAccount picks the target account: the explicit id, else the default
// active account. Ids not present in the discovered list fall through with
// the real-environment default.
func (c *Client) resolveAccount(accID string) (model.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id := accID
	if id == "" {
		id = c.activeAccID
	}
	if id == "" {
		return model.Account{}, source.ErrNoAccount
	}
	for _, acc := range c.accounts {
		if acc.AccID == id {
			return acc, nil
		}
	}
	return model.Account{AccID: id, TrdEnv: opend.TrdEnvReal}, nil
}

// sessionFor selects the trade session for an account: the US session only
// when the account is authorized for US and not for HK, otherwise HK.
func (c *Client) sessionFor(acc model.Account) opend.TradeSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hasHK := strings.Contains(acc.TrdMarketAuth, "HK")
	hasUS := strings.Contains(acc.TrdMarketAuth, "US")
	if hasUS && !hasHK && c.tradeUS != nil {
		return c.tradeUS
	}
	return c.tradeHK
}

// Quote returns a fresh snapshot for one instrument.
func (c *Client) Quote(ctx context.Context, code string) (*model.Quote, error) {
	q, err := c.quoteSession()
	if err != nil {
		return nil, err
	}
	rows, err := call(ctx, c.timeout, func() ([]opend.SnapshotRow, error) {
		return q.MarketSnapshot([]string{code})
	})
	if err != nil {
		return nil, fmt.Errorf("获取行情失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("获取行情失败: %s 无快照数据", code)
	}
	quote := quoteFromSnapshot(rows[0], time.Now())
	return &quote, nil
}

// KLines returns the most recent bars for one instrument, bounded by the
// gateway's fixed count.
func (c *Client) KLines(ctx context.Context, code, klType string) ([]model.KLine, error) {
	q, err := c.quoteSession()
	if err != nil {
		return nil, err
	}
	rows, err := call(ctx, c.timeout, func() ([]opend.KLineRow, error) {
		return q.CurKLine(code, klineCount, klType)
	})
	if err != nil {
		return nil, fmt.Errorf("获取K线数据失败: %w", err)
	}
	klines := make([]model.KLine, 0, len(rows))
	for _, row := range rows {
		klines = append(klines, klineFromRow(row))
	}
	return klines, nil
}

// Search matches the keyword against the HK instrument listing.
func (c *Client) Search(ctx context.Context, keyword string) ([]model.StockMatch, error) {
	q, err := c.quoteSession()
	if err != nil {
		return nil, err
	}
	rows, err := call(ctx, c.timeout, func() ([]opend.StaticInfoRow, error) {
		return q.StockBasicInfo(opend.MarketHK)
	})
	if err != nil {
		return nil, fmt.Errorf("搜索股票失败: %w", err)
	}
	keyword = strings.ToLower(keyword)
	results := make([]model.StockMatch, 0)
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Code), keyword) ||
			strings.Contains(strings.ToLower(row.Name), keyword) {
			results = append(results, model.StockMatch{
				StockCode: row.Code,
				StockName: row.Name,
				Market:    row.Market,
			})
			if len(results) == searchLimit {
				break
			}
		}
	}
	return results, nil
}

// AccountInfo returns the funds snapshot for one account.
func (c *Client) AccountInfo(ctx context.Context, accID string) (*model.AccountInfo, error) {
	if err := c.tradeGuard(); err != nil {
		return nil, err
	}
	acc, err := c.resolveAccount(accID)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(acc.AccID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("获取账户信息失败: 无效账户ID %q", acc.AccID)
	}
	sess := c.sessionFor(acc)
	funds, err := call(ctx, c.timeout, func() (*opend.FundsRow, error) {
		return sess.AccInfo(id, acc.TrdEnv)
	})
	if err != nil {
		return nil, fmt.Errorf("获取账户信息失败: %w", err)
	}
	info := accountInfoFromFunds(acc.AccID, funds, time.Now())
	return &info, nil
}

// Positions returns the holdings of one account.
func (c *Client) Positions(ctx context.Context, accID string) ([]model.Position, error) {
	if err := c.tradeGuard(); err != nil {
		return nil, err
	}
	acc, err := c.resolveAccount(accID)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(acc.AccID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("获取持仓列表失败: 无效账户ID %q", acc.AccID)
	}
	sess := c.sessionFor(acc)
	rows, err := call(ctx, c.timeout, func() ([]opend.PositionRow, error) {
		return sess.PositionList(id, acc.TrdEnv)
	})
	if err != nil {
		return nil, fmt.Errorf("获取持仓列表失败: %w", err)
	}
	positions := make([]model.Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, positionFromRow(row))
	}
	return positions, nil
}

// PlaceOrder submits one order and returns the created record. Status after
// creation is only ever re-queried through Orders.
func (c *Client) PlaceOrder(ctx context.Context, req model.OrderCreate) (*model.Order, error) {
	if err := c.tradeGuard(); err != nil {
		return nil, err
	}
	acc, err := c.resolveAccount(req.AccID)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(acc.AccID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("下单失败: 无效账户ID %q", acc.AccID)
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = model.OrderTypeLimit
	}
	sess := c.sessionFor(acc)
	row, err := call(ctx, c.timeout, func() (*opend.OrderRow, error) {
		return sess.PlaceOrder(opend.PlaceOrderRequest{
			Code:      req.StockCode,
			Price:     req.Price,
			Qty:       req.Quantity,
			TrdSide:   string(req.Side),
			OrderType: driverOrderType(orderType),
			AccID:     id,
			TrdEnv:    acc.TrdEnv,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("下单失败: %w", err)
	}
	now := time.Now()
	return &model.Order{
		OrderID:        row.OrderID,
		StockCode:      req.StockCode,
		StockName:      row.Name,
		Side:           req.Side,
		OrderType:      orderType,
		Price:          req.Price,
		Quantity:       req.Quantity,
		FilledQuantity: 0,
		Status:         model.OrderStatusSubmitted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CancelOrder requests cancellation through the HK trade session.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.tradeGuard(); err != nil {
		return err
	}
	c.mu.RLock()
	sess := c.tradeHK
	c.mu.RUnlock()
	if err := c.callErr(ctx, func() error { return sess.CancelOrder(orderID) }); err != nil {
		return fmt.Errorf("撤单失败: %w", err)
	}
	return nil
}

// Orders returns every order visible through the HK trade session. The
// gateway query returns all orders; the status filter is accepted but not
// applied.
func (c *Client) Orders(ctx context.Context, _ model.OrderStatus) ([]model.Order, error) {
	if err := c.tradeGuard(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	sess := c.tradeHK
	c.mu.RUnlock()
	rows, err := call(ctx, c.timeout, sess.OrderList)
	if err != nil {
		return nil, fmt.Errorf("获取订单列表失败: %w", err)
	}
	orders := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, orderFromRow(row))
	}
	return orders, nil
}

// Order looks one order up in the order list.
func (c *Client) Order(ctx context.Context, orderID string) (*model.Order, error) {
	orders, err := c.Orders(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", source.ErrOrderNotFound, orderID)
}

func driverOrderType(t model.OrderType) string {
	switch t {
	case model.OrderTypeMarket:
		return "MARKET"
	case model.OrderTypeStop:
		return "STOP"
	default:
		// NORMAL and LIMIT both submit as a normal order.
		return "NORMAL"
	}
}
