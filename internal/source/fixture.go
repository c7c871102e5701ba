package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"futubridge/internal/model"
)

// Fixture serves the fixed development payloads used while the gateway is
// unreachable. Quotes and search results come from a small literal table;
// klines are a synthetic random walk.
type Fixture struct{}

// NewFixture returns the offline fixture provider.
func NewFixture() *Fixture {
	return &Fixture{}
}

var _ Provider = (*Fixture)(nil)

var fixtureQuotes = map[string]struct {
	Name  string
	Price float64
}{
	"HK.00700": {"腾讯控股", 360.00},
	"HK.09988": {"阿里巴巴-SW", 75.00},
	"HK.00941": {"中国移动", 70.00},
	"US.AAPL":  {"Apple Inc.", 185.00},
}

var fixtureStocks = []model.StockMatch{
	{StockCode: "HK.00700", StockName: "腾讯控股", Market: "HK"},
	{StockCode: "HK.09988", StockName: "阿里巴巴-SW", Market: "HK"},
	{StockCode: "HK.00941", StockName: "中国移动", Market: "HK"},
	{StockCode: "US.AAPL", StockName: "Apple Inc.", Market: "US"},
	{StockCode: "US.TSLA", StockName: "Tesla Inc.", Market: "US"},
}

// Accounts is empty offline: no trade session means no discoverable
// accounts.
func (f *Fixture) Accounts(_ context.Context) ([]model.Account, error) {
	return []model.Account{}, nil
}

func (f *Fixture) AccountInfo(_ context.Context, _ string) (*model.AccountInfo, error) {
	return &model.AccountInfo{
		AccID:         "mock_account",
		TotalAssets:   100000.00,
		Cash:          50000.00,
		MarketValue:   50000.00,
		FrozenCash:    0.00,
		AvailableCash: 50000.00,
		Currency:      "HKD",
		UpdatedAt:     time.Now(),
	}, nil
}

func (f *Fixture) Positions(_ context.Context, _ string) ([]model.Position, error) {
	return []model.Position{
		{
			StockCode:         "HK.00700",
			StockName:         "腾讯控股",
			Quantity:          100,
			AvailableQuantity: 100,
			CostPrice:         350.00,
			CurrentPrice:      360.00,
			MarketValue:       36000.00,
			ProfitLoss:        1000.00,
			ProfitLossRatio:   0.0286,
		},
		{
			StockCode:         "HK.09988",
			StockName:         "阿里巴巴-SW",
			Quantity:          200,
			AvailableQuantity: 200,
			CostPrice:         80.00,
			CurrentPrice:      75.00,
			MarketValue:       15000.00,
			ProfitLoss:        -1000.00,
			ProfitLossRatio:   -0.0625,
		},
	}, nil
}

func (f *Fixture) Quote(_ context.Context, code string) (*model.Quote, error) {
	entry, ok := fixtureQuotes[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, code)
	}
	price := entry.Price
	return &model.Quote{
		StockCode:      code,
		StockName:      entry.Name,
		CurrentPrice:   price,
		OpenPrice:      price * 0.99,
		HighPrice:      price * 1.01,
		LowPrice:       price * 0.98,
		PrevClosePrice: price * 0.995,
		Volume:         10000000,
		Turnover:       price * 10000000,
		Change:         price * 0.005,
		ChangeRatio:    0.005,
		UpdatedAt:      time.Now(),
	}, nil
}

// KLines generates a 30-bar random walk around the fixture base price. The
// kline type only matters to the live gateway, so it is ignored here.
func (f *Fixture) KLines(_ context.Context, _, _ string) ([]model.KLine, error) {
	const bars = 30
	base := 350.0
	klines := make([]model.KLine, 0, bars)
	for i := 0; i < bars; i++ {
		date := time.Now().AddDate(0, 0, i-bars)
		open := base * (1 + rand.Float64()*0.04 - 0.02)
		cls := open * (1 + rand.Float64()*0.06 - 0.03)
		high := math.Max(open, cls) * (1 + rand.Float64()*0.02)
		low := math.Min(open, cls) * (1 - rand.Float64()*0.02)
		volume := int64(5000000 + rand.Intn(10000001))
		klines = append(klines, model.KLine{
			Timestamp:  date,
			OpenPrice:  round2(open),
			HighPrice:  round2(high),
			LowPrice:   round2(low),
			ClosePrice: round2(cls),
			Volume:     volume,
			Turnover:   round2(cls * float64(volume)),
		})
		base = cls
	}
	return klines, nil
}

func (f *Fixture) Search(_ context.Context, keyword string) ([]model.StockMatch, error) {
	keyword = strings.ToLower(keyword)
	results := make([]model.StockMatch, 0, len(fixtureStocks))
	for _, s := range fixtureStocks {
		if strings.Contains(strings.ToLower(s.StockCode), keyword) ||
			strings.Contains(strings.ToLower(s.StockName), keyword) {
			results = append(results, s)
		}
	}
	return results, nil
}

// PlaceOrder always fails offline: order entry has no mock mode.
func (f *Fixture) PlaceOrder(_ context.Context, _ model.OrderCreate) (*model.Order, error) {
	return nil, ErrTradingDisabled
}

// CancelOrder succeeds for any id offline.
func (f *Fixture) CancelOrder(_ context.Context, _ string) error {
	return nil
}

func (f *Fixture) Orders(_ context.Context, _ model.OrderStatus) ([]model.Order, error) {
	now := time.Now()
	return []model.Order{
		{
			OrderID:        "MOCK_001",
			StockCode:      "HK.00700",
			StockName:      "腾讯控股",
			Side:           model.SideBuy,
			OrderType:      model.OrderTypeLimit,
			Price:          350.00,
			Quantity:       100,
			FilledQuantity: 100,
			Status:         model.OrderStatusFilled,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			OrderID:        "MOCK_002",
			StockCode:      "HK.09988",
			StockName:      "阿里巴巴-SW",
			Side:           model.SideSell,
			OrderType:      model.OrderTypeLimit,
			Price:          80.00,
			Quantity:       200,
			FilledQuantity: 0,
			Status:         model.OrderStatusSubmitted,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}, nil
}

func (f *Fixture) Order(_ context.Context, orderID string) (*model.Order, error) {
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
