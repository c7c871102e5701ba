package gateway

import (
	"testing"
	"time"

	"futubridge/internal/model"
	"futubridge/internal/opend"
)

func f64(v float64) *float64 { return &v }

func i64(v int64) *int64 { return &v }

func TestQuoteFromSnapshot(t *testing.T) {
	now := time.Now()
	row := opend.SnapshotRow{
		Code:           "HK.00700",
		Name:           "腾讯控股",
		LastPrice:      360,
		OpenPrice:      f64(356.4),
		HighPrice:      f64(363.6),
		LowPrice:       f64(352.8),
		PrevClosePrice: f64(358.2),
		Volume:         i64(10000000),
		Turnover:       f64(3600000000),
	}

	quote := quoteFromSnapshot(row, now)

	if quote.StockCode != "HK.00700" || quote.StockName != "腾讯控股" {
		t.Errorf("Unexpected identity: %s %s", quote.StockCode, quote.StockName)
	}

	if quote.Change != 360-358.2 {
		t.Errorf("Expected change %v, got %v", 360-358.2, quote.Change)
	}

	expectedRatio := (360 - 358.2) / 358.2 * 100
	if quote.ChangeRatio != expectedRatio {
		t.Errorf("Expected ratio %v, got %v", expectedRatio, quote.ChangeRatio)
	}

	if !quote.UpdatedAt.Equal(now) {
		t.Error("Expected UpdatedAt to carry the given time")
	}
}

func TestQuoteFromSnapshotMissingFields(t *testing.T) {
	row := opend.SnapshotRow{Code: "HK.00700", LastPrice: 360}

	quote := quoteFromSnapshot(row, time.Now())

	// Missing prev close falls back to the last price, zeroing the change.
	if quote.PrevClosePrice != 360 {
		t.Errorf("Expected prev close fallback 360, got %v", quote.PrevClosePrice)
	}

	if quote.Change != 0 || quote.ChangeRatio != 0 {
		t.Errorf("Expected zero change, got %v / %v", quote.Change, quote.ChangeRatio)
	}

	if quote.OpenPrice != 360 || quote.HighPrice != 360 || quote.LowPrice != 360 {
		t.Error("Expected OHL fallback to last price")
	}

	if quote.Volume != 0 || quote.Turnover != 0 {
		t.Error("Expected zero volume and turnover")
	}
}

func TestAccountFromRow(t *testing.T) {
	row := opend.AccListRow{
		AccID:         281756455,
		TrdEnv:        opend.TrdEnvReal,
		AccType:       "CASH",
		AccStatus:     opend.AccStatusActive,
		SecurityFirm:  "FUTUSECURITIES",
		TrdMarketAuth: []string{"HK", "US"},
	}

	acc := accountFromRow(row)

	if acc.AccID != "281756455" {
		t.Errorf("Expected string acc id, got %q", acc.AccID)
	}

	if acc.TrdMarketAuth != "HK,US" {
		t.Errorf("Expected joined market auth, got %q", acc.TrdMarketAuth)
	}
}

func TestPositionFromRow(t *testing.T) {
	row := opend.PositionRow{
		Code:       "HK.00700",
		Name:       "腾讯控股",
		Qty:        100,
		CanSellQty: 100,
		CostPrice:  350,
		MarketVal:  36000,
		PLVal:      1000,
		PLRatio:    0.0286,
	}

	pos := positionFromRow(row)

	if pos.CurrentPrice != 360 {
		t.Errorf("Expected current price 360 from market value, got %v", pos.CurrentPrice)
	}

	if pos.ProfitLossRatio != 0.0286 {
		t.Errorf("Expected ratio 0.0286, got %v", pos.ProfitLossRatio)
	}
}

func TestPositionFromRowZeroQuantity(t *testing.T) {
	pos := positionFromRow(opend.PositionRow{Code: "HK.00700", Qty: 0, MarketVal: 0})

	if pos.CurrentPrice != 0 {
		t.Errorf("Expected zero current price for empty position, got %v", pos.CurrentPrice)
	}
}

func TestOrderFromRow(t *testing.T) {
	row := opend.OrderRow{
		OrderID:     "4096",
		Code:        "HK.00700",
		Name:        "腾讯控股",
		TrdSide:     "BUY",
		OrderType:   "NORMAL",
		Price:       350,
		Qty:         100,
		DealtQty:    40,
		OrderStatus: "SUBMITTED",
		CreateTime:  1700000000,
		UpdatedTime: 1700000060,
	}

	order := orderFromRow(row)

	if order.Side != model.SideBuy {
		t.Errorf("Expected BUY, got %s", order.Side)
	}

	if order.Status != model.OrderStatusSubmitted {
		t.Errorf("Expected SUBMITTED, got %s", order.Status)
	}

	if order.CreatedAt.Unix() != 1700000000 {
		t.Errorf("Expected epoch 1700000000, got %d", order.CreatedAt.Unix())
	}
}
