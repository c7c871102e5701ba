package gateway

import (
	"strconv"
	"strings"
	"time"

	"futubridge/internal/model"
	"futubridge/internal/opend"
)

func accountFromRow(row opend.AccListRow) model.Account {
	return model.Account{
		AccID:         strconv.FormatUint(row.AccID, 10),
		TrdEnv:        row.TrdEnv,
		AccType:       row.AccType,
		AccStatus:     row.AccStatus,
		UniCardNum:    row.UniCardNum,
		CardNum:       row.CardNum,
		SecurityFirm:  row.SecurityFirm,
		TrdMarketAuth: strings.Join(row.TrdMarketAuth, ","),
		AccRole:       row.AccRole,
	}
}

// quoteFromSnapshot coerces the snapshot's optional fields. A missing prev
// close falls back to the last price, which also zeroes the change.
func quoteFromSnapshot(row opend.SnapshotRow, now time.Time) model.Quote {
	last := row.LastPrice
	prev := fallback(row.PrevClosePrice, last)
	change := last - prev
	ratio := 0.0
	if prev > 0 {
		ratio = change / prev * 100
	}
	return model.Quote{
		StockCode:      row.Code,
		StockName:      row.Name,
		CurrentPrice:   last,
		OpenPrice:      fallback(row.OpenPrice, last),
		HighPrice:      fallback(row.HighPrice, last),
		LowPrice:       fallback(row.LowPrice, last),
		PrevClosePrice: prev,
		Volume:         fallbackInt(row.Volume, 0),
		Turnover:       fallback(row.Turnover, 0),
		Change:         change,
		ChangeRatio:    ratio,
		UpdatedAt:      now,
	}
}

func klineFromRow(row opend.KLineRow) model.KLine {
	return model.KLine{
		Timestamp:  time.Unix(int64(row.TimeKey), 0),
		OpenPrice:  row.Open,
		HighPrice:  row.High,
		LowPrice:   row.Low,
		ClosePrice: row.Close,
		Volume:     row.Volume,
		Turnover:   row.Turnover,
	}
}

func accountInfoFromFunds(accID string, row *opend.FundsRow, now time.Time) model.AccountInfo {
	return model.AccountInfo{
		AccID:         accID,
		TotalAssets:   fallback(row.TotalAssets, 0),
		Cash:          fallback(row.Cash, 0),
		MarketValue:   fallback(row.MarketVal, 0),
		FrozenCash:    fallback(row.FrozenCash, 0),
		AvailableCash: fallback(row.AvlWithdrawalCash, 0),
		Currency:      "HKD",
		UpdatedAt:     now,
	}
}

func positionFromRow(row opend.PositionRow) model.Position {
	current := 0.0
	if row.Qty > 0 {
		current = row.MarketVal / float64(row.Qty)
	}
	return model.Position{
		StockCode:         row.Code,
		StockName:         row.Name,
		Quantity:          row.Qty,
		AvailableQuantity: row.CanSellQty,
		CostPrice:         row.CostPrice,
		CurrentPrice:      current,
		MarketValue:       row.MarketVal,
		ProfitLoss:        row.PLVal,
		ProfitLossRatio:   row.PLRatio,
	}
}

func orderFromRow(row opend.OrderRow) model.Order {
	return model.Order{
		OrderID:        row.OrderID,
		StockCode:      row.Code,
		StockName:      row.Name,
		Side:           model.OrderSide(row.TrdSide),
		OrderType:      model.OrderType(row.OrderType),
		Price:          row.Price,
		Quantity:       row.Qty,
		FilledQuantity: row.DealtQty,
		Status:         model.OrderStatus(row.OrderStatus),
		CreatedAt:      time.Unix(int64(row.CreateTime), 0),
		UpdatedAt:      time.Unix(int64(row.UpdatedTime), 0),
	}
}

func fallback(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func fallbackInt(v *int64, def int64) int64 {
	if v == nil {
		return def
	}
	return *v
}
