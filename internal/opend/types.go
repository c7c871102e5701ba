package opend

import "fmt"

// Return status of a gateway reply. Anything other than RetOK is a failure
// whose message is carried verbatim from the daemon.
const RetOK = 0

// Market identifies a trade-session market.
type Market string

const (
	MarketHK Market = "HK"
	MarketUS Market = "US"
)

// Trading environment values as reported in account rows.
const (
	TrdEnvSimulate = "SIMULATE"
	TrdEnvReal     = "REAL"
)

// AccStatusActive marks an account that can trade.
const AccStatusActive = "ACTIVE"

// Error is a non-OK reply from the gateway daemon.
type Error struct {
	Ret int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("opend: ret=%d msg=%s", e.Ret, e.Msg)
}

// AccListRow is one account record from a trade session.
type AccListRow struct {
	AccID         uint64
	TrdEnv        string
	AccType       string
	AccStatus     string
	UniCardNum    string
	CardNum       string
	SecurityFirm  string
	TrdMarketAuth []string
	AccRole       string
}

// FundsRow is an account funds record. Pointer fields are nil when the
// daemon reports the value as not available.
type FundsRow struct {
	TotalAssets       *float64
	Cash              *float64
	MarketVal         *float64
	FrozenCash        *float64
	AvlWithdrawalCash *float64
}

// PositionRow is one holding record.
type PositionRow struct {
	Code       string
	Name       string
	Qty        int64
	CanSellQty int64
	CostPrice  float64
	MarketVal  float64
	PLVal      float64
	PLRatio    float64
}

// OrderRow is one order record. CreateTime and UpdatedTime are epoch
// seconds.
type OrderRow struct {
	OrderID     string
	Code        string
	Name        string
	TrdSide     string
	OrderType   string
	Price       float64
	Qty         int64
	DealtQty    int64
	OrderStatus string
	CreateTime  float64
	UpdatedTime float64
}

// SnapshotRow is one market snapshot record. Pointer fields are nil when the
// daemon reports the value as not available.
type SnapshotRow struct {
	Code           string
	Name           string
	LastPrice      float64
	OpenPrice      *float64
	HighPrice      *float64
	LowPrice       *float64
	PrevClosePrice *float64
	Volume         *int64
	Turnover       *float64
}

// KLineRow is one OHLCV bar. TimeKey is epoch seconds.
type KLineRow struct {
	TimeKey  float64
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	Turnover float64
}

// StaticInfoRow is one instrument from the static-info listing.
type StaticInfoRow struct {
	Code   string
	Name   string
	Market string
}

// PlaceOrderRequest carries one order submission to a trade session.
type PlaceOrderRequest struct {
	Code      string
	Price     float64
	Qty       int64
	TrdSide   string
	OrderType string
	AccID     uint64
	TrdEnv    string
}
