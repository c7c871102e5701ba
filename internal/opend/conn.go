package opend

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Protocol numbers for the daemon requests this service issues.
const (
	protoInitConnect      = 1001
	protoGetGlobalState   = 1002
	protoTrdGetAccList    = 2001
	protoTrdUnlockTrade   = 2005
	protoTrdGetFunds      = 2101
	protoTrdGetPositions  = 2102
	protoTrdGetOrderList  = 2201
	protoTrdPlaceOrder    = 2202
	protoTrdModifyOrder   = 2205
	protoQotGetKL         = 3006
	protoQotGetStaticInfo = 3202
	protoQotGetSnapshot   = 3203
)

const (
	headerLen   = 44
	fmtTypeJSON = 1

	modifyOrderOpCancel = 2
)

// netConnector dials the daemon over TCP and speaks its framed protocol with
// JSON-serialized bodies.
type netConnector struct {
	dialTimeout time.Duration
}

// NewConnector returns the production Connector for a local OpenD daemon.
func NewConnector(dialTimeout time.Duration) Connector {
	return &netConnector{dialTimeout: dialTimeout}
}

func (c *netConnector) open(host string, port int) (*session, error) {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), c.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial opend: %w", err)
	}
	s := &session{conn: conn}
	if err := s.initConnect(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (c *netConnector) OpenQuoteSession(host string, port int) (QuoteSession, error) {
	s, err := c.open(host, port)
	if err != nil {
		return nil, err
	}
	return &quoteSession{s: s}, nil
}

func (c *netConnector) OpenTradeSession(market Market, host string, port int) (TradeSession, error) {
	s, err := c.open(host, port)
	if err != nil {
		return nil, err
	}
	return &tradeSession{s: s, market: market}, nil
}

// session is one framed connection to the daemon. Requests are serialized;
// the daemon replies in order for request/reply protocols.
type session struct {
	conn   net.Conn
	mu     sync.Mutex
	serial uint32
	connID uint64
}

type envelope struct {
	RetType int             `json:"retType"`
	RetMsg  string          `json:"retMsg"`
	S2C     json.RawMessage `json:"s2c"`
}

func (s *session) call(protoID uint32, c2s, s2c any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(map[string]any{"c2s": c2s})
	if err != nil {
		return err
	}
	s.serial++
	if err := writeFrame(s.conn, protoID, s.serial, body); err != nil {
		return fmt.Errorf("opend write: %w", err)
	}
	_, respBody, err := readFrame(s.conn)
	if err != nil {
		return fmt.Errorf("opend read: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("opend decode: %w", err)
	}
	if env.RetType != RetOK {
		return &Error{Ret: env.RetType, Msg: env.RetMsg}
	}
	if s2c != nil && len(env.S2C) > 0 {
		return json.Unmarshal(env.S2C, s2c)
	}
	return nil
}

func (s *session) initConnect() error {
	var reply struct {
		ConnID uint64 `json:"connID"`
	}
	err := s.call(protoInitConnect, map[string]any{
		"clientVer":           100,
		"clientID":            "futubridge",
		"recvNotify":          false,
		"programmingLanguage": "Go",
	}, &reply)
	if err != nil {
		return err
	}
	s.connID = reply.ConnID
	return nil
}

func (s *session) packetID() map[string]any {
	return map[string]any{"connID": s.connID, "serialNo": s.serial + 1}
}

func (s *session) close() {
	s.conn.Close()
}

// writeFrame frames one request: magic "FT", proto number, JSON format flag,
// serial, body length, body SHA-1, then the body.
func writeFrame(w io.Writer, protoID, serial uint32, body []byte) error {
	header := make([]byte, headerLen)
	header[0], header[1] = 'F', 'T'
	binary.LittleEndian.PutUint32(header[2:6], protoID)
	header[6] = fmtTypeJSON
	header[7] = 0 // protocol version
	binary.LittleEndian.PutUint32(header[8:12], serial)
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(body)))
	sum := sha1.Sum(body)
	copy(header[16:36], sum[:])
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func readFrame(r io.Reader) (protoID uint32, body []byte, err error) {
	header := make([]byte, headerLen)
	if _, err = io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	if header[0] != 'F' || header[1] != 'T' {
		return 0, nil, fmt.Errorf("bad frame magic %q", header[:2])
	}
	protoID = binary.LittleEndian.Uint32(header[2:6])
	bodyLen := binary.LittleEndian.Uint32(header[12:16])
	body = make([]byte, bodyLen)
	if _, err = io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return protoID, body, nil
}

// --- code and enum conversions -----------------------------------------

var qotMarkets = map[string]int{"HK": 1, "US": 11}
var trdMarkets = map[Market]int{MarketHK: 1, MarketUS: 2}

// splitCode turns "HK.00700" into its market number and bare code.
func splitCode(code string) (int, string) {
	if i := strings.IndexByte(code, '.'); i > 0 {
		if m, ok := qotMarkets[code[:i]]; ok {
			return m, code[i+1:]
		}
	}
	return qotMarkets["HK"], code
}

func joinCode(market int, code string) string {
	for name, m := range qotMarkets {
		if m == market {
			return name + "." + code
		}
	}
	return code
}

func trdEnvName(v int) string {
	if v == 1 {
		return TrdEnvReal
	}
	return TrdEnvSimulate
}

func trdEnvValue(name string) int {
	if name == TrdEnvReal {
		return 1
	}
	return 0
}

var trdSideNames = map[int]string{1: "BUY", 2: "SELL"}
var trdSideValues = map[string]int{"BUY": 1, "SELL": 2}

var orderTypeNames = map[int]string{1: "NORMAL", 2: "MARKET", 8: "STOP"}
var orderTypeValues = map[string]int{"NORMAL": 1, "MARKET": 2, "STOP": 8}

var orderStatusNames = map[int]string{
	1:  "PENDING",
	2:  "PENDING",
	5:  "SUBMITTED",
	10: "SUBMITTED",
	11: "FILLED",
	14: "CANCELLED",
	15: "CANCELLED",
	21: "REJECTED",
	22: "REJECTED",
	23: "CANCELLED",
}

func orderStatusName(v int) string {
	if name, ok := orderStatusNames[v]; ok {
		return name
	}
	return "SUBMITTED"
}

var accTypeNames = map[int]string{1: "CASH", 2: "MARGIN"}

var securityFirmNames = map[int]string{1: "FUTUSECURITIES", 2: "FUTUINC", 3: "FUTUSG"}

var accStatusNames = map[int]string{0: AccStatusActive, 1: "DISABLED"}

func lookup(names map[int]string, v int) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprint(v)
}

// --- quote session ------------------------------------------------------

type quoteSession struct {
	s *session
}

type wireSecurity struct {
	Market int    `json:"market"`
	Code   string `json:"code"`
}

func (q *quoteSession) GlobalState() error {
	return q.s.call(protoGetGlobalState, map[string]any{"userID": 0}, nil)
}

func (q *quoteSession) MarketSnapshot(codes []string) ([]SnapshotRow, error) {
	securities := make([]wireSecurity, 0, len(codes))
	for _, code := range codes {
		m, c := splitCode(code)
		securities = append(securities, wireSecurity{Market: m, Code: c})
	}
	var reply struct {
		SnapshotList []struct {
			Basic struct {
				Security       wireSecurity `json:"security"`
				Name           string       `json:"name"`
				CurPrice       float64      `json:"curPrice"`
				OpenPrice      *float64     `json:"openPrice"`
				HighPrice      *float64     `json:"highPrice"`
				LowPrice       *float64     `json:"lowPrice"`
				LastClosePrice *float64     `json:"lastClosePrice"`
				Volume         *int64       `json:"volume"`
				Turnover       *float64     `json:"turnover"`
			} `json:"basic"`
		} `json:"snapshotList"`
	}
	err := q.s.call(protoQotGetSnapshot, map[string]any{"securityList": securities}, &reply)
	if err != nil {
		return nil, err
	}
	rows := make([]SnapshotRow, 0, len(reply.SnapshotList))
	for _, snap := range reply.SnapshotList {
		b := snap.Basic
		rows = append(rows, SnapshotRow{
			Code:           joinCode(b.Security.Market, b.Security.Code),
			Name:           b.Name,
			LastPrice:      b.CurPrice,
			OpenPrice:      b.OpenPrice,
			HighPrice:      b.HighPrice,
			LowPrice:       b.LowPrice,
			PrevClosePrice: b.LastClosePrice,
			Volume:         b.Volume,
			Turnover:       b.Turnover,
		})
	}
	return rows, nil
}

var klTypes = map[string]int{
	"K_1M": 1, "K_DAY": 2, "K_WEEK": 3, "K_MON": 4,
	"K_5M": 6, "K_15M": 7, "K_30M": 8, "K_60M": 9,
}

func (q *quoteSession) CurKLine(code string, num int, klType string) ([]KLineRow, error) {
	kl, ok := klTypes[klType]
	if !ok {
		kl = klTypes["K_DAY"]
	}
	m, c := splitCode(code)
	var reply struct {
		KLList []struct {
			Timestamp  float64 `json:"timestamp"`
			OpenPrice  float64 `json:"openPrice"`
			HighPrice  float64 `json:"highPrice"`
			LowPrice   float64 `json:"lowPrice"`
			ClosePrice float64 `json:"closePrice"`
			Volume     int64   `json:"volume"`
			Turnover   float64 `json:"turnover"`
		} `json:"klList"`
	}
	err := q.s.call(protoQotGetKL, map[string]any{
		"rehabType": 1,
		"klType":    kl,
		"security":  wireSecurity{Market: m, Code: c},
		"reqNum":    num,
	}, &reply)
	if err != nil {
		return nil, err
	}
	rows := make([]KLineRow, 0, len(reply.KLList))
	for _, k := range reply.KLList {
		rows = append(rows, KLineRow{
			TimeKey:  k.Timestamp,
			Open:     k.OpenPrice,
			High:     k.HighPrice,
			Low:      k.LowPrice,
			Close:    k.ClosePrice,
			Volume:   k.Volume,
			Turnover: k.Turnover,
		})
	}
	return rows, nil
}

func (q *quoteSession) StockBasicInfo(market Market) ([]StaticInfoRow, error) {
	var reply struct {
		StaticInfoList []struct {
			Basic struct {
				Security wireSecurity `json:"security"`
				Name     string       `json:"name"`
			} `json:"basic"`
		} `json:"staticInfoList"`
	}
	err := q.s.call(protoQotGetStaticInfo, map[string]any{
		"market":  qotMarkets[string(market)],
		"secType": 3, // equities
	}, &reply)
	if err != nil {
		return nil, err
	}
	rows := make([]StaticInfoRow, 0, len(reply.StaticInfoList))
	for _, info := range reply.StaticInfoList {
		rows = append(rows, StaticInfoRow{
			Code:   joinCode(info.Basic.Security.Market, info.Basic.Security.Code),
			Name:   info.Basic.Name,
			Market: string(market),
		})
	}
	return rows, nil
}

func (q *quoteSession) Close() {
	q.s.close()
}

// --- trade session ------------------------------------------------------

type tradeSession struct {
	s      *session
	market Market
}

func (t *tradeSession) header(accID uint64, trdEnv string) map[string]any {
	return map[string]any{
		"trdEnv":    trdEnvValue(trdEnv),
		"accID":     accID,
		"trdMarket": trdMarkets[t.market],
	}
}

func (t *tradeSession) UnlockTrade(password string) error {
	sum := md5.Sum([]byte(password))
	return t.s.call(protoTrdUnlockTrade, map[string]any{
		"unlock":       true,
		"pwdMD5":       hex.EncodeToString(sum[:]),
		"securityFirm": 1,
	}, nil)
}

func (t *tradeSession) AccList() ([]AccListRow, error) {
	var reply struct {
		AccList []struct {
			AccID             uint64 `json:"accID"`
			TrdEnv            int    `json:"trdEnv"`
			AccType           int    `json:"accType"`
			AccStatus         int    `json:"accStatus"`
			UniCardNum        string `json:"uniCardNum"`
			CardNum           string `json:"cardNum"`
			SecurityFirm      int    `json:"securityFirm"`
			TrdMarketAuthList []int  `json:"trdMarketAuthList"`
			SimAccType        int    `json:"simAccType"`
		} `json:"accList"`
	}
	if err := t.s.call(protoTrdGetAccList, map[string]any{"userID": 0}, &reply); err != nil {
		return nil, err
	}
	rows := make([]AccListRow, 0, len(reply.AccList))
	for _, a := range reply.AccList {
		auth := make([]string, 0, len(a.TrdMarketAuthList))
		for _, m := range a.TrdMarketAuthList {
			for _, name := range []Market{MarketHK, MarketUS} {
				if trdMarkets[name] == m {
					auth = append(auth, string(name))
				}
			}
		}
		rows = append(rows, AccListRow{
			AccID:         a.AccID,
			TrdEnv:        trdEnvName(a.TrdEnv),
			AccType:       lookup(accTypeNames, a.AccType),
			AccStatus:     lookup(accStatusNames, a.AccStatus),
			UniCardNum:    a.UniCardNum,
			CardNum:       a.CardNum,
			SecurityFirm:  lookup(securityFirmNames, a.SecurityFirm),
			TrdMarketAuth: auth,
		})
	}
	return rows, nil
}

func (t *tradeSession) AccInfo(accID uint64, trdEnv string) (*FundsRow, error) {
	var reply struct {
		Funds struct {
			TotalAssets       *float64 `json:"totalAssets"`
			Cash              *float64 `json:"cash"`
			MarketVal         *float64 `json:"marketVal"`
			FrozenCash        *float64 `json:"frozenCash"`
			AvlWithdrawalCash *float64 `json:"avlWithdrawalCash"`
		} `json:"funds"`
	}
	err := t.s.call(protoTrdGetFunds, map[string]any{
		"header":       t.header(accID, trdEnv),
		"refreshCache": false,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return &FundsRow{
		TotalAssets:       reply.Funds.TotalAssets,
		Cash:              reply.Funds.Cash,
		MarketVal:         reply.Funds.MarketVal,
		FrozenCash:        reply.Funds.FrozenCash,
		AvlWithdrawalCash: reply.Funds.AvlWithdrawalCash,
	}, nil
}

func (t *tradeSession) PositionList(accID uint64, trdEnv string) ([]PositionRow, error) {
	var reply struct {
		PositionList []struct {
			Code       string  `json:"code"`
			Name       string  `json:"name"`
			Qty        float64 `json:"qty"`
			CanSellQty float64 `json:"canSellQty"`
			CostPrice  float64 `json:"costPrice"`
			Val        float64 `json:"val"`
			PLVal      float64 `json:"plVal"`
			PLRatio    float64 `json:"plRatio"`
		} `json:"positionList"`
	}
	err := t.s.call(protoTrdGetPositions, map[string]any{
		"header": t.header(accID, trdEnv),
	}, &reply)
	if err != nil {
		return nil, err
	}
	rows := make([]PositionRow, 0, len(reply.PositionList))
	for _, p := range reply.PositionList {
		rows = append(rows, PositionRow{
			Code:       string(t.market) + "." + p.Code,
			Name:       p.Name,
			Qty:        int64(p.Qty),
			CanSellQty: int64(p.CanSellQty),
			CostPrice:  p.CostPrice,
			MarketVal:  p.Val,
			PLVal:      p.PLVal,
			PLRatio:    p.PLRatio,
		})
	}
	return rows, nil
}

func (t *tradeSession) PlaceOrder(req PlaceOrderRequest) (*OrderRow, error) {
	m, code := splitCode(req.Code)
	var reply struct {
		OrderID uint64 `json:"orderID"`
	}
	err := t.s.call(protoTrdPlaceOrder, map[string]any{
		"packetID":  t.s.packetID(),
		"header":    t.header(req.AccID, req.TrdEnv),
		"trdSide":   trdSideValues[req.TrdSide],
		"orderType": orderTypeValues[req.OrderType],
		"code":      code,
		"qty":       req.Qty,
		"price":     req.Price,
		"secMarket": m,
	}, &reply)
	if err != nil {
		return nil, err
	}
	now := float64(time.Now().Unix())
	return &OrderRow{
		OrderID:     fmt.Sprint(reply.OrderID),
		Code:        req.Code,
		TrdSide:     req.TrdSide,
		OrderType:   req.OrderType,
		Price:       req.Price,
		Qty:         req.Qty,
		OrderStatus: "SUBMITTED",
		CreateTime:  now,
		UpdatedTime: now,
	}, nil
}

func (t *tradeSession) CancelOrder(orderID string) error {
	return t.s.call(protoTrdModifyOrder, map[string]any{
		"packetID":      t.s.packetID(),
		"header":        t.header(0, TrdEnvReal),
		"orderID":       orderID,
		"modifyOrderOp": modifyOrderOpCancel,
		"qty":           0,
		"price":         0,
	}, nil)
}

func (t *tradeSession) OrderList() ([]OrderRow, error) {
	var reply struct {
		OrderList []struct {
			OrderID         uint64  `json:"orderID"`
			Code            string  `json:"code"`
			Name            string  `json:"name"`
			TrdSide         int     `json:"trdSide"`
			OrderType       int     `json:"orderType"`
			OrderStatus     int     `json:"orderStatus"`
			Price           float64 `json:"price"`
			Qty             float64 `json:"qty"`
			FillQty         float64 `json:"fillQty"`
			CreateTimestamp float64 `json:"createTimestamp"`
			UpdateTimestamp float64 `json:"updateTimestamp"`
		} `json:"orderList"`
	}
	err := t.s.call(protoTrdGetOrderList, map[string]any{
		"header": t.header(0, TrdEnvReal),
	}, &reply)
	if err != nil {
		return nil, err
	}
	rows := make([]OrderRow, 0, len(reply.OrderList))
	for _, o := range reply.OrderList {
		rows = append(rows, OrderRow{
			OrderID:     fmt.Sprint(o.OrderID),
			Code:        string(t.market) + "." + o.Code,
			Name:        o.Name,
			TrdSide:     lookup(trdSideNames, o.TrdSide),
			OrderType:   lookup(orderTypeNames, o.OrderType),
			Price:       o.Price,
			Qty:         int64(o.Qty),
			DealtQty:    int64(o.FillQty),
			OrderStatus: orderStatusName(o.OrderStatus),
			CreateTime:  o.CreateTimestamp,
			UpdatedTime: o.UpdateTimestamp,
		})
	}
	return rows, nil
}

func (t *tradeSession) Close() {
	t.s.close()
}
