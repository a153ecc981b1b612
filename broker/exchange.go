package broker

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/banbox/banexg"
	"github.com/banbox/banexg/bex"
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/btime"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/banbox/banseed/utils"
	"go.uber.org/zap"
)

// exgClient banexg交易所中本包用到的部分
type exgClient interface {
	LoadMarkets(reload bool, params map[string]interface{}) (banexg.MarketMap, *errs.Error)
	FetchOHLCV(symbol, timeframe string, since int64, limit int, params map[string]interface{}) ([]*banexg.Kline, *errs.Error)
}

type ExgArgs struct {
	Name         string
	Market       string
	ContractType string
	Options      map[string]interface{}
	// Roots 品种代码到交易所合约前缀的映射，未配置时直接使用品种代码
	Roots map[string]string
	// FetchDays 市场未提供上市时间时，从到期日往前下载的天数
	FetchDays int
}

/*
ExgBroker
基于banexg的经纪商实现。合约由交易所的交割合约市场推导：
合约标签来自symbol末尾的年月数字，到期日来自Market.Expiry
*/
type ExgBroker struct {
	exchange  exgClient
	roots     map[string]string
	fetchDays int
}

func NewExgBroker(args *ExgArgs) (*ExgBroker, *errs.Error) {
	var options = map[string]interface{}{}
	for key, val := range args.Options {
		options[utils.SnakeToCamel(key)] = val
	}
	if args.Market != "" {
		options[banexg.OptMarketType] = args.Market
	}
	if args.ContractType != "" {
		options[banexg.OptContractType] = args.ContractType
	}
	exchange, err := bex.New(args.Name, options)
	if err != nil {
		return nil, errs.NewMsg(core.ErrBrokerUnavailable, "create exchange %s fail: %s", args.Name, err.Short())
	}
	return newExgBroker(exchange, args.Roots, args.FetchDays), nil
}

func newExgBroker(exchange exgClient, roots map[string]string, fetchDays int) *ExgBroker {
	if fetchDays <= 0 {
		fetchDays = core.DefaultFetchDay
	}
	return &ExgBroker{exchange: exchange, roots: roots, fetchDays: fetchDays}
}

func (b *ExgBroker) rootOf(instrument string) string {
	if root, ok := b.roots[instrument]; ok && root != "" {
		return root
	}
	return instrument
}

type dateMarket struct {
	token  string
	label  string
	market *banexg.Market
}

/*
listMarkets 返回品种对应的所有交割合约，按标签去重，标签升序
*/
func (b *ExgBroker) listMarkets(instrument string) ([]*dateMarket, *errs.Error) {
	markets, err := b.exchange.LoadMarkets(false, nil)
	if err != nil {
		return nil, errs.NewMsg(core.ErrBrokerUnavailable, "load markets fail: %s", err.Short())
	}
	root := b.rootOf(instrument)
	byLabel := make(map[string]*dateMarket)
	for _, mar := range markets {
		if mar == nil || mar.Expiry <= 0 || !matchRoot(mar, root) {
			continue
		}
		dm := toDateMarket(mar)
		if dm == nil {
			log.Debug("skip market with bad contract date", zap.String("symbol", mar.Symbol))
			continue
		}
		if old, ok := byLabel[dm.label]; ok && old.market.Symbol < mar.Symbol {
			continue
		}
		byLabel[dm.label] = dm
	}
	res := make([]*dateMarket, 0, len(byLabel))
	for _, dm := range byLabel {
		res = append(res, dm)
	}
	slices.SortFunc(res, func(a, b *dateMarket) int {
		return strings.Compare(a.label, b.label)
	})
	return res, nil
}

func (b *ExgBroker) ListContractLabels(instrument string, includeExpired bool) ([]string, *errs.Error) {
	items, err := b.listMarkets(instrument)
	if err != nil {
		return nil, err
	}
	curMS := btime.UTCStamp()
	res := make([]string, 0, len(items))
	for _, dm := range items {
		if !includeExpired && dm.market.Expiry < curMS {
			continue
		}
		res = append(res, dm.token)
	}
	return res, nil
}

func (b *ExgBroker) FetchPriceSeries(c *futures.Contract, freq futures.Frequency) ([]*banexg.Kline, *errs.Error) {
	items, err := b.listMarkets(c.Instrument)
	if err != nil {
		return nil, err
	}
	var mar *banexg.Market
	for _, dm := range items {
		if dm.label == c.Label {
			mar = dm.market
			break
		}
	}
	if mar == nil {
		return nil, errs.NewMsg(core.ErrMissingData, "no market for %s", c.Key())
	}
	tfMSecs := freq.MSecs()
	if tfMSecs <= 0 {
		return nil, errs.NewMsg(core.ErrInvalidTF, "invalid frequency: %s", freq)
	}
	rng := fetchRange(mar, c, tfMSecs, b.fetchDays)
	if rng.Empty() {
		return nil, nil
	}
	return b.fetchRange(mar.Symbol, freq, rng, tfMSecs)
}

/*
fetchRange 计算下载区间：上市时间(或到期前fetchDays天)到到期日次日，不超过当前时间
*/
func fetchRange(mar *banexg.Market, c *futures.Contract, tfMSecs int64, fetchDays int) *core.DownRange {
	dayMS := int64(core.SecsDay * 1000)
	endMS := c.Expiry.UnixMilli() + dayMS
	if mar.Expiry > 0 && mar.Expiry+tfMSecs > endMS {
		endMS = mar.Expiry + tfMSecs
	}
	curMS := btime.UTCStamp()
	if endMS > curMS {
		endMS = curMS
	}
	startMS := mar.Created
	if startMS <= 0 {
		startMS = c.Expiry.UnixMilli() - int64(fetchDays)*dayMS
	}
	startMS = startMS / tfMSecs * tfMSecs
	endMS = endMS / tfMSecs * tfMSecs
	return &core.DownRange{Start: startMS, End: endMS}
}

func (b *ExgBroker) fetchRange(symbol string, freq futures.Frequency, rng *core.DownRange, tfMSecs int64) ([]*banexg.Kline, *errs.Error) {
	var res []*banexg.Kline
	since := rng.Start
	for since < rng.End {
		curSize := int(min(int64(core.KBatchSize), (rng.End-since)/tfMSecs+1))
		data, err := b.exchange.FetchOHLCV(symbol, string(freq), since, curSize, nil)
		if err != nil {
			return nil, err
		}
		// 移除末尾超出范围的K线
		for len(data) > 0 && data[len(data)-1].Time >= rng.End {
			data = data[:len(data)-1]
		}
		if len(data) == 0 {
			break
		}
		res = append(res, data...)
		next := data[len(data)-1].Time + tfMSecs
		if next <= since {
			break
		}
		since = next
	}
	return res, nil
}

func matchRoot(mar *banexg.Market, root string) bool {
	if strings.EqualFold(mar.Base, root) {
		return true
	}
	return strings.EqualFold(symbolRoot(mar.Symbol), root)
}

// symbolRoot 返回symbol开头的字母部分，如rb2410 -> rb
func symbolRoot(symbol string) string {
	for i, r := range symbol {
		if !unicode.IsLetter(r) {
			return symbol[:i]
		}
	}
	return symbol
}

// trailingDigits 返回symbol末尾的连续数字
func trailingDigits(symbol string) string {
	i := len(symbol)
	for i > 0 && symbol[i-1] >= '0' && symbol[i-1] <= '9' {
		i--
	}
	return symbol[i:]
}

/*
toDateMarket
symbol末尾为4位(YYMM)或6位(YYMMDD)数字时取其年月作为标签，否则取到期日所在月
*/
func toDateMarket(mar *banexg.Market) *dateMarket {
	expT := time.UnixMilli(mar.Expiry).In(btime.UTCLocale)
	expiry := futures.NewExpiry(expT.Year(), expT.Month(), expT.Day())
	label := expiry.Label()
	digits := trailingDigits(mar.Symbol)
	if len(digits) == 4 || len(digits) == 6 {
		label = "20" + digits[:4]
	}
	cd, err := futures.ContractDateOf(label, expiry)
	if err != nil {
		return nil
	}
	return &dateMarket{token: cd.String(), label: cd.Label, market: mar}
}
