package broker

import (
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"go.uber.org/zap"
)

/*
Fetcher
按周期获取单个合约的价格序列。MissingData和零长度序列都视为Empty，不是错误；
其他错误原样放在FetchFail中，由调用方的合约边界处理
*/
type Fetcher struct {
	broker Broker
}

func NewFetcher(b Broker) *Fetcher {
	return &Fetcher{broker: b}
}

func (f *Fetcher) Fetch(c *futures.Contract, freq futures.Frequency) *FetchResult {
	res := &FetchResult{Freq: freq}
	bars, err := f.broker.FetchPriceSeries(c, freq)
	if err != nil {
		if err.Code == core.ErrMissingData {
			log.Info("no data from broker", zap.String("contract", c.Key()), zap.String("freq", freq.String()),
				zap.String("err", err.Short()))
			res.Status = FetchEmpty
			return res
		}
		res.Status = FetchFail
		res.Err = err
		return res
	}
	log.Debug("got prices", zap.String("contract", c.Key()), zap.String("freq", freq.String()),
		zap.Int("num", len(bars)))
	if len(bars) == 0 {
		log.Warn("empty price series", zap.String("contract", c.Key()), zap.String("freq", freq.String()))
		res.Status = FetchEmpty
		return res
	}
	res.Status = FetchData
	res.Bars = bars
	return res
}

/*
FetchAll
按给定顺序逐个周期获取，每个周期都会尝试，单个周期失败不影响其他周期
*/
func (f *Fetcher) FetchAll(c *futures.Contract, freqs []futures.Frequency) []*FetchResult {
	res := make([]*FetchResult, 0, len(freqs))
	for _, freq := range freqs {
		log.Debug("getting data at frequency", zap.String("contract", c.Key()), zap.String("freq", freq.String()))
		res = append(res, f.Fetch(c, freq))
	}
	return res
}
