package broker

import (
	"github.com/banbox/banexg"
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/futures"
)

/*
Broker
经纪商连接。每个品种的运行持有独立的Broker，不保证并发安全
*/
type Broker interface {
	// ListContractLabels 返回品种的合约日期，includeExpired为true时包含已到期合约。失败返回ErrBrokerUnavailable
	ListContractLabels(instrument string, includeExpired bool) ([]string, *errs.Error)
	// FetchPriceSeries 获取合约在某个周期的全部K线。经纪商无数据时返回ErrMissingData
	FetchPriceSeries(c *futures.Contract, freq futures.Frequency) ([]*banexg.Kline, *errs.Error)
}

type FetchStatus int

const (
	FetchEmpty FetchStatus = iota
	FetchData
	FetchFail
)

var fetchStatusNames = map[FetchStatus]string{
	FetchEmpty: "empty",
	FetchData:  "data",
	FetchFail:  "fail",
}

func (s FetchStatus) String() string {
	return fetchStatusNames[s]
}

/*
FetchResult
单个周期的获取结果：Empty(无数据或零长度)、Data(序列)、Fail(错误)
*/
type FetchResult struct {
	Freq   futures.Frequency
	Status FetchStatus
	Bars   []*banexg.Kline
	Err    *errs.Error
}
