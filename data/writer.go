package data

import (
	"github.com/banbox/banexg"
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/broker"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"go.uber.org/zap"
)

/*
MergedStore
合并后序列的持久化存储，写入为覆盖语义
*/
type MergedStore interface {
	WriteMerged(c *futures.Contract, merged []*banexg.Kline, freqs []futures.Frequency) *errs.Error
}

type WriteResult struct {
	Freqs   []futures.Frequency // 有数据的周期，从细到粗
	Num     int                 // 合并后K线数量
	Written bool
}

/*
MergeWriter
所有周期都尝试获取后，合并有数据的周期并写入存储。
writeEmpty为false时，合并结果为空则不写入，保留已有数据；为true时写入空序列覆盖旧数据
*/
type MergeWriter struct {
	store      MergedStore
	writeEmpty bool
}

func NewMergeWriter(store MergedStore, writeEmpty bool) *MergeWriter {
	return &MergeWriter{store: store, writeEmpty: writeEmpty}
}

func (w *MergeWriter) Write(c *futures.Contract, results []*broker.FetchResult) (*WriteResult, *errs.Error) {
	items := make([]*FreqSeries, 0, len(results))
	freqs := make([]futures.Frequency, 0, len(results))
	for _, r := range results {
		if r == nil || r.Status != broker.FetchData {
			continue
		}
		items = append(items, &FreqSeries{Freq: r.Freq, Bars: r.Bars})
		freqs = append(freqs, r.Freq)
	}
	freqs = futures.SortFinestFirst(freqs)
	merged := MergeSeries(items)
	res := &WriteResult{Freqs: freqs, Num: len(merged)}
	if len(merged) == 0 && !w.writeEmpty {
		log.Info("nothing to write", zap.String("contract", c.Key()))
		return res, nil
	}
	err := w.store.WriteMerged(c, merged, freqs)
	if err != nil {
		if err.Code != core.ErrStoreUnavailable {
			err = errs.NewMsg(core.ErrStoreUnavailable, "write merged %s fail: %s", c.Key(), err.Short())
		}
		return res, err
	}
	res.Written = true
	log.Info("merged data written", zap.String("contract", c.Key()), zap.Int("num", len(merged)),
		zap.String("freqs", futures.JoinFrequencies(freqs)))
	return res, nil
}
