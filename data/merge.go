package data

import (
	"slices"

	"github.com/banbox/banexg"
	"github.com/banbox/banseed/futures"
)

// FreqSeries 某个周期获取到的K线
type FreqSeries struct {
	Freq futures.Frequency
	Bars []*banexg.Kline
}

/*
MergeSeries
合并多个周期的K线为一个序列。同一时间戳以更细的周期为准，较粗周期仅填补空缺。
返回按时间升序的新序列，不修改输入
*/
func MergeSeries(items []*FreqSeries) []*banexg.Kline {
	sorted := make([]*FreqSeries, 0, len(items))
	total := 0
	for _, it := range items {
		if it == nil || len(it.Bars) == 0 {
			continue
		}
		sorted = append(sorted, it)
		total += len(it.Bars)
	}
	slices.SortStableFunc(sorted, func(a, b *FreqSeries) int {
		return a.Freq.Secs() - b.Freq.Secs()
	})
	seen := make(map[int64]bool, total)
	res := make([]*banexg.Kline, 0, total)
	for _, it := range sorted {
		for _, bar := range it.Bars {
			if bar == nil || seen[bar.Time] {
				continue
			}
			seen[bar.Time] = true
			k := *bar
			res = append(res, &k)
		}
	}
	slices.SortFunc(res, func(a, b *banexg.Kline) int {
		if a.Time < b.Time {
			return -1
		} else if a.Time > b.Time {
			return 1
		}
		return 0
	})
	return res
}
