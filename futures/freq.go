package futures

import (
	"slices"
	"strings"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/utils"
	"github.com/banbox/banseed/core"
)

/*
Frequency
价格序列的采样周期，使用banexg的时间周期写法
*/
type Frequency string

const (
	Hourly Frequency = "1h"
	Daily  Frequency = "1d"
)

// DefaultFrequencies 按从细到粗的顺序
var DefaultFrequencies = []Frequency{Hourly, Daily}

var freqAlias = map[string]Frequency{
	"1h":     Hourly,
	"h":      Hourly,
	"hour":   Hourly,
	"hourly": Hourly,
	"1d":     Daily,
	"d":      Daily,
	"day":    Daily,
	"daily":  Daily,
}

func ParseFrequency(text string) (Frequency, *errs.Error) {
	freq, ok := freqAlias[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return "", errs.NewMsg(core.ErrInvalidTF, "unsupported frequency: %q", text)
	}
	return freq, nil
}

/*
ParseFrequencies
解析并去重，结果按从细到粗排序；空输入返回DefaultFrequencies
*/
func ParseFrequencies(texts []string) ([]Frequency, *errs.Error) {
	if len(texts) == 0 {
		return slices.Clone(DefaultFrequencies), nil
	}
	res := make([]Frequency, 0, len(texts))
	for _, text := range texts {
		freq, err := ParseFrequency(text)
		if err != nil {
			return nil, err
		}
		res = append(res, freq)
	}
	return SortFinestFirst(res), nil
}

func (f Frequency) Secs() int {
	return utils.TFToSecs(string(f))
}

func (f Frequency) MSecs() int64 {
	return int64(f.Secs()) * 1000
}

func (f Frequency) String() string {
	return string(f)
}

/*
SortFinestFirst
返回去重后的新切片，细粒度在前。合并时细粒度数据优先
*/
func SortFinestFirst(freqs []Frequency) []Frequency {
	res := make([]Frequency, 0, len(freqs))
	for _, f := range freqs {
		if !slices.Contains(res, f) {
			res = append(res, f)
		}
	}
	slices.SortStableFunc(res, func(a, b Frequency) int {
		return a.Secs() - b.Secs()
	})
	return res
}

func JoinFrequencies(freqs []Frequency) string {
	texts := make([]string, len(freqs))
	for i, f := range freqs {
		texts[i] = string(f)
	}
	return strings.Join(texts, ",")
}
