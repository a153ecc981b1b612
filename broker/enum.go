package broker

import (
	"slices"
	"strings"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/core"
)

/*
Enumerate
列出品种所有已知合约(包含已到期)，按标签月份升序。
每次调用都重新向经纪商查询，无游标状态，可重复调用
*/
func Enumerate(b Broker, instrument string) ([]string, *errs.Error) {
	tokens, err := b.ListContractLabels(instrument, true)
	if err != nil {
		if err.Code != core.ErrBrokerUnavailable {
			err = errs.NewMsg(core.ErrBrokerUnavailable, "list contracts for %s fail: %s", instrument, err.Short())
		}
		return nil, err
	}
	res := make([]string, 0, len(tokens))
	for _, tk := range tokens {
		tk = strings.TrimSpace(tk)
		if tk == "" {
			continue
		}
		res = append(res, tk)
	}
	slices.SortStableFunc(res, func(a, b string) int {
		return strings.Compare(labelPart(a), labelPart(b))
	})
	return res, nil
}

func labelPart(token string) string {
	if len(token) > 6 {
		return token[:6]
	}
	return token
}
