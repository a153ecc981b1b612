package core

import (
	"github.com/anyongjin/cron"
	"github.com/banbox/banexg/errs"
	"github.com/dgraph-io/ristretto"
)

var (
	Cache *ristretto.Cache
	Cron  = cron.New(cron.WithSeconds()) // 定时任务，表达式带秒
)

func Setup() *errs.Error {
	if Cache != nil {
		return nil
	}
	var err_ error
	Cache, err_ = NewCache()
	if err_ != nil {
		return errs.New(ErrRunTime, err_)
	}
	return nil
}

func NewCache() (*ristretto.Cache, error) {
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 26,
		BufferItems: 64,
	})
}
