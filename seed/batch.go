package seed

import (
	"fmt"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/broker"
	"github.com/banbox/banseed/btime"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/data"
	"github.com/banbox/banseed/futures"
	"github.com/banbox/banseed/utils"
	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

/*
Session
单个品种运行期间独占的连接集合，Close释放所有连接
*/
type Session struct {
	Broker    broker.Broker
	Contracts ContractStore
	Merged    data.MergedStore
	Close     func()
}

// SessionOpener 为每个品种打开独立的会话
type SessionOpener func(instrument string) (*Session, *errs.Error)

type BatchArgs struct {
	Freqs      []futures.Frequency
	WriteEmpty bool
	Concur     int              // 并发品种数，品种内合约始终串行
	Cache      *ristretto.Cache // 可选，登记结果缓存
	CacheScope string
	ShowBar    bool
}

/*
SeedInstruments
批量处理多个品种，每个品种使用独立会话。单个品种失败(打开会话、枚举)只记录，不影响其他品种
*/
func SeedInstruments(opener SessionOpener, codes []string, cutoff futures.ExpiryDate, args *BatchArgs) *BatchReport {
	if args == nil {
		args = &BatchArgs{}
	}
	runID := uuid.NewString()
	core.RunID = runID
	res := &BatchReport{
		RunID:   runID,
		Cutoff:  cutoff.String(),
		StartMS: btime.UTCStamp(),
		Items:   make([]*InstrumentReport, len(codes)),
	}
	var pBar *utils.PrgBar
	if args.ShowBar {
		pBar = utils.NewPrgBar(len(codes)*core.StepTotal, "Seed")
		defer pBar.Close()
	}
	var g errgroup.Group
	g.SetLimit(max(1, args.Concur))
	for i, code := range codes {
		g.Go(func() error {
			res.Items[i] = seedOne(opener, code, cutoff, runID, args, pBar)
			return nil
		})
	}
	_ = g.Wait()
	res.StopMS = btime.UTCStamp()
	if failed := res.FailedInstruments(); len(failed) > 0 {
		log.Warn("some instruments failed", zap.Strings("items", failed))
	}
	return res
}

func seedOne(opener SessionOpener, code string, cutoff futures.ExpiryDate, runID string, args *BatchArgs,
	pBar *utils.PrgBar) (item *InstrumentReport) {
	item = &InstrumentReport{Instrument: code}
	defer func() {
		if r := recover(); r != nil {
			item.Err = errs.NewMsg(core.ErrRunTime, "%v", r)
			log.Error("seed instrument panic", zap.String("instrument", code),
				zap.String("err", fmt.Sprintf("%v", r)), zap.Stack("stack"))
		}
	}()
	sess, err := opener(code)
	if err != nil {
		log.Error("open session fail", zap.String("instrument", code), zap.String("err", err.Short()))
		pBar.NewJob(1).Done()
		item.Err = err
		return item
	}
	if sess.Close != nil {
		defer sess.Close()
	}
	reg := NewRegistrar(sess.Contracts, args.Cache, args.CacheScope)
	writer := data.NewMergeWriter(sess.Merged, args.WriteEmpty)
	seeder := NewSeeder(sess.Broker, reg, writer, args.Freqs)
	seeder.RunID = runID
	seeder.PBar = pBar
	item.Report, item.Err = seeder.SeedInstrument(code, cutoff)
	return item
}
