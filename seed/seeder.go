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
	"go.uber.org/zap"
)

/*
Seeder
单个品种一次运行的编排器，持有该品种独占的经纪商连接和存储会话。
合约严格按枚举顺序逐个处理，不可并发使用
*/
type Seeder struct {
	broker  broker.Broker
	fetcher *broker.Fetcher
	writer  *data.MergeWriter
	reg     *Registrar
	freqs   []futures.Frequency
	RunID   string
	PBar    *utils.PrgBar // 可选，每个品种推进core.StepTotal，按合约数均分
}

func NewSeeder(b broker.Broker, reg *Registrar, writer *data.MergeWriter, freqs []futures.Frequency) *Seeder {
	if len(freqs) == 0 {
		freqs = futures.DefaultFrequencies
	}
	return &Seeder{
		broker:  b,
		fetcher: broker.NewFetcher(b),
		writer:  writer,
		reg:     reg,
		freqs:   futures.SortFinestFirst(freqs),
		RunID:   core.RunID,
	}
}

/*
SeedInstrument
枚举品种所有合约并逐个处理。枚举失败时返回错误，单个合约的错误只记录在报告中
*/
func (s *Seeder) SeedInstrument(code string, cutoff futures.ExpiryDate) (*SeedingReport, *errs.Error) {
	tokens, err := broker.Enumerate(s.broker, code)
	if err != nil {
		log.Error("enumerate contracts fail", zap.String("instrument", code), zap.String("err", err.Short()))
		s.PBar.NewJob(1).Done()
		return nil, err
	}
	job := s.PBar.NewJob(len(tokens))
	defer job.Done()
	log.Info("seeding instrument", zap.String("instrument", code), zap.Int("contracts", len(tokens)),
		zap.String("cutoff", cutoff.String()), zap.String("freqs", futures.JoinFrequencies(s.freqs)))
	report := fold(tokens, NewSeedingReport(code, s.RunID, cutoff), func(rep *SeedingReport, token string) *SeedingReport {
		res := s.seedContract(code, token, cutoff)
		if !res.State.Terminal() {
			res.fail(errs.NewMsg(core.ErrRunTime, "contract %s ended in state %s", token, res.State))
		}
		job.Add(1)
		return rep.Add(res)
	})
	report.StopMS = btime.UTCStamp()
	log.Info(report.Summary())
	return report, nil
}

func fold[T, A any](items []T, acc A, fn func(A, T) A) A {
	for _, it := range items {
		acc = fn(acc, it)
	}
	return acc
}

/*
seedContract
单个合约的状态流转：Enumerated -> ExpiryFiltered -> PriceSeeded -> Registered，
或终止于Skipped/Failed。此处是合约级错误边界，panic也在此转为ErrRunTime
*/
func (s *Seeder) seedContract(code, token string, cutoff futures.ExpiryDate) (res *ContractResult) {
	res = &ContractResult{Token: token, State: StateEnumerated}
	defer func() {
		if r := recover(); r != nil {
			res.fail(errs.NewMsg(core.ErrRunTime, "%v", r))
			log.Error("seed contract panic", zap.String("instrument", code), zap.String("label", res.Label),
				zap.String("token", token), zap.String("err", fmt.Sprintf("%v", r)), zap.Stack("stack"))
		}
	}()
	cd, err := futures.ParseContractDate(token)
	if err != nil {
		log.Error("invalid contract label", zap.String("instrument", code), zap.String("token", token),
			zap.String("err", err.Short()))
		return res.fail(err)
	}
	res.Label = cd.Label
	res.Expiry = cd.Expiry
	if cd.Expiry.After(cutoff) {
		log.Info("skip contract after cutoff", zap.String("instrument", code), zap.String("label", cd.Label),
			zap.String("expiry", cd.Expiry.String()))
		return res.skip(SkipAfterCutoff)
	}
	res.State = StateExpiryFiltered
	c := futures.NewContract(code, cd)

	results := s.fetcher.FetchAll(c, s.freqs)
	var firstErr *errs.Error
	hasData := false
	for _, r := range results {
		switch r.Status {
		case broker.FetchData:
			hasData = true
		case broker.FetchFail:
			if res.FreqErrs == nil {
				res.FreqErrs = make(map[futures.Frequency]*errs.Error)
			}
			res.FreqErrs[r.Freq] = r.Err
			if firstErr == nil {
				firstErr = r.Err
			}
			log.Error("fetch prices fail", zap.String("instrument", code), zap.String("label", c.Label),
				zap.String("freq", r.Freq.String()), zap.String("err", r.Err.Short()))
		}
	}
	if !hasData && firstErr != nil {
		return res.fail(firstErr)
	}
	wr, err := s.writer.Write(c, results)
	if err != nil {
		log.Error("write merged fail", zap.String("instrument", code), zap.String("label", c.Label),
			zap.String("err", err.Short()))
		return res.fail(err)
	}
	res.Bars = wr.Num
	res.Freqs = wr.Freqs
	res.State = StatePriceSeeded

	status, err := s.reg.Register(c)
	if err != nil {
		log.Error("register contract fail", zap.String("instrument", code), zap.String("label", c.Label),
			zap.String("err", err.Short()))
		return res.fail(err)
	}
	if status == RegExisted {
		return res.skip(SkipRegistered)
	}
	res.State = StateRegistered
	return res
}
