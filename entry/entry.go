package entry

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/anyongjin/cron"
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/biz"
	"github.com/banbox/banseed/broker"
	"github.com/banbox/banseed/btime"
	"github.com/banbox/banseed/config"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/banbox/banseed/seed"
	"github.com/banbox/banseed/utils"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

func RunSeed(args *config.CmdArgs) *errs.Error {
	err := biz.SetupComs(args)
	if err != nil {
		return err
	}
	cfg := config.Data
	codes := cfg.Seed.Instruments
	if len(codes) == 0 {
		return errs.NewMsg(errs.CodeParamRequired, "-instruments or seed.instruments is required")
	}
	cutoff, err := cfg.Seed.CutoffDate()
	if err != nil {
		return err
	}
	freqs, err := cfg.Seed.Freqs()
	if err != nil {
		return err
	}
	stores, err := biz.OpenStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()
	batchArgs := &seed.BatchArgs{
		Freqs:      freqs,
		WriteEmpty: cfg.Seed.WriteEmpty,
		Concur:     cfg.Seed.Concur,
		Cache:      core.Cache,
		CacheScope: stores.Scope(),
		ShowBar:    args.LogLevel != "debug",
	}
	opener := stores.Opener(func() (broker.Broker, *errs.Error) {
		return biz.NewBroker(cfg)
	})
	runOnce := func() {
		rep := seed.SeedInstruments(opener, codes, cutoff, batchArgs)
		fmt.Println(rep.Text())
		if args.OutPath != "" {
			outPath := config.ParsePath(args.OutPath)
			if err := rep.ExportExcel(outPath); err != nil {
				log.Error("export report fail", zap.String("path", outPath), zap.String("err", err.Short()))
			} else {
				log.Info("report exported", zap.String("path", outPath))
			}
		}
	}
	if args.Cron != "" {
		if _, err = scheduleSeed(core.Cron, args.Cron, runOnce); err != nil {
			return err
		}
	}
	runOnce()
	if args.Cron == "" {
		return nil
	}
	core.Cron.Start()
	log.Info("seeding scheduled", zap.String("cron", args.Cron))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	core.Cron.Stop()
	log.Info("seeding schedule stopped")
	return nil
}

/*
scheduleSeed
按cron表达式(带秒)定时执行，上一轮未结束时跳过本轮
*/
func scheduleSeed(c *cron.Cron, spec string, run func()) (cron.ID, *errs.Error) {
	id, err_ := c.Add(spec, skipOverlap(run))
	if err_ != nil {
		return 0, errs.NewFull(core.ErrBadConfig, err_, "invalid cron: %s", spec)
	}
	return id, nil
}

func skipOverlap(run func()) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("last seeding not finished, skip this round")
			return
		}
		defer running.Store(false)
		run()
	}
}

/*
RunLabels
列出经纪商返回的合约及解析出的到期日、是否会被处理，不写入任何数据
*/
func RunLabels(args *config.CmdArgs) *errs.Error {
	err := biz.SetupComs(args)
	if err != nil {
		return err
	}
	cfg := config.Data
	cutoff, err := cfg.Seed.CutoffDate()
	if err != nil {
		return err
	}
	for _, code := range cfg.Seed.Instruments {
		b, err := biz.NewBroker(cfg)
		if err != nil {
			return err
		}
		tokens, err := broker.Enumerate(b, code)
		if err != nil {
			log.Error("enumerate contracts fail", zap.String("instrument", code), zap.String("err", err.Short()))
			continue
		}
		rows := make([][]string, 0, len(tokens))
		for _, token := range tokens {
			cd, err := futures.ParseContractDate(token)
			if err != nil {
				rows = append(rows, []string{token, "", "", "", "invalid: " + err.Message()})
				continue
			}
			action := "seed"
			if cd.Expiry.After(cutoff) {
				action = "skip: " + seed.SkipAfterCutoff
			}
			rows = append(rows, []string{token, cd.Label, cd.Expiry.String(), strconv.FormatBool(cd.Approx), action})
		}
		fmt.Printf("%s: %d contracts, cutoff %s\n", code, len(tokens), cutoff.String())
		fmt.Println(renderTable([]string{"Token", "Label", "Expiry", "Approx", "Action"}, rows))
	}
	return nil
}

func RunContracts(args *config.CmdArgs) *errs.Error {
	err := biz.SetupComs(args)
	if err != nil {
		return err
	}
	cfg := config.Data
	stores, err := biz.OpenStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()
	for _, code := range cfg.Seed.Instruments {
		items, err := stores.ListContracts(code)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{it.Label, it.Expiry, strconv.FormatBool(it.Approx),
				btime.ToDateStr(it.CreatedMs, core.DateFmt)})
		}
		fmt.Printf("%s: %d registered contracts\n", code, len(items))
		fmt.Println(renderTable([]string{"Label", "Expiry", "Approx", "Registered"}, rows))
	}
	return nil
}

func renderTable(heads []string, rows [][]string) string {
	var b bytes.Buffer
	table := tablewriter.NewWriter(&b)
	table.Header(heads)
	for _, row := range rows {
		if err_ := table.Append(row); err_ != nil {
			log.Warn("append row fail", zap.Error(err_))
		}
	}
	if err_ := table.Render(); err_ != nil {
		log.Warn("render table fail", zap.Error(err_))
	}
	return b.String()
}

var defConfig = `name: banseed
exchange:
  name: binance
  market: linear
  contract_type: ""
  roots: {}
database:
  url: ""
  auto_create: true
seed:
  cutoff: "20241231"
  frequencies: [1h, 1d]
  instruments: []
  medium: file
  concur: 1
  write_empty: false
`

/*
runInit
在数据目录生成默认的config.yml，已存在时不覆盖
*/
func runInit(args *config.CmdArgs) *errs.Error {
	if args.DataDir != "" {
		config.DataDir = args.DataDir
	}
	dataDir := config.GetDataDir()
	if dataDir == "" {
		return errs.NewMsg(errs.CodeParamRequired, "-datadir or env `BanDataDir` is required")
	}
	path := filepath.Join(dataDir, "config.yml")
	if utils.Exists(path) {
		log.Info("config already exists", zap.String("path", path))
		return nil
	}
	_, err := config.ParseYmlConfig([]byte(defConfig), path)
	if err != nil {
		return err
	}
	err = utils.WriteFile(path, []byte(defConfig))
	if err != nil {
		return err
	}
	log.Info("config initialized", zap.String("path", path))
	return nil
}
