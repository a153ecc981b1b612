package entry

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/config"
	"go.uber.org/zap"
)

const VERSION = "0.1.0"

func RunCmd() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}
	args := os.Args[1:]
	job := GetCmdJob(args[0], "")
	if job == nil {
		printHelp()
		os.Exit(1)
	}
	runSubCmd(job, args[1:])
}

func printHelp() {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\nbanseed %v\nplease run with a subcommand:\n", VERSION))
	for _, name := range groups {
		gp := groupMap[name]
		for _, key := range gp.Keys {
			b.WriteString(fmt.Sprintf("\t%-10s %s\n", key+":", gp.Jobs[key].Help))
		}
	}
	log.Warn(b.String())
}

func runSubCmd(job *CmdJob, subArgs []string) {
	var args config.CmdArgs
	var sub = flag.NewFlagSet(job.Name, flag.ExitOnError)
	bindSubFlags(&args, sub, job.Options...)
	err_ := sub.Parse(subArgs)
	if err_ != nil {
		log.Error("fail", zap.Error(err_))
		printHelp()
		os.Exit(1)
	}
	args.Init()
	err := job.Run(&args)
	if err != nil {
		log.Error("run fail", zap.String("cmd", job.Name), zap.String("err", err.Short()))
		os.Exit(1)
	}
	os.Exit(0)
}

func bindSubFlags(args *config.CmdArgs, cmd *flag.FlagSet, opts ...string) {
	cmd.Var(&args.Configs, "config", "config path to use, Multiple -config options may be used")
	cmd.StringVar(&args.Logfile, "logfile", "", "Log to the file specified")
	cmd.StringVar(&args.DataDir, "datadir", "", "Path to data dir.")
	cmd.StringVar(&args.LogLevel, "level", "info", "set logging level to debug")
	cmd.BoolVar(&args.NoDefault, "no-default", false, "ignore default: config.yml, config.local.yml")
	cmd.IntVar(&args.MaxPoolSize, "max-pool-size", 0, "max pool size for db")

	for _, key := range opts {
		switch key {
		case "instruments":
			cmd.StringVar(&args.RawInstruments, "instruments", "", "comma-separated instrument codes")
		case "cutoff":
			cmd.StringVar(&args.Cutoff, "cutoff", "", "skip contracts expiring after this date, YYYYMMDD")
		case "freqs":
			cmd.StringVar(&args.RawFreqs, "freqs", "", "comma-separated frequencies: 1h,1d")
		case "medium":
			cmd.StringVar(&args.Medium, "medium", "", "data medium:db,file")
		case "concur":
			cmd.IntVar(&args.Concur, "concur", 0, "instruments to seed in parallel")
		case "write_empty":
			cmd.BoolVar(&args.WriteEmpty, "write-empty", false, "overwrite stored prices even if nothing was fetched")
		case "out":
			cmd.StringVar(&args.OutPath, "out", "", "export report to xlsx file")
		case "cron":
			cmd.StringVar(&args.Cron, "cron", "", "re-run on schedule, cron expression with seconds")
		default:
			log.Warn(fmt.Sprintf("undefined argument: %s", key))
			os.Exit(1)
		}
	}
}
