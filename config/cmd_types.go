package config

import (
	"github.com/banbox/banseed/utils"
)

type ArrString []string

func (i *ArrString) String() string {
	return "my string representation"
}

func (i *ArrString) Set(value string) error {
	*i = append(*i, value)
	return nil
}

type CmdArgs struct {
	Configs        ArrString
	Logfile        string
	DataDir        string
	NoDefault      bool
	LogLevel       string
	RawInstruments string
	Instruments    []string
	Cutoff         string
	RawFreqs       string
	Frequencies    []string
	Medium         string
	Concur         int
	MaxPoolSize    int
	OutPath        string // 导出报告的xlsx路径
	Cron           string // 定时执行的cron表达式，带秒
	WriteEmpty     bool
}

func (a *CmdArgs) Init() {
	a.Instruments = utils.SplitSolid(a.RawInstruments, ",")
	a.Frequencies = utils.SplitSolid(a.RawFreqs, ",")
}
