package entry

import (
	"fmt"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/config"
)

type FuncEntry = func(args *config.CmdArgs) *errs.Error

var (
	groups   = make([]string, 0, 2)
	groupMap = make(map[string]*JobGroup)
)

type CmdJob struct {
	Name    string
	Parent  string
	Run     FuncEntry
	Options []string
	Help    string
}

type JobGroup struct {
	Name string
	Help string
	Jobs map[string]*CmdJob
	Keys []string
}

func AddGroup(name, help string) {
	if _, ok := groupMap[name]; !ok {
		groupMap[name] = &JobGroup{
			Name: name,
			Help: help,
			Jobs: make(map[string]*CmdJob),
		}
		groups = append(groups, name)
	}
}

func AddCmdJob(job *CmdJob) {
	gp, ok := groupMap[job.Parent]
	if !ok {
		panic(fmt.Sprint("no cmd group found: ", job.Parent))
	}
	if _, ok = gp.Jobs[job.Name]; !ok {
		gp.Keys = append(gp.Keys, job.Name)
	}
	gp.Jobs[job.Name] = job
}

func init() {
	AddGroup("", "Root Commands")

	AddCmdJob(&CmdJob{
		Name:    "seed",
		Run:     RunSeed,
		Options: []string{"instruments", "cutoff", "freqs", "medium", "concur", "write_empty", "out", "cron"},
		Help:    "seed futures prices and register contracts",
	})
	AddCmdJob(&CmdJob{
		Name:    "labels",
		Run:     RunLabels,
		Options: []string{"instruments", "cutoff"},
		Help:    "list broker contract labels with expiry, no writes",
	})
	AddCmdJob(&CmdJob{
		Name:    "contracts",
		Run:     RunContracts,
		Options: []string{"instruments", "medium"},
		Help:    "list registered contracts",
	})
	AddCmdJob(&CmdJob{
		Name: "init",
		Run:  runInit,
		Help: "initialize config.yml in BanDataDir",
	})
}

// GetCmdJob get command job by name and parent
func GetCmdJob(name, parent string) *CmdJob {
	if gp, ok := groupMap[parent]; ok {
		if job, ok := gp.Jobs[name]; ok {
			return job
		}
	}
	return nil
}

// GetGroup get command group by name
func GetGroup(name string) *JobGroup {
	gp, _ := groupMap[name]
	return gp
}
