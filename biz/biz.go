package biz

import (
	"context"
	"path/filepath"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/broker"
	"github.com/banbox/banseed/config"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/data"
	"github.com/banbox/banseed/orm"
	"github.com/banbox/banseed/seed"
	"github.com/banbox/banseed/utils"
	"go.uber.org/zap"
)

const liteName = "contracts.db"

func SetupComs(args *config.CmdArgs) *errs.Error {
	err := config.LoadConfig(args)
	if err != nil {
		return err
	}
	log.Setup(args.LogLevel, args.Logfile)
	if text, err := config.Data.Desensitize().DumpYaml(); err == nil {
		log.Debug("config loaded", zap.String("name", config.Name), zap.String("yaml", string(text)))
	}
	return core.Setup()
}

/*
NewBroker
每个品种运行使用独立的经纪商会话
*/
func NewBroker(cfg *config.Config) (broker.Broker, *errs.Error) {
	exgCfg := cfg.Exchange
	b, err := broker.NewExgBroker(&broker.ExgArgs{
		Name:         exgCfg.Name,
		Market:       exgCfg.Market,
		ContractType: exgCfg.ContractType,
		Options:      exgCfg.Options,
		Roots:        exgCfg.Roots,
		FetchDays:    cfg.Seed.FetchDays,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

/*
Stores
一次运行使用的存储。
db: postgres连接池在所有品种间共享，每个品种获取独立连接，同时存储元数据和合并K线；
file: sqlite存储元数据，parquet文件存储合并K线
*/
type Stores struct {
	Medium   string
	dataDir  string
	litePath string
	lite     *orm.LiteStore
	merged   *data.ParquetStore
}

func OpenStores(cfg *config.Config) (*Stores, *errs.Error) {
	res := &Stores{Medium: cfg.Seed.Medium}
	if res.Medium == core.MediumDb {
		err := orm.Setup(cfg.Database)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	if cfg.DataDir == "" {
		return nil, errs.NewMsg(core.ErrBadConfig, "data_dir is required for medium: %s", res.Medium)
	}
	err_ := utils.EnsureDir(cfg.DataDir, 0755)
	if err_ != nil {
		return nil, errs.New(core.ErrIOWriteFail, err_)
	}
	res.dataDir = cfg.DataDir
	res.litePath = filepath.Join(cfg.DataDir, liteName)
	lite, err := orm.OpenLite(res.litePath)
	if err != nil {
		return nil, err
	}
	res.lite = lite
	res.merged = data.NewParquetStore(cfg.DataDir)
	log.Info("use file medium", zap.String("dir", cfg.DataDir))
	return res, nil
}

// Scope 区分登记缓存所属的元数据存储
func (s *Stores) Scope() string {
	return s.Medium
}

func (s *Stores) Close() {
	if s.lite != nil {
		s.lite.Close()
		return
	}
	orm.Close()
}

// BrokerFactory 每次调用返回新的经纪商会话
type BrokerFactory func() (broker.Broker, *errs.Error)

/*
Opener
返回批量运行使用的会话工厂，每个品种独占经纪商会话和存储连接：
db: 从连接池获取独立连接；file: 打开独立的sqlite句柄和parquet存储
*/
func (s *Stores) Opener(newBroker BrokerFactory) seed.SessionOpener {
	return func(instrument string) (*seed.Session, *errs.Error) {
		b, err := newBroker()
		if err != nil {
			return nil, err
		}
		if s.lite != nil {
			lite, err := orm.OpenLite(s.litePath)
			if err != nil {
				return nil, errs.NewMsg(core.ErrStoreUnavailable, "open sqlite for %s fail: %s", instrument, err.Short())
			}
			return &seed.Session{Broker: b, Contracts: lite, Merged: data.NewParquetStore(s.dataDir),
				Close: lite.Close}, nil
		}
		sess, err := orm.OpenPgSession(context.Background())
		if err != nil {
			return nil, errs.NewMsg(core.ErrStoreUnavailable, "open db session for %s fail: %s", instrument, err.Short())
		}
		return &seed.Session{Broker: b, Contracts: sess, Merged: sess, Close: sess.Close}, nil
	}
}

func (s *Stores) ListContracts(instrument string) ([]*orm.FuturesContract, *errs.Error) {
	if s.lite != nil {
		return s.lite.ListContracts(instrument)
	}
	sess, err := orm.OpenPgSession(context.Background())
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return sess.ListContracts(instrument)
}
