package seed

import (
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

/*
ContractStore
合约元数据存储。Insert在(instrument, label)已存在时返回ErrDbUniqueViolation
*/
type ContractStore interface {
	Exists(instrument, label string) (bool, *errs.Error)
	Insert(c *futures.Contract) *errs.Error
}

// atomicStore 支持原子"不存在则插入"的存储，返回是否新插入
type atomicStore interface {
	InsertIfAbsent(c *futures.Contract) (bool, *errs.Error)
}

type RegStatus int

const (
	RegAdded RegStatus = iota + 1
	RegExisted
)

/*
Registrar
登记合约元数据，每个合约只登记一次。
cache可选，只缓存"已登记"这一结果，scope用于区分不同的元数据存储
*/
type Registrar struct {
	store ContractStore
	cache *ristretto.Cache
	scope string
}

func NewRegistrar(store ContractStore, cache *ristretto.Cache, scope string) *Registrar {
	return &Registrar{store: store, cache: cache, scope: scope}
}

func (r *Registrar) cacheKey(c *futures.Contract) string {
	return "reg|" + r.scope + "|" + c.Key()
}

func (r *Registrar) Register(c *futures.Contract) (RegStatus, *errs.Error) {
	key := r.cacheKey(c)
	if r.cache != nil {
		if _, ok := r.cache.Get(key); ok {
			log.Info("contract already registered", zap.String("contract", c.Key()), zap.Bool("cached", true))
			return RegExisted, nil
		}
	}
	status, err := r.register(c)
	if err != nil {
		return 0, err
	}
	if r.cache != nil {
		r.cache.Set(key, true, 1)
		r.cache.Wait()
	}
	if status == RegExisted {
		log.Info("contract already registered", zap.String("contract", c.Key()))
	} else {
		log.Info("contract registered", zap.String("contract", c.Key()), zap.String("expiry", c.Expiry.String()))
	}
	return status, nil
}

func (r *Registrar) register(c *futures.Contract) (RegStatus, *errs.Error) {
	has, err := r.store.Exists(c.Instrument, c.Label)
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	if has {
		return RegExisted, nil
	}
	if st, ok := r.store.(atomicStore); ok {
		added, err := st.InsertIfAbsent(c)
		if err != nil {
			if err.Code == core.ErrDbUniqueViolation {
				return RegExisted, nil
			}
			return 0, wrapStoreErr(err)
		}
		if !added {
			return RegExisted, nil
		}
		return RegAdded, nil
	}
	err = r.store.Insert(c)
	if err != nil {
		// 并发写入导致的唯一键冲突，等同于已登记
		if err.Code == core.ErrDbUniqueViolation {
			return RegExisted, nil
		}
		return 0, wrapStoreErr(err)
	}
	return RegAdded, nil
}

func wrapStoreErr(err *errs.Error) *errs.Error {
	if err.Code == core.ErrStoreUnavailable {
		return err
	}
	return errs.NewMsg(core.ErrStoreUnavailable, "metadata store fail: %s", err.Short())
}
