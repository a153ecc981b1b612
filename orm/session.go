package orm

import (
	"context"

	"github.com/banbox/banexg"
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/btime"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/jackc/pgx/v5/pgxpool"
)

/*
PgSession
单个品种运行期间独占的数据库会话，同时作为合约元数据存储和合并K线存储。不可跨协程使用
*/
type PgSession struct {
	ctx  context.Context
	conn *pgxpool.Conn
	q    *Queries
}

func OpenPgSession(ctx context.Context) (*PgSession, *errs.Error) {
	if ctx == nil {
		ctx = context.Background()
	}
	q, conn, err := Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &PgSession{ctx: ctx, conn: conn, q: q}, nil
}

func (s *PgSession) Close() {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
}

func (s *PgSession) newTx() (*Tx, *Queries, *errs.Error) {
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return nil, nil, NewDbErr(core.ErrDbConnFail, err)
	}
	return &Tx{tx: tx}, s.q.WithTx(tx), nil
}

func (s *PgSession) Exists(instrument, label string) (bool, *errs.Error) {
	c, err := s.q.GetContract(s.ctx, instrument, label)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

func (s *PgSession) Insert(c *futures.Contract) *errs.Error {
	return s.q.AddContract(s.ctx, addParams(c))
}

func (s *PgSession) InsertIfAbsent(c *futures.Contract) (bool, *errs.Error) {
	return s.q.AddContractIfAbsent(s.ctx, addParams(c))
}

func (s *PgSession) ListContracts(instrument string) ([]*FuturesContract, *errs.Error) {
	return s.q.ListContracts(s.ctx, instrument)
}

/*
WriteMerged
在一个事务中删除合约旧K线、COPY写入新K线并更新kinfo_merged，失败时整体回滚
*/
func (s *PgSession) WriteMerged(c *futures.Contract, merged []*banexg.Kline, freqs []futures.Frequency) *errs.Error {
	tx, q, err := s.newTx()
	if err != nil {
		return storeErr(c, err)
	}
	defer tx.Close(s.ctx, false)
	if err = q.DelMerged(s.ctx, c.Instrument, c.Label); err != nil {
		return storeErr(c, err)
	}
	if _, err = q.InsertMerged(s.ctx, c.Instrument, c.Label, merged); err != nil {
		return storeErr(c, err)
	}
	info := &KInfoMerged{
		Instrument: c.Instrument,
		Label:      c.Label,
		Freqs:      futures.JoinFrequencies(freqs),
		Num:        int32(len(merged)),
		UpdatedMs:  btime.UTCStamp(),
	}
	if len(merged) > 0 {
		info.StartMs = merged[0].Time
		info.StopMs = merged[len(merged)-1].Time
	}
	if err = q.SetKInfoMerged(s.ctx, info); err != nil {
		return storeErr(c, err)
	}
	if err = tx.Close(s.ctx, true); err != nil {
		return storeErr(c, err)
	}
	return nil
}

func (s *PgSession) QueryMerged(c *futures.Contract) ([]*banexg.Kline, *errs.Error) {
	return s.q.QueryMerged(s.ctx, c.Instrument, c.Label)
}

func (s *PgSession) GetKInfo(c *futures.Contract) (*KInfoMerged, *errs.Error) {
	return s.q.GetKInfoMerged(s.ctx, c.Instrument, c.Label)
}

func addParams(c *futures.Contract) AddContractParams {
	return AddContractParams{
		Instrument: c.Instrument,
		Label:      c.Label,
		Expiry:     c.Expiry.String(),
		ExpiryMs:   c.Expiry.UnixMilli(),
		Approx:     c.Approx,
		CreatedMs:  btime.UTCStamp(),
	}
}

func storeErr(c *futures.Contract, err *errs.Error) *errs.Error {
	return errs.NewMsg(core.ErrStoreUnavailable, "write merged %s fail: %s", c.Key(), err.Short())
}
