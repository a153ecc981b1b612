package orm

import (
	"context"

	"github.com/banbox/banexg"
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/core"
	"github.com/jackc/pgx/v5"
)

type KlineMerged struct {
	banexg.Kline
	Instrument string
	Label      string
}

// iterForAddKLines implements pgx.CopyFromSource.
type iterForAddKLines struct {
	rows                 []*KlineMerged
	skippedFirstNextCall bool
}

func (r *iterForAddKLines) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iterForAddKLines) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].Instrument,
		r.rows[0].Label,
		r.rows[0].Time,
		r.rows[0].Open,
		r.rows[0].High,
		r.rows[0].Low,
		r.rows[0].Close,
		r.rows[0].Volume,
	}, nil
}

func (r iterForAddKLines) Err() error {
	return nil
}

/*
InsertMerged
批量插入合并K线，调用前应已删除旧数据
*/
func (q *Queries) InsertMerged(ctx context.Context, instrument, label string, arr []*banexg.Kline) (int64, *errs.Error) {
	if len(arr) == 0 {
		return 0, nil
	}
	var adds = make([]*KlineMerged, len(arr))
	for i, v := range arr {
		adds[i] = &KlineMerged{
			Kline:      *v,
			Instrument: instrument,
			Label:      label,
		}
	}
	cols := []string{"instrument", "label", "time", "open", "high", "low", "close", "volume"}
	num, err_ := q.db.CopyFrom(ctx, pgx.Identifier{"kline_merged"}, cols, &iterForAddKLines{rows: adds})
	if err_ != nil {
		return 0, NewDbErr(core.ErrDbExecFail, err_)
	}
	return num, nil
}

const delMerged = `DELETE FROM kline_merged WHERE instrument = $1 AND label = $2`

func (q *Queries) DelMerged(ctx context.Context, instrument, label string) *errs.Error {
	_, err_ := q.db.Exec(ctx, delMerged, instrument, label)
	if err_ != nil {
		return NewDbErr(core.ErrDbExecFail, err_)
	}
	return nil
}

const queryMerged = `
SELECT time, open, high, low, close, volume FROM kline_merged
WHERE instrument = $1 AND label = $2
ORDER BY time
`

func (q *Queries) QueryMerged(ctx context.Context, instrument, label string) ([]*banexg.Kline, *errs.Error) {
	rows, err_ := q.db.Query(ctx, queryMerged, instrument, label)
	res, err_ := mapToItems(rows, err_, func() (*banexg.Kline, []any) {
		var i banexg.Kline
		return &i, []any{&i.Time, &i.Open, &i.High, &i.Low, &i.Close, &i.Volume}
	})
	if err_ != nil {
		return nil, NewDbErr(core.ErrDbReadFail, err_)
	}
	return res, nil
}

const setKInfoMerged = `
INSERT INTO kinfo_merged (instrument, label, freqs, num, start_ms, stop_ms, updated_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (instrument, label) DO UPDATE
SET freqs = EXCLUDED.freqs, num = EXCLUDED.num, start_ms = EXCLUDED.start_ms,
    stop_ms = EXCLUDED.stop_ms, updated_ms = EXCLUDED.updated_ms
`

func (q *Queries) SetKInfoMerged(ctx context.Context, arg *KInfoMerged) *errs.Error {
	_, err_ := q.db.Exec(ctx, setKInfoMerged, arg.Instrument, arg.Label, arg.Freqs, arg.Num, arg.StartMs,
		arg.StopMs, arg.UpdatedMs)
	if err_ != nil {
		return NewDbErr(core.ErrDbExecFail, err_)
	}
	return nil
}

const getKInfoMerged = `
SELECT instrument, label, freqs, num, start_ms, stop_ms, updated_ms FROM kinfo_merged
WHERE instrument = $1 AND label = $2
`

func (q *Queries) GetKInfoMerged(ctx context.Context, instrument, label string) (*KInfoMerged, *errs.Error) {
	rows, err_ := q.db.Query(ctx, getKInfoMerged, instrument, label)
	res, err_ := mapToItems(rows, err_, func() (*KInfoMerged, []any) {
		var i KInfoMerged
		return &i, []any{&i.Instrument, &i.Label, &i.Freqs, &i.Num, &i.StartMs, &i.StopMs, &i.UpdatedMs}
	})
	if err_ != nil {
		return nil, NewDbErr(core.ErrDbReadFail, err_)
	}
	if len(res) == 0 {
		return nil, nil
	}
	return res[0], nil
}
