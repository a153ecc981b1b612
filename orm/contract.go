package orm

import (
	"context"
	"errors"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/core"
	"github.com/jackc/pgx/v5"
)

const getContract = `
SELECT id, instrument, label, expiry, expiry_ms, approx, created_ms FROM futures_contract
WHERE instrument = $1 AND label = $2
`

func (q *Queries) GetContract(ctx context.Context, instrument, label string) (*FuturesContract, *errs.Error) {
	row := q.db.QueryRow(ctx, getContract, instrument, label)
	var i FuturesContract
	err := row.Scan(&i.ID, &i.Instrument, &i.Label, &i.Expiry, &i.ExpiryMs, &i.Approx, &i.CreatedMs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, NewDbErr(core.ErrDbReadFail, err)
	}
	return &i, nil
}

const listContracts = `
SELECT id, instrument, label, expiry, expiry_ms, approx, created_ms FROM futures_contract
WHERE instrument = $1
ORDER BY label
`

func (q *Queries) ListContracts(ctx context.Context, instrument string) ([]*FuturesContract, *errs.Error) {
	rows, err_ := q.db.Query(ctx, listContracts, instrument)
	res, err_ := mapToItems(rows, err_, func() (*FuturesContract, []any) {
		var i FuturesContract
		return &i, []any{&i.ID, &i.Instrument, &i.Label, &i.Expiry, &i.ExpiryMs, &i.Approx, &i.CreatedMs}
	})
	if err_ != nil {
		return nil, NewDbErr(core.ErrDbReadFail, err_)
	}
	return res, nil
}

const insertContract = `
INSERT INTO futures_contract (instrument, label, expiry, expiry_ms, approx, created_ms)
VALUES ($1, $2, $3, $4, $5, $6)
`

type AddContractParams struct {
	Instrument string
	Label      string
	Expiry     string
	ExpiryMs   int64
	Approx     bool
	CreatedMs  int64
}

/*
AddContract 插入合约，已存在时返回ErrDbUniqueViolation
*/
func (q *Queries) AddContract(ctx context.Context, arg AddContractParams) *errs.Error {
	_, err := q.db.Exec(ctx, insertContract, arg.Instrument, arg.Label, arg.Expiry, arg.ExpiryMs,
		arg.Approx, arg.CreatedMs)
	if err != nil {
		return NewDbErr(core.ErrDbExecFail, err)
	}
	return nil
}

const insertContractIfAbsent = insertContract + `ON CONFLICT (instrument, label) DO NOTHING`

/*
AddContractIfAbsent 原子插入，返回是否新插入
*/
func (q *Queries) AddContractIfAbsent(ctx context.Context, arg AddContractParams) (bool, *errs.Error) {
	tag, err := q.db.Exec(ctx, insertContractIfAbsent, arg.Instrument, arg.Label, arg.Expiry, arg.ExpiryMs,
		arg.Approx, arg.CreatedMs)
	if err != nil {
		return false, NewDbErr(core.ErrDbExecFail, err)
	}
	return tag.RowsAffected() > 0, nil
}

func mapToItems[T any](rows pgx.Rows, err_ error, assign func() (T, []any)) ([]T, error) {
	if err_ != nil {
		return nil, err_
	}
	defer rows.Close()
	items := make([]T, 0)
	for rows.Next() {
		i, fields := assign()
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
