package orm

import (
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/futures"
)

/*
FuturesContract
已登记的合约元数据，(Instrument, Label)唯一
*/
type FuturesContract struct {
	ID         int64
	Instrument string
	Label      string
	Expiry     string // YYYYMMDD
	ExpiryMs   int64
	Approx     bool
	CreatedMs  int64
}

type KInfoMerged struct {
	Instrument string
	Label      string
	Freqs      string
	Num        int32
	StartMs    int64
	StopMs     int64
	UpdatedMs  int64
}

func (c *FuturesContract) ToContract() (*futures.Contract, *errs.Error) {
	exp, err := futures.ParseExpiry(c.Expiry)
	if err != nil {
		return nil, err
	}
	return &futures.Contract{
		Instrument: c.Instrument,
		Label:      c.Label,
		Expiry:     exp,
		Approx:     c.Approx,
	}, nil
}
