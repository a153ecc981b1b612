package data

import (
	"os"
	"path/filepath"

	"github.com/banbox/banexg"
	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/banbox/banseed/utils"
	"github.com/parquet-go/parquet-go"
)

// ParquetBar 合并K线在parquet文件中的行
type ParquetBar struct {
	Time   int64   `parquet:"time"`
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume float64 `parquet:"volume"`
	Info   float64 `parquet:"info"`
}

/*
ParquetStore
文件存储：每个合约一个文件 <data_dir>/merged/<instrument>/<label>.parquet，整体替换
*/
type ParquetStore struct {
	root string
}

func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{root: filepath.Join(dataDir, "merged")}
}

func (s *ParquetStore) Path(c *futures.Contract) string {
	return filepath.Join(s.root, c.Instrument, c.Label+".parquet")
}

func (s *ParquetStore) WriteMerged(c *futures.Contract, merged []*banexg.Kline, freqs []futures.Frequency) *errs.Error {
	rows := make([]ParquetBar, 0, len(merged))
	for _, k := range merged {
		rows = append(rows, ParquetBar{Time: k.Time, Open: k.Open, High: k.High, Low: k.Low,
			Close: k.Close, Volume: k.Volume, Info: k.Info})
	}
	path := s.Path(c)
	err := utils.WriteFileWith(path, func(f *os.File) error {
		return parquet.Write(f, rows, parquet.KeyValueMetadata("freqs", futures.JoinFrequencies(freqs)))
	})
	if err != nil {
		return errs.NewMsg(core.ErrStoreUnavailable, "write %s fail: %s", path, err.Short())
	}
	return nil
}

/*
ReadMerged 读取合约的合并K线，文件不存在时返回nil
*/
func (s *ParquetStore) ReadMerged(c *futures.Contract) ([]*banexg.Kline, *errs.Error) {
	path := s.Path(c)
	if !utils.Exists(path) {
		return nil, nil
	}
	rows, err_ := parquet.ReadFile[ParquetBar](path)
	if err_ != nil {
		return nil, errs.NewFull(core.ErrIOReadFail, err_, "read %s fail", path)
	}
	res := make([]*banexg.Kline, 0, len(rows))
	for _, r := range rows {
		res = append(res, &banexg.Kline{Time: r.Time, Open: r.Open, High: r.High, Low: r.Low,
			Close: r.Close, Volume: r.Volume, Info: r.Info})
	}
	return res, nil
}
