package orm

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed sql/lite_schema.sql
var ddlLite string

var (
	dbPathInit = make(map[string]bool)
	dbPathLock = deadlock.Mutex{}
)

func DbLite(path string, write bool, timeoutMs int64) (*sql.DB, *errs.Error) {
	dbPathLock.Lock()
	defer dbPathLock.Unlock()
	openFlag := ""
	if timeoutMs > 0 {
		openFlag += fmt.Sprintf("&_pragma=busy_timeout(%d)", timeoutMs)
	}
	if write {
		openFlag += "&mode=rwc"
	} else {
		openFlag += "&mode=ro"
	}
	var connStr = fmt.Sprintf("file:%s?%s", path, strings.TrimPrefix(openFlag, "&"))
	db, err_ := sql.Open("sqlite", connStr)
	if err_ != nil {
		return nil, errs.New(core.ErrDbConnFail, err_)
	}
	if write {
		// sqlite同一时刻只允许一个写入
		db.SetMaxOpenConns(1)
	}
	if _, ok := dbPathInit[path]; !ok {
		checkSql := "SELECT COUNT(*) FROM sqlite_schema WHERE type='table' AND name=?;"
		var count int
		err_ = db.QueryRow(checkSql, "futures_contract").Scan(&count)
		if err_ != nil || count == 0 {
			if write {
				log.Info("init sqlite structure", zap.String("path", path))
				if _, err_ = db.Exec(ddlLite); err_ != nil {
					_ = db.Close()
					return nil, errs.New(core.ErrDbExecFail, err_)
				}
			} else if err_ != nil {
				_ = db.Close()
				return nil, errs.New(core.ErrDbExecFail, err_)
			} else {
				_ = db.Close()
				return nil, errs.NewMsg(core.ErrDbExecFail, "db is empty: %v", path)
			}
		}
		dbPathInit[path] = true
	}
	return db, nil
}

/*
LiteStore
基于sqlite的合约元数据存储，用于不依赖postgres的文件模式
*/
type LiteStore struct {
	db   *sql.DB
	path string
}

func OpenLite(path string) (*LiteStore, *errs.Error) {
	db, err := DbLite(path, true, 5000)
	if err != nil {
		return nil, err
	}
	return &LiteStore{db: db, path: path}, nil
}

func (s *LiteStore) Close() {
	if s.db != nil {
		err_ := s.db.Close()
		if err_ != nil {
			log.Warn("close sqlite fail", zap.String("path", s.path), zap.Error(err_))
		}
		s.db = nil
	}
}

func (s *LiteStore) Exists(instrument, label string) (bool, *errs.Error) {
	var count int
	err_ := s.db.QueryRow("SELECT COUNT(*) FROM futures_contract WHERE instrument=? AND label=?",
		instrument, label).Scan(&count)
	if err_ != nil {
		return false, errs.New(core.ErrDbReadFail, err_)
	}
	return count > 0, nil
}

const liteInsert = `INSERT INTO futures_contract (instrument, label, expiry, expiry_ms, approx, created_ms)
VALUES (?, ?, ?, ?, ?, ?)`

func (s *LiteStore) Insert(c *futures.Contract) *errs.Error {
	p := addParams(c)
	_, err_ := s.db.Exec(liteInsert, p.Instrument, p.Label, p.Expiry, p.ExpiryMs, p.Approx, p.CreatedMs)
	if err_ != nil {
		return newLiteErr(core.ErrDbExecFail, err_)
	}
	return nil
}

func (s *LiteStore) InsertIfAbsent(c *futures.Contract) (bool, *errs.Error) {
	p := addParams(c)
	res, err_ := s.db.Exec(strings.Replace(liteInsert, "INSERT INTO", "INSERT OR IGNORE INTO", 1),
		p.Instrument, p.Label, p.Expiry, p.ExpiryMs, p.Approx, p.CreatedMs)
	if err_ != nil {
		return false, newLiteErr(core.ErrDbExecFail, err_)
	}
	num, err_ := res.RowsAffected()
	if err_ != nil {
		return false, errs.New(core.ErrDbReadFail, err_)
	}
	return num > 0, nil
}

func (s *LiteStore) ListContracts(instrument string) ([]*FuturesContract, *errs.Error) {
	rows, err_ := s.db.Query(`SELECT id, instrument, label, expiry, expiry_ms, approx, created_ms
FROM futures_contract WHERE instrument=? ORDER BY label`, instrument)
	if err_ != nil {
		return nil, errs.New(core.ErrDbReadFail, err_)
	}
	defer rows.Close()
	res := make([]*FuturesContract, 0)
	for rows.Next() {
		var i FuturesContract
		err_ = rows.Scan(&i.ID, &i.Instrument, &i.Label, &i.Expiry, &i.ExpiryMs, &i.Approx, &i.CreatedMs)
		if err_ != nil {
			return nil, errs.New(core.ErrDbReadFail, err_)
		}
		res = append(res, &i)
	}
	if err_ = rows.Err(); err_ != nil {
		return nil, errs.New(core.ErrDbReadFail, err_)
	}
	return res, nil
}

func newLiteErr(code int, err_ error) *errs.Error {
	if strings.Contains(err_.Error(), "UNIQUE constraint failed") {
		return errs.NewFull(core.ErrDbUniqueViolation, err_, "duplicate key")
	}
	return errs.New(code, err_)
}
