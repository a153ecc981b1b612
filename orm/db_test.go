package orm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/banbox/banexg"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/config"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMain(m *testing.M) {
	log.Setup("debug", "")
	os.Exit(m.Run())
}

func mustContract(t *testing.T, instrument, token string) *futures.Contract {
	cd, err := futures.ParseContractDate(token)
	if err != nil {
		t.Fatalf("parse %s fail: %v", token, err)
	}
	return futures.NewContract(instrument, cd)
}

func TestNewDbErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "futures_contract_inst_label"}, core.ErrDbUniqueViolation},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), core.ErrDbUniqueViolation},
		{"not exist", &pgconn.PgError{Code: "3D000"}, core.ErrDbConnFail},
		{"other pg", &pgconn.PgError{Code: "42P01"}, core.ErrDbExecFail},
		{"plain", errors.New("boom"), core.ErrDbExecFail},
	}
	for _, c := range cases {
		res := NewDbErr(core.ErrDbExecFail, c.err)
		if res.Code != c.code {
			t.Errorf("%s: expect code %d, got %d", c.name, c.code, res.Code)
		}
	}
}

func TestParseMigrations(t *testing.T) {
	text := "-- version 1\nALTER TABLE a ADD b int;\n-- version x\nSELECT 1;\n-- version 3\nSELECT 3;\n"
	items := parseMigrations(text)
	if len(items) != 2 {
		t.Fatalf("expect 2 migrations, got %d", len(items))
	}
	if items[0].version != 1 || items[1].version != 3 {
		t.Errorf("unexpected versions: %d %d", items[0].version, items[1].version)
	}
	if len(parseMigrations(ddlMigrations)) == 0 {
		t.Errorf("embedded migrations should not be empty")
	}
}

/*
testPgSession 需要环境变量 BanSeedDbUrl 指向可写的postgres数据库，未设置时跳过
*/
func testPgSession(t *testing.T) *PgSession {
	dbUrl := os.Getenv("BanSeedDbUrl")
	if dbUrl == "" {
		t.Skip("env BanSeedDbUrl not set, skip postgres test")
	}
	err := Setup(&config.DatabaseConfig{Url: dbUrl, MaxPoolSize: 4, AutoCreate: true})
	if err != nil {
		t.Fatalf("setup db fail: %v", err)
	}
	sess, err := OpenPgSession(context.Background())
	if err != nil {
		t.Fatalf("open session fail: %v", err)
	}
	t.Cleanup(func() {
		_ = sess.q.Exec("DELETE FROM futures_contract WHERE instrument = 'TEST_X'")
		_ = sess.q.Exec("DELETE FROM kline_merged WHERE instrument = 'TEST_X'")
		_ = sess.q.Exec("DELETE FROM kinfo_merged WHERE instrument = 'TEST_X'")
		sess.Close()
		Close()
	})
	return sess
}

func TestPgContracts(t *testing.T) {
	sess := testPgSession(t)
	c := mustContract(t, "TEST_X", "202106-20210528")
	if err := sess.Insert(c); err != nil {
		t.Fatalf("insert fail: %v", err)
	}
	err := sess.Insert(c)
	if err == nil || err.Code != core.ErrDbUniqueViolation {
		t.Fatalf("expect DuplicateKey, got %v", err)
	}
	added, err := sess.InsertIfAbsent(c)
	if err != nil || added {
		t.Fatalf("insert if absent should be no-op: %v %v", added, err)
	}
	has, err := sess.Exists("TEST_X", "202106")
	if err != nil || !has {
		t.Fatalf("contract should exist: %v", err)
	}
	items, err := sess.ListContracts("TEST_X")
	if err != nil || len(items) != 1 || items[0].Expiry != "20210528" {
		t.Fatalf("unexpected list: %v %v", items, err)
	}
}

func TestPgMerged(t *testing.T) {
	sess := testPgSession(t)
	c := mustContract(t, "TEST_X", "20210720")
	bars := []*banexg.Kline{
		{Time: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 3},
		{Time: 2000, Open: 1.5, High: 2, Low: 1, Close: 1.8, Volume: 4},
	}
	freqs := []futures.Frequency{futures.Daily}
	if err := sess.WriteMerged(c, bars, freqs); err != nil {
		t.Fatalf("write fail: %v", err)
	}
	if err := sess.WriteMerged(c, bars[:1], freqs); err != nil {
		t.Fatalf("overwrite fail: %v", err)
	}
	got, err := sess.QueryMerged(c)
	if err != nil || len(got) != 1 || got[0].Close != 1.5 {
		t.Fatalf("unexpected merged: %v %v", got, err)
	}
	info, err := sess.GetKInfo(c)
	if err != nil || info == nil || info.Num != 1 || info.Freqs != "1d" {
		t.Fatalf("unexpected kinfo: %+v %v", info, err)
	}
}
