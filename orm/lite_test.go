package orm

import (
	"path/filepath"
	"testing"

	"github.com/banbox/banseed/core"
)

func TestLiteStore(t *testing.T) {
	store, err := OpenLite(filepath.Join(t.TempDir(), "contracts.db"))
	if err != nil {
		t.Fatalf("open sqlite fail: %v", err)
	}
	defer store.Close()
	c := mustContract(t, "CRUDE_W", "202106-20210528")
	has, err := store.Exists(c.Instrument, c.Label)
	if err != nil || has {
		t.Fatalf("new store should be empty: %v", err)
	}
	if err = store.Insert(c); err != nil {
		t.Fatalf("insert fail: %v", err)
	}
	err = store.Insert(c)
	if err == nil || err.Code != core.ErrDbUniqueViolation {
		t.Fatalf("expect DuplicateKey, got %v", err)
	}
	added, err := store.InsertIfAbsent(c)
	if err != nil || added {
		t.Fatalf("insert if absent should be no-op: %v %v", added, err)
	}
	c2 := mustContract(t, "CRUDE_W", "202012")
	added, err = store.InsertIfAbsent(c2)
	if err != nil || !added {
		t.Fatalf("insert if absent should add: %v %v", added, err)
	}
	items, err := store.ListContracts("CRUDE_W")
	if err != nil {
		t.Fatalf("list fail: %v", err)
	}
	if len(items) != 2 || items[0].Label != "202012" || items[1].Label != "202106" {
		t.Fatalf("unexpected contracts: %v", items)
	}
	if items[1].Expiry != "20210528" || items[0].Approx != true {
		t.Errorf("unexpected fields: %+v %+v", items[0], items[1])
	}
	back, err := items[1].ToContract()
	if err != nil || back.Expiry.String() != "20210528" {
		t.Errorf("to contract fail: %v %v", back, err)
	}
}
