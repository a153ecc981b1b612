package futures

import (
	"reflect"
	"testing"
)

func TestParseFrequencies(t *testing.T) {
	tests := []struct {
		in   []string
		want []Frequency
	}{
		{nil, []Frequency{Hourly, Daily}},
		{[]string{"1d", "1h"}, []Frequency{Hourly, Daily}},
		{[]string{"daily", "D", "hourly"}, []Frequency{Hourly, Daily}},
		{[]string{"1d"}, []Frequency{Daily}},
	}
	for _, tt := range tests {
		got, err := ParseFrequencies(tt.in)
		if err != nil {
			t.Fatalf("%v: %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseFrequencies(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseFrequencies([]string{"5m"}); err == nil {
		t.Error("5m should be rejected")
	}
}

func TestFrequencySecs(t *testing.T) {
	if Hourly.Secs() != 3600 || Daily.Secs() != 86400 {
		t.Errorf("secs: %d %d", Hourly.Secs(), Daily.Secs())
	}
	if JoinFrequencies([]Frequency{Hourly, Daily}) != "1h,1d" {
		t.Error("join mismatch")
	}
}
