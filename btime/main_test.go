package btime

import (
	"testing"
	"time"
)

func TestParseTimeMS(t *testing.T) {
	tests := []struct {
		name     string
		timeStr  string
		expected int64
		wantErr  bool
	}{
		{"Year only", "2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), false},
		{"Year month compact", "202301", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), false},
		{"Year month day compact", "20230102", time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli(), false},
		{"Minute with dash", "2023-01-02 15:04", time.Date(2023, 1, 2, 15, 4, 0, 0, time.UTC).UnixMilli(), false},
		{"Second with dash", "2023-01-02 15:04:05", time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC).UnixMilli(), false},
		{"10-digit timestamp", "1672617600", 1672617600000, false},
		{"13-digit timestamp", "1672617600000", 1672617600000, false},
		{"Invalid format", "abcdef", 0, true},
		{"Invalid month", "20231301", 0, true},
		{"Empty string", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeMS(tt.timeStr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeMS(%q) err = %v, wantErr %v", tt.timeStr, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseTimeMS(%q) = %d, want %d", tt.timeStr, got, tt.expected)
			}
		})
	}
}

func TestToDateStr(t *testing.T) {
	ms := time.Date(2021, 5, 28, 0, 0, 0, 0, time.UTC).UnixMilli()
	if got := ToDateStr(ms, "20060102"); got != "20210528" {
		t.Errorf("ToDateStr ms = %s", got)
	}
	if got := ToDateStr(ms/1000, ""); got != "2021-05-28 00:00:00" {
		t.Errorf("ToDateStr secs = %s", got)
	}
}
