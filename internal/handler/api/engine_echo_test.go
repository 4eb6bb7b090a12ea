package api

import (
	"testing"
	"time"
)

func TestParseTimeMsUnixMilliseconds(t *testing.T) {
	got, ok := parseTimeMs("1640995200000")
	if !ok || got != 1640995200000 {
		t.Fatalf("got %v ok=%v, want 1640995200000", got, ok)
	}
}

func TestParseTimeMsRFC3339(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).UnixMilli()
	got, ok := parseTimeMs("2024-10-10T10:10:10Z")
	if !ok || got != want {
		t.Fatalf("got %v ok=%v, want %v", got, ok, want)
	}
}

func TestParseTimeMsInvalid(t *testing.T) {
	if _, ok := parseTimeMs(""); ok {
		t.Fatalf("empty input must not parse")
	}
	if _, ok := parseTimeMs("yesterday"); ok {
		t.Fatalf("garbage input must not parse")
	}
}
