package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

// ── Snapshot Tests ──

func TestSnapshotJSONHasEveryKey(t *testing.T) {
	snap := &Snapshot{Symbol: "TCS.NS", Market: MarketEquityIN, DataQuality: QualityLive, DataSource: SourceLive}
	snap.SetNumber(FieldPrice, 3140)

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("json.Marshal(Snapshot) error: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}

	for _, f := range NumberFields {
		if _, ok := raw[string(f)]; !ok {
			t.Errorf("numeric key %q missing from JSON", f)
		}
	}
	for _, f := range TextFields {
		if _, ok := raw[string(f)]; !ok {
			t.Errorf("text key %q missing from JSON", f)
		}
	}
	if raw["pe_ratio"] != nil {
		t.Errorf("pe_ratio: got %v, want null", raw["pe_ratio"])
	}
	if raw["last_traded_price"] != 3140.0 {
		t.Errorf("last_traded_price: got %v, want 3140", raw["last_traded_price"])
	}
	if raw["data_quality"] != "live" {
		t.Errorf("data_quality: got %v, want live", raw["data_quality"])
	}
}

func TestSnapshotFieldAccessorsCoverAllFields(t *testing.T) {
	snap := &Snapshot{}
	for i, f := range NumberFields {
		snap.SetNumber(f, float64(i+1))
	}
	for i, f := range NumberFields {
		got := snap.Number(f)
		if got == nil || *got != float64(i+1) {
			t.Errorf("Number(%s): got %v, want %d", f, got, i+1)
		}
	}
	for _, f := range TextFields {
		snap.SetText(f, string(f))
		if got := snap.Text(f); got == nil || *got != string(f) {
			t.Errorf("Text(%s): got %v", f, got)
		}
	}
	if snap.Number("no_such_field") != nil {
		t.Error("unknown field should return nil")
	}
}

func TestSnapshotPrice(t *testing.T) {
	var nilSnap *Snapshot
	if nilSnap.Price() != 0 {
		t.Error("nil snapshot price should be 0")
	}
	snap := &Snapshot{}
	snap.SetNumber(FieldPrice, 97.5)
	if snap.Price() != 97.5 {
		t.Errorf("Price: got %f, want 97.5", snap.Price())
	}
}

// ── PartialRecord Tests ──

func TestPartialRecordAbsentIsNotZero(t *testing.T) {
	r := NewPartialRecord("test", time.Now())
	r.SetNonZero(FieldPE, 0)
	r.SetPtr(FieldPB, nil)
	r.Set(FieldROE, math.NaN())
	r.SetText(FieldName, "   ")

	if _, ok := r.Number(FieldPE); ok {
		t.Error("SetNonZero(0) should leave field absent")
	}
	if _, ok := r.Number(FieldPB); ok {
		t.Error("SetPtr(nil) should leave field absent")
	}
	if _, ok := r.Number(FieldROE); ok {
		t.Error("NaN should be dropped")
	}
	if _, ok := r.Text(FieldName); ok {
		t.Error("blank text should be dropped")
	}
	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}

	r.Set(FieldChange, 0)
	if v, ok := r.Number(FieldChange); !ok || v != 0 {
		t.Error("Set(0) should store an explicit zero")
	}
}

func TestPartialRecordPrice(t *testing.T) {
	tests := []struct {
		name  string
		price *float64
		ok    bool
	}{
		{"absent", nil, false},
		{"zero", ptr(0), false},
		{"negative", ptr(-4), false},
		{"positive", ptr(1458), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPartialRecord("test", time.Now())
			r.SetPtr(FieldPrice, tt.price)
			if _, ok := r.Price(); ok != tt.ok {
				t.Errorf("Price() ok = %v, want %v", ok, tt.ok)
			}
		})
	}

	var nilRec *PartialRecord
	if _, ok := nilRec.Price(); ok {
		t.Error("nil record should have no price")
	}
}

// ── Symbol Tests ──

func TestSymbolBase(t *testing.T) {
	tests := []struct {
		ticker string
		want   string
	}{
		{"RELIANCE.NS", "RELIANCE"},
		{"TCS.BO", "TCS"},
		{"BTC-USD", "BTC"},
		{"ETH-USDT", "ETH"},
		{"AAPL", "AAPL"},
	}
	for _, tt := range tests {
		s := Symbol{Ticker: tt.ticker}
		if got := s.Base(); got != tt.want {
			t.Errorf("Symbol{%q}.Base() = %q, want %q", tt.ticker, got, tt.want)
		}
	}
}

// ── Period Tests ──

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "5y"} {
		if _, err := ParsePeriod(s); err != nil {
			t.Errorf("ParsePeriod(%q) error: %v", s, err)
		}
	}
	for _, s := range []string{"", "2d", "1w", "10y"} {
		if _, err := ParsePeriod(s); err == nil {
			t.Errorf("ParsePeriod(%q) should fail", s)
		}
	}
}

func TestPeriodDays(t *testing.T) {
	tests := map[Period]int{
		Period1D: 1, Period5D: 5, Period1M: 30, Period3M: 90,
		Period6M: 180, Period1Y: 365, Period5Y: 1825, Period("bogus"): 1,
	}
	for p, want := range tests {
		if got := p.Days(); got != want {
			t.Errorf("%s.Days() = %d, want %d", p, got, want)
		}
	}
	if Period1D.Duration() != 24*time.Hour {
		t.Errorf("1d duration: got %v", Period1D.Duration())
	}
}

// ── Series Tests ──

func TestSeriesLastAndCloses(t *testing.T) {
	var empty Series
	if _, ok := empty.Last(); ok {
		t.Error("empty series should have no last candle")
	}

	s := Series{Candles: []Candle{{Close: 1}, {Close: 2}, {Close: 3}}, Source: SourceLive}
	last, ok := s.Last()
	if !ok || last.Close != 3 {
		t.Errorf("Last: got %+v", last)
	}
	closes := s.Closes()
	if len(closes) != 3 || closes[0] != 1 || closes[2] != 3 {
		t.Errorf("Closes: got %v", closes)
	}
}

func ptr(v float64) *float64 { return &v }
