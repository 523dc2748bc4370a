package merge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/seenimoa/marketdata/pkg/models"
)

var reliance = models.Symbol{Raw: "RELIANCE.NS", Ticker: "RELIANCE.NS", Market: models.MarketEquityIN}

func record(source string, at time.Time, numbers map[models.Field]float64, texts map[models.Field]string) *models.PartialRecord {
	r := models.NewPartialRecord(source, at)
	for f, v := range numbers {
		r.Set(f, v)
	}
	for f, v := range texts {
		r.SetText(f, v)
	}
	return r
}

func TestMergePrecedence(t *testing.T) {
	now := time.Date(2026, 2, 18, 10, 0, 0, 0, time.UTC)
	a := record("nse", now, map[models.Field]float64{
		models.FieldPrice: 1458,
		models.FieldPE:    23.8,
	}, nil)
	b := record("yahoo", now.Add(time.Second), map[models.Field]float64{
		models.FieldPrice:  1460,
		models.FieldPE:     24.1,
		models.FieldEBITDA: 1.7e12,
	}, map[models.Field]string{models.FieldSector: "Energy"})

	snap := Merge(reliance, []*models.PartialRecord{a, b})

	if got := *snap.LastTradedPrice; got != 1458 {
		t.Errorf("price = %v, want 1458 from the higher-priority record", got)
	}
	if got := *snap.PERatio; got != 23.8 {
		t.Errorf("pe = %v, want 23.8", got)
	}
	if snap.EBITDA == nil || *snap.EBITDA != 1.7e12 {
		t.Errorf("ebitda = %v, want fill from lower-priority record", snap.EBITDA)
	}
	if snap.Sector == nil || *snap.Sector != "Energy" {
		t.Errorf("sector = %v, want Energy", snap.Sector)
	}
	if snap.DataQuality != models.QualityLive {
		t.Errorf("quality = %s, want live", snap.DataQuality)
	}
	if len(snap.Sources) != 2 || snap.Sources[0] != "nse" || snap.Sources[1] != "yahoo" {
		t.Errorf("sources = %v, want [nse yahoo]", snap.Sources)
	}
	if !snap.FetchedAt.Equal(now.Add(time.Second)) {
		t.Errorf("fetchedAt = %v, want newest record time", snap.FetchedAt)
	}
}

func TestMergeSkipsFailedRecords(t *testing.T) {
	b := record("yahoo", time.Now(), map[models.Field]float64{models.FieldPE: 24.1}, nil)
	snap := Merge(reliance, []*models.PartialRecord{nil, b, nil})

	if snap.LastTradedPrice != nil {
		t.Errorf("price = %v, want nil", *snap.LastTradedPrice)
	}
	if snap.PERatio == nil || *snap.PERatio != 24.1 {
		t.Errorf("pe = %v, want 24.1", snap.PERatio)
	}
	if snap.DataQuality != models.QualityUnavailable {
		t.Errorf("quality = %s, want unavailable without a price", snap.DataQuality)
	}
	if len(snap.Sources) != 1 || snap.Sources[0] != "yahoo" {
		t.Errorf("sources = %v, want [yahoo]", snap.Sources)
	}
}

func TestMergeAbsentIsNotZero(t *testing.T) {
	a := record("nse", time.Now(), map[models.Field]float64{models.FieldPrice: 100}, nil)
	snap := Merge(reliance, []*models.PartialRecord{a})
	if snap.ROE != nil {
		t.Errorf("roe = %v, want nil", *snap.ROE)
	}
	// An explicit zero from a source is kept.
	z := record("nse", time.Now(), map[models.Field]float64{models.FieldPrice: 100, models.FieldDividendYield: 0}, nil)
	snap = Merge(reliance, []*models.PartialRecord{z})
	if snap.DividendYield == nil || *snap.DividendYield != 0 {
		t.Errorf("dividend yield = %v, want explicit 0", snap.DividendYield)
	}
}

func TestMergeMarginAliases(t *testing.T) {
	tests := []struct {
		name   string
		fields map[models.Field]float64
		net    float64
		profit float64
	}{
		{"profit only", map[models.Field]float64{models.FieldProfitMargin: 12.5}, 12.5, 12.5},
		{"net only", map[models.Field]float64{models.FieldNetMargin: 9}, 9, 9},
		{"both", map[models.Field]float64{models.FieldNetMargin: 9, models.FieldProfitMargin: 10}, 9, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Merge(reliance, []*models.PartialRecord{record("yahoo", time.Now(), tt.fields, nil)})
			if snap.NetMargin == nil || *snap.NetMargin != tt.net {
				t.Errorf("net margin = %v, want %v", snap.NetMargin, tt.net)
			}
			if snap.ProfitMargin == nil || *snap.ProfitMargin != tt.profit {
				t.Errorf("profit margin = %v, want %v", snap.ProfitMargin, tt.profit)
			}
		})
	}
}

func TestMergeDerivedFields(t *testing.T) {
	a := record("screener", time.Now(), map[models.Field]float64{
		models.FieldPrice:         110,
		models.FieldPreviousClose: 100,
		models.FieldBookValue:     55,
	}, nil)
	snap := Merge(reliance, []*models.PartialRecord{a})

	if snap.OneDayChange == nil || *snap.OneDayChange != 10 {
		t.Errorf("change = %v, want 10", snap.OneDayChange)
	}
	if snap.OneDayChangePercent == nil || *snap.OneDayChangePercent != 10 {
		t.Errorf("change%% = %v, want 10", snap.OneDayChangePercent)
	}
	if snap.PBRatio == nil || *snap.PBRatio != 2 {
		t.Errorf("pb = %v, want 2", snap.PBRatio)
	}

	// Source-supplied values win over derivation.
	b := record("nse", time.Now(), map[models.Field]float64{
		models.FieldPrice:         110,
		models.FieldPreviousClose: 100,
		models.FieldChange:        9.5,
	}, nil)
	snap = Merge(reliance, []*models.PartialRecord{b})
	if *snap.OneDayChange != 9.5 {
		t.Errorf("change = %v, want source value 9.5", *snap.OneDayChange)
	}
	if *snap.OneDayChangePercent != 9.5 {
		t.Errorf("change%% = %v, want 9.5 derived from source change", *snap.OneDayChangePercent)
	}
}

func TestMergeNameFallback(t *testing.T) {
	snap := Merge(reliance, nil)
	if snap.Name == nil || *snap.Name != "RELIANCE" {
		t.Errorf("name = %v, want RELIANCE", snap.Name)
	}

	named := record("nse", time.Now(), nil, map[models.Field]string{models.FieldName: "Reliance Industries Limited"})
	snap = Merge(reliance, []*models.PartialRecord{named})
	if *snap.Name != "Reliance Industries Limited" {
		t.Errorf("name = %q, want source name", *snap.Name)
	}
}

func TestMergeDeterministic(t *testing.T) {
	at := time.Date(2026, 2, 18, 10, 0, 0, 0, time.UTC)
	recs := []*models.PartialRecord{
		record("nse", at, map[models.Field]float64{models.FieldPrice: 1458, models.FieldPreviousClose: 1440}, nil),
		record("yahoo", at, map[models.Field]float64{models.FieldPE: 24.1, models.FieldROE: 8.9}, map[models.Field]string{models.FieldIndustry: "Refineries"}),
		record("screener", at, map[models.Field]float64{models.FieldPromoters: 50.3}, nil),
	}

	first, _ := json.Marshal(Merge(reliance, recs))
	second, _ := json.Marshal(Merge(reliance, recs))
	if string(first) != string(second) {
		t.Errorf("merge not deterministic:\n%s\n%s", first, second)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1,234.56", 1234.56, true},
		{"₹ 1,458", 1458, true},
		{"12.5%", 12.5, true},
		{"19,27,345 Cr.", 19273450000000, true},
		{"2.5 Cr", 25000000, true},
		{"3 Lakh", 300000, true},
		{"4L", 400000, true},
		{"$3T", 3e12, true},
		{"1.5B", 1.5e9, true},
		{"-3.2", -3.2, true},
		{"", 0, false},
		{"-", 0, false},
		{"N/A", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}
