package technical

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/seenimoa/marketdata/pkg/models"
)

// makeCandles generates a steady OHLCV trend for testing.
func makeCandles(n int, basePrice float64, trend float64) []models.Candle {
	candles := make([]models.Candle, n)
	start := time.Date(2026, 1, 1, 9, 15, 0, 0, time.UTC)
	price := basePrice
	for i := 0; i < n; i++ {
		open := price
		close := open + trend
		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      open,
			High:      math.Max(open, close) + 3,
			Low:       math.Min(open, close) - 3,
			Close:     close,
			Volume:    1000000 + int64(i*10000),
		}
		price = close
	}
	return candles
}

func closesOf(values ...float64) []models.Candle {
	candles := make([]models.Candle, len(values))
	for i, v := range values {
		candles[i] = models.Candle{Open: v, High: v, Low: v, Close: v}
	}
	return candles
}

func TestComputeFullWindow(t *testing.T) {
	set := Compute(makeCandles(60, 100, 1))

	if set.SMA20 == nil || set.SMA50 == nil || set.RSI14 == nil || set.MACD == nil || set.Bollinger == nil {
		t.Fatalf("expected every indicator with 60 candles, got %+v", set)
	}
	// Closes run 101..160, so the last 20 average to 150.5.
	if *set.SMA20 != 150.5 {
		t.Errorf("SMA20 = %.2f, want 150.5", *set.SMA20)
	}
	if *set.SMA50 != 135.5 {
		t.Errorf("SMA50 = %.2f, want 135.5", *set.SMA50)
	}
	if *set.RSI14 != 100 {
		t.Errorf("RSI14 = %.2f, want 100 in a lossless uptrend", *set.RSI14)
	}
	if *set.MACD <= 0 {
		t.Errorf("expected positive MACD in uptrend, got %.4f", *set.MACD)
	}
	if set.Support == nil || set.Resistance == nil {
		t.Fatal("expected support and resistance")
	}
	if *set.Support != 111 || *set.Resistance != 160 {
		t.Errorf("support/resistance = %.2f/%.2f, want 111/160", *set.Support, *set.Resistance)
	}
}

func TestComputeIndicatorAbsence(t *testing.T) {
	set := Compute(makeCandles(16, 100, -0.5))

	if set.SMA20 != nil {
		t.Error("SMA20 should be nil below 20 closes")
	}
	if set.Bollinger != nil {
		t.Error("Bollinger should be nil below 20 closes")
	}
	if set.SMA50 != nil {
		t.Error("SMA50 should be nil below 50 closes")
	}
	if set.MACD != nil {
		t.Error("MACD should be nil below 26 closes")
	}
	if set.RSI14 == nil {
		t.Fatal("RSI14 should be computed with 16 closes")
	}
	if *set.RSI14 != 0 {
		t.Errorf("RSI14 = %.2f, want 0 in a gainless downtrend", *set.RSI14)
	}
}

func TestComputeEmpty(t *testing.T) {
	set := Compute(nil)
	if set != (models.IndicatorSet{}) {
		t.Errorf("expected empty IndicatorSet, got %+v", set)
	}
}

func TestRSIRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 15 + rng.Intn(100)
		closes := make([]float64, n)
		price := 100.0
		for i := range closes {
			price = math.Max(0.01, price+(rng.Float64()-0.5)*10)
			closes[i] = price
		}
		rsi := RSI(closes, 14)
		if rsi == nil {
			t.Fatalf("trial %d: RSI nil for %d closes", trial, n)
		}
		if *rsi < 0 || *rsi > 100 {
			t.Fatalf("trial %d: RSI %.4f out of range", trial, *rsi)
		}
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if RSI([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, 14) != nil {
		t.Error("RSI should be nil with 14 closes")
	}
}

func TestRSIUsesLastDeltas(t *testing.T) {
	// An early crash outside the 14-delta window must not affect the value.
	closes := []float64{500, 100}
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+2)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}
	rsi := RSI(closes, 14)
	// 7 gains of 2 and 7 losses of 1: RS = 2, RSI = 66.67.
	if rsi == nil || math.Abs(*rsi-200.0/3) > 1e-9 {
		t.Errorf("RSI = %v, want 66.67", rsi)
	}
}

func TestMACDDowntrend(t *testing.T) {
	closes := extractCloses(makeCandles(40, 200, -1))
	macd := MACD(closes, 12, 26)
	if macd == nil || *macd >= 0 {
		t.Errorf("expected negative MACD in downtrend, got %v", macd)
	}
}

func TestBollingerBands(t *testing.T) {
	closes := extractCloses(makeCandles(50, 100, 0.3))
	bb := BollingerBands(closes, 20, 2)
	if bb == nil {
		t.Fatal("BollingerBands returned nil")
	}
	if bb.Upper <= bb.Middle || bb.Middle <= bb.Lower {
		t.Errorf("invalid Bollinger bands: upper=%.2f, middle=%.2f, lower=%.2f",
			bb.Upper, bb.Middle, bb.Lower)
	}

	flat := BollingerBands(extractCloses(closesOf(make([]float64, 20)...)), 20, 2)
	if flat == nil || flat.Upper != flat.Lower {
		t.Errorf("flat series should collapse the bands, got %+v", flat)
	}
}

func TestBollingerPopulationStddev(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 9
		} else {
			closes[i] = 11
		}
	}
	bb := BollingerBands(closes, 20, 2)
	if bb.Middle != 10 || bb.Upper != 12 || bb.Lower != 8 {
		t.Errorf("got %+v, want 12/10/8", *bb)
	}
}

// --- Moving Average tests ---

func TestSMA(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50}
	v := SMA(data, 3)
	if v == nil {
		t.Fatal("SMA returned nil")
	}
	// (30+40+50)/3 = 40
	if *v != 40 {
		t.Errorf("expected SMA=40, got %.2f", *v)
	}
	if SMA(data, 6) != nil {
		t.Error("SMA should be nil for insufficient data")
	}
}

func TestEMA(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50, 60}
	v := EMA(data, 5)
	if v == nil {
		t.Fatal("EMA returned nil")
	}
	// Seed SMA(10..50) = 30, then 60·(1/3) + 30·(2/3) = 40.
	if math.Abs(*v-40) > 1e-9 {
		t.Errorf("expected EMA=40, got %.4f", *v)
	}
	if EMA(data[:4], 5) != nil {
		t.Error("EMA should be nil for insufficient data")
	}
}

// --- Support/Resistance tests ---

func TestSupportResistanceLocalExtrema(t *testing.T) {
	closes := []float64{10, 12, 9, 12, 14, 11, 13, 15, 12, 16}
	s, r := SupportResistance(closes, 50, 2)
	if s == nil || r == nil {
		t.Fatal("expected both levels")
	}
	// Local minima 9 and 11, local maximum 14.
	if *s != 11 {
		t.Errorf("support = %.2f, want 11", *s)
	}
	if *r != 14 {
		t.Errorf("resistance = %.2f, want 14", *r)
	}
}

func TestSupportResistanceFallsBackToRange(t *testing.T) {
	s, r := SupportResistance([]float64{5, 6, 7, 8, 9, 10}, 50, 2)
	if *s != 5 || *r != 10 {
		t.Errorf("got %.2f/%.2f, want 5/10", *s, *r)
	}

	s, r = SupportResistance(nil, 50, 2)
	if s != nil || r != nil {
		t.Error("expected nil levels for empty series")
	}
}

func TestSupportResistanceLookback(t *testing.T) {
	// A deep trough older than the lookback window is ignored.
	closes := []float64{100, 50, 100, 100, 100}
	for i := 0; i < 50; i++ {
		closes = append(closes, 200+float64(i))
	}
	s, _ := SupportResistance(closes, 50, 2)
	if *s != 200 {
		t.Errorf("support = %.2f, want 200", *s)
	}
}
