package technical

// SMA returns the arithmetic mean of the last period values, or nil when
// fewer than period values are available.
func SMA(data []float64, period int) *float64 {
	n := len(data)
	if period <= 0 || n < period {
		return nil
	}
	v := avg(data[n-period:])
	return &v
}

// EMA returns the most recent Exponential Moving Average, seeded with the
// SMA of the first period values. Nil when fewer than period values exist.
func EMA(data []float64, period int) *float64 {
	if period <= 0 || len(data) < period {
		return nil
	}
	vals := emaCalc(data, period)
	v := vals[len(vals)-1]
	return &v
}

func emaCalc(data []float64, period int) []float64 {
	n := len(data)
	if n == 0 || period <= 0 {
		return make([]float64, n)
	}

	ema := make([]float64, n)
	k := 2.0 / float64(period+1)

	// Seed with SMA of first `period` values.
	if n < period {
		return ema
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		ema[i] = data[i]*k + ema[i-1]*(1-k)
	}

	return ema
}
