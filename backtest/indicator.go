package backtest

// RollingTrueRangeMean is the ATR analog for a single daily series: true
// range is the absolute day-over-day change, averaged over a trailing
// window. The window shrinks at the head of the series (minimum one
// observation) instead of leaving the first bars undefined; index 0 has no
// prior value and reports 0.
func RollingTrueRangeMean(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window < 1 {
		window = 1
	}
	sum := 0.0
	for i := 1; i < len(series); i++ {
		d := series[i] - series[i-1]
		if d < 0 {
			d = -d
		}
		sum += d
		n := i // true-range observations so far
		if n > window {
			old := series[i-window] - series[i-window-1]
			if old < 0 {
				old = -old
			}
			sum -= old
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// SimpleMovingAverage is a trailing mean with the same shrinking-window
// behavior at the start of the series.
func SimpleMovingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window < 1 {
		window = 1
	}
	sum := 0.0
	for i := range series {
		sum += series[i]
		n := i + 1
		if n > window {
			sum -= series[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}
