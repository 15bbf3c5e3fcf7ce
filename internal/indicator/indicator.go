package indicator

import (
	"math"

	"marketsim/internal/domain"
)

// Default indicator parameters. These match the standard textbook settings.
const (
	DefaultRSIPeriod       = 14
	DefaultMACDFast        = 12
	DefaultMACDSlow        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0
)

// SMA returns the arithmetic mean of the last period prices.
// It returns domain.ErrInsufficientHistory when fewer than period
// samples exist; callers must treat that as "no signal", not zero.
func SMA(prices []int64, period int) (float64, error) {
	if period <= 0 || len(prices) < period {
		return 0, domain.ErrInsufficientHistory
	}
	var sum int64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return float64(sum) / float64(period), nil
}

// EMA returns the exponential moving average with smoothing factor
// 2/(period+1), seeded by the SMA of the first period samples.
func EMA(prices []int64, period int) (float64, error) {
	if period <= 0 || len(prices) < period {
		return 0, domain.ErrInsufficientHistory
	}
	seed, err := SMA(prices[:period], period)
	if err != nil {
		return 0, err
	}
	alpha := 2.0 / (float64(period) + 1.0)
	ema := seed
	for _, p := range prices[period:] {
		ema = alpha*float64(p) + (1.0-alpha)*ema
	}
	return ema, nil
}

// RSI computes the relative strength index: average gain and average
// loss over the deltas of the last period samples, then
// RSI = 100 - 100/(1 + avgGain/avgLoss). When avgLoss is zero the
// index saturates at 100. A period-sample window carries period-1
// deltas, so RSI(14) is computable on exactly 14 samples.
func RSI(prices []int64, period int) (float64, error) {
	if period <= 1 || len(prices) < period {
		return 0, domain.ErrInsufficientHistory
	}
	window := prices[len(prices)-period:]
	var gain, loss float64
	for i := 1; i < len(window); i++ {
		delta := float64(window[i] - window[i-1])
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	deltas := float64(len(window) - 1)
	avgGain := gain / deltas
	avgLoss := loss / deltas
	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// MACD returns the MACD line (fast EMA − slow EMA), the signal line
// (EMA of the MACD line series) and the histogram (line − signal).
func MACD(prices []int64, fast, slow, signal int) (line, signalLine, histogram float64, err error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return 0, 0, 0, domain.ErrInsufficientHistory
	}
	// The signal line needs a MACD series of at least signal points,
	// each of which needs slow samples.
	if len(prices) < slow+signal-1 {
		return 0, 0, 0, domain.ErrInsufficientHistory
	}

	series := make([]float64, 0, signal)
	for i := len(prices) - signal + 1; i <= len(prices); i++ {
		fastEMA, err := EMA(prices[:i], fast)
		if err != nil {
			return 0, 0, 0, err
		}
		slowEMA, err := EMA(prices[:i], slow)
		if err != nil {
			return 0, 0, 0, err
		}
		series = append(series, fastEMA-slowEMA)
	}

	line = series[len(series)-1]
	signalLine = emaFloat(series, signal)
	return line, signalLine, line - signalLine, nil
}

// BollingerBands returns (upper, middle, lower) where middle is the
// period SMA and the bands sit k standard deviations away from it.
func BollingerBands(prices []int64, period int, k float64) (upper, middle, lower float64, err error) {
	middle, err = SMA(prices, period)
	if err != nil {
		return 0, 0, 0, err
	}
	window := prices[len(prices)-period:]
	var sqSum float64
	for _, p := range window {
		d := float64(p) - middle
		sqSum += d * d
	}
	stddev := math.Sqrt(sqSum / float64(period))
	return middle + k*stddev, middle, middle - k*stddev, nil
}

// StdDev returns the population standard deviation of the full slice.
// Used for price-history volatility statistics.
func StdDev(prices []int64) float64 {
	if len(prices) < 2 {
		return 0
	}
	var sum int64
	for _, p := range prices {
		sum += p
	}
	mean := float64(sum) / float64(len(prices))
	var sqSum float64
	for _, p := range prices {
		d := float64(p) - mean
		sqSum += d * d
	}
	return math.Sqrt(sqSum / float64(len(prices)))
}

// emaFloat seeds with the plain mean of the series and smooths forward.
func emaFloat(series []float64, period int) float64 {
	if len(series) <= period {
		var sum float64
		for _, v := range series {
			sum += v
		}
		return sum / float64(len(series))
	}
	var sum float64
	for _, v := range series[:period] {
		sum += v
	}
	alpha := 2.0 / (float64(period) + 1.0)
	ema := sum / float64(period)
	for _, v := range series[period:] {
		ema = alpha*v + (1.0-alpha)*ema
	}
	return ema
}
