package indicator

import "sync"

// Snapshot holds one step's indicator values computed against a shared
// price-history slice. A false Valid flag means the history was too
// short for that indicator; consumers must treat it as "no signal".
type Snapshot struct {
	SMA      float64
	SMAValid bool

	EMA      float64
	EMAValid bool

	RSI      float64
	RSIValid bool

	MACDLine      float64
	MACDSignal    float64
	MACDHistogram float64
	MACDValid     bool

	BollingerUpper  float64
	BollingerMiddle float64
	BollingerLower  float64
	BollingerValid  bool
}

// Compute evaluates all five indicators concurrently against the same
// read-only price slice. The indicators share no mutable state, so this
// is the one part of the pipeline that parallelizes without locking;
// each goroutine writes a disjoint set of Snapshot fields.
func Compute(prices []int64) Snapshot {
	var snap Snapshot
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		v, err := SMA(prices, DefaultBollingerPeriod)
		snap.SMA, snap.SMAValid = v, err == nil
	}()
	go func() {
		defer wg.Done()
		v, err := EMA(prices, DefaultBollingerPeriod)
		snap.EMA, snap.EMAValid = v, err == nil
	}()
	go func() {
		defer wg.Done()
		v, err := RSI(prices, DefaultRSIPeriod)
		snap.RSI, snap.RSIValid = v, err == nil
	}()
	go func() {
		defer wg.Done()
		line, sig, hist, err := MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
		snap.MACDLine, snap.MACDSignal, snap.MACDHistogram = line, sig, hist
		snap.MACDValid = err == nil
	}()
	go func() {
		defer wg.Done()
		up, mid, low, err := BollingerBands(prices, DefaultBollingerPeriod, DefaultBollingerK)
		snap.BollingerUpper, snap.BollingerMiddle, snap.BollingerLower = up, mid, low
		snap.BollingerValid = err == nil
	}()

	wg.Wait()
	return snap
}
