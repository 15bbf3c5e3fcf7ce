package market

import (
	"math/rand"
	"sync"
)

const (
	// HistoryCapacity bounds the price history; the oldest sample is
	// evicted once the window is full.
	HistoryCapacity = 1000

	// pressureCoefficient converts net order-flow pressure into a price
	// change, in cents per unit of pressure.
	pressureCoefficient = 10.0

	// noiseRange bounds the uniform noise term, in cents.
	noiseRange = 50.0

	// pressureDecay dissipates accumulated pressure each step so it
	// does not grow without bound.
	pressureDecay = 0.8

	// Price band relative to the base price.
	minPriceFactor = 0.2
	maxPriceFactor = 3.0
)

// Market owns the stochastic price process. It aggregates per-step
// buy/sell pressure into a bounded, noisy price update and maintains
// the shared price history. It knows nothing about individual traders
// or orders.
type Market struct {
	mu sync.RWMutex

	currentPrice int64 // cents
	basePrice    int64 // cents

	history []int64 // bounded FIFO, newest last

	buyPressure  int64
	sellPressure int64

	rng *rand.Rand
}

// New creates a market at the given initial price (cents). The RNG is
// seeded from the run seed so the noise stream is reproducible and
// never shared with trader generators.
func New(initialPrice int64, seed int64) *Market {
	m := &Market{
		currentPrice: initialPrice,
		basePrice:    initialPrice,
		history:      make([]int64, 0, HistoryCapacity),
		rng:          rand.New(rand.NewSource(seed)),
	}
	m.history = append(m.history, initialPrice)
	return m
}

// UpdatePrice accumulates the step's aggregate buy/sell volume into the
// pressure state, applies a bounded noisy price change, records the new
// price in the history, and decays both pressure accumulators.
func (m *Market) UpdatePrice(buyVolume, sellVolume int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buyPressure += buyVolume
	m.sellPressure += sellVolume

	pressureDiff := float64(m.buyPressure-m.sellPressure) * pressureCoefficient
	noise := (m.rng.Float64() - 0.5) * 2 * noiseRange

	m.currentPrice += int64(pressureDiff + noise)

	// Clamp to the [0.2, 3.0] × base band.
	min := int64(float64(m.basePrice) * minPriceFactor)
	max := int64(float64(m.basePrice) * maxPriceFactor)
	if m.currentPrice < min {
		m.currentPrice = min
	}
	if m.currentPrice > max {
		m.currentPrice = max
	}

	m.history = append(m.history, m.currentPrice)
	if len(m.history) > HistoryCapacity {
		m.history = m.history[1:]
	}

	m.buyPressure = int64(float64(m.buyPressure) * pressureDecay)
	m.sellPressure = int64(float64(m.sellPressure) * pressureDecay)
}

// CurrentPrice returns the latest price in cents.
func (m *Market) CurrentPrice() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentPrice
}

// BasePrice returns the price the band is anchored to.
func (m *Market) BasePrice() int64 {
	return m.basePrice
}

// History returns a copy of the full bounded price history, oldest first.
func (m *Market) History() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, len(m.history))
	copy(out, m.history)
	return out
}

// Recent returns a copy of the last n history points (or fewer when the
// history is shorter).
func (m *Market) Recent(n int) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n >= len(m.history) {
		n = len(m.history)
	}
	out := make([]int64, n)
	copy(out, m.history[len(m.history)-n:])
	return out
}

// Pressures returns the current buy and sell pressure accumulators.
func (m *Market) Pressures() (buy, sell int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buyPressure, m.sellPressure
}
