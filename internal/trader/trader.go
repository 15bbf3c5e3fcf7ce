package trader

import (
	"fmt"
	"math/rand"

	"marketsim/internal/domain"
	"marketsim/internal/indicator"
)

const (
	// windowCapacity bounds the private rolling price window.
	windowCapacity = 20

	// minWindowSamples is the abstain threshold: no strategy decides
	// before this many observations.
	minWindowSamples = 5

	// RSI thresholds.
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// OrderIntent is a trader's decision for one step: at most one limit
// order at the observed price, or nothing.
type OrderIntent struct {
	TraderID  int
	Side      domain.Side
	Price     int64
	Quantity  int64
	Timestamp float64
}

// Trader owns a private ledger and rolling price window. All state is
// private to the trader: the decide phase runs traders concurrently
// without locking because no trader ever reads another's fields.
type Trader struct {
	id       int
	strategy Strategy

	cash             int64 // cents
	holdings         int64
	reservedCash     int64 // committed to resting buy orders
	reservedHoldings int64 // committed to resting sell orders

	window []int64 // rolling price window, newest last

	tradesExecuted int
	realizedProfit int64 // cents
	costBasis      int64 // total cost of current holdings, cents

	lastIndicators indicator.Snapshot
	prevMACDHist   float64
	prevMACDValid  bool

	rng *rand.Rand
}

// Snapshot is a read-only copy of a trader's ledger for observers.
type Snapshot struct {
	ID               int     `json:"id"`
	Strategy         string  `json:"strategy"`
	Cash             int64   `json:"cash"`
	Holdings         int64   `json:"holdings"`
	ReservedCash     int64   `json:"reserved_cash"`
	ReservedHoldings int64   `json:"reserved_holdings"`
	TradesExecuted   int     `json:"trades_executed"`
	RealizedProfit   int64   `json:"realized_profit"`
	NetWorth         int64   `json:"net_worth"`
	LastRSI          float64 `json:"last_rsi,omitempty"`
}

// New creates a trader. The seed must already be derived from the run
// seed and the trader's index so decide-phase scheduling cannot change
// the random stream (never share a generator across traders).
func New(id int, strategy Strategy, initialCash int64, seed int64) *Trader {
	return &Trader{
		id:       id,
		strategy: strategy,
		cash:     initialCash,
		window:   make([]int64, 0, windowCapacity),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Endow grants an initial share position carried at the given price.
// Without an endowment every book starts one-sided: nobody can post an
// ask until some bid has filled, and no bid can ever fill. Call it
// before the first decision.
func (t *Trader) Endow(shares, price int64) {
	t.holdings += shares
	t.costBasis += shares * price
}

// ID returns the trader's identifier.
func (t *Trader) ID() int { return t.id }

// Strategy returns the trader's strategy variant.
func (t *Trader) Strategy() Strategy { return t.strategy }

// Decide observes the step's price, updates the rolling window, and
// returns an order intent or nil. Indicator-driven strategies read the
// shared market history snapshot: the 20-slot private window is too
// short to carry a 26-period EMA.
func (t *Trader) Decide(price int64, ind indicator.Snapshot, timestamp float64) *OrderIntent {
	t.window = append(t.window, price)
	if len(t.window) > windowCapacity {
		t.window = t.window[1:]
	}
	t.lastIndicators = ind

	defer func() {
		// Remember the histogram across steps for sign-flip detection,
		// whether or not this step produced a signal.
		if ind.MACDValid {
			t.prevMACDHist = ind.MACDHistogram
			t.prevMACDValid = true
		}
	}()

	if t.strategy == StrategyHuman {
		return nil
	}
	if len(t.window) < minWindowSamples {
		return nil
	}

	var shouldBuy, shouldSell bool

	switch t.strategy {
	case StrategyMomentum:
		shouldBuy, shouldSell = t.momentumSignal()
	case StrategyMeanReversion:
		shouldBuy, shouldSell = t.meanReversionSignal(price, 0.95, 1.05)
	case StrategyRandom:
		draw := t.rng.Intn(11)
		shouldBuy = draw == 1
		shouldSell = draw == 2
	case StrategyRiskAverse:
		shouldBuy, shouldSell = t.meanReversionSignal(price, 0.90, 1.10)
	case StrategyHighRisk:
		shouldBuy, shouldSell = t.highRiskSignal(price)
	case StrategyRSI:
		shouldBuy, shouldSell = rsiSignal(ind)
	case StrategyMACD:
		shouldBuy, shouldSell = t.macdSignal(ind)
	case StrategyBollinger:
		shouldBuy, shouldSell = bollingerSignal(price, ind)
	case StrategyMultiIndicator:
		shouldBuy, shouldSell = t.multiSignal(price, ind)
	}

	if !shouldBuy && !shouldSell {
		return nil
	}

	side := domain.SideSell
	if shouldBuy {
		side = domain.SideBuy
	}
	qty := t.sizePosition(side, price)
	if qty <= 0 {
		return nil
	}
	return &OrderIntent{
		TraderID:  t.id,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Timestamp: timestamp,
	}
}

// momentumSignal compares the mean of the newer half of the window
// against the older half.
func (t *Trader) momentumSignal() (buy, sell bool) {
	half := len(t.window) / 2
	older := mean(t.window[:half])
	newer := mean(t.window[half:])
	return newer > older*1.02, newer < older*0.98
}

// meanReversionSignal buys below the window mean and sells above it,
// with thresholds set per strategy.
func (t *Trader) meanReversionSignal(price int64, buyFactor, sellFactor float64) (buy, sell bool) {
	m := mean(t.window)
	return float64(price) < m*buyFactor, float64(price) > m*sellFactor
}

// highRiskSignal trades aggressively on the trend of the last three
// samples with tight 1% thresholds.
func (t *Trader) highRiskSignal(price int64) (buy, sell bool) {
	n := len(t.window)
	recent := mean(t.window[n-3:])
	return float64(price) > recent*1.01, float64(price) < recent*0.99
}

func rsiSignal(ind indicator.Snapshot) (buy, sell bool) {
	if !ind.RSIValid {
		return false, false
	}
	return ind.RSI < rsiOversold, ind.RSI > rsiOverbought
}

// macdSignal fires on a histogram sign flip relative to the previous
// step's snapshot.
func (t *Trader) macdSignal(ind indicator.Snapshot) (buy, sell bool) {
	if !ind.MACDValid || !t.prevMACDValid {
		return false, false
	}
	buy = t.prevMACDHist <= 0 && ind.MACDHistogram > 0
	sell = t.prevMACDHist >= 0 && ind.MACDHistogram < 0
	return buy, sell
}

func bollingerSignal(price int64, ind indicator.Snapshot) (buy, sell bool) {
	if !ind.BollingerValid {
		return false, false
	}
	return float64(price) <= ind.BollingerLower, float64(price) >= ind.BollingerUpper
}

// multiSignal requires agreement from at least two of the three
// indicator sub-signals before acting.
func (t *Trader) multiSignal(price int64, ind indicator.Snapshot) (buy, sell bool) {
	buyVotes, sellVotes := 0, 0
	tally := func(b, s bool) {
		if b {
			buyVotes++
		}
		if s {
			sellVotes++
		}
	}
	tally(rsiSignal(ind))
	tally(t.macdSignal(ind))
	tally(bollingerSignal(price, ind))
	return buyVotes >= 2, sellVotes >= 2
}

// sizePosition clamps the strategy's lot so a buy never costs more than
// available cash and a sell never exceeds available holdings. A clamp
// to zero drops the intent.
func (t *Trader) sizePosition(side domain.Side, price int64) int64 {
	lot := t.strategy.LotSize()
	if side == domain.SideBuy {
		maxAffordable := t.AvailableCash() / price
		if maxAffordable < lot {
			return maxAffordable
		}
		return lot
	}
	if avail := t.AvailableHoldings(); avail < lot {
		return avail
	}
	return lot
}

// Reserve commits ledger balance to an order about to rest on the book,
// so orders surviving across steps can never drive the ledger negative.
func (t *Trader) Reserve(side domain.Side, price, qty int64) error {
	if side == domain.SideBuy {
		cost := price * qty
		if t.AvailableCash() < cost {
			return domain.ErrInsufficientBalance
		}
		t.reservedCash += cost
		return nil
	}
	if t.AvailableHoldings() < qty {
		return domain.ErrInsufficientHoldings
	}
	t.reservedHoldings += qty
	return nil
}

// Release returns the reservation held for an expired order's remaining
// quantity.
func (t *Trader) Release(side domain.Side, price, qty int64) {
	if side == domain.SideBuy {
		t.reservedCash -= price * qty
		if t.reservedCash < 0 {
			panic(fmt.Sprintf("trader %d: reserved cash went negative", t.id))
		}
		return
	}
	t.reservedHoldings -= qty
	if t.reservedHoldings < 0 {
		panic(fmt.Sprintf("trader %d: reserved holdings went negative", t.id))
	}
}

// Settle applies one fill to the ledger. execPrice is the trade price;
// limitPrice is the order's limit, needed to release the reservation
// taken at submission. The matching engine only fills up to an order's
// remaining quantity against reserved balances, so a violation here is
// a programming error, not a recoverable condition.
func (t *Trader) Settle(side domain.Side, execPrice, limitPrice, qty int64) {
	if side == domain.SideBuy {
		cost := execPrice * qty
		t.cash -= cost
		t.reservedCash -= limitPrice * qty
		t.holdings += qty
		t.costBasis += cost
	} else {
		if t.holdings < qty {
			panic(fmt.Sprintf("trader %d: settle would drive holdings negative (%d < %d)", t.id, t.holdings, qty))
		}
		avgCost := t.costBasis / t.holdings
		t.realizedProfit += (execPrice - avgCost) * qty
		t.costBasis -= avgCost * qty
		t.cash += execPrice * qty
		t.holdings -= qty
		t.reservedHoldings -= qty
	}
	if t.cash < 0 || t.holdings < 0 || t.reservedCash < 0 || t.reservedHoldings < 0 {
		panic(fmt.Sprintf("trader %d: ledger invariant violated after settle (cash=%d holdings=%d)", t.id, t.cash, t.holdings))
	}
	t.tradesExecuted++
}

// AvailableCash returns cash not committed to resting buy orders.
func (t *Trader) AvailableCash() int64 { return t.cash - t.reservedCash }

// AvailableHoldings returns holdings not committed to resting sells.
func (t *Trader) AvailableHoldings() int64 { return t.holdings - t.reservedHoldings }

// Cash returns the total cash balance in cents.
func (t *Trader) Cash() int64 { return t.cash }

// Holdings returns the total asset quantity held.
func (t *Trader) Holdings() int64 { return t.holdings }

// NetWorth values the ledger at the given price.
func (t *Trader) NetWorth(price int64) int64 {
	return t.cash + t.holdings*price
}

// Snapshot copies the ledger for read-only consumers.
func (t *Trader) Snapshot(price int64) Snapshot {
	s := Snapshot{
		ID:               t.id,
		Strategy:         t.strategy.String(),
		Cash:             t.cash,
		Holdings:         t.holdings,
		ReservedCash:     t.reservedCash,
		ReservedHoldings: t.reservedHoldings,
		TradesExecuted:   t.tradesExecuted,
		RealizedProfit:   t.realizedProfit,
		NetWorth:         t.NetWorth(price),
	}
	if t.lastIndicators.RSIValid {
		s.LastRSI = t.lastIndicators.RSI
	}
	return s
}

func mean(prices []int64) float64 {
	var sum int64
	for _, p := range prices {
		sum += p
	}
	return float64(sum) / float64(len(prices))
}
