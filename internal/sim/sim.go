package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"marketsim/internal/config"
	"marketsim/internal/domain"
	"marketsim/internal/engine"
	"marketsim/internal/indicator"
	"marketsim/internal/market"
	"marketsim/internal/store"
	"marketsim/internal/trader"
)

// Simulation owns one fully isolated market instance: the price
// process, the order book, the traders, and the trade log. Nothing is
// shared across Simulation instances, which is what makes ensemble
// fan-out safe with no synchronization beyond gathering summaries.
//
// One RWMutex serializes Step against the read accessors, so no
// consumer ever observes a partially applied step.
type Simulation struct {
	mu sync.RWMutex

	cfg     *config.Config
	runID   string
	market  *market.Market
	book    *engine.OrderBook
	traders []*trader.Trader
	trades  *store.TradeLog

	// openOrders indexes resting orders by book ID so settlements can
	// release reservations at each order's limit price. Entries are
	// pruned as orders leave the open state.
	openOrders map[uint64]*domain.Order

	// injected holds externally placed orders awaiting the next step's
	// submit phase. Their reservations are taken at injection time.
	injected []*domain.Order

	currentTime float64
	stepCount   int
	workers     int
}

// New constructs a simulation from the validated config. Runs are
// deterministic for a given seed: the market noise stream and every
// trader's generator derive from it, and the Decide phase merges
// intents by trader index regardless of worker scheduling.
func New(cfg *config.Config) *Simulation {
	seed := cfg.Simulation.Seed

	n := cfg.Simulation.Traders
	traders := make([]*trader.Trader, 0, n+1)
	for i := 0; i < n; i++ {
		strat := trader.AutoStrategies[i%len(trader.AutoStrategies)]
		traders = append(traders, trader.New(i, strat, cfg.InitialCashCents, seed+int64(i)))
	}
	if cfg.Simulation.HumanTrader {
		traders = append(traders, trader.New(n, trader.StrategyHuman, cfg.InitialCashCents, seed+int64(n)))
	}
	for _, t := range traders {
		t.Endow(cfg.Simulation.InitialHoldings, cfg.InitialPriceCents)
	}

	workers := cfg.Simulation.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Simulation{
		cfg:        cfg,
		runID:      uuid.New().String(),
		market:     market.New(cfg.InitialPriceCents, seed),
		book:       engine.NewOrderBook(),
		traders:    traders,
		trades:     store.NewTradeLog(),
		openOrders: make(map[uint64]*domain.Order),
		workers:    workers,
	}
}

// Step advances the simulation one discrete time unit:
// snapshot → decide (parallel) → submit (serialized) → match →
// settle → market update → periodic maintenance.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentTime += s.cfg.Simulation.StepSize
	s.stepCount++

	// Phase 1: snapshot. Every trader observes the same price, history,
	// and indicator values this step.
	price := s.market.CurrentPrice()
	history := s.market.History()
	ind := indicator.Compute(history)

	// Phase 2: decide. Each trader touches only its own state, so the
	// phase parallelizes freely; results land in a slice indexed by
	// trader so the merge order is independent of worker count.
	intents := s.decide(price, ind)

	// Phase 3–4: submit, serialized in merge order. Injected orders go
	// first; they were validated and reserved at injection time.
	var buyVolume, sellVolume int64
	for _, order := range s.injected {
		s.book.Submit(order)
		s.openOrders[order.ID] = order
		if order.Side == domain.SideBuy {
			buyVolume += order.Quantity
		} else {
			sellVolume += order.Quantity
		}
	}
	s.injected = s.injected[:0]

	for _, intent := range intents {
		if intent == nil {
			continue
		}
		t := s.traders[intent.TraderID]
		// Intents are sized against available balances during Decide,
		// but resting orders from prior steps hold reservations too, so
		// re-check and degrade to nothing rather than fail the step.
		if err := t.Reserve(intent.Side, intent.Price, intent.Quantity); err != nil {
			continue
		}
		order := &domain.Order{
			TraderID:  intent.TraderID,
			Side:      intent.Side,
			Price:     intent.Price,
			Quantity:  intent.Quantity,
			Timestamp: intent.Timestamp,
		}
		s.book.Submit(order)
		s.openOrders[order.ID] = order
		if order.Side == domain.SideBuy {
			buyVolume += order.Quantity
		} else {
			sellVolume += order.Quantity
		}
	}

	// Phase 5: match once against everything resting.
	trades := s.book.Match()
	s.trades.Append(trades...)

	// Phase 6: settle.
	s.settle(trades)

	// Phase 7: market update from this step's aggregate order flow.
	s.market.UpdatePrice(buyVolume, sellVolume)

	// Phase 8: periodic maintenance on a fixed cadence.
	if s.stepCount%s.cfg.Simulation.CleanupInterval == 0 {
		s.expireAndSweep()
	}
}

// decide runs the parallel decision phase over a bounded worker pool.
func (s *Simulation) decide(price int64, ind indicator.Snapshot) []*trader.OrderIntent {
	intents := make([]*trader.OrderIntent, len(s.traders))

	workers := s.workers
	if workers > len(s.traders) {
		workers = len(s.traders)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				intents[i] = s.traders[i].Decide(price, ind, s.currentTime)
			}
		}()
	}
	for i := range s.traders {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return intents
}

// settlement is one ledger mutation from one trade, for one side.
type settlement struct {
	side       domain.Side
	execPrice  int64
	limitPrice int64
	quantity   int64
}

// settle applies the step's trades to the traders' ledgers. Trades are
// grouped per trader and groups run concurrently; within a group,
// settlements apply in trade-ID order because the input slice is
// already ordered by execution.
func (s *Simulation) settle(trades []domain.ExecutedTrade) {
	if len(trades) == 0 {
		return
	}

	groups := make(map[int][]settlement)
	for _, tr := range trades {
		buyOrder := s.openOrders[tr.BuyOrderID]
		groups[tr.BuyerID] = append(groups[tr.BuyerID], settlement{
			side:       domain.SideBuy,
			execPrice:  tr.Price,
			limitPrice: buyOrder.Price,
			quantity:   tr.Quantity,
		})
		groups[tr.SellerID] = append(groups[tr.SellerID], settlement{
			side:       domain.SideSell,
			execPrice:  tr.Price,
			limitPrice: tr.Price,
			quantity:   tr.Quantity,
		})
	}

	var wg sync.WaitGroup
	wg.Add(len(groups))
	for traderID, ops := range groups {
		go func(t *trader.Trader, ops []settlement) {
			defer wg.Done()
			for _, op := range ops {
				t.Settle(op.side, op.execPrice, op.limitPrice, op.quantity)
			}
		}(s.traders[traderID], ops)
	}
	wg.Wait()

	// Prune index entries for orders that left the open state.
	for _, tr := range trades {
		for _, id := range [2]uint64{tr.BuyOrderID, tr.SellOrderID} {
			if o, ok := s.openOrders[id]; ok && !o.IsOpen() {
				delete(s.openOrders, id)
			}
		}
	}
}

// expireAndSweep cancels resting orders past their TTL, releases the
// ledger reservations backing their unfilled remainders, and sweeps
// closed orders out of the book.
func (s *Simulation) expireAndSweep() {
	ttl := float64(s.cfg.Simulation.OrderTTLSteps) * s.cfg.Simulation.StepSize
	cutoff := s.currentTime - ttl

	for _, order := range s.book.ExpireOlderThan(cutoff) {
		s.traders[order.TraderID].Release(order.Side, order.Price, order.Remaining())
		delete(s.openOrders, order.ID)
	}
	s.book.CleanupFilledOrders()
}

// RunHeadless advances the simulation the given number of steps with no
// rendering and returns the summary. This is the ensemble entry point.
func (s *Simulation) RunHeadless(steps int) SummaryStats {
	for i := 0; i < steps; i++ {
		s.Step()
	}
	return s.Stats()
}

// Run is RunHeadless with cooperative cancellation between steps; no
// in-flight step is ever interrupted mid-phase.
func (s *Simulation) Run(ctx context.Context, steps int) (SummaryStats, error) {
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return s.Stats(), ctx.Err()
		default:
		}
		s.Step()
	}
	return s.Stats(), nil
}

// InjectOrder places an order on behalf of an external actor, outside
// the decide phase. It is validated against the trader's available
// balances before acceptance; accepted orders reserve immediately and
// enter the book at the head of the next step's submit phase.
func (s *Simulation) InjectOrder(traderID int, side domain.Side, price, quantity int64, timestamp float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := &domain.Order{
		TraderID:  traderID,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Timestamp: timestamp,
	}
	if err := order.Validate(); err != nil {
		return err
	}
	if traderID < 0 || traderID >= len(s.traders) {
		return domain.ErrTraderNotFound
	}
	if err := s.traders[traderID].Reserve(side, price, quantity); err != nil {
		return err
	}
	s.injected = append(s.injected, order)
	return nil
}
