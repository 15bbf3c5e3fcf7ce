package sim

import (
	"sync"

	"marketsim/internal/config"
)

// RunEnsemble executes one independent simulation per seed and returns
// the summaries in seed order. Each run gets its own config copy, so
// runs share nothing and the worker count only affects wall time, never
// any run's outcome.
func RunEnsemble(cfg *config.Config, seeds []int64, workers int) []SummaryStats {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(seeds) {
		workers = len(seeds)
	}

	steps := cfg.Steps()
	results := make([]SummaryStats, len(seeds))

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				runCfg := *cfg
				runCfg.Simulation.Seed = seeds[i]
				results[i] = New(&runCfg).RunHeadless(steps)
			}
		}()
	}
	for i := range seeds {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}
