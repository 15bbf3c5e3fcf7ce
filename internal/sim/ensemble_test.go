package sim

import (
	"testing"

	"marketsim/internal/config"
)

func TestRunEnsembleReturnsResultInSeedOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.DurationSeconds = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	seeds := []int64{3, 1, 2}
	results := RunEnsemble(cfg, seeds, 2)

	if len(results) != len(seeds) {
		t.Fatalf("got %d results, want %d", len(results), len(seeds))
	}
	for i, res := range results {
		if res.Seed != seeds[i] {
			t.Errorf("result %d has seed %d, want %d", i, res.Seed, seeds[i])
		}
		if res.Steps != cfg.Steps() {
			t.Errorf("result %d ran %d steps, want %d", i, res.Steps, cfg.Steps())
		}
		if res.RunID == "" {
			t.Errorf("result %d has empty run id", i)
		}
	}
	if results[0].RunID == results[1].RunID {
		t.Error("distinct runs share a run id")
	}
}

// Ensemble members are isolated: a seed's summary is identical to a
// standalone run with that seed, whatever its neighbours do.
func TestRunEnsembleMatchesStandaloneRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.DurationSeconds = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	seeds := []int64{10, 20, 30, 40}
	ensemble := RunEnsemble(cfg, seeds, 4)

	for i, seed := range seeds {
		soloCfg := *cfg
		soloCfg.Simulation.Seed = seed
		solo := New(&soloCfg).RunHeadless(cfg.Steps())

		got := ensemble[i]
		got.RunID = solo.RunID
		if got != solo {
			t.Errorf("seed %d: ensemble summary %+v differs from standalone %+v", seed, got, solo)
		}
	}
}

func TestRunEnsembleClampsWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.DurationSeconds = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	// More workers than seeds, and a nonsense worker count, both work.
	if got := RunEnsemble(cfg, []int64{1}, 16); len(got) != 1 {
		t.Errorf("got %d results, want 1", len(got))
	}
	if got := RunEnsemble(cfg, []int64{1, 2}, 0); len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}
