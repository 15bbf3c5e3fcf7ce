package trader

// Strategy identifies a trading strategy variant. The set is closed:
// decisions dispatch through one switch per step rather than an open
// plugin interface.
type Strategy int

const (
	StrategyMomentum Strategy = iota
	StrategyMeanReversion
	StrategyRandom
	StrategyRiskAverse
	StrategyHighRisk
	StrategyRSI
	StrategyMACD
	StrategyBollinger
	StrategyMultiIndicator
	StrategyHuman
)

// AutoStrategies lists the variants that generate orders on their own.
// Human is excluded: its orders arrive only through injection.
var AutoStrategies = []Strategy{
	StrategyMomentum,
	StrategyMeanReversion,
	StrategyRandom,
	StrategyRiskAverse,
	StrategyHighRisk,
	StrategyRSI,
	StrategyMACD,
	StrategyBollinger,
	StrategyMultiIndicator,
}

func (s Strategy) String() string {
	switch s {
	case StrategyMomentum:
		return "momentum"
	case StrategyMeanReversion:
		return "mean_reversion"
	case StrategyRandom:
		return "random"
	case StrategyRiskAverse:
		return "risk_averse"
	case StrategyHighRisk:
		return "high_risk"
	case StrategyRSI:
		return "rsi"
	case StrategyMACD:
		return "macd"
	case StrategyBollinger:
		return "bollinger"
	case StrategyMultiIndicator:
		return "multi_indicator"
	case StrategyHuman:
		return "human"
	default:
		return "unknown"
	}
}

// LotSize returns the strategy's fixed position size before clamping.
func (s Strategy) LotSize() int64 {
	switch s {
	case StrategyRiskAverse:
		return 5
	case StrategyHighRisk:
		return 20
	default:
		return 10
	}
}
