package contracts

// Regime is the discretized market risk state gating signal reweighting.
type Regime string

const (
	RegimeRiskOn  Regime = "RISK_ON"
	RegimeNeutral Regime = "NEUTRAL"
	RegimeRiskOff Regime = "RISK_OFF"
)

// Valid reports whether r is one of the three known regimes.
func (r Regime) Valid() bool {
	switch r {
	case RegimeRiskOn, RegimeNeutral, RegimeRiskOff:
		return true
	}
	return false
}
