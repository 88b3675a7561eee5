package hedge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

func TestAllocate_ScalesWithStress(t *testing.T) {
	a := NewAllocator(engineconfig.Default().Hedge)

	mild := a.Allocate(-0.55, &contracts.MacroMetrics{VIXCurrent: 22})
	severe := a.Allocate(-0.95, &contracts.MacroMetrics{VIXCurrent: 38, SP500Drawdown: -15})

	assert.Greater(t, severe.DefenseRatio, mild.DefenseRatio)
	assert.LessOrEqual(t, severe.DefenseRatio, 0.5)
	assert.GreaterOrEqual(t, mild.DefenseRatio, 0.3)
	assert.Equal(t, 1.0, severe.RiskScore)
}

func TestAllocate_ReasonsNameTheTriggers(t *testing.T) {
	a := NewAllocator(engineconfig.Default().Hedge)

	alloc := a.Allocate(-0.7, &contracts.MacroMetrics{VIXCurrent: 35, SP500Drawdown: -12})
	require.Len(t, alloc.Reasons, 3)
	assert.Contains(t, alloc.Reasons[1], "VIX")
	assert.Contains(t, alloc.Reasons[2], "drawdown")
}

func TestAllocate_VIXSpikeTiltsTowardGold(t *testing.T) {
	a := NewAllocator(engineconfig.Default().Hedge)

	calm := a.Allocate(-0.6, &contracts.MacroMetrics{VIXCurrent: 22})
	spiked := a.Allocate(-0.6, &contracts.MacroMetrics{VIXCurrent: 38})

	assert.Greater(t, spiked.Sectors["gold"].Weight, calm.Sectors["gold"].Weight)
	assert.Less(t, spiked.Sectors["utilities"].Weight, calm.Sectors["utilities"].Weight)
	assert.Less(t, spiked.Sectors["agricultural"].Weight, calm.Sectors["agricultural"].Weight)
}

func TestAllocate_DeepDrawdownTiltsTowardStaples(t *testing.T) {
	a := NewAllocator(engineconfig.Default().Hedge)

	calm := a.Allocate(-0.6, &contracts.MacroMetrics{SP500Drawdown: -4})
	drawn := a.Allocate(-0.6, &contracts.MacroMetrics{SP500Drawdown: -16})

	assert.Greater(t, drawn.Sectors["consumer_staples"].Weight, calm.Sectors["consumer_staples"].Weight)
	assert.Less(t, drawn.Sectors["gold"].Weight, calm.Sectors["gold"].Weight)
}

func TestAllocate_TiltedWeightsStillSumToOne(t *testing.T) {
	a := NewAllocator(engineconfig.Default().Hedge)

	alloc := a.Allocate(-0.9, &contracts.MacroMetrics{VIXCurrent: 45, SP500Drawdown: -20})

	var sum float64
	for _, slice := range alloc.Sectors {
		sum += slice.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAllocate_SectorWeightsSumToOne(t *testing.T) {
	cfg := engineconfig.Default().Hedge
	a := NewAllocator(cfg)

	alloc := a.Allocate(-0.6, nil)
	require.Len(t, alloc.Sectors, len(cfg.Sectors))

	var sum float64
	for _, slice := range alloc.Sectors {
		sum += slice.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
