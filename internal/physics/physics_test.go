package physics

import (
	"math"
	"testing"

	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func millingInputs() Inputs {
	return Inputs{
		Tool: domain.ToolParams{
			DiameterMM:        25,
			Teeth:             2,
			TipRadiusMM:       0.8,
			ApproachAngDeg:    31,
			RakeAngDeg:        0,
			OverhangMM:        75,
			MaxCuttingSpeedMMin: 250,
			MaxFeedPerToothMM: 0.15,
			MaxFeedForceN:     1200,
			WearCt:            100000,
			WearAs:            -1.5,
			WearAf:            0.75,
			StiffnessKNPerUM:  50,
			ElasticModulusMPa: 210000,
		},
		Material: domain.MaterialProps{
			CuttingForceCoeffKc11: 2000,
			KienzleSlopeMc:        0.21,
		},
		Machine: domain.MachineCaps{
			PowerMaxKW:    5.5,
			TorqueMaxNm:   40,
			FeedForceMaxN: 2000,
			Efficiency:    0.85,
		},
		Strategy: domain.Strategy{
			Method:               domain.Milling,
			MinToolLifeMin:       1,
			MinBottomRoughnessUM: 3.2,
			WearMultiplier:       1,
		},
	}
}

// Milling a medium steel with a 25mm two-flute end mill.
func TestEvaluate_MillingScenario1(t *testing.T) {
	in := millingInputs()
	c := Candidate{SpeedRPM: 3000, FeedMMMin: 500, CutDepthMM: 2, CutWidthMM: 8.5}

	ev := Evaluate(domain.Milling, c, in)

	assert.False(t, math.IsNaN(ev.Fitness))
	assert.InDelta(t, c.SpeedRPM*25.0/318.0, ev.CuttingSpeedMMin, 1e-6)
	if ev.Feasible {
		assert.LessOrEqual(t, ev.PowerKW, 5.5*(1+1e-6))
		assert.LessOrEqual(t, ev.TorqueNm, 40*(1+1e-6))
		assert.LessOrEqual(t, ev.RzUM, 3.2)
	}
}

func TestEvaluate_FeasibleImpliesZeroPenalty(t *testing.T) {
	in := millingInputs()
	in.Strategy.MinToolLifeMin = 0.001 // relax so a low-stress candidate is feasible
	c := Candidate{SpeedRPM: 1000, FeedMMMin: 100, CutDepthMM: 0.5, CutWidthMM: 2}

	ev := Evaluate(domain.Milling, c, in)
	if ev.Feasible {
		assert.Equal(t, 0.0, ev.Penalty)
		assert.Equal(t, ev.MRRCm3Min, ev.Fitness)
	}
}

func TestEvaluate_ViolationSeparatesFitnessFromFeasible(t *testing.T) {
	in := millingInputs()
	feasible := Evaluate(domain.Milling, Candidate{SpeedRPM: 1000, FeedMMMin: 50, CutDepthMM: 0.2, CutWidthMM: 1}, in)
	// Deliberately overloaded candidate: huge feed and depth should violate power/torque/force.
	infeasible := Evaluate(domain.Milling, Candidate{SpeedRPM: 6000, FeedMMMin: 5000, CutDepthMM: 10, CutWidthMM: 20}, in)

	require.False(t, infeasible.Feasible)
	if feasible.Feasible {
		assert.Less(t, infeasible.Fitness, feasible.MRRCm3Min)
	}
}

func TestEvaluate_Drilling(t *testing.T) {
	in := Inputs{
		Tool: domain.ToolParams{
			DiameterMM:        10,
			Teeth:             2,
			ApproachAngDeg:    59,
			MaxFeedForceN:     500,
			MaxFeedPerToothMM: 0.2,
			MaxCuttingSpeedMMin: 150,
			WearCt:            100000,
			WearAs:            -1.5,
			WearAf:            0.75,
		},
		Material: domain.MaterialProps{CuttingForceCoeffKc11: 2000, KienzleSlopeMc: 0.25},
		Machine: domain.MachineCaps{
			PowerMaxKW: 5.5, TorqueMaxNm: 40, FeedForceMaxN: 2000, Efficiency: 0.85,
		},
		Strategy: domain.Strategy{Method: domain.Drilling, MinToolLifeMin: 1, WearMultiplier: 1},
	}
	c := Candidate{SpeedRPM: 2000, FeedMMMin: 80, CutDepthMM: 15, CutWidthMM: 0}

	ev := Evaluate(domain.Drilling, c, in)

	assert.Equal(t, 0.0, ev.CutWidthMM)
	assert.Equal(t, 0.0, ev.RzUM)
	assert.Equal(t, 0.0, ev.RxUM)

	area := math.Pi * (in.Tool.DiameterMM / 2) * (in.Tool.DiameterMM / 2)
	plungeStress := ev.FeedForceN / area
	if ev.Feasible {
		assert.LessOrEqual(t, plungeStress, 50.0)
		assert.LessOrEqual(t, ev.FeedForceN, in.Tool.MaxFeedForceN)
	}
}

func TestEvaluate_Boring(t *testing.T) {
	in := millingInputs()
	in.Strategy.Method = domain.Boring
	in.Strategy.BoringInnerDiaMM = 22.5
	in.Strategy.MinSideRoughnessUM = 3.2
	in.Tool.DiameterMM = 25

	c := Candidate{SpeedRPM: 1500, FeedMMMin: 200, CutDepthMM: 1, CutWidthMM: 0}
	ev := Evaluate(domain.Boring, c, in)

	wantMRR := c.FeedMMMin * math.Pi * (25*25 - 22.5*22.5) / 4000
	assert.InDelta(t, wantMRR, ev.MRRCm3Min, 1e-9)
	if ev.Feasible {
		assert.LessOrEqual(t, ev.RxUM, 3.2)
	}
}

func TestEvaluate_NumericSafetyFloorsGuardZeroInputs(t *testing.T) {
	in := millingInputs()
	c := Candidate{SpeedRPM: 0, FeedMMMin: 0, CutDepthMM: 0, CutWidthMM: 0}

	ev := Evaluate(domain.Milling, c, in)

	assert.False(t, math.IsNaN(ev.FeedPerToothMM))
	assert.False(t, math.IsInf(ev.FeedPerToothMM, 0))
	assert.False(t, math.IsNaN(ev.ToolLifeMin))
	assert.Equal(t, 0.0, ev.CutDepthMM)
}

func TestEvaluateBatch_AgreesWithScalarEvaluate(t *testing.T) {
	in := millingInputs()
	candidates := []Candidate{
		{SpeedRPM: 1000, FeedMMMin: 100, CutDepthMM: 1, CutWidthMM: 5},
		{SpeedRPM: 3000, FeedMMMin: 500, CutDepthMM: 2, CutWidthMM: 8.5},
		{SpeedRPM: 6000, FeedMMMin: 5000, CutDepthMM: 10, CutWidthMM: 20},
	}

	batch := EvaluateBatch(domain.Milling, candidates, in)
	for i, c := range candidates {
		scalar := Evaluate(domain.Milling, c, in)
		assert.InDelta(t, scalar.Fitness, batch[i].Fitness, 1e-6)
		assert.Equal(t, scalar.Feasible, batch[i].Feasible)
	}
}
