package reviewer

import (
	"testing"

	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/stretchr/testify/assert"
)

func baseTool() domain.ToolParams {
	return domain.ToolParams{
		RecommendedSpeedMinRPM: 1000, RecommendedSpeedMaxRPM: 4000,
		RecommendedFeedMinMMMin: 100, RecommendedFeedMaxMMMin: 1200,
		RecommendedCutDepthMaxMM: 12, StiffnessKNPerUM: 5.0e6,
	}
}

func baseMaterial() domain.MaterialProps {
	return domain.MaterialProps{HardnessHB: 200, CuttingForceCoeffKc11: 2000}
}

func baseMachine() domain.MachineCaps {
	return domain.MachineCaps{PowerMaxKW: 5.5, TorqueMaxNm: 40, FeedForceMaxN: 2000}
}

func baseStrategy() domain.Strategy {
	return domain.Strategy{Method: domain.Milling, MinToolLifeMin: 20, WearMultiplier: 1}
}

func baseEval() domain.Evaluation {
	return domain.Evaluation{
		SpeedRPM: 3000, FeedMMMin: 500, CutDepthMM: 2, CutWidthMM: 8.5,
		CuttingSpeedMMin: 120, PowerKW: 2, TorqueNm: 10, FeedForceN: 0,
		ToolLifeMin: 30,
	}
}

func TestReview_AllSafeYieldsPassedAndHighScore(t *testing.T) {
	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), baseEval())

	assert.True(t, report.Passed)
	assert.Equal(t, 0, report.ErrorCount)
	assert.Equal(t, 0, report.CriticalCount)
	assert.Equal(t, "safe: all parameters are within a reasonable range and ready for use", report.OverallAssessment)
}

func TestReview_PowerOverloadIsCritical(t *testing.T) {
	ev := baseEval()
	ev.PowerKW = 999 // far over the 5.5kW cap

	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), ev)

	assert.False(t, report.Passed)
	assert.Greater(t, report.CriticalCount, 0)
	assert.Contains(t, report.OverallAssessment, "critical")
}

func TestReview_PowerNearThresholdIsWarning(t *testing.T) {
	ev := baseEval()
	ev.PowerKW = 5.5 * 0.8 // ratio 0.8, between threshold*0.9=0.765 and threshold=0.85

	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), ev)

	var found bool
	for _, it := range report.Items {
		if it.Name == "machine_power" {
			found = true
			assert.Equal(t, domain.Warning, it.Severity)
		}
	}
	assert.True(t, found)
}

func TestReview_ToolLifeBelowFloorIsCritical(t *testing.T) {
	ev := baseEval()
	ev.ToolLifeMin = 5

	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), ev)

	assert.False(t, report.Passed)
	for _, it := range report.Items {
		if it.Name == "tool_life" {
			assert.Equal(t, domain.Critical, it.Severity)
		}
	}
}

func TestReview_ToolLifeShortIsError(t *testing.T) {
	ev := baseEval()
	ev.ToolLifeMin = 15 // between 10 and 20

	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), ev)

	for _, it := range report.Items {
		if it.Name == "tool_life" {
			assert.Equal(t, domain.Error, it.Severity)
		}
	}
	assert.False(t, report.Passed)
}

func TestReview_SpeedAboveVendorMaxIsError(t *testing.T) {
	ev := baseEval()
	ev.SpeedRPM = 5000

	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), ev)

	for _, it := range report.Items {
		if it.Name == "vendor_speed" {
			assert.Equal(t, domain.Error, it.Severity)
		}
	}
}

func TestReview_HardMaterialWithHighCuttingSpeedWarnsOrErrors(t *testing.T) {
	mat := baseMaterial()
	mat.HardnessHB = 350 // recommended speed becomes 80
	ev := baseEval()
	ev.CuttingSpeedMMin = 200 // ratio 2.5

	report := Review(baseTool(), mat, baseMachine(), baseStrategy(), ev)

	for _, it := range report.Items {
		if it.Name == "material_adaptation" {
			assert.Equal(t, domain.Error, it.Severity)
		}
	}
}

func TestReview_FeedForceOnlyReviewedWhenPositive(t *testing.T) {
	ev := baseEval()
	ev.FeedForceN = 0

	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), ev)

	for _, it := range report.Items {
		assert.NotEqual(t, "machine_feed_force", it.Name)
	}
}

// A run that is healthy everywhere except elevated power and a worn-out
// tool: exactly one CRITICAL/ERROR item (tool life), one WARNING (power),
// everything else SAFE.
func TestReview_PowerWarningPlusToolLifeCritical(t *testing.T) {
	strat := baseStrategy()
	strat.MinToolLifeMin = 1 // floor becomes min(1, 10) = 1
	ev := baseEval()
	ev.PowerKW = 5.5 * 0.8
	ev.ToolLifeMin = 0.5

	report := Review(baseTool(), baseMaterial(), baseMachine(), strat, ev)

	assert.Equal(t, 1, report.CriticalCount+report.ErrorCount)
	assert.GreaterOrEqual(t, report.WarningCount, 1)
	for _, it := range report.Items {
		switch it.Name {
		case "tool_life":
			assert.Equal(t, domain.Critical, it.Severity)
		case "machine_power":
			assert.Equal(t, domain.Warning, it.Severity)
		default:
			assert.Equal(t, domain.Safe, it.Severity, "unexpected severity for %s", it.Name)
		}
	}
}

func TestReview_SafetyScoreAveragesItemSeverities(t *testing.T) {
	report := Review(baseTool(), baseMaterial(), baseMachine(), baseStrategy(), baseEval())
	assert.GreaterOrEqual(t, report.SafetyScore, 0.0)
	assert.LessOrEqual(t, report.SafetyScore, 100.0)
}
