// Package planner derives a restricted (speed, feed, cut_depth, cut_width)
// SearchBox from the tool, material, and machine inputs before the MGA
// ever runs, together with human-readable advice on the chosen bounds.
package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/luanshen/mga-optimizer/internal/domain"
)

// Per-axis safety factors. Single point of truth: the reviewer grades
// against its own thresholds, never against copies of these.
const (
	speedSafetyFactor     = 0.9
	feedSafetyFactor      = 0.85
	cutDepthSafetyFactor  = 0.8
	cutWidthSafetyFactor  = 0.85
	resonanceGuardFactor  = 0.8
	stiffnessDeflectionMM = 0.1
)

// Result is the planner's output: the SearchBox, the safety factors actually
// applied, a human-readable reason, and per-axis advice strings keyed
// {speed, feed, cut_depth, general}.
type Result struct {
	Box           domain.SearchBox
	SafetyFactors map[string]float64
	Reason        string
	Advice        map[string]string
}

// Plan derives the SearchBox for one optimization. It never calls the
// physics evaluator.
func Plan(tool domain.ToolParams, mat domain.MaterialProps, mach domain.MachineCaps, strat domain.Strategy) Result {
	speedMin, speedMax := speedRange(tool, mach)
	feedMin, feedMax := feedRange(tool, mat, mach)
	depthMin, depthMax := cutDepthRange(tool, strat)
	widthMin, widthMax := cutWidthRange(tool)

	factor := materialFactor(mat)
	speedMax *= factor
	feedMax *= factor
	depthMax *= hardnessFactor(mat)

	if strat.Method == domain.Drilling {
		widthMin, widthMax = 0, 0
		depthMax = tool.DiameterMM * 2.5
	}

	box := domain.SearchBox{
		SpeedMinRPM:   speedMin,
		SpeedMaxRPM:   speedMax,
		FeedMinMMMin:  feedMin,
		FeedMaxMMMin:  feedMax,
		CutDepthMinMM: depthMin,
		CutDepthMaxMM: depthMax,
		CutWidthMinMM: widthMin,
		CutWidthMaxMM: widthMax,
	}

	factors := map[string]float64{
		"speed":     speedSafetyFactor,
		"feed":      feedSafetyFactor,
		"cut_depth": cutDepthSafetyFactor,
		"cut_width": cutWidthSafetyFactor,
	}

	return Result{
		Box:           box,
		SafetyFactors: factors,
		Reason:        reason(tool, mat, mach, factors),
		Advice:        advice(tool, mat, strat),
	}
}

// speedRange narrows the spindle-speed upper bound by vendor safety factor,
// the resonance guard, the cutting-speed envelope, and the machine's rpm
// ceiling.
func speedRange(tool domain.ToolParams, mach domain.MachineCaps) (min, max float64) {
	min = math.Max(tool.RecommendedSpeedMinRPM, 100)
	max = tool.RecommendedSpeedMaxRPM * speedSafetyFactor

	resonance := 30000 / tool.DiameterMM * resonanceGuardFactor
	max = math.Min(max, resonance)

	byCuttingSpeed := tool.MaxCuttingSpeedMMin * 318 / tool.DiameterMM
	max = math.Min(max, byCuttingSpeed)

	max = math.Min(max, mach.RPMMax)
	return min, max
}

// feedRange narrows the feed-rate upper bound by vendor safety factor, the
// per-tooth envelope, a stiffness-derived cap, and the machine's feed
// ceiling.
func feedRange(tool domain.ToolParams, mat domain.MaterialProps, mach domain.MachineCaps) (min, max float64) {
	min = math.Max(tool.RecommendedFeedMinMMMin, 10)
	max = tool.RecommendedFeedMaxMMMin * feedSafetyFactor

	byPerTooth := tool.MaxFeedPerToothMM * float64(tool.Teeth) * tool.RecommendedSpeedMinRPM
	max = math.Min(max, byPerTooth)

	byStiffness := maxFeedByStiffness(tool, mat)
	max = math.Min(max, byStiffness)

	max = math.Min(max, mach.FeedMaxMMMin)
	return min, max
}

// maxFeedByStiffness derives a feed cap from the simplified model "tool
// deflection must not exceed 0.1mm": max_force = K*0.1, max_feed =
// max_force / cutting_force_coefficient.
func maxFeedByStiffness(tool domain.ToolParams, mat domain.MaterialProps) float64 {
	if mat.CuttingForceCoeffKc11 <= 0 {
		return 0
	}
	maxForce := tool.StiffnessKNPerUM * stiffnessDeflectionMM
	return maxForce / mat.CuttingForceCoeffKc11
}

// cutDepthRange narrows the axial-depth upper bound by vendor safety
// factor, a geometric cap at half the tool diameter, and a
// stiffness/overhang heuristic. The strategy is not consulted: it carries
// no cut-depth bound.
func cutDepthRange(tool domain.ToolParams, strat domain.Strategy) (min, max float64) {
	min = 0.1
	max = tool.RecommendedCutDepthMaxMM * cutDepthSafetyFactor

	max = math.Min(max, tool.DiameterMM*0.5)

	if tool.OverhangMM > 0 {
		stiffnessFactor := (tool.DiameterMM / tool.OverhangMM) * (tool.DiameterMM / tool.OverhangMM)
		byStiffness := tool.DiameterMM * stiffnessFactor * 0.5
		max = math.Min(max, byStiffness)
	}

	return min, max
}

// cutWidthRange narrows the radial-width upper bound by vendor safety
// factor and a geometric cap at 70% of the tool diameter.
func cutWidthRange(tool domain.ToolParams) (min, max float64) {
	min = 0.1
	max = math.Min(tool.RecommendedCutWidthMaxMM*cutWidthSafetyFactor, tool.DiameterMM*0.7)
	return min, max
}

// materialFactor combines the hardness adjustment and machinability index
// that multiply the speed and feed upper bounds.
func materialFactor(mat domain.MaterialProps) float64 {
	return hardnessFactor(mat) * mat.Machinability
}

// hardnessFactor is the planner's own hardness adjustment: harder material
// narrows the envelope, softer material relaxes it. Distinct from the
// reviewer's hardness-derived recommended-speed bands, which serve a
// different check.
func hardnessFactor(mat domain.MaterialProps) float64 {
	switch {
	case mat.HardnessHB > 300:
		return 0.8
	case mat.HardnessHB < 150:
		return 1.1
	default:
		return 1.0
	}
}

func reason(tool domain.ToolParams, mat domain.MaterialProps, mach domain.MachineCaps, factors map[string]float64) string {
	parts := []string{
		fmt.Sprintf("based on vendor-recommended parameters (%s, %s)", tool.Type, tool.Material),
		fmt.Sprintf("adjusted for material (%s, %gHB)", mat.Group, mat.HardnessHB),
		fmt.Sprintf("limited by machine capacity (max power %gkW)", mach.PowerMaxKW),
		fmt.Sprintf("safety factors applied: speed %.2f, feed %.2f, cut_depth %.2f", factors["speed"], factors["feed"], factors["cut_depth"]),
	}
	return strings.Join(parts, "; ")
}

func advice(tool domain.ToolParams, mat domain.MaterialProps, strat domain.Strategy) map[string]string {
	a := map[string]string{}

	switch {
	case mat.HardnessHB > 300:
		a["speed"] = "material hardness is high; consider lowering speed to extend tool life"
	case mat.HardnessHB < 150:
		a["speed"] = "material hardness is low; speed can be raised to improve throughput"
	}

	if tool.Material == "carbide" {
		a["feed"] = "carbide tooling tolerates high feed; prefer the upper end of the recommended range"
	} else {
		a["feed"] = "tool material is softer; keep feed moderate to protect the cutting edge"
	}

	if tool.OverhangMM > tool.DiameterMM*3 {
		a["cut_depth"] = "tool overhang is large; consider reducing cut depth to avoid chatter"
	}

	a["general"] = fmt.Sprintf("prioritize material removal rate while keeping tool life above %.1f min", strat.MinToolLifeMin)
	return a
}
