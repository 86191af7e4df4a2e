// Package reviewer implements the post-optimization safety review: five
// independent review groups graded {SAFE, WARNING, ERROR, CRITICAL},
// aggregated into a domain.ReviewReport with an overall safety score.
package reviewer

import (
	"fmt"
	"math"

	"github.com/luanshen/mga-optimizer/internal/domain"
)

// Safety thresholds for the machine-capacity review group.
const (
	powerThreshold     = 0.85
	torqueThreshold    = 0.85
	feedForceThreshold = 0.85

	toolDeflectionLimitMM = 0.1
	minToolLifeMin        = 10.0
)

// Review grades the incumbent Evaluation across tool strength, machine
// capacity, material adaptation, vendor envelope, and operational safety,
// and aggregates the result.
func Review(tool domain.ToolParams, mat domain.MaterialProps, mach domain.MachineCaps, strat domain.Strategy, ev domain.Evaluation) domain.ReviewReport {
	var items []domain.ReviewItem
	items = append(items, toolStrength(tool, mat, ev)...)
	items = append(items, machineCapacity(mach, ev)...)
	items = append(items, materialAdaptation(mat, ev)...)
	items = append(items, vendorEnvelope(tool, ev)...)
	items = append(items, operationalSafety(strat, ev)...)

	return aggregate(items)
}

func aggregate(items []domain.ReviewItem) domain.ReviewReport {
	report := domain.ReviewReport{Items: items}
	for _, it := range items {
		switch it.Severity {
		case domain.Safe:
			report.SafeCount++
		case domain.Warning:
			report.WarningCount++
		case domain.Error:
			report.ErrorCount++
		case domain.Critical:
			report.CriticalCount++
		}
	}
	report.Passed = report.ErrorCount == 0 && report.CriticalCount == 0
	report.SafetyScore = safetyScore(items)
	report.OverallAssessment = overallAssessment(report.WarningCount, report.ErrorCount, report.CriticalCount)
	return report
}

func safetyScore(items []domain.ReviewItem) float64 {
	if len(items) == 0 {
		return 100.0
	}
	total := 0.0
	for _, it := range items {
		total += it.Severity.Score()
	}
	return total / float64(len(items))
}

func overallAssessment(warning, errorCount, critical int) string {
	switch {
	case critical > 0:
		return "critical: parameters endanger equipment or personnel and must be corrected immediately"
	case errorCount > 0:
		return "errors present: parameters exceed physical limits and require adjustment before use"
	case warning > 3:
		return "multiple warnings: parameters are near their limits, optimization for greater safety margin is recommended"
	case warning > 0:
		return "warnings present: parameters are broadly reasonable but leave room for improvement"
	default:
		return "safe: all parameters are within a reasonable range and ready for use"
	}
}

// toolStrength reviews cutting force against the tool's stiffness-derived
// capacity, and tool deflection against the 0.1mm limit.
func toolStrength(tool domain.ToolParams, mat domain.MaterialProps, ev domain.Evaluation) []domain.ReviewItem {
	cuttingForce := simplifiedCuttingForce(mat, ev)
	maxToolForce := tool.StiffnessKNPerUM * toolDeflectionLimitMM

	forceItem := domain.ReviewItem{
		Name:         "tool_strength",
		CurrentValue: cuttingForce,
		LimitValue:   maxToolForce,
	}
	ratio := safeDiv(cuttingForce, maxToolForce)
	switch {
	case ratio > 1.0:
		forceItem.Severity = domain.Critical
		forceItem.Message = fmt.Sprintf("cutting force %.2fN exceeds the tool's maximum rated force %.2fN", cuttingForce, maxToolForce)
		forceItem.Recommendation = "reduce feed or cut depth immediately to avoid tool breakage"
	case ratio > 0.9:
		forceItem.Severity = domain.Error
		forceItem.Message = fmt.Sprintf("cutting force %.2fN is close to the tool's limit %.2fN (usage %.1f%%)", cuttingForce, maxToolForce, ratio*100)
		forceItem.Recommendation = "reduce feed or cut depth to restore safety margin"
	case ratio > 0.75:
		forceItem.Severity = domain.Warning
		forceItem.Message = fmt.Sprintf("cutting force %.2fN is elevated (usage %.1f%%)", cuttingForce, ratio*100)
		forceItem.Recommendation = "monitor tool wear and inspect periodically"
	default:
		forceItem.Severity = domain.Safe
		forceItem.Message = fmt.Sprintf("cutting force %.2fN is within a safe range (usage %.1f%%)", cuttingForce, ratio*100)
		forceItem.Recommendation = "parameters are reasonable for normal use"
	}

	deflection := safeDiv(cuttingForce, tool.StiffnessKNPerUM)
	deflItem := domain.ReviewItem{
		Name:         "tool_deflection",
		CurrentValue: deflection,
		LimitValue:   toolDeflectionLimitMM,
	}
	switch {
	case deflection > toolDeflectionLimitMM:
		deflItem.Severity = domain.Error
		deflItem.Message = fmt.Sprintf("tool deflection %.3fum exceeds the allowed %.3fum", deflection*1000, toolDeflectionLimitMM*1000)
		deflItem.Recommendation = "reduce cut depth or increase tool stiffness (shorter overhang)"
	case deflection > toolDeflectionLimitMM*0.8:
		deflItem.Severity = domain.Warning
		deflItem.Message = fmt.Sprintf("tool deflection %.3fum is large", deflection*1000)
		deflItem.Recommendation = "may affect machining accuracy; consider reducing cut depth"
	default:
		deflItem.Severity = domain.Safe
		deflItem.Message = fmt.Sprintf("tool deflection %.3fum is within the allowed range", deflection*1000)
		deflItem.Recommendation = "tool stiffness is adequate"
	}

	return []domain.ReviewItem{forceItem, deflItem}
}

// simplifiedCuttingForce is the reviewer's own coarse force estimate,
// distinct from the physics package's Kienzle model — it exists only to
// rank the candidate against the tool's stiffness envelope.
func simplifiedCuttingForce(mat domain.MaterialProps, ev domain.Evaluation) float64 {
	return mat.CuttingForceCoeffKc11 * ev.CutDepthMM * ev.CutWidthMM * math.Sqrt(ev.FeedMMMin/1000)
}

func machineCapacity(mach domain.MachineCaps, ev domain.Evaluation) []domain.ReviewItem {
	items := []domain.ReviewItem{
		capacityItem("machine_power", ev.PowerKW, mach.PowerMaxKW, powerThreshold, "kW", "power"),
		capacityItem("machine_torque", ev.TorqueNm, mach.TorqueMaxNm, torqueThreshold, "Nm", "torque"),
	}
	if ev.FeedForceN > 0 {
		items = append(items, feedForceItem(ev.FeedForceN, mach.FeedForceMaxN))
	}
	return items
}

func capacityItem(name string, usage, max, threshold float64, unit, label string) domain.ReviewItem {
	ratio := safeDiv(usage, max)
	item := domain.ReviewItem{
		Name:         name,
		CurrentValue: usage,
		LimitValue:   max * threshold,
	}
	switch {
	case ratio > 1.0:
		item.Severity = domain.Critical
		item.Message = fmt.Sprintf("%s %.2f%s exceeds the machine's maximum %.2f%s", label, usage, unit, max, unit)
		item.Recommendation = "cutting parameters must be reduced to avoid overloading the machine"
	case ratio > threshold:
		item.Severity = domain.Error
		item.Message = fmt.Sprintf("%s usage %.1f%% exceeds the safety threshold %.0f%%", label, ratio*100, threshold*100)
		item.Recommendation = fmt.Sprintf("reduce cutting parameters to keep %s usage under %.0f%%", label, threshold*100)
	case ratio > threshold*0.9:
		item.Severity = domain.Warning
		item.Message = fmt.Sprintf("%s usage %.1f%% is close to the safety threshold", label, ratio*100)
		item.Recommendation = "monitor machine load, avoid sustained high-load operation"
	default:
		item.Severity = domain.Safe
		item.Message = fmt.Sprintf("%s usage %.1f%% is within a safe range", label, ratio*100)
		item.Recommendation = fmt.Sprintf("%s usage is reasonable", label)
	}
	return item
}

func feedForceItem(usage, max float64) domain.ReviewItem {
	ratio := safeDiv(usage, max)
	item := domain.ReviewItem{
		Name:         "machine_feed_force",
		CurrentValue: usage,
		LimitValue:   max * feedForceThreshold,
	}
	switch {
	case ratio > 1.0:
		item.Severity = domain.Critical
		item.Message = fmt.Sprintf("feed force %.2fN exceeds the machine's maximum feed force %.2fN", usage, max)
		item.Recommendation = "feed rate must be reduced to avoid overloading the machine"
	case ratio > feedForceThreshold:
		item.Severity = domain.Error
		item.Message = fmt.Sprintf("feed force usage %.1f%% exceeds the safety threshold %.0f%%", ratio*100, feedForceThreshold*100)
		item.Recommendation = fmt.Sprintf("reduce feed rate to keep usage under %.0f%%", feedForceThreshold*100)
	default:
		item.Severity = domain.Safe
		item.Message = fmt.Sprintf("feed force usage %.1f%% is within a safe range", ratio*100)
		item.Recommendation = "feed force usage is reasonable"
	}
	return item
}

// materialAdaptation reviews the chosen cutting speed against a
// hardness-derived recommended band.
func materialAdaptation(mat domain.MaterialProps, ev domain.Evaluation) []domain.ReviewItem {
	var recommended float64
	switch {
	case mat.HardnessHB > 300:
		recommended = 80
	case mat.HardnessHB > 200:
		recommended = 120
	default:
		recommended = 150
	}

	ratio := safeDiv(ev.CuttingSpeedMMin, recommended)
	item := domain.ReviewItem{
		Name:         "material_adaptation",
		CurrentValue: ev.CuttingSpeedMMin,
		LimitValue:   recommended,
	}
	switch {
	case ratio > 1.5:
		item.Severity = domain.Error
		item.Message = fmt.Sprintf("cutting speed %.2fm/min is well above the recommended %gm/min (material hardness %gHB)", ev.CuttingSpeedMMin, recommended, mat.HardnessHB)
		item.Recommendation = "reduce spindle speed to avoid tool overheating and rapid wear"
	case ratio > 1.2:
		item.Severity = domain.Warning
		item.Message = fmt.Sprintf("cutting speed %.2fm/min is above the recommended %gm/min", ev.CuttingSpeedMMin, recommended)
		item.Recommendation = "monitor tool temperature, consider coolant"
	case ratio < 0.5:
		item.Severity = domain.Warning
		item.Message = fmt.Sprintf("cutting speed %.2fm/min is below the recommended %gm/min", ev.CuttingSpeedMMin, recommended)
		item.Recommendation = "spindle speed can be raised to improve throughput"
	default:
		item.Severity = domain.Safe
		item.Message = fmt.Sprintf("cutting speed %.2fm/min suits this material", ev.CuttingSpeedMMin)
		item.Recommendation = "cutting speed is reasonable"
	}
	return []domain.ReviewItem{item}
}

// vendorEnvelope reviews speed, feed, and cut depth against the tool
// vendor's recommended ranges.
func vendorEnvelope(tool domain.ToolParams, ev domain.Evaluation) []domain.ReviewItem {
	speed := domain.ReviewItem{Name: "vendor_speed", CurrentValue: ev.SpeedRPM, LimitValue: tool.RecommendedSpeedMaxRPM}
	switch {
	case ev.SpeedRPM > tool.RecommendedSpeedMaxRPM:
		speed.Severity = domain.Error
		speed.Message = fmt.Sprintf("speed %.2frpm exceeds the vendor's recommended maximum %.2frpm", ev.SpeedRPM, tool.RecommendedSpeedMaxRPM)
		speed.Recommendation = "reduce speed into the vendor-recommended range"
	case ev.SpeedRPM < tool.RecommendedSpeedMinRPM:
		speed.Severity = domain.Warning
		speed.Message = fmt.Sprintf("speed %.2frpm is below the vendor's recommended minimum %.2frpm", ev.SpeedRPM, tool.RecommendedSpeedMinRPM)
		speed.Recommendation = "machining efficiency may suffer; consider raising speed"
	default:
		speed.Severity = domain.Safe
		speed.Message = fmt.Sprintf("speed %.2frpm is within the vendor's recommended range", ev.SpeedRPM)
		speed.Recommendation = "speed matches vendor recommendation"
	}

	feed := domain.ReviewItem{Name: "vendor_feed", CurrentValue: ev.FeedMMMin, LimitValue: tool.RecommendedFeedMaxMMMin}
	switch {
	case ev.FeedMMMin > tool.RecommendedFeedMaxMMMin:
		feed.Severity = domain.Error
		feed.Message = fmt.Sprintf("feed %.2fmm/min exceeds the vendor's recommended maximum %.2fmm/min", ev.FeedMMMin, tool.RecommendedFeedMaxMMMin)
		feed.Recommendation = "reduce feed into the vendor-recommended range"
	case ev.FeedMMMin < tool.RecommendedFeedMinMMMin:
		feed.Severity = domain.Warning
		feed.Message = fmt.Sprintf("feed %.2fmm/min is below the vendor's recommended minimum %.2fmm/min", ev.FeedMMMin, tool.RecommendedFeedMinMMMin)
		feed.Recommendation = "machining efficiency may suffer; consider raising feed"
	default:
		feed.Severity = domain.Safe
		feed.Message = fmt.Sprintf("feed %.2fmm/min is within the vendor's recommended range", ev.FeedMMMin)
		feed.Recommendation = "feed matches vendor recommendation"
	}

	depth := domain.ReviewItem{Name: "vendor_cut_depth", CurrentValue: ev.CutDepthMM, LimitValue: tool.RecommendedCutDepthMaxMM}
	if ev.CutDepthMM > tool.RecommendedCutDepthMaxMM {
		depth.Severity = domain.Error
		depth.Message = fmt.Sprintf("cut depth %.2fmm exceeds the vendor's recommended maximum %.2fmm", ev.CutDepthMM, tool.RecommendedCutDepthMaxMM)
		depth.Recommendation = "reduce cut depth into the vendor-recommended range"
	} else {
		depth.Severity = domain.Safe
		depth.Message = fmt.Sprintf("cut depth %.2fmm is within the vendor's recommended range", ev.CutDepthMM)
		depth.Recommendation = "cut depth matches vendor recommendation"
	}

	return []domain.ReviewItem{speed, feed, depth}
}

// operationalSafety reviews tool life against the lower of the strategy's
// required minimum and the 10-minute shop floor, with graded thresholds.
func operationalSafety(strat domain.Strategy, ev domain.Evaluation) []domain.ReviewItem {
	floor := minToolLifeMin
	if strat.MinToolLifeMin > 0 && strat.MinToolLifeMin < floor {
		floor = strat.MinToolLifeMin
	}
	item := domain.ReviewItem{
		Name:         "tool_life",
		CurrentValue: ev.ToolLifeMin,
		LimitValue:   floor * 2,
	}
	switch {
	case ev.ToolLifeMin < floor:
		item.Severity = domain.Critical
		item.Message = fmt.Sprintf("tool life %.2fmin is too short; frequent changeovers hurt throughput", ev.ToolLifeMin)
		item.Recommendation = "cutting parameters must be reduced to extend tool life"
	case ev.ToolLifeMin < floor*2:
		item.Severity = domain.Error
		item.Message = fmt.Sprintf("tool life %.2fmin is short; changeovers will be frequent", ev.ToolLifeMin)
		item.Recommendation = "reduce cutting parameters to extend tool life"
	default:
		item.Severity = domain.Safe
		item.Message = fmt.Sprintf("tool life %.2fmin is reasonable", ev.ToolLifeMin)
		item.Recommendation = "tool life is sufficient"
	}
	return []domain.ReviewItem{item}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
