package physics

import "github.com/luanshen/mga-optimizer/internal/domain"

// weight is the per-constraint penalty weight, the same large order as
// kappa so any single violation dominates the removal-rate term.
const weight = 1e29

// accumulatePenalty sums squared violation margins over every bound.
// Roughness constraints only apply to milling/boring; deflection only to
// milling; the plunge-force safety check only to drilling.
func accumulatePenalty(method domain.Method, ev domain.Evaluation, in Inputs) float64 {
	tool := in.Tool
	mach := in.Machine
	strat := in.Strategy

	var p float64

	if ev.ToolLifeMin < strat.MinToolLifeMin {
		d := strat.MinToolLifeMin - ev.ToolLifeMin
		p += weight * d * d
	}
	if ev.PowerKW > mach.PowerMaxKW {
		d := ev.PowerKW - mach.PowerMaxKW
		p += weight * d * d
	}
	if ev.TorqueNm > mach.TorqueMaxNm {
		d := ev.TorqueNm - mach.TorqueMaxNm
		p += weight * d * d
	}
	if method == domain.Milling || method == domain.Boring {
		if ev.RzUM > strat.MinBottomRoughnessUM && method == domain.Milling {
			d := ev.RzUM - strat.MinBottomRoughnessUM
			p += weight * d * d
		}
		if ev.RxUM > strat.MinSideRoughnessUM && method == domain.Boring {
			d := ev.RxUM - strat.MinSideRoughnessUM
			p += weight * d * d
		}
	}
	if ev.FeedForceN > tool.MaxFeedForceN {
		d := ev.FeedForceN - tool.MaxFeedForceN
		p += weight * d * d
	}
	if ev.FeedForceN > mach.FeedForceMaxN {
		d := ev.FeedForceN - mach.FeedForceMaxN
		p += weight * d * d
	}
	if ev.FeedPerToothMM > tool.MaxFeedPerToothMM {
		d := ev.FeedPerToothMM - tool.MaxFeedPerToothMM
		p += weight * d * d
	}
	if ev.CuttingSpeedMMin > tool.MaxCuttingSpeedMMin {
		d := ev.CuttingSpeedMMin - tool.MaxCuttingSpeedMMin
		p += weight * d * d
	}
	if method == domain.Milling && tool.StiffnessKNPerUM > 0 {
		deltaMax := deflectionLimit(tool)
		if ev.DeflectionMM > deltaMax {
			d := ev.DeflectionMM - deltaMax
			p += weight * d * d
		}
	}
	if method == domain.Drilling {
		area := 3.141592653589793 * (tool.DiameterMM / 2) * (tool.DiameterMM / 2)
		if area > 0 {
			plungeStress := ev.FeedForceN / area
			if plungeStress > 50 {
				d := plungeStress - 50
				p += weight * d * d
			}
		}
	}
	return p
}

// deflectionLimit is the allowable tool-tip deflection: a fixed 0.1 mm for
// every tool, independent of its stiffness rating. The Reviewer's
// tool_deflection check uses the same 0.1 mm limit.
func deflectionLimit(tool domain.ToolParams) float64 {
	return 0.1
}
