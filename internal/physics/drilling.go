package physics

import (
	"math"

	"github.com/luanshen/mga-optimizer/internal/domain"
)

func evaluateDrilling(n, f, ap float64, in Inputs) domain.Evaluation {
	tool := in.Tool
	mat := in.Material
	mach := in.Machine

	D := tool.DiameterMM
	z := float64(tool.Teeth)
	kappaAngle := tool.ApproachAngDeg * math.Pi / 180

	mrr := f * math.Pi * D * D / 4000

	fz := f / (z*n + epsN)
	fz = math.Max(fz, epsFz)

	vc := n * D / 318
	vc = math.Max(vc, epsV)

	h := fz * math.Sin(kappaAngle)
	h = math.Max(h, epsH)

	kc := mat.CuttingForceCoeffKc11 / (math.Pow(h, mat.KienzleSlopeMc) + 1e-3)
	power := mrr * kc / 60000 / mach.Efficiency
	torque := 9549 * power / (n + epsN)

	ff := 0.63 * fz * z * D * kc / 2

	lt := toolLife(vc, fz, in)

	return domain.Evaluation{
		FeedPerToothMM:   fz,
		CuttingSpeedMMin: vc,
		MRRCm3Min:        mrr,
		ToolLifeMin:      lt,
		RzUM:             0,
		RxUM:             0,
		PowerKW:          power,
		TorqueNm:         torque,
		FeedForceN:       ff,
		DeflectionMM:     0,
	}
}
