package physics

import (
	"math"

	"github.com/luanshen/mga-optimizer/internal/domain"
)

func evaluateMilling(n, f, ap, ae float64, in Inputs) domain.Evaluation {
	tool := in.Tool
	mat := in.Material
	mach := in.Machine

	D := tool.DiameterMM
	z := float64(tool.Teeth)
	kappaAngle := tool.ApproachAngDeg * math.Pi / 180
	gamma := tool.RakeAngDeg

	mrr := f * ap * ae / 1000

	fz := f / (z*n + epsN)
	fz = math.Max(fz, epsFz)

	vc := n * D / 318
	vc = math.Max(vc, epsV)

	var hm float64
	if ae/D <= 0.3 {
		hm = fz * math.Sqrt(ae/D)
	} else {
		ratio := clamp((ae-D/2)/(D/2), -1, 1)
		fs := 90 + math.Asin(ratio)*180/math.Pi
		hm = 1147 * fz * math.Sin(kappaAngle) * (ae / D) / fs
	}
	hm = math.Max(hm, epsH)

	kc := (1 - 0.01*gamma) * mat.CuttingForceCoeffKc11 / (math.Pow(hm, mat.KienzleSlopeMc) + 1e-3)
	power := mrr * kc / 60000 / mach.Efficiency
	torque := 9549 * power / (n + epsN)

	fc := kc * ap * ae / z
	lambda := 0.3 + 0.2*(1-gamma/20)*(90/tool.ApproachAngDeg)
	ff := fc * lambda

	rz := (318.0 / 4.0) * fz * fz / D

	I := math.Pi * math.Pow(D, 4) / 64
	deflection := 0.0
	if tool.ElasticModulusMPa > 0 && I > 0 {
		deflection = ff * math.Pow(tool.OverhangMM, 3) / (3 * tool.ElasticModulusMPa * I)
	}

	lt := toolLife(vc, fz, in)

	return domain.Evaluation{
		FeedPerToothMM:   fz,
		CuttingSpeedMMin: vc,
		MRRCm3Min:        mrr,
		ToolLifeMin:      lt,
		RzUM:             rz,
		RxUM:             0,
		PowerKW:          power,
		TorqueNm:         torque,
		FeedForceN:       ff,
		DeflectionMM:     deflection,
	}
}
