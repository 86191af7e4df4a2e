// Package domain holds the value types shared by every stage of a
// cutting-parameter optimization: tool, material, machine, and strategy
// inputs, the search box the planner derives, the genome the MGA searches
// over, and the evaluation and review types produced at the end of a run.
package domain

import "fmt"

// ToolParams describes the cutting tool for the duration of one optimization.
// It is treated as immutable once built.
type ToolParams struct {
	Type     string `json:"type"`
	Material string `json:"material"`
	Coating  string `json:"coating"`

	DiameterMM     float64 `json:"diameter_mm"`
	Teeth          int     `json:"teeth"`
	TipRadiusMM    float64 `json:"tip_radius_mm"`
	ApproachAngDeg float64 `json:"approach_angle_deg"`
	RakeAngDeg     float64 `json:"rake_angle_deg"`
	OverhangMM     float64 `json:"overhang_mm"`

	RecommendedSpeedMinRPM   float64 `json:"recommended_speed_min_rpm"`
	RecommendedSpeedMaxRPM   float64 `json:"recommended_speed_max_rpm"`
	RecommendedFeedMinMMMin  float64 `json:"recommended_feed_min_mm_min"`
	RecommendedFeedMaxMMMin  float64 `json:"recommended_feed_max_mm_min"`
	RecommendedCutDepthMaxMM float64 `json:"recommended_cut_depth_max_mm"`
	RecommendedCutWidthMaxMM float64 `json:"recommended_cut_width_max_mm"`
	MaxCuttingSpeedMMin      float64 `json:"max_cutting_speed_m_min"`
	MaxFeedPerToothMM        float64 `json:"max_feed_per_tooth_mm"`
	MaxFeedForceN            float64 `json:"max_feed_force_n"`

	WearCt  float64 `json:"wear_ct"`
	WearAs  float64 `json:"wear_alpha_s"`
	WearAf  float64 `json:"wear_alpha_f"`
	WearAap float64 `json:"wear_alpha_ap"`

	StiffnessKNPerUM  float64 `json:"stiffness_k_n_per_um"`
	ElasticModulusMPa float64 `json:"elastic_modulus_mpa"`
}

// Validate checks the tool invariants: D>0, z>=1, 0 < recommended_min <=
// recommended_max, envelope maxima strictly positive.
func (t ToolParams) Validate() error {
	if t.DiameterMM <= 0 {
		return fmt.Errorf("%w: tool diameter must be positive, got %g", ErrInvalidInput, t.DiameterMM)
	}
	if t.Teeth < 1 {
		return fmt.Errorf("%w: tool teeth must be >= 1, got %d", ErrInvalidInput, t.Teeth)
	}
	if t.RecommendedSpeedMinRPM <= 0 || t.RecommendedSpeedMinRPM > t.RecommendedSpeedMaxRPM {
		return fmt.Errorf("%w: recommended speed range invalid [%g, %g]", ErrInvalidInput, t.RecommendedSpeedMinRPM, t.RecommendedSpeedMaxRPM)
	}
	if t.RecommendedFeedMinMMMin <= 0 || t.RecommendedFeedMinMMMin > t.RecommendedFeedMaxMMMin {
		return fmt.Errorf("%w: recommended feed range invalid [%g, %g]", ErrInvalidInput, t.RecommendedFeedMinMMMin, t.RecommendedFeedMaxMMMin)
	}
	if t.RecommendedCutDepthMaxMM <= 0 || t.RecommendedCutWidthMaxMM <= 0 {
		return fmt.Errorf("%w: envelope maxima must be strictly positive", ErrInvalidInput)
	}
	if t.MaxCuttingSpeedMMin <= 0 || t.MaxFeedPerToothMM <= 0 || t.MaxFeedForceN <= 0 {
		return fmt.Errorf("%w: envelope maxima must be strictly positive", ErrInvalidInput)
	}
	return nil
}

// MaterialGroup is the ISO workpiece material group tag.
type MaterialGroup string

const (
	GroupP MaterialGroup = "P"
	GroupM MaterialGroup = "M"
	GroupK MaterialGroup = "K"
	GroupN MaterialGroup = "N"
	GroupS MaterialGroup = "S"
	GroupH MaterialGroup = "H"
	GroupO MaterialGroup = "O"
)

// MaterialProps describes the workpiece material.
type MaterialProps struct {
	Group                 MaterialGroup `json:"group"`
	HardnessHB            float64       `json:"hardness_hb"`
	TensileStrengthMPa    float64       `json:"tensile_strength_mpa"`
	Machinability         float64       `json:"machinability"`
	CuttingForceCoeffKc11 float64       `json:"kc11_n_mm2"`
	KienzleSlopeMc        float64       `json:"kienzle_slope_mc"`
}

// Validate checks the material invariants: all strictly positive,
// machinability within (0, 1.3].
func (m MaterialProps) Validate() error {
	if m.HardnessHB <= 0 || m.TensileStrengthMPa <= 0 {
		return fmt.Errorf("%w: material hardness/tensile strength must be positive", ErrInvalidInput)
	}
	if m.Machinability <= 0 || m.Machinability > 1.3 {
		return fmt.Errorf("%w: machinability must be in (0, 1.3], got %g", ErrInvalidInput, m.Machinability)
	}
	if m.CuttingForceCoeffKc11 <= 0 || m.KienzleSlopeMc <= 0 {
		return fmt.Errorf("%w: kc1.1 and mc must be positive", ErrInvalidInput)
	}
	return nil
}

// MachineCaps describes the machine tool's capacity limits.
type MachineCaps struct {
	RPMMax        float64 `json:"rpm_max"`
	PowerMaxKW    float64 `json:"power_max_kw"`
	TorqueMaxNm   float64 `json:"torque_max_nm"`
	FeedMaxMMMin  float64 `json:"feed_max_mm_min"`
	FeedForceMaxN float64 `json:"feed_force_max_n"`
	Efficiency    float64 `json:"efficiency"`
}

// Validate checks the machine invariants: efficiency strictly positive
// (and bounded by 1, since it is a physical efficiency factor).
func (m MachineCaps) Validate() error {
	if m.Efficiency <= 0 || m.Efficiency > 1 {
		return fmt.Errorf("%w: machine efficiency must be in (0, 1], got %g", ErrInvalidInput, m.Efficiency)
	}
	if m.RPMMax <= 0 || m.PowerMaxKW <= 0 || m.TorqueMaxNm <= 0 || m.FeedMaxMMMin <= 0 || m.FeedForceMaxN <= 0 {
		return fmt.Errorf("%w: machine capacity limits must be strictly positive", ErrInvalidInput)
	}
	return nil
}

// Strategy describes the machining strategy applied to one optimization run.
type Strategy struct {
	Method               Method  `json:"method"`
	MinToolLifeMin       float64 `json:"min_tool_life_min"`
	MinBottomRoughnessUM float64 `json:"min_bottom_roughness_um"`
	MinSideRoughnessUM   float64 `json:"min_side_roughness_um"`
	NominalCutWidthMM    float64 `json:"nominal_cut_width_mm"`
	WearMultiplier       float64 `json:"wear_multiplier"`
	BoringInnerDiaMM     float64 `json:"boring_inner_diameter_mm"`
}

// Validate checks the strategy invariants.
func (s Strategy) Validate() error {
	if s.MinToolLifeMin <= 0 {
		return fmt.Errorf("%w: minimum tool life must be positive", ErrInvalidInput)
	}
	if s.WearMultiplier <= 0 {
		return fmt.Errorf("%w: wear multiplier must be positive", ErrInvalidInput)
	}
	if s.Method == Boring && s.BoringInnerDiaMM <= 0 {
		return fmt.Errorf("%w: boring strategy requires a positive inner diameter", ErrInvalidInput)
	}
	return nil
}

// SearchBox is the closed box in (speed, feed, cut_depth, cut_width) the
// planner derives and the MGA searches within.
type SearchBox struct {
	SpeedMinRPM   float64 `json:"speed_min_rpm"`
	SpeedMaxRPM   float64 `json:"speed_max_rpm"`
	FeedMinMMMin  float64 `json:"feed_min_mm_min"`
	FeedMaxMMMin  float64 `json:"feed_max_mm_min"`
	CutDepthMinMM float64 `json:"cut_depth_min_mm"`
	CutDepthMaxMM float64 `json:"cut_depth_max_mm"`
	CutWidthMinMM float64 `json:"cut_width_min_mm"`
	CutWidthMaxMM float64 `json:"cut_width_max_mm"`
}

// Empty reports whether any axis has collapsed to an empty interval
// (upper < lower), the infeasible-configuration condition.
func (b SearchBox) Empty() (axis string, empty bool) {
	switch {
	case b.SpeedMaxRPM < b.SpeedMinRPM:
		return "speed", true
	case b.FeedMaxMMMin < b.FeedMinMMMin:
		return "feed", true
	case b.CutDepthMaxMM < b.CutDepthMinMM:
		return "cut_depth", true
	case b.CutWidthMaxMM < b.CutWidthMinMM:
		return "cut_width", true
	}
	return "", false
}

// Evaluation is the full set of derived quantities for one candidate
// parameter triple, plus the scalarized fitness.
type Evaluation struct {
	SpeedRPM         float64 `json:"speed_rpm"`
	FeedMMMin        float64 `json:"feed_mm_min"`
	CutDepthMM       float64 `json:"cut_depth_mm"`
	CutWidthMM       float64 `json:"cut_width_mm"`
	FeedPerToothMM   float64 `json:"feed_per_tooth_mm"`
	CuttingSpeedMMin float64 `json:"cutting_speed_m_min"`
	MRRCm3Min        float64 `json:"mrr_cm3_min"`
	ToolLifeMin      float64 `json:"tool_life_min"`
	RzUM             float64 `json:"rz_um"`
	RxUM             float64 `json:"rx_um"`
	PowerKW          float64 `json:"power_kw"`
	TorqueNm         float64 `json:"torque_nm"`
	FeedForceN       float64 `json:"feed_force_n"`
	DeflectionMM     float64 `json:"deflection_mm"`
	Penalty          float64 `json:"penalty"`
	Fitness          float64 `json:"fitness"`
	Feasible         bool    `json:"feasible"`
}

// Round applies the response-shaping rule: 2dp for most fields, 4dp for
// feed-per-tooth, 6dp for fitness.
func (e Evaluation) Round() Evaluation {
	r := e
	r.SpeedRPM = round(e.SpeedRPM, 2)
	r.FeedMMMin = round(e.FeedMMMin, 2)
	r.CutDepthMM = round(e.CutDepthMM, 2)
	r.CutWidthMM = round(e.CutWidthMM, 2)
	r.FeedPerToothMM = round(e.FeedPerToothMM, 4)
	r.CuttingSpeedMMin = round(e.CuttingSpeedMMin, 2)
	r.MRRCm3Min = round(e.MRRCm3Min, 2)
	r.ToolLifeMin = round(e.ToolLifeMin, 2)
	r.RzUM = round(e.RzUM, 2)
	r.RxUM = round(e.RxUM, 2)
	r.PowerKW = round(e.PowerKW, 2)
	r.TorqueNm = round(e.TorqueNm, 2)
	r.FeedForceN = round(e.FeedForceN, 2)
	r.DeflectionMM = round(e.DeflectionMM, 2)
	r.Fitness = round(e.Fitness, 6)
	return r
}
