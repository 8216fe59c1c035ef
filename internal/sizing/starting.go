package sizing

import (
	"fmt"
	"math"
	"sort"

	"plantload/internal/models"
)

// StartingCurrent is the locked-rotor profile of one motor.
type StartingCurrent struct {
	MotorKW       float64 `yaml:"motor_kw"`
	VoltageV      float64 `yaml:"voltage_v"`
	FLAA          float64 `yaml:"fla_a"`
	LRAA          float64 `yaml:"lra_a"`
	LRAMultiplier float64 `yaml:"lra_multiplier"`
	StartingKVA   float64 `yaml:"starting_kva"`
	StartingPF    float64 `yaml:"starting_pf"`
	Phases        int     `yaml:"phases"`
}

// MotorStartingCurrent estimates FLA, LRA and starting kVA for a
// motor, assuming 90% efficiency and 0.85 running power factor.
// lraMultiplier of 0 uses the Design B default of 6.
func MotorStartingCurrent(motorKW, voltageV, lraMultiplier float64, phases int) StartingCurrent {
	if lraMultiplier <= 0 {
		lraMultiplier = 6.0
	}

	const (
		efficiency  = 0.90
		powerFactor = 0.85
	)

	var fla float64
	if phases == 3 {
		fla = (motorKW * 1000) / (math.Sqrt(3) * voltageV * efficiency * powerFactor)
	} else {
		fla = (motorKW * 1000) / (voltageV * efficiency * powerFactor)
	}
	lra := fla * lraMultiplier

	var startingKVA float64
	if phases == 3 {
		startingKVA = math.Sqrt(3) * voltageV * lra / 1000
	} else {
		startingKVA = voltageV * lra / 1000
	}

	return StartingCurrent{
		MotorKW:       motorKW,
		VoltageV:      voltageV,
		FLAA:          round1(fla),
		LRAA:          round0(lra),
		LRAMultiplier: lraMultiplier,
		StartingKVA:   round0(startingKVA),
		StartingPF:    0.30,
		Phases:        phases,
	}
}

// Effective starting current as a fraction of DOL inrush per starting
// method.
var startingMethodFactors = map[string]float64{
	"DOL":                1.0,
	"STAR_DELTA":         0.33,
	"AUTOTRANSFORMER_65": 0.42,
	"AUTOTRANSFORMER_80": 0.64,
	"SOFT_STARTER":       0.40,
	"VFD":                0.0,
}

// StartingAnalysis is the voltage dip analysis for one motor start.
type StartingAnalysis struct {
	MotorKW   float64 `yaml:"motor_kw"`
	MotorFLAA float64 `yaml:"motor_fla_a"`
	MotorLRAA float64 `yaml:"motor_lra_a"`

	StartingMethod        string  `yaml:"starting_method"`
	MethodCurrentFactor   float64 `yaml:"method_current_factor"`
	EffectiveStartingKVA  float64 `yaml:"effective_starting_kva"`
	SourceKVA             float64 `yaml:"source_kva"`
	SourceImpedancePct    float64 `yaml:"source_impedance_pct"`
	VoltageDipPct         float64 `yaml:"voltage_dip_pct"`
	VoltageDuringStartPct float64 `yaml:"voltage_during_start_pct"`

	ImpactLevel       string `yaml:"impact_level"`
	RecommendedAction string `yaml:"recommended_action"`
	Acceptable        bool   `yaml:"acceptable"`
}

// AnalyzeMotorStarting estimates the bus voltage dip for one motor
// start: Vdip% = (starting kVA / source kVA) x Z%.
func AnalyzeMotorStarting(motorKW, voltageV, sourceKVA, sourceZPct float64, startingMethod string, lraMultiplier float64) StartingAnalysis {
	motor := MotorStartingCurrent(motorKW, voltageV, lraMultiplier, 3)

	factor, ok := startingMethodFactors[startingMethod]
	if !ok {
		factor = 1.0
	}
	effectiveKVA := motor.StartingKVA * factor

	dipPct := effectiveKVA / sourceKVA * sourceZPct

	var impact, action string
	switch {
	case dipPct <= 10:
		impact = "LOW"
		action = "None required"
	case dipPct <= 15:
		impact = "MODERATE"
		action = "Verify no sensitive loads on same bus"
	case dipPct <= 20:
		impact = "HIGH"
		action = "Consider soft starter, VFD, or larger source"
	default:
		impact = "EXCESSIVE"
		action = "Mitigation required - soft starter/VFD mandatory"
	}

	return StartingAnalysis{
		MotorKW:               motorKW,
		MotorFLAA:             motor.FLAA,
		MotorLRAA:             motor.LRAA,
		StartingMethod:        startingMethod,
		MethodCurrentFactor:   factor,
		EffectiveStartingKVA:  round0(effectiveKVA),
		SourceKVA:             sourceKVA,
		SourceImpedancePct:    sourceZPct,
		VoltageDipPct:         round1(dipPct),
		VoltageDuringStartPct: round1(100 - dipPct),
		ImpactLevel:           impact,
		RecommendedAction:     action,
		Acceptable:            dipPct <= 15,
	}
}

// StartingMotor is the per-motor input for the sequential check.
type StartingMotor struct {
	Tag     string
	RatedKW float64
	Feeder  models.FeederClass
}

// MotorStartEntry is one motor in the sequential starting analysis,
// ordered largest starting kVA first.
type MotorStartEntry struct {
	Tag            string  `yaml:"tag"`
	RatedKW        float64 `yaml:"rated_kw"`
	StartingMethod string  `yaml:"starting_method"`
	StartingKVA    float64 `yaml:"starting_kva"`
	VoltageDipPct  float64 `yaml:"individual_voltage_dip_pct"`
	Group          int     `yaml:"group"`
	WaitRequired   bool    `yaml:"wait_required,omitempty"`
}

// SequentialStartingResult is the plant-level motor starting check.
type SequentialStartingResult struct {
	MotorCount              int               `yaml:"motor_count"`
	SourceKVA               float64           `yaml:"source_kva"`
	MaxVoltageDipPct        float64           `yaml:"max_voltage_dip_pct"`
	LargestMotorKW          float64           `yaml:"largest_motor_kw"`
	LargestMotorTag         string            `yaml:"largest_motor_tag"`
	LargestMotorDipPct      float64           `yaml:"largest_motor_dip_pct"`
	TotalStartingKVA        float64           `yaml:"total_starting_kva"`
	SequentialStartRequired bool              `yaml:"sequential_start_required"`
	MotorAnalyses           []MotorStartEntry `yaml:"motor_analyses"`
	Notes                   string            `yaml:"notes"`
}

func startingMethodForFeeder(feeder models.FeederClass) string {
	switch feeder {
	case models.FeederVFD:
		return "VFD"
	case models.FeederSoftStarter:
		return "SOFT_STARTER"
	default:
		return "DOL"
	}
}

// CheckSequentialStarting analyzes every motor start against the
// source and packs motors into simultaneous starting groups. A group
// holds as much starting kVA as the source can absorb within the dip
// limit; VFD motors ramp and always fit. Sequential starting is
// required when more than one group forms, or when the largest motor
// alone exceeds the dip limit.
func CheckSequentialStarting(motors []StartingMotor, sourceKVA, sourceZPct, maxDipPct, voltageV float64) SequentialStartingResult {
	result := SequentialStartingResult{
		MotorCount:       len(motors),
		SourceKVA:        sourceKVA,
		MaxVoltageDipPct: maxDipPct,
	}
	if len(motors) == 0 {
		return result
	}

	var largest *MotorStartEntry
	for _, motor := range motors {
		method := startingMethodForFeeder(motor.Feeder)
		analysis := AnalyzeMotorStarting(motor.RatedKW, voltageV, sourceKVA, sourceZPct, method, 0)

		result.MotorAnalyses = append(result.MotorAnalyses, MotorStartEntry{
			Tag:            motor.Tag,
			RatedKW:        motor.RatedKW,
			StartingMethod: method,
			StartingKVA:    analysis.EffectiveStartingKVA,
			VoltageDipPct:  analysis.VoltageDipPct,
		})
		result.TotalStartingKVA += analysis.EffectiveStartingKVA

		if motor.RatedKW > result.LargestMotorKW {
			result.LargestMotorKW = motor.RatedKW
			largest = &result.MotorAnalyses[len(result.MotorAnalyses)-1]
		}
	}
	if largest != nil {
		result.LargestMotorTag = largest.Tag
		result.LargestMotorDipPct = largest.VoltageDipPct
	}

	sort.SliceStable(result.MotorAnalyses, func(a, b int) bool {
		return result.MotorAnalyses[a].StartingKVA > result.MotorAnalyses[b].StartingKVA
	})

	// Largest combined starting kVA the source absorbs within the dip
	// limit.
	maxGroupKVA := sourceKVA * (maxDipPct / 100) / (sourceZPct / 100)

	currentGroup := 1
	groupKVAUsed := 0.0
	for i := range result.MotorAnalyses {
		entry := &result.MotorAnalyses[i]
		switch {
		case entry.StartingMethod == "VFD":
			entry.Group = currentGroup
		case entry.StartingKVA+groupKVAUsed <= maxGroupKVA:
			entry.Group = currentGroup
			groupKVAUsed += entry.StartingKVA
		default:
			currentGroup++
			groupKVAUsed = entry.StartingKVA
			entry.Group = currentGroup
			entry.WaitRequired = true
		}
	}

	result.SequentialStartRequired = currentGroup > 1 || result.LargestMotorDipPct > maxDipPct
	result.TotalStartingKVA = round0(result.TotalStartingKVA)

	verdict := "Simultaneous starting OK."
	if result.SequentialStartRequired {
		verdict = "Sequential starting required."
	}
	result.Notes = fmt.Sprintf("Largest motor %g kW causes %.1f%% dip. %s",
		result.LargestMotorKW, result.LargestMotorDipPct, verdict)

	return result
}
