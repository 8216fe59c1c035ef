package sizing

import (
	"fmt"
	"math"
)

// FeederMotor is the per-motor input to feeder sizing: the table FLC
// and the branch SCPD already selected per 430.52.
type FeederMotor struct {
	Tag         string
	FLCTableA   float64
	BranchSCPDA float64
}

// FeederConductorResult is the minimum feeder conductor ampacity per
// NEC 430.24.
type FeederConductorResult struct {
	MinAmpacityA           float64 `yaml:"min_ampacity_a"`
	LargestMotorFLCA       float64 `yaml:"largest_motor_flc_a"`
	LargestMotorTag        string  `yaml:"largest_motor_tag"`
	SumOtherMotorsA        float64 `yaml:"sum_other_motors_a"`
	NonMotorContinuousA    float64 `yaml:"non_motor_continuous_a"`
	NonMotorNoncontinuousA float64 `yaml:"non_motor_noncontinuous_a"`
	MotorCount             int     `yaml:"motor_count"`
	CodeReference          string  `yaml:"code_reference"`
	Calculation            string  `yaml:"calculation"`
}

// FeederConductorAmpacity computes the 430.24 feeder minimum:
// 125% of the largest motor FLC plus the other motor FLCs, plus 125%
// of non-motor continuous load and the non-continuous load at 100%.
func FeederConductorAmpacity(motors []FeederMotor, nonMotorContinuousA, nonMotorNoncontinuousA float64) FeederConductorResult {
	if len(motors) == 0 {
		return FeederConductorResult{
			CodeReference: "NEC 430.24",
			Calculation:   "No motors",
		}
	}

	largestFLC := 0.0
	largestTag := ""
	totalFLC := 0.0
	for _, m := range motors {
		totalFLC += m.FLCTableA
		if m.FLCTableA > largestFLC {
			largestFLC = m.FLCTableA
			largestTag = m.Tag
		}
	}
	otherFLCs := totalFLC - largestFLC

	minAmpacity := 1.25*largestFLC + otherFLCs + 1.25*nonMotorContinuousA + nonMotorNoncontinuousA

	calculation := fmt.Sprintf("125%% x %gA (largest)", largestFLC)
	if otherFLCs > 0 {
		calculation += fmt.Sprintf(" + %gA (other motors)", otherFLCs)
	}
	if nonMotorContinuousA > 0 {
		calculation += fmt.Sprintf(" + 125%% x %gA (continuous)", nonMotorContinuousA)
	}
	if nonMotorNoncontinuousA > 0 {
		calculation += fmt.Sprintf(" + %gA (non-continuous)", nonMotorNoncontinuousA)
	}
	calculation += fmt.Sprintf(" = %.1fA", minAmpacity)

	return FeederConductorResult{
		MinAmpacityA:           round1(minAmpacity),
		LargestMotorFLCA:       largestFLC,
		LargestMotorTag:        largestTag,
		SumOtherMotorsA:        otherFLCs,
		NonMotorContinuousA:    nonMotorContinuousA,
		NonMotorNoncontinuousA: nonMotorNoncontinuousA,
		MotorCount:             len(motors),
		CodeReference:          "NEC 430.24",
		Calculation:            calculation,
	}
}

// FeederOCPDResult is the maximum feeder OCPD per NEC 430.62(A).
type FeederOCPDResult struct {
	MaxRatingA        float64 `yaml:"max_rating_a"`
	SelectedRatingA   float64 `yaml:"selected_rating_a"`
	LargestMotorFLCA  float64 `yaml:"largest_motor_flc_a"`
	LargestMotorSCPDA float64 `yaml:"largest_motor_scpd_a"`
	LargestMotorTag   string  `yaml:"largest_motor_tag"`
	SumOtherMotorsA   float64 `yaml:"sum_other_motors_a"`
	NonMotorTotalA    float64 `yaml:"non_motor_total_a"`
	MotorCount        int     `yaml:"motor_count"`
	CodeReference     string  `yaml:"code_reference"`
	Calculation       string  `yaml:"calculation"`
}

// FeederOCPDMax computes the 430.62(A) feeder OCPD ceiling: the
// largest motor branch SCPD plus the other motor FLCs plus non-motor
// load. The selected rating is the largest standard size NOT exceeding
// the ceiling; the branch-level next-size-up rule does not apply to
// feeders.
func FeederOCPDMax(motors []FeederMotor, nonMotorContinuousA, nonMotorNoncontinuousA float64) FeederOCPDResult {
	if len(motors) == 0 {
		return FeederOCPDResult{
			CodeReference: "NEC 430.62(A)",
			Calculation:   "No motors",
		}
	}

	// The governing motor is the one with the largest branch SCPD.
	largest := motors[0]
	totalFLC := 0.0
	for _, m := range motors {
		totalFLC += m.FLCTableA
		if m.BranchSCPDA > largest.BranchSCPDA {
			largest = m
		}
	}
	otherFLCs := totalFLC - largest.FLCTableA

	nonMotorTotal := nonMotorContinuousA + nonMotorNoncontinuousA
	maxRating := largest.BranchSCPDA + otherFLCs + nonMotorTotal

	calculation := fmt.Sprintf("%gA (largest motor SCPD)", largest.BranchSCPDA)
	if otherFLCs > 0 {
		calculation += fmt.Sprintf(" + %gA (other motor FLCs)", otherFLCs)
	}
	if nonMotorTotal > 0 {
		calculation += fmt.Sprintf(" + %gA (non-motor)", nonMotorTotal)
	}
	calculation += fmt.Sprintf(" = %.1fA max", maxRating)

	return FeederOCPDResult{
		MaxRatingA:        round1(maxRating),
		SelectedRatingA:   largestOCPDAtOrBelow(maxRating),
		LargestMotorFLCA:  largest.FLCTableA,
		LargestMotorSCPDA: largest.BranchSCPDA,
		LargestMotorTag:   largest.Tag,
		SumOtherMotorsA:   otherFLCs,
		NonMotorTotalA:    nonMotorTotal,
		MotorCount:        len(motors),
		CodeReference:     "NEC 430.62(A)",
		Calculation:       calculation,
	}
}

// MCCFeederSizing is the complete incoming-feeder sizing for one MCC.
type MCCFeederSizing struct {
	FeederConductorMinA float64 `yaml:"feeder_conductor_min_a"`
	FeederOCPDMaxA      float64 `yaml:"feeder_ocpd_max_a"`
	FeederOCPDSelectedA float64 `yaml:"feeder_ocpd_selected_a"`

	LargestMotorFLCA  float64 `yaml:"largest_motor_flc_a"`
	LargestMotorTag   string  `yaml:"largest_motor_tag"`
	LargestMotorSCPDA float64 `yaml:"largest_motor_scpd_a"`
	TotalMotorFLCA    float64 `yaml:"total_motor_flc_a"`
	MotorCount        int     `yaml:"motor_count"`

	VoltageV     float64 `yaml:"voltage_v"`
	EstimatedKVA float64 `yaml:"estimated_kva"`
	EstimatedKW  float64 `yaml:"estimated_kw"`

	Conductor FeederConductorResult `yaml:"conductor_sizing"`
	OCPD      FeederOCPDResult      `yaml:"ocpd_sizing"`

	CodeReferences []string `yaml:"code_references"`
}

// SizeMCCFeeder sizes the MCC incoming feeder per NEC 430.24 and
// 430.62(A).
func SizeMCCFeeder(motors []FeederMotor, voltageV float64, phases int, powerFactor float64) MCCFeederSizing {
	conductor := FeederConductorAmpacity(motors, 0, 0)
	ocpd := FeederOCPDMax(motors, 0, 0)

	totalFLC := 0.0
	for _, m := range motors {
		totalFLC += m.FLCTableA
	}

	var kva float64
	if phases == 3 {
		kva = conductor.MinAmpacityA * math.Sqrt(3) * voltageV / 1000
	} else {
		kva = conductor.MinAmpacityA * voltageV / 1000
	}

	return MCCFeederSizing{
		FeederConductorMinA: conductor.MinAmpacityA,
		FeederOCPDMaxA:      ocpd.MaxRatingA,
		FeederOCPDSelectedA: ocpd.SelectedRatingA,
		LargestMotorFLCA:    conductor.LargestMotorFLCA,
		LargestMotorTag:     conductor.LargestMotorTag,
		LargestMotorSCPDA:   ocpd.LargestMotorSCPDA,
		TotalMotorFLCA:      totalFLC,
		MotorCount:          len(motors),
		VoltageV:            voltageV,
		EstimatedKVA:        round1(kva),
		EstimatedKW:         round1(kva * powerFactor),
		Conductor:           conductor,
		OCPD:                ocpd,
		CodeReferences:      []string{"NEC 430.24", "NEC 430.62(A)"},
	}
}
