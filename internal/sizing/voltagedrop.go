package sizing

import (
	"fmt"
	"math"

	"plantload/internal/catalog"
)

// Copper resistivity by conductor temperature (ohm mm2/m).
var copperResistivity = map[int]float64{
	20: 0.0172,
	70: 0.0214,
	75: 0.0221,
	90: 0.0236,
}

// Approximate reactance for LV cable in conduit (ohm/m).
const cableReactancePerM = 0.00008

// VoltageDrop is one cable run voltage drop result.
type VoltageDrop struct {
	DropV          float64 `yaml:"voltage_drop_v"`
	DropPct        float64 `yaml:"voltage_drop_pct"`
	VoltageAtLoadV float64 `yaml:"voltage_at_load_v"`

	CurrentA    float64 `yaml:"current_a"`
	LengthM     float64 `yaml:"length_m"`
	SizeMM2     float64 `yaml:"cable_size_mm2"`
	VoltageV    float64 `yaml:"voltage_v"`
	Phases      int     `yaml:"phases"`
	PowerFactor float64 `yaml:"power_factor"`

	ResistancePerM float64 `yaml:"resistance_ohm_per_m"`
	ReactancePerM  float64 `yaml:"reactance_ohm_per_m"`

	CompliantBranch bool `yaml:"compliant_branch"`
	CompliantFeeder bool `yaml:"compliant_feeder"`
}

// VoltageDropPct computes the running voltage drop over a one-way
// cable length: Vd = sqrt(3) x I x L x (R cos phi + X sin phi) for
// three phase, 2 x I x L x Z for single phase. Branch circuits target
// <= 3%, feeders <= 2% so the total stays within 5%.
func VoltageDropPct(currentA, lengthM, sizeMM2, voltageV float64, phases int, powerFactor float64, temperatureC int) VoltageDrop {
	resistivity, ok := copperResistivity[temperatureC]
	if !ok {
		resistivity = copperResistivity[75]
	}

	rPerM := resistivity / sizeMM2
	xPerM := cableReactancePerM

	cosPhi := powerFactor
	sinPhi := math.Sqrt(1 - cosPhi*cosPhi)
	zPerM := rPerM*cosPhi + xPerM*sinPhi

	var dropV float64
	if phases == 3 {
		dropV = math.Sqrt(3) * currentA * lengthM * zPerM
	} else {
		dropV = 2 * currentA * lengthM * zPerM
	}

	dropPct := dropV / voltageV * 100

	return VoltageDrop{
		DropV:           round2(dropV),
		DropPct:         round2(dropPct),
		VoltageAtLoadV:  round1(voltageV - dropV),
		CurrentA:        currentA,
		LengthM:         lengthM,
		SizeMM2:         sizeMM2,
		VoltageV:        voltageV,
		Phases:          phases,
		PowerFactor:     powerFactor,
		ResistancePerM:  rPerM,
		ReactancePerM:   xPerM,
		CompliantBranch: dropPct <= 3.0,
		CompliantFeeder: dropPct <= 2.0,
	}
}

// StartingVoltageDrop is the voltage dip over the branch cable while
// the motor is at locked rotor.
type StartingVoltageDrop struct {
	VoltageDrop `yaml:",inline"`

	MotorLRAA           float64 `yaml:"motor_lra_a"`
	StartingPowerFactor float64 `yaml:"starting_power_factor"`
	Impact              string  `yaml:"impact"`
	Recommendation      string  `yaml:"recommendation"`
	TargetMaxPct        float64 `yaml:"target_max_pct"`
	Compliant           bool    `yaml:"compliant"`
}

// MotorStartingVoltageDrop computes the dip over the branch cable at
// locked-rotor current. The motor is deeply inductive while starting,
// so a 0.30 power factor applies.
func MotorStartingVoltageDrop(lraA, lengthM, sizeMM2, voltageV float64, phases int) StartingVoltageDrop {
	const startingPF = 0.30

	drop := VoltageDropPct(lraA, lengthM, sizeMM2, voltageV, phases, startingPF, 75)

	var impact, recommendation string
	switch {
	case drop.DropPct <= 10:
		impact = "LOW - No issues expected"
		recommendation = "OK for most applications"
	case drop.DropPct <= 15:
		impact = "MODERATE - May affect sensitive loads"
		recommendation = "Verify no sensitive loads on same feeder"
	case drop.DropPct <= 20:
		impact = "HIGH - May cause issues"
		recommendation = "Consider soft starter or VFD"
	default:
		impact = "EXCESSIVE - Will cause issues"
		recommendation = "Require soft starter, VFD, or larger transformer"
	}

	return StartingVoltageDrop{
		VoltageDrop:         drop,
		MotorLRAA:           lraA,
		StartingPowerFactor: startingPF,
		Impact:              impact,
		Recommendation:      recommendation,
		TargetMaxPct:        15,
		Compliant:           drop.DropPct <= 15,
	}
}

// CableForDrop is the minimum cable size meeting a voltage drop
// target.
type CableForDrop struct {
	SelectedSize string  `yaml:"selected_size"`
	SizeMM2      float64 `yaml:"selected_size_mm2"`
	DropPct      float64 `yaml:"voltage_drop_pct"`
	TargetPct    float64 `yaml:"target_vd_pct"`
	MeetsTarget  bool    `yaml:"meets_target"`
}

// SizeCableForVoltageDrop walks the table sizes in ascending order and
// returns the first that keeps the run within the target drop.
func SizeCableForVoltageDrop(sizes []catalog.CableSize, currentA, lengthM, voltageV, targetPct float64, phases int, powerFactor float64) CableForDrop {
	for _, size := range sizes {
		drop := VoltageDropPct(currentA, lengthM, size.MM2, voltageV, phases, powerFactor, 75)
		if drop.DropPct <= targetPct {
			return CableForDrop{
				SelectedSize: size.Size,
				SizeMM2:      size.MM2,
				DropPct:      drop.DropPct,
				TargetPct:    targetPct,
				MeetsTarget:  true,
			}
		}
	}

	return CableForDrop{
		SelectedSize: "Exceeds available sizes",
		TargetPct:    targetPct,
		MeetsTarget:  false,
	}
}

// TotalVoltageDrop is the feeder plus branch drop check against the
// 5% total recommendation.
type TotalVoltageDrop struct {
	FeederPct     float64 `yaml:"feeder_vd_pct"`
	BranchPct     float64 `yaml:"branch_vd_pct"`
	TotalPct      float64 `yaml:"total_vd_pct"`
	TargetMaxPct  float64 `yaml:"target_max_pct"`
	Compliant     bool    `yaml:"compliant"`
	Notes         string  `yaml:"notes"`
	CodeReference string  `yaml:"code_reference"`
}

// CheckTotalVoltageDrop sums the feeder and branch drops. The drops
// are approximately additive at these magnitudes.
func CheckTotalVoltageDrop(feederPct, branchPct float64) TotalVoltageDrop {
	total := feederPct + branchPct
	compliant := total <= 5.0

	notes := fmt.Sprintf("Total voltage drop %.1f%% meets NEC recommendation (<=5%%)", total)
	if !compliant {
		notes = fmt.Sprintf("Total voltage drop %.1f%% EXCEEDS NEC 5%% recommendation", total)
	}

	return TotalVoltageDrop{
		FeederPct:     feederPct,
		BranchPct:     branchPct,
		TotalPct:      round2(total),
		TargetMaxPct:  5.0,
		Compliant:     compliant,
		Notes:         notes,
		CodeReference: "NEC 210.19(A)(1) Informational Note No. 4",
	}
}
