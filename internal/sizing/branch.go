package sizing

import "fmt"

// SCPDevice is the branch short-circuit protective device type per
// NEC Table 430.52.
type SCPDevice string

const (
	DualElementFuse     SCPDevice = "dual_element_fuse"
	NonTimeDelayFuse    SCPDevice = "non_time_delay_fuse"
	InverseTimeCB       SCPDevice = "inverse_time_cb"
	InstantaneousTripCB SCPDevice = "instantaneous_trip_cb"
)

type deviceLimit struct {
	MaxPct              float64
	ExceptionPct        float64
	ExceptionPctDesignB float64
	Description         string
}

// Maximum SCPD percentages of table FLC per NEC Table 430.52.
var deviceLimits = map[SCPDevice]deviceLimit{
	DualElementFuse: {
		MaxPct:       175,
		ExceptionPct: 225,
		Description:  "Dual-element time-delay fuse",
	},
	NonTimeDelayFuse: {
		MaxPct:       300,
		ExceptionPct: 400,
		Description:  "Non-time-delay fuse",
	},
	InverseTimeCB: {
		MaxPct:       250,
		ExceptionPct: 400,
		Description:  "Inverse time circuit breaker",
	},
	InstantaneousTripCB: {
		MaxPct:              800,
		ExceptionPct:        1100,
		ExceptionPctDesignB: 1300,
		Description:         "Instantaneous trip circuit breaker (MCP)",
	},
}

// ConductorResult is the minimum branch conductor ampacity per
// NEC 430.22(A).
type ConductorResult struct {
	MinAmpacityA  float64 `yaml:"min_ampacity_a"`
	MotorFLCA     float64 `yaml:"motor_flc_a"`
	Multiplier    float64 `yaml:"multiplier"`
	CodeReference string  `yaml:"code_reference"`
	Notes         string  `yaml:"notes"`
}

// BranchConductorAmpacity sizes the branch conductor at 125% of the
// table FLC per NEC 430.22(A).
func BranchConductorAmpacity(flcTableA float64) ConductorResult {
	return ConductorResult{
		MinAmpacityA:  round1(1.25 * flcTableA),
		MotorFLCA:     flcTableA,
		Multiplier:    1.25,
		CodeReference: "NEC 430.22(A)",
		Notes:         "Branch conductor ampacity >= 125% x motor FLC (table value)",
	}
}

// SCPDMaxResult is the 430.52 ceiling for one device type.
type SCPDMaxResult struct {
	MaxRatingA        float64   `yaml:"max_rating_a"`
	CalculatedA       float64   `yaml:"calculated_a"`
	MotorFLCA         float64   `yaml:"motor_flc_a"`
	Device            SCPDevice `yaml:"device_type"`
	DeviceDescription string    `yaml:"device_description"`
	Percentage        float64   `yaml:"percentage"`
	UseException      bool      `yaml:"use_exception"`
	NextSizeUpApplied bool      `yaml:"next_size_up_applied"`
	CodeReference     string    `yaml:"code_reference"`
	Notes             string    `yaml:"notes"`
}

// BranchSCPDMax computes the maximum SCPD rating per NEC 430.52 with
// the next-size-up rule of 430.52(C)(1) Exception 1. The next-size-up
// rule does not apply to instantaneous-trip devices, whose trip is
// adjustable.
func BranchSCPDMax(flcTableA float64, device SCPDevice, useException, designBEnergyEfficient bool) SCPDMaxResult {
	limits, ok := deviceLimits[device]
	if !ok {
		device = DualElementFuse
		limits = deviceLimits[device]
	}

	pct := limits.MaxPct
	if useException {
		pct = limits.ExceptionPct
		if device == InstantaneousTripCB && designBEnergyEfficient {
			pct = limits.ExceptionPctDesignB
		}
	}

	calculated := flcTableA * pct / 100

	maxRating := calculated
	nextSizeUp := device != InstantaneousTripCB
	if nextSizeUp {
		maxRating = nextStandardOCPD(calculated)
	}

	return SCPDMaxResult{
		MaxRatingA:        round0(maxRating),
		CalculatedA:       round1(calculated),
		MotorFLCA:         flcTableA,
		Device:            device,
		DeviceDescription: limits.Description,
		Percentage:        pct,
		UseException:      useException,
		NextSizeUpApplied: nextSizeUp,
		CodeReference:     "NEC 430.52, Table 430.52",
		Notes:             fmt.Sprintf("%.0f%% x %gA FLC = %.1fA", pct, flcTableA, calculated),
	}
}

// SCPDSelection is the selected branch SCPD rating with its basis.
type SCPDSelection struct {
	SelectedRatingA float64   `yaml:"selected_rating_a"`
	MaxAllowedA     float64   `yaml:"max_allowed_a"`
	MotorFLCA       float64   `yaml:"motor_flc_a"`
	MotorLRAA       float64   `yaml:"motor_lra_a"`
	Device          SCPDevice `yaml:"device_type"`
	VFDLimited      bool      `yaml:"vfd_limited"`
	VFDMaxSCPDA     float64   `yaml:"vfd_max_scpd_a"`
	ExceptionUsed   bool      `yaml:"exception_used"`
	StartingConcern bool      `yaml:"starting_concern"`
	CodeReference   string    `yaml:"code_reference"`
	SizingBasis     string    `yaml:"sizing_basis"`
}

// SelectBranchSCPD picks a branch SCPD rating within the 430.52
// ceiling. When the standard selection would sit below half the
// locked-rotor current the device may not ride through starting; the
// exception percentage is then tried, unless a VFD marking already
// caps the rating. lraA and vfdMaxSCPDA of 0 mean unknown/none.
func SelectBranchSCPD(flcTableA, lraA float64, device SCPDevice, vfdMaxSCPDA float64) SCPDSelection {
	result := BranchSCPDMax(flcTableA, device, false, false)
	maxRating := result.MaxRatingA

	vfdLimited := false
	if vfdMaxSCPDA > 0 && vfdMaxSCPDA < maxRating {
		maxRating = vfdMaxSCPDA
		vfdLimited = true
	}

	selected := standardOCPDBetween(flcTableA, maxRating)
	if selected == 0 {
		selected = maxRating
	}

	startingConcern := false
	exceptionUsed := false

	if lraA > 0 && device != InstantaneousTripCB && selected < lraA*0.5 {
		startingConcern = true

		if !vfdLimited {
			resultExc := BranchSCPDMax(flcTableA, device, true, false)
			if selectedExc := standardOCPDBetween(lraA*0.5, resultExc.MaxRatingA); selectedExc > 0 {
				selected = selectedExc
				exceptionUsed = true
				result = resultExc
			}
		}
	}

	basis := fmt.Sprintf("NEC 430.52: %.0f%% x %gA FLC = %.1fA, selected %.0fA",
		result.Percentage, flcTableA, result.CalculatedA, selected)
	if vfdLimited {
		basis += " (VFD limited)"
	}
	if exceptionUsed {
		basis += " (exception applied)"
	}

	return SCPDSelection{
		SelectedRatingA: selected,
		MaxAllowedA:     result.MaxRatingA,
		MotorFLCA:       flcTableA,
		MotorLRAA:       lraA,
		Device:          device,
		VFDLimited:      vfdLimited,
		VFDMaxSCPDA:     vfdMaxSCPDA,
		ExceptionUsed:   exceptionUsed,
		StartingConcern: startingConcern,
		CodeReference:   "NEC 430.52",
		SizingBasis:     basis,
	}
}

// RecommendedFuseClass picks a fuse class for the required SCCR.
// Class J where current limitation is needed, RK1 at 50 kA and above,
// RK5 otherwise.
func RecommendedFuseClass(sccrRequiredKA float64, currentLimitingRequired bool) string {
	switch {
	case sccrRequiredKA >= 100 || currentLimitingRequired:
		return "J"
	case sccrRequiredKA >= 50:
		return "RK1"
	default:
		return "RK5"
	}
}
