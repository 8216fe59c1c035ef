package sizing

import "fmt"

// VFDConductorResult is the supply conductor requirement per
// NEC 430.122(A): 125% of the drive's rated input current, with an
// optional harmonic derating on top.
type VFDConductorResult struct {
	MinAmpacityA     float64 `yaml:"min_ampacity_a"`
	VFDInputCurrentA float64 `yaml:"vfd_input_current_a"`
	Multiplier       float64 `yaml:"multiplier"`
	HarmonicDerating float64 `yaml:"harmonic_derating"`
	CodeReference    string  `yaml:"code_reference"`
	Notes            string  `yaml:"notes"`
}

// VFDSupplyConductorAmpacity sizes the drive supply conductor per
// NEC 430.122(A). harmonicDerating of 0 means none (1.0).
func VFDSupplyConductorAmpacity(vfdInputA, harmonicDerating float64) VFDConductorResult {
	if harmonicDerating <= 0 {
		harmonicDerating = 1.0
	}
	base := 1.25 * vfdInputA
	minAmpacity := base * harmonicDerating

	notes := fmt.Sprintf("VFD supply conductor >= 125%% x VFD input current: 125%% x %gA = %.1fA", vfdInputA, base)
	if harmonicDerating != 1.0 {
		notes += fmt.Sprintf(", with harmonic derating %g: %.1fA", harmonicDerating, minAmpacity)
	}

	return VFDConductorResult{
		MinAmpacityA:     round1(minAmpacity),
		VFDInputCurrentA: vfdInputA,
		Multiplier:       1.25,
		HarmonicDerating: harmonicDerating,
		CodeReference:    "NEC 430.122(A)",
		Notes:            notes,
	}
}

// VFDSCPDResult is the branch SCPD selection for a drive circuit per
// NEC 430.130: sized from motor FLC per 430.52 unless the drive
// marking imposes a lower maximum.
type VFDSCPDResult struct {
	SelectedRatingA  float64   `yaml:"selected_rating_a"`
	MaxPerNECA       float64   `yaml:"max_per_nec_a"`
	MaxPerVFDA       float64   `yaml:"max_per_vfd_a"`
	MaxEffectiveA    float64   `yaml:"max_effective_a"`
	LimitedBy        string    `yaml:"limited_by"`
	MotorFLCA        float64   `yaml:"motor_flc_a"`
	VFDInputCurrentA float64   `yaml:"vfd_input_current_a"`
	Device           SCPDevice `yaml:"device_type"`
	CodeReference    string    `yaml:"code_reference"`
	SizingBasis      string    `yaml:"sizing_basis"`
}

// VFDBranchSCPD sizes the drive branch SCPD per NEC 430.130. The
// selected rating must carry the drive input current and stay within
// the lower of the 430.52 ceiling and the drive marking.
// vfdMaxSCPDA of 0 means no marking.
func VFDBranchSCPD(flcTableA, vfdInputA, vfdMaxSCPDA float64, device SCPDevice) VFDSCPDResult {
	maxPct := 175.0
	if device == InverseTimeCB {
		maxPct = 250
	}

	calculated := flcTableA * maxPct / 100
	maxPerNEC := nextStandardOCPD(calculated)

	maxRating := maxPerNEC
	limitedBy := "nec_430_52"
	if vfdMaxSCPDA > 0 && vfdMaxSCPDA < maxPerNEC {
		maxRating = vfdMaxSCPDA
		limitedBy = "vfd_marking"
	}

	selected := standardOCPDBetween(vfdInputA, maxRating)
	if selected == 0 {
		selected = maxRating
	}

	basis := fmt.Sprintf("NEC 430.130: %.0f%% x %gA FLC = %.1fA, next size %.0fA",
		maxPct, flcTableA, calculated, maxPerNEC)
	if limitedBy == "vfd_marking" {
		basis += fmt.Sprintf(", limited by VFD marking to %gA", vfdMaxSCPDA)
	}

	return VFDSCPDResult{
		SelectedRatingA:  selected,
		MaxPerNECA:       maxPerNEC,
		MaxPerVFDA:       vfdMaxSCPDA,
		MaxEffectiveA:    maxRating,
		LimitedBy:        limitedBy,
		MotorFLCA:        flcTableA,
		VFDInputCurrentA: vfdInputA,
		Device:           device,
		CodeReference:    "NEC 430.130, 430.52",
		SizingBasis:      basis,
	}
}

// VFDInputEstimate is the estimated drive input current when no
// catalog or nameplate data is available. Input current runs above
// motor FLC because of drive losses and harmonic currents.
type VFDInputEstimate struct {
	EstimatedInputA float64 `yaml:"estimated_input_current_a"`
	MotorFLCA       float64 `yaml:"motor_flc_a"`
	Multiplier      float64 `yaml:"multiplier"`
	Source          string  `yaml:"source"`
	Warning         string  `yaml:"warning"`
}

// EstimateVFDInput estimates the drive input current from motor FLC.
// multiplier of 0 uses the 1.1 default.
func EstimateVFDInput(flcTableA, multiplier float64) VFDInputEstimate {
	if multiplier <= 0 {
		multiplier = 1.1
	}
	return VFDInputEstimate{
		EstimatedInputA: round1(flcTableA * multiplier),
		MotorFLCA:       flcTableA,
		Multiplier:      multiplier,
		Source:          "estimate",
		Warning:         "ESTIMATE ONLY - Use actual VFD catalog data when available",
	}
}

// VFDCircuit is the complete drive circuit sizing: supply conductor,
// branch SCPD and the integral overload configuration.
type VFDCircuit struct {
	MotorKW   float64 `yaml:"motor_kw"`
	MotorFLCA float64 `yaml:"motor_flc_a"`
	VoltageV  float64 `yaml:"voltage_v"`

	VFDInputCurrentA float64 `yaml:"vfd_input_current_a"`
	VFDMaxSCPDA      float64 `yaml:"vfd_max_scpd_a"`
	DataSource       string  `yaml:"vfd_data_source"`

	ConductorMinAmpacityA float64 `yaml:"conductor_min_ampacity_a"`

	BranchSCPDRatingA   float64   `yaml:"branch_scpd_rating_a"`
	BranchSCPDMaxA      float64   `yaml:"branch_scpd_max_a"`
	BranchSCPDLimitedBy string    `yaml:"branch_scpd_limited_by"`
	BranchSCPDDevice    SCPDevice `yaml:"branch_scpd_type"`

	OverloadType     string  `yaml:"overload_type"`
	OverloadSettingA float64 `yaml:"overload_setting_a"`

	Conductor VFDConductorResult `yaml:"conductor_sizing"`
	SCPD      VFDSCPDResult      `yaml:"scpd_sizing"`

	CodeReferences []string `yaml:"code_references"`
	Warning        string   `yaml:"warning,omitempty"`
}

// SizeVFDCircuit sizes a complete drive circuit. When vfdInputA is 0
// the input current is estimated from motor FLC and the result is
// flagged for verification against the drive selection.
func SizeVFDCircuit(motorKW, flcTableA, voltageV, vfdInputA, vfdMaxSCPDA float64, device SCPDevice, harmonicDerating float64) VFDCircuit {
	dataSource := "user_provided"
	warning := ""
	if vfdInputA <= 0 {
		estimate := EstimateVFDInput(flcTableA, 0)
		vfdInputA = estimate.EstimatedInputA
		dataSource = "estimate"
		warning = "VFD input current is ESTIMATED. Verify with actual VFD selection from manufacturer catalog."
	}

	conductor := VFDSupplyConductorAmpacity(vfdInputA, harmonicDerating)
	scpd := VFDBranchSCPD(flcTableA, vfdInputA, vfdMaxSCPDA, device)

	return VFDCircuit{
		MotorKW:               motorKW,
		MotorFLCA:             flcTableA,
		VoltageV:              voltageV,
		VFDInputCurrentA:      vfdInputA,
		VFDMaxSCPDA:           vfdMaxSCPDA,
		DataSource:            dataSource,
		ConductorMinAmpacityA: conductor.MinAmpacityA,
		BranchSCPDRatingA:     scpd.SelectedRatingA,
		BranchSCPDMaxA:        scpd.MaxEffectiveA,
		BranchSCPDLimitedBy:   scpd.LimitedBy,
		BranchSCPDDevice:      device,
		OverloadType:          "VFD_INTEGRAL",
		OverloadSettingA:      flcTableA,
		Conductor:             conductor,
		SCPD:                  scpd,
		CodeReferences:        []string{"NEC 430.122", "NEC 430.130", "NEC 430.52"},
		Warning:               warning,
	}
}
