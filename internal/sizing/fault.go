package sizing

import (
	"fmt"
	"math"

	"plantload/internal/models"
)

// FaultCurrentResult is a preliminary available-fault-current figure
// computed from an assumed transformer on the infinite-bus method.
// Ignoring utility impedance gives a higher (conservative) value,
// which is what SCCR validation needs when real data is missing.
type FaultCurrentResult struct {
	AvailableFaultKA   float64 `yaml:"available_fault_ka"`
	TransformerKVA     float64 `yaml:"transformer_kva"`
	TransformerZPct    float64 `yaml:"transformer_z_pct"`
	SecondaryVoltageV  float64 `yaml:"secondary_voltage"`
	RatedCurrentA      float64 `yaml:"i_rated_a"`
	Source             string  `yaml:"source"`
	CalculationMethod  string  `yaml:"calculation_method"`
	Warning            string  `yaml:"warning"`
}

// PreliminaryFaultCurrent computes I_sc = I_rated / Z_pu at the
// transformer secondary, assuming an infinite bus.
func PreliminaryFaultCurrent(transformerKVA, zPct, secondaryVoltageV float64, phases int) FaultCurrentResult {
	var iRated float64
	if phases == 3 {
		iRated = (transformerKVA * 1000) / (math.Sqrt(3) * secondaryVoltageV)
	} else {
		iRated = (transformerKVA * 1000) / secondaryVoltageV
	}

	iSC := iRated / (zPct / 100)

	return FaultCurrentResult{
		AvailableFaultKA:  round1(iSC / 1000),
		TransformerKVA:    transformerKVA,
		TransformerZPct:   zPct,
		SecondaryVoltageV: secondaryVoltageV,
		RatedCurrentA:     round1(iRated),
		Source:            "calculated_from_assumed_transformer",
		CalculationMethod: "infinite_bus",
		Warning:           "PRELIMINARY - verify with utility coordination study",
	}
}

// DefaultFault is the conservative fallback fault current for a point
// in the distribution system.
type DefaultFault struct {
	AvailableFaultKA float64 `yaml:"available_fault_ka"`
	Location         string  `yaml:"location"`
	TypicalRange     string  `yaml:"typical_range"`
	Source           string  `yaml:"source"`
	Verified         bool    `yaml:"verified"`
	Warning          string  `yaml:"warning"`
}

var defaultFaultCurrents = map[string]DefaultFault{
	"service_entrance":      {AvailableFaultKA: 65, TypicalRange: "35-100 kA"},
	"transformer_secondary": {AvailableFaultKA: 50, TypicalRange: "22-65 kA"},
	"main_switchboard":      {AvailableFaultKA: 42, TypicalRange: "18-50 kA"},
	"mcc_bus":               {AvailableFaultKA: 50, TypicalRange: "14-50 kA"},
}

// DefaultFaultCurrent returns the worst-case default for a location.
// Unknown locations fall back to the MCC bus default.
func DefaultFaultCurrent(location string) DefaultFault {
	d, ok := defaultFaultCurrents[location]
	if !ok {
		location = "mcc_bus"
		d = defaultFaultCurrents[location]
	}
	d.Location = location
	d.Source = "conservative_default"
	d.Verified = false
	d.Warning = "DEFAULT VALUE - NOT FOR FINAL VALIDATION. " +
		"Conservative (high) value for preliminary SCCR check only. " +
		"Actual value requires utility coordination and/or short-circuit study."
	return d
}

// SCCRValidation compares an equipment short-circuit current rating
// against the available fault current at its location.
type SCCRValidation struct {
	EquipmentTag     string  `yaml:"equipment_tag"`
	AvailableFaultKA float64 `yaml:"available_fault_ka"`
	EquipmentSCCRKA  float64 `yaml:"equipment_sccr_ka"`
	Compliant        bool    `yaml:"compliant"`
	MarginKA         float64 `yaml:"margin_ka"`
	MarginPct        float64 `yaml:"margin_pct"`
	ShortfallKA      float64 `yaml:"shortfall_ka,omitempty"`
	Status           string  `yaml:"status"`
	Notes            string  `yaml:"notes,omitempty"`
	Recommendation   string  `yaml:"recommendation,omitempty"`
}

// ValidateSCCR checks equipment SCCR >= available fault current.
func ValidateSCCR(availableFaultKA, equipmentSCCRKA float64, equipmentTag string) SCCRValidation {
	compliant := equipmentSCCRKA >= availableFaultKA
	marginPct := (equipmentSCCRKA - availableFaultKA) / availableFaultKA * 100

	result := SCCRValidation{
		EquipmentTag:     equipmentTag,
		AvailableFaultKA: availableFaultKA,
		EquipmentSCCRKA:  equipmentSCCRKA,
		Compliant:        compliant,
		MarginKA:         round1(equipmentSCCRKA - availableFaultKA),
		MarginPct:        round1(marginPct),
	}

	if compliant {
		result.Status = "PASS"
		result.Notes = fmt.Sprintf("SCCR adequate with %.1f%% margin", result.MarginPct)
	} else {
		result.Status = "FAIL"
		result.ShortfallKA = round1(availableFaultKA - equipmentSCCRKA)
		result.Recommendation = fmt.Sprintf(
			"Equipment SCCR (%g kA) is less than available fault current (%g kA). "+
				"Options: (1) Select higher SCCR equipment, "+
				"(2) Add current-limiting protection, "+
				"(3) Verify actual fault current with study",
			equipmentSCCRKA, availableFaultKA)
	}

	return result
}

// FaultConfig is the resolved fault current context for a project:
// the value at the MCC bus plus where it came from. Verified stays
// false for everything short of a utility coordination study.
type FaultConfig struct {
	AtMCCBusKA      float64 `yaml:"at_mcc_bus_ka"`
	Source          string  `yaml:"source"`
	Verified        bool    `yaml:"verified"`
	TransformerKVA  float64 `yaml:"transformer_kva,omitempty"`
	TransformerZPct float64 `yaml:"transformer_z_pct,omitempty"`
	Warning         string  `yaml:"warning,omitempty"`
}

// ResolveFaultConfig resolves the fault current for a project in
// order of preference: user-supplied value, calculation from supplied
// transformer data, conservative default.
func ResolveFaultConfig(meta models.ProjectMetadata, voltageV int) FaultConfig {
	if meta.AvailableFaultKA != nil {
		source := meta.FaultCurrentSource
		if source == "" {
			source = "assumption"
		}
		verified := source == "verified"
		warning := ""
		if !verified {
			warning = "User-provided value - verify with utility coordination"
		}
		return FaultConfig{
			AtMCCBusKA: *meta.AvailableFaultKA,
			Source:     source,
			Verified:   verified,
			Warning:    warning,
		}
	}

	if meta.TransformerKVA > 0 {
		zPct := meta.TransformerZPct
		if zPct <= 0 {
			zPct = 5.75
		}
		result := PreliminaryFaultCurrent(meta.TransformerKVA, zPct, float64(voltageV), 3)
		return FaultConfig{
			AtMCCBusKA:      result.AvailableFaultKA,
			Source:          "calculated_from_transformer",
			Verified:        false,
			TransformerKVA:  meta.TransformerKVA,
			TransformerZPct: zPct,
			Warning:         result.Warning,
		}
	}

	d := DefaultFaultCurrent("mcc_bus")
	return FaultConfig{
		AtMCCBusKA: d.AvailableFaultKA,
		Source:     d.Source,
		Verified:   false,
		Warning:    d.Warning,
	}
}
