package models

import (
	"regexp"
	"strings"
)

// MotorStandard selects which code tables drive FLC lookups.
type MotorStandard string

const (
	StandardIEC  MotorStandard = "IEC"
	StandardNEMA MotorStandard = "NEMA"
)

// EquipmentClass is the closed equipment category, resolved once at
// ingestion from the type code so downstream dispatch never matches
// substrings again.
type EquipmentClass string

const (
	ClassPump       EquipmentClass = "pump"
	ClassBlower     EquipmentClass = "blower"
	ClassMixer      EquipmentClass = "mixer"
	ClassScreen     EquipmentClass = "screen"
	ClassConveyor   EquipmentClass = "conveyor"
	ClassCompressor EquipmentClass = "compressor"
	ClassFan        EquipmentClass = "fan"
	ClassClarifier  EquipmentClass = "clarifier"
	ClassOther      EquipmentClass = "other"
)

// ParseEquipmentClass maps an equipment type code (P, PU, B, BL, AG, MX,
// SC, CN, C, FN, TH, CL, CF, BF) to its class.
func ParseEquipmentClass(typeCode string) EquipmentClass {
	switch strings.ToUpper(strings.TrimSpace(typeCode)) {
	case "P", "PU":
		return ClassPump
	case "B", "BL":
		return ClassBlower
	case "AG", "MX":
		return ClassMixer
	case "SC":
		return ClassScreen
	case "CN", "CF", "BF":
		return ClassConveyor
	case "C":
		return ClassCompressor
	case "FN":
		return ClassFan
	case "TH", "CL":
		return ClassClarifier
	default:
		return ClassOther
	}
}

var tagTypePattern = regexp.MustCompile(`^[A-Z]?\d{3,4}-([A-Z]{1,5})-\d+`)

// TypeCodeFromTag extracts the type code from an AREA-TYPE-SEQ tag
// (e.g. "200-B-01A" -> "B"). Returns "" when the tag does not match.
func TypeCodeFromTag(tag string) string {
	m := tagTypePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(tag)))
	if m == nil {
		return ""
	}
	return m[1]
}

// FeederClass is the closed starter/feeder category.
type FeederClass string

const (
	FeederDOL         FeederClass = "dol"
	FeederVFD         FeederClass = "vfd"
	FeederSoftStarter FeederClass = "soft_starter"
	FeederVendor      FeederClass = "vendor"
)

// ClassifyFeeder resolves a free-text feeder type ("VFD", "SOFT STARTER",
// "VENDOR PACKAGE", "DOL", ...) into a FeederClass. Priority order matters:
// VFD before SOFT before VENDOR, default DOL.
func ClassifyFeeder(feederType string) FeederClass {
	upper := strings.ToUpper(feederType)
	switch {
	case strings.Contains(upper, "VFD"):
		return FeederVFD
	case strings.Contains(upper, "SOFT"):
		return FeederSoftStarter
	case strings.Contains(upper, "VENDOR"):
		return FeederVendor
	default:
		return FeederDOL
	}
}

// EquipmentRecord is one row of the project equipment list. It is
// immutable once read; the pipeline only derives from it.
type EquipmentRecord struct {
	Tag             string  `yaml:"tag"`
	Description     string  `yaml:"description"`
	TypeCode        string  `yaml:"equipment_type"`
	ProcessUnitType string  `yaml:"process_unit_type"`
	Area            int     `yaml:"area"`
	RatedKW         float64 `yaml:"power_kw"`

	// Capacity descriptors: structured value+unit when the list carries
	// them, otherwise the free-text capacity string is parsed.
	CapacityValue float64 `yaml:"capacity_value"`
	CapacityUnit  string  `yaml:"capacity_unit"`
	Capacity      string  `yaml:"capacity"`

	// Optional duty fields supplied directly on the list row.
	HeadM        float64 `yaml:"head_m"`
	PressureBarG float64 `yaml:"pressure_bar_g"`

	FeederType   string `yaml:"feeder_type"`
	Quantity     int    `yaml:"quantity"`
	QuantityNote string `yaml:"quantity_note"`
	MCCPanel     string `yaml:"mcc_panel"`

	MotorPoles      int     `yaml:"motor_poles"`
	EfficiencyClass string  `yaml:"efficiency_class"`
	EfficiencyPct   float64 `yaml:"efficiency_pct"`
	PowerFactor     float64 `yaml:"pf"`
	FLANameplateA   float64 `yaml:"fla_nameplate_a"`
	ServiceFactor   float64 `yaml:"service_factor"`
	CableLengthM    float64 `yaml:"cable_length_m"`

	// Resolved at ingestion, not read from the file.
	Class  EquipmentClass `yaml:"-"`
	Feeder FeederClass    `yaml:"-"`
}

// PumpDuty is the pump duty-point payload.
type PumpDuty struct {
	FlowM3h    float64 `yaml:"flow_m3h"`
	HeadM      float64 `yaml:"head_m"`
	Efficiency float64 `yaml:"pump_eff"`
}

// BlowerDuty is the blower duty-point payload. Pressures are absolute bar.
type BlowerDuty struct {
	FlowNm3h   float64 `yaml:"flow_nm3h"`
	InletBar   float64 `yaml:"p1_bar"`
	OutletBar  float64 `yaml:"p2_bar"`
	Efficiency float64 `yaml:"blower_eff"`
}

// MixerDuty is the mixer/agitator duty-point payload.
type MixerDuty struct {
	VolumeM3 float64 `yaml:"volume_m3"`
	WPerM3   float64 `yaml:"w_per_m3"`
}

// DutyPoint is the normalized duty point for one equipment item. Created
// once by the extractor and never mutated afterwards. Exactly one of the
// payload pointers is set when Found is true (or none, when only a brake
// power was recovered).
type DutyPoint struct {
	EquipmentTag string         `yaml:"equipment_tag"`
	Class        EquipmentClass `yaml:"equipment_type"`
	Found        bool           `yaml:"duty_point_found"`
	Source       string         `yaml:"source"`

	Pump   *PumpDuty   `yaml:"pump,omitempty"`
	Blower *BlowerDuty `yaml:"blower,omitempty"`
	Mixer  *MixerDuty  `yaml:"mixer,omitempty"`

	// BrakeKW is the artifact-supplied shaft power, when the upstream
	// sizing already computed one.
	BrakeKW *float64 `yaml:"brake_kw,omitempty"`
}

// FLCProvenance records where the table FLC came from. It travels with the
// load record so every downstream sizing step can tell a code-table value
// from a calculated fallback.
type FLCProvenance struct {
	Source         string `yaml:"source"` // "table" or "calculated"
	SelectionStage string `yaml:"selection_stage"`
	Verified       bool   `yaml:"verified"`
	Notes          string `yaml:"notes"`
}

// LoadRecord is the fully-populated electrical load entry for one
// equipment item. FLCTableA (code table, conductor/SCPD sizing) and
// FLANameplateA (nameplate, overload sizing) are independent values with
// independent provenance; conflating them is a defect.
type LoadRecord struct {
	EquipmentTag    string         `yaml:"equipment_tag"`
	Description     string         `yaml:"description"`
	ProcessUnitType string         `yaml:"process_unit_type"`
	Area            int            `yaml:"area"`
	TypeCode        string         `yaml:"equipment_type"`
	Class           EquipmentClass `yaml:"equipment_class"`

	RatedKW         float64 `yaml:"rated_kw"`
	VoltageV        int     `yaml:"voltage_v"`
	Phases          int     `yaml:"phases"`
	FrequencyHz     int     `yaml:"frequency_hz"`
	MotorPoles      int     `yaml:"motor_poles"`
	EfficiencyPct   float64 `yaml:"efficiency_pct"`
	PowerFactor     float64 `yaml:"pf"`
	EfficiencyClass string  `yaml:"efficiency_class"`
	ServiceFactor   float64 `yaml:"service_factor"`

	FLCTableA     float64       `yaml:"flc_table_a"`
	FLANameplateA float64       `yaml:"fla_nameplate_a"`
	LRAA          float64       `yaml:"lra"`
	LRAMultiplier float64       `yaml:"lra_multiplier"`
	FLCSource     string        `yaml:"flc_source"`
	FLCProvenance FLCProvenance `yaml:"flc_provenance"`

	FeederType string      `yaml:"feeder_type"`
	Feeder     FeederClass `yaml:"feeder_class"`

	BrakeKW     float64 `yaml:"brake_kw"`
	BrakeSource string  `yaml:"brake_kw_source"`
	AbsorbedKW  float64 `yaml:"absorbed_kw"`

	DutyCycle          string  `yaml:"duty_cycle"`
	RunningHoursPerDay float64 `yaml:"running_hours_per_day"`
	LoadFactor         float64 `yaml:"load_factor"`
	DiversityFactor    float64 `yaml:"diversity_factor"`
	Quantity           int     `yaml:"quantity"`
	QuantityNote       string  `yaml:"quantity_note"`
	QuantityWorking    int     `yaml:"quantity_working"`
	QuantityStandby    int     `yaml:"quantity_standby"`

	RunningKW float64 `yaml:"running_kw"`
	DemandKW  float64 `yaml:"demand_kw"`
	DailyKWh  float64 `yaml:"daily_kwh"`

	MCCPanel        string `yaml:"mcc_panel"`
	CableLengthM    float64 `yaml:"cable_length_m,omitempty"`
	DutyPointSource string `yaml:"duty_point_source"`
}

// FeederCounts breaks a panel's feeders down by starter class.
type FeederCounts struct {
	DOL         int `yaml:"dol"`
	VFD         int `yaml:"vfd"`
	SoftStarter int `yaml:"soft_starter"`
	Vendor      int `yaml:"vendor"`
}

// Total returns the feeder count across all classes.
func (c FeederCounts) Total() int {
	return c.DOL + c.VFD + c.SoftStarter + c.Vendor
}

// PanelSummary is the rollup for one MCC panel. It is derived entirely
// from its member load records and recomputed whenever the load set
// changes.
type PanelSummary struct {
	PanelTag       string  `yaml:"panel_tag"`
	Area           int     `yaml:"area"`
	SupplyVoltageV float64 `yaml:"supply_voltage"`

	ConnectedKW           float64 `yaml:"connected_kw"`
	RunningKW             float64 `yaml:"running_kw"`
	DemandKW              float64 `yaml:"demand_kw"`
	PanelDiversity        float64 `yaml:"panel_diversity"`
	DemandWithDiversityKW float64 `yaml:"demand_with_diversity_kw"`

	AveragePF  float64 `yaml:"average_pf"`
	DemandKVA  float64 `yaml:"demand_kva"`
	DemandAmps float64 `yaml:"demand_amps"`

	FeederCounts FeederCounts `yaml:"feeder_counts"`
	FeederCount  int          `yaml:"feeder_count"`

	MainBreakerA float64 `yaml:"main_breaker_a"`
	BusRating    string  `yaml:"bus_rating"`

	LoadTags []string `yaml:"load_tags"`
}

// PlantTotals sums the panel rollups and applies the plant-level
// diversity.
type PlantTotals struct {
	TotalConnectedKW  float64      `yaml:"total_connected_kw"`
	TotalRunningKW    float64      `yaml:"total_running_kw"`
	TotalDemandKW     float64      `yaml:"total_demand_kw"`
	PlantDiversity    float64      `yaml:"plant_diversity"`
	PlantDemandKW     float64      `yaml:"plant_demand_kw"`
	PanelCount        int          `yaml:"panel_count"`
	TotalFeederCounts FeederCounts `yaml:"total_feeder_counts"`
	TotalFeeders      int          `yaml:"total_feeders"`
}

// Tier is the report-completeness level: 1 load study, 2 preliminary
// schedule, 3 code-compliant.
type Tier int

const (
	TierLoadStudy           Tier = 1
	TierPreliminarySchedule Tier = 2
	TierCodeCompliant       Tier = 3
)

// Name returns the human label used in reports.
func (t Tier) Name() string {
	switch t {
	case TierCodeCompliant:
		return "Code-Compliant"
	case TierPreliminarySchedule:
		return "Preliminary Schedule"
	default:
		return "Load Study"
	}
}

// LoadCompleteness is the per-load field audit for one tier.
type LoadCompleteness struct {
	EquipmentTag    string   `yaml:"equipment_tag"`
	Complete        bool     `yaml:"complete"`
	CompletenessPct float64  `yaml:"completeness_pct"`
	PresentFields   []string `yaml:"present_fields"`
	MissingFields   []string `yaml:"missing_fields"`
}

// TierEligibility is the gate result for a whole load set. It is a pure
// function of (loads, metadata) and carries the independent per-tier
// gates alongside the highest tier whose conditions all hold.
type TierEligibility struct {
	EligibleTier           Tier               `yaml:"tier"`
	TierName               string             `yaml:"tier_name"`
	OverallCompletenessPct float64            `yaml:"completeness_pct"`
	TierGates              map[Tier]bool      `yaml:"tier_gates"`
	Tier2CompleteLoads     int                `yaml:"tier_2_complete_loads"`
	TotalLoads             int                `yaml:"total_loads"`
	Tier2ThresholdPct      float64            `yaml:"tier_2_threshold_pct"`
	LoadCompleteness       []LoadCompleteness `yaml:"load_completeness"`
}

// ProjectMetadata carries project-level context. For fault current and
// cable lengths it is the presence and verification flag, not the value,
// that changes behavior downstream.
type ProjectMetadata struct {
	ProjectID   string  `yaml:"project_id"`
	CapacityMLD float64 `yaml:"capacity_mld"`

	AvailableFaultKA   *float64 `yaml:"available_fault_ka"`
	FaultCurrentSource string   `yaml:"fault_current_source"`
	TransformerKVA     float64  `yaml:"transformer_kva"`
	TransformerZPct    float64  `yaml:"transformer_z_pct"`

	CableLengthsVerified bool   `yaml:"cable_lengths_verified"`
	CableLengthsSource   string `yaml:"cable_lengths_source"`
}

// FaultCurrentVerified reports whether the supplied fault current is
// independently verified (utility coordination), not merely present.
func (m ProjectMetadata) FaultCurrentVerified() bool {
	return m.FaultCurrentSource == "verified"
}
