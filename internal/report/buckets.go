package report

import (
	"fmt"
	"math"
	"strings"

	"plantload/internal/mcc"
	"plantload/internal/models"
	"plantload/internal/sizing"
)

// Bucket is one MCC bucket specification, sized for panel builder
// costing. Spare buckets carry only identity and height.
type Bucket struct {
	BucketID         string  `yaml:"bucket_id"`
	PanelTag         string  `yaml:"panel_tag"`
	Position         string  `yaml:"position"`
	UnitType         string  `yaml:"unit_type"`
	MotorTag         string  `yaml:"motor_tag,omitempty"`
	MotorDescription string  `yaml:"motor_description,omitempty"`
	MotorRatedKW     float64 `yaml:"motor_rated_kw,omitempty"`
	FLCTableA        float64 `yaml:"flc_table_a,omitempty"`
	FLANameplateA    float64 `yaml:"fla_nameplate_a,omitempty"`
	LRAA             float64 `yaml:"lra,omitempty"`
	ServiceFactor    float64 `yaml:"service_factor,omitempty"`

	BranchSCPDType        string  `yaml:"branch_scpd_type,omitempty"`
	BranchSCPDRatingA     float64 `yaml:"branch_scpd_rating_a,omitempty"`
	BranchSCPDSizingBasis string  `yaml:"branch_scpd_sizing_basis,omitempty"`
	BranchSCPDFuseClass   string  `yaml:"branch_scpd_fuse_class,omitempty"`

	OverloadType        string  `yaml:"overload_type,omitempty"`
	OverloadSettingA    float64 `yaml:"overload_setting_a,omitempty"`
	OverloadClass       string  `yaml:"overload_class,omitempty"`
	OverloadSizingBasis string  `yaml:"overload_sizing_basis,omitempty"`

	VFDInputCurrentA      float64 `yaml:"vfd_input_current_a,omitempty"`
	ConductorMinAmpacityA float64 `yaml:"conductor_min_ampacity_a,omitempty"`
	ContactorRating       string  `yaml:"contactor_rating,omitempty"`

	SCCRKA     float64 `yaml:"sccr_ka,omitempty"`
	SCCRSource string  `yaml:"sccr_source,omitempty"`

	BucketHeightUnits int    `yaml:"bucket_height_units"`
	Withdrawable      bool   `yaml:"withdrawable"`
	Construction      string `yaml:"construction,omitempty"`
	ControlVoltageV   int    `yaml:"control_voltage,omitempty"`

	Coordination *CoordinationData     `yaml:"coordination_data,omitempty"`
	Provenance   *models.FLCProvenance `yaml:"provenance,omitempty"`
	Assumptions  *BucketAssumptions    `yaml:"assumption_flags,omitempty"`

	Notes string `yaml:"notes,omitempty"`
}

// CoordinationData carries what a future protective-device coordination
// study needs per bucket.
type CoordinationData struct {
	DeviceType               string  `yaml:"device_type"`
	CurveFamily              string  `yaml:"curve_family"`
	InrushMultiple           float64 `yaml:"inrush_multiple"`
	ExpectedStartTimeSec     float64 `yaml:"expected_start_time_sec"`
	AvailableFaultAtBucketKA float64 `yaml:"available_fault_at_bucket_ka"`
}

// BucketAssumptions flags the inputs that still rest on estimates.
type BucketAssumptions struct {
	CableLengthAssumed  bool `yaml:"cable_length_assumed"`
	FaultCurrentAssumed bool `yaml:"fault_current_assumed"`
}

// MCCSchedule is the complete bucket schedule for one panel.
type MCCSchedule struct {
	Panel          SchedulePanelSummary   `yaml:"panel_summary"`
	Buckets        []Bucket               `yaml:"buckets"`
	Feeder         sizing.MCCFeederSizing `yaml:"feeder_sizing"`
	CodeReferences []string               `yaml:"code_references"`
}

// SchedulePanelSummary is the per-lineup rollup of the bucket schedule.
type SchedulePanelSummary struct {
	PanelTag       string               `yaml:"panel_tag"`
	SupplyVoltageV float64              `yaml:"supply_voltage"`
	MotorStandard  models.MotorStandard `yaml:"motor_standard"`

	ConnectedKW      float64 `yaml:"connected_kw"`
	BucketCount      int     `yaml:"bucket_count"`
	SpareBucketCount int     `yaml:"spare_bucket_count"`

	FeederConductorMinA float64 `yaml:"feeder_conductor_min_a"`
	FeederOCPDMaxA      float64 `yaml:"feeder_ocpd_max_a"`
	MainBreakerA        float64 `yaml:"main_breaker_a"`
	BusRating           string  `yaml:"bus_rating"`

	AvailableFaultKA float64 `yaml:"available_fault_current_ka"`
	LineupSCCRKA     float64 `yaml:"lineup_sccr_ka"`
	SCCRSource       string  `yaml:"sccr_source"`
	SCCRCompliant    bool    `yaml:"sccr_compliant"`
	SCCRWarning      string  `yaml:"sccr_warning,omitempty"`

	TotalHeightInches float64 `yaml:"total_height_inches"`
	TotalHeightMM     float64 `yaml:"total_height_mm"`
	UnitType          string  `yaml:"unit_type"`
}

type scheduleOptions struct {
	faultKA       float64
	faultVerified bool
	device        sizing.SCPDevice
	withdrawable  bool
	spares        int
}

// unitType maps the starter class to the MCC unit designation. A
// reversing starter is only distinguishable from the free-text feeder
// type.
func unitType(load models.LoadRecord) string {
	switch load.Feeder {
	case models.FeederVFD:
		return "VFD"
	case models.FeederSoftStarter:
		return "SOFT_STARTER"
	case models.FeederVendor:
		return "FEEDER"
	}
	if strings.Contains(strings.ToUpper(load.FeederType), "REV") {
		return "FVR"
	}
	return "FVNR"
}

// bucketPosition converts a sequential bucket number to a section/row
// label (1A..1J, 2A..).
func bucketPosition(n int) string {
	return fmt.Sprintf("%d%c", (n-1)/10+1, rune('A'+(n-1)%10))
}

// bucketHeight estimates the bucket height in 6-inch standard units.
func bucketHeight(unit string, motorKW float64, withdrawable bool) int {
	height := 1
	switch unit {
	case "VFD":
		switch {
		case motorKW <= 5.5:
			height = 1
		case motorKW <= 22:
			height = 2
		case motorKW <= 90:
			height = 3
		default:
			height = 4
		}
	case "SOFT_STARTER":
		height = 2
		if motorKW > 22 {
			height = 3
		}
	case "FVNR", "FVR":
		switch {
		case motorKW <= 7.5:
			height = 1
		case motorKW <= 37:
			height = 2
		default:
			height = 3
		}
	}
	if withdrawable && height < 4 {
		height++
	}
	return height
}

func (a *Assembler) buildBucket(load models.LoadRecord, panelTag string, number int, opt scheduleOptions) Bucket {
	flc := load.FLCTableA
	fla := load.FLANameplateA
	if fla <= 0 {
		fla = flc * 0.95
	}
	lra := load.LRAA
	if lra <= 0 {
		lra = flc * 6
	}
	serviceFactor := load.ServiceFactor
	if serviceFactor <= 0 {
		serviceFactor = 1.0
		if a.standard == models.StandardNEMA {
			serviceFactor = 1.15
		}
	}

	unit := unitType(load)
	bucket := Bucket{
		BucketID:         fmt.Sprintf("%s-%02d", panelTag, number),
		PanelTag:         panelTag,
		Position:         bucketPosition(number),
		UnitType:         unit,
		MotorTag:         load.EquipmentTag,
		MotorDescription: load.Description,
		MotorRatedKW:     load.RatedKW,
		FLCTableA:        round1(flc),
		FLANameplateA:    round1(fla),
		LRAA:             math.Round(lra),
		ServiceFactor:    serviceFactor,
	}

	if unit == "VFD" {
		circuit := sizing.SizeVFDCircuit(load.RatedKW, flc, float64(a.voltageV), 0, 0, opt.device, 0)
		bucket.BranchSCPDType = strings.ToUpper(string(opt.device))
		bucket.BranchSCPDRatingA = circuit.BranchSCPDRatingA
		bucket.BranchSCPDSizingBasis = circuit.SCPD.SizingBasis
		bucket.OverloadType = "VFD_INTEGRAL"
		bucket.OverloadSettingA = round1(fla)
		bucket.OverloadClass = "10"
		bucket.VFDInputCurrentA = circuit.VFDInputCurrentA
		bucket.ConductorMinAmpacityA = circuit.ConductorMinAmpacityA
	} else {
		conductor := sizing.BranchConductorAmpacity(flc)
		scpd := sizing.SelectBranchSCPD(flc, lra, opt.device, 0)
		overload := sizing.SizeOverloadRelay(fla, serviceFactor, 8, string(load.Class), false, false)

		bucket.BranchSCPDType = strings.ToUpper(string(opt.device))
		bucket.BranchSCPDRatingA = scpd.SelectedRatingA
		bucket.BranchSCPDSizingBasis = scpd.SizingBasis
		bucket.OverloadType = overload.ProtectionType
		bucket.OverloadSettingA = round1(overload.RecommendedSettingA)
		bucket.OverloadClass = overload.OverloadClass
		bucket.OverloadSizingBasis = overload.SizingBasis
		bucket.ConductorMinAmpacityA = conductor.MinAmpacityA

		if unit == "FVNR" || unit == "FVR" {
			bucket.ContactorRating = fmt.Sprintf("AC-3 %dA %dV", int(flc), a.voltageV)
		}
	}

	fuseClass := sizing.RecommendedFuseClass(opt.faultKA, false)
	bucket.SCCRKA = 35
	if fuseClass == "J" {
		bucket.SCCRKA = 65
	}
	bucket.SCCRSource = "preliminary_estimate"
	if strings.Contains(string(opt.device), "fuse") {
		bucket.BranchSCPDFuseClass = fuseClass
	}

	bucket.BucketHeightUnits = bucketHeight(unit, load.RatedKW, opt.withdrawable)
	bucket.Withdrawable = opt.withdrawable
	bucket.Construction = "FIXED"
	if opt.withdrawable {
		bucket.Construction = "WITHDRAWABLE"
	}
	bucket.ControlVoltageV = 230
	if a.standard == models.StandardNEMA {
		bucket.ControlVoltageV = 120
	}

	inrush := 6.0
	if flc > 0 {
		inrush = round1(lra / flc)
	}
	deviceType := "mccb"
	curve := "inverse_time"
	if strings.Contains(string(opt.device), "fuse") {
		deviceType = "fuse"
	}
	if strings.Contains(string(opt.device), "dual") {
		curve = "dual_element"
	}
	bucket.Coordination = &CoordinationData{
		DeviceType:               deviceType,
		CurveFamily:              curve,
		InrushMultiple:           inrush,
		ExpectedStartTimeSec:     8,
		AvailableFaultAtBucketKA: opt.faultKA,
	}

	bucket.Provenance = &models.FLCProvenance{
		Source:         "calculated",
		SelectionStage: "preliminary_generic",
		Verified:       false,
		Notes:          fmt.Sprintf("Generated from load list, %s basis", a.standard),
	}
	bucket.Assumptions = &BucketAssumptions{
		CableLengthAssumed:  load.CableLengthM <= 0,
		FaultCurrentAssumed: !opt.faultVerified,
	}

	return bucket
}

// buildMCCSchedule sizes every bucket in one panel plus the incoming
// feeder and the preliminary lineup SCCR check.
func (a *Assembler) buildMCCSchedule(panelTag string, loads []models.LoadRecord, opt scheduleOptions) MCCSchedule {
	buckets := make([]Bucket, 0, len(loads)+opt.spares)
	number := 1

	connectedKW := 0.0
	for _, load := range loads {
		buckets = append(buckets, a.buildBucket(load, panelTag, number, opt))
		connectedKW += load.RatedKW
		number++
	}

	for i := 0; i < opt.spares; i++ {
		buckets = append(buckets, Bucket{
			BucketID:          fmt.Sprintf("%s-%02d", panelTag, number),
			PanelTag:          panelTag,
			Position:          bucketPosition(number),
			UnitType:          "SPARE",
			BucketHeightUnits: 2,
			Withdrawable:      opt.withdrawable,
			Notes:             "Spare bucket for future use",
		})
		number++
	}

	motors := make([]sizing.FeederMotor, 0, len(loads))
	lineupSCCR := 0.0
	totalHeightUnits := 0
	for _, b := range buckets {
		totalHeightUnits += b.BucketHeightUnits
		if b.UnitType == "SPARE" {
			continue
		}
		motors = append(motors, sizing.FeederMotor{
			Tag:         b.MotorTag,
			FLCTableA:   b.FLCTableA,
			BranchSCPDA: b.BranchSCPDRatingA,
		})
		if lineupSCCR == 0 || b.SCCRKA < lineupSCCR {
			lineupSCCR = b.SCCRKA
		}
	}

	feeder := sizing.SizeMCCFeeder(motors, float64(a.voltageV), 3, 0.85)
	sccrCompliant := lineupSCCR > 0 && lineupSCCR >= opt.faultKA
	totalHeightIn := float64(totalHeightUnits) * 6

	construction := "FIXED"
	if opt.withdrawable {
		construction = "WITHDRAWABLE"
	}

	summary := SchedulePanelSummary{
		PanelTag:            panelTag,
		SupplyVoltageV:      float64(a.voltageV),
		MotorStandard:       a.standard,
		ConnectedKW:         round1(connectedKW),
		BucketCount:         len(loads),
		SpareBucketCount:    opt.spares,
		FeederConductorMinA: feeder.FeederConductorMinA,
		FeederOCPDMaxA:      feeder.FeederOCPDMaxA,
		MainBreakerA:        feeder.FeederOCPDSelectedA,
		BusRating:           mcc.SelectBusRating(feeder.FeederConductorMinA, 1.0),
		AvailableFaultKA:    opt.faultKA,
		LineupSCCRKA:        lineupSCCR,
		SCCRSource:          "preliminary_worst_case",
		SCCRCompliant:       sccrCompliant,
		TotalHeightInches:   totalHeightIn,
		TotalHeightMM:       math.Round(totalHeightIn * 25.4),
		UnitType:            construction,
	}
	if !sccrCompliant {
		summary.SCCRWarning = fmt.Sprintf(
			"Lineup SCCR (%g kA) < available fault current (%g kA). "+
				"Review bucket SCCR ratings or add current-limiting protection.",
			lineupSCCR, opt.faultKA)
	}

	return MCCSchedule{
		Panel:          summary,
		Buckets:        buckets,
		Feeder:         feeder,
		CodeReferences: []string{"NEC 430.22", "NEC 430.24", "NEC 430.32", "NEC 430.52", "NEC 430.62", "UL 845"},
	}
}
