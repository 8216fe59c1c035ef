// Package report assembles the tiered load-list deliverable: the load
// schedule, MCC panel rollups and, once the motor data supports it,
// bucket schedules, cable takeoffs and the plant demand summary.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	loadcalc "plantload/internal/loads"
	"plantload/internal/models"
	"plantload/internal/sizing"
)

const reportVersion = "2.0.0"

// CodeBasis names the electrical code editions the output was sized
// against.
type CodeBasis struct {
	Standard   string `yaml:"standard"`
	NECEdition string `yaml:"nec_edition,omitempty"`
	IECBasis   string `yaml:"iec_basis,omitempty"`
}

// VoltageSystem is the plant LV distribution basis.
type VoltageSystem struct {
	LVVoltage int `yaml:"lv_voltage"`
	Frequency int `yaml:"frequency"`
}

// ElectricalBasis records every code and system assumption behind the
// sizing results.
type ElectricalBasis struct {
	CodeBasis             CodeBasis            `yaml:"code_basis"`
	MotorStandard         models.MotorStandard `yaml:"motor_standard"`
	CableStandard         string               `yaml:"cable_standard"`
	VoltageSystem         VoltageSystem        `yaml:"voltage_system"`
	AvailableFaultCurrent sizing.FaultConfig   `yaml:"available_fault_current"`
}

// OutputTier states which deliverable tier the data supports and why.
type OutputTier struct {
	Tier            models.Tier          `yaml:"tier"`
	TierName        string               `yaml:"tier_name"`
	CompletenessPct float64              `yaml:"completeness_pct"`
	TierGates       map[models.Tier]bool `yaml:"tier_gates"`
	Disclaimers     []string             `yaml:"disclaimers"`
}

// AssumptionTracking flags which inputs are estimates so downstream
// consumers know what the output can be used for.
type AssumptionTracking struct {
	CableLengthsAssumed bool     `yaml:"cable_lengths_assumed"`
	CableLengthsSource  string   `yaml:"cable_lengths_source"`
	FaultCurrentAssumed bool     `yaml:"fault_current_assumed"`
	FaultCurrentSource  string   `yaml:"fault_current_source"`
	MotorDataVerified   bool     `yaml:"motor_data_verified"`
	TakeoffReady        bool     `yaml:"takeoff_ready"`
	SCCRReady           bool     `yaml:"sccr_ready"`
	Notes               []string `yaml:"notes,omitempty"`
}

// PanelEntry is one MCC panel in the report: the demand rollup plus,
// from tier 2 up, the feeder sizing and SCCR results.
type PanelEntry struct {
	models.PanelSummary `yaml:",inline"`

	FeederConductorMinA float64 `yaml:"feeder_conductor_min_a,omitempty"`
	FeederOCPDMaxA      float64 `yaml:"feeder_ocpd_max_a,omitempty"`
	LineupSCCRKA        float64 `yaml:"lineup_sccr_ka,omitempty"`
	SCCRCompliant       *bool   `yaml:"sccr_compliant,omitempty"`
	BucketCount         int     `yaml:"bucket_count,omitempty"`
	UnitType            string  `yaml:"unit_type,omitempty"`
}

// EnergySummary is the plant energy rollup.
type EnergySummary struct {
	TotalConnectedKW    float64 `yaml:"total_connected_kw"`
	TotalRunningKW      float64 `yaml:"total_running_kw"`
	TotalDemandKW       float64 `yaml:"total_demand_kw"`
	DailyKWh            float64 `yaml:"daily_kwh"`
	SpecificEnergyKWhM3 float64 `yaml:"specific_energy_kwh_m3"`
}

// TransformerEntry is one supply transformer recommendation.
type TransformerEntry struct {
	TransformerTag   string `yaml:"transformer_tag"`
	PrimaryVoltage   string `yaml:"primary_voltage"`
	SecondaryVoltage string `yaml:"secondary_voltage"`

	Sizing sizing.TransformerSizing `yaml:",inline"`
}

// Report is the complete deliverable. Tier-gated sections stay nil
// below tier 2.
type Report struct {
	Version     string `yaml:"version"`
	ProjectID   string `yaml:"project_id"`
	RunID       string `yaml:"run_id"`
	GeneratedAt string `yaml:"generated_at"`

	ElectricalBasis ElectricalBasis    `yaml:"electrical_basis"`
	OutputTier      OutputTier         `yaml:"output_tier"`
	Assumptions     AssumptionTracking `yaml:"assumption_tracking"`

	Loads     []models.LoadRecord `yaml:"loads"`
	MCCPanels []PanelEntry        `yaml:"mcc_panels"`

	EnergySummary EnergySummary `yaml:"energy_summary"`

	MCCBuckets            []Bucket                         `yaml:"mcc_buckets,omitempty"`
	CableSchedule         *CableSchedule                   `yaml:"cable_schedule,omitempty"`
	PlantLoadSummary      *PlantLoadSummary                `yaml:"plant_load_summary,omitempty"`
	Transformers          []TransformerEntry               `yaml:"transformers,omitempty"`
	MotorStartingAnalysis *sizing.SequentialStartingResult `yaml:"motor_starting_analysis,omitempty"`
}

// Assembler builds Reports for one electrical basis.
type Assembler struct {
	table       sizing.AmpacityTable
	standard    models.MotorStandard
	voltageV    int
	frequencyHz int
	logger      *zap.Logger
}

// NewAssembler returns an Assembler for the given code basis and LV
// system.
func NewAssembler(table sizing.AmpacityTable, standard models.MotorStandard, voltageV, frequencyHz int, logger *zap.Logger) *Assembler {
	return &Assembler{
		table:       table,
		standard:    standard,
		voltageV:    voltageV,
		frequencyHz: frequencyHz,
		logger:      logger,
	}
}

func (a *Assembler) cableStandard() string {
	if a.standard == models.StandardNEMA {
		return "NEC"
	}
	return "IEC"
}

func tierDisclaimers(tier models.Tier) []string {
	switch {
	case tier >= models.TierCodeCompliant:
		return []string{
			"Code-compliant output ready for detailed engineering",
		}
	case tier >= models.TierPreliminarySchedule:
		return []string{
			"PRELIMINARY SCHEDULE - VERIFY MOTOR DATA BEFORE PROCUREMENT",
			"Code-compliant output requires verified fault current data",
		}
	default:
		return []string{
			"PRELIMINARY - FOR PLANNING PURPOSES ONLY",
			"Protection sizing requires Tier 2 output (>=80% motor data complete)",
			"Cable schedules not available at this tier",
		}
	}
}

// Assemble builds the full report from the processed loads, panel
// rollups and tier evaluation. Sections beyond the eligible tier are
// withheld rather than emitted with disclaimers.
func (a *Assembler) Assemble(meta models.ProjectMetadata, loads []models.LoadRecord, panels []models.PanelSummary, totals models.PlantTotals, eligibility models.TierEligibility) Report {
	fault := sizing.ResolveFaultConfig(meta, a.voltageV)
	tier := eligibility.EligibleTier

	report := Report{
		Version:     reportVersion,
		ProjectID:   meta.ProjectID,
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ElectricalBasis: ElectricalBasis{
			CodeBasis:     a.codeBasis(),
			MotorStandard: a.standard,
			CableStandard: a.cableStandard(),
			VoltageSystem: VoltageSystem{
				LVVoltage: a.voltageV,
				Frequency: a.frequencyHz,
			},
			AvailableFaultCurrent: fault,
		},
		OutputTier: OutputTier{
			Tier:            tier,
			TierName:        tier.Name(),
			CompletenessPct: eligibility.OverallCompletenessPct,
			TierGates:       eligibility.TierGates,
			Disclaimers:     tierDisclaimers(tier),
		},
		Assumptions:   a.assumptionTracking(meta, fault, tier),
		Loads:         loads,
		MCCPanels:     panelEntries(panels),
		EnergySummary: a.energySummary(meta, loads, totals),
	}

	if tier < models.TierPreliminarySchedule {
		a.logger.Info("report assembled",
			zap.String("project_id", meta.ProjectID),
			zap.Int("tier", int(tier)),
			zap.Int("loads", len(loads)),
			zap.Int("panels", len(panels)))
		return report
	}

	opt := scheduleOptions{
		faultKA:       fault.AtMCCBusKA,
		faultVerified: fault.Verified,
		device:        sizing.DualElementFuse,
		withdrawable:  false,
		spares:        2,
	}

	byPanel := make(map[string][]models.LoadRecord)
	for _, load := range loads {
		byPanel[load.MCCPanel] = append(byPanel[load.MCCPanel], load)
	}

	scheduleByPanel := make(map[string]MCCSchedule, len(panels))
	for _, panel := range panels {
		schedule := a.buildMCCSchedule(panel.PanelTag, byPanel[panel.PanelTag], opt)
		scheduleByPanel[panel.PanelTag] = schedule
		report.MCCBuckets = append(report.MCCBuckets, schedule.Buckets...)
	}

	for i := range report.MCCPanels {
		schedule, ok := scheduleByPanel[report.MCCPanels[i].PanelTag]
		if !ok {
			continue
		}
		compliant := schedule.Panel.SCCRCompliant
		report.MCCPanels[i].FeederConductorMinA = schedule.Panel.FeederConductorMinA
		report.MCCPanels[i].FeederOCPDMaxA = schedule.Panel.FeederOCPDMaxA
		report.MCCPanels[i].MainBreakerA = schedule.Panel.MainBreakerA
		report.MCCPanels[i].BusRating = schedule.Panel.BusRating
		report.MCCPanels[i].LineupSCCRKA = schedule.Panel.LineupSCCRKA
		report.MCCPanels[i].SCCRCompliant = &compliant
		report.MCCPanels[i].BucketCount = schedule.Panel.BucketCount
		report.MCCPanels[i].UnitType = schedule.Panel.UnitType
	}

	report.CableSchedule = a.buildCableSchedule(loads, 30)

	summary := BuildPlantLoadSummary(loads, 0, 0, 0)
	report.PlantLoadSummary = &summary

	transformer := sizing.SizeTransformer(
		totals.TotalConnectedKW/0.85, totals.PlantDemandKW/0.85, 20, a.standard, 85)
	primary := "11kV"
	if a.standard == models.StandardNEMA {
		primary = "13.8kV"
	}
	report.Transformers = []TransformerEntry{{
		TransformerTag:   "TX-001",
		PrimaryVoltage:   primary,
		SecondaryVoltage: fmt.Sprintf("%dV", a.voltageV),
		Sizing:           transformer,
	}}

	motors := make([]sizing.StartingMotor, 0, len(loads))
	for _, load := range loads {
		motors = append(motors, sizing.StartingMotor{
			Tag:     load.EquipmentTag,
			RatedKW: load.RatedKW,
			Feeder:  load.Feeder,
		})
	}
	starting := sizing.CheckSequentialStarting(
		motors, transformer.SelectedKVA, transformer.TypicalImpedancePct, 15, float64(a.voltageV))
	report.MotorStartingAnalysis = &starting

	a.logger.Info("report assembled",
		zap.String("project_id", meta.ProjectID),
		zap.Int("tier", int(tier)),
		zap.Int("loads", len(loads)),
		zap.Int("panels", len(panels)),
		zap.Int("buckets", len(report.MCCBuckets)),
		zap.Int("cables", report.CableSchedule.TotalCables))

	return report
}

func (a *Assembler) codeBasis() CodeBasis {
	if a.standard == models.StandardNEMA {
		return CodeBasis{Standard: "NEC", NECEdition: "2023"}
	}
	return CodeBasis{Standard: "IEC", IECBasis: "IEC 60364"}
}

func (a *Assembler) assumptionTracking(meta models.ProjectMetadata, fault sizing.FaultConfig, tier models.Tier) AssumptionTracking {
	cableSource := meta.CableLengthsSource
	if cableSource == "" {
		cableSource = "estimated"
	}

	tracking := AssumptionTracking{
		CableLengthsAssumed: !meta.CableLengthsVerified,
		CableLengthsSource:  cableSource,
		FaultCurrentAssumed: !fault.Verified,
		FaultCurrentSource:  fault.Source,
		MotorDataVerified:   tier >= models.TierCodeCompliant,
		TakeoffReady:        tier >= models.TierPreliminarySchedule && meta.CableLengthsVerified,
		SCCRReady:           tier >= models.TierCodeCompliant && fault.Verified,
	}
	if !meta.CableLengthsVerified {
		tracking.Notes = append(tracking.Notes,
			"Cable lengths are estimated from typical layouts - verify before takeoff")
	}
	if !fault.Verified {
		tracking.Notes = append(tracking.Notes,
			"Fault current values require utility coordination letter")
	}
	return tracking
}

func panelEntries(panels []models.PanelSummary) []PanelEntry {
	entries := make([]PanelEntry, len(panels))
	for i, panel := range panels {
		entries[i] = PanelEntry{PanelSummary: panel}
	}
	return entries
}

func (a *Assembler) energySummary(meta models.ProjectMetadata, loads []models.LoadRecord, totals models.PlantTotals) EnergySummary {
	dailyKWh := 0.0
	for _, load := range loads {
		dailyKWh += load.DailyKWh
	}

	capacityMLD := meta.CapacityMLD
	if capacityMLD <= 0 {
		capacityMLD = 10
	}
	flowM3PerDay := capacityMLD * 1000

	return EnergySummary{
		TotalConnectedKW:    totals.TotalConnectedKW,
		TotalRunningKW:      totals.TotalRunningKW,
		TotalDemandKW:       totals.PlantDemandKW,
		DailyKWh:            round1(dailyKWh),
		SpecificEnergyKWhM3: loadcalc.SpecificEnergy(dailyKWh, flowM3PerDay),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
