package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantload/internal/models"
)

func testMeta() models.ProjectMetadata {
	return models.ProjectMetadata{
		ProjectID:   "WWTP-NORTH-01",
		CapacityMLD: 12,
	}
}

func testPanels() []models.PanelSummary {
	return []models.PanelSummary{{
		PanelTag:       "MCC-300",
		Area:           300,
		SupplyVoltageV: 400,
		ConnectedKW:    147,
		RunningKW:      127,
		DemandKW:       120,
		FeederCount:    2,
	}}
}

func testTotals() models.PlantTotals {
	return models.PlantTotals{
		TotalConnectedKW: 147,
		TotalRunningKW:   127,
		TotalDemandKW:    120,
		PlantDiversity:   0.85,
		PlantDemandKW:    102,
		PanelCount:       1,
	}
}

func eligibilityAt(tier models.Tier, completeness float64) models.TierEligibility {
	return models.TierEligibility{
		EligibleTier:           tier,
		TierName:               tier.Name(),
		OverallCompletenessPct: completeness,
		TierGates: map[models.Tier]bool{
			models.TierLoadStudy:           true,
			models.TierPreliminarySchedule: tier >= models.TierPreliminarySchedule,
			models.TierCodeCompliant:       tier >= models.TierCodeCompliant,
		},
	}
}

func TestAssemble_LoadStudyWithholdsScheduleSections(t *testing.T) {
	a := testAssembler()
	loads := []models.LoadRecord{blowerVFDLoad(), pumpDOLLoad()}

	report := a.Assemble(testMeta(), loads, testPanels(), testTotals(), eligibilityAt(models.TierLoadStudy, 45))

	assert.Equal(t, "2.0.0", report.Version)
	assert.Equal(t, "WWTP-NORTH-01", report.ProjectID)
	assert.NotEmpty(t, report.RunID)
	assert.NotEmpty(t, report.GeneratedAt)

	assert.Empty(t, report.MCCBuckets)
	assert.Nil(t, report.CableSchedule)
	assert.Nil(t, report.PlantLoadSummary)
	assert.Empty(t, report.Transformers)
	assert.Nil(t, report.MotorStartingAnalysis)

	assert.Contains(t, report.OutputTier.Disclaimers, "PRELIMINARY - FOR PLANNING PURPOSES ONLY")
	assert.Equal(t, 45.0, report.OutputTier.CompletenessPct)

	// Panel entries carry only the demand rollup at this tier.
	require.Len(t, report.MCCPanels, 1)
	assert.Nil(t, report.MCCPanels[0].SCCRCompliant)
	assert.Zero(t, report.MCCPanels[0].BucketCount)
}

func TestAssemble_PreliminaryScheduleAddsSections(t *testing.T) {
	a := testAssembler()
	loads := []models.LoadRecord{blowerVFDLoad(), pumpDOLLoad()}

	report := a.Assemble(testMeta(), loads, testPanels(), testTotals(), eligibilityAt(models.TierPreliminarySchedule, 85))

	// 2 motor buckets plus 2 spares.
	assert.Len(t, report.MCCBuckets, 4)

	require.NotNil(t, report.CableSchedule)
	assert.Equal(t, 2, report.CableSchedule.TotalCables)

	require.NotNil(t, report.PlantLoadSummary)
	assert.Equal(t, 147.0, report.PlantLoadSummary.Summary.ProcessConnectedKW)

	require.Len(t, report.Transformers, 1)
	assert.Equal(t, "TX-001", report.Transformers[0].TransformerTag)
	assert.Equal(t, "11kV", report.Transformers[0].PrimaryVoltage)
	assert.Equal(t, "400V", report.Transformers[0].SecondaryVoltage)
	assert.Greater(t, report.Transformers[0].Sizing.SelectedKVA, 0.0)

	require.NotNil(t, report.MotorStartingAnalysis)
	assert.Equal(t, 2, report.MotorStartingAnalysis.MotorCount)

	require.Len(t, report.MCCPanels, 1)
	panel := report.MCCPanels[0]
	assert.Equal(t, 2, panel.BucketCount)
	assert.Greater(t, panel.FeederConductorMinA, 0.0)
	require.NotNil(t, panel.SCCRCompliant)
	// Default 50 kA assumption exceeds the 35 kA preliminary buckets.
	assert.False(t, *panel.SCCRCompliant)
	assert.Equal(t, 35.0, panel.LineupSCCRKA)
}

func TestAssemble_ElectricalBasis(t *testing.T) {
	iec := testAssembler()
	report := iec.Assemble(testMeta(), nil, nil, models.PlantTotals{}, eligibilityAt(models.TierLoadStudy, 0))
	assert.Equal(t, "IEC", report.ElectricalBasis.CodeBasis.Standard)
	assert.Equal(t, "IEC 60364", report.ElectricalBasis.CodeBasis.IECBasis)
	assert.Empty(t, report.ElectricalBasis.CodeBasis.NECEdition)
	assert.Equal(t, "IEC", report.ElectricalBasis.CableStandard)
	assert.Equal(t, 400, report.ElectricalBasis.VoltageSystem.LVVoltage)

	nema := NewAssembler(stubTable{}, models.StandardNEMA, 480, 60, iec.logger)
	report = nema.Assemble(testMeta(), nil, nil, models.PlantTotals{}, eligibilityAt(models.TierLoadStudy, 0))
	assert.Equal(t, "NEC", report.ElectricalBasis.CodeBasis.Standard)
	assert.Equal(t, "2023", report.ElectricalBasis.CodeBasis.NECEdition)
	assert.Equal(t, "NEC", report.ElectricalBasis.CableStandard)
}

func TestAssemble_AssumptionTracking(t *testing.T) {
	a := testAssembler()

	report := a.Assemble(testMeta(), nil, nil, models.PlantTotals{}, eligibilityAt(models.TierPreliminarySchedule, 85))
	assert.True(t, report.Assumptions.CableLengthsAssumed)
	assert.Equal(t, "estimated", report.Assumptions.CableLengthsSource)
	assert.True(t, report.Assumptions.FaultCurrentAssumed)
	assert.False(t, report.Assumptions.TakeoffReady)
	assert.False(t, report.Assumptions.SCCRReady)
	assert.NotEmpty(t, report.Assumptions.Notes)

	fault := 42.0
	meta := testMeta()
	meta.AvailableFaultKA = &fault
	meta.FaultCurrentSource = "verified"
	meta.CableLengthsVerified = true
	meta.CableLengthsSource = "layout_drawings"

	report = a.Assemble(meta, nil, nil, models.PlantTotals{}, eligibilityAt(models.TierCodeCompliant, 100))
	assert.False(t, report.Assumptions.CableLengthsAssumed)
	assert.Equal(t, "layout_drawings", report.Assumptions.CableLengthsSource)
	assert.False(t, report.Assumptions.FaultCurrentAssumed)
	assert.True(t, report.Assumptions.MotorDataVerified)
	assert.True(t, report.Assumptions.TakeoffReady)
	assert.True(t, report.Assumptions.SCCRReady)
	assert.Empty(t, report.Assumptions.Notes)
}

func TestAssemble_EnergySummary(t *testing.T) {
	a := testAssembler()
	loads := []models.LoadRecord{blowerVFDLoad(), pumpDOLLoad()} // 2880 kWh/day

	report := a.Assemble(testMeta(), loads, testPanels(), testTotals(), eligibilityAt(models.TierLoadStudy, 45))

	assert.Equal(t, 2880.0, report.EnergySummary.DailyKWh)
	assert.Equal(t, 102.0, report.EnergySummary.TotalDemandKW)
	// 2880 kWh over 12 MLD = 12000 m3/day.
	assert.Equal(t, 0.24, report.EnergySummary.SpecificEnergyKWhM3)
}
