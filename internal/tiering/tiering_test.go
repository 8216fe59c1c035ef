package tiering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantload/internal/models"
)

func completeLoad(tag string) models.LoadRecord {
	return models.LoadRecord{
		EquipmentTag:  tag,
		RatedKW:       22,
		DemandKW:      15,
		FLCTableA:     41.5,
		FLANameplateA: 38.0,
		Feeder:        models.FeederDOL,
		MCCPanel:      "MCC-300",
		EfficiencyPct: 93.0,
		ServiceFactor: 1.0,
	}
}

func verifiedMeta() models.ProjectMetadata {
	fault := 25.0
	return models.ProjectMetadata{
		AvailableFaultKA:     &fault,
		FaultCurrentSource:   "verified",
		CableLengthsVerified: true,
	}
}

func TestEvaluate_EmptyLoadsIsLoadStudy(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	result := e.Evaluate(nil, models.ProjectMetadata{})
	assert.Equal(t, models.TierLoadStudy, result.EligibleTier)
	assert.Equal(t, "Load Study", result.TierName)
	assert.Equal(t, 0, result.TotalLoads)
	assert.True(t, result.TierGates[models.TierLoadStudy])
	assert.False(t, result.TierGates[models.TierPreliminarySchedule])
	assert.False(t, result.TierGates[models.TierCodeCompliant])
}

func TestEvaluate_FullyCompleteAndVerifiedIsTier3(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	loads := []models.LoadRecord{completeLoad("300-P-01"), completeLoad("300-P-02")}

	result := e.Evaluate(loads, verifiedMeta())
	assert.Equal(t, models.TierCodeCompliant, result.EligibleTier)
	assert.Equal(t, "Code-Compliant", result.TierName)
	assert.True(t, result.TierGates[models.TierLoadStudy])
	assert.True(t, result.TierGates[models.TierPreliminarySchedule])
	assert.True(t, result.TierGates[models.TierCodeCompliant])
	assert.Equal(t, 100.0, result.OverallCompletenessPct)
}

func TestEvaluate_UnverifiedFaultCapsAtTier2(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	loads := []models.LoadRecord{completeLoad("300-P-01")}

	meta := verifiedMeta()
	meta.FaultCurrentSource = "user_supplied"

	result := e.Evaluate(loads, meta)
	assert.Equal(t, models.TierPreliminarySchedule, result.EligibleTier)
	assert.False(t, result.TierGates[models.TierCodeCompliant])
}

func TestEvaluate_AssumedCableLengthsCapAtTier2(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	loads := []models.LoadRecord{completeLoad("300-P-01")}

	meta := verifiedMeta()
	meta.CableLengthsVerified = false

	result := e.Evaluate(loads, meta)
	assert.Equal(t, models.TierPreliminarySchedule, result.EligibleTier)
}

func TestEvaluate_Tier2Needs80PctComplete(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	// 4 of 5 loads carry a panel assignment: exactly 80%.
	loads := []models.LoadRecord{
		completeLoad("300-P-01"),
		completeLoad("300-P-02"),
		completeLoad("300-P-03"),
		completeLoad("300-P-04"),
	}
	unassigned := completeLoad("300-P-05")
	unassigned.MCCPanel = ""
	loads = append(loads, unassigned)

	result := e.Evaluate(loads, models.ProjectMetadata{})
	assert.Equal(t, models.TierPreliminarySchedule, result.EligibleTier)
	assert.Equal(t, 4, result.Tier2CompleteLoads)

	// Drop below the threshold: 3 of 5.
	loads[3].MCCPanel = "MCC-UNASSIGNED"
	result = e.Evaluate(loads, models.ProjectMetadata{})
	assert.Equal(t, models.TierLoadStudy, result.EligibleTier)
	assert.False(t, result.TierGates[models.TierPreliminarySchedule])
}

func TestEvaluate_ZeroValueCountsAsMissing(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	load := completeLoad("300-P-01")
	load.FLCTableA = 0

	result := e.Evaluate([]models.LoadRecord{load}, verifiedMeta())
	assert.Equal(t, models.TierLoadStudy, result.EligibleTier)

	require.Len(t, result.LoadCompleteness, 1)
	assert.Contains(t, result.LoadCompleteness[0].MissingFields, "flc_table_a")
	assert.False(t, result.LoadCompleteness[0].Complete)
	assert.Equal(t, 80.0, result.LoadCompleteness[0].CompletenessPct)
}

func TestEvaluate_Tier1NeedsDemand(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	load := completeLoad("300-P-01")
	load.DemandKW = 0

	result := e.Evaluate([]models.LoadRecord{load}, models.ProjectMetadata{})
	assert.False(t, result.TierGates[models.TierLoadStudy])
	// Tier 2 does not require demand_kw, so its gate stays open and wins.
	assert.Equal(t, models.TierPreliminarySchedule, result.EligibleTier)
}

func TestEvaluate_OverallCompletenessAveragesTier2Audit(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	full := completeLoad("300-P-01")
	partial := completeLoad("300-P-02")
	partial.MCCPanel = ""
	partial.FLCTableA = 0

	result := e.Evaluate([]models.LoadRecord{full, partial}, models.ProjectMetadata{})
	// (100 + 60) / 2
	assert.Equal(t, 80.0, result.OverallCompletenessPct)
}
