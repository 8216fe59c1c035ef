// Package tiering audits load completeness and gates the deliverable
// tier. Tier 1 is a load study, tier 2 a preliminary MCC schedule,
// tier 3 a code-compliant load list ready for procurement.
package tiering

import (
	"math"

	"go.uber.org/zap"

	"plantload/internal/models"
)

// Required fields per tier. Tier 3 extends tier 2 with the nameplate
// and motor-data fields that overload sizing and SCCR checks need.
var tierRequiredFields = map[models.Tier][]string{
	models.TierLoadStudy: {
		"equipment_tag", "rated_kw", "demand_kw",
	},
	models.TierPreliminarySchedule: {
		"equipment_tag", "rated_kw", "flc_table_a", "feeder_type", "mcc_panel",
	},
	models.TierCodeCompliant: {
		"equipment_tag", "rated_kw", "flc_table_a", "fla_nameplate_a",
		"feeder_type", "mcc_panel", "efficiency_pct", "service_factor",
	},
}

// Completeness thresholds: share of loads that must be complete for
// the tier gate to open.
var tierThresholds = map[models.Tier]float64{
	models.TierLoadStudy:           1.00,
	models.TierPreliminarySchedule: 0.80,
	models.TierCodeCompliant:       1.00,
}

// Evaluator gates the deliverable tier for a load set.
type Evaluator struct {
	logger *zap.Logger
}

func NewEvaluator(logger *zap.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate audits every load against the tier field lists and returns
// the eligibility result. The gates are independent booleans; the
// highest open gate wins. Tier 3 additionally requires verified fault
// current and verified cable lengths, which no amount of field
// completeness can substitute for.
func (e *Evaluator) Evaluate(loads []models.LoadRecord, meta models.ProjectMetadata) models.TierEligibility {
	result := models.TierEligibility{
		EligibleTier:      models.TierLoadStudy,
		TotalLoads:        len(loads),
		Tier2ThresholdPct: tierThresholds[models.TierPreliminarySchedule] * 100,
		TierGates:         map[models.Tier]bool{},
	}

	if len(loads) == 0 {
		// An empty load set is still a (vacuous) load study.
		result.TierName = result.EligibleTier.Name()
		result.TierGates[models.TierLoadStudy] = true
		result.TierGates[models.TierPreliminarySchedule] = false
		result.TierGates[models.TierCodeCompliant] = false
		return result
	}

	completeByTier := map[models.Tier]int{}
	pctSum := 0.0

	for _, load := range loads {
		for tier, fields := range tierRequiredFields {
			audit := auditLoad(load, fields)
			if audit.Complete {
				completeByTier[tier]++
			}
			// The report carries the tier-2 audit: that is the schedule
			// the reader is deciding whether to trust.
			if tier == models.TierPreliminarySchedule {
				result.LoadCompleteness = append(result.LoadCompleteness, audit)
				pctSum += audit.CompletenessPct
			}
		}
	}

	total := float64(len(loads))
	for tier, threshold := range tierThresholds {
		result.TierGates[tier] = float64(completeByTier[tier])/total >= threshold
	}

	// Tier 3 needs verified inputs, not just filled fields.
	if !meta.FaultCurrentVerified() || !meta.CableLengthsVerified {
		result.TierGates[models.TierCodeCompliant] = false
	}

	for _, tier := range []models.Tier{models.TierCodeCompliant, models.TierPreliminarySchedule, models.TierLoadStudy} {
		if result.TierGates[tier] {
			result.EligibleTier = tier
			break
		}
	}

	result.TierName = result.EligibleTier.Name()
	result.Tier2CompleteLoads = completeByTier[models.TierPreliminarySchedule]
	result.OverallCompletenessPct = round1(pctSum / total)

	e.logger.Info("Tier evaluated",
		zap.Int("tier", int(result.EligibleTier)),
		zap.String("tier_name", result.TierName),
		zap.Float64("completeness_pct", result.OverallCompletenessPct))

	return result
}

func auditLoad(load models.LoadRecord, fields []string) models.LoadCompleteness {
	audit := models.LoadCompleteness{EquipmentTag: load.EquipmentTag}

	for _, field := range fields {
		if fieldPresent(load, field) {
			audit.PresentFields = append(audit.PresentFields, field)
		} else {
			audit.MissingFields = append(audit.MissingFields, field)
		}
	}

	audit.Complete = len(audit.MissingFields) == 0
	audit.CompletenessPct = round1(float64(len(audit.PresentFields)) / float64(len(fields)) * 100)
	return audit
}

// fieldPresent treats zero values as missing: a 0 kW rating or a 0 A
// FLC is a hole in the data, never a real motor.
func fieldPresent(load models.LoadRecord, field string) bool {
	switch field {
	case "equipment_tag":
		return load.EquipmentTag != ""
	case "rated_kw":
		return load.RatedKW > 0
	case "demand_kw":
		return load.DemandKW > 0
	case "flc_table_a":
		return load.FLCTableA > 0
	case "fla_nameplate_a":
		return load.FLANameplateA > 0
	case "feeder_type":
		return load.Feeder != ""
	case "mcc_panel":
		return load.MCCPanel != "" && load.MCCPanel != "MCC-UNASSIGNED"
	case "efficiency_pct":
		return load.EfficiencyPct > 0
	case "service_factor":
		return load.ServiceFactor > 0
	default:
		return false
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
