// Package loads turns equipment records plus duty points into fully
// populated electrical load records.
package loads

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"plantload/internal/catalog"
	"plantload/internal/models"
)

// Catalog is the lookup surface the processor needs from the catalog
// repository.
type Catalog interface {
	LookupFLC(powerKW float64, voltageV, frequencyHz int, standard models.MotorStandard, efficiencyClass string) (float64, string)
	MotorEfficiency(kw float64, poles int, class string) float64
	LRAMultiplier(designLetter string) float64
	LookupDutyProfile(class models.EquipmentClass, processUnitType string, feeder models.FeederClass) catalog.DutyProfile
}

// Processor builds load records for one electrical basis (motor
// standard, voltage, frequency).
type Processor struct {
	catalogs    Catalog
	standard    models.MotorStandard
	voltageV    int
	frequencyHz int
	logger      *zap.Logger
}

func NewProcessor(catalogs Catalog, standard models.MotorStandard, voltageV, frequencyHz int, logger *zap.Logger) *Processor {
	return &Processor{
		catalogs:    catalogs,
		standard:    standard,
		voltageV:    voltageV,
		frequencyHz: frequencyHz,
		logger:      logger,
	}
}

// ProcessAll builds one load record per equipment record, pairing each
// with its duty point by tag.
func (p *Processor) ProcessAll(records []models.EquipmentRecord, dutyPoints map[string]models.DutyPoint) []models.LoadRecord {
	loads := make([]models.LoadRecord, 0, len(records))
	for _, rec := range records {
		loads = append(loads, p.Process(rec, dutyPoints[rec.Tag]))
	}
	p.logger.Info("Loads processed",
		zap.Int("count", len(loads)),
		zap.String("motor_standard", string(p.standard)))
	return loads
}

// Process builds the load record for one equipment item.
func (p *Processor) Process(rec models.EquipmentRecord, dp models.DutyPoint) models.LoadRecord {
	// 1. Motor parameters
	poles := rec.MotorPoles
	if poles == 0 {
		poles = 4
	}
	effClass := rec.EfficiencyClass
	if effClass == "" {
		if p.standard == models.StandardNEMA {
			effClass = "NEMA-PREMIUM"
		} else {
			effClass = "IE3"
		}
	}
	efficiencyPct := rec.EfficiencyPct
	if efficiencyPct <= 0 {
		efficiencyPct = p.catalogs.MotorEfficiency(rec.RatedKW, poles, effClass)
	}
	pf := rec.PowerFactor
	if pf <= 0 {
		pf = 0.85
	}

	// 2. FLC from code tables (conductor/SCPD sizing, NEC 430.6(A)(1))
	flcTable, flcSource := p.catalogs.LookupFLC(rec.RatedKW, p.voltageV, p.frequencyHz, p.standard, effClass)

	// 3. FLA from nameplate (overload settings, NEC 430.32); estimated
	// from rated power when the list does not carry one.
	flaNameplate := rec.FLANameplateA
	flaEstimated := false
	if flaNameplate <= 0 {
		eff := efficiencyPct / 100
		flaNameplate = (rec.RatedKW * 1000) / (math.Sqrt(3) * float64(p.voltageV) * eff * pf)
		flaEstimated = true
	}

	// 4. LRA from table FLC
	lraMultiplier := p.catalogs.LRAMultiplier("")
	lra := flcTable * lraMultiplier

	// 5. Brake power: artifact value, then physics from the duty point,
	// then rated power at a typical 0.85 loading. Rated kW already is
	// shaft power, so motor efficiency must not appear in the estimate.
	brakeKW, brakeSource := p.brakePower(rec, dp)

	// 6. Electrical input and duty profile
	absorbedKW := AbsorbedKW(brakeKW, efficiencyPct)
	profile := p.catalogs.LookupDutyProfile(rec.Class, rec.ProcessUnitType, rec.Feeder)

	// 7. Diversity from quantity notation
	diversity, working, standby := ParseDiversity(rec.QuantityNote)
	if rec.QuantityNote == "" && rec.Quantity > 1 {
		// No standby called out: all units run.
		diversity = 1.0
		working = rec.Quantity
	}
	quantityNote := rec.QuantityNote
	if quantityNote == "" {
		quantityNote = fmt.Sprintf("%dW", rec.Quantity)
	}

	// 8. Energy values
	runningKW := round2(absorbedKW * profile.LoadFactor)
	demandKW := round2(runningKW * diversity)
	dailyKWh := round2(runningKW * profile.RunningHoursPerDay)

	serviceFactor := rec.ServiceFactor
	if serviceFactor <= 0 {
		if p.standard == models.StandardNEMA {
			serviceFactor = 1.15
		} else {
			serviceFactor = 1.0
		}
	}

	mccPanel := rec.MCCPanel
	if mccPanel == "" {
		mccPanel = fmt.Sprintf("MCC-%d", rec.Area)
	}

	return models.LoadRecord{
		EquipmentTag:    rec.Tag,
		Description:     rec.Description,
		ProcessUnitType: rec.ProcessUnitType,
		Area:            rec.Area,
		TypeCode:        rec.TypeCode,
		Class:           rec.Class,

		RatedKW:         rec.RatedKW,
		VoltageV:        p.voltageV,
		Phases:          3,
		FrequencyHz:     p.frequencyHz,
		MotorPoles:      poles,
		EfficiencyPct:   efficiencyPct,
		PowerFactor:     pf,
		EfficiencyClass: effClass,
		ServiceFactor:   serviceFactor,

		FLCTableA:     round1(flcTable),
		FLANameplateA: round1(flaNameplate),
		LRAA:          round1(lra),
		LRAMultiplier: lraMultiplier,
		FLCSource:     flcSource,
		FLCProvenance: flcProvenance(flcSource, flaEstimated),

		FeederType: rec.FeederType,
		Feeder:     rec.Feeder,

		BrakeKW:     round2(brakeKW),
		BrakeSource: brakeSource,
		AbsorbedKW:  absorbedKW,

		DutyCycle:          profile.DutyCycle,
		RunningHoursPerDay: profile.RunningHoursPerDay,
		LoadFactor:         profile.LoadFactor,
		DiversityFactor:    diversity,
		Quantity:           rec.Quantity,
		QuantityNote:       quantityNote,
		QuantityWorking:    working,
		QuantityStandby:    standby,

		RunningKW: runningKW,
		DemandKW:  demandKW,
		DailyKWh:  dailyKWh,

		MCCPanel:        mccPanel,
		CableLengthM:    rec.CableLengthM,
		DutyPointSource: dp.Source,
	}
}

// brakePower resolves shaft power with source provenance.
func (p *Processor) brakePower(rec models.EquipmentRecord, dp models.DutyPoint) (float64, string) {
	if dp.BrakeKW != nil && *dp.BrakeKW > 0 {
		return *dp.BrakeKW, "artifact"
	}

	switch {
	case dp.Pump != nil && dp.Pump.FlowM3h > 0 && dp.Pump.HeadM > 0:
		return PumpBrakeKW(dp.Pump.FlowM3h, dp.Pump.HeadM, 1.0, dp.Pump.Efficiency), "pump_hydraulic"
	case dp.Blower != nil && dp.Blower.FlowNm3h > 0:
		return BlowerBrakeKW(dp.Blower.FlowNm3h, dp.Blower.InletBar, dp.Blower.OutletBar, 293, 1.4, dp.Blower.Efficiency), "blower_polytropic"
	case dp.Mixer != nil && dp.Mixer.VolumeM3 > 0:
		return MixerBrakeKW(dp.Mixer.VolumeM3, dp.Mixer.WPerM3), "mixer_volumetric"
	}

	// Last resort: rated kW is the full-load shaft power; apply a
	// typical partial-loading factor.
	p.logger.Debug("Brake power estimated from rated power",
		zap.String("tag", rec.Tag),
		zap.Float64("rated_kw", rec.RatedKW))
	return rec.RatedKW * 0.85, "rated_estimate"
}

func flcProvenance(flcSource string, flaEstimated bool) models.FLCProvenance {
	lower := strings.ToLower(flcSource)
	source := "calculated"
	if strings.Contains(lower, "nec") || strings.Contains(lower, "iec") {
		source = "table"
	}

	notes := fmt.Sprintf("From %s", flcSource)
	if flaEstimated {
		notes += "; nameplate FLA estimated from rated power"
	}

	return models.FLCProvenance{
		Source:         source,
		SelectionStage: "preliminary_generic",
		Verified:       false,
		Notes:          notes,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
