package sizing

import (
	"fmt"

	"plantload/internal/models"
)

// Standard distribution transformer ratings (kVA).
var (
	ansiStandardKVA = []float64{15, 25, 37.5, 50, 75, 100, 112.5, 150, 167, 200, 225, 300, 500, 750, 1000, 1500, 2000, 2500}
	iecStandardKVA  = []float64{16, 25, 40, 63, 100, 160, 200, 250, 315, 400, 500, 630, 800, 1000, 1250, 1600, 2000, 2500}
)

// TypicalTransformerImpedance returns a typical impedance percentage
// for a transformer rating. transformerType is "dry_type" or
// "oil_filled".
func TypicalTransformerImpedance(kva float64, transformerType string) float64 {
	if transformerType == "oil_filled" {
		switch {
		case kva <= 100:
			return 2.5
		case kva <= 333:
			return 4.0
		case kva <= 750:
			return 5.0
		default:
			return 5.5
		}
	}
	switch {
	case kva <= 50:
		return 3.0
	case kva <= 150:
		return 4.5
	case kva <= 300:
		return 5.0
	case kva <= 750:
		return 5.5
	default:
		return 5.75
	}
}

// TransformerSizing is the demand-based transformer selection.
type TransformerSizing struct {
	ConnectedKVA         float64 `yaml:"connected_kva"`
	DemandKVA            float64 `yaml:"demand_kva"`
	FutureGrowthPct      float64 `yaml:"future_growth_pct"`
	RequiredKVA          float64 `yaml:"required_kva"`
	SelectedKVA          float64 `yaml:"selected_kva"`
	LoadingAtDemandPct   float64 `yaml:"loading_at_demand_pct"`
	LoadingWithGrowthPct float64 `yaml:"loading_with_growth_pct"`
	SpareCapacityPct     float64 `yaml:"spare_capacity_pct"`
	TypicalImpedancePct  float64 `yaml:"typical_impedance_pct"`
	Standard             string  `yaml:"standard"`
	SizingBasis          string  `yaml:"sizing_basis"`
	Notes                string  `yaml:"notes,omitempty"`
}

// SizeTransformer selects a standard transformer for the demand load
// plus growth, keeping loading under maxLoadingPct. The series follows
// the motor standard: IEC ratings for IEC projects, ANSI for NEMA.
func SizeTransformer(connectedKVA, demandKVA, futureGrowthPct float64, standard models.MotorStandard, maxLoadingPct float64) TransformerSizing {
	requiredKVA := demandKVA * (1 + futureGrowthPct/100)
	minimumKVA := requiredKVA / (maxLoadingPct / 100)

	series := iecStandardKVA
	seriesName := "IEC"
	if standard == models.StandardNEMA {
		series = ansiStandardKVA
		seriesName = "ANSI"
	}

	selected := 0.0
	notes := ""
	for _, size := range series {
		if size >= minimumKVA {
			selected = size
			break
		}
	}
	if selected == 0 {
		selected = series[len(series)-1]
		notes = fmt.Sprintf("Warning: Demand exceeds largest standard size (%g kVA)", selected)
	}

	loadingAtDemand := demandKVA / selected * 100
	loadingWithGrowth := requiredKVA / selected * 100

	return TransformerSizing{
		ConnectedKVA:         round1(connectedKVA),
		DemandKVA:            round1(demandKVA),
		FutureGrowthPct:      futureGrowthPct,
		RequiredKVA:          round1(requiredKVA),
		SelectedKVA:          selected,
		LoadingAtDemandPct:   round1(loadingAtDemand),
		LoadingWithGrowthPct: round1(loadingWithGrowth),
		SpareCapacityPct:     round1(100 - loadingWithGrowth),
		TypicalImpedancePct:  TypicalTransformerImpedance(selected, "dry_type"),
		Standard:             seriesName,
		SizingBasis: fmt.Sprintf(
			"Demand %.1f kVA x (1 + %g%% growth) = %.1f kVA -> %g kVA (%.0f%% loading)",
			demandKVA, futureGrowthPct, requiredKVA, selected, loadingWithGrowth),
		Notes: notes,
	}
}
