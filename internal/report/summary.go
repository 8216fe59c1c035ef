package report

import (
	"fmt"
	"math"

	"plantload/internal/models"
)

// defaultNonProcessBreakdown is the typical allowance split for a
// municipal treatment plant, as a percentage of process demand.
var defaultNonProcessBreakdown = map[string]float64{
	"hvac":            5,
	"lighting":        3,
	"small_power":     2,
	"instrumentation": 2,
	"control_power":   1,
	"security":        0.5,
	"misc":            1.5,
}

// NonProcessComponent is one non-process allowance line item.
type NonProcessComponent struct {
	AllowancePct float64 `yaml:"allowance_pct"`
	DemandKW     float64 `yaml:"demand_kw"`
}

// PlantSummaryTotals rolls process and non-process loads into plant
// demand figures.
type PlantSummaryTotals struct {
	ProcessConnectedKW    float64 `yaml:"process_connected_kw"`
	ProcessDemandKW       float64 `yaml:"process_demand_kw"`
	NonProcessConnectedKW float64 `yaml:"non_process_connected_kw"`
	NonProcessDemandKW    float64 `yaml:"non_process_demand_kw"`
	TotalConnectedKW      float64 `yaml:"total_connected_kw"`
	TotalDemandKW         float64 `yaml:"total_demand_kw"`
	TotalDemandKVA        float64 `yaml:"total_demand_kva"`
	DiversityFactor       float64 `yaml:"diversity_factor"`
	PowerFactor           float64 `yaml:"power_factor"`
}

// FutureGrowth projects demand with the growth margin applied.
type FutureGrowth struct {
	GrowthPct       float64 `yaml:"growth_pct"`
	FutureDemandKW  float64 `yaml:"future_demand_kw"`
	FutureDemandKVA float64 `yaml:"future_demand_kva"`
}

// TransformerRecommendation is the minimum supply transformer rating
// derived from future demand.
type TransformerRecommendation struct {
	MinimumKVA     float64 `yaml:"minimum_kva"`
	RecommendedKVA float64 `yaml:"recommended_kva"`
	Notes          string  `yaml:"notes"`
}

// MotorStatistics summarises the motor population driving the demand.
type MotorStatistics struct {
	MotorCount      int     `yaml:"motor_count"`
	LargestMotorKW  float64 `yaml:"largest_motor_kw"`
	LargestMotorTag string  `yaml:"largest_motor_tag"`
}

// PlantLoadSummary is the plant demand rollup with the non-process
// allowance, growth projection and transformer recommendation.
type PlantLoadSummary struct {
	Summary             PlantSummaryTotals             `yaml:"summary"`
	FutureGrowth        FutureGrowth                   `yaml:"future_growth"`
	TransformerSizing   TransformerRecommendation      `yaml:"transformer_sizing"`
	MotorStatistics     MotorStatistics                `yaml:"motor_statistics"`
	NonProcessBreakdown map[string]NonProcessComponent `yaml:"non_process_breakdown"`
	Assumptions         []string                       `yaml:"assumptions"`
}

// nonProcessAllowance splits a process demand into the typical
// non-process categories. The breakdown percentages sum to 15.
func nonProcessAllowance(processDemandKW, allowancePct float64) (float64, map[string]NonProcessComponent) {
	components := make(map[string]NonProcessComponent, len(defaultNonProcessBreakdown))
	for category, pct := range defaultNonProcessBreakdown {
		components[category] = NonProcessComponent{
			AllowancePct: pct,
			DemandKW:     round1(processDemandKW * pct / 100),
		}
	}
	return processDemandKW * allowancePct / 100, components
}

// BuildPlantLoadSummary computes the plant demand summary from the
// processed loads. Zero arguments fall back to the typical 15%
// non-process allowance, 20% growth and 0.85 power factor.
func BuildPlantLoadSummary(loads []models.LoadRecord, allowancePct, growthPct, powerFactor float64) PlantLoadSummary {
	if allowancePct <= 0 {
		allowancePct = 15
	}
	if growthPct <= 0 {
		growthPct = 20
	}
	if powerFactor <= 0 {
		powerFactor = 0.85
	}

	processConnected := 0.0
	processDemand := 0.0
	largestKW := 0.0
	largestTag := ""
	for _, load := range loads {
		processConnected += load.RatedKW
		processDemand += load.DemandKW
		if load.RatedKW > largestKW {
			largestKW = load.RatedKW
			largestTag = load.EquipmentTag
		}
	}

	nonProcessDemand, breakdown := nonProcessAllowance(processDemand, allowancePct)
	nonProcessConnected := processConnected * allowancePct / 100

	totalConnected := processConnected + nonProcessConnected
	totalDemand := processDemand + nonProcessDemand
	totalDemandKVA := totalDemand / powerFactor

	growthFactor := 1 + growthPct/100
	futureDemand := totalDemand * growthFactor
	futureDemandKVA := totalDemandKVA * growthFactor

	diversity := 0.0
	if totalConnected > 0 {
		diversity = math.Round(totalDemand/totalConnected*1000) / 1000
	}

	minimumKVA := math.Round(futureDemandKVA)
	recommendedKVA := math.Round(futureDemandKVA * 1.1)

	return PlantLoadSummary{
		Summary: PlantSummaryTotals{
			ProcessConnectedKW:    round1(processConnected),
			ProcessDemandKW:       round1(processDemand),
			NonProcessConnectedKW: round1(nonProcessConnected),
			NonProcessDemandKW:    round1(nonProcessDemand),
			TotalConnectedKW:      round1(totalConnected),
			TotalDemandKW:         round1(totalDemand),
			TotalDemandKVA:        round1(totalDemandKVA),
			DiversityFactor:       diversity,
			PowerFactor:           powerFactor,
		},
		FutureGrowth: FutureGrowth{
			GrowthPct:       growthPct,
			FutureDemandKW:  round1(futureDemand),
			FutureDemandKVA: round1(futureDemandKVA),
		},
		TransformerSizing: TransformerRecommendation{
			MinimumKVA:     minimumKVA,
			RecommendedKVA: recommendedKVA,
			Notes:          fmt.Sprintf("Minimum %.0f kVA for %g%% future growth", minimumKVA, growthPct),
		},
		MotorStatistics: MotorStatistics{
			MotorCount:      len(loads),
			LargestMotorKW:  largestKW,
			LargestMotorTag: largestTag,
		},
		NonProcessBreakdown: breakdown,
		Assumptions: []string{
			fmt.Sprintf("Non-process allowance: %g%% of process demand", allowancePct),
			fmt.Sprintf("Future growth margin: %g%%", growthPct),
			fmt.Sprintf("Plant power factor: %g", powerFactor),
			"Standby equipment excluded from demand by load diversity factors",
		},
	}
}
