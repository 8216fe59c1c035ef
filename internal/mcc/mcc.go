// Package mcc rolls processed loads up into Motor Control Center panel
// summaries and plant totals.
package mcc

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"plantload/internal/models"
)

// Standard bus bar ratings (A).
var standardBusRatings = []int{400, 630, 800, 1000, 1600, 2000, 2500, 3200}

// Standard main breaker frame ratings (A).
var standardBreakerRatings = []int{
	100, 125, 160, 200, 250, 315, 400, 500, 630,
	800, 1000, 1250, 1600, 2000, 2500, 3200, 4000,
}

// plantDiversity is the flat plant-level diversity applied on top of
// the per-panel factors.
const plantDiversity = 0.85

// DiversitySource supplies panel diversity factors (catalog-backed).
type DiversitySource interface {
	PanelDiversity(feederCount int, processType string) float64
}

// Aggregator groups loads into panel rollups for one supply voltage.
type Aggregator struct {
	diversity DiversitySource
	voltageV  float64
	logger    *zap.Logger
}

func NewAggregator(diversity DiversitySource, voltageV int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		diversity: diversity,
		voltageV:  float64(voltageV),
		logger:    logger,
	}
}

var panelAreaPattern = regexp.MustCompile(`(\d{3})`)

// AggregateByPanel groups loads by their panel assignment and builds
// one summary per panel, sorted by panel tag.
func (a *Aggregator) AggregateByPanel(loads []models.LoadRecord) []models.PanelSummary {
	type bucket struct {
		connectedKW   float64
		runningKW     float64
		demandKW      float64
		pfWeightedSum float64
		counts        models.FeederCounts
		tags          []string
	}

	groups := map[string]*bucket{}
	for _, load := range loads {
		panelTag := load.MCCPanel
		if panelTag == "" {
			panelTag = "MCC-UNASSIGNED"
		}
		b, ok := groups[panelTag]
		if !ok {
			b = &bucket{}
			groups[panelTag] = b
		}

		b.connectedKW += load.RatedKW
		b.runningKW += load.RunningKW
		b.demandKW += load.DemandKW
		b.pfWeightedSum += load.PowerFactor * load.RunningKW
		b.tags = append(b.tags, load.EquipmentTag)

		switch load.Feeder {
		case models.FeederVFD:
			b.counts.VFD++
		case models.FeederSoftStarter:
			b.counts.SoftStarter++
		case models.FeederVendor:
			b.counts.Vendor++
		default:
			b.counts.DOL++
		}
	}

	tags := make([]string, 0, len(groups))
	for tag := range groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	summaries := make([]models.PanelSummary, 0, len(tags))
	for _, panelTag := range tags {
		b := groups[panelTag]
		feederCount := b.counts.Total()

		panelDiversity := a.diversity.PanelDiversity(feederCount, "")
		demandWithDiversity := b.demandKW * panelDiversity

		// Running-kW-weighted power factor, clamped to a sane band.
		avgPF := 0.85
		if b.runningKW > 0 {
			avgPF = b.pfWeightedSum / b.runningKW
			avgPF = math.Max(0.70, math.Min(1.00, avgPF))
		}

		demandKVA := demandWithDiversity
		if avgPF > 0 {
			demandKVA = demandWithDiversity / avgPF
		}
		demandAmps := DemandAmps(demandKVA, a.voltageV, 3)

		summaries = append(summaries, models.PanelSummary{
			PanelTag:              panelTag,
			Area:                  areaFromTag(panelTag),
			SupplyVoltageV:        a.voltageV,
			ConnectedKW:           round1(b.connectedKW),
			RunningKW:             round1(b.runningKW),
			DemandKW:              round1(b.demandKW),
			PanelDiversity:        panelDiversity,
			DemandWithDiversityKW: round1(demandWithDiversity),
			AveragePF:             round2(avgPF),
			DemandKVA:             round1(demandKVA),
			DemandAmps:            round1(demandAmps),
			FeederCounts:          b.counts,
			FeederCount:           feederCount,
			MainBreakerA:          SelectMainBreaker(demandAmps, 1.25),
			BusRating:             SelectBusRating(demandAmps, 1.25),
			LoadTags:              b.tags,
		})
	}

	a.logger.Info("Panels aggregated",
		zap.Int("panel_count", len(summaries)),
		zap.Int("load_count", len(loads)))

	return summaries
}

// PlantTotals sums the panel rollups and applies the plant diversity.
func (a *Aggregator) PlantTotals(panels []models.PanelSummary) models.PlantTotals {
	totals := models.PlantTotals{
		PlantDiversity: plantDiversity,
		PanelCount:     len(panels),
	}

	for _, p := range panels {
		totals.TotalConnectedKW += p.ConnectedKW
		totals.TotalRunningKW += p.RunningKW
		totals.TotalDemandKW += p.DemandWithDiversityKW
		totals.TotalFeederCounts.DOL += p.FeederCounts.DOL
		totals.TotalFeederCounts.VFD += p.FeederCounts.VFD
		totals.TotalFeederCounts.SoftStarter += p.FeederCounts.SoftStarter
		totals.TotalFeederCounts.Vendor += p.FeederCounts.Vendor
	}

	totals.TotalConnectedKW = round1(totals.TotalConnectedKW)
	totals.TotalRunningKW = round1(totals.TotalRunningKW)
	totals.TotalDemandKW = round1(totals.TotalDemandKW)
	totals.PlantDemandKW = round1(totals.TotalDemandKW * plantDiversity)
	totals.TotalFeeders = totals.TotalFeederCounts.Total()

	return totals
}

// AssignPanelsByArea fills empty panel assignments with one MCC per
// area (MCC-100, MCC-200, ...).
func AssignPanelsByArea(loads []models.LoadRecord) []models.LoadRecord {
	for i := range loads {
		if loads[i].MCCPanel == "" {
			area := loads[i].Area
			if area == 0 {
				area = 100
			}
			loads[i].MCCPanel = fmt.Sprintf("MCC-%d", area)
		}
	}
	return loads
}

// SplitLargePanels reassigns loads of oversized panels to
// letter-suffixed lineups (MCC-200A, MCC-200B, ...). A panel is split
// when it exceeds maxFeeders feeders or maxConnectedKW connected load;
// members are packed smallest-first.
func SplitLargePanels(loads []models.LoadRecord, maxFeeders int, maxConnectedKW float64) []models.LoadRecord {
	byPanel := map[string][]int{}
	for i, load := range loads {
		tag := load.MCCPanel
		if tag == "" {
			tag = "MCC-UNASSIGNED"
		}
		byPanel[tag] = append(byPanel[tag], i)
	}

	for panelTag, indexes := range byPanel {
		connectedKW := 0.0
		for _, i := range indexes {
			connectedKW += loads[i].RatedKW
		}
		if len(indexes) <= maxFeeders && connectedKW <= maxConnectedKW {
			continue
		}

		sort.Slice(indexes, func(a, b int) bool {
			return loads[indexes[a]].RatedKW < loads[indexes[b]].RatedKW
		})

		suffix := byte('A')
		currentFeeders := 0
		currentKW := 0.0
		for _, i := range indexes {
			if currentFeeders >= maxFeeders || currentKW+loads[i].RatedKW > maxConnectedKW {
				suffix++
				currentFeeders = 0
				currentKW = 0
			}
			loads[i].MCCPanel = panelTag + string(suffix)
			currentFeeders++
			currentKW += loads[i].RatedKW
		}
	}

	return loads
}

// SelectBusRating picks the smallest standard bus bar at or above the
// demand current plus margin; beyond the table it degrades to a
// ">3200A" marker instead of failing.
func SelectBusRating(demandAmps, margin float64) string {
	required := demandAmps * margin
	for _, rating := range standardBusRatings {
		if float64(rating) >= required {
			return strconv.Itoa(rating) + "A"
		}
	}
	return fmt.Sprintf(">%dA", standardBusRatings[len(standardBusRatings)-1])
}

// SelectMainBreaker picks the smallest standard breaker frame at or
// above the demand current plus margin, capped at the largest frame.
func SelectMainBreaker(demandAmps, margin float64) float64 {
	required := demandAmps * margin
	for _, rating := range standardBreakerRatings {
		if float64(rating) >= required {
			return float64(rating)
		}
	}
	return float64(standardBreakerRatings[len(standardBreakerRatings)-1])
}

// DemandAmps converts kVA to line current.
func DemandAmps(demandKVA, voltageV float64, phases int) float64 {
	if phases == 3 {
		return (demandKVA * 1000) / (math.Sqrt(3) * voltageV)
	}
	return (demandKVA * 1000) / voltageV
}

func areaFromTag(panelTag string) int {
	if m := panelAreaPattern.FindStringSubmatch(panelTag); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
