package report

import (
	"fmt"
	"sort"

	"plantload/internal/models"
	"plantload/internal/sizing"
)

// CableEntry is one branch or VFD supply cable in the schedule.
type CableEntry struct {
	CableTag             string  `yaml:"cable_tag"`
	FromPanel            string  `yaml:"from_panel"`
	ToEquipment          string  `yaml:"to_equipment"`
	EquipmentDescription string  `yaml:"equipment_description,omitempty"`
	MotorKW              float64 `yaml:"motor_kw"`

	CableType         string  `yaml:"cable_type"`
	CableConstruction string  `yaml:"cable_construction"`
	CableSize         string  `yaml:"cable_size"`
	CableSizeMM2      float64 `yaml:"cable_size_mm2"`

	LengthM       float64 `yaml:"length_m"`
	LengthAssumed bool    `yaml:"length_assumed"`
	LengthBasis   string  `yaml:"length_basis"`

	VoltageDropPct       float64 `yaml:"voltage_drop_pct"`
	VoltageDropCompliant bool    `yaml:"voltage_drop_compliant"`

	CurrentA     float64 `yaml:"current_a"`
	SizingBasis  string  `yaml:"sizing_basis"`
	AmbientTempC float64 `yaml:"ambient_temp_c"`
	Quantity     int     `yaml:"quantity"`
	Notes        string  `yaml:"notes,omitempty"`
}

// SizeTotal aggregates schedule quantities for one cable size.
type SizeTotal struct {
	Count        int     `yaml:"count"`
	TotalLengthM float64 `yaml:"total_length_m"`
}

// CableGenerationBasis records the conditions the schedule was sized
// under.
type CableGenerationBasis struct {
	VoltageV      int    `yaml:"voltage"`
	CableStandard string `yaml:"cable_standard"`
	AmbientTempC  float64 `yaml:"ambient_temp_c"`
}

// CableSchedule is the plant-wide cable takeoff across all panels.
type CableSchedule struct {
	Cables                  []CableEntry         `yaml:"cables"`
	TotalCables             int                  `yaml:"total_cables"`
	TotalLengthM            float64              `yaml:"total_length_m"`
	CablesWithAssumedLength int                  `yaml:"cables_with_assumed_length"`
	CablesWithVDIssues      int                  `yaml:"cables_with_vd_issues"`
	SizeSummary             map[string]SizeTotal `yaml:"size_summary"`
	GenerationBasis         CableGenerationBasis `yaml:"generation_basis"`
	Disclaimers             []string             `yaml:"disclaimers"`
}

var cableScheduleDisclaimers = []string{
	"NOTE: Cable lengths are ESTIMATED based on typical WWTP layouts.",
	"Verify against final plant layout drawings before procurement.",
	"Voltage drop calculations use assumed lengths - recalculate with actual routes.",
}

// estimateCableLength guesses a one-way route length from the
// equipment class. Typical WWTP distances, always flagged as assumed.
func estimateCableLength(class models.EquipmentClass) (float64, string) {
	switch class {
	case models.ClassBlower:
		return 45, "Typical blower room distance"
	case models.ClassPump:
		return 50, "Typical pump station distance"
	case models.ClassClarifier:
		return 75, "Typical clarifier mechanism distance"
	case models.ClassScreen:
		return 60, "Typical headworks distance"
	default:
		return 30, "Typical same-building motor"
	}
}

// cableTag derives the schedule tag from the panel tag and sequence,
// e.g. MCC-300 bucket 3 becomes C-300-03.
func cableTag(panelTag string, number int) string {
	area := panelTag
	if len(area) > 4 && area[:4] == "MCC-" {
		area = area[4:]
	}
	return fmt.Sprintf("C-%s-%02d", area, number)
}

func (a *Assembler) buildCableEntry(load models.LoadRecord, panelTag string, number int, ambientTempC float64) CableEntry {
	flc := load.FLCTableA

	var selection sizing.CableSelection
	var cableType string
	var currentA float64
	if load.Feeder == models.FeederVFD {
		input := sizing.EstimateVFDInput(flc, 0).EstimatedInputA
		selection = sizing.SelectVFDSupplyCable(a.table, input, 1.0, a.standard, ambientTempC, 1)
		cableType = "VFD Supply"
		currentA = input
	} else {
		selection = sizing.SelectMotorBranchCable(a.table, flc, a.standard, ambientTempC, 1)
		cableType = "Motor Branch"
		currentA = flc
	}

	mm2 := selection.SizeMM2
	if mm2 <= 0 {
		mm2 = 25
	}

	length := load.CableLengthM
	lengthAssumed := length <= 0
	lengthBasis := "From layout/user input"
	if lengthAssumed {
		var basis string
		length, basis = estimateCableLength(load.Class)
		lengthBasis = basis
	}

	pf := load.PowerFactor
	if pf <= 0 {
		pf = 0.85
	}
	drop := sizing.VoltageDropPct(currentA, length, mm2, float64(a.voltageV), 3, pf, 75)

	construction := fmt.Sprintf("3C+E Cu XLPE/SWA/PVC %s", selection.SelectedSize)
	if a.standard == models.StandardNEMA {
		construction = fmt.Sprintf("3#%s + #10 GND Cu THHN", selection.SelectedSize)
	}

	notes := ""
	if lengthAssumed {
		notes = "ESTIMATED - Verify against final plant layout"
	}

	return CableEntry{
		CableTag:             cableTag(panelTag, number),
		FromPanel:            panelTag,
		ToEquipment:          load.EquipmentTag,
		EquipmentDescription: load.Description,
		MotorKW:              load.RatedKW,
		CableType:            cableType,
		CableConstruction:    construction,
		CableSize:            selection.SelectedSize,
		CableSizeMM2:         mm2,
		LengthM:              length,
		LengthAssumed:        lengthAssumed,
		LengthBasis:          lengthBasis,
		VoltageDropPct:       drop.DropPct,
		VoltageDropCompliant: drop.CompliantBranch,
		CurrentA:             round1(currentA),
		SizingBasis:          selection.SizingBasis,
		AmbientTempC:         ambientTempC,
		Quantity:             1,
		Notes:                notes,
	}
}

// buildCableSchedule produces the plant-wide cable takeoff. Loads are
// grouped by panel so the tags run sequentially within each lineup.
func (a *Assembler) buildCableSchedule(loads []models.LoadRecord, ambientTempC float64) *CableSchedule {
	if ambientTempC <= 0 {
		ambientTempC = 30
	}

	byPanel := make(map[string][]models.LoadRecord)
	panelTags := make([]string, 0)
	for _, load := range loads {
		if _, seen := byPanel[load.MCCPanel]; !seen {
			panelTags = append(panelTags, load.MCCPanel)
		}
		byPanel[load.MCCPanel] = append(byPanel[load.MCCPanel], load)
	}
	sort.Strings(panelTags)

	schedule := &CableSchedule{
		SizeSummary: make(map[string]SizeTotal),
		GenerationBasis: CableGenerationBasis{
			VoltageV:      a.voltageV,
			CableStandard: a.cableStandard(),
			AmbientTempC:  ambientTempC,
		},
		Disclaimers: cableScheduleDisclaimers,
	}

	for _, panelTag := range panelTags {
		for i, load := range byPanel[panelTag] {
			entry := a.buildCableEntry(load, panelTag, i+1, ambientTempC)
			schedule.Cables = append(schedule.Cables, entry)
			schedule.TotalLengthM += entry.LengthM
			if entry.LengthAssumed {
				schedule.CablesWithAssumedLength++
			}
			if !entry.VoltageDropCompliant {
				schedule.CablesWithVDIssues++
			}
			total := schedule.SizeSummary[entry.CableSize]
			total.Count++
			total.TotalLengthM += entry.LengthM
			schedule.SizeSummary[entry.CableSize] = total
		}
	}
	schedule.TotalCables = len(schedule.Cables)
	schedule.TotalLengthM = round1(schedule.TotalLengthM)

	return schedule
}
