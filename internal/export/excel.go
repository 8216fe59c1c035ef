// Package export renders the assembled report as YAML and as an Excel
// workbook for contractor costing.
package export

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	"plantload/internal/report"
)

// LoadListHeader is the Load List sheet header row.
var LoadListHeader = []string{
	"Tag", "Description", "Area", "Rated kW", "Voltage (V)", "Eff (%)", "PF",
	"FLC (A)", "FLA (A)", "LRA (A)", "SF", "Feeder Type", "Brake kW",
	"Absorbed kW", "Duty", "Hrs/Day", "Load Factor", "Qty", "Diversity",
	"Running kW", "Demand kW", "kWh/Day", "MCC Panel",
}

var loadListWidths = []float64{
	12, 25, 8, 10, 11, 9, 6,
	9, 9, 9, 6, 12, 10,
	12, 10, 9, 11, 6, 10,
	11, 11, 10, 11,
}

// MCCBucketHeader is the MCC Bucket Schedule sheet header row.
var MCCBucketHeader = []string{
	"Bucket ID", "Position", "Motor Tag", "Description", "Motor kW",
	"FLC (A)", "Unit Type", "SCPD Type", "SCPD (A)", "OL Set (A)",
	"OL Class", "SCCR (kA)", "Height (units)", "Ctrl V",
}

var mccBucketWidths = []float64{
	14, 9, 12, 25, 10,
	9, 13, 18, 10, 10,
	9, 10, 13, 8,
}

// MCCPanelHeader is the MCC Panel Summary sheet header row.
var MCCPanelHeader = []string{
	"Panel Tag", "Area", "Voltage (V)", "Connected kW", "Running kW",
	"Demand kW", "Demand kVA", "Demand (A)", "Main CB (A)", "Bus",
	"Fdr Cond (A)", "SCCR (kA)", "Buckets", "Feeders",
}

var mccPanelWidths = []float64{
	12, 8, 11, 13, 12,
	12, 12, 11, 12, 10,
	12, 10, 8, 8,
}

// CableScheduleHeader is the Cable Schedule sheet header row.
var CableScheduleHeader = []string{
	"Cable Tag", "From", "To", "Description", "Motor kW", "Cable Type",
	"Construction", "Size", "Length (m)", "Assumed", "VD (%)", "VD OK",
	"Current (A)", "Sizing Basis",
}

var cableScheduleWidths = []float64{
	14, 12, 14, 25, 10, 12,
	28, 12, 11, 9, 8, 7,
	11, 30,
}

// TransformerHeader is the Transformer Schedule sheet header row.
var TransformerHeader = []string{
	"Xfmr Tag", "Primary V", "Secondary V", "Rating kVA", "Z (%)",
	"Connected kVA", "Demand kVA", "Loading (%)", "Spare (%)",
}

var transformerWidths = []float64{
	12, 11, 11, 12, 8,
	13, 12, 11, 10,
}

// PlantSummaryHeader is the Plant Load Summary sheet header row.
var PlantSummaryHeader = []string{
	"Category", "Connected kW", "Demand kW", "Demand kVA", "Notes",
}

var plantSummaryWidths = []float64{28, 14, 14, 14, 40}

type sheetDef struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// BuildWorkbook renders the report as an Excel workbook. Tier-gated
// sections appear only when the report carries them.
func BuildWorkbook(rep report.Report) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so Close only on the error paths.

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := workbookSheets(rep)
	for i, def := range sheets {
		if err := writeSheet(f, headerStyle, def); err != nil {
			f.Close()
			return nil, err
		}
		if i == 0 {
			index, err := f.GetSheetIndex(def.name)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to look up sheet %q: %w", def.name, err)
			}
			f.DeleteSheet("Sheet1")
			f.SetActiveSheet(index)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders the report workbook to a file.
func WriteXLSX(path string, rep report.Report) error {
	data, err := BuildWorkbook(rep)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func workbookSheets(rep report.Report) []sheetDef {
	sheets := []sheetDef{
		{"Load List", LoadListHeader, loadListWidths, loadRows(rep)},
	}
	if len(rep.MCCBuckets) > 0 {
		sheets = append(sheets, sheetDef{"MCC Bucket Schedule", MCCBucketHeader, mccBucketWidths, bucketRows(rep)})
	}
	sheets = append(sheets, sheetDef{"MCC Panel Summary", MCCPanelHeader, mccPanelWidths, panelRows(rep)})
	if rep.CableSchedule != nil {
		sheets = append(sheets, sheetDef{"Cable Schedule", CableScheduleHeader, cableScheduleWidths, cableRows(rep)})
	}
	if rep.PlantLoadSummary != nil {
		sheets = append(sheets, sheetDef{"Plant Summary", PlantSummaryHeader, plantSummaryWidths, plantSummaryRows(rep)})
	}
	if len(rep.Transformers) > 0 {
		sheets = append(sheets, sheetDef{"Transformer Schedule", TransformerHeader, transformerWidths, transformerRows(rep)})
	}
	sheets = append(sheets, sheetDef{"Notes", []string{"Load List Notes and Disclaimers"}, []float64{90}, notesRows(rep)})
	return sheets
}

func writeSheet(f *excelize.File, headerStyle int, def sheetDef) error {
	if _, err := f.NewSheet(def.name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", def.name, err)
	}

	for col, header := range def.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(def.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(def.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := 0; i < len(def.headers); i++ {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if i < len(def.widths) && def.widths[i] > 0 {
			if err := f.SetColWidth(def.name, col, col, def.widths[i]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for rowIdx, row := range def.rows {
		for colIdx, value := range row {
			if value == nil || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(def.name, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(def.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func loadRows(rep report.Report) [][]any {
	rows := make([][]any, 0, len(rep.Loads))
	for _, l := range rep.Loads {
		rows = append(rows, []any{
			l.EquipmentTag, l.Description, l.Area, l.RatedKW, l.VoltageV,
			l.EfficiencyPct, l.PowerFactor, l.FLCTableA, l.FLANameplateA,
			l.LRAA, l.ServiceFactor, l.FeederType, l.BrakeKW, l.AbsorbedKW,
			l.DutyCycle, l.RunningHoursPerDay, l.LoadFactor, l.Quantity,
			l.DiversityFactor, l.RunningKW, l.DemandKW, l.DailyKWh, l.MCCPanel,
		})
	}
	return rows
}

func bucketRows(rep report.Report) [][]any {
	rows := make([][]any, 0, len(rep.MCCBuckets))
	for _, b := range rep.MCCBuckets {
		rows = append(rows, []any{
			b.BucketID, b.Position, b.MotorTag, b.MotorDescription,
			b.MotorRatedKW, b.FLCTableA, b.UnitType, b.BranchSCPDType,
			b.BranchSCPDRatingA, b.OverloadSettingA, b.OverloadClass,
			b.SCCRKA, b.BucketHeightUnits, b.ControlVoltageV,
		})
	}
	return rows
}

func panelRows(rep report.Report) [][]any {
	rows := make([][]any, 0, len(rep.MCCPanels))
	for _, p := range rep.MCCPanels {
		rows = append(rows, []any{
			p.PanelTag, p.Area, p.SupplyVoltageV, p.ConnectedKW, p.RunningKW,
			p.DemandWithDiversityKW, p.DemandKVA, p.DemandAmps, p.MainBreakerA,
			p.BusRating, p.FeederConductorMinA, p.LineupSCCRKA, p.BucketCount,
			p.FeederCount,
		})
	}
	return rows
}

func cableRows(rep report.Report) [][]any {
	rows := make([][]any, 0, rep.CableSchedule.TotalCables)
	for _, c := range rep.CableSchedule.Cables {
		rows = append(rows, []any{
			c.CableTag, c.FromPanel, c.ToEquipment, c.EquipmentDescription,
			c.MotorKW, c.CableType, c.CableConstruction, c.CableSize,
			c.LengthM, yesNo(c.LengthAssumed), c.VoltageDropPct,
			yesNo(c.VoltageDropCompliant), c.CurrentA, c.SizingBasis,
		})
	}
	return rows
}

func plantSummaryRows(rep report.Report) [][]any {
	s := rep.PlantLoadSummary
	pf := s.Summary.PowerFactor
	return [][]any{
		{"Process Loads", s.Summary.ProcessConnectedKW, s.Summary.ProcessDemandKW,
			round1(s.Summary.ProcessDemandKW / pf), ""},
		{"Non-Process Allowance", s.Summary.NonProcessConnectedKW, s.Summary.NonProcessDemandKW,
			round1(s.Summary.NonProcessDemandKW / pf), "HVAC, lighting, small power, I&C"},
		{"TOTAL", s.Summary.TotalConnectedKW, s.Summary.TotalDemandKW,
			s.Summary.TotalDemandKVA, fmt.Sprintf("Diversity factor %.3f", s.Summary.DiversityFactor)},
		{fmt.Sprintf("Future (+%g%% growth)", s.FutureGrowth.GrowthPct), "",
			s.FutureGrowth.FutureDemandKW, s.FutureGrowth.FutureDemandKVA,
			s.TransformerSizing.Notes},
	}
}

func transformerRows(rep report.Report) [][]any {
	rows := make([][]any, 0, len(rep.Transformers))
	for _, tx := range rep.Transformers {
		rows = append(rows, []any{
			tx.TransformerTag, tx.PrimaryVoltage, tx.SecondaryVoltage,
			tx.Sizing.SelectedKVA, tx.Sizing.TypicalImpedancePct,
			round1(tx.Sizing.ConnectedKVA), round1(tx.Sizing.DemandKVA),
			tx.Sizing.LoadingWithGrowthPct, tx.Sizing.SpareCapacityPct,
		})
	}
	return rows
}

func notesRows(rep report.Report) [][]any {
	rows := [][]any{
		{fmt.Sprintf("Output tier: %d (%s), completeness %.0f%%",
			rep.OutputTier.Tier, rep.OutputTier.TierName, rep.OutputTier.CompletenessPct)},
	}
	for _, d := range rep.OutputTier.Disclaimers {
		rows = append(rows, []any{d})
	}
	for _, n := range rep.Assumptions.Notes {
		rows = append(rows, []any{n})
	}
	if rep.CableSchedule != nil {
		for _, d := range rep.CableSchedule.Disclaimers {
			rows = append(rows, []any{d})
		}
	}
	return rows
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
