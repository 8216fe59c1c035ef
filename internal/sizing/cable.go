package sizing

import (
	"fmt"

	"plantload/internal/catalog"
	"plantload/internal/models"
)

// AmpacityTable supplies code-table cable data. The catalog Repository
// implements it.
type AmpacityTable interface {
	CableSizes(standard models.MotorStandard) []catalog.CableSize
	CableTableReference(standard models.MotorStandard) string
	AmbientCorrection(standard models.MotorStandard, ambientTempC float64) float64
	GroupingCorrection(circuits int) float64
}

// CableSelection is one cable size pick with its derating trail.
type CableSelection struct {
	SelectedSize       string               `yaml:"selected_size"`
	SizeMM2            float64              `yaml:"size_mm2"`
	TableAmpacityA     float64              `yaml:"table_ampacity_a"`
	DeratedAmpacityA   float64              `yaml:"derated_ampacity_a"`
	RequiredAmpacityA  float64              `yaml:"required_ampacity_a"`
	AmbientTempC       float64              `yaml:"ambient_temp_c"`
	AmbientCorrection  float64              `yaml:"ambient_correction"`
	GroupedCircuits    int                  `yaml:"grouped_circuits"`
	GroupingCorrection float64              `yaml:"grouping_correction"`
	TotalDerating      float64              `yaml:"total_derating"`
	Standard           models.MotorStandard `yaml:"standard"`
	TableReference     string               `yaml:"table_reference"`
	Application        string               `yaml:"application,omitempty"`
	SizingBasis        string               `yaml:"sizing_basis,omitempty"`
}

// SelectCable picks the smallest table size whose ampacity covers the
// requirement after ambient and grouping derating. Beyond the table it
// degrades to an "Exceeds table" marker instead of failing.
func SelectCable(table AmpacityTable, requiredA float64, standard models.MotorStandard, ambientTempC float64, groupedCircuits int) CableSelection {
	ambient := table.AmbientCorrection(standard, ambientTempC)
	grouping := table.GroupingCorrection(groupedCircuits)

	derating := ambient * grouping
	if derating <= 0 {
		derating = 1.0
	}

	// Derating raises the table ampacity the cable must start from.
	needed := requiredA / derating

	selection := CableSelection{
		SelectedSize:       "Exceeds table",
		RequiredAmpacityA:  round1(requiredA),
		AmbientTempC:       ambientTempC,
		AmbientCorrection:  round2(ambient),
		GroupedCircuits:    groupedCircuits,
		GroupingCorrection: round2(grouping),
		TotalDerating:      round2(derating),
		Standard:           standard,
		TableReference:     table.CableTableReference(standard),
	}

	for _, size := range table.CableSizes(standard) {
		if size.Ampacity >= needed {
			selection.SelectedSize = size.Size
			selection.SizeMM2 = size.MM2
			selection.TableAmpacityA = size.Ampacity
			selection.DeratedAmpacityA = round1(size.Ampacity * derating)
			break
		}
	}

	return selection
}

// SelectMotorBranchCable sizes the branch cable at 125% of table FLC
// per NEC 430.22.
func SelectMotorBranchCable(table AmpacityTable, flcTableA float64, standard models.MotorStandard, ambientTempC float64, groupedCircuits int) CableSelection {
	required := 1.25 * flcTableA
	selection := SelectCable(table, required, standard, ambientTempC, groupedCircuits)
	selection.Application = "motor_branch_circuit"
	selection.SizingBasis = fmt.Sprintf("125%% x %gA FLC = %.1fA (NEC 430.22)", flcTableA, required)
	return selection
}

// SelectVFDSupplyCable sizes the drive supply cable at 125% of input
// current per NEC 430.122, with an optional harmonic derating.
func SelectVFDSupplyCable(table AmpacityTable, vfdInputA, harmonicDerating float64, standard models.MotorStandard, ambientTempC float64, groupedCircuits int) CableSelection {
	if harmonicDerating <= 0 {
		harmonicDerating = 1.0
	}
	required := 1.25 * vfdInputA * harmonicDerating
	selection := SelectCable(table, required, standard, ambientTempC, groupedCircuits)
	selection.Application = "vfd_supply"
	selection.SizingBasis = fmt.Sprintf("125%% x %gA x %g = %.1fA (NEC 430.122)", vfdInputA, harmonicDerating, required)
	return selection
}

// SelectFeederCable sizes a feeder cable for the ampacity already
// computed per NEC 430.24.
func SelectFeederCable(table AmpacityTable, feederAmpacityA float64, standard models.MotorStandard, ambientTempC float64, groupedCircuits int) CableSelection {
	selection := SelectCable(table, feederAmpacityA, standard, ambientTempC, groupedCircuits)
	selection.Application = "motor_feeder"
	selection.SizingBasis = fmt.Sprintf("Feeder ampacity %.1fA per NEC 430.24", feederAmpacityA)
	return selection
}
