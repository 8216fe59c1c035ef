package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plantload/internal/models"
)

func TestTypicalTransformerImpedance_DryType(t *testing.T) {
	assert.Equal(t, 3.0, TypicalTransformerImpedance(50, "dry_type"))
	assert.Equal(t, 4.5, TypicalTransformerImpedance(150, "dry_type"))
	assert.Equal(t, 5.0, TypicalTransformerImpedance(300, "dry_type"))
	assert.Equal(t, 5.5, TypicalTransformerImpedance(750, "dry_type"))
	assert.Equal(t, 5.75, TypicalTransformerImpedance(1000, "dry_type"))
}

func TestTypicalTransformerImpedance_OilFilled(t *testing.T) {
	assert.Equal(t, 2.5, TypicalTransformerImpedance(100, "oil_filled"))
	assert.Equal(t, 4.0, TypicalTransformerImpedance(333, "oil_filled"))
	assert.Equal(t, 5.5, TypicalTransformerImpedance(1000, "oil_filled"))
}

func TestSizeTransformer_ANSISeries(t *testing.T) {
	result := SizeTransformer(850, 600, 20, models.StandardNEMA, 85)
	assert.Equal(t, 720.0, result.RequiredKVA)
	assert.Equal(t, 1000.0, result.SelectedKVA)
	assert.Equal(t, 60.0, result.LoadingAtDemandPct)
	assert.Equal(t, 72.0, result.LoadingWithGrowthPct)
	assert.Equal(t, 28.0, result.SpareCapacityPct)
	assert.Equal(t, 5.75, result.TypicalImpedancePct)
	assert.Equal(t, "ANSI", result.Standard)
}

func TestSizeTransformer_SeriesFollowsStandard(t *testing.T) {
	// Required 540 kVA at 85% loading needs 635.3 kVA minimum.
	iec := SizeTransformer(600, 450, 20, models.StandardIEC, 85)
	assert.Equal(t, 800.0, iec.SelectedKVA)
	assert.Equal(t, "IEC", iec.Standard)

	ansi := SizeTransformer(600, 450, 20, models.StandardNEMA, 85)
	assert.Equal(t, 750.0, ansi.SelectedKVA)
}

func TestSizeTransformer_DemandExceedsLargestSize(t *testing.T) {
	result := SizeTransformer(3500, 3000, 20, models.StandardIEC, 85)
	assert.Equal(t, 2500.0, result.SelectedKVA)
	assert.Contains(t, result.Notes, "exceeds largest standard size")
}
