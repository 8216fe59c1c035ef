package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plantload/internal/catalog"
)

func TestVoltageDropPct_ThreePhaseRunning(t *testing.T) {
	result := VoltageDropPct(100, 50, 35, 400, 3, 0.85, 75)
	assert.InDelta(t, 5.01, result.DropV, 0.02)
	assert.InDelta(t, 1.25, result.DropPct, 0.01)
	assert.True(t, result.CompliantBranch)
	assert.False(t, result.CompliantFeeder)
}

func TestVoltageDropPct_UnknownTemperatureDefaultsTo75C(t *testing.T) {
	at75 := VoltageDropPct(100, 50, 35, 400, 3, 0.85, 75)
	unknown := VoltageDropPct(100, 50, 35, 400, 3, 0.85, 60)
	assert.Equal(t, at75.DropPct, unknown.DropPct)
}

func TestMotorStartingVoltageDrop(t *testing.T) {
	result := MotorStartingVoltageDrop(600, 100, 95, 400, 3)
	assert.InDelta(t, 3.8, result.DropPct, 0.05)
	assert.Equal(t, 0.30, result.StartingPowerFactor)
	assert.Contains(t, result.Impact, "LOW")
	assert.True(t, result.Compliant)
}

func TestSizeCableForVoltageDrop(t *testing.T) {
	sizes := []catalog.CableSize{
		{Size: "25 mm2", MM2: 25},
		{Size: "35 mm2", MM2: 35},
		{Size: "50 mm2", MM2: 50},
		{Size: "70 mm2", MM2: 70},
	}

	result := SizeCableForVoltageDrop(sizes, 150, 100, 400, 3.0, 3, 0.85)
	assert.Equal(t, "50 mm2", result.SelectedSize)
	assert.InDelta(t, 2.71, result.DropPct, 0.02)
	assert.True(t, result.MeetsTarget)
}

func TestSizeCableForVoltageDrop_ExceedsAvailable(t *testing.T) {
	sizes := []catalog.CableSize{{Size: "25 mm2", MM2: 25}}

	result := SizeCableForVoltageDrop(sizes, 400, 300, 400, 3.0, 3, 0.85)
	assert.Equal(t, "Exceeds available sizes", result.SelectedSize)
	assert.False(t, result.MeetsTarget)
}

func TestCheckTotalVoltageDrop(t *testing.T) {
	ok := CheckTotalVoltageDrop(1.8, 2.5)
	assert.Equal(t, 4.3, ok.TotalPct)
	assert.True(t, ok.Compliant)

	over := CheckTotalVoltageDrop(3.0, 2.5)
	assert.Equal(t, 5.5, over.TotalPct)
	assert.False(t, over.Compliant)
	assert.Contains(t, over.Notes, "EXCEEDS")
}
