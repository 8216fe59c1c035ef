package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVFDSupplyConductorAmpacity(t *testing.T) {
	plain := VFDSupplyConductorAmpacity(207, 0)
	assert.Equal(t, 258.8, plain.MinAmpacityA)
	assert.Equal(t, 1.0, plain.HarmonicDerating)
	assert.Equal(t, "NEC 430.122(A)", plain.CodeReference)

	derated := VFDSupplyConductorAmpacity(207, 1.15)
	assert.Equal(t, 297.6, derated.MinAmpacityA)
}

func TestVFDBranchSCPD_MarkingLimits(t *testing.T) {
	result := VFDBranchSCPD(195, 207, 300, DualElementFuse)
	assert.Equal(t, 350.0, result.MaxPerNECA)
	assert.Equal(t, 300.0, result.MaxEffectiveA)
	assert.Equal(t, "vfd_marking", result.LimitedBy)
	assert.Equal(t, 225.0, result.SelectedRatingA)
}

func TestVFDBranchSCPD_NECLimits(t *testing.T) {
	result := VFDBranchSCPD(195, 207, 0, InverseTimeCB)
	assert.Equal(t, 500.0, result.MaxPerNECA)
	assert.Equal(t, "nec_430_52", result.LimitedBy)
	assert.Equal(t, 225.0, result.SelectedRatingA)
}

func TestEstimateVFDInput(t *testing.T) {
	result := EstimateVFDInput(195, 0)
	assert.Equal(t, 214.5, result.EstimatedInputA)
	assert.Equal(t, 1.1, result.Multiplier)
	assert.NotEmpty(t, result.Warning)
}

func TestSizeVFDCircuit_UserProvidedInput(t *testing.T) {
	result := SizeVFDCircuit(110, 195, 400, 207, 300, DualElementFuse, 0)
	assert.Equal(t, 258.8, result.ConductorMinAmpacityA)
	assert.Equal(t, 225.0, result.BranchSCPDRatingA)
	assert.Equal(t, "vfd_marking", result.BranchSCPDLimitedBy)
	assert.Equal(t, 195.0, result.OverloadSettingA)
	assert.Equal(t, "VFD_INTEGRAL", result.OverloadType)
	assert.Equal(t, "user_provided", result.DataSource)
	assert.Empty(t, result.Warning)
}

func TestSizeVFDCircuit_EstimatedInput(t *testing.T) {
	result := SizeVFDCircuit(110, 195, 400, 0, 0, DualElementFuse, 0)
	assert.Equal(t, 214.5, result.VFDInputCurrentA)
	assert.Equal(t, "estimate", result.DataSource)
	assert.Contains(t, result.Warning, "ESTIMATED")
}
