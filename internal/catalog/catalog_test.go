package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantload/internal/models"
)

func loadTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository("../../catalogs", zap.NewNop())
	require.NoError(t, err)
	return repo
}

func TestNewRepository_MissingRequiredCatalog(t *testing.T) {
	_, err := NewRepository(t.TempDir(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "motor FLC tables")
}

func TestNewRepository_MissingCableCatalog_UsesBuiltin(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"motor_flc_tables.yaml", "motor_standards.yaml", "duty_profiles.yaml"} {
		data, err := os.ReadFile(filepath.Join("../../catalogs", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	repo, err := NewRepository(dir, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, repo.CablesBuiltin())
	assert.NotEmpty(t, repo.CableSizes(models.StandardIEC))
}

func TestLookupFLC_IECTable(t *testing.T) {
	repo := loadTestRepository(t)

	flc, source := repo.LookupFLC(110, 400, 50, models.StandardIEC, "IE3")
	assert.Equal(t, 196.0, flc)
	assert.Equal(t, "IEC-60034", source)
}

func TestLookupFLC_RoundsUpToNextRating(t *testing.T) {
	repo := loadTestRepository(t)

	// 100 kW is not a standard rating; the 110 kW row applies.
	flc, source := repo.LookupFLC(100, 400, 50, models.StandardIEC, "IE3")
	assert.Equal(t, 196.0, flc)
	assert.Equal(t, "IEC-60034", source)
}

func TestLookupFLC_ScalesAboveTableMax(t *testing.T) {
	repo := loadTestRepository(t)

	flc, source := repo.LookupFLC(500, 400, 50, models.StandardIEC, "IE3")
	assert.Equal(t, "IEC-60034", source)
	// Largest table entry is 400 kW at 683 A, scaled by 500/400.
	assert.InDelta(t, 683.0*500/400, flc, 0.1)
}

func TestLookupFLC_NEC(t *testing.T) {
	repo := loadTestRepository(t)

	// 74.57 kW = 100 HP exactly.
	flc, source := repo.LookupFLC(74.57, 460, 60, models.StandardNEMA, "IE3")
	assert.Equal(t, "NEC-430.250", source)
	assert.InDelta(t, 124.0, flc, 0.5)
}

func TestLookupFLC_ClosestVoltage(t *testing.T) {
	repo := loadTestRepository(t)

	// 385 V is closest to the 380 V column.
	flc, _ := repo.LookupFLC(110, 385, 50, models.StandardIEC, "IE3")
	assert.Equal(t, 206.0, flc)
}

func TestMotorEfficiency(t *testing.T) {
	repo := loadTestRepository(t)

	assert.Equal(t, 93.0, repo.MotorEfficiency(22, 4, "IE3"))
	// Between entries: the next row up applies.
	assert.Equal(t, 93.0, repo.MotorEfficiency(18.5, 4, "IE3"))
	// Above the table: last entry.
	assert.Equal(t, 96.2, repo.MotorEfficiency(1000, 4, "IE3"))
	// Unknown class falls back to IE3.
	assert.Equal(t, 93.0, repo.MotorEfficiency(22, 4, "IE9"))
}

func TestLRAMultiplier(t *testing.T) {
	repo := loadTestRepository(t)

	assert.Equal(t, 6.0, repo.LRAMultiplier(""))
	assert.Equal(t, 7.0, repo.LRAMultiplier("C"))
	assert.Equal(t, 6.0, repo.LRAMultiplier("Z"))
}

func TestLookupDutyProfile_KeywordMatch(t *testing.T) {
	repo := loadTestRepository(t)

	p := repo.LookupDutyProfile(models.ClassPump, "Sludge Transfer Station", models.FeederVFD)
	assert.Equal(t, 8.0, p.RunningHoursPerDay)
	assert.Equal(t, 0.70, p.LoadFactor)
	assert.Equal(t, "intermittent", p.DutyCycle)
}

func TestLookupDutyProfile_DefaultAndFeederClass(t *testing.T) {
	repo := loadTestRepository(t)

	vfd := repo.LookupDutyProfile(models.ClassBlower, "", models.FeederVFD)
	dol := repo.LookupDutyProfile(models.ClassBlower, "", models.FeederDOL)

	assert.Equal(t, 0.70, vfd.LoadFactor)
	assert.Equal(t, 0.95, dol.LoadFactor)
	assert.Equal(t, 24.0, vfd.RunningHoursPerDay)
}

func TestLookupDutyProfile_UnknownClassUsesPumps(t *testing.T) {
	repo := loadTestRepository(t)

	p := repo.LookupDutyProfile(models.ClassOther, "", models.FeederDOL)
	assert.Equal(t, 20.0, p.RunningHoursPerDay)
}

func TestPanelDiversity(t *testing.T) {
	repo := loadTestRepository(t)

	assert.Equal(t, 0.90, repo.PanelDiversity(25, "Aeration Basin"))
	assert.Equal(t, 0.90, repo.PanelDiversity(4, ""))
	assert.Equal(t, 0.85, repo.PanelDiversity(10, ""))
	assert.Equal(t, 0.80, repo.PanelDiversity(25, ""))
	assert.Equal(t, 0.75, repo.PanelDiversity(40, ""))
}

func TestAmbientCorrection(t *testing.T) {
	repo := loadTestRepository(t)

	assert.Equal(t, 1.0, repo.AmbientCorrection(models.StandardIEC, 30))
	assert.Equal(t, 0.91, repo.AmbientCorrection(models.StandardIEC, 40))
	// Beyond the hottest band: its factor applies.
	assert.Equal(t, 0.76, repo.AmbientCorrection(models.StandardIEC, 70))
}

func TestGroupingCorrection(t *testing.T) {
	repo := loadTestRepository(t)

	assert.Equal(t, 1.0, repo.GroupingCorrection(1))
	assert.Equal(t, 0.70, repo.GroupingCorrection(3))
}

func TestGroupingCorrection_BelowSmallestBand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"motor_flc_tables.yaml", "motor_standards.yaml", "duty_profiles.yaml"} {
		data, err := os.ReadFile(filepath.Join("../../catalogs", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	cables := `iec_60364:
  xlpe_conduit:
    reference: "test table"
    sizes:
      - {size: "25 mm2", mm2: 25, ampacity: 101}
    grouping_correction:
      - {circuits: 4, factor: 0.65}
      - {circuits: 6, factor: 0.57}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cables.yaml"), []byte(cables), 0o644))

	repo, err := NewRepository(dir, zap.NewNop())
	require.NoError(t, err)

	// Two circuits sit below the smallest listed band: the table's
	// first factor applies, not a harsher built-in default.
	assert.Equal(t, 0.65, repo.GroupingCorrection(2))
	assert.Equal(t, 0.65, repo.GroupingCorrection(5))
	assert.Equal(t, 0.57, repo.GroupingCorrection(7))
}
