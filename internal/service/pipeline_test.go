package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantload/internal/config"
)

const testEquipmentList = `project_id: WWTP-TEST-01
capacity_mld: 10
equipment:
  - tag: 300-B-01
    description: Aeration blower
    power_kw: 110
    feeder_type: VFD
  - tag: 300-P-01
    description: RAS pump
    power_kw: 37
    feeder_type: DOL
    head_m: 12
  - tag: 100-SC-01
    description: Mechanical screen
    power_kw: 5.5
    feeder_type: DOL
  - tag: 100-GATE-01
    description: Manual slide gate
    power_kw: 0
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	listPath := filepath.Join(dir, "equipment-list.yaml")
	require.NoError(t, os.WriteFile(listPath, []byte(testEquipmentList), 0o644))

	cfg := &config.Config{}
	cfg.Project.EquipmentList = listPath
	cfg.Project.Dir = dir
	cfg.Project.CatalogsDir = "../../catalogs"
	cfg.Project.OutputDir = filepath.Join(dir, "electrical")
	cfg.Electrical.MotorStandard = "IEC"
	cfg.Electrical.VoltageV = 400
	cfg.Electrical.FrequencyHz = 50
	cfg.Electrical.Phases = 3
	cfg.Panels.SplitLarge = true
	cfg.Panels.MaxFeeders = 30
	cfg.Panels.MaxConnectedKW = 500
	cfg.Export.WriteYAML = true
	cfg.Export.WriteXLSX = true
	return cfg
}

func TestPipeline_Run(t *testing.T) {
	cfg := testConfig(t)
	pipeline, err := NewPipeline(cfg, zap.NewNop())
	require.NoError(t, err)

	rep, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "WWTP-TEST-01", rep.ProjectID)
	// The zero-kW gate is not a motor load.
	assert.Len(t, rep.Loads, 3)
	assert.NotEmpty(t, rep.MCCPanels)
	assert.GreaterOrEqual(t, int(rep.OutputTier.Tier), 1)
	assert.Greater(t, rep.EnergySummary.TotalConnectedKW, 0.0)

	_, err = os.Stat(filepath.Join(cfg.Project.OutputDir, "load-list.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Project.OutputDir, "load-list.xlsx"))
	assert.NoError(t, err)
}

func TestPipeline_RunToleratesMalformedArtifact(t *testing.T) {
	cfg := testConfig(t)
	badDir := filepath.Join(cfg.Project.Dir, "mcp-outputs", "bad")
	require.NoError(t, os.MkdirAll(badDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "sizing.json"), []byte("{not json"), 0o644))

	pipeline, err := NewPipeline(cfg, zap.NewNop())
	require.NoError(t, err)

	// A corrupt artifact must not abort the run; the affected loads
	// fall back to equipment-list data.
	rep, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "WWTP-TEST-01", rep.ProjectID)
	assert.Len(t, rep.Loads, 3)
	assert.GreaterOrEqual(t, int(rep.OutputTier.Tier), 1)
}

func TestPipeline_RunWithoutExports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.WriteYAML = false
	cfg.Export.WriteXLSX = false

	pipeline, err := NewPipeline(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.Project.OutputDir, "load-list.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestPipeline_RunCancelled(t *testing.T) {
	cfg := testConfig(t)
	pipeline, err := NewPipeline(cfg, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pipeline.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_MissingEquipmentList(t *testing.T) {
	cfg := testConfig(t)
	cfg.Project.EquipmentList = filepath.Join(t.TempDir(), "missing.yaml")

	pipeline, err := NewPipeline(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background())
	assert.ErrorContains(t, err, "equipment list")
}
