package equipment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantload/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_PlainYAML(t *testing.T) {
	path := writeFile(t, "equipment-list.yaml", `
project_id: WWTP-10MLD
capacity_mld: 10
cable_lengths_verified: false
equipment:
  - tag: 200-B-01A
    description: Aeration Blower A
    power_kw: 110
    feeder_type: VFD
    area: 200
    quantity_note: "2W+1S"
  - tag: 100-SC-01
    description: Mechanical Bar Screen
    power_kw: 3.7
    feeder_type: DOL
    area: 100
`)

	loader := NewLoader(zap.NewNop())
	meta, records, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "WWTP-10MLD", meta.ProjectID)
	assert.Equal(t, 10.0, meta.CapacityMLD)
	require.Len(t, records, 2)

	assert.Equal(t, "B", records[0].TypeCode)
	assert.Equal(t, models.ClassBlower, records[0].Class)
	assert.Equal(t, models.FeederVFD, records[0].Feeder)

	assert.Equal(t, "SC", records[1].TypeCode)
	assert.Equal(t, models.ClassScreen, records[1].Class)
	assert.Equal(t, models.FeederDOL, records[1].Feeder)
	assert.Equal(t, 1, records[1].Quantity)
}

func TestLoad_QMDFrontmatter(t *testing.T) {
	path := writeFile(t, "equipment-list.qmd", `---
project_id: WWTP-5MLD
capacity_mld: 5
equipment:
  - tag: 300-P-02
    description: RAS Pump
    power_kw: 15
    feeder_type: VFD
    area: 300
---

# Equipment List

Narrative content ignored by the loader.
`)

	loader := NewLoader(zap.NewNop())
	meta, records, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "WWTP-5MLD", meta.ProjectID)
	require.Len(t, records, 1)
	assert.Equal(t, models.ClassPump, records[0].Class)
}

func TestLoad_BareList(t *testing.T) {
	path := writeFile(t, "equipment-list.yaml", `
- tag: 400-AG-01
  power_kw: 7.5
  feeder_type: DOL
`)

	loader := NewLoader(zap.NewNop())
	meta, records, err := loader.Load(path)
	require.NoError(t, err)

	assert.Empty(t, meta.ProjectID)
	require.Len(t, records, 1)
	assert.Equal(t, models.ClassMixer, records[0].Class)
	assert.Equal(t, 100, records[0].Area)
}

func TestLoad_QMDWithoutFrontmatter(t *testing.T) {
	path := writeFile(t, "equipment-list.qmd", "# No frontmatter here\n")

	loader := NewLoader(zap.NewNop())
	_, _, err := loader.Load(path)
	require.Error(t, err)
}

func TestLoad_ExplicitTypeCodeWins(t *testing.T) {
	path := writeFile(t, "equipment-list.yaml", `
equipment:
  - tag: 200-B-01A
    equipment_type: BL
    power_kw: 55
`)

	loader := NewLoader(zap.NewNop())
	_, records, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BL", records[0].TypeCode)
	assert.Equal(t, models.ClassBlower, records[0].Class)
}

func TestFilterMotorized(t *testing.T) {
	records := []models.EquipmentRecord{
		{Tag: "200-B-01A", Class: models.ClassBlower, RatedKW: 110},
		{Tag: "100-TK-01", Class: models.ClassOther, RatedKW: 0},
		{Tag: "300-P-01", Class: models.ClassPump, RatedKW: 0},
		{Tag: "100-SC-01", Class: models.ClassScreen, RatedKW: 3.7},
	}

	motorized := FilterMotorized(records)
	require.Len(t, motorized, 2)
	assert.Equal(t, "200-B-01A", motorized[0].Tag)
	assert.Equal(t, "100-SC-01", motorized[1].Tag)
}
