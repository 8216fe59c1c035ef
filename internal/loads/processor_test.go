package loads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantload/internal/catalog"
	"plantload/internal/models"
)

// MockCatalog mocks the catalog lookups
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) LookupFLC(powerKW float64, voltageV, frequencyHz int, standard models.MotorStandard, efficiencyClass string) (float64, string) {
	args := m.Called(powerKW, voltageV, frequencyHz, standard, efficiencyClass)
	return args.Get(0).(float64), args.String(1)
}

func (m *MockCatalog) MotorEfficiency(kw float64, poles int, class string) float64 {
	args := m.Called(kw, poles, class)
	return args.Get(0).(float64)
}

func (m *MockCatalog) LRAMultiplier(designLetter string) float64 {
	args := m.Called(designLetter)
	return args.Get(0).(float64)
}

func (m *MockCatalog) LookupDutyProfile(class models.EquipmentClass, processUnitType string, feeder models.FeederClass) catalog.DutyProfile {
	args := m.Called(class, processUnitType, feeder)
	return args.Get(0).(catalog.DutyProfile)
}

func setupProcessor() (*Processor, *MockCatalog) {
	mockCatalog := new(MockCatalog)
	p := NewProcessor(mockCatalog, models.StandardIEC, 400, 50, zap.NewNop())
	return p, mockCatalog
}

func expectDefaults(mockCatalog *MockCatalog) {
	mockCatalog.On("MotorEfficiency", mock.Anything, mock.Anything, mock.Anything).Return(95.0).Maybe()
	mockCatalog.On("LRAMultiplier", "").Return(6.0)
	mockCatalog.On("LookupDutyProfile", mock.Anything, mock.Anything, mock.Anything).Return(catalog.DutyProfile{
		RunningHoursPerDay: 24,
		LoadFactor:         0.70,
		DutyCycle:          "continuous",
	})
}

func TestProcess_BrakeFromArtifact(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 110.0, 400, 50, models.StandardIEC, "IE3").Return(196.0, "IEC-60034")
	expectDefaults(mockCatalog)

	brake := 85.5
	load := p.Process(
		models.EquipmentRecord{
			Tag:     "200-B-01A",
			Class:   models.ClassBlower,
			Feeder:  models.FeederVFD,
			RatedKW: 110,
			Area:    200,
		},
		models.DutyPoint{
			EquipmentTag: "200-B-01A",
			Found:        true,
			Source:       "mcp-outputs/aeration/sizing.json",
			BrakeKW:      &brake,
		},
	)

	assert.Equal(t, 85.5, load.BrakeKW)
	assert.Equal(t, "artifact", load.BrakeSource)
	assert.Equal(t, 90.0, load.AbsorbedKW)
	assert.Equal(t, "mcp-outputs/aeration/sizing.json", load.DutyPointSource)
	mockCatalog.AssertExpectations(t)
}

func TestProcess_PumpBrakeFromPhysics(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 22.0, 400, 50, models.StandardIEC, "IE3").Return(41.5, "IEC-60034")
	expectDefaults(mockCatalog)

	load := p.Process(
		models.EquipmentRecord{Tag: "300-P-02", Class: models.ClassPump, RatedKW: 22, Area: 300},
		models.DutyPoint{
			Found: true,
			Pump:  &models.PumpDuty{FlowM3h: 250, HeadM: 18, Efficiency: 0.72},
		},
	)

	// ρgQH/η = 9.81·250·18 / (3600·0.72)
	assert.InDelta(t, 17.03, load.BrakeKW, 0.01)
	assert.Equal(t, "pump_hydraulic", load.BrakeSource)
}

func TestProcess_BlowerBrakeFromPhysics(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 110.0, 400, 50, models.StandardIEC, "IE3").Return(196.0, "IEC-60034")
	expectDefaults(mockCatalog)

	load := p.Process(
		models.EquipmentRecord{Tag: "200-B-01A", Class: models.ClassBlower, RatedKW: 110, Area: 200},
		models.DutyPoint{
			Found:  true,
			Blower: &models.BlowerDuty{FlowNm3h: 2500, InletBar: 1.013, OutletBar: 1.7, Efficiency: 0.70},
		},
	)

	assert.InDelta(t, 60.17, load.BrakeKW, 0.1)
	assert.Equal(t, "blower_polytropic", load.BrakeSource)
}

func TestProcess_MixerBrakeFromPhysics(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 7.5, 400, 50, models.StandardIEC, "IE3").Return(14.9, "IEC-60034")
	expectDefaults(mockCatalog)

	load := p.Process(
		models.EquipmentRecord{Tag: "400-AG-01", Class: models.ClassMixer, RatedKW: 7.5, Area: 400},
		models.DutyPoint{
			Found: true,
			Mixer: &models.MixerDuty{VolumeM3: 450, WPerM3: 8},
		},
	)

	assert.Equal(t, 3.6, load.BrakeKW)
	assert.Equal(t, "mixer_volumetric", load.BrakeSource)
}

func TestProcess_BrakeFallbackIsRatedTimesLoading(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 3.7, 400, 50, models.StandardIEC, "IE3").Return(8.0, "IEC-60034")
	expectDefaults(mockCatalog)

	load := p.Process(
		models.EquipmentRecord{Tag: "100-SC-01", Class: models.ClassScreen, RatedKW: 3.7, Area: 100},
		models.DutyPoint{},
	)

	// Rated kW is already shaft power: the estimate is rated × 0.85,
	// with no efficiency term.
	assert.InDelta(t, 3.7*0.85, load.BrakeKW, 0.001)
	assert.Equal(t, "rated_estimate", load.BrakeSource)
	assert.NotEqual(t, round2(3.7*0.95*0.85), load.BrakeKW)
}

func TestProcess_FLCAndFLAStayIndependent(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 110.0, 400, 50, models.StandardIEC, "IE3").Return(196.0, "IEC-60034")
	expectDefaults(mockCatalog)

	load := p.Process(
		models.EquipmentRecord{
			Tag:           "200-B-01A",
			Class:         models.ClassBlower,
			RatedKW:       110,
			Area:          200,
			FLANameplateA: 182.0,
		},
		models.DutyPoint{},
	)

	assert.Equal(t, 196.0, load.FLCTableA)
	assert.Equal(t, 182.0, load.FLANameplateA)
	assert.Equal(t, "table", load.FLCProvenance.Source)
	assert.False(t, load.FLCProvenance.Verified)
	assert.Equal(t, 196.0*6.0, load.LRAA)
}

func TestProcess_FLAEstimatedWhenMissing(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 110.0, 400, 50, models.StandardIEC, "IE3").Return(196.0, "IEC-60034")
	expectDefaults(mockCatalog)

	load := p.Process(
		models.EquipmentRecord{Tag: "200-B-01A", Class: models.ClassBlower, RatedKW: 110, Area: 200},
		models.DutyPoint{},
	)

	// FLA = kW·1000 / (√3·400·0.95·0.85)
	assert.InDelta(t, 196.6, load.FLANameplateA, 0.5)
	assert.Contains(t, load.FLCProvenance.Notes, "estimated")
}

func TestProcess_DiversityFromQuantityNote(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", 110.0, 400, 50, models.StandardIEC, "IE3").Return(196.0, "IEC-60034")
	expectDefaults(mockCatalog)

	brake := 77.0
	load := p.Process(
		models.EquipmentRecord{
			Tag:          "200-B-01A",
			Class:        models.ClassBlower,
			RatedKW:      110,
			Area:         200,
			Quantity:     3,
			QuantityNote: "2W + 1S",
		},
		models.DutyPoint{Found: true, BrakeKW: &brake},
	)

	assert.Equal(t, 0.67, load.DiversityFactor)
	assert.Equal(t, 2, load.QuantityWorking)
	assert.Equal(t, 1, load.QuantityStandby)
	assert.Equal(t, round2(load.RunningKW*0.67), load.DemandKW)
}

func TestProcess_PanelDefaultsFromArea(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", mock.Anything, 400, 50, models.StandardIEC, "IE3").Return(41.5, "IEC-60034")
	expectDefaults(mockCatalog)

	load := p.Process(
		models.EquipmentRecord{Tag: "300-P-02", Class: models.ClassPump, RatedKW: 22, Area: 300, Quantity: 1},
		models.DutyPoint{},
	)

	assert.Equal(t, "MCC-300", load.MCCPanel)
	assert.Equal(t, "1W", load.QuantityNote)
	assert.Equal(t, 1.0, load.ServiceFactor)
}

func TestParseDiversity(t *testing.T) {
	tests := []struct {
		note      string
		diversity float64
		working   int
		standby   int
	}{
		{"1W", 1.0, 1, 0},
		{"1W + 1S", 0.5, 1, 1},
		{"2W+1S", 0.67, 2, 1},
		{"3W + 1S", 0.75, 3, 1},
		{"2", 1.0, 2, 0},
		{"", 1.0, 1, 0},
		{"N+1", 1.0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			diversity, working, standby := ParseDiversity(tt.note)
			assert.Equal(t, tt.diversity, diversity)
			assert.Equal(t, tt.working, working)
			assert.Equal(t, tt.standby, standby)
		})
	}
}

func TestProcessAll_PairsDutyPointsByTag(t *testing.T) {
	p, mockCatalog := setupProcessor()
	mockCatalog.On("LookupFLC", mock.Anything, 400, 50, models.StandardIEC, "IE3").Return(41.5, "IEC-60034")
	expectDefaults(mockCatalog)

	records := []models.EquipmentRecord{
		{Tag: "300-P-01", Class: models.ClassPump, RatedKW: 22, Area: 300},
		{Tag: "300-P-02", Class: models.ClassPump, RatedKW: 22, Area: 300},
	}
	brake := 15.0
	points := map[string]models.DutyPoint{
		"300-P-01": {Found: true, BrakeKW: &brake, Source: "sizing/pumps.json"},
	}

	loads := p.ProcessAll(records, points)
	require.Len(t, loads, 2)
	assert.Equal(t, "artifact", loads[0].BrakeSource)
	assert.Equal(t, "rated_estimate", loads[1].BrakeSource)
}
