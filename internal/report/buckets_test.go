package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantload/internal/catalog"
	"plantload/internal/models"
	"plantload/internal/sizing"
)

// stubTable is a fixed IEC-flavoured ampacity table so the schedule
// tests do not depend on catalog files.
type stubTable struct{}

func (stubTable) CableSizes(models.MotorStandard) []catalog.CableSize {
	return []catalog.CableSize{
		{Size: "25 mm2", MM2: 25, Ampacity: 96},
		{Size: "35 mm2", MM2: 35, Ampacity: 119},
		{Size: "50 mm2", MM2: 50, Ampacity: 144},
		{Size: "70 mm2", MM2: 70, Ampacity: 184},
		{Size: "95 mm2", MM2: 95, Ampacity: 223},
		{Size: "120 mm2", MM2: 120, Ampacity: 271},
		{Size: "150 mm2", MM2: 150, Ampacity: 309},
		{Size: "185 mm2", MM2: 185, Ampacity: 353},
		{Size: "240 mm2", MM2: 240, Ampacity: 415},
	}
}

func (stubTable) CableTableReference(models.MotorStandard) string {
	return "IEC 60364-5-52 Table B.52.4"
}

func (stubTable) AmbientCorrection(_ models.MotorStandard, ambientTempC float64) float64 {
	if ambientTempC > 30 {
		return 0.91
	}
	return 1.0
}

func (stubTable) GroupingCorrection(circuits int) float64 {
	if circuits >= 2 {
		return 0.80
	}
	return 1.0
}

func testAssembler() *Assembler {
	return NewAssembler(stubTable{}, models.StandardIEC, 400, 50, zap.NewNop())
}

func blowerVFDLoad() models.LoadRecord {
	return models.LoadRecord{
		EquipmentTag: "300-B-01",
		Description:  "Aeration blower",
		TypeCode:     "B",
		Class:        models.ClassBlower,
		RatedKW:      110,
		VoltageV:     400,
		PowerFactor:  0.85,
		FLCTableA:    195,
		FeederType:   "VFD",
		Feeder:       models.FeederVFD,
		RunningKW:    95,
		DemandKW:     90,
		DailyKWh:     2160,
		MCCPanel:     "MCC-300",
	}
}

func pumpDOLLoad() models.LoadRecord {
	return models.LoadRecord{
		EquipmentTag: "300-P-01",
		Description:  "RAS pump",
		TypeCode:     "P",
		Class:        models.ClassPump,
		RatedKW:      37,
		VoltageV:     400,
		PowerFactor:  0.85,
		FLCTableA:    65,
		LRAA:         390,
		FeederType:   "DOL",
		Feeder:       models.FeederDOL,
		RunningKW:    32,
		DemandKW:     30,
		DailyKWh:     720,
		MCCPanel:     "MCC-300",
	}
}

func testScheduleOptions() scheduleOptions {
	return scheduleOptions{
		faultKA:       30,
		faultVerified: false,
		device:        sizing.DualElementFuse,
		spares:        2,
	}
}

func TestUnitType(t *testing.T) {
	assert.Equal(t, "VFD", unitType(models.LoadRecord{Feeder: models.FeederVFD}))
	assert.Equal(t, "SOFT_STARTER", unitType(models.LoadRecord{Feeder: models.FeederSoftStarter}))
	assert.Equal(t, "FEEDER", unitType(models.LoadRecord{Feeder: models.FeederVendor}))
	assert.Equal(t, "FVR", unitType(models.LoadRecord{Feeder: models.FeederDOL, FeederType: "DOL-REV"}))
	assert.Equal(t, "FVNR", unitType(models.LoadRecord{Feeder: models.FeederDOL, FeederType: "DOL"}))
}

func TestBucketPosition(t *testing.T) {
	assert.Equal(t, "1A", bucketPosition(1))
	assert.Equal(t, "1J", bucketPosition(10))
	assert.Equal(t, "2A", bucketPosition(11))
}

func TestBucketHeight(t *testing.T) {
	assert.Equal(t, 3, bucketHeight("VFD", 90, false))
	assert.Equal(t, 4, bucketHeight("VFD", 110, false))
	assert.Equal(t, 2, bucketHeight("FVNR", 37, false))
	assert.Equal(t, 3, bucketHeight("FVNR", 37, true)) // withdrawable adds a unit
	assert.Equal(t, 4, bucketHeight("VFD", 110, true)) // capped at 4
}

func TestBuildBucket_VFD(t *testing.T) {
	a := testAssembler()

	bucket := a.buildBucket(blowerVFDLoad(), "MCC-300", 1, testScheduleOptions())

	assert.Equal(t, "MCC-300-01", bucket.BucketID)
	assert.Equal(t, "1A", bucket.Position)
	assert.Equal(t, "VFD", bucket.UnitType)
	assert.Equal(t, 185.3, bucket.FLANameplateA) // 95% of table FLC when no nameplate
	assert.Equal(t, 1170.0, bucket.LRAA)
	assert.Equal(t, 1.0, bucket.ServiceFactor)

	assert.Equal(t, "DUAL_ELEMENT_FUSE", bucket.BranchSCPDType)
	assert.Equal(t, 225.0, bucket.BranchSCPDRatingA)
	assert.Equal(t, "VFD_INTEGRAL", bucket.OverloadType)
	assert.Equal(t, 185.3, bucket.OverloadSettingA)
	assert.Equal(t, "10", bucket.OverloadClass)
	assert.Equal(t, 214.5, bucket.VFDInputCurrentA)
	assert.Equal(t, 268.1, bucket.ConductorMinAmpacityA)
	assert.Empty(t, bucket.ContactorRating)

	assert.Equal(t, "RK5", bucket.BranchSCPDFuseClass)
	assert.Equal(t, 35.0, bucket.SCCRKA)
	assert.Equal(t, 4, bucket.BucketHeightUnits)
	assert.Equal(t, "FIXED", bucket.Construction)
	assert.Equal(t, 230, bucket.ControlVoltageV)

	require.NotNil(t, bucket.Coordination)
	assert.Equal(t, "fuse", bucket.Coordination.DeviceType)
	assert.Equal(t, "dual_element", bucket.Coordination.CurveFamily)
	assert.Equal(t, 6.0, bucket.Coordination.InrushMultiple)

	require.NotNil(t, bucket.Assumptions)
	assert.True(t, bucket.Assumptions.CableLengthAssumed)
	assert.True(t, bucket.Assumptions.FaultCurrentAssumed)
}

func TestBuildBucket_DOL(t *testing.T) {
	a := testAssembler()

	bucket := a.buildBucket(pumpDOLLoad(), "MCC-300", 2, testScheduleOptions())

	assert.Equal(t, "MCC-300-02", bucket.BucketID)
	assert.Equal(t, "1B", bucket.Position)
	assert.Equal(t, "FVNR", bucket.UnitType)
	assert.Equal(t, 61.8, bucket.FLANameplateA)

	assert.Equal(t, 70.0, bucket.BranchSCPDRatingA)
	assert.Equal(t, 81.3, bucket.ConductorMinAmpacityA)
	assert.Equal(t, "THERMAL", bucket.OverloadType)
	assert.Equal(t, 71.0, bucket.OverloadSettingA) // 115% of 61.75 A estimated FLA
	assert.Equal(t, "10", bucket.OverloadClass)
	assert.Equal(t, "AC-3 65A 400V", bucket.ContactorRating)
	assert.Equal(t, 2, bucket.BucketHeightUnits)
}

func TestBuildBucket_NEMADefaultsServiceFactor(t *testing.T) {
	a := NewAssembler(stubTable{}, models.StandardNEMA, 480, 60, zap.NewNop())

	bucket := a.buildBucket(pumpDOLLoad(), "MCC-300", 1, testScheduleOptions())
	assert.Equal(t, 1.15, bucket.ServiceFactor)
	assert.Equal(t, 120, bucket.ControlVoltageV)
}

func TestBuildMCCSchedule(t *testing.T) {
	a := testAssembler()
	loads := []models.LoadRecord{blowerVFDLoad(), pumpDOLLoad()}

	schedule := a.buildMCCSchedule("MCC-300", loads, testScheduleOptions())

	require.Len(t, schedule.Buckets, 4)
	assert.Equal(t, "SPARE", schedule.Buckets[2].UnitType)
	assert.Equal(t, "MCC-300-03", schedule.Buckets[2].BucketID)
	assert.Equal(t, 2, schedule.Buckets[2].BucketHeightUnits)

	panel := schedule.Panel
	assert.Equal(t, "MCC-300", panel.PanelTag)
	assert.Equal(t, 2, panel.BucketCount)
	assert.Equal(t, 2, panel.SpareBucketCount)
	assert.Equal(t, 147.0, panel.ConnectedKW)

	// 125% x 195 + 65 = 308.8 A feeder; largest SCPD 225 + 65 = 290 A cap.
	assert.Equal(t, 308.8, panel.FeederConductorMinA)
	assert.Equal(t, 250.0, panel.MainBreakerA)
	assert.Equal(t, "400A", panel.BusRating)

	assert.Equal(t, 35.0, panel.LineupSCCRKA)
	assert.True(t, panel.SCCRCompliant)
	assert.Empty(t, panel.SCCRWarning)

	// 4 + 2 + 2 + 2 height units at 6 inches each.
	assert.Equal(t, 60.0, panel.TotalHeightInches)
	assert.Equal(t, 1524.0, panel.TotalHeightMM)

	assert.Contains(t, schedule.CodeReferences, "UL 845")
}

func TestBuildMCCSchedule_SCCRShortfall(t *testing.T) {
	a := testAssembler()
	opt := testScheduleOptions()
	opt.faultKA = 50 // RK5/RK1 boundary still yields 35 kA buckets

	schedule := a.buildMCCSchedule("MCC-300", []models.LoadRecord{pumpDOLLoad()}, opt)

	assert.False(t, schedule.Panel.SCCRCompliant)
	assert.Contains(t, schedule.Panel.SCCRWarning, "current-limiting")
}
