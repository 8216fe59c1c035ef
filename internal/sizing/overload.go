package sizing

import "fmt"

// OverloadSetting is the maximum overload relay trip setting per
// NEC 430.32, as a percentage of nameplate FLA.
type OverloadSetting struct {
	MaxSettingA   float64 `yaml:"max_setting_a"`
	FLANameplateA float64 `yaml:"fla_nameplate_a"`
	ServiceFactor float64 `yaml:"service_factor"`
	Percentage    float64 `yaml:"percentage"`
	Basis         string  `yaml:"basis"`
	CodeReference string  `yaml:"code_reference"`
	Notes         string  `yaml:"notes"`
}

// OverloadMaxSetting computes the standard overload ceiling per
// NEC 430.32(A)(1): 125% of nameplate FLA for SF >= 1.15 or temp rise
// <= 40C motors, 115% for all others.
func OverloadMaxSetting(flaNameplateA, serviceFactor float64, tempRise40COrLess bool) OverloadSetting {
	pct := 115.0
	basis := "SF < 1.15 and temp rise > 40C"
	if serviceFactor >= 1.15 {
		pct = 125
		basis = "SF >= 1.15"
	} else if tempRise40COrLess {
		pct = 125
		basis = "Temp rise <= 40C"
	}

	maxSetting := flaNameplateA * pct / 100

	return OverloadSetting{
		MaxSettingA:   round1(maxSetting),
		FLANameplateA: flaNameplateA,
		ServiceFactor: serviceFactor,
		Percentage:    pct,
		Basis:         basis,
		CodeReference: "NEC 430.32(A)(1)",
		Notes:         fmt.Sprintf("%.0f%% x %gA = %.1fA maximum", pct, flaNameplateA, maxSetting),
	}
}

// OverloadExceptionSetting computes the higher ceiling permitted by
// NEC 430.32(C) when the standard setting will not start the motor or
// carry the load: 140% / 130% of nameplate FLA.
func OverloadExceptionSetting(flaNameplateA, serviceFactor float64, tempRise40COrLess bool) OverloadSetting {
	pct := 130.0
	basis := "SF < 1.15 (exception)"
	if serviceFactor >= 1.15 || tempRise40COrLess {
		pct = 140
		basis = "SF >= 1.15 (exception)"
	}

	maxSetting := flaNameplateA * pct / 100

	return OverloadSetting{
		MaxSettingA:   round1(maxSetting),
		FLANameplateA: flaNameplateA,
		ServiceFactor: serviceFactor,
		Percentage:    pct,
		Basis:         basis,
		CodeReference: "NEC 430.32(C)",
		Notes:         fmt.Sprintf("Exception: %.0f%% x %gA = %.1fA maximum", pct, flaNameplateA, maxSetting),
	}
}

// Overload trip classes by load type. Class is the maximum trip time
// at 7.2x FLA from cold per IEC 60947-4-1.
var loadTypeOverloadClasses = map[string]string{
	"submersible":        "5",
	"hermetic":           "5",
	"compressor_hermetic": "5",
	"pump":               "10",
	"blower":             "10",
	"fan":                "10",
	"mixer":              "20",
	"agitator":           "20",
	"conveyor":           "20",
	"crusher":            "30",
	"ball_mill":          "30",
	"grinder":            "30",
}

var overloadClassDescriptions = map[string]string{
	"5":  "Fast trip - submersible pumps, hermetic compressors",
	"10": "Standard - general purpose motors",
	"20": "Extended - high inertia loads (conveyors, mixers)",
	"30": "Long - very high inertia loads (crushers, mills)",
}

// OverloadClass is the selected relay trip class.
type OverloadClass struct {
	RecommendedClass string  `yaml:"recommended_class"`
	MaxTripTimeSec   int     `yaml:"max_trip_time_sec"`
	StartingTimeSec  float64 `yaml:"starting_time_sec"`
	LoadType         string  `yaml:"load_type"`
	Basis            string  `yaml:"basis"`
	Description      string  `yaml:"description"`
	Standard         string  `yaml:"standard"`
}

// SelectOverloadClass picks the trip class from the load type when
// known, otherwise from the expected starting time.
func SelectOverloadClass(startingTimeSec float64, loadType string) OverloadClass {
	var class, basis string

	if c, ok := loadTypeOverloadClasses[loadType]; ok {
		class = c
		basis = fmt.Sprintf("Load type: %s", loadType)
	} else {
		switch {
		case startingTimeSec <= 10:
			class = "10"
			basis = fmt.Sprintf("Starting time %gs <= 10s", startingTimeSec)
		case startingTimeSec <= 20:
			class = "20"
			basis = fmt.Sprintf("Starting time %gs <= 20s", startingTimeSec)
		default:
			class = "30"
			basis = fmt.Sprintf("Starting time %gs > 20s", startingTimeSec)
		}
	}

	maxTrip := 10
	switch class {
	case "5":
		maxTrip = 5
	case "20":
		maxTrip = 20
	case "30":
		maxTrip = 30
	}

	return OverloadClass{
		RecommendedClass: class,
		MaxTripTimeSec:   maxTrip,
		StartingTimeSec:  startingTimeSec,
		LoadType:         loadType,
		Basis:            basis,
		Description:      overloadClassDescriptions[class],
		Standard:         "IEC 60947-4-1",
	}
}

// OverloadSizing is the complete overload relay selection for one
// motor: trip setting, class and protection type.
type OverloadSizing struct {
	FLANameplateA       float64 `yaml:"fla_nameplate_a"`
	ServiceFactor       float64 `yaml:"service_factor"`
	MaxSettingA         float64 `yaml:"max_setting_a"`
	RecommendedSettingA float64 `yaml:"recommended_setting_a"`
	OverloadClass       string  `yaml:"overload_class"`
	ProtectionType      string  `yaml:"protection_type"`
	VFDApplication      bool    `yaml:"vfd_application"`
	SizingBasis         string  `yaml:"sizing_basis"`
	ClassBasis          string  `yaml:"class_basis"`
	CodeReference       string  `yaml:"code_reference"`
	Notes               string  `yaml:"notes"`
}

// SizeOverloadRelay sizes the overload protection for one motor. VFD
// drives provide integral overload protection programmed to the
// nameplate FLA; DOL motors above 100 A get an electronic relay,
// smaller ones a thermal relay.
func SizeOverloadRelay(flaNameplateA, serviceFactor, startingTimeSec float64, loadType string, vfdApplication, useException bool) OverloadSizing {
	var setting OverloadSetting
	if useException {
		setting = OverloadExceptionSetting(flaNameplateA, serviceFactor, false)
	} else {
		setting = OverloadMaxSetting(flaNameplateA, serviceFactor, false)
	}

	recommended := setting.MaxSettingA
	if vfdApplication {
		recommended = flaNameplateA
	}

	class := SelectOverloadClass(startingTimeSec, loadType)

	protectionType := "THERMAL"
	notes := "Separate overload relay required"
	if vfdApplication {
		protectionType = "VFD_INTEGRAL"
		notes = "VFD provides integral overload protection"
	} else if flaNameplateA > 100 {
		protectionType = "ELECTRONIC"
	}

	return OverloadSizing{
		FLANameplateA:       flaNameplateA,
		ServiceFactor:       serviceFactor,
		MaxSettingA:         setting.MaxSettingA,
		RecommendedSettingA: recommended,
		OverloadClass:       class.RecommendedClass,
		ProtectionType:      protectionType,
		VFDApplication:      vfdApplication,
		SizingBasis:         setting.Notes,
		ClassBasis:          class.Basis,
		CodeReference:       "NEC 430.32, IEC 60947-4-1",
		Notes:               notes,
	}
}
