package loads

import (
	"math"
	"regexp"
	"strings"
)

// PumpBrakeKW is the hydraulic shaft power: P = ρgQH / η, with Q in
// m³/h and H in m.
func PumpBrakeKW(flowM3h, headM, sg, pumpEff float64) float64 {
	if pumpEff <= 0 {
		pumpEff = 0.70
	}
	brake := (sg * 9.81 * flowM3h * headM) / (3600 * pumpEff)
	return round2(brake)
}

// BlowerBrakeKW is the polytropic compression power for an aeration
// blower. Flow is in Nm³/h (0°C, 1.013 bar), pressures absolute bar,
// n = 1.4 for air.
func BlowerBrakeKW(flowNm3h, p1Bar, p2Bar, inletTempK, n, blowerEff float64) float64 {
	if blowerEff <= 0 {
		blowerEff = 0.70
	}
	if p1Bar <= 0 {
		p1Bar = 1.013
	}

	const (
		tNormal = 273.15
		pNormal = 1.01325
	)

	ratio := p2Bar / p1Bar
	exponent := (n - 1) / n

	brake := (n / (n - 1)) *
		p1Bar * 100 * // bar to kPa
		(flowNm3h / 3600) * // Nm3/h to m3/s
		(inletTempK / tNormal) *
		(pNormal / p1Bar) *
		(math.Pow(ratio, exponent) - 1) /
		blowerEff

	return round2(brake)
}

// MixerBrakeKW sizes a mixer from volumetric power density (typical
// 5-10 W/m³ for equalization, 10-20 W/m³ for complete mix).
func MixerBrakeKW(volumeM3, wPerM3 float64) float64 {
	return round2(volumeM3 * wPerM3 / 1000)
}

// AbsorbedKW converts shaft power to electrical input power.
func AbsorbedKW(brakeKW, motorEfficiencyPct float64) float64 {
	if motorEfficiencyPct <= 0 {
		motorEfficiencyPct = 90
	}
	return round2(brakeKW / (motorEfficiencyPct / 100))
}

// SpecificEnergy is the plant energy intensity in kWh/m³ (typical
// 0.3-0.6 for conventional treatment, 0.5-1.0 for MBR).
func SpecificEnergy(dailyKWh, flowM3PerDay float64) float64 {
	if flowM3PerDay <= 0 {
		return 0
	}
	return round3(dailyKWh / flowM3PerDay)
}

var quantityNotePattern = regexp.MustCompile(`^(\d+)W(?:\+(\d+)S)?`)

// ParseDiversity parses duty/standby notation ("2W+1S", "1W", "3") into
// a diversity factor plus working and standby counts. Unrecognized
// notes default to one working unit with no standby.
func ParseDiversity(quantityNote string) (diversity float64, working, standby int) {
	if quantityNote == "" {
		return 1.0, 1, 0
	}

	note := strings.ReplaceAll(strings.ToUpper(quantityNote), " ", "")

	if m := quantityNotePattern.FindStringSubmatch(note); m != nil {
		working = atoi(m[1])
		if m[2] != "" {
			standby = atoi(m[2])
		}
		total := working + standby
		if total == 0 {
			return 1.0, working, standby
		}
		return round2(float64(working) / float64(total)), working, standby
	}

	if allDigits(note) {
		return 1.0, atoi(note), 0
	}

	return 1.0, 1, 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
