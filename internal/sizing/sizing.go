// Package sizing implements motor circuit protection and conductor
// sizing per NEC Article 430, plus the supporting power-system checks:
// fault current, voltage drop, transformer selection and motor
// starting.
//
// Conductor and SCPD sizing take the code-table FLC; overload settings
// take the nameplate FLA (NEC 430.6(A)(1)). Callers pass the right one.
package sizing

import "math"

// Standard OCPD ratings per NEC 240.6.
var standardOCPDSizes = []float64{
	15, 20, 25, 30, 35, 40, 45, 50, 60, 70, 80, 90, 100,
	110, 125, 150, 175, 200, 225, 250, 300, 350, 400,
	450, 500, 600, 700, 800, 1000, 1200, 1600, 2000,
	2500, 3000, 4000, 5000, 6000,
}

// nextStandardOCPD returns the smallest standard rating at or above
// amps, or amps itself beyond the table.
func nextStandardOCPD(amps float64) float64 {
	for _, s := range standardOCPDSizes {
		if s >= amps {
			return s
		}
	}
	return amps
}

// standardOCPDBetween returns the smallest standard rating in
// [min, max], or 0 when no rating fits the window.
func standardOCPDBetween(min, max float64) float64 {
	for _, s := range standardOCPDSizes {
		if s >= min && s <= max {
			return s
		}
	}
	return 0
}

// largestOCPDAtOrBelow returns the largest standard rating not
// exceeding amps, falling back to the smallest rating.
func largestOCPDAtOrBelow(amps float64) float64 {
	selected := standardOCPDSizes[0]
	for _, s := range standardOCPDSizes {
		if s <= amps {
			selected = s
		}
	}
	return selected
}

func round0(v float64) float64 {
	return math.Round(v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
