package catalog

import (
	"plantload/internal/models"
)

// CableSize is one row of an ampacity table.
type CableSize struct {
	Size     string  `yaml:"size"`
	MM2      float64 `yaml:"mm2"`
	Ampacity float64 `yaml:"ampacity"`
}

type tempFactor struct {
	MaxTempC float64 `yaml:"max_temp_c"`
	Factor   float64 `yaml:"factor"`
}

type groupFactor struct {
	Circuits int     `yaml:"circuits"`
	Factor   float64 `yaml:"factor"`
}

type fillFactor struct {
	MinConductors int     `yaml:"min_conductors"`
	MaxConductors int     `yaml:"max_conductors"`
	Factor        float64 `yaml:"factor"`
}

type cableTable struct {
	Reference          string        `yaml:"reference"`
	TempRatingC        int           `yaml:"temp_rating_c"`
	Sizes              []CableSize   `yaml:"sizes"`
	AmbientCorrection  []tempFactor  `yaml:"ambient_correction"`
	GroupingCorrection []groupFactor `yaml:"grouping_correction"`
	ConduitFill        []fillFactor  `yaml:"conduit_fill_adjustment"`
}

type cableCatalog struct {
	IEC60364 struct {
		XLPEConduit cableTable `yaml:"xlpe_conduit"`
	} `yaml:"iec_60364"`
	NEC310 struct {
		Copper75C cableTable `yaml:"copper_75c"`
	} `yaml:"nec_310"`
}

// builtinCableCatalog is the conservative fallback used when the cable
// catalog file is missing. Sizes are a reduced set with ampacities at
// or below the full tables.
func builtinCableCatalog() cableCatalog {
	var c cableCatalog

	c.IEC60364.XLPEConduit = cableTable{
		Reference:   "built-in (conservative, XLPE conduit)",
		TempRatingC: 90,
		Sizes: []CableSize{
			{Size: "2.5 mm2", MM2: 2.5, Ampacity: 24},
			{Size: "4 mm2", MM2: 4, Ampacity: 32},
			{Size: "6 mm2", MM2: 6, Ampacity: 41},
			{Size: "10 mm2", MM2: 10, Ampacity: 57},
			{Size: "16 mm2", MM2: 16, Ampacity: 76},
			{Size: "25 mm2", MM2: 25, Ampacity: 96},
			{Size: "35 mm2", MM2: 35, Ampacity: 119},
			{Size: "50 mm2", MM2: 50, Ampacity: 144},
			{Size: "70 mm2", MM2: 70, Ampacity: 184},
			{Size: "95 mm2", MM2: 95, Ampacity: 223},
			{Size: "120 mm2", MM2: 120, Ampacity: 259},
			{Size: "150 mm2", MM2: 150, Ampacity: 299},
			{Size: "185 mm2", MM2: 185, Ampacity: 341},
			{Size: "240 mm2", MM2: 240, Ampacity: 403},
			{Size: "300 mm2", MM2: 300, Ampacity: 464},
		},
		AmbientCorrection: []tempFactor{
			{MaxTempC: 30, Factor: 1.00},
			{MaxTempC: 40, Factor: 0.91},
			{MaxTempC: 50, Factor: 0.82},
		},
		GroupingCorrection: []groupFactor{
			{Circuits: 1, Factor: 1.00},
			{Circuits: 2, Factor: 0.80},
			{Circuits: 3, Factor: 0.70},
			{Circuits: 4, Factor: 0.65},
			{Circuits: 6, Factor: 0.57},
		},
	}

	c.NEC310.Copper75C = cableTable{
		Reference:   "built-in (conservative, 75C copper)",
		TempRatingC: 75,
		Sizes: []CableSize{
			{Size: "12 AWG", MM2: 3.31, Ampacity: 25},
			{Size: "10 AWG", MM2: 5.26, Ampacity: 35},
			{Size: "8 AWG", MM2: 8.37, Ampacity: 50},
			{Size: "6 AWG", MM2: 13.3, Ampacity: 65},
			{Size: "4 AWG", MM2: 21.15, Ampacity: 85},
			{Size: "2 AWG", MM2: 33.62, Ampacity: 115},
			{Size: "1/0 AWG", MM2: 53.49, Ampacity: 150},
			{Size: "2/0 AWG", MM2: 67.43, Ampacity: 175},
			{Size: "3/0 AWG", MM2: 85.01, Ampacity: 200},
			{Size: "4/0 AWG", MM2: 107.2, Ampacity: 230},
			{Size: "250 kcmil", MM2: 126.7, Ampacity: 255},
			{Size: "350 kcmil", MM2: 177.3, Ampacity: 310},
			{Size: "500 kcmil", MM2: 253.4, Ampacity: 380},
		},
		AmbientCorrection: []tempFactor{
			{MaxTempC: 30, Factor: 1.00},
			{MaxTempC: 40, Factor: 0.88},
			{MaxTempC: 50, Factor: 0.75},
		},
		ConduitFill: []fillFactor{
			{MinConductors: 4, MaxConductors: 6, Factor: 0.80},
			{MinConductors: 7, MaxConductors: 9, Factor: 0.70},
			{MinConductors: 10, MaxConductors: 20, Factor: 0.50},
		},
	}

	return c
}

func (r *Repository) cableTable(standard models.MotorStandard) cableTable {
	if standard == models.StandardNEMA {
		return r.cables.NEC310.Copper75C
	}
	return r.cables.IEC60364.XLPEConduit
}

// CablesBuiltin reports whether the built-in fallback tables are in
// use instead of the catalog file.
func (r *Repository) CablesBuiltin() bool { return r.cablesBuiltin }

// CableSizes returns the ampacity table rows for a motor standard, in
// ascending size order as listed.
func (r *Repository) CableSizes(standard models.MotorStandard) []CableSize {
	return r.cableTable(standard).Sizes
}

// CableTableReference returns the code reference of the active table.
func (r *Repository) CableTableReference(standard models.MotorStandard) string {
	return r.cableTable(standard).Reference
}

// AmbientCorrection returns the ambient temperature derating factor for
// the active table: the first band whose ceiling covers the ambient,
// or the hottest band's factor when the ambient exceeds all bands.
func (r *Repository) AmbientCorrection(standard models.MotorStandard, ambientTempC float64) float64 {
	bands := r.cableTable(standard).AmbientCorrection
	if len(bands) == 0 {
		return 1.0
	}
	for _, b := range bands {
		if ambientTempC <= b.MaxTempC {
			return b.Factor
		}
	}
	return bands[len(bands)-1].Factor
}

// GroupingCorrection returns the IEC grouping derating for a number of
// touching circuits (1.0 for a single circuit).
func (r *Repository) GroupingCorrection(circuits int) float64 {
	if circuits <= 1 {
		return 1.0
	}
	factors := r.cables.IEC60364.XLPEConduit.GroupingCorrection
	if len(factors) == 0 {
		return 0.57
	}
	// Counts below the smallest listed band take that band's factor.
	best := factors[0].Factor
	for _, f := range factors {
		if f.Circuits == circuits {
			return f.Factor
		}
		if f.Circuits < circuits {
			best = f.Factor
		}
	}
	return best
}
