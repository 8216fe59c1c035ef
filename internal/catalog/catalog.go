package catalog

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"plantload/internal/models"
)

// Repository holds the code-table catalogs, loaded once and shared by
// every component that needs lookups. All lookup methods are read-only.
type Repository struct {
	logger *zap.Logger

	flc       motorFLCTables
	standards motorStandards
	duty      dutyProfiles
	cables    cableCatalog

	cablesBuiltin bool
}

type flcEntry struct {
	KW   float64         `yaml:"kw"`
	HP   float64         `yaml:"hp"`
	Amps map[int]float64 `yaml:"amps"`
}

type motorFLCTables struct {
	IEC60034 struct {
		ThreePhase50Hz []flcEntry `yaml:"three_phase_50hz"`
		ThreePhase60Hz []flcEntry `yaml:"three_phase_60hz"`
	} `yaml:"iec_60034"`
	NEC430250 struct {
		ThreePhase []flcEntry `yaml:"three_phase"`
	} `yaml:"nec_430_250"`
	LRAMultipliers struct {
		Default      float64            `yaml:"default"`
		DesignLetter map[string]float64 `yaml:"design_letter"`
	} `yaml:"lra_multipliers"`
}

type effEntry struct {
	KW  float64 `yaml:"kw"`
	Pct float64 `yaml:"pct"`
}

type efficiencyClass struct {
	Description string             `yaml:"description"`
	Efficiency  map[int][]effEntry `yaml:"efficiency"`
}

type pfEntry struct {
	KW float64 `yaml:"kw"`
	PF float64 `yaml:"pf"`
}

type motorStandards struct {
	EfficiencyClasses map[string]efficiencyClass `yaml:"iec_efficiency_classes"`
	TypicalPF         struct {
		Default float64   `yaml:"default"`
		ByKW    []pfEntry `yaml:"by_kw"`
	} `yaml:"typical_power_factor"`
}

type dutyProfileEntry struct {
	RunningHoursPerDay float64 `yaml:"running_hours_per_day"`
	LoadFactorVFD      float64 `yaml:"load_factor_vfd"`
	LoadFactorDOL      float64 `yaml:"load_factor_dol"`
	DutyCycle          string  `yaml:"duty_cycle"`
	Notes              string  `yaml:"notes"`
}

type feederRangeDiversity struct {
	Min       int     `yaml:"min"`
	Max       int     `yaml:"max"`
	Diversity float64 `yaml:"diversity"`
}

type dutyProfiles struct {
	EquipmentProfiles map[string]map[string]dutyProfileEntry `yaml:"equipment_profiles"`
	PanelDiversity    struct {
		Default       float64                `yaml:"default"`
		ByProcessType map[string]float64     `yaml:"by_process_type"`
		ByFeederCount []feederRangeDiversity `yaml:"by_feeder_count"`
	} `yaml:"panel_diversity"`
}

// DutyProfile is the resolved duty profile for one load, with the load
// factor already selected for its feeder class.
type DutyProfile struct {
	RunningHoursPerDay float64
	LoadFactor         float64
	DutyCycle          string
	Notes              string
}

// NewRepository loads the catalogs from dir. The motor FLC tables,
// motor standards and duty profiles are required; the cable catalog is
// optional and degrades to the built-in conservative tables.
func NewRepository(dir string, logger *zap.Logger) (*Repository, error) {
	r := &Repository{logger: logger}

	if err := loadYAML(filepath.Join(dir, "motor_flc_tables.yaml"), &r.flc); err != nil {
		return nil, fmt.Errorf("load motor FLC tables: %w", err)
	}
	if err := loadYAML(filepath.Join(dir, "motor_standards.yaml"), &r.standards); err != nil {
		return nil, fmt.Errorf("load motor standards: %w", err)
	}
	if err := loadYAML(filepath.Join(dir, "duty_profiles.yaml"), &r.duty); err != nil {
		return nil, fmt.Errorf("load duty profiles: %w", err)
	}

	if err := loadYAML(filepath.Join(dir, "cables.yaml"), &r.cables); err != nil {
		logger.Warn("Cable catalog unavailable, using built-in tables",
			zap.String("dir", dir),
			zap.Error(err))
		r.cables = builtinCableCatalog()
		r.cablesBuiltin = true
	}

	logger.Info("Catalogs loaded",
		zap.String("dir", dir),
		zap.Int("iec_flc_entries", len(r.flc.IEC60034.ThreePhase50Hz)),
		zap.Int("nec_flc_entries", len(r.flc.NEC430250.ThreePhase)),
		zap.Bool("cables_builtin", r.cablesBuiltin))

	return r, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LookupFLC returns the code-table full-load current for a motor and a
// source label ("IEC-60034", "NEC-430.250" or "calculated"). It never
// fails: ratings above the table are scaled from the largest entry, and
// missing IEC entries fall back to the formula.
func (r *Repository) LookupFLC(powerKW float64, voltageV, frequencyHz int, standard models.MotorStandard, efficiencyClass string) (float64, string) {
	if standard == models.StandardNEMA {
		return r.lookupFLCNEC(powerKW * 1.341, voltageV)
	}
	return r.lookupFLCIEC(powerKW, voltageV, frequencyHz, efficiencyClass)
}

func (r *Repository) lookupFLCIEC(kw float64, voltageV, frequencyHz int, efficiencyClass string) (float64, string) {
	table := r.flc.IEC60034.ThreePhase50Hz
	if frequencyHz == 60 {
		table = r.flc.IEC60034.ThreePhase60Hz
	}
	if len(table) == 0 {
		return r.calcFLCFormula(kw, voltageV, efficiencyClass)
	}

	entry, scale := findEntry(table, kw, func(e flcEntry) float64 { return e.KW })
	amps := closestVoltage(entry.Amps, voltageV)
	if amps <= 0 {
		return r.calcFLCFormula(kw, voltageV, efficiencyClass)
	}
	return round1(amps * scale), "IEC-60034"
}

func (r *Repository) lookupFLCNEC(hp float64, voltageV int) (float64, string) {
	table := r.flc.NEC430250.ThreePhase
	if len(table) == 0 {
		return r.calcFLCFormula(hp*0.7457, voltageV, "IE3")
	}

	entry, scale := findEntry(table, hp, func(e flcEntry) float64 { return e.HP })
	amps := closestVoltage(entry.Amps, voltageV)
	if amps <= 0 {
		return r.calcFLCFormula(hp*0.7457, voltageV, "IE3")
	}
	return round1(amps * scale), "NEC-430.250"
}

// findEntry returns the first entry at or above the requested rating,
// or the largest entry plus the scale factor when the rating exceeds
// the table.
func findEntry(table []flcEntry, rating float64, key func(flcEntry) float64) (flcEntry, float64) {
	sorted := make([]flcEntry, len(table))
	copy(sorted, table)
	sort.Slice(sorted, func(i, j int) bool { return key(sorted[i]) < key(sorted[j]) })

	for _, e := range sorted {
		if key(e) >= rating {
			return e, 1.0
		}
	}
	last := sorted[len(sorted)-1]
	return last, rating / key(last)
}

func closestVoltage(amps map[int]float64, voltageV int) float64 {
	best := 0.0
	bestDiff := math.MaxInt
	for v, a := range amps {
		diff := v - voltageV
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = a
		}
	}
	return best
}

// calcFLCFormula is the fallback: FLC = kW·1000 / (√3·V·η·pf).
func (r *Repository) calcFLCFormula(kw float64, voltageV int, efficiencyClass string) (float64, string) {
	eff := r.MotorEfficiency(kw, 4, efficiencyClass) / 100
	pf := r.TypicalPowerFactor(kw)
	flc := (kw * 1000) / (math.Sqrt(3) * float64(voltageV) * eff * pf)
	return round1(flc), "calculated"
}

// LRAMultiplier returns the locked-rotor multiplier for a NEMA design
// letter, default 6.0 (Design B).
func (r *Repository) LRAMultiplier(designLetter string) float64 {
	if designLetter != "" {
		if m, ok := r.flc.LRAMultipliers.DesignLetter[strings.ToUpper(designLetter)]; ok {
			return m
		}
	}
	if r.flc.LRAMultipliers.Default > 0 {
		return r.flc.LRAMultipliers.Default
	}
	return 6.0
}

// MotorEfficiency returns the standard efficiency (percent) for a motor
// size, pole count and efficiency class. The first table entry at or
// above the rating wins; ratings above the table take the last entry.
func (r *Repository) MotorEfficiency(kw float64, poles int, class string) float64 {
	ec, ok := r.standards.EfficiencyClasses[class]
	if !ok {
		ec, ok = r.standards.EfficiencyClasses["IE3"]
		if !ok {
			return 90.0
		}
	}
	entries, ok := ec.Efficiency[poles]
	if !ok || len(entries) == 0 {
		entries = ec.Efficiency[4]
		if len(entries) == 0 {
			return 90.0
		}
	}

	sorted := make([]effEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].KW < sorted[j].KW })

	for _, e := range sorted {
		if e.KW >= kw {
			return e.Pct
		}
	}
	return sorted[len(sorted)-1].Pct
}

// TypicalPowerFactor returns the typical full-load power factor for a
// motor size.
func (r *Repository) TypicalPowerFactor(kw float64) float64 {
	entries := r.standards.TypicalPF.ByKW
	if len(entries) == 0 {
		if r.standards.TypicalPF.Default > 0 {
			return r.standards.TypicalPF.Default
		}
		return 0.85
	}

	sorted := make([]pfEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].KW < sorted[j].KW })

	for _, e := range sorted {
		if e.KW >= kw {
			return e.PF
		}
	}
	return sorted[len(sorted)-1].PF
}

var classCategory = map[models.EquipmentClass]string{
	models.ClassPump:       "pumps",
	models.ClassBlower:     "blowers",
	models.ClassMixer:      "mixers",
	models.ClassScreen:     "screens",
	models.ClassConveyor:   "conveyors",
	models.ClassCompressor: "compressors",
	models.ClassFan:        "fans",
	models.ClassClarifier:  "clarifier_mechanisms",
}

// LookupDutyProfile resolves the duty profile for a load: process-unit
// keyword match first, category default second, hardcoded fallback
// last. The load factor is selected by feeder class (VFD turndown vs
// fixed speed).
func (r *Repository) LookupDutyProfile(class models.EquipmentClass, processUnitType string, feeder models.FeederClass) DutyProfile {
	category := classCategory[class]
	if category == "" {
		category = "pumps"
	}

	profiles := r.duty.EquipmentProfiles[category]
	var entry dutyProfileEntry
	found := false

	if processUnitType != "" {
		lower := strings.ToLower(processUnitType)
		keys := make([]string, 0, len(profiles))
		for k := range profiles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k != "default" && strings.Contains(lower, strings.ToLower(k)) {
				entry = profiles[k]
				found = true
				break
			}
		}
	}
	if !found {
		if e, ok := profiles["default"]; ok {
			entry = e
			found = true
		}
	}
	if !found {
		entry = dutyProfileEntry{
			RunningHoursPerDay: 20,
			LoadFactorVFD:      0.75,
			LoadFactorDOL:      0.95,
			DutyCycle:          "continuous",
		}
	}

	loadFactor := entry.LoadFactorDOL
	if feeder == models.FeederVFD {
		loadFactor = entry.LoadFactorVFD
	}
	if loadFactor <= 0 {
		loadFactor = 0.85
	}

	return DutyProfile{
		RunningHoursPerDay: entry.RunningHoursPerDay,
		LoadFactor:         loadFactor,
		DutyCycle:          entry.DutyCycle,
		Notes:              entry.Notes,
	}
}

// PanelDiversity returns the panel diversity factor: process-type
// keyword match first, feeder-count range second, flat 0.80 default.
func (r *Repository) PanelDiversity(feederCount int, processType string) float64 {
	pd := r.duty.PanelDiversity

	if processType != "" {
		lower := strings.ToLower(processType)
		keys := make([]string, 0, len(pd.ByProcessType))
		for k := range pd.ByProcessType {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if strings.Contains(lower, strings.ToLower(k)) {
				return pd.ByProcessType[k]
			}
		}
	}

	for _, rng := range pd.ByFeederCount {
		if feederCount >= rng.Min && feederCount <= rng.Max {
			return rng.Diversity
		}
	}

	if pd.Default > 0 {
		return pd.Default
	}
	return 0.80
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
