// Package extract recovers equipment duty points from upstream sizing
// artifacts, falling back to capacity data carried on the equipment
// list itself. Extraction never fails a run: unreadable artifacts are
// skipped and reported as accumulated warnings.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"plantload/internal/models"
)

// Extractor resolves duty points for motorized equipment.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractAll resolves a duty point for every equipment record, keyed by
// tag. Sizing artifacts win over equipment-list capacity data. The
// returned error accumulates non-fatal artifact problems; the duty
// point map is always complete.
func (e *Extractor) ExtractAll(projectDir string, records []models.EquipmentRecord) (map[string]models.DutyPoint, error) {
	paths := e.findArtifacts(projectDir)
	e.logger.Info("Sizing artifacts discovered",
		zap.String("project_dir", projectDir),
		zap.Int("count", len(paths)))

	var warnings error
	artifacts := make([]artifact, 0, len(paths))
	for _, p := range paths {
		a, err := loadArtifact(p)
		if err != nil {
			e.logger.Debug("Skipping unreadable sizing artifact",
				zap.String("path", p),
				zap.Error(err))
			warnings = multierr.Append(warnings, fmt.Errorf("artifact %s: %w", p, err))
			continue
		}
		artifacts = append(artifacts, a)
	}

	results := make(map[string]models.DutyPoint, len(records))
	for _, rec := range records {
		dp := e.extractOne(rec, artifacts)
		results[rec.Tag] = dp
		if !dp.Found {
			e.logger.Debug("No duty point recovered",
				zap.String("tag", rec.Tag),
				zap.String("class", string(rec.Class)))
		}
	}

	return results, warnings
}

// findArtifacts locates sizing artifact files under the project dir:
// mcp-outputs/**/sizing.json, sizing/*.{json,yaml}, and
// *-sizing.{yaml,json} at the project root. Paths are deduplicated and
// sorted so extraction order is stable.
func (e *Extractor) findArtifacts(projectDir string) []string {
	seen := map[string]bool{}

	mcpDir := filepath.Join(projectDir, "mcp-outputs")
	if info, err := os.Stat(mcpDir); err == nil && info.IsDir() {
		_ = filepath.WalkDir(mcpDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && d.Name() == "sizing.json" {
				seen[path] = true
			}
			return nil
		})
	}

	sizingDir := filepath.Join(projectDir, "sizing")
	for _, pattern := range []string{"*.json", "*.yaml"} {
		matches, _ := filepath.Glob(filepath.Join(sizingDir, pattern))
		for _, m := range matches {
			seen[m] = true
		}
	}

	for _, pattern := range []string{"*-sizing.yaml", "*-sizing.json"} {
		matches, _ := filepath.Glob(filepath.Join(projectDir, pattern))
		for _, m := range matches {
			seen[m] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type artifact struct {
	path string
	data map[string]interface{}
}

func loadArtifact(path string) (artifact, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return artifact{}, err
	}

	data := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &data)
	default:
		err = json.Unmarshal(content, &data)
	}
	if err != nil {
		return artifact{}, err
	}
	return artifact{path: path, data: data}, nil
}

// extractOne searches the artifacts first; equipment-list capacity data
// is the fallback.
func (e *Extractor) extractOne(rec models.EquipmentRecord, artifacts []artifact) models.DutyPoint {
	dp := models.DutyPoint{
		EquipmentTag: rec.Tag,
		Class:        rec.Class,
	}

	for _, a := range artifacts {
		if h := matchArtifact(a.data, rec); h != nil {
			applyHit(&dp, *h)
			dp.Found = true
			dp.Source = a.path
			e.logger.Debug("Duty point from sizing artifact",
				zap.String("tag", rec.Tag),
				zap.String("artifact", a.path))
			return dp
		}
	}

	return e.fallbackDutyPoint(rec, dp)
}

// hit is the raw duty data pulled from one artifact entry.
type hit struct {
	pump   *models.PumpDuty
	blower *models.BlowerDuty
	mixer  *models.MixerDuty
	brake  *float64
}

func applyHit(dp *models.DutyPoint, h hit) {
	dp.Pump = h.pump
	dp.Blower = h.blower
	dp.Mixer = h.mixer
	dp.BrakeKW = h.brake
}

func matchArtifact(data map[string]interface{}, rec models.EquipmentRecord) *hit {
	switch rec.Class {
	case models.ClassPump:
		return matchPump(data, rec.Tag)
	case models.ClassBlower:
		return matchBlower(data, rec.Tag)
	case models.ClassMixer:
		return matchMixer(data, rec.Tag)
	default:
		return nil
	}
}

func matchPump(data map[string]interface{}, tag string) *hit {
	pumps := entryList(firstKey(data, "pumps", "pump_sizing"))
	for _, p := range pumps {
		if !tagMatches(entryTag(p), tag) {
			continue
		}
		return &hit{
			pump: &models.PumpDuty{
				FlowM3h:    num(p, 0, "flow_m3h", "flow"),
				HeadM:      num(p, 0, "head_m", "head", "tdh"),
				Efficiency: num(p, 0.70, "efficiency", "pump_eff"),
			},
			brake: optNum(p, "brake_kw", "power_kw"),
		}
	}

	// General equipment entries qualify when they carry both flow and
	// head.
	for _, eq := range entryList(data["equipment"]) {
		if !tagMatches(entryTag(eq), tag) {
			continue
		}
		flow := num(eq, 0, "flow")
		head := num(eq, 0, "head")
		if flow > 0 && head > 0 {
			return &hit{
				pump: &models.PumpDuty{
					FlowM3h:    flow,
					HeadM:      head,
					Efficiency: num(eq, 0.70, "efficiency"),
				},
				brake: optNum(eq, "brake_kw"),
			}
		}
	}
	return nil
}

func matchBlower(data map[string]interface{}, tag string) *hit {
	var blowers []map[string]interface{}
	switch v := firstKey(data, "aeration", "blower_sizing").(type) {
	case map[string]interface{}:
		if nested, ok := v["blowers"]; ok {
			blowers = entryList(nested)
		} else {
			blowers = []map[string]interface{}{v}
		}
	default:
		blowers = entryList(v)
	}

	for _, b := range blowers {
		if !tagMatches(entryTag(b), tag) {
			continue
		}
		p1 := num(b, 1.013, "inlet_pressure_bar")
		p2 := num(b, 0, "outlet_pressure_bar")
		if p2 == 0 {
			p2 = p1 + num(b, 0.5, "delivery_pressure_bar")
		}
		return &hit{
			blower: &models.BlowerDuty{
				FlowNm3h:   num(b, 0, "airflow_nm3h", "flow_nm3h"),
				InletBar:   p1,
				OutletBar:  p2,
				Efficiency: num(b, 0.70, "efficiency", "blower_eff"),
			},
			brake: optNum(b, "brake_kw", "power_kw"),
		}
	}

	// Plant-level air demand applies to any blower tag.
	if air, ok := data["air_demand"].(map[string]interface{}); ok {
		flow := num(air, 0, "total_nm3h", "design_airflow")
		if flow > 0 {
			return &hit{
				blower: &models.BlowerDuty{
					FlowNm3h:   flow,
					InletBar:   1.013,
					OutletBar:  num(air, 1.6, "discharge_pressure"),
					Efficiency: 0.70,
				},
			}
		}
	}
	return nil
}

func matchMixer(data map[string]interface{}, tag string) *hit {
	mixers := entryList(firstKey(data, "mixers", "agitators"))
	for _, m := range mixers {
		if !tagMatches(entryTag(m), tag) {
			continue
		}
		return &hit{
			mixer: &models.MixerDuty{
				VolumeM3: num(m, 0, "volume_m3", "tank_volume"),
				WPerM3:   num(m, 8, "power_density", "w_per_m3"),
			},
			brake: optNum(m, "brake_kw", "power_kw"),
		}
	}

	for _, tank := range entryList(data["tanks"]) {
		tankTag := entryTag(tank)
		if strings.Contains(strings.ToLower(tankTag), "mixer") || (tankTag != "" && strings.Contains(tankTag, tag)) {
			return &hit{
				mixer: &models.MixerDuty{
					VolumeM3: num(tank, 0, "volume_m3"),
					WPerM3:   num(tank, 8, "mixing_intensity"),
				},
			}
		}
	}
	return nil
}

// fallbackDutyPoint builds a duty point from the equipment list row:
// structured capacity fields first, then the free-text capacity string,
// then capacity embedded in the description.
func (e *Extractor) fallbackDutyPoint(rec models.EquipmentRecord, dp models.DutyPoint) models.DutyPoint {
	fields, source := fallbackCapacity(rec)

	if rec.HeadM > 0 {
		fields.HeadM = rec.HeadM
	}
	if rec.PressureBarG > 0 {
		fields.P1Bar = 1.013
		fields.P2Bar = 1.013 + rec.PressureBarG
	}

	// P&ID callouts label blower flows m3/h but mean normal conditions.
	if rec.Class == models.ClassBlower && fields.FlowM3h > 0 && fields.FlowNm3h == 0 {
		fields.FlowNm3h = fields.FlowM3h
		fields.FlowM3h = 0
	}

	if fields.empty() {
		return dp
	}

	switch rec.Class {
	case models.ClassPump:
		dp.Pump = &models.PumpDuty{
			FlowM3h:    fields.FlowM3h,
			HeadM:      fields.HeadM,
			Efficiency: 0.70,
		}
	case models.ClassBlower:
		p1, p2 := fields.P1Bar, fields.P2Bar
		if p1 == 0 {
			p1 = 1.013
		}
		if p2 == 0 {
			p2 = 1.6
		}
		dp.Blower = &models.BlowerDuty{
			FlowNm3h:   fields.FlowNm3h,
			InletBar:   p1,
			OutletBar:  p2,
			Efficiency: 0.70,
		}
	case models.ClassMixer:
		w := fields.WPerM3
		if w == 0 {
			w = 8
		}
		dp.Mixer = &models.MixerDuty{
			VolumeM3: fields.VolumeM3,
			WPerM3:   w,
		}
	default:
		// No payload shape for this class; the capacity data carries no
		// brake-power information downstream.
		return dp
	}

	dp.Found = true
	dp.Source = source
	e.logger.Debug("Duty point from equipment list",
		zap.String("tag", rec.Tag),
		zap.String("source", source))
	return dp
}

func fallbackCapacity(rec models.EquipmentRecord) (capacityFields, string) {
	if rec.CapacityValue > 0 && rec.CapacityUnit != "" {
		return structuredCapacity(rec.CapacityValue, rec.CapacityUnit), "capacity_structured"
	}
	if rec.Capacity != "" {
		if fields := parseCapacity(rec.Capacity); !fields.empty() {
			return fields, "capacity_parsed"
		}
	}
	if rec.Description != "" {
		if fields := parseCapacity(rec.Description); !fields.empty() {
			return fields, "description_parsed"
		}
	}
	return capacityFields{}, "equipment_list"
}

func structuredCapacity(value float64, unit string) capacityFields {
	u := strings.ToLower(unit)
	switch {
	case strings.Contains(u, "nm3/h") || strings.Contains(u, "nm³/h"):
		return capacityFields{FlowNm3h: value}
	case strings.Contains(u, "m3/h") || strings.Contains(u, "m³/h"):
		return capacityFields{FlowM3h: value}
	case strings.Contains(u, "m3/d") || strings.Contains(u, "m³/d"):
		return capacityFields{FlowM3h: value / 24}
	case strings.Contains(u, "m3") || strings.Contains(u, "m³"):
		return capacityFields{VolumeM3: value}
	default:
		return capacityFields{}
	}
}

func entryTag(m map[string]interface{}) string {
	if s, ok := m["tag"].(string); ok && s != "" {
		return s
	}
	if s, ok := m["equipment_tag"].(string); ok {
		return s
	}
	return ""
}

// tagMatches accepts containment in either direction so "200-B-01"
// matches an artifact entry tagged "200-B-01A" and vice versa.
func tagMatches(entry, tag string) bool {
	if entry == "" || tag == "" {
		return false
	}
	return strings.Contains(entry, tag) || strings.Contains(tag, entry)
}

func firstKey(data map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := data[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func entryList(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{t}
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func num(m map[string]interface{}, def float64, keys ...string) float64 {
	if v := optNum(m, keys...); v != nil {
		return *v
	}
	return def
}

func optNum(m map[string]interface{}, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return &n
		case int:
			f := float64(n)
			return &f
		case int64:
			f := float64(n)
			return &f
		}
	}
	return nil
}
