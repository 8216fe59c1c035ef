// Package equipment reads the project equipment list and resolves each
// row into a typed record ready for load processing.
package equipment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"plantload/internal/models"
)

type listFile struct {
	models.ProjectMetadata `yaml:",inline"`

	Equipment []models.EquipmentRecord `yaml:"equipment"`
	Loads     []models.EquipmentRecord `yaml:"loads"`
}

// Loader reads equipment lists from plain YAML files or QMD/Markdown
// files with YAML frontmatter.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the equipment list at path and returns the project
// metadata plus all equipment rows with their class and feeder enums
// resolved.
func (l *Loader) Load(path string) (models.ProjectMetadata, []models.EquipmentRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.ProjectMetadata{}, nil, fmt.Errorf("read equipment list: %w", err)
	}

	doc := content
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".qmd" || ext == ".md" {
		doc, err = frontmatter(content)
		if err != nil {
			return models.ProjectMetadata{}, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	}

	meta, records, err := parseList(doc)
	if err != nil {
		return models.ProjectMetadata{}, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	for i := range records {
		resolve(&records[i])
	}

	l.logger.Info("Equipment list loaded",
		zap.String("path", path),
		zap.String("project_id", meta.ProjectID),
		zap.Int("equipment_count", len(records)))

	return meta, records, nil
}

// frontmatter extracts the YAML block between the first two "---"
// separators of a QMD/Markdown document.
func frontmatter(content []byte) ([]byte, error) {
	parts := strings.SplitN(string(content), "---", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("no YAML frontmatter found")
	}
	return []byte(parts[1]), nil
}

// parseList accepts either a bare YAML list of equipment rows or a
// document with metadata plus an "equipment" (or legacy "loads") key.
func parseList(doc []byte) (models.ProjectMetadata, []models.EquipmentRecord, error) {
	var bare []models.EquipmentRecord
	if err := yaml.Unmarshal(doc, &bare); err == nil {
		return models.ProjectMetadata{}, bare, nil
	}

	var file listFile
	if err := yaml.Unmarshal(doc, &file); err != nil {
		return models.ProjectMetadata{}, nil, err
	}

	records := file.Equipment
	if len(records) == 0 {
		records = file.Loads
	}
	return file.ProjectMetadata, records, nil
}

// resolve fills the derived fields of one row: type code from the tag
// when absent, then the class and feeder enums.
func resolve(rec *models.EquipmentRecord) {
	if rec.TypeCode == "" {
		rec.TypeCode = models.TypeCodeFromTag(rec.Tag)
	}
	rec.Class = models.ParseEquipmentClass(rec.TypeCode)
	rec.Feeder = models.ClassifyFeeder(rec.FeederType)
	if rec.Quantity <= 0 {
		rec.Quantity = 1
	}
	if rec.Area == 0 {
		rec.Area = 100
	}
}

// FilterMotorized keeps the rows that represent motor loads: a
// recognized motorized equipment class with a positive rated power.
func FilterMotorized(records []models.EquipmentRecord) []models.EquipmentRecord {
	out := make([]models.EquipmentRecord, 0, len(records))
	for _, rec := range records {
		if rec.Class != models.ClassOther && rec.RatedKW > 0 {
			out = append(out, rec)
		}
	}
	return out
}
