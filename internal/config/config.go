package config

import (
	"fmt"
	"os"
	"strconv"

	"plantload/internal/models"
)

// Config holds the load-list generator configuration.
type Config struct {
	Project struct {
		// EquipmentList is the equipment list file: plain YAML or a
		// QMD/Markdown file with YAML frontmatter.
		EquipmentList string

		// Dir is the project root searched for sizing artifacts.
		Dir string

		// CatalogsDir holds the code-table YAML catalogs.
		CatalogsDir string

		// OutputDir receives load-list.yaml and load-list.xlsx.
		OutputDir string
	}

	Electrical struct {
		MotorStandard models.MotorStandard // "IEC" or "NEMA"
		VoltageV      int
		FrequencyHz   int
		Phases        int
	}

	Panels struct {
		// SplitLarge splits panels over the feeder/kW limits into
		// letter-suffixed lineups before aggregation.
		SplitLarge     bool
		MaxFeeders     int
		MaxConnectedKW float64
	}

	Export struct {
		WriteYAML bool
		WriteXLSX bool
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Project.EquipmentList = getEnv("PL_EQUIPMENT_LIST", "equipment-list.yaml")
	cfg.Project.Dir = getEnv("PL_PROJECT_DIR", ".")
	cfg.Project.CatalogsDir = getEnv("PL_CATALOGS_DIR", "catalogs")
	cfg.Project.OutputDir = getEnv("PL_OUTPUT_DIR", "electrical")

	standard := models.MotorStandard(getEnv("PL_MOTOR_STANDARD", "IEC"))
	if standard != models.StandardIEC && standard != models.StandardNEMA {
		return nil, fmt.Errorf("invalid PL_MOTOR_STANDARD %q (want IEC or NEMA)", standard)
	}
	cfg.Electrical.MotorStandard = standard
	cfg.Electrical.VoltageV = getEnvInt("PL_VOLTAGE_V", 400)
	cfg.Electrical.FrequencyHz = getEnvInt("PL_FREQUENCY_HZ", 50)
	if cfg.Electrical.FrequencyHz != 50 && cfg.Electrical.FrequencyHz != 60 {
		return nil, fmt.Errorf("invalid PL_FREQUENCY_HZ %d (want 50 or 60)", cfg.Electrical.FrequencyHz)
	}
	cfg.Electrical.Phases = 3

	cfg.Panels.SplitLarge = getEnv("PL_SPLIT_LARGE_PANELS", "true") == "true"
	cfg.Panels.MaxFeeders = getEnvInt("PL_PANEL_MAX_FEEDERS", 30)
	cfg.Panels.MaxConnectedKW = float64(getEnvInt("PL_PANEL_MAX_CONNECTED_KW", 500))

	cfg.Export.WriteYAML = getEnv("PL_WRITE_YAML", "true") == "true"
	cfg.Export.WriteXLSX = getEnv("PL_WRITE_XLSX", "true") == "true"

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}
