// Package service wires the load-list pipeline: equipment intake,
// duty-point extraction, load processing, panel aggregation, tier
// evaluation and report export.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"plantload/internal/catalog"
	"plantload/internal/config"
	"plantload/internal/equipment"
	"plantload/internal/export"
	"plantload/internal/extract"
	"plantload/internal/loads"
	"plantload/internal/mcc"
	"plantload/internal/report"
	"plantload/internal/tiering"
)

// Pipeline is the one-shot load-list generator.
type Pipeline struct {
	config     *config.Config
	logger     *zap.Logger
	catalogs   *catalog.Repository
	loader     *equipment.Loader
	extractor  *extract.Extractor
	processor  *loads.Processor
	aggregator *mcc.Aggregator
	evaluator  *tiering.Evaluator
	assembler  *report.Assembler
}

// NewPipeline builds the pipeline from configuration. The catalog
// repository backs FLC lookup, duty profiles, panel diversity and the
// cable ampacity tables.
func NewPipeline(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	catalogs, err := catalog.NewRepository(cfg.Project.CatalogsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}

	standard := cfg.Electrical.MotorStandard
	voltage := cfg.Electrical.VoltageV
	frequency := cfg.Electrical.FrequencyHz

	return &Pipeline{
		config:     cfg,
		logger:     logger,
		catalogs:   catalogs,
		loader:     equipment.NewLoader(logger),
		extractor:  extract.NewExtractor(logger),
		processor:  loads.NewProcessor(catalogs, standard, voltage, frequency, logger),
		aggregator: mcc.NewAggregator(catalogs, voltage, logger),
		evaluator:  tiering.NewEvaluator(logger),
		assembler:  report.NewAssembler(catalogs, standard, voltage, frequency, logger),
	}, nil
}

// Run executes the pipeline end to end and writes the configured
// outputs. The returned report is the same data written to disk.
func (p *Pipeline) Run(ctx context.Context) (report.Report, error) {
	meta, records, err := p.loader.Load(p.config.Project.EquipmentList)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to load equipment list: %w", err)
	}

	motorized := equipment.FilterMotorized(records)
	p.logger.Info("equipment list loaded",
		zap.String("project_id", meta.ProjectID),
		zap.Int("records", len(records)),
		zap.Int("motorized", len(motorized)))

	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}

	// Artifact problems degrade the extraction, never the run: each
	// affected load falls back to equipment-list data.
	dutyPoints, warnings := p.extractor.ExtractAll(p.config.Project.Dir, motorized)
	for _, warn := range multierr.Errors(warnings) {
		p.logger.Warn("sizing artifact skipped", zap.Error(warn))
	}

	loadRecords := p.processor.ProcessAll(motorized, dutyPoints)
	loadRecords = mcc.AssignPanelsByArea(loadRecords)
	if p.config.Panels.SplitLarge {
		loadRecords = mcc.SplitLargePanels(loadRecords,
			p.config.Panels.MaxFeeders, p.config.Panels.MaxConnectedKW)
	}

	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}

	panels := p.aggregator.AggregateByPanel(loadRecords)
	totals := p.aggregator.PlantTotals(panels)
	eligibility := p.evaluator.Evaluate(loadRecords, meta)

	rep := p.assembler.Assemble(meta, loadRecords, panels, totals, eligibility)

	if err := p.export(rep); err != nil {
		return report.Report{}, err
	}

	p.logger.Info("pipeline complete",
		zap.String("project_id", meta.ProjectID),
		zap.Int("tier", int(eligibility.EligibleTier)),
		zap.Int("loads", len(loadRecords)),
		zap.Int("panels", len(panels)))

	return rep, nil
}

func (p *Pipeline) export(rep report.Report) error {
	outDir := p.config.Project.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if p.config.Export.WriteYAML {
		path := filepath.Join(outDir, "load-list.yaml")
		if err := export.WriteYAML(path, rep); err != nil {
			return err
		}
		p.logger.Info("wrote YAML report", zap.String("path", path))
	}

	if p.config.Export.WriteXLSX {
		path := filepath.Join(outDir, "load-list.xlsx")
		if err := export.WriteXLSX(path, rep); err != nil {
			return err
		}
		p.logger.Info("wrote Excel workbook", zap.String("path", path))
	}

	return nil
}
