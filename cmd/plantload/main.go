package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"plantload/internal/config"
	"plantload/internal/logger"
	"plantload/internal/service"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "plantload")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting load-list generation",
		zap.String("equipment_list", cfg.Project.EquipmentList),
		zap.String("motor_standard", string(cfg.Electrical.MotorStandard)),
		zap.Int("voltage_v", cfg.Electrical.VoltageV))

	pipeline, err := service.NewPipeline(cfg, log)
	if err != nil {
		log.Fatal("Failed to create pipeline", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatal("Pipeline failed", zap.Error(err))
	}

	log.Info("Load list generated",
		zap.String("project_id", rep.ProjectID),
		zap.Int("tier", int(rep.OutputTier.Tier)),
		zap.String("tier_name", rep.OutputTier.TierName),
		zap.Float64("completeness_pct", rep.OutputTier.CompletenessPct))
}
