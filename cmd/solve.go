package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alderwick/gridsched/app"
	"github.com/alderwick/gridsched/config"
	"github.com/alderwick/gridsched/core/scenario"
	"github.com/alderwick/gridsched/infra/logger"
	"github.com/alderwick/gridsched/metrics"
	"github.com/alderwick/gridsched/pkg/export"
)

var (
	scenarioPath  string
	exportCSVPath string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run a single batch solve over a scenario file",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "scenario.yaml", "scenario file")
	solveCmd.Flags().StringVar(&exportCSVPath, "export-csv", "", "write the assigned constant actions to this CSV file")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	doc, err := scenario.Load(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	if doc.Delta == 0 {
		doc.Delta = cfg.Annealer.Delta
	}
	sc, err := doc.Build()
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}
	annealCfg, err := cfg.Annealer.ToAnnealConfig()
	if err != nil {
		return fmt.Errorf("annealer config: %w", err)
	}
	sc.Annealer = annealCfg

	svc, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("new service: %w", err)
	}
	if cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
				logger.New("solve").Errorf("prometheus server: %v", err)
			}
		}()
	}

	res, err := svc.Solve(ctx, sc)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: cost=%v iterations=%d cancelled=%v\n",
		res.RunID, res.TotalCost, res.Iterations, res.Cancelled)
	for _, a := range doc.ConstantActions {
		if assignment, ok := res.Schedule.Constant(a.ID); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "  constant %s: start=%s end=%s\n",
				a.ID, assignment.Start.Format("2006-01-02T15:04:05"), assignment.End.Format("2006-01-02T15:04:05"))
		}
	}

	if exportCSVPath != "" {
		f, err := os.Create(exportCSVPath)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		if err := export.WriteAllCSV(f, res.Schedule, doc.ConstantActions); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
	}
	return nil
}
