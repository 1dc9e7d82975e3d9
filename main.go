package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"osaka-mansion/config"
	"osaka-mansion/services"
	"osaka-mansion/utils"
)

// app carries the process-wide configuration and logger into commands.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
}

func main() {
	a := &app{cfg: config.Load(), logger: utils.NewLogger()}
	a.logger.SetLevel(a.cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		a.logger.Error("%v", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "osaka-mansion",
		Short:         "Osaka 24-ward second-hand condominium investment analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfg.DatasetPath, "data", a.cfg.DatasetPath, "path to the cleaned transaction CSV")
	pf.StringVar(&a.cfg.DatasetSource, "source", a.cfg.DatasetSource, `dataset source: "csv" or "postgres"`)
	pf.StringVar(&a.cfg.DatasetEncoding, "encoding", a.cfg.DatasetEncoding, `CSV encoding: "utf-8" or "shift_jis"`)

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(summaryCmd(a))
	rootCmd.AddCommand(simulateCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(snapshotCmd(a))
	rootCmd.AddCommand(importDBCmd(a))

	return rootCmd
}

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&a.cfg.HTTPPort, "port", "p", a.cfg.HTTPPort, "HTTP server port")
	return cmd
}

func summaryCmd(a *app) *cobra.Command {
	var (
		cf     criteriaFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print statistics, the ward ranking and band yields for a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSummary(cmd.Context(), cmd.OutOrStdout(), cf.criteria(), asJSON)
		},
	}

	cf.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func simulateCmd(a *app) *cobra.Command {
	var price, rent, cost float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compute yields, cash flow and payback for a purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSimulate(cmd.OutOrStdout(), price, rent, cost)
		},
	}

	cmd.Flags().Float64Var(&price, "price", 3000, "purchase price (万円)")
	cmd.Flags().Float64Var(&rent, "rent", 12, "expected monthly rent (万円)")
	cmd.Flags().Float64Var(&cost, "cost", 20, "annual cost ratio (%)")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var cf criteriaFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered records to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExport(cmd.Context(), cf.criteria())
		},
	}

	cf.bind(cmd)
	cmd.Flags().StringVar(&a.cfg.ExportDir, "dir", a.cfg.ExportDir, "output directory")
	return cmd
}

func snapshotCmd(a *app) *cobra.Command {
	var (
		cf      criteriaFlags
		perWard bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render dashboard pages to PNG with headless Chrome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSnapshot(cmd.Context(), cf.criteria(), perWard)
		},
	}

	cf.bind(cmd)
	cmd.Flags().BoolVar(&perWard, "per-ward", false, "also capture one page per ward")
	cmd.Flags().StringVar(&a.cfg.SnapshotDir, "dir", a.cfg.SnapshotDir, "output directory")
	return cmd
}

func importDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-db",
		Short: "Load the CSV dataset into the PostgreSQL transactions table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runImportDB(cmd.Context())
		},
	}
}

// criteriaFlags binds filter criteria to command flags.
type criteriaFlags struct {
	wards            []string
	areaMin, areaMax float64
	ageMin, ageMax   float64
	distMin, distMax float64
}

func (f *criteriaFlags) bind(cmd *cobra.Command) {
	d := services.DefaultCriteria()
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.wards, "ward", "w", d.Wards, "ward to include, repeatable (全て for all)")
	fl.Float64Var(&f.areaMin, "area-min", d.Area.Min, "minimum area (㎡)")
	fl.Float64Var(&f.areaMax, "area-max", d.Area.Max, "maximum area (㎡)")
	fl.Float64Var(&f.ageMin, "age-min", d.Age.Min, "minimum building age (years)")
	fl.Float64Var(&f.ageMax, "age-max", d.Age.Max, "maximum building age (years)")
	fl.Float64Var(&f.distMin, "dist-min", d.Distance.Min, "minimum walk to station (minutes)")
	fl.Float64Var(&f.distMax, "dist-max", d.Distance.Max, "maximum walk to station (minutes)")
}
