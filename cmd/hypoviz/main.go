// Package main provides the CLI entrypoint for hypoviz.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/hypoviz/internal/app"
	"github.com/verte-zerg/hypoviz/internal/config"
	"github.com/verte-zerg/hypoviz/internal/logging"
	"github.com/verte-zerg/hypoviz/internal/model"
	"github.com/verte-zerg/hypoviz/internal/simulate"
	"github.com/verte-zerg/hypoviz/internal/stats"
	"github.com/verte-zerg/hypoviz/internal/statsui"
	"github.com/verte-zerg/hypoviz/internal/store"
	"github.com/verte-zerg/hypoviz/internal/tui"
)

const (
	defaultStdDev      = 1.0
	defaultAlpha       = 0.05
	defaultTrials      = 10000
	defaultReportSpan  = 4.0
	defaultReportSteps = 17
	defaultPlotHeight  = 10
	defaultLogLevel    = "info"
)

type curveFlags struct {
	stddev     float64
	alpha      float64
	altMean    float64
	showAlt    bool
	showTypeI  bool
	showTypeII bool
	showPower  bool
	showLabels bool
}

var (
	rootCurves   curveFlags
	rootFrom     int64
	renderCurves curveFlags
	renderOut    string
	renderWidth  int
	renderHeight int

	reportStdDev float64
	reportAlpha  float64
	reportFrom   float64
	reportTo     float64
	reportSteps  int
	reportHeight int

	historyLimit int
	historyPlain bool

	simStdDev  float64
	simAlpha   float64
	simAltMean float64
	simTrials  int
	simSeed    int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hypoviz",
		Short:         "Explore Type I/II error and power of a two-sided test",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runExploreCmd,
	}
	addCurveFlags(rootCmd, &rootCurves)
	rootCmd.Flags().Int64Var(&rootFrom, "from", 0, "start from a saved snapshot id")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSimulateCmd())
	return rootCmd
}

func addCurveFlags(cmd *cobra.Command, f *curveFlags) {
	cmd.Flags().Float64Var(&f.stddev, "stddev", defaultStdDev, "standard deviation of both curves (> 0)")
	cmd.Flags().Float64Var(&f.alpha, "alpha", defaultAlpha, "significance level (0-1)")
	cmd.Flags().Float64Var(&f.altMean, "alt-mean", 0, "mean of the alternative curve")
	cmd.Flags().BoolVar(&f.showAlt, "show-alt", false, "show the alternative curve")
	cmd.Flags().BoolVar(&f.showTypeI, "type1", false, "shade the Type I error region")
	cmd.Flags().BoolVar(&f.showTypeII, "type2", false, "shade the Type II error region")
	cmd.Flags().BoolVar(&f.showPower, "power", false, "shade the power region")
	cmd.Flags().BoolVar(&f.showLabels, "labels", true, "label the reference axis")
}

// cmdEnv bundles what every command needs after loading the config file.
type cmdEnv struct {
	cfg    config.FileConfig
	log    *logrus.Logger
	closer io.Closer
}

func (r *cmdEnv) Close() {
	if r.closer == nil {
		return
	}
	if err := r.closer.Close(); err != nil {
		logErrf("failed to close log: %v\n", err)
	}
}

func setup() (*cmdEnv, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	opts := logging.Options{Level: defaultLogLevel, File: config.DefaultLogPath()}
	if fileCfg.Log.Level != nil {
		opts.Level = *fileCfg.Log.Level
	}
	if fileCfg.Log.File != nil {
		opts.File = *fileCfg.Log.File
	}
	if fileCfg.Log.MaxSizeMB != nil {
		opts.MaxSizeMB = *fileCfg.Log.MaxSizeMB
	}
	if fileCfg.Log.MaxBackups != nil {
		opts.MaxBackups = *fileCfg.Log.MaxBackups
	}
	log, closer, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to init logging: %w", err)
	}
	return &cmdEnv{cfg: fileCfg, log: log, closer: closer}, nil
}

func openStore(log *logrus.Logger) (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			log.WithError(cerr).Error("failed to close db")
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func runExploreCmd(cmd *cobra.Command, _ []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.Close()

	params := resolveParams(cmd, &rootCurves, rt.cfg.Curves)
	if err := validateParams(params); err != nil {
		return err
	}

	st, closeStore, err := openStore(rt.log)
	if err != nil {
		return err
	}
	defer closeStore()

	if cmd.Flags().Changed("from") {
		snap, err := st.GetSnapshot(context.Background(), rootFrom)
		if err != nil {
			return fmt.Errorf("failed to load snapshot %d: %w", rootFrom, err)
		}
		params = paramsFromSnapshot(params, snap)
	}
	return runExplorer(rt, st, params)
}

func runExplorer(rt *cmdEnv, st *store.Store, params model.Params) error {
	session, err := app.NewSession(app.Layout{}, app.TerminalThemes(), params, rt.log)
	if err != nil {
		return err
	}
	rt.log.WithFields(logrus.Fields{
		"stddev":   params.StdDev,
		"alpha":    params.Alpha,
		"alt_mean": params.AltMean,
	}).Info("starting explorer")
	m := tui.NewModel(session, st, rt.log, tui.Options{ExportDir: config.DefaultExportDir()})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the curves to a PNG file",
		Args:  cobra.NoArgs,
		RunE:  runRenderCmd,
	}
	addCurveFlags(cmd, &renderCurves)
	cmd.Flags().StringVarP(&renderOut, "out", "o", "hypoviz.png", "output PNG path")
	cmd.Flags().IntVar(&renderWidth, "width", app.DefaultExportWidth, "image width in pixels")
	cmd.Flags().IntVar(&renderHeight, "height", app.DefaultExportHeight, "image height in pixels")
	return cmd
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.Close()

	params := resolveParams(cmd, &renderCurves, rt.cfg.Curves)
	if err := validateParams(params); err != nil {
		return err
	}
	if renderWidth <= 0 || renderHeight <= 0 {
		return fmt.Errorf("--width and --height must be > 0")
	}
	if err := app.WritePNG(renderOut, params, renderWidth, renderHeight, rt.log); err != nil {
		return fmt.Errorf("failed to render %s: %w", renderOut, err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", renderOut); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print power and Type II error across mean shifts",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().Float64Var(&reportStdDev, "stddev", defaultStdDev, "standard deviation (> 0)")
	cmd.Flags().Float64Var(&reportAlpha, "alpha", defaultAlpha, "significance level (0-1)")
	cmd.Flags().Float64Var(&reportFrom, "from-shift", math.NaN(), "smallest mean shift (default -4 stddev)")
	cmd.Flags().Float64Var(&reportTo, "to-shift", math.NaN(), "largest mean shift (default +4 stddev)")
	cmd.Flags().IntVar(&reportSteps, "steps", defaultReportSteps, "number of shifts")
	cmd.Flags().IntVar(&reportHeight, "height", defaultPlotHeight, "plot height in rows")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.Close()

	applyFloatConfig(cmd, "stddev", &reportStdDev, rt.cfg.Curves.StdDev)
	applyFloatConfig(cmd, "alpha", &reportAlpha, rt.cfg.Curves.Alpha)
	if err := validateStdDevAlpha(reportStdDev, reportAlpha); err != nil {
		return err
	}
	lo, hi := reportFrom, reportTo
	if math.IsNaN(lo) {
		lo = -defaultReportSpan * reportStdDev
	}
	if math.IsNaN(hi) {
		hi = defaultReportSpan * reportStdDev
	}
	shifts, err := stats.ShiftGrid(lo, hi, reportSteps)
	if err != nil {
		return fmt.Errorf("--from-shift/--to-shift/--steps: %w", err)
	}
	points, err := stats.PowerCurve(reportStdDev, reportAlpha, shifts)
	if err != nil {
		return err
	}
	return stats.RenderPowerReport(cmd.OutOrStdout(), reportStdDev, reportAlpha, points, 0, reportHeight, false)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved snapshots",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 0, "limit to last N snapshots")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text table instead of the TUI")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.Close()

	st, closeStore, err := openStore(rt.log)
	if err != nil {
		return err
	}
	defer closeStore()

	if historyPlain {
		snaps, err := st.ListSnapshots(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}
		return stats.RenderSnapshotTable(cmd.OutOrStdout(), snaps)
	}

	m := statsui.NewModel(st, historyLimit, rt.log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	snap, ok := m.Chosen()
	if !ok {
		return nil
	}
	return runExplorer(rt, st, paramsFromSnapshot(model.DefaultParams(), snap))
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Check analytic power with a Monte Carlo run",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	cmd.Flags().Float64Var(&simStdDev, "stddev", defaultStdDev, "standard deviation (> 0)")
	cmd.Flags().Float64Var(&simAlpha, "alpha", defaultAlpha, "significance level (0-1)")
	cmd.Flags().Float64Var(&simAltMean, "alt-mean", 1, "mean of the alternative curve")
	cmd.Flags().IntVar(&simTrials, "trials", defaultTrials, "number of draws")
	cmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 uses the clock)")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.Close()

	applyFloatConfig(cmd, "stddev", &simStdDev, rt.cfg.Curves.StdDev)
	applyFloatConfig(cmd, "alpha", &simAlpha, rt.cfg.Curves.Alpha)
	applyFloatConfig(cmd, "alt-mean", &simAltMean, rt.cfg.Curves.AltMean)
	applyIntConfig(cmd, "trials", &simTrials, rt.cfg.Simulate.Trials)
	applyInt64Config(cmd, "seed", &simSeed, rt.cfg.Simulate.Seed)

	if err := validateStdDevAlpha(simStdDev, simAlpha); err != nil {
		return err
	}
	if simTrials < simulate.MinTrials {
		return fmt.Errorf("--trials must be >= %d", simulate.MinTrials)
	}
	cfg := model.SimConfig{
		StdDev:  simStdDev,
		Alpha:   simAlpha,
		AltMean: simAltMean,
		Trials:  simTrials,
		Seed:    simSeed,
	}
	res, running, err := simulate.New(cfg.Seed).Run(cmd.Context(), cfg)
	if err != nil {
		if errors.Is(err, simulate.ErrDegenerate) {
			return fmt.Errorf("--alpha: %w", err)
		}
		return err
	}
	rt.log.WithFields(logrus.Fields{
		"trials":    res.Trials,
		"empirical": res.EmpiricalPower,
		"analytic":  res.AnalyticPower,
	}).Info("simulation finished")
	return stats.RenderSimulation(cmd.OutOrStdout(), res, running, 0, defaultPlotHeight, false)
}

func resolveParams(cmd *cobra.Command, f *curveFlags, cfg config.CurvesConfig) model.Params {
	applyFloatConfig(cmd, "stddev", &f.stddev, cfg.StdDev)
	applyFloatConfig(cmd, "alpha", &f.alpha, cfg.Alpha)
	applyFloatConfig(cmd, "alt-mean", &f.altMean, cfg.AltMean)
	applyBoolConfig(cmd, "show-alt", &f.showAlt, cfg.ShowAlt)
	applyBoolConfig(cmd, "type1", &f.showTypeI, cfg.ShowTypeI)
	applyBoolConfig(cmd, "type2", &f.showTypeII, cfg.ShowTypeII)
	applyBoolConfig(cmd, "power", &f.showPower, cfg.ShowPower)
	applyBoolConfig(cmd, "labels", &f.showLabels, cfg.ShowLabels)
	return model.Params{
		StdDev:     f.stddev,
		Alpha:      f.alpha,
		AltMean:    f.altMean,
		ShowAlt:    f.showAlt,
		ShowTypeI:  f.showTypeI,
		ShowTypeII: f.showTypeII,
		ShowPower:  f.showPower,
		ShowLabels: f.showLabels,
	}
}

func paramsFromSnapshot(base model.Params, snap model.Snapshot) model.Params {
	base.StdDev = snap.StdDev
	base.Alpha = snap.Alpha
	base.NullMean = snap.NullMean
	base.AltMean = snap.AltMean
	base.ShowAlt = true
	return base
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# hypoviz configuration
# Uncomment a value to enable it. CLI flags override config values.

[curves]
# stddev = %.1f            # Standard deviation of both curves (> 0)
# alpha = %.2f            # Significance level (0-1)
# alt-mean = 0.0          # Mean of the alternative curve
# show-alt = false        # Show the alternative curve
# type1 = false           # Shade the Type I error region
# type2 = false           # Shade the Type II error region
# power = false           # Shade the power region
# labels = true           # Label the reference axis

[simulate]
# trials = %d          # Number of Monte Carlo draws
# seed = 0                # Random seed (0 uses the clock)

[log]
# level = %q           # panic, fatal, error, warn, info, debug, trace
# file = %q
# max-size-mb = 5         # Rotate after this many megabytes
# max-backups = 3         # Rotated files to keep
`,
		defaultStdDev,
		defaultAlpha,
		defaultTrials,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func validateParams(p model.Params) error {
	if err := validateStdDevAlpha(p.StdDev, p.Alpha); err != nil {
		return err
	}
	if math.IsNaN(p.AltMean) || math.IsInf(p.AltMean, 0) {
		return fmt.Errorf("--alt-mean must be finite")
	}
	return nil
}

func validateStdDevAlpha(stddev, alpha float64) error {
	if math.IsNaN(stddev) || math.IsInf(stddev, 0) || stddev <= 0 {
		return fmt.Errorf("--stddev must be > 0")
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return fmt.Errorf("--alpha must be finite")
	}
	if alpha <= 0 || alpha >= 1 {
		logErrf("warning: --alpha %g is outside (0,1); markers will be undefined\n", alpha)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
