package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"bactsim/internal/config"
	"bactsim/internal/integrators"
	"bactsim/internal/logging"
	"bactsim/internal/model"
	"bactsim/internal/sim"
	"bactsim/internal/store"
)

var (
	dataDir string

	r         float64
	k         float64
	threshold float64
	alpha     float64
	conc      float64
	x0        float64
	y0        float64

	horizon    float64
	samples    int
	tolerance  float64
	integrator string

	configFile string
	preset     string
	noSave     bool

	sweepParam  string
	sweepValues string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bactsim",
		Short: "bacterial stress-collapse simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bactsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one parameter set",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip saving the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare two values of one parameter",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "conc", "parameter to vary")
	sweepCmd.Flags().StringVar(&sweepValues, "values", "0.2,0.8", "two comma-separated values")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id] [path]",
		Short: "export a saved run as CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tHORIZON\tSAMPLES")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.1f\t%d\n", name, p.Horizon, p.Samples)
			}
			return w.Flush()
		},
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "show model parameters and their reference ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PARAM\tDEFAULT\tMIN\tMAX\tDESCRIPTION")
			for _, name := range config.ParamNames {
				rg := config.Ranges[name]
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%s\n", name, rg.Default, rg.Min, rg.Max, rg.Description)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, exportJSONCmd, exportCSVCmd, presetsCmd, paramsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&r, "r", 1.0, "growth rate")
	cmd.Flags().Float64Var(&k, "k", 1.0, "carrying capacity")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "damage threshold")
	cmd.Flags().Float64Var(&alpha, "alpha", 2.5, "conversion coefficient")
	cmd.Flags().Float64Var(&conc, "conc", 0.2, "external concentration")
	cmd.Flags().Float64Var(&x0, "x0", 0.1, "initial density")
	cmd.Flags().Float64Var(&y0, "y0", 0.0, "initial damage")
	cmd.Flags().Float64Var(&horizon, "time", 10.0, "simulated horizon")
	cmd.Flags().IntVar(&samples, "samples", 100, "output samples")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-6, "solver tolerance")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator (euler|rk4|rk45)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig merges preset, config file and CLI flags; flags win.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flagOverrides := []struct {
		name string
		set  func()
	}{
		{"r", func() { cfg.Params.R = r }},
		{"k", func() { cfg.Params.K = k }},
		{"threshold", func() { cfg.Params.Threshold = threshold }},
		{"alpha", func() { cfg.Params.Alpha = alpha }},
		{"conc", func() { cfg.Params.Conc = conc }},
		{"x0", func() { cfg.Params.X0 = x0 }},
		{"y0", func() { cfg.Params.Y0 = y0 }},
		{"time", func() { cfg.Horizon = horizon }},
		{"samples", func() { cfg.Samples = samples }},
		{"tol", func() { cfg.Tolerance = tolerance }},
		{"integrator", func() { cfg.Integrator = integrator }},
	}
	for _, o := range flagOverrides {
		if cmd.Flags().Changed(o.name) {
			o.set()
		}
	}

	return cfg, nil
}

func simulateWith(ctx context.Context, cfg *config.Config) (*sim.Trajectory, error) {
	p := cfg.ModelParams()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	for name, value := range map[string]float64{
		"r": p.R, "k": p.K, "threshold": p.T, "alpha": p.Alpha,
		"conc": p.C, "x0": p.X0, "y0": p.Y0,
	} {
		if !config.InRange(name, value) {
			log.Warn("parameter outside reference range", "param", name, "value", value)
		}
	}

	integ, err := integrators.ByName(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	s := sim.New(model.NewBacterial(p), integ)
	return s.Run(ctx, p.InitState(), cfg.SimConfig())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := logging.New()
	ctx := logging.NewContext(cmd.Context(), log)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.ModelParams()

	tr, err := simulateWith(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println("\ndamage y(t):")
	fmt.Println(asciigraph.Plot(tr.Damage, asciigraph.Height(10), asciigraph.Width(70)))
	fmt.Println("\ndensity x(t):")
	fmt.Println(asciigraph.Plot(tr.Density, asciigraph.Height(10), asciigraph.Width(70)))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "horizon\t%.2f\n", cfg.Horizon)
	fmt.Fprintf(w, "samples\t%d\n", tr.Len())
	fmt.Fprintf(w, "final damage\t%.4f\n", tr.Damage[tr.Len()-1])
	fmt.Fprintf(w, "final density\t%.4f\n", tr.Density[tr.Len()-1])
	if at, ok := sim.CrashTime(tr, p.T); ok {
		fmt.Fprintf(w, "crash time\t%.4f\n", at)
	} else {
		fmt.Fprintf(w, "crash time\tnever observed\n")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if noSave {
		return nil
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Integrator, p, cfg.SimConfig(), tr)
	if err != nil {
		return err
	}
	log.Info("run saved", "id", runID)
	return nil
}

func parseSweepValues(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two comma-separated values, got %q", s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	log := logging.New()
	ctx := logging.NewContext(cmd.Context(), log)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	param := sweepParam
	values := sweepValues
	if cfg.Sweep.Param != "" && !cmd.Flags().Changed("param") {
		param = cfg.Sweep.Param
	}
	if len(cfg.Sweep.Values) == 2 && !cmd.Flags().Changed("values") {
		values = fmt.Sprintf("%g,%g", cfg.Sweep.Values[0], cfg.Sweep.Values[1])
	}

	va, vb, err := parseSweepValues(values)
	if err != nil {
		return err
	}

	res, err := sim.Compare(ctx, cfg.ModelParams(), param, va, vb, cfg.SimConfig())
	if err != nil {
		return err
	}

	fmt.Printf("\ndamage y(t), %s=%g vs %s=%g:\n", param, va, param, vb)
	fmt.Println(asciigraph.PlotMany(
		[][]float64{res.Runs[0].Trajectory.Damage, res.Runs[1].Trajectory.Damage},
		asciigraph.Height(10), asciigraph.Width(70),
	))
	fmt.Printf("\ndensity x(t), %s=%g vs %s=%g:\n", param, va, param, vb)
	fmt.Println(asciigraph.PlotMany(
		[][]float64{res.Runs[0].Trajectory.Density, res.Runs[1].Trajectory.Density},
		asciigraph.Height(10), asciigraph.Width(70),
	))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "\t%s=%g\t%s=%g\n", param, va, param, vb)
	crash := func(run sim.SweepRun) string {
		if run.Crashed {
			return fmt.Sprintf("%.4f", run.CrashAt)
		}
		return "never"
	}
	fmt.Fprintf(w, "crash time\t%s\t%s\n", crash(res.Runs[0]), crash(res.Runs[1]))
	fmt.Fprintf(w, "peak damage\t%.4f\t%.4f\n", res.Runs[0].Trajectory.MaxDamage(), res.Runs[1].Trajectory.MaxDamage())
	fmt.Fprintf(w, "peak density\t%.4f\t%.4f\n", res.Runs[0].Trajectory.MaxDensity(), res.Runs[1].Trajectory.MaxDensity())
	fmt.Fprintf(w, "axis bound y\t%.4f\n", res.Bounds.MaxDamage)
	fmt.Fprintf(w, "axis bound x\t%.4f\n", res.Bounds.MaxDensity)
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tHORIZON\tINTEGRATOR\tCRASH")
	for _, run := range runs {
		crash := "never"
		if run.CrashAt != nil {
			crash = fmt.Sprintf("%.4f", *run.CrashAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\t%s\n",
			run.ID, run.Timestamp.Format("2006-01-02 15:04:05"), run.Horizon, run.Integrator, crash)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	cfg := sim.Config{Horizon: meta.Horizon, Samples: meta.Samples, Tolerance: sim.DefaultTolerance}
	return store.ExportJSON(os.Stdout, meta.Params, cfg, tr)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)

	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	if err := store.WriteCSV(args[1], tr); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", args[1])
	return nil
}
