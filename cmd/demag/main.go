package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ultrafast-lab/demag/internal/config"
	"github.com/ultrafast-lab/demag/internal/integrators"
	"github.com/ultrafast-lab/demag/internal/material"
	"github.com/ultrafast-lab/demag/internal/results"
	"github.com/ultrafast-lab/demag/internal/solver"
	"github.com/ultrafast-lab/demag/internal/store"
	"github.com/ultrafast-lab/demag/internal/structure"
)

var (
	dataDir string

	t0            float64
	tc            float64
	fluence       float64
	pulseDuration float64
	wavelength    float64
	layers        int
	useSubstrate  bool
	subLayers     int

	tStart     float64
	tEnd       float64
	outputStep float64
	integrator string
	tolerance  float64

	configFile string
	preset     string
	quiet      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "demag",
		Short: "ultrafast laser-induced demagnetization simulation (M3TM)",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".demag", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [material]",
		Short: "run a 3TM simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&t0, "t0", config.DefaultT0, "initial temperature (K)")
	runCmd.Flags().Float64Var(&tc, "tc", 0, "Curie temperature (K, 0 = material default)")
	runCmd.Flags().Float64Var(&fluence, "fluence", config.DefaultFluence, "pulse fluence (mJ/cm^2)")
	runCmd.Flags().Float64Var(&pulseDuration, "pulse", config.DefaultPulseDuration, "pulse duration FWHM (ps)")
	runCmd.Flags().Float64Var(&wavelength, "wavelength", config.DefaultWavelength, "pump wavelength (nm)")
	runCmd.Flags().IntVar(&layers, "layers", config.DefaultLayers, "number of film layers")
	runCmd.Flags().BoolVar(&useSubstrate, "substrate", false, "add a Si substrate below the film")
	runCmd.Flags().IntVar(&subLayers, "substrate-layers", 50, "number of substrate layers")
	runCmd.Flags().Float64Var(&tStart, "tstart", -1, "window start (ps)")
	runCmd.Flags().Float64Var(&tEnd, "tend", 5, "window end (ps)")
	runCmd.Flags().Float64Var(&outputStep, "step", 0.005, "output time step (ps)")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk45", "time integrator (rk4, rk45)")
	runCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-6, "integration tolerance")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress logging")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run traces in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list supported materials",
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [material]",
		Short: "list presets for a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if names == nil {
				return fmt.Errorf("no presets for material %s", args[0])
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, materialsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command, materialName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Material = materialName

	if preset != "" {
		p := config.GetPreset(materialName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)",
				preset, config.ListPresets(materialName))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
	}

	// CLI flags override preset and file values.
	if cmd.Flags().Changed("t0") {
		cfg.T0 = t0
	}
	if cmd.Flags().Changed("tc") {
		cfg.Tc = tc
	}
	if cmd.Flags().Changed("fluence") {
		cfg.Fluence = fluence
	}
	if cmd.Flags().Changed("pulse") {
		cfg.PulseDuration = pulseDuration
	}
	if cmd.Flags().Changed("wavelength") {
		cfg.Wavelength = wavelength
	}
	if cmd.Flags().Changed("layers") {
		cfg.Layers = layers
	}
	if cmd.Flags().Changed("substrate") {
		cfg.Substrate = useSubstrate
	}
	if cmd.Flags().Changed("substrate-layers") {
		cfg.SubstrateLayers = subLayers
	}
	if cmd.Flags().Changed("tstart") {
		cfg.TStart = tStart
	}
	if cmd.Flags().Changed("tend") {
		cfg.TEnd = tEnd
	}
	if cmd.Flags().Changed("step") {
		cfg.OutputStep = outputStep
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = tolerance
	}

	if cfg.Integrator == "" {
		cfg.Integrator = "rk45"
	}
	if cfg.Tc == 0 {
		tc, err := material.DefaultCurieTemp(cfg.Material)
		if err != nil {
			return nil, err
		}
		cfg.Tc = tc
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	params := cfg.ToParams()
	runCfg := cfg.ToRunConfig()

	props, err := material.Resolve(params.Material, params.CurieTemp)
	if err != nil {
		return err
	}

	var st *structure.Structure
	if params.Substrate {
		st, err = structure.BuildOnSubstrate(props, params.Layers, material.Substrate(), params.SubstrateLayers)
	} else {
		st, err = structure.Build(props, params.Layers)
	}
	if err != nil {
		return err
	}

	db := store.New(dataDir)
	if err := db.Init(); err != nil {
		return err
	}

	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return err
	}

	sv := solver.New()
	sv.SetIntegrator(integ)
	if !quiet {
		sv.AddObserver(solver.LogObserver{})
	}

	log.WithFields(log.Fields{
		"material": params.Material,
		"layers":   st.NumLayers(),
		"fluence":  params.Fluence,
	}).Info("starting run")

	start := time.Now()
	res, err := sv.Run(context.Background(), st, params, runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := db.Save(params, runCfg, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (rejected %d)\n", res.Stats.Steps, res.Stats.Rejected)
	fmt.Printf("magnetization range: [%.4f, %.4f]\n", res.Stats.MMin, res.Stats.MMax)

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	db := store.New(dataDir)
	runs, err := db.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tTIME\tLAYERS\tFLUENCE\tPULSE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.3f\n",
			run.ID,
			run.Material,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.Layers,
			run.Params.Fluence,
			run.Params.PulseDuration,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	db := store.New(dataDir)

	meta, err := db.Load(runID)
	if err != nil {
		return err
	}
	res, err := db.LoadFields(runID)
	if err != nil {
		return err
	}

	film := make([]int, meta.Params.Layers)
	for i := range film {
		film[i] = i
	}

	bundle := results.Format(res, film, meta.Material)
	for _, line := range bundle.Lines {
		graph := asciigraph.Plot(line.Y,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: %s (%s)", line.Title, line.Label, line.YLabel)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	db := store.New(dataDir)

	meta, err := db.Load(runID)
	if err != nil {
		return err
	}
	res, err := db.LoadFields(runID)
	if err != nil {
		return err
	}

	out := struct {
		Meta   *store.RunMetadata `json:"meta"`
		Times  []float64          `json:"times"`
		Te     [][]float64        `json:"electron_temperature"`
		Tp     [][]float64        `json:"phonon_temperature"`
		M      [][]float64        `json:"magnetization"`
		Layers []float64          `json:"positions"`
	}{meta, res.Times, res.Electrons, res.Phonons, res.Magnetization, res.Positions}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func listMaterials(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTC [K]\tLAYER [nm]")
	for _, name := range material.Supported() {
		tc, err := material.DefaultCurieTemp(name)
		if err != nil {
			return err
		}
		props, err := material.Resolve(name, tc)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.0f\t%.5f\n", props.Name, props.CurieTemp, props.LatticeConstant*1e9)
	}
	return w.Flush()
}
