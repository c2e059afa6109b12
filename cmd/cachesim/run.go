package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatXLSX = "xlsx"
	formatProm = "prom"
)

var formatExtensions = map[string]string{
	formatText: ".txt",
	formatJSON: ".json",
	formatXLSX: ".xlsx",
	formatProm: ".prom",
}

type runOptions struct {
	configPath string
	formats    []string
	outputDir  string
	engine     string
	parallel   bool
	record     string
	cpuProfile string
	memProfile string
}

var examples = []string{
	fmt.Sprintf("  Print hit counts:             $ %s run trace.txt", appName),
	fmt.Sprintf("  Write hit counts to a file:   $ %s run trace.txt out.txt", appName),
	fmt.Sprintf("  Excel and JSON reports:       $ %s run trace.txt.gz --format xlsx,json --output-dir results", appName),
	fmt.Sprintf("  Record results in SQLite:     $ %s run trace.txt --record run1", appName),
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:     "run <trace> [output]",
		Short:   "Replay a trace through every configured cache",
		Example: strings.Join(examples, "\n"),
		Args:    cobra.RangeArgs(1, 2),
		PreRunE: func(*cobra.Command, []string) error { return opts.validate() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, a, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "simulation config file (YAML or JSON), defaults to $"+envConfig)
	flags.StringSliceVarP(&opts.formats, "format", "f", nil, "report formats: text, json, xlsx, prom")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", ".", "directory for reports written by --format and --record")
	flags.StringVar(&opts.engine, "engine", "", "override the config engine: list or directory")
	flags.BoolVar(&opts.parallel, "parallel", false, "simulate every model in its own goroutine")
	flags.StringVar(&opts.record, "record", "", "record results in <output-dir>/<name>.sqlite3")
	flags.StringVar(&opts.cpuProfile, "cpuprofile", "", "write a CPU profile of the simulation to this file")
	flags.StringVar(&opts.memProfile, "memprofile", "", "write a heap profile after the simulation to this file")

	return cmd
}

func (o *runOptions) validate() error {
	supported := mapset.NewSet(formatText, formatJSON, formatXLSX, formatProm)
	for _, f := range o.formats {
		if !supported.Contains(f) {
			return fmt.Errorf("unsupported format %q", f)
		}
	}

	if o.engine != "" && o.engine != config.EngineList && o.engine != config.EngineDirectory {
		return fmt.Errorf("unsupported engine %q", o.engine)
	}
	return nil
}

func (o *runOptions) loadConfig(cmd *cobra.Command) (*config.SimConfig, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}

	cfg := config.DefaultSimConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		log.WithField("path", path).Debug("loaded config")
	}

	if o.engine != "" {
		cfg.Engine = o.engine
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = o.parallel
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, a *app, opts *runOptions, args []string) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	suite, err := sim.NewSuite(cfg)
	if err != nil {
		return fmt.Errorf("failed to build models: %w", err)
	}

	tracePath := args[0]
	reader, err := trace.Open(tracePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	stopProfile, err := startCPUProfile(opts.cpuProfile)
	if err != nil {
		return err
	}
	err = suite.Run(cmd.Context(), reader)
	stopProfile()
	if err != nil {
		return fmt.Errorf("failed to simulate %s: %w", tracePath, err)
	}
	if err := writeHeapProfile(opts.memProfile); err != nil {
		return err
	}

	rep, err := report.New(suite.Results(), cfg.DerivedMetrics)
	if err != nil {
		return err
	}
	rep.Trace = tracePath
	rep.Engine = cfg.Engine
	rep.Elapsed = suite.Elapsed()

	output := os.Getenv(envOutput)
	if len(args) > 1 {
		output = args[1]
	}

	if err := writeReports(cmd, opts, rep, output); err != nil {
		return err
	}

	if opts.record != "" {
		filename, err := report.RecordSQLite(filepath.Join(opts.outputDir, opts.record), rep)
		if err != nil {
			return err
		}
		log.WithField("file", filename).Info("recorded results")
	}

	if !a.quiet {
		stderr := cmd.ErrOrStderr()
		f, ok := stderr.(*os.File)
		colored := ok && report.IsTerminal(f)
		if err := report.WriteConsole(stderr, rep, colored); err != nil {
			return err
		}
	}

	return nil
}

func writeReports(cmd *cobra.Command, opts *runOptions, rep *report.Report, output string) error {
	if output != "" {
		if err := writeFile(output, rep, report.WriteText); err != nil {
			return err
		}
	} else if len(opts.formats) == 0 {
		return report.WriteText(cmd.OutOrStdout(), rep)
	}

	if len(opts.formats) == 0 {
		return nil
	}

	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := reportBase(rep.Trace)
	written := mapset.NewThreadUnsafeSet[string]()
	for _, format := range opts.formats {
		if !written.Add(format) {
			continue
		}
		path := filepath.Join(opts.outputDir, base+formatExtensions[format])

		var err error
		switch format {
		case formatText:
			err = writeFile(path, rep, report.WriteText)
		case formatJSON:
			err = writeFile(path, rep, report.WriteJSON)
		case formatXLSX:
			err = writeFile(path, rep, report.WriteXLSX)
		case formatProm:
			err = report.WritePrometheus(path, rep)
		}
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{"format": format, "file": path}).Info("wrote report")
	}

	return nil
}

// reportBase returns the trace file name without directory and without
// .gz and trace extensions.
func reportBase(tracePath string) string {
	base := filepath.Base(tracePath)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeFile(path string, rep *report.Report, write func(io.Writer, *report.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f, rep); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
