// Package main provides the cachesim command line tool. It replays a memory
// reference trace through a suite of cache organizations and reports the
// hit counts of each.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const appName = "cachesim"

// Environment variables that supply defaults for unset flags.
const (
	envConfig = "CACHESIM_CONFIG"
	envOutput = "CACHESIM_OUTPUT"
)

type app struct {
	debug   bool
	quiet   bool
	logFile string

	log io.WriteCloser
}

func main() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	a := &app{}
	atexit.Register(a.close)

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Functional cache simulator",
		Long: `cachesim replays a trace of loads and stores through direct-mapped, ` +
			`set-associative and fully-associative caches and reports the ` +
			`number of hits of each.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setupLogging() },
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only log warnings and skip the console table")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "also write logs to this file")

	root.AddCommand(newRunCmd(a), newConfigCmd())
	return root
}

func (a *app) setupLogging() error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	switch {
	case a.debug:
		log.SetLevel(log.DebugLevel)
	case a.quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if a.logFile == "" {
		return nil
	}

	f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	a.log = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

func (a *app) close() {
	if a.log == nil {
		return
	}
	log.SetOutput(os.Stderr)
	_ = a.log.Close()
	a.log = nil
}
