package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/joshuapare/memsim/internal/config"
	"github.com/joshuapare/memsim/internal/logger"
	"github.com/joshuapare/memsim/internal/session"
	"github.com/joshuapare/memsim/mem/printer"
	"github.com/joshuapare/memsim/mem/strategy"
	"github.com/joshuapare/memsim/mem/trace"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	noColor  bool
	showMap  bool
	logFile  string
	logLevel string
	envFiles []string
	traceDB  string
)

var rootCmd = &cobra.Command{
	Use:   "memsim",
	Short: "Simulate contiguous memory partition allocation",
	Long: `memsim simulates a contiguous memory region divided into variable-size
partitions. Processes are placed with first fit, best fit or worst fit,
freed partitions are merged with their free neighbours, and memory can be
compacted to gather all free space at the end.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&showMap, "map", false, "Draw a memory map above each report")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write a JSON log to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		StringSliceVar(&envFiles, "env-file", []string{".env"}, "Load environment from these files")
	rootCmd.PersistentFlags().StringVar(&traceDB, "trace-db", "", "Record every operation to this SQLite file")
}

// execute runs the root command and returns the process exit code.
func execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v\n", err)
		return 1
	}
	return 0
}

// setup merges environment settings under the flags and starts logging.
func setup(cmd *cobra.Command) error {
	env, err := config.LoadEnv(envFiles...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("log-file") && env.LogFile != "" {
		logFile = env.LogFile
	}
	if !flags.Changed("trace-db") && env.TraceDB != "" {
		traceDB = env.TraceDB
	}
	if env.NoColor {
		noColor = true
	}

	level := env.LogLevel
	if logLevel != "" {
		if level, err = config.ParseLevel(logLevel); err != nil {
			return err
		}
	}

	return logger.Init(logger.Options{
		Enabled: logFile != "" || verbose,
		File:    logFile,
		Level:   level,
	})
}

func printerOptions(out io.Writer) printer.Options {
	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	opts.Color = !noColor && isTerminal(out)
	opts.ShowMap = showMap
	opts.ShowUsage = verbose
	return opts
}

// openSession starts a session writing to out. The returned close function
// is also registered with atexit and runs at most once.
func openSession(ctx context.Context, out io.Writer, total int, s strategy.Strategy) (*session.Session, func(), error) {
	rec := trace.Nop()
	if traceDB != "" {
		db, err := trace.OpenSQLite(ctx, traceDB)
		if err != nil {
			return nil, nil, err
		}
		printVerbose("Recording trace to %s\n", db.Path())
		rec = db
	}

	sess, err := session.New(session.Config{
		Total:    total,
		Strategy: s,
		Out:      out,
		Printer:  printerOptions(out),
		Recorder: rec,
		Logger:   logger.L,
		Quiet:    quiet,
	})
	if err != nil {
		rec.Close()
		return nil, nil, err
	}

	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			if err := sess.Close(); err != nil {
				logger.Warn("closing session", "error", err)
			}
		})
	}
	atexit.Register(closeFn)
	return sess, closeFn, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
