// Command plasmafilter processes a raw G-code file coming from
// sheetcam or a similar CAM package into G-code with the material and
// path substitutions needed for plasma cutting. The result goes to
// standard output; diagnostics go to standard error.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mikemacwillie/plasmafilter"
	"github.com/mikemacwillie/plasmafilter/config"
	"github.com/mikemacwillie/plasmafilter/process"
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "plasmafilter <gcode-file>",
	Short: "Preprocess plasma-cutting G-code with process and smart-hole substitutions",
	Long: `plasmafilter follows the LinuxCNC filter-program model: it reads a
G-code file produced by CAM, substitutes process parameters from the
cutchart database, expands qualifying circular holes into lead-in and
segmented-speed sequences, and prints the result to standard output.
Diagnostics are printed to standard error.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zapcore.InfoLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		encCfg := zap.NewDevelopmentEncoderConfig()
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr), level)
		logger = zap.New(core)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			// No file given: print usage and exit without processing.
			return cmd.Help()
		}
		return run(args[0])
	},
}

func run(path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := process.Open(cfg.Machine.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening program: %w", err)
	}
	defer f.Close()

	ctx := plasmafilter.NewRunContext(cfg.Imperial(), cfg.Settings(), store, logger)

	lines, err := plasmafilter.NewParser(ctx).Parse(f)
	if err != nil {
		return err
	}

	if ctx.Settings.HoleDetectEnabled {
		plasmafilter.NewHoleDetector(ctx).FlagHoles(lines)
	}

	if err := plasmafilter.NewSerializer(ctx).Write(os.Stdout, lines); err != nil {
		return err
	}

	// Publish the resolved process id for the downstream controller.
	if ctx.ActiveProcess != nil {
		if err := cfg.PublishCutchartID(ctx.ActiveProcess.ID); err != nil {
			logger.Warn("publishing cutchart id failed", zap.Error(err))
		}
	} else {
		logger.Debug("no active cutchart")
	}

	return nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug diagnostics")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "plasmafilter.yml",
		"configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
