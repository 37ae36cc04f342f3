package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bdougie/subocr/internal/config"
	"github.com/bdougie/subocr/internal/logging"
	"github.com/bdougie/subocr/internal/pipeline"
	"github.com/bdougie/subocr/internal/storage"
)

const defaultOutput = "output.srt"

type runFlags struct {
	path        string
	output      string
	backend     string
	logLevel    string
	concurrency int
	noColor     bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	rootCmd := &cobra.Command{
		Use:           "subocr",
		Short:         "Convert timestamped subtitle images into an SRT file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configFlag, flags)
			if err != nil {
				return err
			}
			return runConvert(cmd, cfg, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.Flags().StringVarP(&flags.path, "path", "p", "", "Directory containing subtitle images")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", defaultOutput, "Output SRT file")
	rootCmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 0, "Maximum OCR requests in flight (overrides config)")
	rootCmd.Flags().StringVar(&flags.backend, "backend", "", "OCR backend: ollama, http or tesseract (overrides config)")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	rootCmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable coloured console logs (overrides config)")
	_ = rootCmd.MarkFlagRequired("path")

	rootCmd.AddCommand(newFramesCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// loadConfig reads the config file and layers explicitly set flags on top.
func loadConfig(cmd *cobra.Command, path string, flags runFlags) (*config.Config, error) {
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("concurrency") {
		cfg.OCR.Concurrency = flags.concurrency
	}
	if changed("backend") {
		cfg.OCR.Backend = strings.ToLower(strings.TrimSpace(flags.backend))
	}
	if changed("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(flags.logLevel))
	}
	if changed("no-color") {
		cfg.Logging.NoColor = flags.noColor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, cfg *config.Config, flags runFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		NoColor: cfg.Logging.NoColor,
	})
	logger, _ = logging.WithRun(logger)

	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var cache storage.Storage
	if cfg.Cache.Enabled {
		cache, err = storage.Open(ctx, storage.Config{
			Driver: cfg.Cache.Driver,
			Path:   cfg.Cache.Path,
			DSN:    cfg.Cache.DSN,
		})
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("cache close failed", "error", err)
			}
		}()
	}

	out := cmd.OutOrStdout()
	summary, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:    flags.path,
		OutputPath:  flags.output,
		Concurrency: cfg.OCR.Concurrency,
		Backend:     backend,
		Cache:       cache,
		Logger:      logger,
		Progress:    out,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Subtitle written: %s (%d entries from %d frames", flags.output, summary.Entries, summary.Frames)
	if summary.Failed > 0 {
		fmt.Fprintf(out, ", %d failed", summary.Failed)
	}
	if summary.Cached > 0 {
		fmt.Fprintf(out, ", %d cached", summary.Cached)
	}
	fmt.Fprintln(out, ")")
	return nil
}
