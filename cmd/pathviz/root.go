package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lixenwraith/pathviz/app"
	"github.com/lixenwraith/pathviz/audio"
	"github.com/lixenwraith/pathviz/config"
	"github.com/lixenwraith/pathviz/grid"
	"github.com/lixenwraith/pathviz/metrics"
	"github.com/lixenwraith/pathviz/render"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

const flagConfig = "config"

// flagKeys maps flag names to config keys
var flagKeys = map[string]string{
	"rows":         config.KeyRows,
	"cols":         config.KeyCols,
	"heuristic":    config.KeyHeuristic,
	"delay":        config.KeyDelay,
	"sound":        config.KeySound,
	"tick-sound":   config.KeyTickSound,
	"debug":        config.KeyDebug,
	"log-dir":      config.KeyLogDir,
	"metrics-addr": config.KeyMetricsAddr,
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "pathviz",
		Short:         "Interactive A* pathfinding visualizer for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), cfg)
		},
	}

	d := config.Default()
	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "path to a TOML config file")
	flags.Int("rows", d.Rows, "grid rows")
	flags.Int("cols", d.Cols, "grid columns")
	flags.String("heuristic", d.Heuristic, "euclidean, manhattan, octile or zero")
	flags.Duration("delay", d.Delay, "pause after each expansion")
	flags.Bool("sound", d.Sound, "play outcome sounds")
	flags.Bool("tick-sound", d.TickSound, "play a blip per expansion")
	flags.Bool("debug", d.Debug, "write logs to the log directory")
	flags.String("log-dir", d.LogDir, "log directory used with --debug")
	flags.String("metrics-addr", d.MetricsAddr, "serve Prometheus metrics on this address")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(newSolveCmd(v), newVersionCmd())
	return root
}

func loadConfig(cmd *cobra.Command, v *viper.Viper) (config.Config, error) {
	file, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(v, config.Options{File: file})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Configuration error: %v\n", err)
		return config.Config{}, err
	}
	logDir = cfg.LogDir
	return cfg, nil
}

func runInteractive(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}
	logger := log.Default()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		return err
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		return err
	}
	// Restore the terminal before any panic propagates to main
	defer func() {
		r := recover()
		screen.Fini()
		if r != nil {
			panic(r)
		}
	}()

	if g, gErr := grid.New(cfg.Rows, cfg.Cols); gErr == nil {
		needW, needH := render.RequiredSize(g)
		if w, h := screen.Size(); w < needW || h < needH {
			logger.Printf("terminal %dx%d smaller than grid needs (%dx%d)", w, h, needW, needH)
		}
	}

	sound := audio.NewSoundManager(cfg.TickSound)
	if cfg.Sound {
		if err := sound.Initialize(); err != nil {
			logger.Printf("Audio initialization failed: %v (continuing without audio)", err)
		} else {
			defer sound.Cleanup()
		}
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, registry, logger); err != nil {
				logger.Printf("metrics server: %v", err)
			}
		}()
	}

	a, err := app.New(screen, cfg, app.Options{Cues: sound, Recorder: recorder, Logger: logger})
	if err != nil {
		return err
	}
	logger.Printf("pathviz %s started: %dx%d, heuristic %s", version, cfg.Rows, cfg.Cols, cfg.Heuristic)
	return a.Run(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pathviz %s\n", version)
		},
	}
}
