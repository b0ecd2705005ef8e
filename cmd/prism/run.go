package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"prism/src/asset"
	"prism/src/config"
	"prism/src/platform"
	"prism/src/render"
)

type runFlags struct {
	config   string
	shaders  string
	debug    bool
	logLevel string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the window and draw until it is closed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			log, err := cfg.Log.NewLogger(os.Stderr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, log)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "TOML or YAML config file")
	fs.StringVar(&f.shaders, "shaders", "", "directory holding the compiled shaders")
	fs.BoolVar(&f.debug, "debug", false, "enable the validation layer")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
}

// loadConfig reads the config file if one was named and applies the flags
// that were set on the command line.
func loadConfig(flags *pflag.FlagSet, f runFlags) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("shaders") {
		cfg.Shaders.Dir = f.shaders
	}
	if flags.Changed("debug") {
		cfg.Render.Debug = f.debug
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if err := platform.Init(); err != nil {
		return err
	}
	defer platform.Terminate()

	win, err := platform.NewWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	if err != nil {
		return err
	}
	defer win.Destroy()

	inst, err := platform.CreateInstance(platform.InstanceConfig{
		AppName:    cfg.Window.Title,
		Extensions: win.RequiredExtensions(),
		Debug:      cfg.Render.Debug,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer inst.Destroy()

	surface, err := win.CreateSurface(inst.Handle)
	if err != nil {
		return err
	}
	defer platform.DestroySurface(inst.Handle, surface)

	r, err := render.New(render.Options{
		Instance:            inst.Handle,
		Surface:             surface,
		GetInstanceProcAddr: platform.GetInstanceProcAddr(),
		Assets:              asset.Dir(cfg.Shaders.Dir),
		VertexShader:        cfg.Shaders.Vertex,
		FragmentShader:      cfg.Shaders.Fragment,
		ClearColor:          cfg.Render.ClearColor,
		Layers:              inst.Layers,
		Debug:               cfg.Render.Debug,
		Logger:              log,
	})
	if err != nil {
		return errors.Wrap(err, "create renderer")
	}
	defer r.Destroy()

	dims := r.SwapchainDimensions()
	log.Info("swapchain ready", "width", dims.Width, "height", dims.Height, "images", r.ImageCount())
	return drive(ctx, r, win, log)
}
