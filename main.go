// Command voxmap turns scalar volumes into geometry. A script declares a
// volume, an optional transfer function and a list of mapping steps;
// every step's output is written to the output directory.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/chazu/voxmap/pkg/config"
	"github.com/chazu/voxmap/pkg/transfer"
	"github.com/spf13/cobra"
)

// cliFlags holds the persistent flags. Config file values apply first;
// explicitly set flags override them.
type cliFlags struct {
	configPath string
	debug      bool
	verbose    bool
	quiet      bool
	outputDir  string
	format     string
	seed       int64

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}
	root := &cobra.Command{
		Use:           "voxmap",
		Short:         "Extract isosurfaces, slices and point clouds from scalar volumes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return f.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML or YAML config file")
	pf.BoolVar(&f.debug, "debug", false, "log at debug level")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log at info level")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "log errors only")
	pf.StringVarP(&f.outputDir, "output", "o", "", "output directory")
	pf.StringVarP(&f.format, "format", "f", "", "output format: stl or json")
	pf.Int64Var(&f.seed, "seed", 0, "default seed for metropolis steps")

	root.AddCommand(newRunCmd(f), newColormapCmd(f))
	return root
}

// setup loads the configuration, applies flag overrides and installs the
// default logger.
func (f *cliFlags) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fallback, err := cfg.Level()
	if err != nil {
		return err
	}
	level := config.LevelFromFlags(f.debug, f.verbose, f.quiet, fallback)
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	f.cfg = cfg
	return nil
}

func newRunCmd(f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Evaluate a script and write every result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			app := NewAppWithConfig(f.cfg)
			results, ev := app.Run(cmd.Context(), string(source))
			for _, w := range ev.Warnings {
				slog.Warn("script warning", "script", args[0], "line", w.Line, "msg", w.Message)
			}
			if len(ev.Errors) > 0 {
				for _, e := range ev.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d: %s\n", args[0], e.Line, e.Message)
				}
				return fmt.Errorf("%s: %d error(s)", args[0], len(ev.Errors))
			}
			written, err := writeResults(f.cfg.OutputDir, f.cfg.Format, results)
			if err != nil {
				slog.Error("write failed", "err", err)
				return err
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			slog.Info("run complete",
				"script", args[0],
				"meshes", len(ev.Meshes),
				"points", len(ev.Points),
				"files", len(written))
			return nil
		},
	}
}

func newColormapCmd(f *cliFlags) *cobra.Command {
	var resolution int
	cmd := &cobra.Command{
		Use:   "colormap",
		Short: "Print the default transfer function as index r g b opacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("resolution") {
				resolution = f.cfg.TransferResolution
			}
			tf, err := transfer.New(resolution)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i := 0; i < tf.Resolution(); i++ {
				rgb := tf.Colors.At(i)
				fmt.Fprintf(w, "%d %.4f %.4f %.4f %.4f\n", i, rgb[0], rgb[1], rgb[2], tf.Opacities.At(i))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&resolution, "resolution", "r", transfer.DefaultResolution, "number of table entries")
	return cmd
}
