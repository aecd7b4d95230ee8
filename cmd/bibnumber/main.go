package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ironsheep/bibnumber/internal/batch"
	"github.com/ironsheep/bibnumber/internal/config"
	"github.com/ironsheep/bibnumber/internal/logger"
	"github.com/ironsheep/bibnumber/internal/ocr"
	"github.com/ironsheep/bibnumber/internal/server"
)

const appName = "bibnumber"

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// globalOptions holds the persistent flags of the root command.
type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// setup loads the .env file and the config, then installs the logger.
func (g *globalOptions) setup() (*config.Config, error) {
	var envFiles []string
	if g.envFile != "" {
		envFiles = append(envFiles, g.envFile)
	}
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(os.Stderr, logger.ResolveLevel(g.logLevel, cfg.Log.Level))
	return cfg, nil
}

// detectFlags are the per-run overrides of the detect command.
type detectFlags struct {
	workers          int
	debugDir         string
	outputName       string
	lightOnDark      bool
	maxStrokeLength  float64
	minCharHeight    int
	maxAngle         float64
	widthRatio       float64
	topBorder        int
	bottomBorder     int
	maxColorDistance float64
	language         string
	tessdata         string
}

func (f *detectFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.workers, "workers", "j", 0, "Images processed at once (0: one per CPU)")
	fs.StringVar(&f.debugDir, "debug-dir", "", "Write the intermediate renders of every image into this directory")
	fs.StringVarP(&f.outputName, "output", "o", config.DefaultOutputName, "CSV written into a processed directory")
	fs.BoolVar(&f.lightOnDark, "light-on-dark", false, "Look for light digits on a dark bib")
	fs.Float64Var(&f.maxStrokeLength, "max-stroke-length", 0, "Longest stroke width in pixels")
	fs.IntVar(&f.minCharHeight, "min-char-height", 0, "Shortest digit height in pixels")
	fs.Float64Var(&f.maxAngle, "max-angle", 0, "Largest tilt of a number line in degrees")
	fs.Float64Var(&f.widthRatio, "width-ratio", 0, "A line must be at least image width divided by this value wide")
	fs.IntVar(&f.topBorder, "top-border", 0, "Pixels at the top of the image to ignore")
	fs.IntVar(&f.bottomBorder, "bottom-border", 0, "Pixels at the bottom of the image to ignore")
	fs.Float64Var(&f.maxColorDistance, "max-color-distance", 0, "Largest color distance between neighbouring digits (0: off)")
	fs.StringVar(&f.language, "lang", "", "Tesseract language")
	fs.StringVar(&f.tessdata, "tessdata", "", "Directory holding the Tesseract language data")
}

// apply copies the flags set on the command line over cfg and revalidates it.
func (f *detectFlags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("workers", func() { cfg.Batch.Workers = f.workers })
	set("output", func() { cfg.Batch.OutputName = f.outputName })
	set("light-on-dark", func() { cfg.Detection.DarkOnLight = !f.lightOnDark })
	set("max-stroke-length", func() { cfg.Detection.MaxStrokeLength = f.maxStrokeLength })
	set("min-char-height", func() { cfg.Detection.MinCharacterHeight = f.minCharHeight })
	set("max-angle", func() { cfg.Detection.MaxAngle = f.maxAngle })
	set("width-ratio", func() { cfg.Detection.MaxImgWidthToTextRatio = f.widthRatio })
	set("top-border", func() { cfg.Detection.TopBorder = f.topBorder })
	set("bottom-border", func() { cfg.Detection.BottomBorder = f.bottomBorder })
	set("max-color-distance", func() { cfg.Detection.MaxColorDistance = f.maxColorDistance })
	set("lang", func() { cfg.OCR.Language = f.language })
	set("tessdata", func() { cfg.OCR.TessdataPrefix = f.tessdata })
	return cfg.Validate()
}

func newDetectCmd(g *globalOptions) *cobra.Command {
	flags := &detectFlags{}
	cmd := &cobra.Command{
		Use:   "detect <image|directory|truth.csv>",
		Short: "Read the bib numbers in an image, a directory or a ground-truth file",
		Long: `Read the bib numbers in a .jpg or .png image, in every image of a
directory, or in the images listed by a ';'-separated ground-truth file.

A directory run writes the numbers found into out.csv in that directory.
A ground-truth run compares the numbers read with the expected ones and
prints precision, recall and F-score.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd.Flags(), cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			runner := batch.NewRunner(
				batch.NewDetectorFactory(cfg.Detection, cfg.Edges, cfg.OCR),
				batch.Options{
					Workers:    cfg.Batch.Workers,
					OutputName: cfg.Batch.OutputName,
					DebugDir:   flags.debugDir,
				},
				cmd.OutOrStdout(),
			)
			return runner.Process(ctx, args[0])
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newServeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run an MCP (Model Context Protocol) server over stdin/stdout that exposes
bib detection and its debug renders as tools. Configure it in your MCP
client; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup()
			if err != nil {
				return err
			}

			var rec ocr.Recognizer
			tess, err := ocr.NewTesseract(cfg.OCR)
			switch {
			case errors.Is(err, ocr.ErrUnavailable):
				slog.Warn("serving without OCR", "error", err)
			case err != nil:
				return err
			default:
				defer tess.Close()
				rec = tess
			}

			slog.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)
			return server.New(cfg, rec).Run(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	var showPath bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				path := g.configPath
				if path == "" {
					path = config.DefaultPath()
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			cfg, err := g.setup()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&showPath, "path", false, "Print the config file location instead")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", appName, Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)

	tess, err := ocr.NewTesseract(ocr.DefaultOptions())
	if err != nil {
		fmt.Fprintf(w, "  Tesseract: unavailable (%v)\n", err)
		return
	}
	defer tess.Close()
	fmt.Fprintf(w, "  Tesseract: %s\n", tess.Version())
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Read race bib numbers from photos",
		Long: color.New(color.FgHiCyan).Sprintf(
			"Find and read race bib numbers in photos with the stroke width transform. %s",
			color.New(color.FgBlue).Sprintf("(%s)", Version),
		),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/bibnumber/config.toml)")
	pf.StringVar(&g.envFile, "env-file", "", "Load environment variables from this file (default .env)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(newDetectCmd(g), newServeCmd(g), newConfigCmd(g), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
