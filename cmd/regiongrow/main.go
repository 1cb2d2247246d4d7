// Package main segments the top-left window of an image by greedy region
// merging and writes the segment outlines over an enlarged copy of it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/setanarut/regiongrow"
	"github.com/setanarut/regiongrow/utils"
)

const (
	// Flags.
	flagInput        = "input"
	flagOutput       = "output"
	flagHalfSize     = "n"
	flagThreshold    = "threshold"
	flagMode         = "mode"
	flagConnectivity = "connectivity"
	flagBands        = "bands"
	flagMaxRounds    = "max-rounds"
	flagTimeout      = "timeout"
	flagOutline      = "outline"
	flagScale        = "scale"
	flagPalette      = "palette"
	flagLabels       = "labels"
	flagMean         = "mean"
	flagConfig       = "config"
	flagDebug        = "debug"

	defaultOutline = "#0000ff"
	swatchSize     = 64
)

func main() {
	if err := realMain(os.Args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// realMain runs the command with explicit args and output so it can be
// driven from tests.
func realMain(args []string, out io.Writer) error {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:      "regiongrow",
		Usage:     "segment an image by greedy region merging",
		UsageText: "regiongrow --input FILE [options]",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagInput,
				Aliases: []string{"i"},
				Usage:   "image to segment (png, jpeg, gif, tiff or bmp)",
			},
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "outline image path (default <input>-segmented.png)",
			},
			&cli.IntFlag{
				Name:  flagHalfSize,
				Value: regiongrow.DefaultOptions().HalfSize,
				Usage: "segment the top-left 2N x 2N window",
			},
			&cli.Float64Flag{
				Name:    flagThreshold,
				Aliases: []string{"t"},
				Value:   regiongrow.DefaultOptions().Threshold,
				Usage:   "largest merge cost that is still committed",
			},
			&cli.StringFlag{
				Name:  flagMode,
				Value: regiongrow.ModeCached.String(),
				Usage: "cost evaluation: cached or literal",
			},
			&cli.StringFlag{
				Name:  flagConnectivity,
				Value: regiongrow.FourConnected.String(),
				Usage: "pixel adjacency: 4 or 8",
			},
			&cli.StringFlag{
				Name:  flagBands,
				Value: utils.BandsRGB.String(),
				Usage: "colour bands: rgb, gray or lab",
			},
			&cli.IntFlag{
				Name:  flagMaxRounds,
				Usage: "stop after this many merges (0 = no limit)",
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Usage: "stop growing after this long (0 = no limit)",
			},
			&cli.StringFlag{
				Name:  flagOutline,
				Value: defaultOutline,
				Usage: "outline colour as hex, or auto to contrast with the image",
			},
			&cli.IntFlag{
				Name:  flagScale,
				Value: 8,
				Usage: "enlargement factor of the outline image",
			},
			&cli.IntFlag{
				Name:  flagPalette,
				Usage: "also write a palette of `K` segment colours (0 = off)",
			},
			&cli.StringFlag{
				Name:  flagLabels,
				Usage: "also write the label map to `FILE`",
			},
			&cli.StringFlag{
				Name:  flagMean,
				Usage: "also write the mean colour image to `FILE`",
			},
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load settings from a JSON5 `FILE`; flags take precedence",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "log every merge",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = newLogger(c.Bool(flagDebug))
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				//nolint:errcheck
				logger.Sync()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			s, err := resolveSettings(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()
			return run(ctx, s, logger, c.App.Writer)
		},
	}
	return app.Run(args)
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return l.Sugar().Named("regiongrow"), nil
}

// fileConfig is the JSON5 config file. Absent fields keep the flag value.
type fileConfig struct {
	Input        string   `json:"input"`
	Output       string   `json:"output"`
	HalfSize     *int     `json:"n"`
	Threshold    *float64 `json:"threshold"`
	Mode         string   `json:"mode"`
	Connectivity *int     `json:"connectivity"`
	Bands        string   `json:"bands"`
	MaxRounds    *int     `json:"max_rounds"`
	Timeout      string   `json:"timeout"`
	Outline      string   `json:"outline"`
	Scale        *int     `json:"scale"`
	Palette      *int     `json:"palette"`
	Labels       string   `json:"labels"`
	Mean         string   `json:"mean"`
}

func readConfigFile(path string) (*fileConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	var cfg fileConfig
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	return &cfg, nil
}

type settings struct {
	input, output string
	opts          regiongrow.Options
	bands         utils.BandMode
	// outline is unset when autoOutline picks a colour from the image.
	outline      colorful.Color
	autoOutline  bool
	scale        int
	palette      int
	labels, mean string
}

func resolveSettings(c *cli.Context) (*settings, error) {
	cfg := &fileConfig{}
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = readConfigFile(path); err != nil {
			return nil, err
		}
	}

	s := &settings{
		input:   stringSetting(c, flagInput, cfg.Input),
		output:  stringSetting(c, flagOutput, cfg.Output),
		scale:   intSetting(c, flagScale, cfg.Scale),
		palette: intSetting(c, flagPalette, cfg.Palette),
		labels:  stringSetting(c, flagLabels, cfg.Labels),
		mean:    stringSetting(c, flagMean, cfg.Mean),
	}
	if s.input == "" {
		return nil, errors.New("an input image is required (--input)")
	}
	if s.output == "" {
		s.output = strings.TrimSuffix(s.input, filepath.Ext(s.input)) + "-segmented.png"
	}

	var (
		explicit bool
		err      error
	)
	if s.outline, explicit, err = utils.ParseOutline(stringSetting(c, flagOutline, cfg.Outline)); err != nil {
		return nil, err
	}
	s.autoOutline = !explicit

	opts := regiongrow.DefaultOptions()
	opts.HalfSize = intSetting(c, flagHalfSize, cfg.HalfSize)
	opts.Threshold = c.Float64(flagThreshold)
	if !c.IsSet(flagThreshold) && cfg.Threshold != nil {
		opts.Threshold = *cfg.Threshold
	}
	opts.MaxRounds = intSetting(c, flagMaxRounds, cfg.MaxRounds)

	if opts.Mode, err = regiongrow.ParseMode(stringSetting(c, flagMode, cfg.Mode)); err != nil {
		return nil, err
	}
	conn := c.String(flagConnectivity)
	if !c.IsSet(flagConnectivity) && cfg.Connectivity != nil {
		conn = strconv.Itoa(*cfg.Connectivity)
	}
	if opts.Connectivity, err = regiongrow.ParseConnectivity(conn); err != nil {
		return nil, err
	}
	if s.bands, err = utils.ParseBandMode(stringSetting(c, flagBands, cfg.Bands)); err != nil {
		return nil, err
	}
	opts.Timeout = c.Duration(flagTimeout)
	if !c.IsSet(flagTimeout) && cfg.Timeout != "" {
		if opts.Timeout, err = time.ParseDuration(cfg.Timeout); err != nil {
			return nil, errors.Wrapf(err, "parsing timeout %q", cfg.Timeout)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s.opts = opts
	return s, nil
}

func stringSetting(c *cli.Context, name, fromFile string) string {
	if !c.IsSet(name) && fromFile != "" {
		return fromFile
	}
	return c.String(name)
}

func intSetting(c *cli.Context, name string, fromFile *int) int {
	if !c.IsSet(name) && fromFile != nil {
		return *fromFile
	}
	return c.Int(name)
}

func run(ctx context.Context, s *settings, logger *zap.SugaredLogger, out io.Writer) error {
	img, err := utils.ReadImage(s.input)
	if err != nil {
		return err
	}
	raster := utils.NewImageRaster(img, s.bands)

	s.opts.Logger = logger
	g, err := regiongrow.NewGrower(raster, s.opts)
	if err != nil {
		return err
	}
	logger.Infow("segmenting",
		"input", s.input,
		"window", fmt.Sprintf("%dx%d", g.Window().Width, g.Window().Height),
		"threshold", s.opts.Threshold,
		"mode", s.opts.Mode,
		"bands", s.bands)

	res, err := g.Grow(ctx)
	if err != nil {
		return err
	}
	w := g.Window()

	outline := s.outline
	if s.autoOutline {
		outline = utils.OutlineColour(img, w)
		logger.Debugw("picked outline colour", "hex", outline.Hex())
	}
	if err := utils.SaveImage(utils.OverlaySegmentation(img, res.Segmentation, w, outline, s.scale), s.output); err != nil {
		return err
	}
	written := []string{s.output}

	if s.labels != "" {
		if err := utils.SaveImage(utils.LabelImage(res.Segmentation, w), s.labels); err != nil {
			return err
		}
		written = append(written, s.labels)
	}
	if s.mean != "" {
		if err := utils.SaveImage(utils.Reconstruct(raster, res.Segmentation, w), s.mean); err != nil {
			return err
		}
		written = append(written, s.mean)
	}
	if s.palette > 0 {
		palette := utils.SegmentPalette(raster, res.Segmentation, w, s.palette, utils.PaletteMethodKMeans)
		utils.SortPaletteByBrightness(palette)
		path := strings.TrimSuffix(s.output, filepath.Ext(s.output)) + "-palette.png"
		if err := utils.SavePalette(palette, swatchSize, path); err != nil {
			return err
		}
		written = append(written, path)
	}

	report, err := utils.Summarize(res.Segmentation)
	if err != nil {
		return err
	}
	printSummary(out, res, report, written)
	return nil
}

func printSummary(out io.Writer, res *regiongrow.Result, report utils.Report, written []string) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Width(10)
	durationStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("202"))

	row := func(k, v string) {
		fmt.Fprintln(out, key.Render(k)+" "+v)
	}
	fmt.Fprintln(out, title.Render("regiongrow"))
	row("segments", strconv.Itoa(report.Segments))
	row("pixels", strconv.Itoa(report.Pixels))
	row("merges", strconv.Itoa(len(res.Merges)))
	row("sizes", fmt.Sprintf("min %.0f  median %.1f  p90 %.0f  max %.0f", report.MinSize, report.MedianSize, report.P90Size, report.MaxSize))
	row("stopped", res.Stop.String())
	row("elapsed", durationStyle.Render(res.Elapsed.Round(time.Microsecond).String()))
	for _, path := range written {
		row("wrote", path)
	}
}
