package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-stretch/dsp/period"
	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/internal/config"
	intlog "github.com/cwbudde/algo-stretch/internal/logging"
)

var (
	// Global flags
	ratio           float64
	gapRatio        float64
	upperFreq       float64
	lowerFreq       float64
	bufferMs        float64
	thresholdGapDB  float64
	doubleRange     bool
	fastDetection   bool
	normalDetection bool
	noiseResample   bool
	presetFile      string
	logLevel        string
)

var errDetectionFlags = errors.New("--fast-detection and --normal-detection are mutually exclusive")

var rootCmd = &cobra.Command{
	Use:   "audiostretchy [flags] INPUT OUTPUT",
	Short: "Change audio duration without changing pitch",
	Long: `audiostretchy - time-stretch speech and music with TDHS.

Pitch periods are inserted into or removed from harmonic passages, noisy
passages are stretched in short blocks and pauses are lengthened or
shortened on their own ratio.

Input may be WAV, MP3 or FLAC. Output is always 16-bit WAV at the input
sample rate.

Examples:
  # Slow speech down by a half
  audiostretchy talk.wav slow.wav --ratio 1.5

  # Keep the speech rate, halve the pauses
  audiostretchy stretch talk.mp3 tight.wav --gap-ratio 0.5

  # Start from a preset and override one value
  audiostretchy stretch in.flac out.wav --preset podcast.yaml --ratio 0.9

  # Show what the detector sees
  audiostretchy inspect talk.wav`,
	Args:              cobra.MaximumNArgs(2),
	PersistentPreRunE: setupLogging,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if len(args) != 2 {
			return fmt.Errorf("expected INPUT and OUTPUT, got %d argument(s)", len(args))
		}
		return runStretch(cmd, args[0], args[1])
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaults := stretch.DefaultParameters()

	pf := rootCmd.PersistentFlags()
	pf.Float64VarP(&ratio, "ratio", "r", defaults.Ratio, "output duration divided by input duration")
	pf.Float64VarP(&gapRatio, "gap-ratio", "g", 0, "ratio for silent passages (0 = same as --ratio)")
	pf.Float64VarP(&upperFreq, "upper-freq", "u", defaults.UpperFreqHz, "highest fundamental searched, Hz")
	pf.Float64VarP(&lowerFreq, "lower-freq", "l", defaults.LowerFreqHz, "lowest fundamental searched, Hz")
	pf.Float64VarP(&bufferMs, "buffer-ms", "b", defaults.BufferMs, "classification block length, ms")
	pf.Float64VarP(&thresholdGapDB, "threshold-gap-db", "t", defaults.GapThresholdDB, "RMS level below which a block is silence, dBFS")
	pf.BoolVarP(&doubleRange, "double-range", "d", false, "allow ratios from 0.25 to 4 (implied by a ratio outside 0.5 to 2)")
	pf.BoolVar(&fastDetection, "fast-detection", false, "coarse-to-fine period search")
	pf.BoolVar(&normalDetection, "normal-detection", false, "exhaustive period search")
	pf.BoolVar(&noiseResample, "noise-resample", false, "resample noisy passages instead of splicing blocks")
	pf.StringVarP(&presetFile, "preset", "p", "", "YAML preset applied before the flags")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (disabled, error, warn, info, debug, trace)")

	rootCmd.Flags().Float64Var(&chunkMs, "chunk-ms", defaultChunkMs, "read size while streaming, ms")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level, err := intlog.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	intlog.SetOutput(cmd.ErrOrStderr())
	intlog.SetLevel(level)

	return nil
}

// buildParameters starts from the defaults, applies the preset file if one
// was given and then every flag set on the command line.
func buildParameters(cmd *cobra.Command) (stretch.Parameters, error) {
	params := stretch.DefaultParameters()

	if presetFile != "" {
		preset, err := config.Load(presetFile)
		if err != nil {
			return params, err
		}
		if err := preset.Apply(&params); err != nil {
			return params, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("ratio") {
		params.Ratio = ratio
	}
	if flags.Changed("gap-ratio") {
		params.GapRatio = gapRatio
	}
	if flags.Changed("upper-freq") {
		params.UpperFreqHz = upperFreq
	}
	if flags.Changed("lower-freq") {
		params.LowerFreqHz = lowerFreq
	}
	if flags.Changed("buffer-ms") {
		params.BufferMs = bufferMs
	}
	if flags.Changed("threshold-gap-db") {
		params.GapThresholdDB = thresholdGapDB
	}
	if flags.Changed("double-range") {
		params.ExtendedRange = doubleRange
	}

	// Ratios beyond the normal range switch to the extended one, as the
	// double-range flag would.
	if r := params.EffectiveRatio(); r < stretch.MinRatio || r > stretch.MaxRatio {
		params.ExtendedRange = true
	}

	switch {
	case fastDetection && normalDetection:
		return params, errDetectionFlags
	case fastDetection:
		params.Detection = period.ModeFast
	case normalDetection:
		params.Detection = period.ModeNormal
	}

	if flags.Changed("noise-resample") {
		if noiseResample {
			params.Noise = stretch.NoiseResample
		} else {
			params.Noise = stretch.NoiseBlocks
		}
	}

	return params, nil
}
