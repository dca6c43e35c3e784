package commands

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/period"
	"github.com/cwbudde/algo-stretch/dsp/segment"
	"github.com/cwbudde/algo-stretch/dsp/spectrum"
	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/internal/audiofile"
	"github.com/cwbudde/algo-stretch/stats/level"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect INPUT",
	Short: "Report how the engine classifies INPUT",
	Long: `Report how the engine classifies INPUT.

The file is split into analysis windows exactly as the stretch command would
split it. For every window the silent, harmonic and noisy passages are
counted, and the detected pitch periods are summarised.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// Report summarises the classification of one file.
type Report struct {
	Format     audiofile.Format
	SampleRate int
	Channels   int
	Frames     int
	Level      level.Level
	Silence    int
	Harmonic   int
	Noise      int
	Periods    []int
	PeakHz     float64
}

// MedianPeriod returns the median detected period in frames, or 0.
func (r Report) MedianPeriod() int {
	if len(r.Periods) == 0 {
		return 0
	}

	sorted := slices.Clone(r.Periods)
	slices.Sort(sorted)

	return sorted[len(sorted)/2]
}

func runInspect(cmd *cobra.Command, input string) error {
	params, err := buildParameters(cmd)
	if err != nil {
		return err
	}

	src, err := audiofile.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	b, err := audiofile.ReadAll(src)
	if err != nil {
		return err
	}

	r, err := inspect(b, params)
	if err != nil {
		return err
	}
	r.Format = src.Format()

	writeReport(cmd.OutOrStdout(), input, r)

	return nil
}

func inspect(b *buffer.SampleBuffer, params stretch.Parameters) (Report, error) {
	st, err := stretch.New(b.SampleRate, b.Channels, params)
	if err != nil {
		return Report{}, err
	}
	defer st.Close()

	det, err := period.New(b.SampleRate, params.LowerFreqHz, params.UpperFreqHz, params.Detection)
	if err != nil {
		return Report{}, err
	}

	cls, err := segment.New(det, max(core.MillisToFrames(params.BufferMs, b.SampleRate), 1), params.GapThresholdDB)
	if err != nil {
		return Report{}, err
	}

	frames := b.Frames()
	mono := make([]float64, frames)
	core.MixToMono(mono, b.Data, b.Channels)

	meter := level.NewMeter()
	meter.Update(b.Data)

	r := Report{
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
		Frames:     frames,
		Level:      meter.Result(),
	}

	win := st.WindowFrames()

	var segs []segment.Segment
	for start := 0; start < frames; start += win {
		end := min(start+win, frames)

		segs = cls.Classify(segs[:0], mono[start:end])
		for _, s := range segs {
			switch s.Kind {
			case segment.KindSilence:
				r.Silence += s.Length
			case segment.KindHarmonic:
				r.Harmonic += s.Length
				r.Periods = append(r.Periods, s.Period.Length)
			default:
				r.Noise += s.Length
			}
		}
	}

	if hz, err := spectrum.PeakFrequency(mono, float64(b.SampleRate)); err == nil {
		r.PeakHz = hz
	}

	return r, nil
}

func writeReport(w io.Writer, name string, r Report) {
	sr := r.SampleRate
	fmt.Fprintf(w, "%s: %s, %d Hz, %d ch, %v\n", name, r.Format, sr, r.Channels, framesToDuration(r.Frames, sr))
	fmt.Fprintf(w, "  level:    rms %.1f dBFS, peak %.1f dBFS\n", r.Level.RMS_dBFS, r.Level.Peak_dBFS)
	fmt.Fprintf(w, "  silence:  %v\n", framesToDuration(r.Silence, sr))
	fmt.Fprintf(w, "  harmonic: %v\n", framesToDuration(r.Harmonic, sr))
	fmt.Fprintf(w, "  noise:    %v\n", framesToDuration(r.Noise, sr))

	if p := r.MedianPeriod(); p > 0 {
		fmt.Fprintf(w, "  period:   %d frames (%.1f Hz), %d segments\n", p, float64(sr)/float64(p), len(r.Periods))
	} else {
		fmt.Fprintln(w, "  period:   none")
	}

	if r.PeakHz > 0 {
		fmt.Fprintf(w, "  peak:     %.1f Hz\n", r.PeakHz)
	}
}

func framesToDuration(frames, sampleRate int) time.Duration {
	return (time.Duration(frames) * time.Second / time.Duration(sampleRate)).Round(time.Millisecond)
}
