package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/period"
	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/internal/audiofile"
	"github.com/cwbudde/algo-stretch/internal/testutil"
)

// runCmd executes the root command with args and returns what it printed.
func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	resetFlags(rootCmd)

	var outBuf, errBuf bytes.Buffer
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}

	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeWAV(t *testing.T, name string, sampleRate, channels int, data []int16) string {
	t.Helper()

	b, err := buffer.FromSamples(sampleRate, channels, data)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, audiofile.WriteFile(path, b))

	return path
}

func readFrames(t *testing.T, path string) int {
	t.Helper()

	b, err := audiofile.ReadFile(path)
	require.NoError(t, err)

	return b.Frames()
}

func TestStretchTone(t *testing.T) {
	in := writeWAV(t, "tone.wav", 22050, 1, testutil.Sine16(220.5, 22050, 12000, 22050))
	out := filepath.Join(t.TempDir(), "out.wav")

	stdout, _, err := runCmd(t, "stretch", in, out, "--ratio", "1.5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "22050 Hz")

	assert.InDelta(t, 33075, readFrames(t, out), 800)
}

func TestRootDefaultsToStretch(t *testing.T) {
	in := writeWAV(t, "tone.wav", 22050, 2, testutil.Interleave(
		testutil.Sine16(220.5, 22050, 9000, 22050),
		testutil.Sine16(220.5, 22050, 9000, 22050),
	))
	out := filepath.Join(t.TempDir(), "out.wav")

	_, _, err := runCmd(t, in, out, "-r", "0.75", "--chunk-ms", "40")
	require.NoError(t, err)

	b, err := audiofile.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Channels)
	assert.InDelta(t, 16538, b.Frames(), 800)
}

func TestStretchGapRatio(t *testing.T) {
	in := writeWAV(t, "quiet.wav", 8000, 1, testutil.Silence(8000))
	out := filepath.Join(t.TempDir(), "out.wav")

	_, _, err := runCmd(t, "stretch", in, out, "--gap-ratio", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 4000, readFrames(t, out))
}

func TestStretchPresetThenFlags(t *testing.T) {
	in := writeWAV(t, "quiet.wav", 8000, 1, testutil.Silence(8000))
	preset := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(preset, []byte("gap_ratio: 0.5\nnoise: resample\n"), 0o644))

	out := filepath.Join(t.TempDir(), "preset.wav")
	_, _, err := runCmd(t, "stretch", in, out, "--preset", preset)
	require.NoError(t, err)
	assert.Equal(t, 4000, readFrames(t, out))

	out = filepath.Join(t.TempDir(), "override.wav")
	_, _, err = runCmd(t, "stretch", in, out, "--preset", preset, "--gap-ratio", "1.5")
	require.NoError(t, err)
	assert.Equal(t, 12000, readFrames(t, out))
}

func TestStretchErrors(t *testing.T) {
	in := writeWAV(t, "tone.wav", 22050, 1, testutil.Sine16(440, 22050, 8000, 4000))
	out := filepath.Join(t.TempDir(), "out.wav")

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"ratio out of range", []string{"stretch", in, out, "--ratio", "5"}, "invalid parameter"},
		{"gap ratio out of range", []string{"stretch", in, out, "--gap-ratio", "3"}, "invalid parameter"},
		{"flac output", []string{"stretch", in, filepath.Join(t.TempDir(), "out.flac")}, "unsupported format"},
		{"both detection modes", []string{"stretch", in, out, "--fast-detection", "--normal-detection"}, "mutually exclusive"},
		{"missing input", []string{"stretch", filepath.Join(t.TempDir(), "nope.wav"), out}, "open"},
		{"missing preset", []string{"stretch", in, out, "--preset", filepath.Join(t.TempDir(), "nope.yaml")}, "not found"},
		{"bad chunk", []string{"stretch", in, out, "--chunk-ms", "0"}, "chunk-ms"},
		{"bad log level", []string{"stretch", in, out, "--log-level", "loud"}, "unknown level"},
		{"one argument", []string{in}, "INPUT and OUTPUT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCmd(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRatioBeyondNormalRangeImpliesDoubleRange(t *testing.T) {
	in := writeWAV(t, "tone.wav", 22050, 1, testutil.Sine16(220.5, 22050, 12000, 22050))
	out := filepath.Join(t.TempDir(), "out.wav")

	_, _, err := runCmd(t, "stretch", in, out, "--ratio", "3")
	require.NoError(t, err)
	assert.InDelta(t, 66150, readFrames(t, out), 800)

	for _, tc := range []struct {
		args []string
		want bool
	}{
		{[]string{"--ratio", "0.3"}, true},
		{[]string{"--ratio", "2"}, false},
		{[]string{"--ratio", "0.5"}, false},
		{nil, false},
	} {
		resetFlags(rootCmd)
		require.NoError(t, stretchCmd.ParseFlags(tc.args))

		p, err := buildParameters(stretchCmd)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.ExtendedRange, "%v", tc.args)
	}
}

func TestBuildParameters(t *testing.T) {
	resetFlags(rootCmd)

	require.NoError(t, inspectCmd.ParseFlags([]string{
		"--ratio", "1.25", "--lower-freq", "70", "--upper-freq", "400",
		"--buffer-ms", "20", "--threshold-gap-db", "-50", "--double-range",
		"--fast-detection", "--noise-resample",
	}))

	p, err := buildParameters(inspectCmd)
	require.NoError(t, err)

	assert.InDelta(t, 1.25, p.Ratio, 1e-12)
	assert.InDelta(t, 70, p.LowerFreqHz, 1e-12)
	assert.InDelta(t, 400, p.UpperFreqHz, 1e-12)
	assert.InDelta(t, 20, p.BufferMs, 1e-12)
	assert.InDelta(t, -50, p.GapThresholdDB, 1e-12)
	assert.True(t, p.ExtendedRange)
	assert.Equal(t, period.ModeFast, p.Detection)
	assert.Equal(t, stretch.NoiseResample, p.Noise)
	assert.Zero(t, p.GapRatio)
}

func TestInspectReport(t *testing.T) {
	const sr = 22050

	tone := testutil.Harmonic16(220.5, sr, 12000, 3, sr)
	data := testutil.Concat(testutil.Silence(sr/2), tone)

	b, err := buffer.FromSamples(sr, 1, data)
	require.NoError(t, err)

	r, err := inspect(b, stretch.DefaultParameters())
	require.NoError(t, err)

	assert.Equal(t, len(data), r.Silence+r.Harmonic+r.Noise)
	assert.Greater(t, r.Silence, sr/4)
	assert.Greater(t, r.Harmonic, sr/2)
	assert.Equal(t, 100, r.MedianPeriod())
	assert.InDelta(t, 220.5, r.PeakHz, 2)
}

func TestInspectCommand(t *testing.T) {
	in := writeWAV(t, "tone.wav", 22050, 1, testutil.Sine16(220.5, 22050, 12000, 22050))

	stdout, _, err := runCmd(t, "inspect", in)
	require.NoError(t, err)

	assert.Contains(t, stdout, "wav, 22050 Hz, 1 ch, 1s")
	assert.Contains(t, stdout, "period:   100 frames (220.5 Hz)")
}

func TestMedianPeriod(t *testing.T) {
	assert.Zero(t, Report{}.MedianPeriod())
	assert.Equal(t, 5, Report{Periods: []int{9, 1, 5}}.MedianPeriod())
}
