package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/internal/audiofile"
	intlog "github.com/cwbudde/algo-stretch/internal/logging"
)

const defaultChunkMs = 250

var chunkMs float64

var chunkPool = buffer.NewPool()

var cliLogger = intlog.NewLogger("audiostretchy")

var stretchCmd = &cobra.Command{
	Use:   "stretch INPUT OUTPUT",
	Short: "Stretch INPUT and write the result to OUTPUT as 16-bit WAV",
	Long: `Stretch INPUT and write the result to OUTPUT as 16-bit WAV.

The file is decoded and processed in chunks of --chunk-ms, so memory use does
not grow with the input length.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStretch(cmd, args[0], args[1])
	},
}

func init() {
	stretchCmd.Flags().Float64Var(&chunkMs, "chunk-ms", defaultChunkMs, "read size while streaming, ms")
	rootCmd.AddCommand(stretchCmd)
}

func runStretch(cmd *cobra.Command, input, output string) (err error) {
	params, err := buildParameters(cmd)
	if err != nil {
		return err
	}

	if chunkMs <= 0 {
		return fmt.Errorf("--chunk-ms must be > 0: %g", chunkMs)
	}

	src, err := audiofile.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	sr, ch := src.SampleRate(), src.Channels()

	st, err := stretch.New(sr, ch, params, stretch.WithLogger(cliLogger))
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := audiofile.Create(output, sr, ch)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()

	chunk := chunkPool.Get(sr, ch, max(core.MillisToFrames(chunkMs, sr), 1))
	defer chunkPool.Put(chunk)

	for {
		n, readErr := src.Read(chunk.Data)
		if n > 0 {
			out, err := st.Feed(chunk.Data[:n])
			if err != nil {
				return err
			}
			if err := w.Write(out); err != nil {
				return err
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", input, readErr)
		}
	}

	tail, err := st.Finish()
	if err != nil {
		return err
	}
	if err := w.Write(tail); err != nil {
		return err
	}

	stats := st.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d Hz, %d ch, %d -> %d frames (ratio %.3f)\n",
		output, src.Format(), sr, ch, stats.InputFrames, stats.OutputFrames,
		float64(stats.OutputFrames)/float64(max(stats.InputFrames, 1)))

	return nil
}
