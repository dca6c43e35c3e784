package audiofile

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/core"
)

// wavSource decodes PCM on demand, one Read at a time.
type wavSource struct {
	r          io.ReadSeeker
	dec        *wav.Decoder
	buf        *audio.IntBuffer
	pending    []int
	remaining  int // samples left in the data chunk
	sampleRate int
	channels   int
	bitDepth   int
}

func newWAVSource(r io.ReadSeeker) (*wavSource, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid wav file", ErrUnsupported)
	}

	if d.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: wav audio format %d, want PCM", ErrUnsupported, d.WavAudioFormat)
	}

	bitDepth := int(d.BitDepth)
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%w: %d-bit wav", ErrUnsupported, bitDepth)
	}

	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav pcm: %w", err)
	}

	if d.PCMChunk == nil {
		return nil, fmt.Errorf("%w: wav has no data chunk", ErrUnsupported)
	}

	return &wavSource{
		r:          r,
		dec:        d,
		buf:        &audio.IntBuffer{},
		sampleRate: int(d.SampleRate),
		channels:   int(d.NumChans),
		bitDepth:   bitDepth,
		remaining:  d.PCMSize / ((bitDepth-1)/8 + 1),
	}, nil
}

// Read decodes at most len(dst) samples. Decoding stops at the end of the data
// chunk, and a trailing partial frame there is dropped.
func (s *wavSource) Read(dst []int16) (int, error) {
	want := len(dst) / s.channels * s.channels

	for len(s.pending) < want && s.remaining > 0 {
		s.buf.Data = core.EnsureLen(s.buf.Data, min(want-len(s.pending), s.remaining))

		n, err := s.dec.PCMBuffer(s.buf)
		if err != nil {
			return 0, fmt.Errorf("wav pcm: %w", err)
		}

		if n == 0 {
			s.remaining = 0
			break
		}

		s.remaining -= n
		s.pending = append(s.pending, s.buf.Data[:n]...)
	}

	n := min(want, len(s.pending)/s.channels*s.channels)
	if n == 0 {
		if s.remaining == 0 {
			return 0, io.EOF
		}
		return 0, nil
	}

	for i, v := range s.pending[:n] {
		if s.bitDepth == 8 {
			// 8-bit wav is unsigned.
			v -= 128
		}
		dst[i] = scaleTo16(int32(v), s.bitDepth)
	}

	s.pending = s.pending[:copy(s.pending, s.pending[n:])]

	return n, nil
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Format() Format  { return FormatWAV }
func (s *wavSource) Close() error    { return closeIfCloser(s.r) }

// WAVWriter writes interleaved 16-bit PCM to a WAV file.
type WAVWriter struct {
	f        *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	channels int
	frames   int64
}

// Create creates (or truncates) a 16-bit PCM WAV file. The path must carry a
// .wav or .wave extension.
func Create(path string, sampleRate, channels int) (*WAVWriter, error) {
	if DetectFormat(path, nil) != FormatWAV {
		return nil, fmt.Errorf("%w: cannot write %s, output must be .wav", ErrUnsupported, path)
	}

	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("audiofile: invalid wav format %d Hz, %d channels", sampleRate, channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: create %s: %w", path, err)
	}

	return &WAVWriter{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, 16, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
		channels: channels,
	}, nil
}

// Write appends whole interleaved frames.
func (w *WAVWriter) Write(samples []int16) error {
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("audiofile: %d samples are not whole %d-channel frames", len(samples), w.channels)
	}

	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, v := range samples {
		w.buf.Data[i] = int(v)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("audiofile: write wav: %w", err)
	}

	w.frames += int64(len(samples) / w.channels)

	return nil
}

// Frames returns the number of frames written so far.
func (w *WAVWriter) Frames() int64 { return w.frames }

// Close finalizes the header and closes the file.
func (w *WAVWriter) Close() error {
	encErr := w.enc.Close()
	fileErr := w.f.Close()

	if encErr != nil {
		return fmt.Errorf("audiofile: finalize wav: %w", encErr)
	}

	if fileErr != nil {
		return fmt.Errorf("audiofile: close wav: %w", fileErr)
	}

	return nil
}

// WriteFile writes a whole buffer as a 16-bit WAV file.
func WriteFile(path string, b *buffer.SampleBuffer) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("audiofile: %w", err)
	}

	w, err := Create(path, b.SampleRate, b.Channels)
	if err != nil {
		return err
	}

	if err := w.Write(b.Data); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}
