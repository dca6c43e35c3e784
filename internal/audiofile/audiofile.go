// Package audiofile reads WAV, MP3 and FLAC files as interleaved 16-bit PCM
// and writes 16-bit WAV files.
package audiofile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
)

// ErrUnsupported reports a file whose container or sample format cannot be
// decoded.
var ErrUnsupported = errors.New("audiofile: unsupported format")

// Format identifies a container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatMP3
	FormatFLAC
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// Source yields interleaved 16-bit PCM frames.
type Source interface {
	// Read fills dst with whole frames and returns the number of samples
	// written. It returns io.EOF once the stream is exhausted.
	Read(dst []int16) (int, error)
	SampleRate() int
	Channels() int
	Format() Format
	Close() error
}

// DetectFormat guesses the container from the first bytes of a file, falling
// back to the file extension.
func DetectFormat(name string, head []byte) Format {
	switch {
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return FormatWAV
	case len(head) >= 4 && bytes.Equal(head[:4], []byte("fLaC")):
		return FormatFLAC
	case len(head) >= 3 && bytes.Equal(head[:3], []byte("ID3")):
		return FormatMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return FormatMP3
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	default:
		return FormatUnknown
	}
}

// Open opens an audio file for decoding.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open %s: %w", path, err)
	}

	head := make([]byte, 12)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("audiofile: read %s: %w", path, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("audiofile: seek %s: %w", path, err)
	}

	src, err := Decode(f, DetectFormat(path, head[:n]))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audiofile: decode %s: %w", path, err)
	}

	return src, nil
}

// Decode wraps r in a decoder for format. Closing the Source closes r when
// it implements io.Closer.
func Decode(r io.ReadSeeker, format Format) (Source, error) {
	switch format {
	case FormatWAV:
		return newWAVSource(r)
	case FormatMP3:
		return newMP3Source(r)
	case FormatFLAC:
		return newFLACSource(r)
	default:
		return nil, ErrUnsupported
	}
}

// ReadAll decodes the rest of src into one buffer.
func ReadAll(src Source) (*buffer.SampleBuffer, error) {
	out, err := buffer.New(src.SampleRate(), src.Channels(), 0)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %w", err)
	}

	chunk := make([]int16, 4096*src.Channels())
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if appendErr := out.Append(chunk[:n]); appendErr != nil {
				return nil, fmt.Errorf("audiofile: %w", appendErr)
			}
		}

		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return nil, fmt.Errorf("audiofile: read %v: %w", src.Format(), err)
		}
	}
}

// ReadFile decodes a whole audio file.
func ReadFile(path string) (*buffer.SampleBuffer, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return ReadAll(src)
}

func closeIfCloser(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// scaleTo16 converts a signed sample of the given bit depth to 16 bits.
func scaleTo16(v int32, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(v)
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	default:
		return int16(v << (16 - bitDepth))
	}
}
