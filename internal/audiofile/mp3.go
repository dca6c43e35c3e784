package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// mp3Source decodes MP3. The decoder always produces 16-bit stereo.
type mp3Source struct {
	r       io.Reader
	decoder *mp3.Decoder
	raw     []byte
	pending []byte
}

const mp3Channels = 2

func newMP3Source(r io.Reader) (*mp3Source, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}

	return &mp3Source{r: r, decoder: decoder}, nil
}

func (s *mp3Source) Read(dst []int16) (int, error) {
	frames := len(dst) / mp3Channels
	if frames == 0 {
		return 0, nil
	}

	need := frames * mp3Channels * 2
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}

	raw := s.raw[:copy(s.raw[:need], s.pending)]
	s.pending = s.pending[:0]

	var readErr error
	for len(raw) < need && readErr == nil {
		var n int
		n, readErr = s.decoder.Read(s.raw[len(raw):need])
		raw = s.raw[:len(raw)+n]
	}

	// Keep a trailing partial frame for the next call.
	whole := len(raw) / (mp3Channels * 2) * (mp3Channels * 2)
	s.pending = append(s.pending, raw[whole:]...)
	raw = raw[:whole]

	n := len(raw) / 2
	for i := range n {
		dst[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}

	switch {
	case errors.Is(readErr, io.EOF):
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	case readErr != nil:
		return n, fmt.Errorf("mp3 read: %w", readErr)
	default:
		return n, nil
	}
}

func (s *mp3Source) SampleRate() int { return s.decoder.SampleRate() }
func (s *mp3Source) Channels() int   { return mp3Channels }
func (s *mp3Source) Format() Format  { return FormatMP3 }
func (s *mp3Source) Close() error    { return closeIfCloser(s.r) }
