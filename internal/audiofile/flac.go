package audiofile

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

type flacSource struct {
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int

	// pending holds decoded samples of the current frame not yet returned.
	pending []int16
}

func newFLACSource(r io.Reader) (*flacSource, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("flac stream: %w", err)
	}

	info := stream.Info
	bitDepth := int(info.BitsPerSample)
	if bitDepth < 4 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d-bit flac", ErrUnsupported, bitDepth)
	}

	return &flacSource{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   bitDepth,
	}, nil
}

func (s *flacSource) Read(dst []int16) (int, error) {
	want := len(dst) / s.channels * s.channels
	n := 0

	for n < want {
		if len(s.pending) == 0 {
			if err := s.decodeFrame(); err != nil {
				if errors.Is(err, io.EOF) && n > 0 {
					return n, nil
				}
				return n, err
			}
			continue
		}

		c := copy(dst[n:want], s.pending)
		s.pending = s.pending[c:]
		n += c
	}

	return n, nil
}

func (s *flacSource) decodeFrame() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("flac frame: %w", err)
	}

	block := int(frame.BlockSize)
	s.pending = s.pending[:0]

	for i := range block {
		for ch := range s.channels {
			s.pending = append(s.pending, scaleTo16(frame.Subframes[ch].Samples[i], s.bitDepth))
		}
	}

	return nil
}

func (s *flacSource) SampleRate() int { return s.sampleRate }
func (s *flacSource) Channels() int   { return s.channels }
func (s *flacSource) Format() Format  { return FormatFLAC }

// Close closes the stream, which closes r when it is an io.Closer.
func (s *flacSource) Close() error { return s.stream.Close() }
