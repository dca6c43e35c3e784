package buffer

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrChannels reports a channel count below one.
	ErrChannels = errors.New("buffer: channel count must be >= 1")
	// ErrSampleRate reports a non-positive sample rate.
	ErrSampleRate = errors.New("buffer: sample rate must be > 0")
	// ErrAlignment reports a sample count that is not a whole number of frames.
	ErrAlignment = errors.New("buffer: sample count is not a multiple of the channel count")
)

// SampleBuffer is a run of interleaved signed 16-bit PCM.
type SampleBuffer struct {
	SampleRate int
	Channels   int
	Data       []int16
}

// New returns a zero-filled SampleBuffer holding frames frames.
func New(sampleRate, channels, frames int) (*SampleBuffer, error) {
	if err := checkFormat(sampleRate, channels); err != nil {
		return nil, err
	}
	if frames < 0 {
		frames = 0
	}
	return &SampleBuffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Data:       make([]int16, frames*channels),
	}, nil
}

// FromSamples wraps data without copying.
// Mutations to data are visible through the buffer and vice versa.
func FromSamples(sampleRate, channels int, data []int16) (*SampleBuffer, error) {
	b := &SampleBuffer{SampleRate: sampleRate, Channels: channels, Data: data}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func checkFormat(sampleRate, channels int) error {
	if channels < 1 {
		return fmt.Errorf("%w: %d", ErrChannels, channels)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrSampleRate, sampleRate)
	}
	return nil
}

// Validate checks the format fields and the frame alignment of Data.
func (b *SampleBuffer) Validate() error {
	if err := checkFormat(b.SampleRate, b.Channels); err != nil {
		return err
	}
	if len(b.Data)%b.Channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrAlignment, len(b.Data), b.Channels)
	}
	return nil
}

// Len returns the number of samples across all channels.
func (b *SampleBuffer) Len() int {
	return len(b.Data)
}

// Frames returns the number of whole frames.
func (b *SampleBuffer) Frames() int {
	if b.Channels < 1 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Duration returns the playback time of the buffer.
func (b *SampleBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Resize sets the length to frames frames, reusing existing capacity when
// possible. Newly exposed samples are zeroed.
func (b *SampleBuffer) Resize(frames int) {
	if frames < 0 {
		frames = 0
	}
	n := frames * b.Channels
	oldLen := len(b.Data)
	if n <= cap(b.Data) {
		b.Data = b.Data[:n]
	} else {
		s := make([]int16, n)
		copy(s, b.Data)
		b.Data = s
	}
	for i := oldLen; i < n; i++ {
		b.Data[i] = 0
	}
}

// Reset truncates the buffer to zero frames and keeps the capacity.
func (b *SampleBuffer) Reset() {
	b.Data = b.Data[:0]
}

// Append copies samples to the end of the buffer.
func (b *SampleBuffer) Append(samples []int16) error {
	if b.Channels < 1 {
		return fmt.Errorf("%w: %d", ErrChannels, b.Channels)
	}
	if len(samples)%b.Channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrAlignment, len(samples), b.Channels)
	}
	b.Data = append(b.Data, samples...)
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *SampleBuffer) Clone() *SampleBuffer {
	s := make([]int16, len(b.Data))
	copy(s, b.Data)
	return &SampleBuffer{SampleRate: b.SampleRate, Channels: b.Channels, Data: s}
}

// Channel returns a de-interleaved copy of channel c.
// It returns nil when c is out of range.
func (b *SampleBuffer) Channel(c int) []int16 {
	if c < 0 || c >= b.Channels {
		return nil
	}
	out := make([]int16, b.Frames())
	for i := range out {
		out[i] = b.Data[i*b.Channels+c]
	}
	return out
}
