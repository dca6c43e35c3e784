package stretch

import (
	"fmt"
	"math"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/period"
	"github.com/cwbudde/algo-stretch/dsp/segment"
	"github.com/cwbudde/algo-stretch/dsp/window"
	intlog "github.com/cwbudde/algo-stretch/internal/logging"
)

var defaultLogger = intlog.NewLogger("stretch")

type state int

const (
	stateOpen state = iota
	stateFlushed
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateFlushed:
		return "flushed"
	default:
		return "closed"
	}
}

// Stats reports progress counters of a Stream.
type Stats struct {
	InputFrames  int64
	OutputFrames int64
	// TargetFrames is the accumulated fractional output length.
	TargetFrames float64
	Windows      int
	Silence      int
	Harmonic     int
	Noise        int
	Insertions   int
	Deletions    int
}

// Stream stretches one continuous signal delivered in chunks.
type Stream struct {
	sampleRate int
	channels   int
	params     Parameters
	ratio      float64
	gapRatio   float64
	log        logging.LeveledLogger

	detector    *period.Detector
	classifier  *segment.Classifier
	window      int
	blockFrames int
	noiseBlock  int

	state    state
	carry    []int16
	target   float64
	produced int64
	stats    Stats

	mono     []float64
	segs     []segment.Segment
	edits    []edit
	fades    map[fadeKey]*window.Crossfader
	fadeFrom []float64
	fadeTo   []float64
	fadeMix  []float64
	resIn    []float64
	resOut   []float64
}

// New creates a stream for interleaved audio with the given format.
func New(sampleRate, channels int, p Parameters, opts ...Option) (*Stream, error) {
	if channels < 1 {
		return nil, fmt.Errorf("stretch: %w: channels must be >= 1, got %d", ErrInvalidParameter, channels)
	}

	if err := p.Validate(sampleRate); err != nil {
		return nil, err
	}

	cfg := config{logger: defaultLogger}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	det, err := period.New(sampleRate, p.LowerFreqHz, p.UpperFreqHz, p.Detection)
	if err != nil {
		return nil, fmt.Errorf("stretch: %w: %w", ErrInvalidParameter, err)
	}

	blockFrames := max(core.MillisToFrames(p.BufferMs, sampleRate), 1)

	cls, err := segment.New(det, blockFrames, p.GapThresholdDB)
	if err != nil {
		return nil, fmt.Errorf("stretch: %w: %w", ErrInvalidParameter, err)
	}

	s := &Stream{
		sampleRate:  sampleRate,
		channels:    channels,
		params:      p,
		ratio:       p.EffectiveRatio(),
		gapRatio:    p.EffectiveGapRatio(),
		log:         cfg.logger,
		detector:    det,
		classifier:  cls,
		window:      analysisWindow(det.MaxLag(), blockFrames),
		blockFrames: blockFrames,
		noiseBlock:  max(det.MinLag(), det.MaxLag()/2),
		fades:       make(map[fadeKey]*window.Crossfader),
	}

	s.log.Debugf("new stream: %d Hz, %d ch, ratio %.4g, gap ratio %.4g, window %d frames, block %d frames, detection %v, noise %v",
		sampleRate, channels, s.ratio, s.gapRatio, s.window, blockFrames, p.Detection, p.Noise)

	return s, nil
}

// analysisWindow returns the smallest multiple of blockFrames that holds at
// least four of the longest periods.
func analysisWindow(maxPeriod, blockFrames int) int {
	need := max(4*maxPeriod, blockFrames)
	return (need + blockFrames - 1) / blockFrames * blockFrames
}

// SampleRate returns the stream's sample rate in Hz.
func (s *Stream) SampleRate() int { return s.sampleRate }

// Channels returns the number of interleaved channels.
func (s *Stream) Channels() int { return s.channels }

// Parameters returns the parameters the stream was created with.
func (s *Stream) Parameters() Parameters { return s.params }

// WindowFrames returns the analysis window length in frames.
func (s *Stream) WindowFrames() int { return s.window }

// Latency returns the number of buffered input frames not yet processed.
func (s *Stream) Latency() int { return len(s.carry) / s.channels }

// Stats returns a snapshot of the stream counters.
func (s *Stream) Stats() Stats {
	st := s.stats
	st.OutputFrames = s.produced
	st.TargetFrames = s.target
	return st
}

// Feed stretches samples, which must hold whole interleaved frames, and
// returns every output frame that is ready. Input that does not fill an
// analysis window is buffered until the next call or Finish. The returned
// slice is owned by the caller; samples is not retained.
func (s *Stream) Feed(samples []int16) ([]int16, error) {
	if s.state != stateOpen {
		return nil, fmt.Errorf("stretch: %w: feed on %v stream", ErrInvalidState, s.state)
	}

	if len(samples)%s.channels != 0 {
		return nil, fmt.Errorf("stretch: %w: %d samples do not form whole %d-channel frames",
			ErrMalformedInput, len(samples), s.channels)
	}

	s.stats.InputFrames += int64(len(samples) / s.channels)

	win := s.window * s.channels
	var out []int16

	if len(s.carry) > 0 {
		fill := min(win-len(s.carry), len(samples))
		s.carry = append(s.carry, samples[:fill]...)
		samples = samples[fill:]

		if len(s.carry) < win {
			return out, nil
		}

		out = s.processWindow(out, s.carry, s.window)
		s.carry = s.carry[:0]
	}

	for len(samples) >= win {
		out = s.processWindow(out, samples[:win], s.window)
		samples = samples[win:]
	}

	s.carry = append(s.carry, samples...)

	return out, nil
}

// FeedBuffer is Feed for a SampleBuffer whose format must match the stream.
func (s *Stream) FeedBuffer(b *buffer.SampleBuffer) (*buffer.SampleBuffer, error) {
	if b == nil {
		return nil, fmt.Errorf("stretch: %w: nil buffer", ErrMalformedInput)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("stretch: %w: %w", ErrMalformedInput, err)
	}

	if b.SampleRate != s.sampleRate || b.Channels != s.channels {
		return nil, fmt.Errorf("stretch: %w: buffer is %d Hz/%d ch, stream is %d Hz/%d ch",
			ErrMalformedInput, b.SampleRate, b.Channels, s.sampleRate, s.channels)
	}

	out, err := s.Feed(b.Data)
	if err != nil {
		return nil, err
	}

	return &buffer.SampleBuffer{SampleRate: s.sampleRate, Channels: s.channels, Data: out}, nil
}

// Finish processes the buffered remainder and returns the final output.
// The remainder is padded with silence to a full window; only real frames
// count towards the target length and the output is cut to that target.
// After Finish the stream accepts no more input.
func (s *Stream) Finish() ([]int16, error) {
	if s.state != stateOpen {
		return nil, fmt.Errorf("stretch: %w: finish on %v stream", ErrInvalidState, s.state)
	}

	s.state = stateFlushed

	var out []int16

	if frames := len(s.carry) / s.channels; frames > 0 {
		need := s.window * s.channels

		var padded []int16
		if cap(s.carry) >= need {
			padded = s.carry[:need]
			clear(padded[len(s.carry):])
		} else {
			padded = make([]int16, need)
			copy(padded, s.carry)
		}

		out = s.processWindow(out, padded, frames)
		s.carry = s.carry[:0]
	}

	if excess := s.produced - int64(math.Round(s.target)); excess > 0 {
		drop := min(excess, int64(len(out)/s.channels))
		out = out[:len(out)-int(drop)*s.channels]
		s.produced -= drop
	}

	s.log.Debugf("stream finished: %d frames in, %d frames out, target %.1f",
		s.stats.InputFrames, s.produced, s.target)

	return out, nil
}

// Close releases the stream. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.state != stateClosed {
		s.state = stateClosed
		s.carry = nil
		s.fades = nil
	}

	return nil
}

// Process stretches a whole buffer in one call.
func Process(b *buffer.SampleBuffer, p Parameters, opts ...Option) (*buffer.SampleBuffer, error) {
	if b == nil {
		return nil, fmt.Errorf("stretch: %w: nil buffer", ErrMalformedInput)
	}

	s, err := New(b.SampleRate, b.Channels, p, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	body, err := s.FeedBuffer(b)
	if err != nil {
		return nil, err
	}

	tail, err := s.Finish()
	if err != nil {
		return nil, err
	}

	body.Data = append(body.Data, tail...)

	return body, nil
}
