package buffer

import "sync"

// Pool provides sync.Pool-based SampleBuffer reuse for chunked decode and
// encode loops.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &SampleBuffer{}
			},
		},
	}
}

// Get returns a zeroed buffer with the requested format and frame count.
// Callers must return it via Put when done.
func (p *Pool) Get(sampleRate, channels, frames int) *SampleBuffer {
	b := p.pool.Get().(*SampleBuffer)
	b.SampleRate = sampleRate
	b.Channels = max(channels, 1)
	b.Reset()
	b.Resize(frames)
	return b
}

// Put returns a buffer to the pool for reuse.
// The caller must not use the buffer after calling Put.
func (p *Pool) Put(b *SampleBuffer) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}
