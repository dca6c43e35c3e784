package buffer

import (
	"errors"
	"testing"
	"time"
)

func TestNewZeroFilled(t *testing.T) {
	b, err := New(48000, 2, 8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", b.Len())
	}
	if b.Frames() != 8 {
		t.Fatalf("Frames() = %d, want 8", b.Frames())
	}
	for i, v := range b.Data {
		if v != 0 {
			t.Fatalf("Data[%d] = %v, want 0", i, v)
		}
	}
}

func TestNewRejectsBadFormat(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		channels   int
		want       error
	}{
		{name: "zero channels", sampleRate: 44100, channels: 0, want: ErrChannels},
		{name: "negative rate", sampleRate: -1, channels: 1, want: ErrSampleRate},
		{name: "zero rate", sampleRate: 0, channels: 2, want: ErrSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sampleRate, tt.channels, 4)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromSamplesSharesMemory(t *testing.T) {
	s := []int16{1, 2, 3, 4}
	b, err := FromSamples(8000, 2, s)
	if err != nil {
		t.Fatalf("FromSamples() error = %v", err)
	}
	b.Data[0] = 99
	if s[0] != 99 {
		t.Fatal("FromSamples should share underlying memory")
	}
}

func TestFromSamplesRejectsMisalignedData(t *testing.T) {
	_, err := FromSamples(8000, 2, []int16{1, 2, 3})
	if !errors.Is(err, ErrAlignment) {
		t.Fatalf("FromSamples() error = %v, want ErrAlignment", err)
	}
}

func TestAppend(t *testing.T) {
	b, _ := New(8000, 2, 0)
	if err := b.Append([]int16{1, 2, 3, 4}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := b.Append([]int16{5}); !errors.Is(err, ErrAlignment) {
		t.Fatalf("Append() error = %v, want ErrAlignment", err)
	}
	if b.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", b.Frames())
	}
}

func TestResizeZeroesNewFrames(t *testing.T) {
	b, _ := FromSamples(8000, 1, make([]int16, 4, 8))
	b.Data[0] = 7
	b.Data = b.Data[:1]
	b.Data = append(b.Data, 5) // stale data at index 1
	b.Resize(1)
	b.Resize(6)

	want := []int16{7, 0, 0, 0, 0, 0}
	for i := range want {
		if b.Data[i] != want[i] {
			t.Fatalf("Data[%d] = %d, want %d", i, b.Data[i], want[i])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	b, _ := FromSamples(8000, 1, []int16{1, 2, 3})
	c := b.Clone()
	c.Data[0] = 42
	if b.Data[0] != 1 {
		t.Fatal("Clone should not share memory")
	}
	if c.SampleRate != b.SampleRate || c.Channels != b.Channels {
		t.Fatal("Clone should copy the format")
	}
}

func TestChannel(t *testing.T) {
	b, _ := FromSamples(8000, 2, []int16{1, -1, 2, -2, 3, -3})
	right := b.Channel(1)
	want := []int16{-1, -2, -3}
	for i := range want {
		if right[i] != want[i] {
			t.Fatalf("Channel(1)[%d] = %d, want %d", i, right[i], want[i])
		}
	}
	if b.Channel(2) != nil {
		t.Fatal("out-of-range channel should return nil")
	}
}

func TestDuration(t *testing.T) {
	b, _ := New(48000, 2, 24000)
	if got := b.Duration(); got != 500*time.Millisecond {
		t.Fatalf("Duration() = %v, want 500ms", got)
	}
}
