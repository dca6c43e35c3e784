package segment

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-stretch/dsp/period"
	"github.com/cwbudde/algo-stretch/internal/testutil"
)

const (
	testRate  = 44100
	testBlock = 1103
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()

	det, err := period.New(testRate, 55, 333, period.ModeAuto)
	if err != nil {
		t.Fatalf("period.New: %v", err)
	}

	c, err := New(det, testBlock, -40)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return c
}

func requireCovering(t *testing.T, segs []Segment, length int) {
	t.Helper()

	pos := 0
	for i, s := range segs {
		if s.Start != pos || s.Length <= 0 {
			t.Fatalf("segment %d %+v does not continue at %d", i, s, pos)
		}

		if i > 0 && segs[i-1].Kind == s.Kind && s.Kind == KindSilence {
			t.Fatalf("adjacent silence segments %d and %d not merged", i-1, i)
		}

		pos = s.End()
	}

	if pos != length {
		t.Fatalf("segments end at %d, want %d", pos, length)
	}
}

func TestNewValidation(t *testing.T) {
	det, err := period.New(testRate, 55, 333, period.ModeAuto)
	if err != nil {
		t.Fatalf("period.New: %v", err)
	}

	if _, err := New(nil, testBlock, -40); !errors.Is(err, errDetector) {
		t.Fatalf("err=%v, want errDetector", err)
	}

	if _, err := New(det, 0, -40); !errors.Is(err, errBlockFrames) {
		t.Fatalf("err=%v, want errBlockFrames", err)
	}

	if _, err := New(det, testBlock, 3); !errors.Is(err, errThreshold) {
		t.Fatalf("err=%v, want errThreshold", err)
	}
}

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		name   string
		signal []int16
		want   Kind
	}{
		{"silence", testutil.Silence(3 * testBlock), KindSilence},
		{"quiet hiss", testutil.Noise16(1, 100, 3*testBlock), KindSilence},
		{"tone", testutil.Sine16(220, testRate, 12000, 3*testBlock), KindHarmonic},
		{"noise", testutil.Noise16(2, 12000, 3*testBlock), KindNoise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier(t)

			segs := c.Classify(nil, testutil.Float(tt.signal))
			if len(segs) != 1 {
				t.Fatalf("got %d segments, want 1: %+v", len(segs), segs)
			}

			if segs[0].Kind != tt.want {
				t.Fatalf("kind=%v, want %v", segs[0].Kind, tt.want)
			}

			requireCovering(t, segs, 3*testBlock)
		})
	}
}

func TestClassifyMixedWindow(t *testing.T) {
	c := newClassifier(t)

	x := testutil.Float(testutil.Concat(
		testutil.Sine16(220, testRate, 12000, 2*testBlock),
		testutil.Silence(testBlock),
		testutil.Noise16(5, 12000, testBlock+17),
	))

	segs := c.Classify(nil, x)
	requireCovering(t, segs, len(x))

	want := []Kind{KindHarmonic, KindSilence, KindNoise}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments %+v, want %d", len(segs), segs, len(want))
	}

	for i, k := range want {
		if segs[i].Kind != k {
			t.Fatalf("segment %d kind=%v, want %v", i, segs[i].Kind, k)
		}
	}

	if segs[0].Period.Length != 200 || segs[0].Period.Start != 0 {
		t.Fatalf("harmonic period=%+v, want length 200", segs[0].Period)
	}

	if segs[2].Length != testBlock+17 {
		t.Fatalf("last segment length=%d, want remainder absorbed", segs[2].Length)
	}
}

func TestClassifyShortInput(t *testing.T) {
	c := newClassifier(t)

	segs := c.Classify(nil, testutil.Float(testutil.Sine16(220, testRate, 12000, 100)))
	if len(segs) != 1 || segs[0].Kind != KindNoise {
		t.Fatalf("got %+v, want a single noise segment", segs)
	}

	if segs := c.Classify(nil, nil); len(segs) != 0 {
		t.Fatalf("empty input produced %+v", segs)
	}
}

func TestClassifyAppends(t *testing.T) {
	c := newClassifier(t)

	dst := []Segment{{Start: -1}}
	dst = c.Classify(dst, make([]float64, testBlock))

	if len(dst) != 2 || dst[0].Start != -1 || dst[1].Kind != KindSilence {
		t.Fatalf("unexpected result %+v", dst)
	}
}

func TestKindString(t *testing.T) {
	if KindHarmonic.String() != "harmonic" || Kind(9).String() != "kind(9)" {
		t.Fatal("unexpected Kind strings")
	}
}
