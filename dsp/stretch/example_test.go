package stretch_test

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/stretch"
)

func ExampleProcess() {
	in, err := buffer.New(44100, 2, 44100)
	if err != nil {
		panic(err)
	}

	p := stretch.DefaultParameters()
	p.Ratio = 1.5

	out, err := stretch.Process(in, p)
	if err != nil {
		panic(err)
	}

	fmt.Println(out.Frames(), out.Duration())
	// Output:
	// 66150 1.5s
}

func ExampleStream_Feed() {
	p := stretch.DefaultParameters()
	p.GapRatio = 0.5

	s, err := stretch.New(8000, 1, p)
	if err != nil {
		panic(err)
	}
	defer s.Close()

	total := 0
	for range 10 {
		out, err := s.Feed(make([]int16, 800))
		if err != nil {
			panic(err)
		}
		total += len(out)
	}

	tail, err := s.Finish()
	if err != nil {
		panic(err)
	}

	fmt.Println(total+len(tail), s.Stats().Silence > 0)
	// Output:
	// 4000 true
}
